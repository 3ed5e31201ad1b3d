package ports

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrSchemeNotFound is returned when a scheme name has no definition.
	ErrSchemeNotFound = errors.New("scheme not found")
	// ErrInvalidName is returned for names that cannot be used as keys.
	ErrInvalidName = errors.New("invalid scheme name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateName checks that name is usable as a file name and a Redis key:
// letters, digits, '_', '.' and '-', not starting with a separator.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// SchemeStore defines the interface for persisting scheme definitions.
// Definitions are stored as raw bytes; parsing happens in the engine so that
// hooks resolve against the engine's registry.
type SchemeStore interface {
	// Save persists the definition under name, replacing any previous one.
	Save(ctx context.Context, name string, definition []byte) error

	// Load retrieves the definition for name.
	// Returns ErrSchemeNotFound if the name does not exist.
	Load(ctx context.Context, name string) ([]byte, error)

	// Delete removes the definition. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names, sorted.
	List(ctx context.Context) ([]string, error)
}
