package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUsage marks a scheme that is declared incorrectly for the data
	// it is asked to validate. It is a programming error, never a data error.
	ErrInvalidUsage = errors.New("invalid usage")
	// ErrUnsupportedType is returned for a type tag that the engine does not know.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrIllegalCast is returned when cast is set on a type other than boolean or number.
	ErrIllegalCast = errors.New("cast requires type boolean or number")
	// ErrInvalidDefinition is returned for a malformed scheme definition document.
	ErrInvalidDefinition = errors.New("invalid definition")
	// ErrUnknownHook is returned when a definition names a hook that is not registered.
	ErrUnknownHook = errors.New("unknown hook")
)

// InvalidUsageError reports a scheme declaration that cannot be applied.
type InvalidUsageError struct {
	Path   string // Dotted field path, empty at the top level
	Reason string // Human-readable reason
	Err    error  // Underlying sentinel
}

func (e *InvalidUsageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid usage: %s", e.Reason)
	}
	return fmt.Sprintf("invalid usage at %q: %s", e.Path, e.Reason)
}

// Unwrap exposes the sentinel; ErrInvalidUsage always matches via Is.
func (e *InvalidUsageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidUsage) true for every usage error.
func (e *InvalidUsageError) Is(target error) bool { return target == ErrInvalidUsage }

// Usage builds an InvalidUsageError.
func Usage(path string, err error, format string, args ...any) *InvalidUsageError {
	return &InvalidUsageError{Path: path, Reason: fmt.Sprintf(format, args...), Err: err}
}
