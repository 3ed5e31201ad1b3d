package validator

import (
	"errors"

	"github.com/aretw0/vali/pkg/schema"
)

var (
	// ErrValidation matches every *ValidatorError.
	ErrValidation = errors.New("validation failed")
	// ErrMaxDepth is wrapped by the usage error raised when nesting exceeds
	// the configured depth.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
	// ErrInvalidUsage matches every *InvalidUsageError.
	ErrInvalidUsage = schema.ErrInvalidUsage
)

// InvalidUsageError reports a scheme that cannot be applied to the data it
// was given. It is never part of a Result.
type InvalidUsageError = schema.InvalidUsageError

// ValidatorError carries a failed Result when validation runs with
// WithThrow(true).
type ValidatorError struct {
	Info Result
}

func (e *ValidatorError) Error() string { return e.Info.Error }

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidatorError) Is(target error) bool { return target == ErrValidation }

// Field returns the path and message of the failing field.
func (e *ValidatorError) Field() (path, message string) {
	for path, message = range e.Info.InvalidFields {
		return path, message
	}
	return "", ""
}
