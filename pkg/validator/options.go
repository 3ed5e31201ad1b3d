package validator

import (
	"io"
	"log/slog"

	"github.com/aretw0/vali/pkg/schema"
)

// DefaultMaxDepth bounds recursion through nested schemes.
const DefaultMaxDepth = 64

// Options configures a validation call.
type Options struct {
	Scheme      *schema.Scheme
	ValueScheme *schema.Entry
	Tuple       []*schema.Entry
	// Unknown permits input keys that the scheme does not declare.
	Unknown bool
	// Parent prefixes every reported field path.
	Parent string
	// ErrorPrefix is prepended to Result.Error.
	ErrorPrefix string
	// Throw returns failures as *ValidatorError instead of a Result.
	Throw    bool
	MaxDepth int
	Logger   *slog.Logger
}

// Option defines a functional option for configuring a validation.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Unknown:  true,
		MaxDepth: DefaultMaxDepth,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithScheme validates objects field by field against s.
func WithScheme(s *schema.Scheme) Option {
	return func(o *Options) {
		o.Scheme = s
	}
}

// WithValueScheme applies e to every array item or every object value.
func WithValueScheme(e *schema.Entry) Option {
	return func(o *Options) {
		o.ValueScheme = e
	}
}

// WithTuple validates array positions against entries.
func WithTuple(entries ...*schema.Entry) Option {
	return func(o *Options) {
		o.Tuple = entries
	}
}

// WithUnknown sets whether undeclared keys are allowed (default true).
func WithUnknown(allow bool) Option {
	return func(o *Options) {
		o.Unknown = allow
	}
}

// Strict rejects undeclared keys. Shorthand for WithUnknown(false).
func Strict() Option {
	return WithUnknown(false)
}

// WithParent sets the dotted path prefix used in error messages.
func WithParent(parent string) Option {
	return func(o *Options) {
		o.Parent = parent
	}
}

// WithErrorPrefix sets the text prepended to Result.Error.
func WithErrorPrefix(prefix string) Option {
	return func(o *Options) {
		o.ErrorPrefix = prefix
	}
}

// WithThrow makes Validate return failures as *ValidatorError.
func WithThrow(throw bool) Option {
	return func(o *Options) {
		o.Throw = throw
	}
}

// WithMaxDepth bounds nesting. Zero or a negative value disables the limit.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithLogger sets the structured logger. Decisions are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
