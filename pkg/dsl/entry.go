package dsl

import (
	"errors"

	"github.com/aretw0/vali/pkg/cast"
	"github.com/aretw0/vali/pkg/schema"
)

// EntryBuilder provides a fluent API for configuring an entry.
// Errors from invalid options are collected and returned by Build.
type EntryBuilder struct {
	entry  schema.Entry
	scheme *Builder
	value  *EntryBuilder
	tuple  []*EntryBuilder
	errs   []error
}

// Of starts an entry accepting any of the given tags.
func Of(tags ...schema.Tag) *EntryBuilder {
	e := &EntryBuilder{}
	return e.Type(tags...)
}

// Any starts an entry without a type check.
func Any() *EntryBuilder { return &EntryBuilder{} }

// String starts a string entry.
func String() *EntryBuilder { return Of(schema.TagString) }

// Number starts a number entry.
func Number() *EntryBuilder { return Of(schema.TagNumber) }

// Boolean starts a boolean entry.
func Boolean() *EntryBuilder { return Of(schema.TagBoolean) }

// Instance starts an entry matching values assignable to the Go type V.
func Instance[V any]() *EntryBuilder {
	return &EntryBuilder{entry: schema.Entry{Type: []schema.Type{schema.Instance[V]()}}}
}

// Object starts an object entry validated against the fields of b.
func Object(b *Builder) *EntryBuilder {
	e := Of(schema.TagObject)
	e.scheme = b
	return e
}

// DictOf starts an object entry whose every value is validated by item.
func DictOf(item *EntryBuilder) *EntryBuilder {
	e := Of(schema.TagObject)
	e.value = item
	return e
}

// ArrayOf starts an array entry whose every item is validated by item.
func ArrayOf(item *EntryBuilder) *EntryBuilder {
	e := Of(schema.TagArray)
	e.value = item
	return e
}

// Tuple starts an array entry validated position by position.
func Tuple(items ...*EntryBuilder) *EntryBuilder {
	e := Of(schema.TagArray)
	e.tuple = items
	return e
}

// Type appends tags to the accepted types, forming a union.
func (e *EntryBuilder) Type(tags ...schema.Tag) *EntryBuilder {
	for _, tag := range tags {
		e.entry.Type = append(e.entry.Type, schema.T(tag))
	}
	return e
}

// OrNull also accepts null.
func (e *EntryBuilder) OrNull() *EntryBuilder { return e.Type(schema.TagNull) }

// Default sets a literal default.
func (e *EntryBuilder) Default(v any) *EntryBuilder {
	e.entry.Default = schema.Literal(v)
	return e
}

// DefaultFunc sets a default computed from the parent container.
func (e *EntryBuilder) DefaultFunc(fn func(parent any) any) *EntryBuilder {
	e.entry.Default = schema.Computed(fn)
	return e
}

// Required makes the field required even when it has a default.
func (e *EntryBuilder) Required() *EntryBuilder {
	e.entry.Required = schema.Always
	return e
}

// Optional lets the field be absent.
func (e *EntryBuilder) Optional() *EntryBuilder {
	e.entry.Required = schema.Never
	return e
}

// RequiredWhen makes the field required when fn holds for the parent.
func (e *EntryBuilder) RequiredWhen(fn func(parent any) bool) *EntryBuilder {
	e.entry.Required = schema.When(fn)
	return e
}

// NotEmpty rejects "", [] and NaN.
func (e *EntryBuilder) NotEmpty() *EntryBuilder {
	no := false
	e.entry.AllowEmpty = &no
	return e
}

// Min sets the lower bound: value for numbers, length otherwise.
func (e *EntryBuilder) Min(n float64) *EntryBuilder {
	e.entry.Min = &n
	return e
}

// Max sets the upper bound: value for numbers, length otherwise.
func (e *EntryBuilder) Max(n float64) *EntryBuilder {
	e.entry.Max = &n
	return e
}

// Between sets both bounds.
func (e *EntryBuilder) Between(min, max float64) *EntryBuilder {
	return e.Min(min).Max(max)
}

// Enum restricts the value to one of values.
func (e *EntryBuilder) Enum(values ...any) *EntryBuilder {
	e.entry.Enum = append(e.entry.Enum, values...)
	return e
}

// Alias adds alternative input keys for the field.
func (e *EntryBuilder) Alias(names ...string) *EntryBuilder {
	e.entry.Alias = append(e.entry.Alias, names...)
	return e
}

// Cast converts string input to the entry's boolean or number type.
func (e *EntryBuilder) Cast(opts ...cast.Options) *EntryBuilder {
	var o cast.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	e.entry.Cast = &o
	return e
}

// Charset restricts strings to those fully matching pattern.
func (e *EntryBuilder) Charset(pattern string) *EntryBuilder {
	re, err := schema.Charset(pattern)
	if err != nil {
		e.errs = append(e.errs, err)
		return e
	}
	e.entry.Charset = re
	return e
}

// Verify sets the custom check.
func (e *EntryBuilder) Verify(fn schema.VerifyFunc) *EntryBuilder {
	e.entry.Verify = fn
	return e
}

// VerifyExpr sets the custom check from an expression over value, parent
// and key.
func (e *EntryBuilder) VerifyExpr(src string) *EntryBuilder {
	fn, err := schema.Expression(src)
	if err != nil {
		e.errs = append(e.errs, err)
		return e
	}
	e.entry.Verify = fn
	return e
}

// Preprocess sets the hook run before the type check.
func (e *EntryBuilder) Preprocess(fn schema.TransformFunc) *EntryBuilder {
	e.entry.Preprocess = fn
	return e
}

// Postprocess sets the hook run after every check passed.
func (e *EntryBuilder) Postprocess(fn schema.TransformFunc) *EntryBuilder {
	e.entry.Postprocess = fn
	return e
}

// Describe attaches documentation shown by describe output.
func (e *EntryBuilder) Describe(text string) *EntryBuilder {
	e.entry.Description = text
	return e
}

// Build returns the configured entry, with nested builders compiled.
func (e *EntryBuilder) Build() (*schema.Entry, error) {
	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	out := e.entry
	var err error
	if e.scheme != nil {
		if out.Scheme, err = e.scheme.Build(); err != nil {
			return nil, err
		}
	}
	if e.value != nil {
		if out.ValueScheme, err = e.value.Build(); err != nil {
			return nil, err
		}
	}
	if len(e.tuple) > 0 {
		out.Tuple = make([]*schema.Entry, len(e.tuple))
		for i, item := range e.tuple {
			if out.Tuple[i], err = item.Build(); err != nil {
				return nil, err
			}
		}
	}
	if err := out.Check(); err != nil {
		return nil, err
	}
	return &out, nil
}

// MustBuild is Build that panics on error.
func (e *EntryBuilder) MustBuild() *schema.Entry {
	out, err := e.Build()
	if err != nil {
		panic(err)
	}
	return out
}
