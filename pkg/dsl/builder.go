package dsl

import (
	"fmt"

	"github.com/aretw0/vali/pkg/schema"
)

// Builder collects named fields into a Scheme, in the order they are added.
type Builder struct {
	order   []string
	entries map[string]*EntryBuilder
}

// New creates a new scheme builder.
func New() *Builder {
	return &Builder{
		entries: make(map[string]*EntryBuilder),
	}
}

// Fields is shorthand for New followed by Field for each pair.
func Fields(fields ...Field) *Builder {
	b := New()
	for _, f := range fields {
		b.Field(f.Name, f.Entry)
	}
	return b
}

// Field is a name and its entry builder, for use with Fields.
type Field struct {
	Name  string
	Entry *EntryBuilder
}

// F builds a Field.
func F(name string, e *EntryBuilder) Field { return Field{Name: name, Entry: e} }

// Add creates a new field with no type constraint.
// If the field already exists, it returns the existing builder.
func (b *Builder) Add(name string) *EntryBuilder {
	if eb, ok := b.entries[name]; ok {
		return eb
	}
	eb := Any()
	b.order = append(b.order, name)
	b.entries[name] = eb
	return eb
}

// Field sets the entry of a field, replacing any previous one but keeping
// its position.
func (b *Builder) Field(name string, e *EntryBuilder) *Builder {
	if _, ok := b.entries[name]; !ok {
		b.order = append(b.order, name)
	}
	b.entries[name] = e
	return b
}

// Build compiles the fields into a Scheme.
func (b *Builder) Build() (*schema.Scheme, error) {
	fields := make([]schema.Field, 0, len(b.order))
	for _, name := range b.order {
		e, err := b.entries[name].Build()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields = append(fields, schema.Field{Name: name, Entry: e})
	}
	s, err := schema.NewScheme(fields...)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheme: %w", err)
	}
	return s, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *schema.Scheme {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
