// Package schema declares the shape of data to validate.
//
// An Entry describes a single field: its type (or union of types), default,
// requiredness, bounds, nested scheme, allowed values, aliases, hooks and
// cast policy. A Scheme is an ordered table of named entries. Both are
// immutable once built and safe to share between goroutines; the
// validator package walks data against them.
//
// Basic usage:
//
//	user := schema.MustScheme(
//	    schema.Def("name", schema.TagString),
//	    schema.Def("age", &schema.Entry{
//	        Type:    []schema.Type{schema.T(schema.TagNumber)},
//	        Default: schema.Literal(18),
//	        Cast:    &cast.Options{},
//	    }),
//	    schema.Def("role", &schema.Entry{
//	        Type: []schema.Type{schema.T(schema.TagString)},
//	        Enum: []any{"admin", "user"},
//	    }),
//	)
//
// Schemes can also be parsed from YAML or JSON definitions. Field order in
// the document is kept, and hook names are resolved through a registry:
//
//	name:
//	  type: string
//	  alias: [full_name]
//	  preprocess: trim
//	age:
//	  type: number
//	  cast: true
//	  default: 18
//	tags:
//	  type: array
//	  value_scheme: string
//
//	s, err := schema.ParseDefinition(data, registry.Default())
//
// Defaults and requiredness are variants rather than bare values: a default
// is Literal or Computed from the parent container, and a requirement is
// Always, Never or When(fn). An entry without an explicit requirement is
// required unless it declares a default.
package schema
