/*
Package vali is a declarative data validation and coercion engine.

A scheme declares, field by field, the type, default, requiredness, bounds,
aliases, allowed values, nested structure and hooks of a value tree. The
engine walks untrusted input (decoded JSON, YAML, query strings) against it
and returns a normalized copy: defaults filled in, aliases renamed to their
canonical keys, strings cast to numbers and booleans where requested. The
first violation stops the walk and is reported with its dotted path.

# Key Features

  - Declarative Schemes: Build them in Go (pkg/schema, pkg/dsl) or load YAML/JSON definitions.
  - Non-destructive: The caller's value is never modified; the output is a fresh tree.
  - Named Schemes: The Engine resolves schemes from memory, a directory or Redis.
  - Observable: Lifecycle hooks feed structured logs and Prometheus metrics.

# Usage

Validate directly against a scheme:

	user := schema.MustScheme(
		schema.Def("name", schema.TagString),
		schema.Def("age", &schema.Entry{
			Type:    []schema.Type{schema.T(schema.TagNumber)},
			Default: schema.Literal(18),
			Cast:    &cast.Options{},
		}),
	)

	res, err := vali.Validate(input, user, validator.Strict())
	if err != nil {
		log.Fatal(err) // the scheme does not fit the data
	}
	if !res.OK() {
		fmt.Println(res.Error)
	}

Or decode straight into a struct:

	var u struct {
		Name string  `json:"name"`
		Age  float64 `json:"age"`
	}
	err := vali.Decode(input, user, &u)

Named schemes go through an Engine:

	eng := vali.New(vali.WithStore(file.New("./schemes")))
	res, err := eng.Validate(ctx, "user", input)
*/
package vali
