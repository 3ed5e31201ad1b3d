// Package openapi converts OpenAPI 3 component schemas into vali scheme
// definitions.
//
// Each object schema under components.schemas becomes one named definition.
// Properties are emitted in sorted order, because OpenAPI documents do not
// keep it. Keywords without a vali equivalent (format, readOnly,
// additionalProperties: false, allOf) are ignored.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/vali/pkg/schema"
)

var (
	// ErrNotObject is returned when a component schema is not an object.
	ErrNotObject = errors.New("component schema is not an object")
	// ErrRecursiveRef is returned for a schema that references itself.
	ErrRecursiveRef = errors.New("recursive schema reference")
)

// Definitions maps a component name to its YAML scheme definition.
type Definitions map[string][]byte

// Names returns the component names, sorted.
func (d Definitions) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load parses an OpenAPI 3 document (YAML or JSON) and converts its object
// component schemas. Non-object components are skipped.
func Load(ctx context.Context, data []byte) (Definitions, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("cannot load openapi document: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument converts the object component schemas of doc.
func FromDocument(doc *openapi3.T) (Definitions, error) {
	defs := make(Definitions)
	if doc.Components == nil {
		return defs, nil
	}
	for name, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil || !isObject(ref.Value) {
			continue
		}
		def, err := Definition(ref.Value)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		defs[name] = def
	}
	return defs, nil
}

// Definition converts a single object schema into a definition document
// accepted by schema.ParseDefinition.
func Definition(s *openapi3.Schema) ([]byte, error) {
	if !isObject(s) {
		return nil, ErrNotObject
	}
	c := &converter{}
	if err := c.enter(s, ""); err != nil {
		return nil, err
	}
	node, err := c.fields(s, "")
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

type converter struct {
	stack []*openapi3.Schema
}

func (c *converter) enter(s *openapi3.Schema, path string) error {
	for _, seen := range c.stack {
		if seen == s {
			return schema.Usage(path, ErrRecursiveRef, "schema refers back to itself")
		}
	}
	c.stack = append(c.stack, s)
	return nil
}

func (c *converter) leave() { c.stack = c.stack[:len(c.stack)-1] }

func (c *converter) fields(s *openapi3.Schema, path string) (*yaml.Node, error) {
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		ref := s.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		entry, err := c.entry(ref.Value, join(path, name), required[name])
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, str(name), entry)
	}
	return node, nil
}

func (c *converter) entry(s *openapi3.Schema, path string, required bool) (*yaml.Node, error) {
	if err := c.enter(s, path); err != nil {
		return nil, err
	}
	defer c.leave()

	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return schema.Usage(path, schema.ErrInvalidDefinition, "%s: %v", key, err)
		}
		node.Content = append(node.Content, str(key), &val)
		return nil
	}

	types := typesOf(s)
	if len(types) == 1 {
		if err := add("type", types[0]); err != nil {
			return nil, err
		}
	} else if len(types) > 1 {
		if err := add("type", types); err != nil {
			return nil, err
		}
	}
	if s.Description != "" {
		if err := add("description", s.Description); err != nil {
			return nil, err
		}
	}

	switch {
	case s.Default != nil:
		if err := add("default", s.Default); err != nil {
			return nil, err
		}
	case required:
		if err := add("required", true); err != nil {
			return nil, err
		}
	default:
		if err := add("required", false); err != nil {
			return nil, err
		}
	}

	lo, hi := bounds(s)
	if lo != nil {
		if err := add("min", *lo); err != nil {
			return nil, err
		}
	}
	if hi != nil {
		if err := add("max", *hi); err != nil {
			return nil, err
		}
	}
	if len(s.Enum) > 0 {
		if err := add("enum", s.Enum); err != nil {
			return nil, err
		}
	}
	if s.Pattern != "" {
		expr := "value == nil || value matches " + strconv.Quote(s.Pattern)
		if err := add("verify_expr", expr); err != nil {
			return nil, err
		}
	}

	switch {
	case isObject(s) && len(s.Properties) > 0:
		nested, err := c.fields(s, path)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, str("scheme"), nested)
	case isObject(s) && s.AdditionalProperties.Schema != nil && s.AdditionalProperties.Schema.Value != nil:
		nested, err := c.entry(s.AdditionalProperties.Schema.Value, join(path, "*"), true)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, str("value_scheme"), nested)
	case s.Items != nil && s.Items.Value != nil:
		nested, err := c.entry(s.Items.Value, join(path, "*"), true)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, str("value_scheme"), nested)
	}
	return node, nil
}

// typesOf maps OpenAPI types to vali tags. integer is checked as number;
// nullable adds null. oneOf/anyOf of plain types become a union.
func typesOf(s *openapi3.Schema) []string {
	var out []string
	seen := make(map[string]bool)
	push := func(t string) {
		if t == "integer" {
			t = string(schema.TagNumber)
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if s.Type != nil {
		for _, t := range *s.Type {
			push(t)
		}
	}
	if len(out) == 0 {
		for _, alt := range append(append(openapi3.SchemaRefs{}, s.OneOf...), s.AnyOf...) {
			if alt == nil || alt.Value == nil || alt.Value.Type == nil {
				continue
			}
			for _, t := range *alt.Value.Type {
				push(t)
			}
		}
	}
	if len(out) == 0 && len(s.Properties) > 0 {
		push(string(schema.TagObject))
	}
	if s.Nullable && len(out) > 0 {
		push(string(schema.TagNull))
	}
	return out
}

func bounds(s *openapi3.Schema) (lo, hi *float64) {
	u := func(n uint64) *float64 {
		f := float64(n)
		return &f
	}
	switch {
	case s.Type != nil && s.Type.Is("string"):
		if s.MinLength > 0 {
			lo = u(s.MinLength)
		}
		if s.MaxLength != nil {
			hi = u(*s.MaxLength)
		}
	case s.Type != nil && s.Type.Is("array"):
		if s.MinItems > 0 {
			lo = u(s.MinItems)
		}
		if s.MaxItems != nil {
			hi = u(*s.MaxItems)
		}
	default:
		lo, hi = s.Min, s.Max
	}
	return lo, hi
}

func isObject(s *openapi3.Schema) bool {
	if s.Type != nil {
		return s.Type.Is("object")
	}
	return len(s.Properties) > 0
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return strings.Join([]string{parent, key}, ".")
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
