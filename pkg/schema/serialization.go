package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/vali/pkg/cast"
)

// Hooks resolves hook names used in definitions to functions.
type Hooks interface {
	LookupVerify(name string) (VerifyFunc, bool)
	LookupTransform(name string) (TransformFunc, bool)
}

// entryOptions mirrors the keys accepted in an entry definition.
// Nested declarations (scheme, value_scheme, tuple) are decoded separately
// so that field order survives.
type entryOptions struct {
	Type        any      `mapstructure:"type"`
	Default     any      `mapstructure:"default"`
	Def         any      `mapstructure:"def"`
	Required    *bool    `mapstructure:"required"`
	AllowEmpty  *bool    `mapstructure:"allow_empty"`
	Min         *float64 `mapstructure:"min"`
	Max         *float64 `mapstructure:"max"`
	Enum        []any    `mapstructure:"enum"`
	Alias       []string `mapstructure:"alias"`
	Cast        any      `mapstructure:"cast"`
	Charset     string   `mapstructure:"charset"`
	Verify      string   `mapstructure:"verify"`
	VerifyExpr  string   `mapstructure:"verify_expr"`
	Preprocess  string   `mapstructure:"preprocess"`
	Postprocess string   `mapstructure:"postprocess"`
	Description string   `mapstructure:"description"`
}

var nestedKeys = map[string]bool{"scheme": true, "value_scheme": true, "tuple": true}

// ParseDefinition parses a YAML or JSON scheme document. The top level maps
// field names to entry declarations; declaration order is kept. Hook names
// are resolved through hooks, which may be nil when no hooks are used.
func ParseDefinition(data []byte, hooks Hooks) (*Scheme, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, Usage("", ErrInvalidDefinition, "cannot parse definition: %v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, Usage("", ErrInvalidDefinition, "empty definition")
	}
	return decodeScheme(doc.Content[0], hooks, "")
}

// ParseEntryDefinition parses a single entry declaration, e.g. a
// value_scheme for dictionaries or arrays.
func ParseEntryDefinition(data []byte, hooks Hooks) (*Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, Usage("", ErrInvalidDefinition, "cannot parse definition: %v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, Usage("", ErrInvalidDefinition, "empty definition")
	}
	e, err := decodeEntry(doc.Content[0], hooks, "")
	if err != nil {
		return nil, err
	}
	if err := e.Check(); err != nil {
		return nil, err
	}
	return e, nil
}

// UnmarshalYAML decodes a definition without hooks.
func (s *Scheme) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := decodeScheme(node, nil, "")
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// UnmarshalJSON decodes a JSON definition without hooks.
func (s *Scheme) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	parsed, err := ParseDefinition(data, nil)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func decodeScheme(decl any, hooks Hooks, path string) (*Scheme, error) {
	var fields []Field
	switch d := decl.(type) {
	case *Scheme:
		return d, nil
	case *yaml.Node:
		if d.Kind != yaml.MappingNode {
			return nil, Usage(path, ErrInvalidDefinition, "scheme must be a mapping, got %s", kindName(d))
		}
		for i := 0; i+1 < len(d.Content); i += 2 {
			name := d.Content[i].Value
			e, err := decodeEntry(d.Content[i+1], hooks, join(path, name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: name, Entry: e})
		}
	case map[string]any:
		names := make([]string, 0, len(d))
		for name := range d {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			e, err := decodeEntry(d[name], hooks, join(path, name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: name, Entry: e})
		}
	default:
		return nil, Usage(path, ErrInvalidDefinition, "scheme must be a mapping, got %T", decl)
	}
	s, err := NewScheme(fields...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func decodeEntry(decl any, hooks Hooks, path string) (*Entry, error) {
	switch d := decl.(type) {
	case *Entry:
		return d, nil
	case *yaml.Node:
		return decodeEntryNode(d, hooks, path)
	case map[string]any:
		return decodeEntryMap(d, hooks, path)
	case string, []any, []string:
		types, err := parseTypes(d, path)
		if err != nil {
			return nil, err
		}
		return &Entry{Type: types}, nil
	}
	return nil, Usage(path, ErrInvalidDefinition, "cannot declare an entry with %T", decl)
}

func decodeEntryNode(node *yaml.Node, hooks Hooks, path string) (*Entry, error) {
	switch node.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("field %s: %w", path, err)
		}
		types, err := parseTypes(v, path)
		if err != nil {
			return nil, err
		}
		return &Entry{Type: types}, nil
	case yaml.MappingNode:
	default:
		return nil, Usage(path, ErrInvalidDefinition, "unexpected %s", kindName(node))
	}

	raw := make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if nestedKeys[key] {
			raw[key] = val
			continue
		}
		var v any
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("field %s: option %s: %w", path, key, err)
		}
		raw[key] = v
	}
	return decodeEntryMap(raw, hooks, path)
}

func decodeEntryMap(raw map[string]any, hooks Hooks, path string) (*Entry, error) {
	plain := make(map[string]any, len(raw))
	for k, v := range raw {
		if !nestedKeys[k] {
			plain[k] = v
		}
	}

	var opts entryOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(plain); err != nil {
		return nil, Usage(path, ErrInvalidDefinition, "%v", err)
	}

	e := &Entry{
		AllowEmpty:  opts.AllowEmpty,
		Min:         opts.Min,
		Max:         opts.Max,
		Enum:        opts.Enum,
		Alias:       opts.Alias,
		Description: opts.Description,
	}

	if opts.Type != nil {
		if e.Type, err = parseTypes(opts.Type, path); err != nil {
			return nil, err
		}
	}

	// default ?? def
	_, hasDefault := raw["default"]
	_, hasDef := raw["def"]
	switch {
	case opts.Default != nil:
		e.Default = Literal(opts.Default)
	case opts.Def != nil:
		e.Default = Literal(opts.Def)
	case hasDefault || hasDef:
		e.Default = Literal(nil)
	}

	if opts.Required != nil {
		if *opts.Required {
			e.Required = Always
		} else {
			e.Required = Never
		}
	}

	if e.Cast, err = parseCast(opts.Cast, path); err != nil {
		return nil, err
	}

	if opts.Charset != "" {
		if e.Charset, err = Charset(opts.Charset); err != nil {
			return nil, Usage(path, ErrInvalidDefinition, "charset: %v", err)
		}
	}

	if err := bindHooks(e, opts, hooks, path); err != nil {
		return nil, err
	}

	if decl, ok := raw["scheme"]; ok {
		if e.Scheme, err = decodeScheme(decl, hooks, path); err != nil {
			return nil, err
		}
		if len(e.Type) == 0 {
			e.Type = []Type{T(TagObject)}
		}
	}
	if decl, ok := raw["value_scheme"]; ok {
		if e.ValueScheme, err = decodeEntry(decl, hooks, join(path, "*")); err != nil {
			return nil, err
		}
	}
	if decl, ok := raw["tuple"]; ok {
		if e.Tuple, err = decodeTuple(decl, hooks, path); err != nil {
			return nil, err
		}
		if len(e.Type) == 0 {
			e.Type = []Type{T(TagArray)}
		}
	}
	return e, nil
}

func decodeTuple(decl any, hooks Hooks, path string) ([]*Entry, error) {
	var items []any
	switch d := decl.(type) {
	case *yaml.Node:
		if d.Kind != yaml.SequenceNode {
			return nil, Usage(path, ErrInvalidDefinition, "tuple must be a sequence, got %s", kindName(d))
		}
		for _, item := range d.Content {
			items = append(items, item)
		}
	case []any:
		items = d
	case []*Entry:
		return d, nil
	default:
		return nil, Usage(path, ErrInvalidDefinition, "tuple must be a sequence, got %T", decl)
	}
	out := make([]*Entry, len(items))
	for i, item := range items {
		e, err := decodeEntry(item, hooks, join(path, fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func parseTypes(v any, path string) ([]Type, error) {
	switch t := v.(type) {
	case string:
		return []Type{T(Tag(t))}, nil
	case []string:
		out := make([]Type, len(t))
		for i, s := range t {
			out[i] = T(Tag(s))
		}
		return out, nil
	case []any:
		out := make([]Type, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, Usage(path, ErrInvalidDefinition, "type list item %d must be a string, got %T", i, item)
			}
			out[i] = T(Tag(s))
		}
		return out, nil
	}
	return nil, Usage(path, ErrInvalidDefinition, "type must be a string or a list of strings, got %T", v)
}

func parseCast(v any, path string) (*cast.Options, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !c {
			return nil, nil
		}
		return &cast.Options{}, nil
	case map[string]any:
		var opts cast.Options
		if err := mapstructure.Decode(c, &opts); err != nil {
			return nil, Usage(path, ErrInvalidDefinition, "cast: %v", err)
		}
		return &opts, nil
	}
	return nil, Usage(path, ErrInvalidDefinition, "cast must be a boolean or a mapping, got %T", v)
}

func bindHooks(e *Entry, opts entryOptions, hooks Hooks, path string) error {
	lookupTransform := func(name string) (TransformFunc, error) {
		if hooks != nil {
			if fn, ok := hooks.LookupTransform(name); ok {
				return fn, nil
			}
		}
		return nil, Usage(path, ErrUnknownHook, "transform hook %q is not registered", name)
	}

	var err error
	if opts.Preprocess != "" {
		if e.Preprocess, err = lookupTransform(opts.Preprocess); err != nil {
			return err
		}
	}
	if opts.Postprocess != "" {
		if e.Postprocess, err = lookupTransform(opts.Postprocess); err != nil {
			return err
		}
	}

	var named VerifyFunc
	if opts.Verify != "" {
		var ok bool
		if hooks != nil {
			named, ok = hooks.LookupVerify(opts.Verify)
		}
		if !ok {
			return Usage(path, ErrUnknownHook, "verify hook %q is not registered", opts.Verify)
		}
	}
	var compiled VerifyFunc
	if opts.VerifyExpr != "" {
		if compiled, err = Expression(opts.VerifyExpr); err != nil {
			return Usage(path, ErrInvalidDefinition, "verify_expr: %v", err)
		}
	}
	e.Verify = chainVerify(named, compiled)
	return nil
}

func chainVerify(fns ...VerifyFunc) VerifyFunc {
	var set []VerifyFunc
	for _, fn := range fns {
		if fn != nil {
			set = append(set, fn)
		}
	}
	switch len(set) {
	case 0:
		return nil
	case 1:
		return set[0]
	}
	return func(value, parent any, key string) error {
		for _, fn := range set {
			if err := fn(value, parent, key); err != nil {
				return err
			}
		}
		return nil
	}
}

// Charset compiles a pattern that must match the whole string. The pattern
// is always wrapped in ^(?:...)$, so alternations stay anchored on both
// sides.
func Charset(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(anchor(pattern))
}

func anchor(pattern string) string { return "^(?:" + pattern + ")$" }

// charsetPattern recovers the pattern Charset was given, so a marshaled
// definition parses back to the same expression.
func charsetPattern(re *regexp.Regexp) string {
	src := re.String()
	inner, ok := strings.CutPrefix(src, "^(?:")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")$")
	}
	if !ok || anchor(inner) != src {
		return src
	}
	if _, err := regexp.Compile(inner); err != nil {
		return src
	}
	return inner
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	}
	return "document"
}

// MarshalYAML renders the scheme back into its definition form.
// Hooks and computed defaults have no textual form and are omitted.
func (s *Scheme) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range s.fields {
		val, err := f.Entry.node()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		node.Content = append(node.Content, scalar(f.Name), val)
	}
	return node, nil
}

// MarshalYAML renders the entry into its definition form.
func (e *Entry) MarshalYAML() (any, error) { return e.node() }

func (e *Entry) node() (*yaml.Node, error) {
	simple := e.Scheme == nil && e.ValueScheme == nil && len(e.Tuple) == 0 &&
		!e.Default.IsSet() && !e.Required.IsSet() && e.AllowEmpty == nil &&
		e.Min == nil && e.Max == nil && len(e.Enum) == 0 && len(e.Alias) == 0 &&
		e.Cast == nil && e.Charset == nil && e.Description == ""
	if simple && len(e.Type) == 1 && e.Type[0].Go == nil {
		return scalar(string(e.Type[0].Tag)), nil
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return err
		}
		node.Content = append(node.Content, scalar(key), &val)
		return nil
	}

	if len(e.Type) == 1 {
		if err := add("type", e.Type[0].Name()); err != nil {
			return nil, err
		}
	} else if len(e.Type) > 1 {
		names := make([]string, len(e.Type))
		for i, t := range e.Type {
			names[i] = t.Name()
		}
		if err := add("type", names); err != nil {
			return nil, err
		}
	}
	if e.Description != "" {
		if err := add("description", e.Description); err != nil {
			return nil, err
		}
	}
	if e.Default.IsSet() && !e.Default.IsComputed() {
		if err := add("default", e.Default.Value()); err != nil {
			return nil, err
		}
	}
	if e.Required.mode == requireAlways || e.Required.mode == requireNever {
		if err := add("required", e.Required.mode == requireAlways); err != nil {
			return nil, err
		}
	}
	if e.AllowEmpty != nil {
		if err := add("allow_empty", *e.AllowEmpty); err != nil {
			return nil, err
		}
	}
	if e.Min != nil {
		if err := add("min", *e.Min); err != nil {
			return nil, err
		}
	}
	if e.Max != nil {
		if err := add("max", *e.Max); err != nil {
			return nil, err
		}
	}
	if len(e.Enum) > 0 {
		if err := add("enum", e.Enum); err != nil {
			return nil, err
		}
	}
	if len(e.Alias) > 0 {
		if err := add("alias", e.Alias); err != nil {
			return nil, err
		}
	}
	if e.Cast != nil {
		if err := add("cast", e.Cast); err != nil {
			return nil, err
		}
	}
	if e.Charset != nil {
		if err := add("charset", charsetPattern(e.Charset)); err != nil {
			return nil, err
		}
	}
	if e.Scheme != nil {
		nested, err := e.Scheme.MarshalYAML()
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalar("scheme"), nested.(*yaml.Node))
	}
	if e.ValueScheme != nil {
		nested, err := e.ValueScheme.node()
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalar("value_scheme"), nested)
	}
	if len(e.Tuple) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range e.Tuple {
			nested, err := item.node()
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, nested)
		}
		node.Content = append(node.Content, scalar("tuple"), seq)
	}
	return node, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
