package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/aretw0/vali/pkg/cast"
)

// VerifyFunc is a custom check run after all built-in checks.
// A non-nil error fails the field and its message is reported verbatim.
type VerifyFunc func(value, parent any, key string) error

// TransformFunc rewrites a value. When ok is false the value is kept.
type TransformFunc func(value, parent any, key string) (out any, ok bool)

// Default is either a literal value or a value computed from the parent
// container. The zero Default means "no default".
type Default struct {
	value any
	fn    func(parent any) any
	set   bool
}

// Literal returns a Default holding v.
func Literal(v any) Default { return Default{value: v, set: true} }

// Computed returns a Default evaluated against the parent container.
func Computed(fn func(parent any) any) Default { return Default{fn: fn, set: true} }

// IsSet reports whether a default was declared, even a nil one.
func (d Default) IsSet() bool { return d.set }

// Available reports whether the default can produce a non-null value.
func (d Default) Available() bool { return d.set && (d.fn != nil || d.value != nil) }

// IsComputed reports whether the default is a function of the parent.
func (d Default) IsComputed() bool { return d.fn != nil }

// Resolve materializes the default. Literal containers are copied so that
// later rewrites of the output never leak into the scheme.
func (d Default) Resolve(parent any) any {
	if d.fn != nil {
		return d.fn(parent)
	}
	return Normalize(d.value)
}

// Equals reports whether the default is the literal v.
func (d Default) Equals(v any) bool {
	return d.set && d.fn == nil && d.value == v
}

// Value returns the literal value, or nil for computed defaults.
func (d Default) Value() any { return d.value }

type requirement int

const (
	requireUnset requirement = iota
	requireAlways
	requireNever
	requireWhen
)

// Requirement decides whether an absent field is an error.
// The zero Requirement means "required unless a default is declared".
type Requirement struct {
	mode requirement
	when func(parent any) bool
}

var (
	// Always marks a field as required regardless of defaults.
	Always = Requirement{mode: requireAlways}
	// Never marks a field as optional.
	Never = Requirement{mode: requireNever}
)

// When marks a field as required when fn returns true for the parent.
func When(fn func(parent any) bool) Requirement {
	return Requirement{mode: requireWhen, when: fn}
}

// IsSet reports whether the requirement was declared explicitly.
func (r Requirement) IsSet() bool { return r.mode != requireUnset }

// IsNever reports an explicit required: false.
func (r Requirement) IsNever() bool { return r.mode == requireNever }

// IsConditional reports a requirement computed from the parent.
func (r Requirement) IsConditional() bool { return r.mode == requireWhen }

// Entry declares how a single field is validated and coerced.
// Entries are read-only once built and may be shared between schemes and
// concurrent validations.
type Entry struct {
	Type        []Type
	Default     Default
	Required    Requirement
	AllowEmpty  *bool
	Min         *float64
	Max         *float64
	Scheme      *Scheme
	ValueScheme *Entry
	Tuple       []*Entry
	Enum        []any
	Alias       []string
	Verify      VerifyFunc
	Preprocess  TransformFunc
	Postprocess TransformFunc
	Cast        *cast.Options
	Charset     *regexp.Regexp
	Description string
}

// IsRequired applies the requiredness policy for an absent field.
func (e *Entry) IsRequired(parent any) bool {
	switch e.Required.mode {
	case requireAlways:
		return true
	case requireNever:
		return false
	case requireWhen:
		return e.Required.when(parent)
	}
	return !e.Default.IsSet()
}

// AllowsEmpty reports whether "", [] and NaN are accepted. Defaults to true.
func (e *Entry) AllowsEmpty() bool {
	return e.AllowEmpty == nil || *e.AllowEmpty
}

// IsAny reports whether the entry performs no type check.
func (e *Entry) IsAny() bool {
	if len(e.Type) == 0 {
		return true
	}
	for _, t := range e.Type {
		if t.IsAny() {
			return true
		}
	}
	return false
}

// Accepts reports whether one of the declared types is the given tag.
func (e *Entry) Accepts(tag Tag) bool {
	for _, t := range e.Type {
		if t.Go == nil && t.Tag == tag {
			return true
		}
	}
	return false
}

// TypeName renders the declared types after prefix, e.g.
// TypeName(" of type ") is ` of type "string" or "number"`.
// It returns "" when no type is declared.
func (e *Entry) TypeName(prefix string) string {
	if len(e.Type) == 0 {
		return ""
	}
	quoted := make([]string, len(e.Type))
	for i, t := range e.Type {
		quoted[i] = fmt.Sprintf("%q", t.Name())
	}
	if len(quoted) == 1 {
		return prefix + quoted[0]
	}
	return prefix + strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

// exportAll lets enum values be structs with unexported fields.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// InEnum reports whether v is structurally equal to one of the enum values.
// Numbers compare by value regardless of their Go kind.
func (e *Entry) InEnum(v any) bool {
	for _, candidate := range e.Enum {
		if a, ok := ToFloat(v); ok {
			if b, ok := ToFloat(candidate); ok && a == b {
				return true
			}
			continue
		}
		if cmp.Equal(Normalize(candidate), v, exportAll) {
			return true
		}
	}
	return false
}

// Check validates the entry declaration itself, recursively.
func (e *Entry) Check() error {
	return e.check("")
}

func (e *Entry) check(path string) error {
	for _, t := range e.Type {
		if t.Go == nil && !t.Tag.Known() {
			return Usage(path, ErrUnsupportedType, "unsupported type tag %q", t.Tag)
		}
	}
	if e.Cast != nil {
		if len(e.Type) != 1 || e.Type[0].Go != nil ||
			(e.Type[0].Tag != TagBoolean && e.Type[0].Tag != TagNumber) {
			return Usage(path, ErrIllegalCast, "cast is only allowed on a single boolean or number type, not%s", e.TypeName(" "))
		}
	}
	if e.Min != nil && e.Max != nil && *e.Min > *e.Max {
		return Usage(path, ErrInvalidUsage, "min %v is greater than max %v", *e.Min, *e.Max)
	}
	if e.ValueScheme != nil && len(e.Tuple) > 0 {
		return Usage(path, ErrInvalidUsage, "value_scheme and tuple are mutually exclusive")
	}
	if e.ValueScheme != nil {
		if err := e.ValueScheme.check(join(path, "*")); err != nil {
			return err
		}
	}
	for i, item := range e.Tuple {
		if item == nil {
			return Usage(join(path, fmt.Sprint(i)), ErrInvalidUsage, "tuple entry is nil")
		}
		if err := item.check(join(path, fmt.Sprint(i))); err != nil {
			return err
		}
	}
	return nil
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// Of normalizes a bare type declaration or an options object into an Entry.
// Accepted inputs: Tag, string, []Tag, []string, Type, []Type, reflect.Type,
// *Entry, Entry and map[string]any (decoded like a definition, without hooks).
func Of(spec any) (*Entry, error) {
	var e *Entry
	switch s := spec.(type) {
	case *Entry:
		e = s
	case Entry:
		e = &s
	case Tag:
		e = &Entry{Type: []Type{T(s)}}
	case string:
		e = &Entry{Type: []Type{T(Tag(s))}}
	case []Tag:
		e = &Entry{Type: make([]Type, len(s))}
		for i, tag := range s {
			e.Type[i] = T(tag)
		}
	case []string:
		e = &Entry{Type: make([]Type, len(s))}
		for i, tag := range s {
			e.Type[i] = T(Tag(tag))
		}
	case Type:
		e = &Entry{Type: []Type{s}}
	case []Type:
		e = &Entry{Type: s}
	case reflect.Type:
		e = &Entry{Type: []Type{{Go: s}}}
	case map[string]any:
		var err error
		e, err = decodeEntryMap(s, nil, "")
		if err != nil {
			return nil, err
		}
	case nil:
		return nil, Usage("", ErrInvalidUsage, "nil entry declaration")
	default:
		return nil, Usage("", ErrInvalidUsage, "cannot build an entry from %T", spec)
	}
	if err := e.Check(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustOf is Of that panics on an invalid declaration.
func MustOf(spec any) *Entry {
	e, err := Of(spec)
	if err != nil {
		panic(err)
	}
	return e
}
