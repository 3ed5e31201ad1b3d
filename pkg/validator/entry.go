package validator

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/vali/pkg/cast"
	"github.com/aretw0/vali/pkg/schema"
)

type match int

const (
	mismatch match = iota
	matched
	empty
)

// validateEntry runs the per-field pipeline: cast, preprocess, type check,
// default, charset, enum, verify and postprocess. It returns the rewritten
// value; the caller stores it back into the parent.
func (v *Validator) validateEntry(e *schema.Entry, key string, value, parent any) (any, *failure, error) {
	path := v.path(key)

	if e.Cast != nil {
		if s, ok := value.(string); ok {
			out, err := v.cast(e, path, s)
			if err != nil {
				return nil, nil, err
			}
			value = out
		}
	}

	if e.Preprocess != nil {
		if out, ok := e.Preprocess(value, parent, key); ok {
			value = schema.Normalize(out)
		}
	}

	nullable := value == nil && !e.Default.Available() && !e.IsRequired(parent)
	if !e.IsAny() && !nullable {
		out, fail, err := v.checkTypes(e, key, value)
		if err != nil || fail != nil {
			return nil, fail, err
		}
		value = out
		if fail := v.checkEmpty(e, key, value, parent); fail != nil {
			return nil, fail, nil
		}
	}

	if value == nil && e.Default.IsSet() && !e.Accepts(schema.TagNull) && !e.Accepts(schema.TagUndefined) {
		value = schema.Normalize(e.Default.Resolve(parent))
		v.logger.Debug("default materialized", "field", path)
	}

	if !nullable {
		if e.Charset != nil {
			if s, ok := value.(string); ok && !e.Charset.MatchString(s) {
				return nil, v.fail(key, "Parameter %q contains characters outside the allowed charset %q.", path, e.Charset.String()), nil
			}
		}
		if len(e.Enum) > 0 && !e.InEnum(value) {
			return nil, v.fail(key, "Parameter %q must be one of the following enumerated values [%s].", path, enumList(e.Enum)), nil
		}
	}

	if e.Verify != nil {
		if err := e.Verify(value, parent, key); err != nil {
			return nil, v.fail(key, "%s", err.Error()), nil
		}
	}

	if e.Postprocess != nil {
		if out, ok := e.Postprocess(value, parent, key); ok {
			value = out
		}
	}
	return value, nil, nil
}

func (v *Validator) cast(e *schema.Entry, path, s string) (any, error) {
	if len(e.Type) != 1 || e.Type[0].Go != nil {
		return nil, schema.Usage(path, schema.ErrIllegalCast, "cast is only allowed on a single boolean or number type")
	}
	var (
		out any
		ok  bool
	)
	switch e.Type[0].Tag {
	case schema.TagBoolean:
		out, ok = cast.Boolean(s, *e.Cast)
	case schema.TagNumber:
		out, ok = cast.Number(s, *e.Cast)
	default:
		return nil, schema.Usage(path, schema.ErrIllegalCast, "cast is not allowed on type %q", e.Type[0].Tag)
	}
	if !ok {
		return s, nil
	}
	return out, nil
}

// checkTypes tries each declared type in order. The first type that matches
// the value's shape decides the outcome, including nested failures.
func (v *Validator) checkTypes(e *schema.Entry, key string, value any) (any, *failure, error) {
	for _, t := range e.Type {
		m, out, fail, err := v.checkType(e, t, key, value)
		if err != nil {
			return nil, nil, err
		}
		switch m {
		case matched:
			return out, fail, nil
		case empty:
			return value, nil, nil
		}
	}
	return nil, v.fail(key, "Parameter %q has an invalid type %q, the valid type is %s.",
		v.path(key), schema.KindOf(value), e.TypeName("")), nil
}

func (v *Validator) checkType(e *schema.Entry, t schema.Type, key string, value any) (match, any, *failure, error) {
	path := v.path(key)
	if t.Go != nil {
		if out, ok := t.Coerce(value); ok {
			return matched, out, nil, nil
		}
		return mismatch, nil, nil, nil
	}

	switch t.Tag {
	case schema.TagAny, "":
		return matched, value, nil, nil

	case schema.TagNull, schema.TagUndefined:
		if value == nil {
			return matched, nil, nil, nil
		}

	case schema.TagBoolean:
		if _, ok := value.(bool); ok {
			return matched, value, nil, nil
		}

	case schema.TagString:
		s, ok := value.(string)
		if !ok {
			return mismatch, nil, nil, nil
		}
		if s == "" && !e.AllowsEmpty() {
			return empty, value, nil, nil
		}
		n := float64(utf8.RuneCountInString(s))
		if e.Min != nil && n < *e.Min {
			return matched, nil, v.fail(key, "Parameter %q has an invalid string length %v, the minimum length is %v.", path, n, *e.Min), nil
		}
		if e.Max != nil && n > *e.Max {
			return matched, nil, v.fail(key, "Parameter %q has an invalid string length %v, the maximum length is %v.", path, n, *e.Max), nil
		}
		return matched, value, nil, nil

	case schema.TagNumber:
		f, ok := schema.ToFloat(value)
		if !ok {
			return mismatch, nil, nil, nil
		}
		if math.IsNaN(f) && !e.AllowsEmpty() {
			return empty, value, nil, nil
		}
		if e.Min != nil && f < *e.Min {
			return matched, nil, v.fail(key, "Parameter %q has an invalid number %v, the minimum is %v.", path, f, *e.Min), nil
		}
		if e.Max != nil && f > *e.Max {
			return matched, nil, v.fail(key, "Parameter %q has an invalid number %v, the maximum is %v.", path, f, *e.Max), nil
		}
		return matched, value, nil, nil

	case schema.TagArray:
		items, ok := value.([]any)
		if !ok {
			return mismatch, nil, nil, nil
		}
		if len(items) == 0 && !e.AllowsEmpty() {
			return empty, value, nil, nil
		}
		n := float64(len(items))
		if e.Min != nil && n < *e.Min {
			return matched, nil, v.fail(key, "Parameter %q has an invalid array length %v, the minimum length is %v.", path, n, *e.Min), nil
		}
		if e.Max != nil && n > *e.Max {
			return matched, nil, v.fail(key, "Parameter %q has an invalid array length %v, the maximum length is %v.", path, n, *e.Max), nil
		}
		if e.Scheme == nil && e.ValueScheme == nil && len(e.Tuple) == 0 {
			return matched, value, nil, nil
		}
		out, fail, err := v.child(key, e).validate(items)
		return matched, out, fail, err

	case schema.TagObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return mismatch, nil, nil, nil
		}
		if e.Scheme == nil && e.ValueScheme == nil && len(e.Tuple) == 0 {
			return matched, value, nil, nil
		}
		out, fail, err := v.child(key, e).validate(obj)
		return matched, out, fail, err

	default:
		return mismatch, nil, nil, schema.Usage(path, schema.ErrUnsupportedType, "unsupported type tag %q", t.Tag)
	}
	return mismatch, nil, nil, nil
}

// checkEmpty rejects "", [] and NaN when the entry disallows them, but only
// for required fields whose default is not itself the empty string.
func (v *Validator) checkEmpty(e *schema.Entry, key string, value, parent any) *failure {
	if e.AllowsEmpty() || !e.IsRequired(parent) || e.Default.Equals("") {
		return nil
	}
	path := v.path(key)
	switch x := value.(type) {
	case string:
		if x == "" {
			return v.fail(key, "Parameter %q is an empty string.", path)
		}
	case []any:
		if len(x) == 0 {
			return v.fail(key, "Parameter %q is an empty array.", path)
		}
	default:
		if f, ok := schema.ToFloat(value); ok && math.IsNaN(f) {
			return v.fail(key, "Parameter %q is not a number.", path)
		}
	}
	return nil
}

func enumList(values []any) string {
	parts := make([]string, len(values))
	for i, value := range values {
		if s, ok := value.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
		} else {
			parts[i] = fmt.Sprint(value)
		}
	}
	return strings.Join(parts, ", ")
}
