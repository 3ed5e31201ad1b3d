package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Tag names a built-in value type.
type Tag string

const (
	TagString    Tag = "string"
	TagNumber    Tag = "number"
	TagBoolean   Tag = "boolean"
	TagObject    Tag = "object"
	TagArray     Tag = "array"
	TagNull      Tag = "null"
	TagUndefined Tag = "undefined"
	TagAny       Tag = "any"
)

// Known reports whether t is one of the built-in tags.
func (t Tag) Known() bool {
	switch t {
	case TagString, TagNumber, TagBoolean, TagObject, TagArray, TagNull, TagUndefined, TagAny:
		return true
	}
	return false
}

// Type is a single type constraint: either a built-in tag or a Go type.
// Go types are matched by assignability, so an interface type accepts every
// value implementing it.
type Type struct {
	Tag Tag
	Go  reflect.Type
}

// T returns the Type for a built-in tag.
func T(tag Tag) Type { return Type{Tag: tag} }

// Instance returns a Type matching values assignable to V.
func Instance[V any]() Type { return Type{Go: reflect.TypeFor[V]()} }

// Name renders the type for messages: the tag, or the Go type name.
func (t Type) Name() string {
	if t.Go != nil {
		if name := t.Go.Name(); name != "" {
			return name
		}
		return t.Go.String()
	}
	return string(t.Tag)
}

// IsAny reports whether the type accepts everything.
func (t Type) IsAny() bool { return t.Go == nil && (t.Tag == TagAny || t.Tag == "") }

// MatchGo reports whether value satisfies a Go type constraint.
func (t Type) MatchGo(value any) bool {
	_, ok := t.Coerce(value)
	return ok
}

// Coerce returns value as an instance of the Go type. Validation works on
// normalized data, so a []any or map[string]any is rebuilt into the slice,
// array or map type when every element fits; other values must be
// assignable as is.
func (t Type) Coerce(value any) (any, bool) {
	if t.Go == nil || value == nil {
		return nil, false
	}
	rv, ok := rebuild(value, t.Go)
	if !ok {
		return nil, false
	}
	return rv.Interface(), true
}

func rebuild(value any, typ reflect.Type) (reflect.Value, bool) {
	if value == nil {
		switch typ.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			return reflect.Zero(typ), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(typ) {
		return rv, true
	}

	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		items, ok := value.([]any)
		if !ok {
			return reflect.Value{}, false
		}
		var out reflect.Value
		if typ.Kind() == reflect.Slice {
			out = reflect.MakeSlice(typ, len(items), len(items))
		} else {
			if len(items) != typ.Len() {
				return reflect.Value{}, false
			}
			out = reflect.New(typ).Elem()
		}
		for i, item := range items {
			elem, ok := rebuild(item, typ.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.Index(i).Set(elem)
		}
		return out, true

	case reflect.Map:
		obj, ok := value.(map[string]any)
		if !ok || typ.Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		out := reflect.MakeMapWithSize(typ, len(obj))
		for k, item := range obj {
			elem, ok := rebuild(item, typ.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(typ.Key()), elem)
		}
		return out, true
	}
	return reflect.Value{}, false
}

func (t Type) String() string { return t.Name() }

// IsNumber reports whether v is a numeric value: any Go integer or float
// kind, or a json.Number.
func IsNumber(v any) bool {
	_, ok := ToFloat(v)
	return ok
}

// ToFloat widens a numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

// KindOf names the built-in tag a value would satisfy, for mismatch messages.
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return string(TagNull)
	case string:
		return string(TagString)
	case bool:
		return string(TagBoolean)
	case map[string]any:
		return string(TagObject)
	case []any:
		return string(TagArray)
	}
	if IsNumber(v) {
		return string(TagNumber)
	}
	return fmt.Sprintf("%T", v)
}
