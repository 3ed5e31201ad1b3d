package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vali/pkg/cast"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

func ptr(f float64) *float64 { return &f }

func TestValidate_RequiredMissing(t *testing.T) {
	s := schema.MustScheme(schema.Def("name", schema.TagString))

	res, err := validator.Validate(map[string]any{}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, map[string]string{
		"name": `Parameter "name" should be a defined value of type "string".`,
	}, res.InvalidFields)
	assert.Equal(t, `Parameter "name" should be a defined value of type "string".`, res.Error)
}

func TestValidate_CastNumber(t *testing.T) {
	s := schema.MustScheme(schema.Def("age", &schema.Entry{
		Type: []schema.Type{schema.T(schema.TagNumber)},
		Cast: &cast.Options{},
	}))

	res, err := validator.Validate(map[string]any{"age": "42"}, validator.WithScheme(s))
	require.NoError(t, err)
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, map[string]any{"age": 42.0}, res.Data)
}

func TestValidate_CastBoolean(t *testing.T) {
	s := schema.MustScheme(schema.Def("on", &schema.Entry{
		Type: []schema.Type{schema.T(schema.TagBoolean)},
		Cast: &cast.Options{},
	}))

	res, err := validator.Validate(map[string]any{"on": "TRUE"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"on": true}, res.Data)
}

func TestValidate_StrictCastDeclineFailsTypeCheck(t *testing.T) {
	s := schema.MustScheme(schema.Def("n", &schema.Entry{
		Type: []schema.Type{schema.T(schema.TagNumber)},
		Cast: &cast.Options{Strict: true},
	}))

	res, err := validator.Validate(map[string]any{"n": "1e3"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "n" has an invalid type "string", the valid type is "number".`, res.InvalidFields["n"])
}

func TestValidate_Enum(t *testing.T) {
	s := schema.MustScheme(schema.Def("role", &schema.Entry{
		Type: []schema.Type{schema.T(schema.TagString)},
		Enum: []any{"admin", "user"},
	}))

	res, err := validator.Validate(map[string]any{"role": "root"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "role" must be one of the following enumerated values ["admin", "user"].`, res.InvalidFields["role"])

	res, err = validator.Validate(map[string]any{"role": "user"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestValidate_NestedParentPath(t *testing.T) {
	inner := schema.MustScheme(schema.Def("id", schema.TagNumber))
	s := schema.MustScheme(schema.Def("outer", &schema.Entry{
		Type:   []schema.Type{schema.T(schema.TagObject)},
		Scheme: inner,
	}))

	res, err := validator.Validate(map[string]any{"outer": map[string]any{"id": "x"}}, validator.WithScheme(s))
	require.NoError(t, err)
	require.Contains(t, res.InvalidFields, "outer.id")
	assert.Equal(t, `Parameter "outer.id" has an invalid type "string", the valid type is "number".`, res.InvalidFields["outer.id"])
}

func TestValidate_WithParent(t *testing.T) {
	s := schema.MustScheme(schema.Def("id", schema.TagNumber))

	res, err := validator.Validate(map[string]any{}, validator.WithScheme(s), validator.WithParent("outer"))
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "outer.id")
}

func TestValidate_StrictUnknownKey(t *testing.T) {
	s := schema.MustScheme(schema.Def("a", schema.TagNumber))

	res, err := validator.Validate(map[string]any{"a": 1, "b": 2}, validator.WithScheme(s), validator.Strict())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": `Attribute "b" is not a valid attribute name.`}, res.InvalidFields)

	res, err = validator.Validate(map[string]any{"a": 1, "b": 2}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, res.Data)
}

func TestValidate_StrictAcceptsAliases(t *testing.T) {
	s := schema.MustScheme(schema.Def("name", &schema.Entry{
		Type:  []schema.Type{schema.T(schema.TagString)},
		Alias: []string{"full_name"},
	}))

	res, err := validator.Validate(map[string]any{"full_name": "Ada"}, validator.WithScheme(s), validator.Strict())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada"}, res.Data)
}

func TestValidate_AliasPolicy(t *testing.T) {
	s := schema.MustScheme(schema.Def("name", &schema.Entry{
		Type:  []schema.Type{schema.T(schema.TagString)},
		Alias: []string{"n", "nm"},
	}))

	tests := []struct {
		name  string
		input map[string]any
		want  map[string]any
	}{
		{"alias only", map[string]any{"nm": "b"}, map[string]any{"name": "b"}},
		{"first alias wins", map[string]any{"n": "a", "nm": "b"}, map[string]any{"name": "a"}},
		{"canonical wins", map[string]any{"name": "c", "n": "a"}, map[string]any{"name": "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := validator.Validate(tt.input, validator.WithScheme(s))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Data)
		})
	}
}

func TestValidate_DefaultsAndRequirements(t *testing.T) {
	s := schema.MustScheme(
		schema.Def("age", &schema.Entry{
			Type:    []schema.Type{schema.T(schema.TagNumber)},
			Default: schema.Literal(18),
		}),
		schema.Def("slug", &schema.Entry{
			Type: []schema.Type{schema.T(schema.TagString)},
			Default: schema.Computed(func(parent any) any {
				return strings.ToLower(parent.(map[string]any)["title"].(string))
			}),
		}),
		schema.Def("title", schema.TagString),
		schema.Def("note", &schema.Entry{
			Type:     []schema.Type{schema.T(schema.TagString)},
			Required: schema.Never,
		}),
		schema.Def("reason", &schema.Entry{
			Type: []schema.Type{schema.T(schema.TagString)},
			Required: schema.When(func(parent any) bool {
				return parent.(map[string]any)["title"] == "Closed"
			}),
		}),
	)

	res, err := validator.Validate(map[string]any{"title": "Open"}, validator.WithScheme(s))
	require.NoError(t, err)
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, map[string]any{"title": "Open", "age": 18, "slug": "open"}, res.Data)

	res, err = validator.Validate(map[string]any{"title": "Closed"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "reason")
}

func TestValidate_NullableWhenOptional(t *testing.T) {
	s := schema.MustScheme(schema.Def("note", &schema.Entry{
		Type:     []schema.Type{schema.T(schema.TagString)},
		Required: schema.Never,
		Enum:     []any{"a"},
	}))

	res, err := validator.Validate(map[string]any{"note": nil}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK(), res.Error)

	required := schema.MustScheme(schema.Def("note", schema.TagString))
	res, err = validator.Validate(map[string]any{"note": nil}, validator.WithScheme(required))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "note" has an invalid type "null", the valid type is "string".`, res.InvalidFields["note"])
}

func TestValidate_Union(t *testing.T) {
	s := schema.MustScheme(schema.Def("v", []schema.Tag{schema.TagString, schema.TagNumber}))

	for _, in := range []any{"x", 3} {
		res, err := validator.Validate(map[string]any{"v": in}, validator.WithScheme(s))
		require.NoError(t, err)
		assert.True(t, res.OK(), res.Error)
	}

	res, err := validator.Validate(map[string]any{"v": true}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "v" has an invalid type "boolean", the valid type is "string" or "number".`, res.InvalidFields["v"])
}

func TestValidate_UnionFirstMatchRecurses(t *testing.T) {
	inner := schema.MustScheme(schema.Def("id", schema.TagNumber))
	s := schema.MustScheme(schema.Def("ref", &schema.Entry{
		Type:   []schema.Type{schema.T(schema.TagString), schema.T(schema.TagObject)},
		Scheme: inner,
	}))

	res, err := validator.Validate(map[string]any{"ref": map[string]any{}}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "ref.id")

	res, err = validator.Validate(map[string]any{"ref": "abc"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestValidate_Bounds(t *testing.T) {
	s := schema.MustScheme(
		schema.Def("name", &schema.Entry{Type: []schema.Type{schema.T(schema.TagString)}, Min: ptr(2), Max: ptr(4)}),
		schema.Def("n", &schema.Entry{Type: []schema.Type{schema.T(schema.TagNumber)}, Min: ptr(0), Max: ptr(10), Required: schema.Never}),
	)

	tests := []struct {
		input map[string]any
		field string
		want  string
	}{
		{map[string]any{"name": "a"}, "name", `Parameter "name" has an invalid string length 1, the minimum length is 2.`},
		{map[string]any{"name": "abcde"}, "name", `Parameter "name" has an invalid string length 5, the maximum length is 4.`},
		{map[string]any{"name": "ab", "n": -1}, "n", `Parameter "n" has an invalid number -1, the minimum is 0.`},
		{map[string]any{"name": "ab", "n": 11.5}, "n", `Parameter "n" has an invalid number 11.5, the maximum is 10.`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			res, err := validator.Validate(tt.input, validator.WithScheme(s))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.InvalidFields[tt.field])
		})
	}

	res, err := validator.Validate(map[string]any{"name": "äöü"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK(), "length counts runes")
}

func TestValidate_AllowEmpty(t *testing.T) {
	no := false
	s := schema.MustScheme(
		schema.Def("name", &schema.Entry{Type: []schema.Type{schema.T(schema.TagString)}, AllowEmpty: &no}),
		schema.Def("tags", &schema.Entry{
			Type:        []schema.Type{schema.T(schema.TagArray)},
			AllowEmpty:  &no,
			ValueScheme: schema.MustOf(schema.TagString),
			Required:    schema.Never,
		}),
	)

	res, err := validator.Validate(map[string]any{"name": ""}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "name" is an empty string.`, res.InvalidFields["name"])

	res, err = validator.Validate(map[string]any{"name": "x", "tags": []any{}}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK(), "optional fields accept empty values")

	optional := schema.MustScheme(schema.Def("name", &schema.Entry{
		Type:       []schema.Type{schema.T(schema.TagString)},
		AllowEmpty: &no,
		Default:    schema.Literal(""),
	}))
	res, err = validator.Validate(map[string]any{"name": ""}, validator.WithScheme(optional))
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestValidate_Dictionary(t *testing.T) {
	res, err := validator.Validate(
		map[string]any{"a": "1", "b": 2},
		validator.WithValueScheme(schema.MustOf(schema.TagNumber)),
	)
	require.NoError(t, err)
	assert.Equal(t, `Parameter "a" has an invalid type "string", the valid type is "number".`, res.InvalidFields["a"])
}

func TestValidate_ArrayValueScheme(t *testing.T) {
	s := schema.MustScheme(schema.Def("items", &schema.Entry{
		Type:        []schema.Type{schema.T(schema.TagArray)},
		ValueScheme: schema.MustOf(schema.TagNumber),
	}))

	res, err := validator.Validate(map[string]any{"items": []any{1, 2, 3, "x"}}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "items.3")
}

func TestValidate_Tuple(t *testing.T) {
	point := []*schema.Entry{
		schema.MustOf(schema.TagNumber),
		schema.MustOf(schema.TagNumber),
		{Type: []schema.Type{schema.T(schema.TagString)}, Default: schema.Literal("cm")},
	}
	s := schema.MustScheme(schema.Def("point", &schema.Entry{
		Type:  []schema.Type{schema.T(schema.TagArray)},
		Tuple: point,
	}))

	res, err := validator.Validate(map[string]any{"point": []any{1, 2}}, validator.WithScheme(s))
	require.NoError(t, err)
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, map[string]any{"point": []any{1, 2, "cm"}}, res.Data)

	res, err = validator.Validate(map[string]any{"point": []any{1, "y"}}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "point.1")

	res, err = validator.Validate(map[string]any{"point": []any{1, 2, "m", true}}, validator.WithScheme(s), validator.Strict())
	require.NoError(t, err)
	assert.Equal(t, `Attribute "point.3" is not a valid attribute name.`, res.InvalidFields["point.3"])
}

func TestValidate_TopLevelTuple(t *testing.T) {
	res, err := validator.Validate([]any{"a", 1}, validator.WithTuple(schema.MustOf(schema.TagString), schema.MustOf(schema.TagNumber)))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", 1}, res.Data)
}

func TestValidate_Hooks(t *testing.T) {
	s := schema.MustScheme(schema.Def("email", &schema.Entry{
		Type: []schema.Type{schema.T(schema.TagString)},
		Preprocess: func(value, _ any, _ string) (any, bool) {
			s, ok := value.(string)
			return strings.TrimSpace(s), ok
		},
		Verify: func(value, _ any, key string) error {
			if !strings.Contains(value.(string), "@") {
				return fmt.Errorf("Parameter %q is not an email address.", key)
			}
			return nil
		},
		Postprocess: func(value, _ any, _ string) (any, bool) {
			return strings.ToLower(value.(string)), true
		},
	}))

	res, err := validator.Validate(map[string]any{"email": "  Ada@Example.org "}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "ada@example.org"}, res.Data)

	res, err = validator.Validate(map[string]any{"email": "nope"}, validator.WithScheme(s), validator.WithErrorPrefix("Bad input: "))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "email" is not an email address.`, res.InvalidFields["email"])
	assert.Equal(t, `Bad input: Parameter "email" is not an email address.`, res.Error)
}

func TestValidate_Charset(t *testing.T) {
	cs, err := schema.Charset(`[a-z0-9_]+`)
	require.NoError(t, err)
	s := schema.MustScheme(schema.Def("slug", &schema.Entry{Type: []schema.Type{schema.T(schema.TagString)}, Charset: cs}))

	res, err := validator.Validate(map[string]any{"slug": "ok_1"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = validator.Validate(map[string]any{"slug": "not ok"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "slug")
}

type stringer interface{ String() string }

type named string

func (n named) String() string { return string(n) }

func TestValidate_GoType(t *testing.T) {
	s := schema.MustScheme(schema.Def("v", schema.Instance[stringer]()))

	res, err := validator.Validate(map[string]any{"v": named("x")}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = validator.Validate(map[string]any{"v": 1}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "v" has an invalid type "number", the valid type is "stringer".`, res.InvalidFields["v"])
}

func TestValidate_Throw(t *testing.T) {
	s := schema.MustScheme(schema.Def("name", schema.TagString))

	res, err := validator.Validate(map[string]any{}, validator.WithScheme(s), validator.WithThrow(true))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, validator.ErrValidation))

	var verr *validator.ValidatorError
	require.ErrorAs(t, err, &verr)
	path, _ := verr.Field()
	assert.Equal(t, "name", path)
}

func TestValidate_InvalidUsage(t *testing.T) {
	_, err := validator.Validate([]any{1})
	assert.ErrorIs(t, err, validator.ErrInvalidUsage)

	_, err = validator.Validate(map[string]any{})
	assert.ErrorIs(t, err, validator.ErrInvalidUsage)

	res, err := validator.Validate(42)
	require.NoError(t, err)
	assert.Equal(t, 42, res.Data)

	s := schema.MustScheme(schema.Def("o", &schema.Entry{
		Type:  []schema.Type{schema.T(schema.TagObject)},
		Tuple: []*schema.Entry{schema.MustOf(schema.TagNumber)},
	}))
	_, err = validator.Validate(map[string]any{"o": map[string]any{}}, validator.WithScheme(s), validator.WithThrow(true))
	var usage *validator.InvalidUsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, "o", usage.Path)
}

func TestValidate_MaxDepth(t *testing.T) {
	leaf := schema.MustScheme(schema.Def("x", schema.TagAny))
	mid := schema.MustScheme(schema.Def("b", &schema.Entry{Type: []schema.Type{schema.T(schema.TagObject)}, Scheme: leaf}))
	top := schema.MustScheme(schema.Def("a", &schema.Entry{Type: []schema.Type{schema.T(schema.TagObject)}, Scheme: mid}))
	data := map[string]any{"a": map[string]any{"b": map[string]any{"x": 1}}}

	_, err := validator.Validate(data, validator.WithScheme(top), validator.WithMaxDepth(1))
	assert.ErrorIs(t, err, validator.ErrMaxDepth)
	assert.ErrorIs(t, err, validator.ErrInvalidUsage)

	res, err := validator.Validate(data, validator.WithScheme(top))
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	s := schema.MustScheme(
		schema.Def("name", &schema.Entry{Type: []schema.Type{schema.T(schema.TagString)}, Alias: []string{"n"}}),
		schema.Def("age", &schema.Entry{Type: []schema.Type{schema.T(schema.TagNumber)}, Default: schema.Literal(1)}),
	)
	input := map[string]any{"n": "Ada"}

	res, err := validator.Validate(input, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada", "age": 1}, res.Data)
	assert.Equal(t, map[string]any{"n": "Ada"}, input)
}

func TestValidate_Idempotent(t *testing.T) {
	s := schema.MustScheme(
		schema.Def("name", &schema.Entry{Type: []schema.Type{schema.T(schema.TagString)}, Alias: []string{"n"}}),
		schema.Def("age", &schema.Entry{Type: []schema.Type{schema.T(schema.TagNumber)}, Cast: &cast.Options{}, Default: schema.Literal(1)}),
		schema.Def("tags", &schema.Entry{Type: []schema.Type{schema.T(schema.TagArray)}, ValueScheme: schema.MustOf(schema.TagString), Default: schema.Literal([]string{})}),
	)

	first, err := validator.Validate(map[string]any{"n": "Ada", "age": "7"}, validator.WithScheme(s))
	require.NoError(t, err)
	require.True(t, first.OK(), first.Error)

	second, err := validator.Validate(first.Data, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
}

func TestValidate_TypedInputIsNormalized(t *testing.T) {
	s := schema.MustScheme(schema.Def("tags", &schema.Entry{
		Type:        []schema.Type{schema.T(schema.TagArray)},
		ValueScheme: schema.MustOf(schema.TagString),
	}))

	res, err := validator.Validate(map[string]any{"tags": []string{"a", "b"}}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": []any{"a", "b"}}, res.Data)
}

type tagList []string

func TestValidate_GoContainerTypes(t *testing.T) {
	s := schema.MustScheme(
		schema.Def("tags", schema.Instance[tagList]()),
		schema.Def("counts", schema.Instance[map[string]int]()),
	)

	res, err := validator.Validate(map[string]any{
		"tags":   tagList{"a"},
		"counts": map[string]int{"a": 1},
	}, validator.WithScheme(s))
	require.NoError(t, err)
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, map[string]any{
		"tags":   tagList{"a"},
		"counts": map[string]int{"a": 1},
	}, res.Data)

	res, err = validator.Validate(map[string]any{
		"tags":   []any{"a", 2},
		"counts": map[string]int{"a": 1},
	}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "tags" has an invalid type "array", the valid type is "tagList".`, res.InvalidFields["tags"])
}

type token struct{ id int }

func TestValidate_EnumWithUnexportedFields(t *testing.T) {
	s := schema.MustScheme(schema.Def("t", &schema.Entry{Enum: []any{token{1}}}))

	var res *validator.Result
	var err error
	require.NotPanics(t, func() {
		res, err = validator.Validate(map[string]any{"t": token{2}}, validator.WithScheme(s))
	})
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "t")

	res, err = validator.Validate(map[string]any{"t": token{1}}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.True(t, res.OK())
}
