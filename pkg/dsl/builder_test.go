package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

func TestBuilder_SimpleScheme(t *testing.T) {
	// 1. Build the scheme using DSL
	b := New()
	b.Add("name").Type(schema.TagString).Min(1).Alias("full_name")
	b.Add("age").Type(schema.TagNumber).Cast().Default(18)
	b.Add("role").Type(schema.TagString).Enum("admin", "user").Optional()

	s, err := b.Build()
	require.NoError(t, err)

	// 2. Field order follows Add
	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "age", "role"}, names)

	// 3. Validate against it
	res, err := validator.Validate(map[string]any{"full_name": "Ada", "age": "36"}, validator.WithScheme(s))
	require.NoError(t, err)
	require.True(t, res.OK(), res.Error)
	assert.Equal(t, map[string]any{"name": "Ada", "age": 36.0}, res.Data)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	first := b.Add("a")
	assert.Same(t, first, b.Add("a"))
}

func TestBuilder_Nested(t *testing.T) {
	s := Fields(
		F("address", Object(Fields(
			F("zip", String().Charset(`[0-9]{5}`)),
		))),
		F("tags", ArrayOf(String()).Default([]string{})),
		F("scores", DictOf(Number().Between(0, 10))),
		F("point", Tuple(Number(), Number())),
	).MustBuild()

	address, _ := s.Get("address")
	require.NotNil(t, address.Scheme)
	tags, _ := s.Get("tags")
	assert.True(t, tags.ValueScheme.Accepts(schema.TagString))
	point, _ := s.Get("point")
	assert.Len(t, point.Tuple, 2)

	res, err := validator.Validate(map[string]any{
		"address": map[string]any{"zip": "1234x"},
		"scores":  map[string]any{},
		"point":   []any{1, 2},
	}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Contains(t, res.InvalidFields, "address.zip")

	res, err = validator.Validate(map[string]any{
		"address": map[string]any{"zip": "12345"},
		"scores":  map[string]any{"a": 11},
		"point":   []any{1, 2},
	}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "scores.a" has an invalid number 11, the maximum is 10.`, res.InvalidFields["scores.a"])
}

func TestBuilder_Errors(t *testing.T) {
	_, err := Fields(F("a", String().Charset("("))).Build()
	assert.Error(t, err)

	_, err = Fields(F("a", Number().VerifyExpr("value <"))).Build()
	assert.Error(t, err)

	_, err = Fields(F("a", String().Cast())).Build()
	assert.ErrorIs(t, err, schema.ErrIllegalCast)

	_, err = Fields(F("a", Number().Min(3).Max(1))).Build()
	assert.ErrorIs(t, err, schema.ErrInvalidUsage)
}

func TestBuilder_VerifyExprAndNull(t *testing.T) {
	s := Fields(
		F("password", String().VerifyExpr("len(value) >= 8")),
		F("nickname", String().OrNull().Default(nil)),
	).MustBuild()

	res, err := validator.Validate(map[string]any{"password": "short"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "password" does not satisfy "len(value) >= 8".`, res.InvalidFields["password"])

	res, err = validator.Validate(map[string]any{"password": "long enough"}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"password": "long enough", "nickname": nil}, res.Data)
}
