package schema_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/vali/pkg/schema"
)

type hookTable struct {
	verify    map[string]schema.VerifyFunc
	transform map[string]schema.TransformFunc
}

func (h hookTable) LookupVerify(name string) (schema.VerifyFunc, bool) {
	fn, ok := h.verify[name]
	return fn, ok
}

func (h hookTable) LookupTransform(name string) (schema.TransformFunc, bool) {
	fn, ok := h.transform[name]
	return fn, ok
}

var testHooks = hookTable{
	verify: map[string]schema.VerifyFunc{
		"even": func(value, _ any, key string) error {
			if n, _ := schema.ToFloat(value); int(n)%2 != 0 {
				return fmt.Errorf("Parameter %q must be even.", key)
			}
			return nil
		},
	},
	transform: map[string]schema.TransformFunc{
		"trim": func(value, _ any, _ string) (any, bool) {
			s, ok := value.(string)
			return strings.TrimSpace(s), ok
		},
	},
}

const userDefinition = `
name:
  type: string
  alias: [full_name]
  preprocess: trim
  min: 1
age:
  type: number
  cast: true
  default: 18
role:
  type: string
  enum: [admin, user]
  required: false
address:
  scheme:
    zip: string
    city: string
point:
  tuple: [number, number]
tags:
  type: array
  value_scheme: string
  def: []
count:
  type: number
  verify: even
  verify_expr: value < 100
`

func TestParseDefinition(t *testing.T) {
	s, err := schema.ParseDefinition([]byte(userDefinition), testHooks)
	require.NoError(t, err)

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "age", "role", "address", "point", "tags", "count"}, names)

	name, _ := s.Get("name")
	assert.Equal(t, []string{"full_name"}, name.Alias)
	require.NotNil(t, name.Preprocess)
	out, _ := name.Preprocess("  x ", nil, "name")
	assert.Equal(t, "x", out)

	age, _ := s.Get("age")
	require.NotNil(t, age.Cast)
	assert.Equal(t, 18, age.Default.Value())

	role, _ := s.Get("role")
	assert.True(t, role.Required.IsNever())
	assert.Equal(t, []any{"admin", "user"}, role.Enum)

	address, _ := s.Get("address")
	assert.True(t, address.Accepts(schema.TagObject))
	require.NotNil(t, address.Scheme)
	assert.Equal(t, "zip", address.Scheme.Fields()[0].Name)

	point, _ := s.Get("point")
	assert.True(t, point.Accepts(schema.TagArray))
	assert.Len(t, point.Tuple, 2)

	tags, _ := s.Get("tags")
	assert.True(t, tags.Default.IsSet())
	assert.True(t, tags.ValueScheme.Accepts(schema.TagString))

	count, _ := s.Get("count")
	require.NotNil(t, count.Verify)
	assert.NoError(t, count.Verify(4, nil, "count"))
	assert.EqualError(t, count.Verify(3, nil, "count"), `Parameter "count" must be even.`)
	assert.EqualError(t, count.Verify(120, nil, "count"), `Parameter "count" does not satisfy "value < 100".`)
}

func TestParseDefinition_JSON(t *testing.T) {
	var s schema.Scheme
	err := json.Unmarshal([]byte(`{"z": "string", "a": {"type": ["string", "null"], "required": true}}`), &s)
	require.NoError(t, err)

	assert.Equal(t, "z", s.Fields()[0].Name)
	a, _ := s.Get("a")
	assert.Equal(t, ` of type "string" or "null"`, a.TypeName(" of type "))
}

func TestParseDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown option", "a: {type: string, colour: red}", schema.ErrInvalidDefinition},
		{"unknown hook", "a: {type: string, verify: missing}", schema.ErrUnknownHook},
		{"bad expression", "a: {type: number, verify_expr: 'value <'}", schema.ErrInvalidDefinition},
		{"illegal cast", "a: {type: string, cast: true}", schema.ErrIllegalCast},
		{"unsupported tag", "a: date", schema.ErrUnsupportedType},
		{"not a mapping", "- a", schema.ErrInvalidDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseDefinition([]byte(tt.doc), testHooks)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseEntryDefinition(t *testing.T) {
	e, err := schema.ParseEntryDefinition([]byte("{type: number, cast: {strict: true}, min: 0}"), nil)
	require.NoError(t, err)
	assert.True(t, e.Cast.Strict)
	assert.Equal(t, 0.0, *e.Min)
}

func TestScheme_MarshalYAMLRoundTrip(t *testing.T) {
	s, err := schema.ParseDefinition([]byte(userDefinition), testHooks)
	require.NoError(t, err)

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "verify")
	assert.True(t, strings.Index(string(out), "name:") < strings.Index(string(out), "age:"))

	var back schema.Scheme
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, s.Len(), back.Len())
	age, _ := back.Get("age")
	assert.Equal(t, 18, age.Default.Value())
}

func TestCharset_AnchorsAlternation(t *testing.T) {
	re, err := schema.Charset(`^a|b$`)
	require.NoError(t, err)
	assert.True(t, re.MatchString("a"))
	assert.True(t, re.MatchString("b"))
	assert.False(t, re.MatchString("axyz"))
	assert.False(t, re.MatchString("xyzb"))

	re, err = schema.Charset(`[a-z]+`)
	require.NoError(t, err)
	assert.Equal(t, `^(?:[a-z]+)$`, re.String())
}

func TestScheme_MarshalYAMLKeepsCharset(t *testing.T) {
	s, err := schema.ParseDefinition([]byte("code: {type: string, charset: '^a|b$'}"), nil)
	require.NoError(t, err)

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "^a|b$")
	assert.NotContains(t, string(out), "(?:")

	var back schema.Scheme
	require.NoError(t, yaml.Unmarshal(out, &back))
	code, ok := back.Get("code")
	require.True(t, ok)
	orig, _ := s.Get("code")
	assert.Equal(t, orig.Charset.String(), code.Charset.String())
}
