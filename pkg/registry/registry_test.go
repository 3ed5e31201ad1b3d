package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vali/pkg/registry"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

func TestDefault_Builtins(t *testing.T) {
	r := registry.Default()

	verify, transform := r.Names()
	assert.Equal(t, []string{"nonblank"}, verify)
	assert.Equal(t, []string{"lower", "trim", "upper"}, transform)

	trim, ok := r.LookupTransform("trim")
	require.True(t, ok)
	out, ok := trim("  a ", nil, "k")
	assert.True(t, ok)
	assert.Equal(t, "a", out)

	_, ok = trim(3, nil, "k")
	assert.False(t, ok)

	assert.EqualError(t, r.Verify("nonblank", "  ", nil, "name"), `Parameter "name" must not be blank.`)
	assert.ErrorIs(t, r.Verify("missing", "x", nil, "name"), schema.ErrUnknownHook)
}

func TestRegistry_WithDefinition(t *testing.T) {
	r := registry.Default()
	r.RegisterTransform("initials", func(value, _ any, _ string) (any, bool) {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil, false
		}
		return s[:1], true
	})

	s, err := schema.ParseDefinition([]byte(`
name:
  type: string
  preprocess: trim
  postprocess: initials
  verify: nonblank
`), r)
	require.NoError(t, err)

	res, err := validator.Validate(map[string]any{"name": "  Ada "}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "A"}, res.Data)

	res, err = validator.Validate(map[string]any{"name": "   "}, validator.WithScheme(s))
	require.NoError(t, err)
	assert.Equal(t, `Parameter "name" must not be blank.`, res.InvalidFields["name"])
}

func TestRegistry_Concurrent(t *testing.T) {
	r := registry.NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.RegisterVerify("v", func(any, any, string) error { return nil })
		}()
		go func() {
			defer wg.Done()
			r.LookupVerify("v")
		}()
	}
	wg.Wait()
	_, ok := r.LookupVerify("v")
	assert.True(t, ok)
}
