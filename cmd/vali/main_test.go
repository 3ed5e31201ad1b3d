package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userScheme = `name:
  type: string
  alias: [full_name]
age:
  type: number
  cast: true
  default: 18
`

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// workspace writes a config using a file store in a temp dir, plus the
// user scheme definition.
func workspace(t *testing.T) (configPath, schemePath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "vali.yaml")
	schemePath = filepath.Join(dir, "user.yaml")
	cfg := fmt.Sprintf("store:\n  backend: file\n  dir: %s\n", filepath.Join(dir, "schemes"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))
	require.NoError(t, os.WriteFile(schemePath, []byte(userScheme), 0644))
	return configPath, schemePath
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "vali version dev\n", out)
}

func TestValidate_SchemeFile(t *testing.T) {
	cfg, scheme := workspace(t)

	out, err := run(t, `{"full_name": "Ann", "age": "42"}`, "validate", "--config", cfg, "--scheme", scheme)
	require.NoError(t, err)
	assert.Equal(t, "valid\n{\n  \"age\": 42,\n  \"name\": \"Ann\"\n}\n", out)
}

func TestValidate_Invalid(t *testing.T) {
	cfg, scheme := workspace(t)

	out, err := run(t, `{"name": 7}`, "validate", "--config", cfg, "--scheme", scheme)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `invalid: Parameter "name" has an invalid type "number"`)
}

func TestValidate_Strict(t *testing.T) {
	cfg, scheme := workspace(t)

	_, err := run(t, `{"name": "Ann", "x": 1}`, "validate", "--config", cfg, "--scheme", scheme, "--strict", "-o", "json")
	assert.ErrorIs(t, err, errInvalid)
}

func TestValidate_RequiresScheme(t *testing.T) {
	_, err := run(t, `{}`, "validate")
	assert.Error(t, err)
}

func TestSchemesLifecycle(t *testing.T) {
	cfg, scheme := workspace(t)

	out, err := run(t, "", "schemes", "ls", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "No schemes found.\n", out)

	out, err = run(t, "", "schemes", "put", "user", scheme, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Stored 'user' (2 fields).\n", out)

	out, err = run(t, "", "schemes", "ls", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "user\n", out)

	out, err = run(t, "", "schemes", "get", "user", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, userScheme, out)

	out, err = run(t, `{"full_name": "Ann"}`, "validate", "--config", cfg, "--name", "user", "-o", "json")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["valid"])
	assert.Equal(t, map[string]any{"name": "Ann", "age": 18.0}, res["data"])

	out, err = run(t, "", "schemes", "rm", "user", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Removed 'user'.\n", out)

	_, err = run(t, "", "schemes", "get", "user", "--config", cfg)
	assert.Error(t, err)
}

func TestSchemesPut_InvalidDefinition(t *testing.T) {
	cfg, _ := workspace(t)

	_, err := run(t, "a: {type: colour}", "schemes", "put", "bad", "-", "--config", cfg)
	assert.ErrorContains(t, err, "unsupported type")
}

func TestValidate_Changes(t *testing.T) {
	cfg, scheme := workspace(t)

	out, err := run(t, `{"full_name": "Ann"}`, "validate", "--config", cfg, "--scheme", scheme, "-o", "yaml", "--changes")
	require.NoError(t, err)
	assert.Contains(t, out, "+ age = 18")
	assert.Contains(t, out, "- full_name (was Ann)")
	assert.Contains(t, out, "+ name = Ann")
}

func TestDescribe_File(t *testing.T) {
	cfg, scheme := workspace(t)

	out, err := run(t, "", "describe", scheme, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "| `name` | string | yes |")
	assert.Contains(t, out, "| `age` | number | no | `18` | cast |")
}
