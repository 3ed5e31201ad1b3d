package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/vali/internal/presentation/tui"
	"github.com/aretw0/vali/pkg/domain"
	"github.com/aretw0/vali/pkg/registry"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatSpew = "spew"
)

// Formats lists the output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatSpew}

// ReadSource reads path, or stdin when path is "-".
func ReadSource(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// ParseData decodes a JSON or YAML document. JSON numbers keep their
// textual form as json.Number.
func ParseData(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var data any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&data); err == nil {
			return data, nil
		}
	}
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("input is neither JSON nor YAML: %w", err)
	}
	return data, nil
}

// LoadSchemeFile parses a scheme definition file, resolving hooks from r.
func LoadSchemeFile(path string, r *registry.Registry) (*schema.Scheme, error) {
	def, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := schema.ParseDefinition(def, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

type envelope struct {
	Valid bool `json:"valid"`
	validator.Result
}

// WriteResult prints res in the given format.
func WriteResult(w io.Writer, res *validator.Result, format string, styles tui.Styles) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(envelope{Valid: res.OK(), Result: *res})
	case FormatYAML:
		out := map[string]any{"valid": res.OK()}
		if res.OK() {
			out["data"] = jsonSafe(res.Data)
		} else {
			out["error"] = res.Error
			out["invalid_fields"] = res.InvalidFields
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case FormatSpew:
		spew.Fdump(w, res)
		return nil
	case FormatText, "":
		return writeText(w, res, styles)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, res *validator.Result, styles tui.Styles) error {
	if !res.OK() {
		fmt.Fprintln(w, styles.Failure("invalid: ")+res.Error)
		paths := make([]string, 0, len(res.InvalidFields))
		for path := range res.InvalidFields {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Fprintf(w, "  %s: %s\n", styles.Field(path), res.InvalidFields[path])
		}
		return nil
	}
	fmt.Fprintln(w, styles.Success("valid"))
	out, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// RenderDiff shows how validation rewrote the input, as a line diff of
// both documents rendered as indented JSON.
func RenderDiff(input, output any, styles tui.Styles) (string, error) {
	before, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", err
	}
	after, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", err
	}
	return tui.LineDiff(string(before)+"\n", string(after)+"\n", styles), nil
}

// WriteChanges lists the structural changes between input and output.
func WriteChanges(w io.Writer, changes []domain.Change, styles tui.Styles) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "no changes")
		return
	}
	for _, c := range changes {
		switch c.Kind {
		case domain.ChangeAdded:
			fmt.Fprintln(w, styles.Added(fmt.Sprintf("+ %s = %v", c.Path, c.After)))
		case domain.ChangeRemoved:
			fmt.Fprintln(w, styles.Removed(fmt.Sprintf("- %s (was %v)", c.Path, c.Before)))
		default:
			fmt.Fprintf(w, "~ %s: %v -> %v\n", c.Path, c.Before, c.After)
		}
	}
}

// jsonSafe turns json.Number leaves into float64 or int64 so YAML
// renders them as numbers rather than strings.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = jsonSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonSafe(item)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	}
	return v
}
