// Package describe renders schemes as human-readable documentation.
package describe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/vali/pkg/schema"
)

// Markdown produces a markdown table documenting every field of s.
// Nested fields are listed after their parent with dotted paths: "*" for
// the items of an array or dictionary, the index for tuple positions.
func Markdown(name string, s *schema.Scheme) string {
	var sb strings.Builder
	if name != "" {
		fmt.Fprintf(&sb, "# %s\n\n", name)
	}
	sb.WriteString("| Field | Type | Required | Default | Constraints | Description |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, f := range s.Fields() {
		writeEntry(&sb, f.Name, f.Entry)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, path string, e *schema.Entry) {
	fmt.Fprintf(sb, "| `%s` | %s | %s | %s | %s | %s |\n",
		path,
		cell(typeNames(e)),
		required(e),
		cell(defaultText(e)),
		cell(strings.Join(constraints(e), ", ")),
		cell(e.Description),
	)

	if e.Scheme != nil {
		for _, f := range e.Scheme.Fields() {
			writeEntry(sb, path+"."+f.Name, f.Entry)
		}
	}
	if e.ValueScheme != nil {
		writeEntry(sb, path+".*", e.ValueScheme)
	}
	for i, item := range e.Tuple {
		writeEntry(sb, fmt.Sprintf("%s.%d", path, i), item)
	}
}

func typeNames(e *schema.Entry) string {
	if e.IsAny() {
		return "any"
	}
	names := make([]string, len(e.Type))
	for i, t := range e.Type {
		names[i] = t.Name()
	}
	return strings.Join(names, " or ")
}

func required(e *schema.Entry) string {
	switch {
	case e.Required.IsConditional():
		return "when"
	case e.IsRequired(nil):
		return "yes"
	}
	return "no"
}

func defaultText(e *schema.Entry) string {
	switch {
	case !e.Default.IsSet():
		return ""
	case e.Default.IsComputed():
		return "*computed*"
	}
	out, err := json.Marshal(e.Default.Value())
	if err != nil {
		return fmt.Sprint(e.Default.Value())
	}
	return "`" + string(out) + "`"
}

func constraints(e *schema.Entry) []string {
	var out []string
	if e.Min != nil {
		out = append(out, fmt.Sprintf("min %v", *e.Min))
	}
	if e.Max != nil {
		out = append(out, fmt.Sprintf("max %v", *e.Max))
	}
	if !e.AllowsEmpty() {
		out = append(out, "not empty")
	}
	if len(e.Enum) > 0 {
		values := make([]string, len(e.Enum))
		for i, v := range e.Enum {
			values[i] = fmt.Sprint(v)
		}
		out = append(out, "one of "+strings.Join(values, "/"))
	}
	if len(e.Alias) > 0 {
		out = append(out, "alias "+strings.Join(e.Alias, "/"))
	}
	if e.Cast != nil {
		out = append(out, "cast")
	}
	if e.Charset != nil {
		out = append(out, "charset `"+e.Charset.String()+"`")
	}
	if e.Preprocess != nil {
		out = append(out, "preprocess")
	}
	if e.Verify != nil {
		out = append(out, "verify")
	}
	if e.Postprocess != nil {
		out = append(out, "postprocess")
	}
	return out
}

// cell escapes characters that would break a table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
