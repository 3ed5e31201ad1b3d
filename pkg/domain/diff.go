package domain

import (
	"reflect"
	"sort"
	"strconv"
)

// ChangeKind classifies a Change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
)

// Change is a difference at a dotted path between two value trees.
// It is designed to be serialized to JSON so clients can see what the
// engine filled in, renamed or coerced.
type Change struct {
	Path   string     `json:"path"`
	Kind   ChangeKind `json:"kind"`
	Before any        `json:"before,omitempty"`
	After  any        `json:"after,omitempty"`
}

// Diff lists the changes from before to after, sorted by path.
// Objects and arrays are compared element by element; any other value
// is compared as a whole. Both trees are expected in normalized form
// (map[string]any and []any containers).
func Diff(before, after any) []Change {
	var out []Change
	diffValue("", before, after, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func diffValue(path string, before, after any, out *[]Change) {
	switch b := before.(type) {
	case map[string]any:
		if a, ok := after.(map[string]any); ok {
			diffMap(path, b, a, out)
			return
		}
	case []any:
		if a, ok := after.([]any); ok {
			diffSlice(path, b, a, out)
			return
		}
	}
	if !reflect.DeepEqual(before, after) {
		*out = append(*out, Change{Path: path, Kind: ChangeUpdated, Before: before, After: after})
	}
}

func diffMap(path string, before, after map[string]any, out *[]Change) {
	for k, newVal := range after {
		oldVal, exists := before[k]
		if !exists {
			*out = append(*out, Change{Path: join(path, k), Kind: ChangeAdded, After: newVal})
			continue
		}
		diffValue(join(path, k), oldVal, newVal, out)
	}
	for k, oldVal := range before {
		if _, exists := after[k]; !exists {
			*out = append(*out, Change{Path: join(path, k), Kind: ChangeRemoved, Before: oldVal})
		}
	}
}

func diffSlice(path string, before, after []any, out *[]Change) {
	for i := 0; i < len(before) || i < len(after); i++ {
		key := join(path, strconv.Itoa(i))
		switch {
		case i >= len(before):
			*out = append(*out, Change{Path: key, Kind: ChangeAdded, After: after[i]})
		case i >= len(after):
			*out = append(*out, Change{Path: key, Kind: ChangeRemoved, Before: before[i]})
		default:
			diffValue(key, before[i], after[i], out)
		}
	}
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
