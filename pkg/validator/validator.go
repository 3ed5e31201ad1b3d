package validator

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/vali/pkg/schema"
)

// Validator walks one container level. Nested containers are handled by
// child validators that share its policy and extend its path prefix.
type Validator struct {
	scheme      *schema.Scheme
	valueScheme *schema.Entry
	tuple       []*schema.Entry
	prefix      string
	unknown     bool
	errorPrefix string
	throw       bool
	depth       int
	maxDepth    int
	logger      *slog.Logger
}

// failure is the first field-level error found during a walk.
type failure struct {
	path    string
	message string
}

// New creates a Validator from options.
func New(opts ...Option) *Validator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	prefix := o.Parent
	if prefix != "" && !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return &Validator{
		scheme:      o.Scheme,
		valueScheme: o.ValueScheme,
		tuple:       o.Tuple,
		prefix:      prefix,
		unknown:     o.Unknown,
		errorPrefix: o.ErrorPrefix,
		throw:       o.Throw,
		maxDepth:    o.MaxDepth,
		logger:      o.Logger,
	}
}

// Validate checks data and returns the normalized output.
// The caller's value is never modified: data is copied before any default,
// cast or hook rewrites it.
//
// A scheme that does not fit the data yields an *InvalidUsageError. A data
// failure yields a Result with Error set, or a *ValidatorError when the
// validator was built WithThrow(true).
func Validate(data any, opts ...Option) (*Result, error) {
	return New(opts...).Validate(data)
}

// Validate runs the validator against data. See the package level Validate.
func (v *Validator) Validate(data any) (*Result, error) {
	out, fail, err := v.validate(schema.Normalize(data))
	if err != nil {
		return nil, err
	}
	if fail != nil {
		res := &Result{
			Error:         v.errorPrefix + fail.message,
			InvalidFields: map[string]string{fail.path: fail.message},
		}
		if v.throw {
			return nil, &ValidatorError{Info: *res}
		}
		return res, nil
	}
	return &Result{Data: out}, nil
}

func (v *Validator) validate(data any) (any, *failure, error) {
	if v.maxDepth > 0 && v.depth > v.maxDepth {
		return nil, nil, schema.Usage(strings.TrimSuffix(v.prefix, "."), ErrMaxDepth,
			"nesting deeper than %d levels", v.maxDepth)
	}
	switch d := data.(type) {
	case []any:
		switch {
		case len(v.tuple) > 0:
			return v.validateTuple(d)
		case v.valueScheme != nil:
			return v.validateItems(d)
		}
		return nil, nil, v.usage("array data requires a value_scheme or a tuple")
	case map[string]any:
		switch {
		case v.valueScheme != nil:
			return v.validateDictionary(d)
		case v.scheme != nil:
			fail, err := v.validateFields(d, v.scheme)
			return d, fail, err
		}
		return nil, nil, v.usage("object data requires a scheme or a value_scheme")
	}
	return data, nil, nil
}

func (v *Validator) validateItems(items []any) (any, *failure, error) {
	v.logger.Debug("validating array", "path", v.path(""), "len", len(items))
	for i := range items {
		out, fail, err := v.validateEntry(v.valueScheme, strconv.Itoa(i), items[i], items)
		if err != nil || fail != nil {
			return nil, fail, err
		}
		items[i] = out
	}
	return items, nil, nil
}

func (v *Validator) validateDictionary(obj map[string]any) (any, *failure, error) {
	v.logger.Debug("validating dictionary", "path", v.path(""), "len", len(obj))
	for _, key := range sortedKeys(obj) {
		out, fail, err := v.validateEntry(v.valueScheme, key, obj[key], obj)
		if err != nil || fail != nil {
			return nil, fail, err
		}
		obj[key] = out
	}
	return obj, nil, nil
}

// validateTuple transposes the array into an object keyed by position,
// validates it as named fields and transposes it back.
func (v *Validator) validateTuple(items []any) (any, *failure, error) {
	fields := make([]schema.Field, len(v.tuple))
	for i, e := range v.tuple {
		fields[i] = schema.Field{Name: strconv.Itoa(i), Entry: e}
	}
	s, err := schema.NewScheme(fields...)
	if err != nil {
		return nil, nil, v.usage("invalid tuple: %v", err)
	}
	obj := make(map[string]any, len(items))
	for i, item := range items {
		obj[strconv.Itoa(i)] = item
	}
	fail, err := v.validateFields(obj, s)
	if err != nil || fail != nil {
		return nil, fail, err
	}
	size := 0
	for key := range obj {
		if i, err := strconv.Atoi(key); err == nil && i >= size {
			size = i + 1
		}
	}
	out := make([]any, size)
	for key, value := range obj {
		if i, err := strconv.Atoi(key); err == nil && i >= 0 {
			out[i] = value
		}
	}
	return out, nil, nil
}

// validateFields applies a named scheme to obj in declaration order.
func (v *Validator) validateFields(obj map[string]any, s *schema.Scheme) (*failure, error) {
	v.logger.Debug("validating object", "path", v.path(""), "fields", s.Len())
	if !v.unknown {
		for _, key := range sortedKeys(obj) {
			if !s.Knows(key) {
				return v.fail(key, "Attribute %q is not a valid attribute name.", v.path(key)), nil
			}
		}
	}
	for _, f := range s.Fields() {
		name, e := f.Name, f.Entry
		v.resolveAlias(obj, name, e)
		value, present := obj[name]
		if !present {
			switch {
			case e.Default.IsSet():
				obj[name] = schema.Normalize(e.Default.Resolve(obj))
				v.logger.Debug("default materialized", "field", v.path(name))
			case e.IsRequired(obj):
				return v.fail(name, "Parameter %q should be a defined value%s.", v.path(name), e.TypeName(" of type ")), nil
			}
			continue
		}
		out, fail, err := v.validateEntry(e, name, value, obj)
		if err != nil || fail != nil {
			return fail, err
		}
		obj[name] = out
	}
	return nil, nil
}

// resolveAlias moves the first alias present to the canonical key. When the
// canonical key is already set it wins. All alias keys are removed.
func (v *Validator) resolveAlias(obj map[string]any, name string, e *schema.Entry) {
	if len(e.Alias) == 0 {
		return
	}
	_, has := obj[name]
	for _, alias := range e.Alias {
		value, ok := obj[alias]
		if !ok {
			continue
		}
		if !has {
			obj[name] = value
			has = true
			v.logger.Debug("alias resolved", "field", v.path(name), "alias", alias)
		}
		delete(obj, alias)
	}
}

// child builds the validator for a nested container under key.
func (v *Validator) child(key string, e *schema.Entry) *Validator {
	return &Validator{
		scheme:      e.Scheme,
		valueScheme: e.ValueScheme,
		tuple:       e.Tuple,
		prefix:      v.prefix + key + ".",
		unknown:     v.unknown,
		errorPrefix: v.errorPrefix,
		depth:       v.depth + 1,
		maxDepth:    v.maxDepth,
		logger:      v.logger,
	}
}

func (v *Validator) path(key string) string {
	if key == "" {
		return strings.TrimSuffix(v.prefix, ".")
	}
	return v.prefix + key
}

func (v *Validator) fail(key, format string, args ...any) *failure {
	f := &failure{path: v.path(key), message: fmt.Sprintf(format, args...)}
	v.logger.Debug("validation failed", "field", f.path, "reason", f.message)
	return f
}

func (v *Validator) usage(format string, args ...any) error {
	return schema.Usage(v.path(""), schema.ErrInvalidUsage, format, args...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
