package registry

import (
	"fmt"
	"strings"
)

func registerBuiltins(r *Registry) {
	r.RegisterTransform("trim", stringTransform(strings.TrimSpace))
	r.RegisterTransform("lower", stringTransform(strings.ToLower))
	r.RegisterTransform("upper", stringTransform(strings.ToUpper))

	r.RegisterVerify("nonblank", func(value, _ any, key string) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return fmt.Errorf("Parameter %q must not be blank.", key)
		}
		return nil
	})
}

// stringTransform lifts fn to a hook that leaves non-string values alone.
func stringTransform(fn func(string) string) func(value, parent any, key string) (any, bool) {
	return func(value, _ any, _ string) (any, bool) {
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		return fn(s), true
	}
}
