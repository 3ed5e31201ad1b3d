package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/vali/pkg/schema"
)

// Registry manages the named hooks that definitions can reference through
// verify, preprocess and postprocess. It implements schema.Hooks.
type Registry struct {
	mu         sync.RWMutex
	verifiers  map[string]schema.VerifyFunc
	transforms map[string]schema.TransformFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		verifiers:  make(map[string]schema.VerifyFunc),
		transforms: make(map[string]schema.TransformFunc),
	}
}

// Default returns a registry preloaded with the built-in hooks.
func Default() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

// RegisterVerify adds a verify hook.
// If a hook with the same name exists, it is overwritten.
func (r *Registry) RegisterVerify(name string, fn schema.VerifyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifiers[name] = fn
}

// RegisterTransform adds a preprocess/postprocess hook.
// If a hook with the same name exists, it is overwritten.
func (r *Registry) RegisterTransform(name string, fn schema.TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = fn
}

// LookupVerify returns the verify hook registered under name.
func (r *Registry) LookupVerify(name string) (schema.VerifyFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.verifiers[name]
	return fn, ok
}

// LookupTransform returns the transform hook registered under name.
func (r *Registry) LookupTransform(name string) (schema.TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transforms[name]
	return fn, ok
}

// Verify runs a verify hook by name.
// Returns an error if the hook is not found.
func (r *Registry) Verify(name string, value, parent any, key string) error {
	fn, ok := r.LookupVerify(name)
	if !ok {
		return fmt.Errorf("%w: %s", schema.ErrUnknownHook, name)
	}
	return fn(value, parent, key)
}

// Names lists the registered verify and transform hooks, sorted.
func (r *Registry) Names() (verify, transform []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range r.verifiers {
		verify = append(verify, name)
	}
	for name := range r.transforms {
		transform = append(transform, name)
	}
	sort.Strings(verify)
	sort.Strings(transform)
	return verify, transform
}
