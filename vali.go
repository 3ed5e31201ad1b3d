package vali

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/vali/pkg/adapters/memory"
	"github.com/aretw0/vali/pkg/domain"
	"github.com/aretw0/vali/pkg/ports"
	"github.com/aretw0/vali/pkg/registry"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

// LockTTL bounds how long a scheme write may hold its distributed lock.
const LockTTL = 10 * time.Second

// Engine is the high-level entry point for the vali library.
// It resolves named schemes from a SchemeStore, parses them once against
// its hook registry, and validates data with a shared policy.
type Engine struct {
	store    ports.SchemeStore
	registry *registry.Registry
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	strict   bool
	maxDepth int

	mu    sync.RWMutex
	cache map[string]*schema.Scheme
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets where named scheme definitions are kept.
// Defaults to an in-memory store.
func WithStore(store ports.SchemeStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithRegistry sets the hook registry used to parse definitions.
// Defaults to registry.Default().
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLocker serializes scheme writes across replicas sharing a store.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStrict rejects undeclared keys in every validation by default.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithMaxDepth bounds nesting for every validation.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		maxDepth: validator.DefaultMaxDepth,
		cache:    make(map[string]*schema.Scheme),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.registry == nil {
		eng.registry = registry.Default()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return eng
}

// Registry returns the hook registry. Hooks registered after a scheme was
// cached only apply once the scheme is reloaded.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Store returns the underlying SchemeStore.
func (e *Engine) Store() ports.SchemeStore { return e.store }

// Scheme returns the parsed scheme stored under name, from cache when
// possible.
func (e *Engine) Scheme(ctx context.Context, name string) (*schema.Scheme, error) {
	e.mu.RLock()
	s, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		e.emitLoad(ctx, name, true, nil)
		return s, nil
	}

	def, err := e.store.Load(ctx, name)
	if err != nil {
		e.emitLoad(ctx, name, false, err)
		return nil, err
	}
	s, err = schema.ParseDefinition(def, e.registry)
	if err != nil {
		err = fmt.Errorf("scheme %s: %w", name, err)
		e.emitLoad(ctx, name, false, err)
		return nil, err
	}

	e.mu.Lock()
	e.cache[name] = s
	e.mu.Unlock()
	e.emitLoad(ctx, name, false, nil)
	return s, nil
}

// Definition returns the raw stored definition.
func (e *Engine) Definition(ctx context.Context, name string) ([]byte, error) {
	return e.store.Load(ctx, name)
}

// List returns the names of the stored schemes.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

// Put parses definition and, if it is valid, stores it under name.
func (e *Engine) Put(ctx context.Context, name string, definition []byte) (*schema.Scheme, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}
	s, err := schema.ParseDefinition(definition, e.registry)
	if err != nil {
		return nil, err
	}
	err = e.withLock(ctx, name, func() error {
		return e.store.Save(ctx, name, definition)
	})
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[name] = s
	e.mu.Unlock()
	e.logger.Info("scheme saved", "scheme", name, "fields", s.Len())
	e.emitChange(ctx, domain.EventSchemeSave, name)
	return s, nil
}

// Delete removes the scheme stored under name.
func (e *Engine) Delete(ctx context.Context, name string) error {
	err := e.withLock(ctx, name, func() error {
		return e.store.Delete(ctx, name)
	})
	if err != nil {
		return err
	}
	e.Invalidate(name)
	e.logger.Info("scheme deleted", "scheme", name)
	e.emitChange(ctx, domain.EventSchemeDelete, name)
	return nil
}

// Invalidate drops the cached parse of name, or of every scheme when name
// is empty. Use it when another process wrote to a shared store.
func (e *Engine) Invalidate(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == "" {
		e.cache = make(map[string]*schema.Scheme)
		return
	}
	delete(e.cache, name)
}

// Validate validates data against the scheme stored under name.
// Engine defaults (strict mode, depth limit, logger) apply first, so opts
// may override them.
func (e *Engine) Validate(ctx context.Context, name string, data any, opts ...validator.Option) (*validator.Result, error) {
	start := time.Now()
	if e.hooks.OnValidateStart != nil {
		e.hooks.OnValidateStart(ctx, &domain.ValidationEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventValidateStart},
			Scheme:    name,
		})
	}

	res, err := e.validate(ctx, name, data, opts)

	if e.hooks.OnValidateEnd != nil {
		event := &domain.ValidationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidateEnd},
			Scheme:    name,
			Duration:  time.Since(start),
		}
		var verr *validator.ValidatorError
		switch {
		case errors.As(err, &verr):
			event.Field, event.Error = verr.Field()
		case err != nil:
			event.Usage = true
			event.Error = err.Error()
		case res.OK():
			event.Valid = true
		default:
			event.Field, event.Error = (&validator.ValidatorError{Info: *res}).Field()
		}
		e.hooks.OnValidateEnd(ctx, event)
	}
	return res, err
}

func (e *Engine) validate(ctx context.Context, name string, data any, opts []validator.Option) (*validator.Result, error) {
	s, err := e.Scheme(ctx, name)
	if err != nil {
		return nil, err
	}
	base := []validator.Option{
		validator.WithScheme(s),
		validator.WithUnknown(!e.strict),
		validator.WithMaxDepth(e.maxDepth),
		validator.WithLogger(e.logger.With("scheme", name)),
	}
	return validator.Validate(data, append(base, opts...)...)
}

func (e *Engine) withLock(ctx context.Context, name string, fn func() error) error {
	if e.locker == nil {
		return fn()
	}
	unlock, err := e.locker.Lock(ctx, "scheme:"+name, LockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock scheme %s: %w", name, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("failed to release scheme lock", "scheme", name, "err", err)
		}
	}()
	return fn()
}

func (e *Engine) emitLoad(ctx context.Context, name string, cached bool, err error) {
	if e.hooks.OnSchemeLoad == nil {
		return
	}
	e.hooks.OnSchemeLoad(ctx, &domain.SchemeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSchemeLoad},
		Scheme:    name,
		Cached:    cached,
		Err:       err,
	})
}

func (e *Engine) emitChange(ctx context.Context, typ domain.EventType, name string) {
	if e.hooks.OnSchemeChange == nil {
		return
	}
	e.hooks.OnSchemeChange(ctx, &domain.SchemeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Scheme:    name,
	})
}
