package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventValidateStart EventType = "validate_start"
	EventValidateEnd   EventType = "validate_end"
	EventSchemeLoad    EventType = "scheme_load"
	EventSchemeSave    EventType = "scheme_save"
	EventSchemeDelete  EventType = "scheme_delete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ValidationEvent describes one validation run against a named scheme.
// Outcome fields are only set on EventValidateEnd.
type ValidationEvent struct {
	EventBase
	Scheme   string        `json:"scheme"`
	Valid    bool          `json:"valid"`
	Field    string        `json:"field,omitempty"`
	Error    string        `json:"error,omitempty"`
	Usage    bool          `json:"usage,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// SchemeEvent describes a change to, or a load of, a named scheme.
type SchemeEvent struct {
	EventBase
	Scheme string `json:"scheme"`
	Cached bool   `json:"cached,omitempty"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnValidateStart func(context.Context, *ValidationEvent)
	OnValidateEnd   func(context.Context, *ValidationEvent)
	OnSchemeLoad    func(context.Context, *SchemeEvent)
	OnSchemeChange  func(context.Context, *SchemeEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnValidateStart: chain(h.OnValidateStart, other.OnValidateStart),
		OnValidateEnd:   chain(h.OnValidateEnd, other.OnValidateEnd),
		OnSchemeLoad:    chain(h.OnSchemeLoad, other.OnSchemeLoad),
		OnSchemeChange:  chain(h.OnSchemeChange, other.OnSchemeChange),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
