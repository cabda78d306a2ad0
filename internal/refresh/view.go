// Package refresh implements the call-then-reload loop every mutating
// endpoint goes through. State is only ever replaced wholesale by a fetch;
// nothing is patched locally before the upstream confirms.
package refresh

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

// Loader fetches the authoritative copy of the viewed state.
type Loader[T any] func(ctx context.Context) (T, error)

// Mutation performs exactly one upstream write against the currently loaded state.
type Mutation[T any] func(ctx context.Context, current T) error

// View holds the last loaded copy of an entity or collection.
type View[T any] struct {
	mu       sync.Mutex
	load     Loader[T]
	current  T
	loaded   bool
	mutating bool
	alert    string
	reloads  int

	flight *Flight
	key    string
}

// Option configures a view.
type Option func(*viewOptions)

type viewOptions struct {
	flight *Flight
	key    string
}

// WithFlight shares the in-flight guard across views of the same entity, so
// two requests for one session and entity cannot mutate at the same time.
func WithFlight(f *Flight, key string) Option {
	return func(o *viewOptions) {
		o.flight = f
		o.key = key
	}
}

// New builds a view around load.
func New[T any](load Loader[T], opts ...Option) *View[T] {
	var o viewOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &View[T]{load: load, flight: o.flight, key: o.key}
}

// Load fetches and replaces state. On failure the previous state is kept and
// the alert is set.
func (v *View[T]) Load(ctx context.Context) (T, error) {
	value, err := v.load(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.alert = appErrors.Message(err)
		return v.current, err
	}
	v.current = value
	v.loaded = true
	v.alert = ""
	return v.current, nil
}

// Current returns the last loaded state and whether anything was loaded.
func (v *View[T]) Current() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.loaded
}

// Alert returns the message of the last failure, or an empty string.
func (v *View[T]) Alert() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.alert
}

// Reloads counts reloads triggered by successful mutations.
func (v *View[T]) Reloads() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reloads
}

// Mutate runs fn once. Success is followed by exactly one reload; failure
// leaves state untouched, sets the alert and performs no reload. A mutation
// already in flight makes the call fail with ErrRequestInFlight before fn runs.
func (v *View[T]) Mutate(ctx context.Context, fn Mutation[T]) (T, error) {
	v.mu.Lock()
	if v.mutating {
		current := v.current
		v.mu.Unlock()
		return current, appErrors.ErrRequestInFlight
	}
	release, ok := v.flight.acquire(v.key)
	if !ok {
		current := v.current
		v.mu.Unlock()
		return current, appErrors.ErrRequestInFlight
	}
	v.mutating = true
	current := v.current
	v.mu.Unlock()

	defer func() {
		release()
		v.mu.Lock()
		v.mutating = false
		v.mu.Unlock()
	}()

	if err := fn(ctx, current); err != nil {
		v.mu.Lock()
		v.alert = appErrors.Message(err)
		v.mu.Unlock()
		return current, err
	}

	v.mu.Lock()
	v.reloads++
	v.mu.Unlock()

	refreshed, err := v.Load(ctx)
	if err != nil {
		v.mu.Lock()
		v.alert = appErrors.ErrRefreshFailed.Message
		v.mu.Unlock()
		return refreshed, appErrors.Wrap(err, appErrors.ErrRefreshFailed.Code, appErrors.ErrRefreshFailed.Status, appErrors.ErrRefreshFailed.Message)
	}
	return refreshed, nil
}
