package refresh

import "sync"

// Flight tracks keys with a mutation in progress.
type Flight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewFlight constructs an empty guard.
func NewFlight() *Flight {
	return &Flight{keys: make(map[string]struct{})}
}

// acquire claims key. A nil Flight or empty key always succeeds.
func (f *Flight) acquire(key string) (func(), bool) {
	if f == nil || key == "" {
		return func() {}, true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return nil, false
	}
	f.keys[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.keys, key)
		f.mu.Unlock()
	}, true
}

// InFlight reports whether key is currently claimed.
func (f *Flight) InFlight(key string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.keys[key]
	return busy
}
