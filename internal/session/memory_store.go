package session

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

type memoryEntry struct {
	sess     models.Session
	deadline time.Time
}

// MemoryStore keeps sessions in process memory. Used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Save stores a copy of sess for ttl.
func (s *MemoryStore) Save(_ context.Context, sess *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID] = memoryEntry{sess: *sess, deadline: s.now().Add(ttl)}
	return nil
}

// Get returns a copy of the stored session.
func (s *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(entry.deadline) {
		return nil, appErrors.ErrCacheMiss
	}
	sess := entry.sess
	return &sess, nil
}

// Delete removes a session; deleting an unknown id is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len reports the number of stored sessions, including expired ones not yet read.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
