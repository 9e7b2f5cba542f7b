// Package memory is an in-process Store for single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/utafrali/litreads/internal/repository"
	apperrors "github.com/utafrali/litreads/pkg/errors"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store keeps values in a map guarded by a mutex. Entries expire after ttl;
// a zero ttl keeps them forever.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewStore creates an empty store.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, visitorID, key string) ([]byte, error) {
	k := repository.Key(visitorID, key)

	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return nil, apperrors.NotFound("key", k)
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value and refreshes the expiry.
func (s *Store) Set(_ context.Context, visitorID, key string, value []byte) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if s.ttl > 0 {
		e.expiresAt = s.nowFunc().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[repository.Key(visitorID, key)] = e
	s.mu.Unlock()
	return nil
}

// Delete removes the key. Missing keys are not an error.
func (s *Store) Delete(_ context.Context, visitorID, key string) error {
	s.mu.Lock()
	delete(s.entries, repository.Key(visitorID, key))
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.nowFunc().Before(e.expiresAt)
}
