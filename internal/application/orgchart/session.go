package orgchart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// SessionStore keeps one Dataset per session id.  Get fails with
// CodeSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Put(ctx context.Context, ds *Dataset) error
	Get(ctx context.Context, id string) (*Dataset, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string { return uuid.NewString() }

// ValidSessionID reports whether id could have been issued by NewSessionID
// or is the default session.
func ValidSessionID(id string) bool {
	if id == DefaultSessionID {
		return true
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// MemorySessionStore keeps sessions in process.  The least recently used
// session is evicted once maxSessions is reached.  The default session is
// held apart and never expires.
type MemorySessionStore struct {
	cache *expirable.LRU[string, *Dataset]

	mu     sync.RWMutex
	pinned *Dataset
}

// NewMemorySessionStore returns a store for at most maxSessions sessions, each
// living ttl after its last upload.
func NewMemorySessionStore(maxSessions int, ttl time.Duration) *MemorySessionStore {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &MemorySessionStore{cache: expirable.NewLRU[string, *Dataset](maxSessions, nil, ttl)}
}

func (s *MemorySessionStore) Put(_ context.Context, ds *Dataset) error {
	if ds == nil || ds.ID == "" {
		return errors.New(errors.CodeValidation, "dataset requires a session id")
	}
	if ds.ID == DefaultSessionID {
		s.mu.Lock()
		s.pinned = ds
		s.mu.Unlock()
		return nil
	}
	s.cache.Add(ds.ID, ds)
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Dataset, error) {
	if id == DefaultSessionID {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.pinned == nil {
			return nil, errors.SessionNotFound(id)
		}
		return s.pinned, nil
	}
	ds, ok := s.cache.Get(id)
	if !ok {
		return nil, errors.SessionNotFound(id)
	}
	return ds, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == DefaultSessionID {
		s.mu.Lock()
		s.pinned = nil
		s.mu.Unlock()
		return nil
	}
	s.cache.Remove(id)
	return nil
}

func (s *MemorySessionStore) Ping(context.Context) error { return nil }

//Personal.AI order the ending
