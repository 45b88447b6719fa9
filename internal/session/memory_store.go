package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ST1000-S/iTechies/internal/domain"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is an in-process Store used in tests and when Redis is
// not configured. Same TTL semantics as RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore builds an in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     TTLOrDefault(ttl),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, userID string, role domain.Role) (*Session, error) {
	sess := Session{Token: uuid.NewString(), UserID: userID, Role: role}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.Token] = memoryEntry{session: sess, expiresAt: s.now().Add(s.ttl)}
	return &sess, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, token)
		return nil, ErrNotFound
	}
	sess := entry.session
	return &sess, nil
}

func (s *MemoryStore) Touch(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, token)
		return ErrNotFound
	}
	entry.expiresAt = s.now().Add(s.ttl)
	s.entries[token] = entry
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
