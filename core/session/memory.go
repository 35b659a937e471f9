package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using in-process memory.
//
// State is per server instance and lost on restart, which matches the
// deployment: a single process fronting the site. Tests inject isolated
// instances per case.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

func (ms *MemoryStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	sess, ok := ms.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (ms *MemoryStore) Save(ctx context.Context, sess *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.sessions[sess.Token] = *sess
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, token string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.sessions[token]; !ok {
		return ErrNotFound
	}
	delete(ms.sessions, token)
	return nil
}

func (ms *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var removed int64
	for token, sess := range ms.sessions {
		if now.After(sess.ExpiresAt) {
			delete(ms.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired or not.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.sessions)
}
