package session

import (
	"context"
	"errors"
	"time"
)

// Manager handles session lifecycle including creation, retrieval, and
// expiration. The touchInterval throttles how often sessions are extended
// on access, reducing write traffic to the store.
type Manager struct {
	store         Store
	ttl           time.Duration
	touchInterval time.Duration
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, ttl, touchInterval time.Duration) *Manager {
	return &Manager{
		store:         store,
		ttl:           ttl,
		touchInterval: touchInterval,
	}
}

// New creates and persists a fresh anonymous session for the given client IP.
func (m *Manager) New(ctx context.Context, ip string) (Session, error) {
	sess, err := New(ip, m.ttl)
	if err != nil {
		return Session{}, err
	}
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session{}, errors.Join(ErrSaveSession, err)
	}
	return sess, nil
}

// GetByToken retrieves a session by token and validates expiration.
func (m *Manager) GetByToken(ctx context.Context, token string) (Session, error) {
	sess, err := m.store.GetByToken(ctx, token)
	if err != nil {
		return Session{}, err
	}

	if sess.IsExpired() {
		// Expired state is unusable; drop it eagerly rather than waiting
		// for the cleanup sweep.
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrExpired
	}

	return *sess, nil
}

// Store persists session state according to its lifecycle flags.
//
// A session marked deleted is destroyed server-side; deleting an
// already-absent session is not an error, which makes logout idempotent.
// Live sessions are touched in place, so the caller observes the extended
// expiry and can mirror it client-side.
func (m *Manager) Store(ctx context.Context, sess *Session) error {
	if sess.IsDeleted() {
		if err := m.store.Delete(ctx, sess.Token); err != nil && !errors.Is(err, ErrNotFound) {
			return errors.Join(ErrDeleteSession, err)
		}
		return nil
	}

	sess.Touch(m.ttl, m.touchInterval)

	if sess.IsModified() {
		if err := m.store.Save(ctx, sess); err != nil {
			return errors.Join(ErrSaveSession, err)
		}
	}

	return nil
}

// Delete destroys a session by token. Idempotent.
func (m *Manager) Delete(ctx context.Context, token string) error {
	if err := m.store.Delete(ctx, token); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrDeleteSession, err)
	}
	return nil
}

// CleanupExpired removes all expired sessions from the store.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

// TTL returns the session time-to-live duration.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
