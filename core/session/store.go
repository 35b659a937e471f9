package session

import "context"

// Store defines the persistence interface for session management.
// Implementations must handle concurrent lookup and save for the same token
// without lost updates.
type Store interface {
	GetByToken(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes expired sessions and returns how many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}
