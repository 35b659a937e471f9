package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces session keys in a shared Redis instance.
const redisKeyPrefix = "session:"

// RedisStore implements Store on Redis so sessions survive process restarts.
//
// Each session is a JSON value keyed by its token with a TTL matching the
// session expiry, so Redis itself handles expired-session cleanup and
// DeleteExpired is a no-op.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store and verifies
// connectivity so a bad REDIS_URL fails at startup, not on first login.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (rs *RedisStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	data, err := rs.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("corrupted session record: %w", err)
	}
	return &sess, nil
}

func (rs *RedisStore) Save(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, redisKeyPrefix+sess.Token, data, ttl).Err()
}

func (rs *RedisStore) Delete(ctx context.Context, token string) error {
	removed, err := rs.client.Del(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired is a no-op: Redis key TTLs expire sessions on their own.
func (rs *RedisStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// Close releases the underlying Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
