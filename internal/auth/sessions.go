// internal/auth/sessions.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobtrail/internal/common/errors"
)

// Sessions stores opaque session tokens in Redis with a sliding TTL. The
// token is the only thing the client holds; everything else lives server
// side.
type Sessions struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessions creates the session store.
func NewSessions(rdb *redis.Client, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Sessions{rdb: rdb, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Create mints a new session token for a user.
func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(token), userID, s.ttl).Err(); err != nil {
		return "", errors.NewStorageError(fmt.Errorf("failed to store session: %w", err))
	}
	return token, nil
}

// UserID resolves a token to its user and renews the TTL. Unknown or
// expired tokens fail authentication.
func (s *Sessions) UserID(ctx context.Context, token string) (string, error) {
	userID, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", errors.NewAuthenticationError("session expired or unknown")
	}
	if err != nil {
		return "", errors.NewStorageError(fmt.Errorf("failed to load session: %w", err))
	}

	// Sliding expiry: activity keeps the session alive.
	s.rdb.Expire(ctx, sessionKey(token), s.ttl)
	return userID, nil
}

// Destroy invalidates a token. Destroying an unknown token is a no-op.
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to destroy session: %w", err))
	}
	return nil
}
