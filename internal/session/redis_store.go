package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/ridejoy/internal/infrastructure/redis"
)

const keyPrefix = "session:"

// RedisStore implements Store on Redis. Expiry is handled by the key TTL, so
// stale sessions disappear without any sweeper.
type RedisStore struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(redisClient *redis.Client, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisStore{
		redis:  redisClient,
		logger: logger,
	}
}

// Put stores a session with a TTL derived from its expiry time
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second // Minimum TTL
	}

	if err := s.redis.Set(ctx, keyPrefix+sess.ID, string(data), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug("session created", slog.String("session_id", sess.ID))
	return nil
}

// Get retrieves a session, returning ErrNotFound for unknown or expired ids
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, keyPrefix+id)
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// Delete removes a session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
