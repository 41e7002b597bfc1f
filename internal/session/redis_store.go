package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store. Keys carry the
// session TTL so expired sessions vanish without a sweep.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

// Create stores the session with a TTL matching its expiry
func (s *redisStore) Create(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return errors.New("session id is required")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session expiry must be in the future")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Get returns the session, or (nil, nil) when it does not exist or has
// expired out of Redis
func (s *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// Delete removes the session; deleting a missing session is a success
func (s *redisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
