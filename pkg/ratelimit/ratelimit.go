package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SignInLimiter tracks failed sign-in attempts per email in Redis and
// locks the email out after too many failures. The counter key carries a
// TTL, so stale counters expire on their own.
type SignInLimiter struct {
	redis       *redis.Client
	maxFailures int
	lockWindow  time.Duration
}

// NewSignInLimiter creates a new sign-in rate limiter
func NewSignInLimiter(redisClient *redis.Client, maxFailures int, lockWindow time.Duration) *SignInLimiter {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if lockWindow <= 0 {
		lockWindow = 15 * time.Minute
	}

	return &SignInLimiter{
		redis:       redisClient,
		maxFailures: maxFailures,
		lockWindow:  lockWindow,
	}
}

func (l *SignInLimiter) key(email string) string {
	return fmt.Sprintf("signin:failed:%s", email)
}

// RecordFailure increments the failure counter for an email. The first
// failure starts the lock window.
func (l *SignInLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record sign-in failure: %w", err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.lockWindow).Err(); err != nil {
			return fmt.Errorf("failed to set failure window: %w", err)
		}
	}

	return nil
}

// IsLocked reports whether the email has exceeded the failure budget
func (l *SignInLimiter) IsLocked(ctx context.Context, email string) (bool, error) {
	count, err := l.redis.Get(ctx, l.key(email)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check sign-in failures: %w", err)
	}

	return count >= l.maxFailures, nil
}

// Reset clears the failure counter after a successful sign-in
func (l *SignInLimiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("failed to reset sign-in failures: %w", err)
	}
	return nil
}
