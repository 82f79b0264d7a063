package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces per-credential attempt budgets for TOTP and backup-code
// verification using Redis fixed-window counters.
type Limiter struct {
	redis       redis.UniversalClient
	prefix      string
	maxAttempts int
	cooldown    time.Duration
}

// New creates a [Limiter] backed by the given Redis client. prefix
// namespaces the counters so TOTP and backup-code budgets stay independent.
func New(redisClient redis.UniversalClient, prefix string, maxAttempts int, cooldown time.Duration) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Limiter{
		redis:       redisClient,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
	}
}

func (l *Limiter) key(credentialID string) string {
	return l.prefix + ":" + credentialID
}

// Check reports whether the credential is within its attempt budget.
// Returns ErrRateLimited when exhausted.
func (l *Limiter) Check(ctx context.Context, credentialID string) error {
	count, err := l.redis.Get(ctx, l.key(credentialID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// RecordFailure counts a failed attempt and applies the window TTL on the
// first hit.
func (l *Limiter) RecordFailure(ctx context.Context, credentialID string) error {
	count, err := l.redis.Incr(ctx, l.key(credentialID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, l.key(credentialID), l.cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	if count >= int64(l.maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the failed-attempt counter, called after a successful
// verification.
func (l *Limiter) Reset(ctx context.Context, credentialID string) error {
	if err := l.redis.Del(ctx, l.key(credentialID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
