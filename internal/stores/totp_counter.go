package stores

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

var ErrCounterBackend = errors.New("totp counter backend unavailable")

// TOTPCounterStore tracks the last accepted time-step counter per
// credential. Advance is an optimistic WATCH transaction so two concurrent
// verifications of the same code cannot both record the step.
type TOTPCounterStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewTOTPCounterStore(redisClient redis.UniversalClient, prefix string) *TOTPCounterStore {
	if prefix == "" {
		prefix = "gsc"
	}
	return &TOTPCounterStore{redis: redisClient, prefix: prefix}
}

func (s *TOTPCounterStore) key(credentialID string) string {
	return s.prefix + ":" + credentialID
}

// Last returns the last accepted counter, or -1 when no code has been
// accepted yet.
func (s *TOTPCounterStore) Last(ctx context.Context, credentialID string) (int64, error) {
	value, err := s.redis.Get(ctx, s.key(credentialID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrCounterBackend, err)
	}
	counter, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: corrupt counter value", ErrCounterBackend)
	}
	return counter, nil
}

// Advance records counter as the credential's last-used time step iff it is
// strictly greater than the stored value. Returns false when the step was
// already used (replay).
func (s *TOTPCounterStore) Advance(ctx context.Context, credentialID string, counter int64) (bool, error) {
	const maxRetries = 4
	key := s.key(credentialID)

	for i := 0; i < maxRetries; i++ {
		var advanced bool
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			current := int64(-1)
			value, err := tx.Get(ctx, key).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				current, err = strconv.ParseInt(value, 10, 64)
				if err != nil {
					return fmt.Errorf("corrupt counter value")
				}
			}
			if counter <= current {
				advanced = false
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, strconv.FormatInt(counter, 10), 0)
				return nil
			})
			if err == nil {
				advanced = true
			}
			return err
		}, key)
		if err == nil {
			return advanced, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, fmt.Errorf("%w: %v", ErrCounterBackend, err)
	}
	return false, fmt.Errorf("%w: counter contention", ErrCounterBackend)
}

// Reset clears the stored counter, used when a credential is revoked and
// re-enrolled.
func (s *TOTPCounterStore) Reset(ctx context.Context, credentialID string) error {
	if err := s.redis.Del(ctx, s.key(credentialID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCounterBackend, err)
	}
	return nil
}
