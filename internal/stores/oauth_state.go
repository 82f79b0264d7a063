package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrStateNotFound = errors.New("oauth state not found")
	ErrStateExpired  = errors.New("oauth state expired")
	ErrStateBackend  = errors.New("oauth state backend unavailable")
)

// OAuthStateRecord is the persisted binding for one issued state value.
type OAuthStateRecord struct {
	SessionID     string `json:"sid"`
	Fingerprint   string `json:"fp,omitempty"`
	CodeChallenge string `json:"cc,omitempty"`
	Version       uint8  `json:"v"`
	CreatedAt     int64  `json:"iat"`
	ExpiresAt     int64  `json:"exp"`
}

// OAuthStateStore keeps issued state records with their TTL. Consumption is
// a single GETDEL, so two concurrent callbacks presenting the same state
// cannot both succeed.
type OAuthStateStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewOAuthStateStore(redisClient redis.UniversalClient, prefix string) *OAuthStateStore {
	if prefix == "" {
		prefix = "gss"
	}
	return &OAuthStateStore{redis: redisClient, prefix: prefix}
}

func (s *OAuthStateStore) key(state string) string {
	return s.prefix + ":" + state
}

func (s *OAuthStateStore) Save(ctx context.Context, state string, record *OAuthStateRecord, ttl time.Duration) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(state), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStateBackend, err)
	}
	return nil
}

// Consume atomically fetches and deletes the record. A state value can
// therefore validate exactly once; the second caller sees ErrStateNotFound.
// An expired-but-not-yet-evicted record is deleted by the same call and
// reported as ErrStateExpired.
func (s *OAuthStateStore) Consume(ctx context.Context, state string) (*OAuthStateRecord, error) {
	data, err := s.redis.GetDel(ctx, s.key(state)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStateBackend, err)
	}

	var record OAuthStateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: corrupt state record: %v", ErrStateBackend, err)
	}
	if time.Now().Unix() > record.ExpiresAt {
		return nil, ErrStateExpired
	}
	return &record, nil
}

// Peek loads a record without consuming it. Used only by attack-pattern
// classification, never by validation.
func (s *OAuthStateStore) Peek(ctx context.Context, state string) (*OAuthStateRecord, error) {
	data, err := s.redis.Get(ctx, s.key(state)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStateBackend, err)
	}
	var record OAuthStateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: corrupt state record: %v", ErrStateBackend, err)
	}
	return &record, nil
}
