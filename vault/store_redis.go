package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisKeyStore keeps key-version records as JSON values plus a single
// active-version pointer per key space. The pointer flip in Promote is one
// SET, so rotation never leaves two versions active.
type RedisKeyStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisKeyStore creates a key store under the given prefix ("gsk" when
// empty).
func NewRedisKeyStore(redisClient redis.UniversalClient, prefix string) *RedisKeyStore {
	if prefix == "" {
		prefix = "gsk"
	}
	return &RedisKeyStore{redis: redisClient, prefix: prefix}
}

func (s *RedisKeyStore) versionKey(keySpace string, version int) string {
	return s.prefix + ":" + keySpace + ":v:" + strconv.Itoa(version)
}

func (s *RedisKeyStore) activeKey(keySpace string) string {
	return s.prefix + ":" + keySpace + ":active"
}

// Active resolves the active pointer and loads its version record.
func (s *RedisKeyStore) Active(ctx context.Context, keySpace string) (*KeyVersion, error) {
	version, err := s.redis.Get(ctx, s.activeKey(keySpace)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoActiveKey
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.Get(ctx, keySpace, version)
}

// Get loads one version record.
func (s *RedisKeyStore) Get(ctx context.Context, keySpace string, version int) (*KeyVersion, error) {
	data, err := s.redis.Get(ctx, s.versionKey(keySpace, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyVersionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var record KeyVersion
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: corrupt key record: %v", ErrStoreUnavailable, err)
	}
	return &record, nil
}

// Put writes a version record without touching the active pointer.
func (s *RedisKeyStore) Put(ctx context.Context, version *KeyVersion) error {
	data, err := json.Marshal(version)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.versionKey(version.KeySpace, version.Version), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Promote points the key space at version. The record must already exist.
func (s *RedisKeyStore) Promote(ctx context.Context, keySpace string, version int) error {
	exists, err := s.redis.Exists(ctx, s.versionKey(keySpace, version)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return ErrKeyVersionNotFound
	}
	if err := s.redis.Set(ctx, s.activeKey(keySpace), version, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RedisPayloadStore keeps encrypted payloads as JSON envelopes with a
// per-key index set, so rotation can enumerate records still under an old
// version. The envelope records the AAD each payload was sealed with;
// without it a rotation could not re-seal AAD-bound records.
type RedisPayloadStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisPayloadStore creates a payload store under the given prefix
// ("gsp" when empty).
func NewRedisPayloadStore(redisClient redis.UniversalClient, prefix string) *RedisPayloadStore {
	if prefix == "" {
		prefix = "gsp"
	}
	return &RedisPayloadStore{redis: redisClient, prefix: prefix}
}

func (s *RedisPayloadStore) recordKey(id string) string {
	return s.prefix + ":p:" + id
}

func (s *RedisPayloadStore) indexKey(keyID string) string {
	return s.prefix + ":idx:" + keyID
}

type payloadEnvelope struct {
	Payload *EncryptedPayload `json:"payload"`
	AAD     []byte            `json:"aad,omitempty"`
}

// Save stores a payload with its AAD and registers it under its key
// version.
func (s *RedisPayloadStore) Save(ctx context.Context, id string, payload *EncryptedPayload, aad []byte) error {
	data, err := json.Marshal(payloadEnvelope{Payload: payload, AAD: aad})
	if err != nil {
		return err
	}
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.recordKey(id), data, 0)
	pipe.SAdd(ctx, s.indexKey(payload.KeyID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get loads one payload and the AAD it was sealed with.
func (s *RedisPayloadStore) Get(ctx context.Context, id string) (*EncryptedPayload, []byte, error) {
	data, err := s.redis.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, ErrKeyVersionNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var envelope payloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Payload == nil {
		return nil, nil, fmt.Errorf("%w: corrupt payload record: %v", ErrStoreUnavailable, err)
	}
	return envelope.Payload, envelope.AAD, nil
}

// ListByKeyID enumerates payloads still sealed under keyID.
func (s *RedisPayloadStore) ListByKeyID(ctx context.Context, keyID string) ([]StoredPayload, error) {
	ids, err := s.redis.SMembers(ctx, s.indexKey(keyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	out := make([]StoredPayload, 0, len(ids))
	for _, id := range ids {
		payload, aad, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrKeyVersionNotFound) {
				// index entry outlived its record; skip
				continue
			}
			return nil, err
		}
		out = append(out, StoredPayload{ID: id, Payload: payload, AAD: aad})
	}
	return out, nil
}

// Update replaces a payload, keeps its stored AAD, and moves its index
// membership to the new key version.
func (s *RedisPayloadStore) Update(ctx context.Context, id string, payload *EncryptedPayload) error {
	old, aad, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payloadEnvelope{Payload: payload, AAD: aad})
	if err != nil {
		return err
	}
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.recordKey(id), data, 0)
	pipe.SRem(ctx, s.indexKey(old.KeyID), id)
	pipe.SAdd(ctx, s.indexKey(payload.KeyID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
