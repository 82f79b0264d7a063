package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// rotationPhase labels the step a rotation failure occurred in. Every step
// before promote leaves the old key authoritative; a failure during the
// re-encrypt batch leaves the new key active and the remaining records
// decryptable under their recorded old version.
type rotationPhase string

const (
	phaseReadOldKey      rotationPhase = "read_old_key"
	phaseWriteNewKey     rotationPhase = "write_new_key"
	phaseMarkOldInactive rotationPhase = "mark_old_inactive"
	phaseReencryptBatch  rotationPhase = "reencrypt_batch"
)

// RotationResult reports a completed rotation.
type RotationResult struct {
	KeyID       string
	Version     int
	Reencrypted int
}

// Rotator drives the key rotation state machine
// (ReadOldKey → WriteNewKey → MarkOldInactive → ReencryptBatch) for one
// logical key space. Rotate holds an exclusive in-process lock; rotation is
// not resumable mid-way — on any failure the caller retries the whole
// operation.
type Rotator struct {
	keys     KeyStore
	payloads PayloadStore
	keySpace string

	mu sync.Mutex
}

// NewRotator creates a rotator. payloads may be nil when no dependent
// records exist (rotation then only advances the key version).
func NewRotator(keys KeyStore, payloads PayloadStore, keySpace string) (*Rotator, error) {
	if keys == nil {
		return nil, ErrStoreUnavailable
	}
	if keySpace == "" {
		keySpace = "default"
	}
	return &Rotator{keys: keys, payloads: payloads, keySpace: keySpace}, nil
}

// ActiveCipher resolves the current active key version into a usable
// cipher. Returns [ErrNoActiveKey] before the first rotation.
func (r *Rotator) ActiveCipher(ctx context.Context) (*Cipher, error) {
	record, err := r.keys.Active(ctx, r.keySpace)
	if err != nil {
		return nil, err
	}
	key, err := record.Key()
	if err != nil {
		return nil, err
	}
	return NewCipher(key, record.KeyID)
}

// CipherFor resolves the cipher for a specific key-version identifier by
// scanning versions backward from the active one. Used to decrypt records
// written before the latest rotation.
func (r *Rotator) CipherFor(ctx context.Context, keyID string) (*Cipher, error) {
	active, err := r.keys.Active(ctx, r.keySpace)
	if err != nil {
		return nil, err
	}
	for v := active.Version; v >= 1; v-- {
		record, err := r.keys.Get(ctx, r.keySpace, v)
		if err != nil {
			return nil, err
		}
		if record.KeyID == keyID {
			key, err := record.Key()
			if err != nil {
				return nil, err
			}
			return NewCipher(key, record.KeyID)
		}
	}
	return nil, ErrKeyVersionNotFound
}

// Rotate creates the next key version, promotes it, and re-encrypts every
// payload still sealed under the previous version. On first run it
// degenerates to creating version 1 with zero re-encryption work. Any
// persistence failure aborts the rotation as fatal; nothing is retried
// internally.
func (r *Rotator) Rotate(ctx context.Context) (*RotationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// ReadOldKey
	old, err := r.keys.Active(ctx, r.keySpace)
	if err != nil && !errors.Is(err, ErrNoActiveKey) {
		return nil, rotationError(phaseReadOldKey, err)
	}

	newVersion := 1
	if old != nil {
		newVersion = old.Version + 1
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, rotationError(phaseWriteNewKey, err)
	}
	record := &KeyVersion{
		KeySpace:  r.keySpace,
		Version:   newVersion,
		KeyID:     uuid.NewString(),
		Material:  key.Export().Material,
		CreatedAt: time.Now().UTC(),
	}

	// WriteNewKey: durable before anything references it.
	if err := r.keys.Put(ctx, record); err != nil {
		return nil, rotationError(phaseWriteNewKey, err)
	}

	// MarkOldInactive: single pointer flip; the old key stays authoritative
	// until this write lands.
	if err := r.keys.Promote(ctx, r.keySpace, newVersion); err != nil {
		return nil, rotationError(phaseMarkOldInactive, err)
	}
	if old != nil {
		old.RotatedAt = time.Now().UTC()
		if err := r.keys.Put(ctx, old); err != nil {
			return nil, rotationError(phaseMarkOldInactive, err)
		}
	}

	result := &RotationResult{KeyID: record.KeyID, Version: newVersion}
	if old == nil || r.payloads == nil {
		return result, nil
	}

	// ReencryptBatch: decrypt under the old version, re-seal under the new.
	// Kept sequential so a failure aborts at a well-defined record; records
	// not yet rewritten remain decryptable under the old version.
	oldKey, err := old.Key()
	if err != nil {
		return nil, rotationError(phaseReencryptBatch, err)
	}
	oldCipher, err := NewCipher(oldKey, old.KeyID)
	if err != nil {
		return nil, rotationError(phaseReencryptBatch, err)
	}
	newCipher, err := NewCipher(key, record.KeyID)
	if err != nil {
		return nil, rotationError(phaseReencryptBatch, err)
	}

	batch, err := r.payloads.ListByKeyID(ctx, old.KeyID)
	if err != nil {
		return nil, rotationError(phaseReencryptBatch, err)
	}
	for _, stored := range batch {
		plaintext, err := oldCipher.Decrypt(stored.Payload, stored.AAD)
		if err != nil {
			return nil, rotationError(phaseReencryptBatch, fmt.Errorf("record %s: %w", stored.ID, err))
		}
		resealed, err := newCipher.Encrypt(plaintext, stored.AAD)
		if err != nil {
			return nil, rotationError(phaseReencryptBatch, fmt.Errorf("record %s: %w", stored.ID, err))
		}
		if err := r.payloads.Update(ctx, stored.ID, resealed); err != nil {
			return nil, rotationError(phaseReencryptBatch, fmt.Errorf("record %s: %w", stored.ID, err))
		}
		result.Reencrypted++
	}

	return result, nil
}

func rotationError(phase rotationPhase, err error) error {
	return fmt.Errorf("rotation %s: %w", phase, err)
}
