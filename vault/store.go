package vault

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoActiveKey is returned by [KeyStore.Active] before the first
	// rotation has created version 1.
	ErrNoActiveKey = errors.New("no active key version")
	// ErrKeyVersionNotFound is returned when a referenced version does not
	// exist in the store.
	ErrKeyVersionNotFound = errors.New("key version not found")
	// ErrStoreUnavailable wraps backend I/O failures. Rotation treats it as
	// fatal; callers retry the whole rotation.
	ErrStoreUnavailable = errors.New("key store unavailable")
)

// KeyVersion is one generation of key material for a logical key space.
// Versions are monotonic; exactly one version per space is active at rest.
type KeyVersion struct {
	KeySpace  string    `json:"keySpace"`
	Version   int       `json:"version"`
	KeyID     string    `json:"keyId"`
	Material  string    `json:"material"` // base64, as produced by Key.Export
	CreatedAt time.Time `json:"createdAt"`
	RotatedAt time.Time `json:"rotatedAt,omitempty"` // set when superseded
}

// Key decodes the stored material.
func (v *KeyVersion) Key() (*Key, error) {
	return ImportKey(v.Material)
}

// KeyStore is the persistence capability for key versions. Put writes a
// version record without activating it; Promote flips the active pointer in
// a single write, which is the "mark old inactive" step — an interrupted
// rotation that never reaches Promote leaves the old version authoritative.
type KeyStore interface {
	Active(ctx context.Context, keySpace string) (*KeyVersion, error)
	Get(ctx context.Context, keySpace string, version int) (*KeyVersion, error)
	Put(ctx context.Context, version *KeyVersion) error
	Promote(ctx context.Context, keySpace string, version int) error
}

// StoredPayload pairs a record identifier with its encrypted payload.
type StoredPayload struct {
	ID      string
	Payload *EncryptedPayload
	AAD     []byte
}

// PayloadStore is the persistence capability for encrypted records that key
// rotation must re-encrypt. ListByKeyID returns every record still sealed
// under the given key version.
type PayloadStore interface {
	ListByKeyID(ctx context.Context, keyID string) ([]StoredPayload, error)
	Update(ctx context.Context, id string, payload *EncryptedPayload) error
}
