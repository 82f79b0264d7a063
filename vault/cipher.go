package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSecure/internal/secutil"
)

const (
	// Algorithm is the only cipher this package speaks.
	Algorithm = "AES-256-GCM"

	keyBytes   = 32
	ivBytes    = 12 // 96-bit nonce, fresh per encryption
	tagBytes   = 16 // 128-bit authentication tag
	keyBitSize = keyBytes * 8
)

var (
	// ErrDecryptionFailed is returned for every decryption failure: bad tag,
	// wrong key, wrong AAD, or a malformed payload. The cause is deliberately
	// not distinguished.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrAlgorithmMismatch is returned when a payload carries a foreign
	// algorithm tag.
	ErrAlgorithmMismatch = errors.New("payload algorithm mismatch")
	// ErrKeyInvalid is returned when key material has the wrong size or
	// fails the degenerate-output check.
	ErrKeyInvalid = errors.New("invalid key material")
)

// Key is 256 bits of AES-GCM key material. Keys never leave this package
// except through Export.
type Key struct {
	material [keyBytes]byte
}

// ExportedKey is the lossless serialized form of a [Key].
type ExportedKey struct {
	Material  string `json:"material"` // base64
	Algorithm string `json:"algorithm"`
	BitLength int    `json:"bitLength"`
}

// EncryptedPayload is the persisted at-rest shape for any provider token
// encrypted by this module. All binary fields are base64-encoded.
type EncryptedPayload struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	Tag        string `json:"tag"`
	Algorithm  string `json:"algorithm"`
	KeyID      string `json:"keyId"`
}

// GenerateKey draws a fresh 256-bit key from crypto/rand. A degenerate draw
// (no byte variance) is rejected as a broken entropy source.
func GenerateKey() (*Key, error) {
	var k Key
	if _, err := rand.Read(k.material[:]); err != nil {
		return nil, err
	}
	if secutil.Degenerate(k.material[:]) {
		return nil, fmt.Errorf("%w: degenerate random output", ErrKeyInvalid)
	}
	return &k, nil
}

// Export returns the serialized key. Re-importing the result yields a key
// with identical decrypt behavior.
func (k *Key) Export() ExportedKey {
	return ExportedKey{
		Material:  base64.StdEncoding.EncodeToString(k.material[:]),
		Algorithm: Algorithm,
		BitLength: keyBitSize,
	}
}

// ImportKey reverses [Key.Export].
func ImportKey(material string) (*Key, error) {
	raw, err := base64.StdEncoding.DecodeString(material)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyInvalid, err)
	}
	if len(raw) != keyBytes {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrKeyInvalid, keyBytes, len(raw))
	}
	var k Key
	copy(k.material[:], raw)
	return &k, nil
}

// Cipher binds a [Key] to the key-version identifier stamped into every
// payload it produces.
type Cipher struct {
	key   *Key
	keyID string
}

// NewCipher creates a cipher over key. keyID is recorded in produced
// payloads so rotation can find records still under an old version.
func NewCipher(key *Key, keyID string) (*Cipher, error) {
	if key == nil {
		return nil, ErrKeyInvalid
	}
	return &Cipher{key: key, keyID: keyID}, nil
}

// Encrypt seals plaintext under a fresh random 96-bit IV. If aad is
// non-empty it is bound into the authentication tag; decryption then
// requires the identical aad. Encrypting the same plaintext twice yields
// different ciphertexts.
func (c *Cipher) Encrypt(plaintext, aad []byte) (*EncryptedPayload, error) {
	gcm, err := c.aead()
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivBytes)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, aad)
	// gcm.Seal appends the tag; store it as its own field.
	split := len(sealed) - tagBytes
	return &EncryptedPayload{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Tag:        base64.StdEncoding.EncodeToString(sealed[split:]),
		Algorithm:  Algorithm,
		KeyID:      c.keyID,
	}, nil
}

// Decrypt opens a payload produced by Encrypt. Any single-byte mutation of
// ciphertext, IV, tag, or AAD fails with [ErrDecryptionFailed]; a foreign
// algorithm tag fails with [ErrAlgorithmMismatch].
func (c *Cipher) Decrypt(p *EncryptedPayload, aad []byte) ([]byte, error) {
	if p == nil {
		return nil, ErrDecryptionFailed
	}
	if p.Algorithm != Algorithm {
		return nil, ErrAlgorithmMismatch
	}

	ciphertext, err := base64.StdEncoding.DecodeString(p.Ciphertext)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	iv, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil || len(iv) != ivBytes {
		return nil, ErrDecryptionFailed
	}
	tag, err := base64.StdEncoding.DecodeString(p.Tag)
	if err != nil || len(tag) != tagBytes {
		return nil, ErrDecryptionFailed
	}

	gcm, err := c.aead()
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// KeyID returns the key-version identifier this cipher stamps into payloads.
func (c *Cipher) KeyID() string {
	return c.keyID
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key.material[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
