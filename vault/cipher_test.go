package vault

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func newTestCipher(t *testing.T, keyID string) *Cipher {
	t.Helper()

	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	c, err := NewCipher(key, keyID)
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}
	return c
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := newTestCipher(t, "k1")

	large := make([]byte, 100*1024)
	if _, err := rand.Read(large); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}

	cases := [][]byte{
		[]byte("gho_providertoken123"),
		{},
		large,
	}
	for _, plaintext := range cases {
		payload, err := c.Encrypt(plaintext, []byte("user-1"))
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if payload.Algorithm != Algorithm {
			t.Fatalf("algorithm = %q, want %q", payload.Algorithm, Algorithm)
		}
		if payload.KeyID != "k1" {
			t.Fatalf("key id = %q", payload.KeyID)
		}

		got, err := c.Decrypt(payload, []byte("user-1"))
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round trip mismatch: %d bytes in, %d bytes out", len(plaintext), len(got))
		}
	}
}

func TestEncryptNonDeterministic(t *testing.T) {
	c := newTestCipher(t, "k1")

	a, err := c.Encrypt([]byte("same plaintext"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	b, err := c.Encrypt([]byte("same plaintext"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if a.IV == b.IV {
		t.Fatal("IV reused across encryptions")
	}
	if a.Ciphertext == b.Ciphertext {
		t.Fatal("identical ciphertext for repeated plaintext")
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	c1 := newTestCipher(t, "k1")
	c2 := newTestCipher(t, "k2")

	payload, err := c1.Encrypt([]byte("secret"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := c2.Decrypt(payload, nil); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptRejectsWrongAAD(t *testing.T) {
	c := newTestCipher(t, "k1")

	payload, err := c.Encrypt([]byte("secret"), []byte("user-1"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := c.Decrypt(payload, []byte("user-2")); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	c := newTestCipher(t, "k1")

	payload, err := c.Encrypt([]byte("secret material"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw := []byte(payload.Ciphertext)
	raw[0] ^= 0x01
	payload.Ciphertext = string(raw)

	if _, err := c.Decrypt(payload, nil); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptRejectsAlgorithmMismatch(t *testing.T) {
	c := newTestCipher(t, "k1")

	payload, err := c.Encrypt([]byte("secret"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	payload.Algorithm = "AES-128-CBC"

	if _, err := c.Decrypt(payload, nil); !errors.Is(err, ErrAlgorithmMismatch) {
		t.Fatalf("expected ErrAlgorithmMismatch, got %v", err)
	}
}

func TestExportImportKeyRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	exported := key.Export()
	if exported.Algorithm != Algorithm || exported.BitLength != 256 {
		t.Fatalf("exported metadata wrong: %+v", exported)
	}

	imported, err := ImportKey(exported.Material)
	if err != nil {
		t.Fatalf("ImportKey failed: %v", err)
	}

	c1, err := NewCipher(key, "k1")
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}
	c2, err := NewCipher(imported, "k1")
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}

	payload, err := c1.Encrypt([]byte("cross-check"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	got, err := c2.Decrypt(payload, nil)
	if err != nil {
		t.Fatalf("Decrypt with imported key failed: %v", err)
	}
	if string(got) != "cross-check" {
		t.Fatalf("unexpected plaintext %q", got)
	}
}

func TestImportKeyRejectsWrongLength(t *testing.T) {
	if _, err := ImportKey("dG9vc2hvcnQ"); err == nil {
		t.Fatal("expected short key material rejected")
	}
}
