package goSecure

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"strings"

	"github.com/MrEthical07/goSecure/internal/secutil"
)

// BackupCodeAlphabet is an exported constant or variable used by the credential security engine.
//
// The alphabet drops 0/O/1/I so transcribed codes survive handwriting.
const BackupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// BackupCodeRecord holds the stored one-way hash of a single backup code.
// Plaintext codes are returned to the caller exactly once and never
// persisted.
type BackupCodeRecord struct {
	Hash [32]byte
}

// BackupCodeSet is the result of generating or regenerating backup codes:
// formatted plaintext for one-time display, hashed records for storage.
type BackupCodeSet struct {
	PlainText []string
	Records   []BackupCodeRecord
}

func newBackupCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := cryptoRandomIndex(len(BackupCodeAlphabet))
		if err != nil {
			return "", err
		}
		b.WriteByte(BackupCodeAlphabet[n])
	}
	return b.String(), nil
}

func formatBackupCode(code string) string {
	n := len(code)
	if n < 8 {
		return code
	}
	mid := n / 2
	return code[:mid] + "-" + code[mid:]
}

func canonicalizeBackupCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// backupCodeHash binds the code to its owning user so identical codes for
// different users never collide in storage.
func backupCodeHash(userID, canonicalCode string) [32]byte {
	data := make([]byte, 0, len(userID)+1+len(canonicalCode))
	data = append(data, userID...)
	data = append(data, 0)
	data = append(data, canonicalCode...)
	return sha256.Sum256(data)
}

func generateBackupCodeSet(userID string, count, length int) (*BackupCodeSet, error) {
	out := &BackupCodeSet{
		PlainText: make([]string, 0, count),
		Records:   make([]BackupCodeRecord, 0, count),
	}
	for i := 0; i < count; i++ {
		code, err := newBackupCode(length)
		if err != nil {
			return nil, err
		}
		out.PlainText = append(out.PlainText, formatBackupCode(code))
		out.Records = append(out.Records, BackupCodeRecord{Hash: backupCodeHash(userID, code)})
	}
	return out, nil
}

// matchBackupCode scans the full record set in constant time per element
// and reports the matched index, or -1. The scan never exits early, so a
// hit position does not leak through latency.
func matchBackupCode(userID, submitted string, records []BackupCodeRecord) int {
	canonical := canonicalizeBackupCode(submitted)
	if canonical == "" {
		return -1
	}
	want := backupCodeHash(userID, canonical)

	hashes := make([]string, len(records))
	for i, record := range records {
		hashes[i] = string(record.Hash[:])
	}

	idx, ok := secutil.ConstantTimeMember(string(want[:]), hashes)
	if !ok {
		return -1
	}
	return idx
}

func cryptoRandomIndex(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
