package secutil

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"math"
	"time"
)

// ShannonEntropy estimates bits per character over the character frequency
// distribution of s. It is a heuristic quality gate for generated secrets,
// not a cryptographic guarantee.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	freq := make(map[rune]int, len(s))
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// ConstantTimeEquals compares two strings in time independent of their
// content. Total time still depends on length; every caller in this module
// compares fixed-length values (signatures, challenges, codes), so the
// length channel carries no secret information.
func ConstantTimeEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ConstantTimeMember reports whether needle equals any element of set,
// always scanning the full set so a hit position does not leak.
func ConstantTimeMember(needle string, set []string) (int, bool) {
	match := -1
	for i, candidate := range set {
		if ConstantTimeEquals(needle, candidate) && match < 0 {
			match = i
		}
	}
	return match, match >= 0
}

// FloorDuration sleeps until at least min has elapsed since start, padding
// short-circuited rejection paths to a fixed wall-clock floor.
func FloorDuration(start time.Time, min time.Duration) {
	if min <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed < min {
		time.Sleep(min - elapsed)
	}
}

// RandomBytes draws n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RandomHex draws n random bytes and returns them hex-encoded.
func RandomHex(n int) (string, error) {
	buf, err := RandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Degenerate reports whether buf shows no byte variance (all bytes equal,
// including all-zero). Used as a best-effort sanity check on generated
// secrets; a degenerate draw indicates a broken entropy source.
func Degenerate(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	first := buf[0]
	for _, b := range buf[1:] {
		if b != first {
			return false
		}
	}
	return true
}

// ByteVariance counts distinct byte values in buf.
func ByteVariance(buf []byte) int {
	var seen [256]bool
	distinct := 0
	for _, b := range buf {
		if !seen[b] {
			seen[b] = true
			distinct++
		}
	}
	return distinct
}
