package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSecure/internal/secutil"
)

// RFC 7636 constants. Only the S256 method is supported; "plain" defeats
// the purpose of the exchange and is rejected outright.
const (
	// MethodS256 is the only accepted code challenge method.
	MethodS256 = "S256"

	// VerifierMinLength is the minimum allowed verifier length.
	VerifierMinLength = 43
	// VerifierMaxLength is the maximum allowed verifier length.
	VerifierMaxLength = 128

	// EntropyBytes is the number of random bytes behind a generated verifier.
	EntropyBytes = 32

	// DefaultMinEntropyBits is the Shannon-entropy floor (bits/char) applied
	// by ValidateSecure when the caller passes no explicit threshold.
	DefaultMinEntropyBits = 4.0
)

var (
	// ErrVerifierInvalid is returned when a verifier fails shape validation.
	ErrVerifierInvalid = errors.New("invalid code verifier")
)

// Challenge is a generated verifier/challenge pair. The challenge is a pure
// deterministic function of the verifier; the verifier is shown to the
// client once and must be discarded after the token exchange.
type Challenge struct {
	Verifier    string
	Challenge   string
	Method      string
	EntropyBits float64
}

// Validation is the result of ValidateSecure, reporting each check
// independently so callers can log which gate failed.
type Validation struct {
	Valid       bool
	LengthValid bool
	CharsetOK   bool
	EntropyBits float64
	EntropyOK   bool
	Match       bool
}

// Generate draws 32 random bytes, base64url-encodes them without padding as
// the verifier, and derives the challenge as base64url(SHA-256(verifier)).
func Generate() (Challenge, error) {
	raw := make([]byte, EntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return Challenge{}, fmt.Errorf("pkce verifier entropy: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(raw)
	return Challenge{
		Verifier:    verifier,
		Challenge:   DeriveChallenge(verifier),
		Method:      MethodS256,
		EntropyBits: secutil.ShannonEntropy(verifier),
	}, nil
}

// DeriveChallenge computes the S256 challenge for a verifier. It is pure:
// the same verifier always produces the same challenge.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Verify recomputes the challenge from the verifier and compares in
// constant time. Malformed inputs return false, never panic.
func Verify(verifier, challenge string) bool {
	if verifier == "" || challenge == "" {
		return false
	}
	return secutil.ConstantTimeEquals(DeriveChallenge(verifier), challenge)
}

// ValidateVerifier checks length bounds and the RFC 7636 unreserved
// character set (ALPHA / DIGIT / "-" / "." / "_" / "~").
func ValidateVerifier(verifier string) error {
	if verifier == "" {
		return fmt.Errorf("%w: empty", ErrVerifierInvalid)
	}
	if len(verifier) < VerifierMinLength {
		return fmt.Errorf("%w: shorter than %d characters", ErrVerifierInvalid, VerifierMinLength)
	}
	if len(verifier) > VerifierMaxLength {
		return fmt.Errorf("%w: longer than %d characters", ErrVerifierInvalid, VerifierMaxLength)
	}
	for _, r := range verifier {
		if !isUnreserved(r) {
			return fmt.Errorf("%w: disallowed character", ErrVerifierInvalid)
		}
	}
	return nil
}

// ValidateSecure combines shape validation, the entropy floor, and the
// constant-time challenge comparison. minEntropyBits <= 0 selects
// [DefaultMinEntropyBits]. The call never returns before minDuration has
// elapsed, so early rejections are not distinguishable by latency.
func ValidateSecure(verifier, challenge string, minEntropyBits float64, minDuration time.Duration) Validation {
	start := time.Now()
	defer secutil.FloorDuration(start, minDuration)

	if minEntropyBits <= 0 {
		minEntropyBits = DefaultMinEntropyBits
	}

	out := Validation{
		LengthValid: len(verifier) >= VerifierMinLength && len(verifier) <= VerifierMaxLength,
		CharsetOK:   true,
	}
	for _, r := range verifier {
		if !isUnreserved(r) {
			out.CharsetOK = false
			break
		}
	}
	if verifier == "" {
		out.CharsetOK = false
	}

	out.EntropyBits = secutil.ShannonEntropy(verifier)
	out.EntropyOK = out.EntropyBits >= minEntropyBits
	out.Match = Verify(verifier, challenge)
	out.Valid = out.LengthValid && out.CharsetOK && out.EntropyOK && out.Match

	return out
}

func isUnreserved(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '.' || r == '_' || r == '~'
}
