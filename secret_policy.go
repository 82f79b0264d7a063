package goSecure

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/goSecure/internal/secutil"
)

// SecretPolicyViolation defines a public type used by goSecure APIs.
//
// SecretPolicyViolation names one failed secret-strength rule. Rule names
// are stable and safe to expose to operators; they carry no secret content.
type SecretPolicyViolation struct {
	Rule   string
	Detail string
}

func (v SecretPolicyViolation) String() string {
	return v.Rule + ": " + v.Detail
}

const (
	productionMinSecretLen    = 64
	nonProductionMinSecretLen = 32
	minDistinctSecretChars    = 8
)

// Substrings that disqualify a production signing secret. Matched
// case-insensitively anywhere in the secret.
var weakSecretSubstrings = []string{
	"password",
	"secret",
	"test",
	"admin",
	"letmein",
	"qwerty",
	"12345",
	"changeme",
	"default",
	"example",
}

// Markers that identify a secret as deliberately non-production. A secret
// in a lower tier that would pass every production check but carries none
// of these is treated as a leaked production secret.
var nonProductionMarkers = []string{
	"dev",
	"test",
	"local",
	"staging",
	"ci-",
	"sandbox",
}

// ValidateSigningSecret is a pure policy function: it returns every rule
// the secret violates for the given tier, in a stable order, and an empty
// slice for a conforming secret. It never inspects ambient environment
// state.
func ValidateSigningSecret(secret []byte, tier Tier) []SecretPolicyViolation {
	if tier == TierProduction {
		return productionSecretViolations(secret)
	}

	var violations []SecretPolicyViolation
	if len(secret) == 0 {
		return append(violations, SecretPolicyViolation{
			Rule:   "secret_required",
			Detail: "signing secret must be configured",
		})
	}
	if len(secret) < nonProductionMinSecretLen {
		violations = append(violations, SecretPolicyViolation{
			Rule:   "min_length",
			Detail: fmt.Sprintf("secret shorter than %d characters", nonProductionMinSecretLen),
		})
	}

	// A secret that would clear the stricter production bar but carries no
	// recognizable non-production marker has likely leaked downward from
	// production. Only applied when the production checks would pass, so a
	// weak secret is not penalized twice.
	if len(productionSecretViolations(secret)) == 0 && !hasNonProductionMarker(secret) {
		violations = append(violations, SecretPolicyViolation{
			Rule:   "production_secret_in_lower_tier",
			Detail: "production-grade secret used outside production without a non-production marker",
		})
	}

	return violations
}

func productionSecretViolations(secret []byte) []SecretPolicyViolation {
	var violations []SecretPolicyViolation
	if len(secret) == 0 {
		return append(violations, SecretPolicyViolation{
			Rule:   "secret_required",
			Detail: "signing secret must be configured",
		})
	}
	if len(secret) < productionMinSecretLen {
		violations = append(violations, SecretPolicyViolation{
			Rule:   "min_length",
			Detail: fmt.Sprintf("secret shorter than %d characters", productionMinSecretLen),
		})
	}

	s := string(secret)
	if s == strings.ToLower(s) || s == strings.ToUpper(s) {
		violations = append(violations, SecretPolicyViolation{
			Rule:   "mixed_case",
			Detail: "secret must contain both upper- and lower-case characters",
		})
	}
	if secutil.ByteVariance(secret) < minDistinctSecretChars {
		violations = append(violations, SecretPolicyViolation{
			Rule:   "character_diversity",
			Detail: fmt.Sprintf("secret uses fewer than %d distinct characters", minDistinctSecretChars),
		})
	}

	lowered := strings.ToLower(s)
	for _, weak := range weakSecretSubstrings {
		if strings.Contains(lowered, weak) {
			violations = append(violations, SecretPolicyViolation{
				Rule:   "weak_substring",
				Detail: "secret contains a known weak substring",
			})
			break
		}
	}

	return violations
}

func hasNonProductionMarker(secret []byte) bool {
	lowered := strings.ToLower(string(secret))
	for _, marker := range nonProductionMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func secretPolicyError(violations []SecretPolicyViolation) error {
	if len(violations) == 0 {
		return nil
	}
	rules := make([]string, 0, len(violations))
	for _, v := range violations {
		rules = append(rules, v.Rule)
	}
	return fmt.Errorf("%w: %s", ErrEnvironmentPolicy, strings.Join(rules, ", "))
}
