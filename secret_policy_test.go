package goSecure

import (
	"errors"
	"strings"
	"testing"
)

func violationRules(violations []SecretPolicyViolation) []string {
	rules := make([]string, 0, len(violations))
	for _, v := range violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

func hasRule(violations []SecretPolicyViolation, rule string) bool {
	for _, v := range violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func strongProductionSecret() []byte {
	return []byte("Xq7Kp2mV9cRw4tYzB8nJ3hLf6gDs1aEuXq7Kp2mV9cRw4tYzB8nJ3hLf6gDs1aEu")
}

func TestProductionSecretAccepted(t *testing.T) {
	if v := ValidateSigningSecret(strongProductionSecret(), TierProduction); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", violationRules(v))
	}
}

func TestProductionSecretTooShort(t *testing.T) {
	v := ValidateSigningSecret([]byte("Xq7Kp2mV9cRw4tYzB8nJ3hLf6gDs1aEu"), TierProduction)
	if !hasRule(v, "min_length") {
		t.Fatalf("expected min_length violation, got %v", violationRules(v))
	}
}

func TestProductionSecretSingleCase(t *testing.T) {
	secret := []byte(strings.ToLower(string(strongProductionSecret())))
	v := ValidateSigningSecret(secret, TierProduction)
	if !hasRule(v, "mixed_case") {
		t.Fatalf("expected mixed_case violation, got %v", violationRules(v))
	}
}

func TestProductionSecretLowDiversity(t *testing.T) {
	secret := []byte(strings.Repeat("AbAbAbAb", 8))
	v := ValidateSigningSecret(secret, TierProduction)
	if !hasRule(v, "character_diversity") {
		t.Fatalf("expected character_diversity violation, got %v", violationRules(v))
	}
}

func TestProductionSecretWeakSubstring(t *testing.T) {
	secret := []byte("Xq7Kp2mV9cRw4tYzB8nJ3hLfPassword6gDs1aEuXq7Kp2mV9cRw4tYzB8nJ3hLf")
	v := ValidateSigningSecret(secret, TierProduction)
	if !hasRule(v, "weak_substring") {
		t.Fatalf("expected weak_substring violation, got %v", violationRules(v))
	}
}

func TestProductionSecretEmpty(t *testing.T) {
	v := ValidateSigningSecret(nil, TierProduction)
	if !hasRule(v, "secret_required") {
		t.Fatalf("expected secret_required violation, got %v", violationRules(v))
	}
}

func TestDevelopmentSecretRelaxedLength(t *testing.T) {
	// 32 chars clears the non-production bar even though production needs 64.
	secret := []byte("dev-Xq7Kp2mV9cRw4tYzB8nJ3hLf6gDs")
	if v := ValidateSigningSecret(secret, TierDevelopment); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", violationRules(v))
	}
}

func TestDevelopmentSecretTooShort(t *testing.T) {
	v := ValidateSigningSecret([]byte("dev-short"), TierDevelopment)
	if !hasRule(v, "min_length") {
		t.Fatalf("expected min_length violation, got %v", violationRules(v))
	}
}

func TestProductionGradeSecretFlaggedInLowerTier(t *testing.T) {
	// Passes every production check and carries no non-production marker:
	// treated as a production secret leaked into a lower tier.
	v := ValidateSigningSecret(strongProductionSecret(), TierTest)
	if !hasRule(v, "production_secret_in_lower_tier") {
		t.Fatalf("expected production_secret_in_lower_tier violation, got %v", violationRules(v))
	}
}

func TestMarkedSecretAllowedInLowerTier(t *testing.T) {
	secret := []byte("staging-Xq7Kp2mV9cRw4tYzB8nJ3hLf6gDs1aEuXq7Kp2mV9cRw4tYzB8nJ3hLf")
	if v := ValidateSigningSecret(secret, TierTest); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", violationRules(v))
	}
}

func TestSecretPolicyError(t *testing.T) {
	if err := secretPolicyError(nil); err != nil {
		t.Fatalf("expected nil for no violations, got %v", err)
	}

	err := secretPolicyError([]SecretPolicyViolation{
		{Rule: "min_length", Detail: "too short"},
		{Rule: "mixed_case", Detail: "single case"},
	})
	if !errors.Is(err, ErrEnvironmentPolicy) {
		t.Fatalf("expected ErrEnvironmentPolicy, got %v", err)
	}
	if !strings.Contains(err.Error(), "min_length") || !strings.Contains(err.Error(), "mixed_case") {
		t.Fatalf("rule names missing from error: %v", err)
	}
}
