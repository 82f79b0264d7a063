package goSecure

import (
	"context"

	"github.com/MrEthical07/goSecure/pkce"
)

// GeneratePKCEChallenge describes the generatepkcechallenge operation and its observable behavior.
//
// GeneratePKCEChallenge may return an error when input validation, dependency calls, or security checks fail.
// GeneratePKCEChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GeneratePKCEChallenge(ctx context.Context) (pkce.Challenge, error) {
	if e == nil {
		return pkce.Challenge{}, ErrEngineNotReady
	}

	challenge, err := pkce.Generate()
	if err != nil {
		return pkce.Challenge{}, err
	}

	e.metricInc(MetricPKCEGenerated)
	e.emitAudit(ctx, auditEventPKCEGenerated, true, "", "", nil, nil)
	return challenge, nil
}

// VerifyPKCE describes the verifypkce operation and its observable behavior.
//
// VerifyPKCE may return an error when input validation, dependency calls, or security checks fail.
// VerifyPKCE does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// This is the bare S256 match without entropy or timing hardening; token
// exchange endpoints should prefer [Engine.ValidatePKCESecure].
func (e *Engine) VerifyPKCE(ctx context.Context, verifier, challenge string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if !pkce.Verify(verifier, challenge) {
		e.metricInc(MetricPKCEFailed)
		e.emitAudit(ctx, auditEventPKCEFailed, false, "", "", ErrPKCEInvalid, nil)
		return ErrPKCEInvalid
	}

	e.metricInc(MetricPKCEVerified)
	e.emitAudit(ctx, auditEventPKCEVerified, true, "", "", nil, nil)
	return nil
}

// ValidatePKCESecure describes the validatepkcesecure operation and its observable behavior.
//
// ValidatePKCESecure may return an error when input validation, dependency calls, or security checks fail.
// ValidatePKCESecure does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned Validation reports each gate independently. In the
// production tier a low-entropy verifier is a hard failure; elsewhere the
// entropy gate is advisory and only recorded on the result.
func (e *Engine) ValidatePKCESecure(ctx context.Context, verifier, challenge string) (pkce.Validation, error) {
	if e == nil {
		return pkce.Validation{}, ErrEngineNotReady
	}

	result := pkce.ValidateSecure(verifier, challenge, e.config.PKCE.MinEntropyBits, e.config.PKCE.MinDuration)

	valid := result.Valid
	if e.config.Tier != TierProduction && !result.EntropyOK &&
		result.LengthValid && result.CharsetOK && result.Match {
		valid = true
	}

	if !valid {
		e.metricInc(MetricPKCEFailed)
		e.emitAudit(ctx, auditEventPKCEFailed, false, "", "", ErrPKCEInvalid, func() map[string]string {
			return map[string]string{
				"length_valid": boolString(result.LengthValid),
				"charset_ok":   boolString(result.CharsetOK),
				"entropy_ok":   boolString(result.EntropyOK),
				"match":        boolString(result.Match),
			}
		})
		return result, ErrPKCEInvalid
	}

	e.metricInc(MetricPKCEVerified)
	e.emitAudit(ctx, auditEventPKCEVerified, true, "", "", nil, nil)
	result.Valid = true
	return result, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
