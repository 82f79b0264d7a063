package goSecure

import (
	"context"
	"fmt"
)

// VerifyCeremonyAttestation describes the verifyceremonyattestation operation and its observable behavior.
//
// VerifyCeremonyAttestation may return an error when input validation, dependency calls, or security checks fail.
// VerifyCeremonyAttestation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The engine never inspects the ceremony artifacts. It routes them to the
// configured [CeremonyVerifier] and maps a failed verdict to
// [ErrCeremonyRejected].
func (e *Engine) VerifyCeremonyAttestation(ctx context.Context, userID string, input CeremonyInput) (CeremonyResult, error) {
	return e.runCeremony(ctx, userID, input, true)
}

// VerifyCeremonyAssertion describes the verifyceremonyassertion operation and its observable behavior.
//
// VerifyCeremonyAssertion may return an error when input validation, dependency calls, or security checks fail.
// VerifyCeremonyAssertion does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyCeremonyAssertion(ctx context.Context, userID string, input CeremonyInput) (CeremonyResult, error) {
	return e.runCeremony(ctx, userID, input, false)
}

func (e *Engine) runCeremony(ctx context.Context, userID string, input CeremonyInput, attestation bool) (CeremonyResult, error) {
	if e == nil {
		return CeremonyResult{}, ErrEngineNotReady
	}
	if e.ceremony == nil {
		return CeremonyResult{}, ErrCeremonyRejected
	}

	var (
		result CeremonyResult
		err    error
	)
	if attestation {
		result, err = e.ceremony.VerifyAttestation(ctx, input)
	} else {
		result, err = e.ceremony.VerifyAssertion(ctx, input)
	}
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrCeremonyRejected, err)
		e.emitAudit(ctx, auditEventCeremonyRejected, false, userID, "", wrapped, nil)
		return CeremonyResult{}, wrapped
	}
	if !result.Verified {
		e.emitAudit(ctx, auditEventCeremonyRejected, false, userID, "", ErrCeremonyRejected, nil)
		return result, ErrCeremonyRejected
	}

	return result, nil
}
