package goSecure

import (
	"context"
	"errors"
)

// IssueState describes the issuestate operation and its observable behavior.
//
// IssueState may return an error when input validation, dependency calls, or security checks fail.
// IssueState does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueState(ctx context.Context, sessionID string, opts StateOptions) (string, error) {
	if e == nil || e.stateManager == nil {
		return "", ErrEngineNotReady
	}

	state, err := e.stateManager.Issue(ctx, sessionID, opts)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricStateIssued)
	e.emitAudit(ctx, auditEventStateIssued, true, "", sessionID, nil, nil)
	return state, nil
}

// ValidateState describes the validatestate operation and its observable behavior.
//
// ValidateState may return an error when input validation, dependency calls, or security checks fail.
// ValidateState does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The state record is consumed by this call whether or not validation
// succeeds. A second presentation of the same value fails as unknown.
func (e *Engine) ValidateState(ctx context.Context, state, sessionID, fingerprint string) (StateValidation, error) {
	if e == nil || e.stateManager == nil {
		return StateValidation{}, ErrEngineNotReady
	}

	result, err := e.stateManager.Validate(ctx, state, sessionID, fingerprint)
	if err != nil {
		switch {
		case errors.Is(err, ErrStateExpired):
			e.metricInc(MetricStateRejected)
			e.emitAudit(ctx, auditEventStateRejected, false, "", sessionID, err, nil)
		case errors.Is(err, ErrStateInvalid) && result.IntegrityValid && !result.StateExists:
			// Well-formed, correctly signed, but absent from the store:
			// either expired out or already consumed once.
			e.metricInc(MetricStateReplayDetected)
			e.emitAudit(ctx, auditEventStateReplay, false, "", sessionID, ErrStateConsumed, nil)
		default:
			e.metricInc(MetricStateRejected)
			e.emitAudit(ctx, auditEventStateRejected, false, "", sessionID, err, nil)
		}
		return result, err
	}

	e.metricInc(MetricStateValidated)
	e.emitAudit(ctx, auditEventStateValidated, true, "", sessionID, nil, nil)
	return result, nil
}

// BoundPKCEChallenge describes the boundpkcechallenge operation and its observable behavior.
//
// BoundPKCEChallenge may return an error when input validation, dependency calls, or security checks fail.
// BoundPKCEChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BoundPKCEChallenge(ctx context.Context, state string) (string, error) {
	if e == nil || e.stateManager == nil {
		return "", ErrEngineNotReady
	}
	return e.stateManager.BoundChallenge(ctx, state)
}

// ValidateRedirectURI describes the validateredirecturi operation and its observable behavior.
//
// ValidateRedirectURI may return an error when input validation, dependency calls, or security checks fail.
// ValidateRedirectURI does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateRedirectURI(ctx context.Context, rawURI string) (RedirectValidation, error) {
	if e == nil {
		return RedirectValidation{}, ErrEngineNotReady
	}

	result := validateRedirectURI(rawURI, e.config.Redirect.AllowList, e.config.Redirect)
	if !result.Valid {
		e.metricInc(MetricRedirectRejected)
		e.emitAudit(ctx, auditEventRedirectRejected, false, "", "", ErrRedirectRejected, func() map[string]string {
			return map[string]string{
				"protocol_valid": boolString(result.ProtocolValid),
				"domain_valid":   boolString(result.DomainValid),
				"path_valid":     boolString(result.PathValid),
			}
		})
		return result, ErrRedirectRejected
	}
	return result, nil
}

// DetectAttackPattern describes the detectattackpattern operation and its observable behavior.
//
// DetectAttackPattern may return an error when input validation, dependency calls, or security checks fail.
// DetectAttackPattern does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Classification only. The report never blocks a flow; callers feed it to
// their alerting pipeline and make their own blocking decisions.
func (e *Engine) DetectAttackPattern(ctx context.Context, cb CallbackContext) AttackReport {
	if e == nil {
		return AttackReport{}
	}

	report := detectAttackPattern(cb)

	// A well-formed, correctly signed state that is absent from the store
	// was already consumed or expired out; presenting it again is a reuse
	// attempt the pure classifier cannot see.
	if e.stateManager != nil && e.stateManager.Replayed(ctx, cb.State) {
		report.Types = append(report.Types, AttackStateReuse)
		report.Detected = true
		report.RiskLevel = riskLevel(report.Types)
	}

	if report.Detected {
		e.metricInc(MetricAttackDetected)
		e.emitAudit(ctx, auditEventAttackDetected, false, "", cb.SessionID, nil, func() map[string]string {
			md := map[string]string{"risk_level": report.RiskLevel}
			for i, t := range report.Types {
				if i == 0 {
					md["signals"] = t
					continue
				}
				md["signals"] += "," + t
			}
			return md
		})
	}
	return report
}
