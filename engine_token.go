package goSecure

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSecure/jwt"
)

// IssueSessionToken describes the issuesessiontoken operation and its observable behavior.
//
// IssueSessionToken may return an error when input validation, dependency calls, or security checks fail.
// IssueSessionToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueSessionToken(ctx context.Context, input jwt.IssueInput) (*IssuedToken, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	signed, claims, err := e.jwtManager.Issue(input)
	if err != nil {
		wrapped := translateClaimError(err)
		e.metricInc(MetricTokenPolicyRejected)
		e.emitAudit(ctx, auditEventTokenRejected, false, input.Subject, input.SessionID, wrapped, nil)
		return nil, wrapped
	}

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventTokenIssued, true, claims.Subject, claims.SessionID, nil, func() map[string]string {
		return map[string]string{
			"jti": claims.ID,
			"amr": claims.AuthMethod,
		}
	})

	return &IssuedToken{
		Token:     signed,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifySessionToken describes the verifysessiontoken operation and its observable behavior.
//
// VerifySessionToken may return an error when input validation, dependency calls, or security checks fail.
// VerifySessionToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Signature, claim shape, and lifetime are checked before any external
// lookup; the revocation list is consulted last and only for otherwise
// valid tokens.
func (e *Engine) VerifySessionToken(ctx context.Context, tokenStr string) (*jwt.SessionClaims, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.Verify(tokenStr)
	if err != nil {
		wrapped := translateTokenError(err)
		e.metricInc(MetricTokenInvalid)
		e.emitAudit(ctx, auditEventTokenRejected, false, "", "", wrapped, nil)
		return nil, wrapped
	}

	if e.sessions != nil {
		revoked, err := e.sessions.IsSessionRevoked(ctx, claims.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if revoked {
			e.metricInc(MetricTokenInvalid)
			e.emitAudit(ctx, auditEventTokenSessionRevoked, false, claims.Subject, claims.SessionID, ErrSessionRevoked, nil)
			return nil, ErrSessionRevoked
		}
	}

	e.metricInc(MetricTokenVerified)
	e.emitAudit(ctx, auditEventTokenVerified, true, claims.Subject, claims.SessionID, nil, nil)
	return claims, nil
}

// translateTokenError maps the jwt subpackage sentinels onto the engine's
// error surface. Expiry is distinguished because callers route it to a
// refresh flow; every other failure collapses to one sentinel.
func translateTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrInvalidToken):
		if isExpiryError(err) {
			return fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

func translateClaimError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, jwt.ErrInvalidClaims) {
		return fmt.Errorf("%w: %v", ErrClaimsInvalid, err)
	}
	return err
}

func isExpiryError(err error) bool {
	return errors.Is(err, jwt.ErrExpiredToken)
}
