package goSecure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goSecure/internal/rate"
)

// EnrollTOTP describes the enrolltotp operation and its observable behavior.
//
// EnrollTOTP may return an error when input validation, dependency calls, or security checks fail.
// EnrollTOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned enrollment carries the only plaintext copy of the backup
// codes. The record starts in [CredentialProvisioned] and is not accepted
// for verification until activated with a live code.
func (e *Engine) EnrollTOTP(ctx context.Context, userID string) (*TOTPEnrollment, error) {
	if e == nil || e.totp == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.TOTP.Enabled || e.provider == nil {
		return nil, ErrTOTPNotConfigured
	}
	if userID == "" {
		return nil, ErrTOTPInvalid
	}

	raw, encoded, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	record := TOTPRecord{
		Secret:       raw,
		SecretBase32: encoded,
		State:        CredentialProvisioned,
		CredentialID: uuid.NewString(),
		EnrolledAt:   time.Now().UTC(),
	}

	codes, err := generateBackupCodeSet(userID, e.config.TOTP.BackupCodeCount, e.config.TOTP.BackupCodeLength)
	if err != nil {
		return nil, err
	}

	if err := e.provider.SaveTOTPRecord(ctx, userID, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTOTPUnavailable, err)
	}
	if err := e.provider.ReplaceBackupCodes(ctx, userID, codes.Records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTOTPUnavailable, err)
	}

	e.emitAudit(ctx, auditEventTOTPEnrolled, true, userID, "", nil, nil)

	return &TOTPEnrollment{
		Record:       record,
		ProvisionURI: e.totp.ProvisionURI(encoded, userID),
		BackupCodes:  codes,
	}, nil
}

// ActivateTOTP describes the activatetotp operation and its observable behavior.
//
// ActivateTOTP may return an error when input validation, dependency calls, or security checks fail.
// ActivateTOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Activation proves the authenticator app holds the secret before the
// credential counts for MFA. The proving code is consumed like any other.
func (e *Engine) ActivateTOTP(ctx context.Context, userID, code string) error {
	if e == nil || e.totp == nil {
		return ErrEngineNotReady
	}
	if e.provider == nil {
		return ErrTOTPNotConfigured
	}

	record, err := e.provider.GetTOTPRecord(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTOTPUnavailable, err)
	}
	if record == nil || record.State == CredentialRevoked {
		return ErrTOTPNotConfigured
	}

	matched, counter, err := e.totp.VerifyCode(record.Secret, code, time.Now())
	if err != nil {
		return err
	}
	if !matched {
		e.metricInc(MetricTOTPFailure)
		e.emitAudit(ctx, auditEventTOTPFailure, false, userID, "", ErrTOTPInvalid, nil)
		return ErrTOTPInvalid
	}

	if err := e.advanceTOTPCounter(ctx, record, counter); err != nil {
		return err
	}
	if err := e.provider.MarkTOTPActive(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrTOTPUnavailable, err)
	}

	e.metricInc(MetricTOTPSuccess)
	e.emitAudit(ctx, auditEventTOTPSuccess, true, userID, "", nil, func() map[string]string {
		return map[string]string{"phase": "activation"}
	})
	return nil
}

// VerifyTOTP describes the verifytotp operation and its observable behavior.
//
// VerifyTOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyTOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A matched counter must advance the stored high-water mark before the
// code is accepted. Two concurrent submissions of the same code race on
// one atomic compare-and-set; exactly one wins, the other gets
// [ErrTOTPAlreadyUsed].
func (e *Engine) VerifyTOTP(ctx context.Context, userID, code string) error {
	if e == nil || e.totp == nil {
		return ErrEngineNotReady
	}
	if e.provider == nil {
		return ErrTOTPNotConfigured
	}

	if e.totpLimiter != nil {
		if err := e.totpLimiter.Check(ctx, userID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricTOTPRateLimited)
				e.emitRateLimit(ctx, "totp", userID, nil)
				return ErrTOTPRateLimited
			}
			return fmt.Errorf("%w: %v", ErrTOTPUnavailable, err)
		}
	}

	record, err := e.provider.GetTOTPRecord(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTOTPUnavailable, err)
	}
	if record == nil || record.State != CredentialActive {
		return ErrTOTPNotConfigured
	}

	matched, counter, err := e.totp.VerifyCode(record.Secret, code, time.Now())
	if err != nil {
		return err
	}
	if !matched {
		e.recordTOTPFailure(ctx, userID)
		return ErrTOTPInvalid
	}

	if err := e.advanceTOTPCounter(ctx, record, counter); err != nil {
		if errors.Is(err, ErrTOTPAlreadyUsed) {
			e.metricInc(MetricTOTPReplayDetected)
			e.emitAudit(ctx, auditEventTOTPReplay, false, userID, "", ErrTOTPAlreadyUsed, nil)
		}
		return err
	}

	if e.totpLimiter != nil {
		_ = e.totpLimiter.Reset(ctx, userID)
	}
	e.metricInc(MetricTOTPSuccess)
	e.emitAudit(ctx, auditEventTOTPSuccess, true, userID, "", nil, nil)
	return nil
}

func (e *Engine) advanceTOTPCounter(ctx context.Context, record *TOTPRecord, counter int64) error {
	if !e.config.TOTP.EnforceReplayProtection || e.counters == nil {
		return nil
	}

	credentialID := record.CredentialID
	if credentialID == "" {
		credentialID = record.SecretBase32
	}

	advanced, err := e.counters.Advance(ctx, credentialID, counter)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTOTPUnavailable, err)
	}
	if !advanced {
		return ErrTOTPAlreadyUsed
	}
	return nil
}

func (e *Engine) recordTOTPFailure(ctx context.Context, userID string) {
	if e.totpLimiter != nil {
		_ = e.totpLimiter.RecordFailure(ctx, userID)
	}
	e.metricInc(MetricTOTPFailure)
	e.emitAudit(ctx, auditEventTOTPFailure, false, userID, "", ErrTOTPInvalid, nil)
}
