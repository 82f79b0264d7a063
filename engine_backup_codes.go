package goSecure

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/MrEthical07/goSecure/internal/rate"
)

// VerifyBackupCode describes the verifybackupcode operation and its observable behavior.
//
// VerifyBackupCode may return an error when input validation, dependency calls, or security checks fail.
// VerifyBackupCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A matching code is consumed through the provider's atomic
// ConsumeBackupCode, so the same code presented twice concurrently
// succeeds at most once.
func (e *Engine) VerifyBackupCode(ctx context.Context, userID, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.provider == nil {
		return ErrTOTPNotConfigured
	}

	if e.backupLimiter != nil {
		if err := e.backupLimiter.Check(ctx, userID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.emitRateLimit(ctx, "backup_code", userID, nil)
				return ErrBackupCodeRateLimited
			}
			return fmt.Errorf("%w: %v", ErrBackupCodeUnavailable, err)
		}
	}

	records, err := e.provider.GetBackupCodes(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackupCodeUnavailable, err)
	}

	idx := matchBackupCode(userID, code, records)
	if idx < 0 {
		e.recordBackupCodeFailure(ctx, userID)
		return ErrBackupCodeInvalid
	}

	consumed, err := e.provider.ConsumeBackupCode(ctx, userID, records[idx].Hash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackupCodeUnavailable, err)
	}
	if !consumed {
		// Lost the race: another request burned this code first.
		e.recordBackupCodeFailure(ctx, userID)
		return ErrBackupCodeInvalid
	}

	if e.backupLimiter != nil {
		_ = e.backupLimiter.Reset(ctx, userID)
	}
	e.metricInc(MetricBackupCodeUsed)
	e.emitAudit(ctx, auditEventBackupCodeUsed, true, userID, "", nil, func() map[string]string {
		return map[string]string{"remaining": strconv.Itoa(len(records) - 1)}
	})
	return nil
}

// RegenerateBackupCodes describes the regeneratebackupcodes operation and its observable behavior.
//
// RegenerateBackupCodes may return an error when input validation, dependency calls, or security checks fail.
// RegenerateBackupCodes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The full previous set is invalidated in one replace. The plaintext of
// the new set appears only in the returned value.
func (e *Engine) RegenerateBackupCodes(ctx context.Context, userID string) (*BackupCodeSet, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.provider == nil {
		return nil, ErrTOTPNotConfigured
	}
	if userID == "" {
		return nil, ErrBackupCodeInvalid
	}

	codes, err := generateBackupCodeSet(userID, e.config.TOTP.BackupCodeCount, e.config.TOTP.BackupCodeLength)
	if err != nil {
		return nil, err
	}
	if err := e.provider.ReplaceBackupCodes(ctx, userID, codes.Records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackupCodeUnavailable, err)
	}

	e.metricInc(MetricBackupCodeRegenerated)
	e.emitAudit(ctx, auditEventBackupCodesGenerated, true, userID, "", nil, func() map[string]string {
		return map[string]string{"count": strconv.Itoa(len(codes.Records))}
	})
	return codes, nil
}

func (e *Engine) recordBackupCodeFailure(ctx context.Context, userID string) {
	if e.backupLimiter != nil {
		_ = e.backupLimiter.RecordFailure(ctx, userID)
	}
	e.metricInc(MetricBackupCodeFailed)
	e.emitAudit(ctx, auditEventBackupCodeFailed, false, userID, "", ErrBackupCodeInvalid, nil)
}
