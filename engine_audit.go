package goSecure

import (
	"context"
	"errors"
)

const (
	auditEventTokenIssued           = "token_issued"
	auditEventTokenVerified         = "token_verified"
	auditEventTokenRejected         = "token_rejected"
	auditEventTokenSessionRevoked   = "token_session_revoked"
	auditEventPKCEGenerated         = "pkce_generated"
	auditEventPKCEVerified          = "pkce_verified"
	auditEventPKCEFailed            = "pkce_failed"
	auditEventTOTPEnrolled          = "totp_enrolled"
	auditEventTOTPSuccess           = "totp_success"
	auditEventTOTPFailure           = "totp_failure"
	auditEventTOTPReplay            = "totp_replay"
	auditEventTOTPRateLimited       = "totp_rate_limited"
	auditEventBackupCodeUsed        = "backup_code_used"
	auditEventBackupCodeFailed      = "backup_code_failed"
	auditEventBackupCodesGenerated  = "backup_codes_generated"
	auditEventBackupCodeRateLimited = "backup_code_rate_limited"
	auditEventStateIssued           = "state_issued"
	auditEventStateValidated        = "state_validated"
	auditEventStateRejected         = "state_rejected"
	auditEventStateReplay           = "state_replay"
	auditEventRedirectRejected      = "redirect_rejected"
	auditEventAttackDetected        = "attack_pattern_detected"
	auditEventTokenEncrypted        = "provider_token_encrypted"
	auditEventTokenDecryptFailed    = "provider_token_decrypt_failed"
	auditEventKeyRotated            = "encryption_key_rotated"
	auditEventKeyRotationFailed     = "encryption_key_rotation_failed"
	auditEventRateLimitTriggered    = "rate_limit_triggered"
	auditEventCeremonyRejected      = "ceremony_rejected"
)

// AuditErrorCode defines a public type used by goSecure APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrTokenInvalid      AuditErrorCode = "token_invalid"
	auditErrTokenExpired      AuditErrorCode = "token_expired"
	auditErrTokenReplay       AuditErrorCode = "token_replay"
	auditErrSessionRevoked    AuditErrorCode = "session_revoked"
	auditErrEnvironmentPolicy AuditErrorCode = "environment_policy"
	auditErrClaimsInvalid     AuditErrorCode = "claims_invalid"
	auditErrPKCEInvalid       AuditErrorCode = "pkce_invalid"
	auditErrTOTPInvalid       AuditErrorCode = "totp_invalid"
	auditErrTOTPReplay        AuditErrorCode = "totp_replay"
	auditErrRateLimited       AuditErrorCode = "rate_limited"
	auditErrBackupCodeInvalid AuditErrorCode = "backup_code_invalid"
	auditErrStateInvalid      AuditErrorCode = "state_invalid"
	auditErrStateExpired      AuditErrorCode = "state_expired"
	auditErrStateConsumed     AuditErrorCode = "state_consumed"
	auditErrRedirectRejected  AuditErrorCode = "redirect_rejected"
	auditErrDecryptionFailed  AuditErrorCode = "decryption_failed"
	auditErrAlgorithmMismatch AuditErrorCode = "algorithm_mismatch"
	auditErrRotationFailed    AuditErrorCode = "rotation_failed"
	auditErrCeremonyRejected  AuditErrorCode = "ceremony_rejected"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	// Timestamp, IP, and user agent are stamped by the dispatcher.
	event := AuditEvent{
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	userID string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)

	eventType := auditEventRateLimitTriggered
	switch scope {
	case "totp":
		eventType = auditEventTOTPRateLimited
	case "backup_code":
		eventType = auditEventBackupCodeRateLimited
	}

	e.emitAudit(ctx, eventType, false, userID, "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenReplay):
		return auditErrTokenReplay
	case errors.Is(err, ErrSessionRevoked):
		return auditErrSessionRevoked
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrEnvironmentPolicy):
		return auditErrEnvironmentPolicy
	case errors.Is(err, ErrClaimsInvalid):
		return auditErrClaimsInvalid
	case errors.Is(err, ErrPKCEInvalid):
		return auditErrPKCEInvalid
	case errors.Is(err, ErrTOTPAlreadyUsed):
		return auditErrTOTPReplay
	case errors.Is(err, ErrTOTPInvalid),
		errors.Is(err, ErrTOTPNotConfigured):
		return auditErrTOTPInvalid
	case errors.Is(err, ErrTOTPRateLimited),
		errors.Is(err, ErrBackupCodeRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrBackupCodeInvalid):
		return auditErrBackupCodeInvalid
	case errors.Is(err, ErrStateExpired):
		return auditErrStateExpired
	case errors.Is(err, ErrStateConsumed):
		return auditErrStateConsumed
	case errors.Is(err, ErrStateInvalid):
		return auditErrStateInvalid
	case errors.Is(err, ErrRedirectRejected):
		return auditErrRedirectRejected
	case errors.Is(err, ErrAlgorithmMismatch):
		return auditErrAlgorithmMismatch
	case errors.Is(err, ErrDecryptionFailed):
		return auditErrDecryptionFailed
	case errors.Is(err, ErrRotationFailed):
		return auditErrRotationFailed
	case errors.Is(err, ErrCeremonyRejected):
		return auditErrCeremonyRejected
	case errors.Is(err, ErrTOTPUnavailable),
		errors.Is(err, ErrBackupCodeUnavailable),
		errors.Is(err, ErrStateUnavailable),
		errors.Is(err, ErrStorageUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
