package goSecure

import "errors"

var (
	// ErrTokenInvalid is an exported constant or variable used by the credential security engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the credential security engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenReplay is an exported constant or variable used by the credential security engine.
	ErrTokenReplay = errors.New("token replay detected")
	// ErrEnvironmentPolicy is an exported constant or variable used by the credential security engine.
	ErrEnvironmentPolicy = errors.New("environment secret policy violation")
	// ErrClaimsInvalid is an exported constant or variable used by the credential security engine.
	ErrClaimsInvalid = errors.New("invalid claims")
	// ErrPKCEInvalid is an exported constant or variable used by the credential security engine.
	ErrPKCEInvalid = errors.New("invalid pkce verifier")
	// ErrTOTPInvalid is an exported constant or variable used by the credential security engine.
	ErrTOTPInvalid = errors.New("invalid totp code")
	// ErrTOTPAlreadyUsed is an exported constant or variable used by the credential security engine.
	ErrTOTPAlreadyUsed = errors.New("totp code already used")
	// ErrTOTPNotConfigured is an exported constant or variable used by the credential security engine.
	ErrTOTPNotConfigured = errors.New("totp not configured")
	// ErrTOTPRateLimited is an exported constant or variable used by the credential security engine.
	ErrTOTPRateLimited = errors.New("totp attempts rate limited")
	// ErrTOTPUnavailable is an exported constant or variable used by the credential security engine.
	ErrTOTPUnavailable = errors.New("totp backend unavailable")
	// ErrBackupCodeInvalid is an exported constant or variable used by the credential security engine.
	ErrBackupCodeInvalid = errors.New("invalid backup code")
	// ErrBackupCodeRateLimited is an exported constant or variable used by the credential security engine.
	ErrBackupCodeRateLimited = errors.New("backup code rate limited")
	// ErrBackupCodeUnavailable is an exported constant or variable used by the credential security engine.
	ErrBackupCodeUnavailable = errors.New("backup code backend unavailable")
	// ErrStateInvalid is an exported constant or variable used by the credential security engine.
	ErrStateInvalid = errors.New("invalid oauth state")
	// ErrStateExpired is an exported constant or variable used by the credential security engine.
	ErrStateExpired = errors.New("oauth state expired")
	// ErrStateConsumed is an exported constant or variable used by the credential security engine.
	ErrStateConsumed = errors.New("oauth state already consumed")
	// ErrStateUnavailable is an exported constant or variable used by the credential security engine.
	ErrStateUnavailable = errors.New("oauth state backend unavailable")
	// ErrRedirectRejected is an exported constant or variable used by the credential security engine.
	ErrRedirectRejected = errors.New("redirect uri rejected")
	// ErrDecryptionFailed is an exported constant or variable used by the credential security engine.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrAlgorithmMismatch is an exported constant or variable used by the credential security engine.
	ErrAlgorithmMismatch = errors.New("payload algorithm mismatch")
	// ErrRotationFailed is an exported constant or variable used by the credential security engine.
	ErrRotationFailed = errors.New("key rotation failed")
	// ErrStorageUnavailable is an exported constant or variable used by the credential security engine.
	ErrStorageUnavailable = errors.New("storage backend unavailable")
	// ErrSessionRevoked is an exported constant or variable used by the credential security engine.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrCeremonyRejected is an exported constant or variable used by the credential security engine.
	ErrCeremonyRejected = errors.New("webauthn ceremony rejected")
	// ErrEngineNotReady is an exported constant or variable used by the credential security engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
