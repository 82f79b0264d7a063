package goSecure

import (
	"context"
	"time"
)

// IssuedToken is returned by [Engine.IssueSessionToken]. The JWT string is
// what the caller hands to clients; the token ID is the minted jti for
// correlation with revocation and audit records.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TOTPRecord is the stored credential for one user's authenticator app
// enrollment. The raw secret stays with the caller's storage; the engine
// only reads it during verification.
type TOTPRecord struct {
	Secret       []byte
	SecretBase32 string
	State        CredentialState
	CredentialID string
	EnrolledAt   time.Time
}

// TOTPEnrollment is the one-time provisioning bundle returned by
// [Engine.EnrollTOTP]. PlainText backup codes appear here and nowhere else.
type TOTPEnrollment struct {
	Record       TOTPRecord
	ProvisionURI string
	BackupCodes  *BackupCodeSet
}

// CredentialProvider is the interface callers implement to integrate their
// user database. It covers TOTP secret storage and backup code storage.
// ConsumeBackupCode must be atomic: two concurrent submissions of the same
// code hash may see at most one true result.
type CredentialProvider interface {
	GetTOTPRecord(ctx context.Context, userID string) (*TOTPRecord, error)
	SaveTOTPRecord(ctx context.Context, userID string, record TOTPRecord) error
	MarkTOTPActive(ctx context.Context, userID string) error
	GetBackupCodes(ctx context.Context, userID string) ([]BackupCodeRecord, error)
	ReplaceBackupCodes(ctx context.Context, userID string, codes []BackupCodeRecord) error
	ConsumeBackupCode(ctx context.Context, userID string, codeHash [32]byte) (bool, error)
}

// SessionChecker lets verification consult an external revocation list.
// Optional: without one, [Engine.VerifySessionToken] trusts signature and
// claim checks alone.
type SessionChecker interface {
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

// CeremonyInput carries the opaque artifacts of a WebAuthn ceremony. The
// engine never parses these; they pass through to the configured
// [CeremonyVerifier] unchanged.
type CeremonyInput struct {
	CredentialID      string
	Challenge         []byte
	ClientData        []byte
	AuthenticatorData []byte
	Signature         []byte
	ExpectedOrigin    string
}

// CeremonyResult is the verifier's verdict plus the authenticator's new
// signature counter for clone detection bookkeeping.
type CeremonyResult struct {
	Verified     bool
	NewSignCount uint32
}

// CeremonyVerifier is the black-box WebAuthn capability. Implementations
// wrap a FIDO2 library; the engine only routes inputs and interprets
// pass/fail.
type CeremonyVerifier interface {
	VerifyAttestation(ctx context.Context, input CeremonyInput) (CeremonyResult, error)
	VerifyAssertion(ctx context.Context, input CeremonyInput) (CeremonyResult, error)
}
