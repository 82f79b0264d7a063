package internaldefs

import (
	goSecure "github.com/MrEthical07/goSecure"
)

// CounterDef defines a public type used by goSecure APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSecure.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the credential security engine.
var CounterDefs = []CounterDef{
	{ID: goSecure.MetricTokenIssued, Name: "gosecure_token_issued_total", Help: "Issued session tokens."},
	{ID: goSecure.MetricTokenVerified, Name: "gosecure_token_verified_total", Help: "Successfully verified session tokens."},
	{ID: goSecure.MetricTokenInvalid, Name: "gosecure_token_invalid_total", Help: "Rejected session tokens."},
	{ID: goSecure.MetricTokenPolicyRejected, Name: "gosecure_token_policy_rejected_total", Help: "Token issuance requests rejected by claim policy."},
	{ID: goSecure.MetricPKCEGenerated, Name: "gosecure_pkce_generated_total", Help: "Generated PKCE challenges."},
	{ID: goSecure.MetricPKCEVerified, Name: "gosecure_pkce_verified_total", Help: "Successful PKCE verifications."},
	{ID: goSecure.MetricPKCEFailed, Name: "gosecure_pkce_failed_total", Help: "Failed PKCE verifications."},
	{ID: goSecure.MetricTOTPSuccess, Name: "gosecure_totp_success_total", Help: "Successful TOTP verifications."},
	{ID: goSecure.MetricTOTPFailure, Name: "gosecure_totp_failure_total", Help: "Failed TOTP verifications."},
	{ID: goSecure.MetricTOTPReplayDetected, Name: "gosecure_totp_replay_detected_total", Help: "TOTP codes rejected as already used."},
	{ID: goSecure.MetricTOTPRateLimited, Name: "gosecure_totp_rate_limited_total", Help: "Rate-limited TOTP attempts."},
	{ID: goSecure.MetricBackupCodeUsed, Name: "gosecure_backup_code_used_total", Help: "Successful backup-code authentications."},
	{ID: goSecure.MetricBackupCodeFailed, Name: "gosecure_backup_code_failed_total", Help: "Failed backup-code authentications."},
	{ID: goSecure.MetricBackupCodeRegenerated, Name: "gosecure_backup_code_regenerated_total", Help: "Backup-code regeneration operations."},
	{ID: goSecure.MetricStateIssued, Name: "gosecure_state_issued_total", Help: "Issued OAuth state values."},
	{ID: goSecure.MetricStateValidated, Name: "gosecure_state_validated_total", Help: "Successfully validated OAuth state values."},
	{ID: goSecure.MetricStateRejected, Name: "gosecure_state_rejected_total", Help: "Rejected OAuth state values."},
	{ID: goSecure.MetricStateReplayDetected, Name: "gosecure_state_replay_detected_total", Help: "OAuth state values presented after consumption."},
	{ID: goSecure.MetricRedirectRejected, Name: "gosecure_redirect_rejected_total", Help: "Redirect URIs rejected by the allow-list policy."},
	{ID: goSecure.MetricAttackDetected, Name: "gosecure_attack_detected_total", Help: "Callback contexts classified as attack patterns."},
	{ID: goSecure.MetricEncryptOps, Name: "gosecure_encrypt_ops_total", Help: "Provider token encryption operations."},
	{ID: goSecure.MetricDecryptOps, Name: "gosecure_decrypt_ops_total", Help: "Provider token decryption operations."},
	{ID: goSecure.MetricDecryptFailed, Name: "gosecure_decrypt_failed_total", Help: "Failed provider token decryptions."},
	{ID: goSecure.MetricKeyRotations, Name: "gosecure_key_rotations_total", Help: "Completed encryption key rotations."},
	{ID: goSecure.MetricRotationFailed, Name: "gosecure_rotation_failed_total", Help: "Failed encryption key rotations."},
	{ID: goSecure.MetricRateLimitHit, Name: "gosecure_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
}
