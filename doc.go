// Package goSecure provides the credential-security core of a web platform:
// HS256 session token issuance and verification with environment-tiered secret
// policy, PKCE challenge handling, TOTP and backup-code multi-factor
// verification with replay protection, OAuth state and redirect-URI
// validation, and AES-256-GCM encryption of provider tokens at rest with
// versioned key rotation.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSecure is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (StateValidation, RedirectValidation, AttackReport, etc.). All
// internal coordination — single-use state consumption, replay-counter
// advancement, rate limiting, audit dispatch — lives under internal/ and is
// never exported. The AES-GCM cipher and key rotation live in vault/, the
// signed-token manager in jwt/, and the PKCE engine in pkce/; each is usable
// standalone.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Perform primary authentication, render pages, or speak OAuth provider
//     HTTP — those belong to the calling application.
//   - Retry storage operations. Retrying a consumed state or an advanced
//     replay counter is itself a vulnerability; retries belong to the caller.
//
// # Performance contract
//
// Every verification path (token verify, PKCE verify, TOTP code check, state
// integrity check) is CPU-bound and compares secrets in constant time with
// respect to content. The only serialized operations are OAuth-state
// consumption, TOTP counter advancement, and key rotation.
package goSecure
