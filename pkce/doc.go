// Package pkce implements RFC 7636 Proof Key for Code Exchange with the
// S256 method pinned: verifier generation from 32 bytes of crypto/rand,
// deterministic challenge derivation, and timing-safe verification with an
// entropy quality gate and a fixed minimum-latency floor.
package pkce
