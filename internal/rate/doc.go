// Package rate provides internal primitives used to build Redis-backed rate limit keys,
// errors, and limiter behavior for security-sensitive verification workflows.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - gsa:t — TOTP attempts per credential
//   - gsa:b — backup-code attempts per credential
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (those live in the root package).
//   - Be imported outside the goSecure module.
package rate
