// Package vault encrypts long-lived provider tokens at rest with
// AES-256-GCM and manages the key lifecycle: generation, lossless
// export/import, versioned storage, and rotation with batch re-encryption
// of dependent records.
//
// Rotation is an explicit state machine — ReadOldKey, WriteNewKey,
// MarkOldInactive, ReencryptBatch — where the active-pointer flip is a
// single write performed only after the new key is durably stored. An
// interrupted rotation therefore always leaves a well-defined authoritative
// key, and every persistence failure is fatal to the call; the caller
// retries the whole rotation.
package vault
