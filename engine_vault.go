package goSecure

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/MrEthical07/goSecure/vault"
)

// EncryptProviderToken describes the encryptprovidertoken operation and its observable behavior.
//
// EncryptProviderToken may return an error when input validation, dependency calls, or security checks fail.
// EncryptProviderToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The owning user ID is bound as additional authenticated data, so a
// payload copied between user rows fails decryption.
func (e *Engine) EncryptProviderToken(ctx context.Context, userID string, plaintext []byte) (*vault.EncryptedPayload, error) {
	if e == nil || e.rotator == nil {
		return nil, ErrEngineNotReady
	}

	cipher, err := e.rotator.ActiveCipher(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	payload, err := cipher.Encrypt(plaintext, []byte(userID))
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricEncryptOps)
	e.emitAudit(ctx, auditEventTokenEncrypted, true, userID, "", nil, func() map[string]string {
		return map[string]string{"key_id": payload.KeyID}
	})
	return payload, nil
}

// DecryptProviderToken describes the decryptprovidertoken operation and its observable behavior.
//
// DecryptProviderToken may return an error when input validation, dependency calls, or security checks fail.
// DecryptProviderToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Payloads sealed under a retired key version still decrypt; the key is
// looked up by the payload's key ID.
func (e *Engine) DecryptProviderToken(ctx context.Context, userID string, payload *vault.EncryptedPayload) ([]byte, error) {
	if e == nil || e.rotator == nil {
		return nil, ErrEngineNotReady
	}
	if payload == nil {
		return nil, ErrDecryptionFailed
	}

	cipher, err := e.rotator.CipherFor(ctx, payload.KeyID)
	if err != nil {
		if errors.Is(err, vault.ErrKeyVersionNotFound) {
			e.recordDecryptFailure(ctx, userID, ErrDecryptionFailed)
			return nil, ErrDecryptionFailed
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	plaintext, err := cipher.Decrypt(payload, []byte(userID))
	if err != nil {
		switch {
		case errors.Is(err, vault.ErrAlgorithmMismatch):
			e.recordDecryptFailure(ctx, userID, ErrAlgorithmMismatch)
			return nil, ErrAlgorithmMismatch
		default:
			e.recordDecryptFailure(ctx, userID, ErrDecryptionFailed)
			return nil, ErrDecryptionFailed
		}
	}

	e.metricInc(MetricDecryptOps)
	return plaintext, nil
}

// RotateEncryptionKey describes the rotateencryptionkey operation and its observable behavior.
//
// RotateEncryptionKey may return an error when input validation, dependency calls, or security checks fail.
// RotateEncryptionKey does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Rotations serialize on the rotator's lock. An interrupted rotation
// leaves the previous key version active and authoritative.
func (e *Engine) RotateEncryptionKey(ctx context.Context) (*vault.RotationResult, error) {
	if e == nil || e.rotator == nil {
		return nil, ErrEngineNotReady
	}

	result, err := e.rotator.Rotate(ctx)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrRotationFailed, err)
		e.metricInc(MetricRotationFailed)
		e.emitAudit(ctx, auditEventKeyRotationFailed, false, "", "", wrapped, nil)
		return nil, wrapped
	}

	e.metricInc(MetricKeyRotations)
	e.emitAudit(ctx, auditEventKeyRotated, true, "", "", nil, func() map[string]string {
		return map[string]string{
			"key_id":      result.KeyID,
			"reencrypted": strconv.Itoa(result.Reencrypted),
		}
	})
	return result, nil
}

func (e *Engine) recordDecryptFailure(ctx context.Context, userID string, sentinel error) {
	e.metricInc(MetricDecryptFailed)
	e.emitAudit(ctx, auditEventTokenDecryptFailed, false, userID, "", sentinel, nil)
}
