package goSecure

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/MrEthical07/goSecure/internal/secutil"
	"github.com/MrEthical07/goSecure/internal/stores"
)

const (
	stateVersion     = 1
	stateRandomBytes = 16
	stateHashHexLen  = 32 // truncated HMAC-SHA256, 16 bytes hex
	stateMACKeyBytes = 32
	stateHKDFInfo    = "goSecure oauth state mac v1"
)

// StateOptions carries the optional bindings recorded with an issued state.
type StateOptions struct {
	Fingerprint   string
	CodeChallenge string
}

// StateValidation reports every check ValidateState ran, so callers can log
// which gate failed without changing the externally observable outcome.
type StateValidation struct {
	Valid            bool
	FormatValid      bool
	IntegrityValid   bool
	StateExists      bool
	NotExpired       bool
	SessionMatch     bool
	FingerprintMatch bool
}

type stateManager struct {
	config StateConfig
	store  *stores.OAuthStateStore
	macKey []byte
}

// deriveStateMACKey expands the signing secret into an independent MAC key
// for state integrity hashes, so state forgery and token forgery require
// separate key material even though both descend from one configured secret.
func deriveStateMACKey(secret []byte) ([]byte, error) {
	key := make([]byte, stateMACKeyBytes)
	r := hkdf.New(sha512.New, secret, nil, []byte(stateHKDFInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

func newStateManager(cfg StateConfig, store *stores.OAuthStateStore, signingSecret []byte) (*stateManager, error) {
	macKey, err := deriveStateMACKey(signingSecret)
	if err != nil {
		return nil, err
	}
	return &stateManager{config: cfg, store: store, macKey: macKey}, nil
}

// Issue composes timestamp.randomHex.integrityHash, persists the session
// binding under the state TTL, and returns the opaque state value.
func (m *stateManager) Issue(ctx context.Context, sessionID string, opts StateOptions) (string, error) {
	if sessionID == "" {
		return "", ErrStateInvalid
	}

	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)
	random, err := secutil.RandomHex(stateRandomBytes)
	if err != nil {
		return "", err
	}
	state := ts + "." + random + "." + m.integrityHash(ts, random)

	record := &stores.OAuthStateRecord{
		SessionID:     sessionID,
		Fingerprint:   opts.Fingerprint,
		CodeChallenge: opts.CodeChallenge,
		Version:       stateVersion,
		CreatedAt:     now.Unix(),
		ExpiresAt:     now.Add(m.config.TTL).Unix(),
	}
	if err := m.store.Save(ctx, state, record, m.config.TTL); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return state, nil
}

// Validate runs the full check set under a fixed latency floor and consumes
// the record. A state value is burned by its first validation attempt,
// successful or not: the atomic fetch-and-delete is what closes the window
// for two concurrent callbacks presenting the same value.
func (m *stateManager) Validate(ctx context.Context, state, sessionID, fingerprint string) (StateValidation, error) {
	start := time.Now()
	defer secutil.FloorDuration(start, m.config.MinDuration)

	out := StateValidation{}

	ts, random, providedHash, ok := splitState(state)
	out.FormatValid = ok
	if ok {
		out.IntegrityValid = secutil.ConstantTimeEquals(m.integrityHash(ts, random), providedHash)
	}
	if !out.FormatValid || !out.IntegrityValid {
		return out, ErrStateInvalid
	}

	record, err := m.store.Consume(ctx, state)
	switch {
	case err == nil:
		out.StateExists = true
		out.NotExpired = true
	case errors.Is(err, stores.ErrStateNotFound):
		return out, ErrStateInvalid
	case errors.Is(err, stores.ErrStateExpired):
		out.StateExists = true
		return out, ErrStateExpired
	default:
		return out, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}

	out.SessionMatch = secutil.ConstantTimeEquals(record.SessionID, sessionID)
	out.FingerprintMatch = record.Fingerprint == "" ||
		secutil.ConstantTimeEquals(record.Fingerprint, fingerprint)
	if m.config.RequireFingerprint && record.Fingerprint == "" {
		out.FingerprintMatch = false
	}

	out.Valid = out.SessionMatch && out.FingerprintMatch
	if !out.Valid {
		return out, ErrStateInvalid
	}
	return out, nil
}

// BoundChallenge returns the PKCE challenge recorded at issue time, without
// consuming the state. Classification helper only.
func (m *stateManager) BoundChallenge(ctx context.Context, state string) (string, error) {
	record, err := m.store.Peek(ctx, state)
	switch {
	case err == nil:
		return record.CodeChallenge, nil
	case errors.Is(err, stores.ErrStateNotFound), errors.Is(err, stores.ErrStateExpired):
		return "", ErrStateInvalid
	default:
		return "", fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
}

// Replayed reports whether state is well formed and correctly signed but no
// longer present in the store: a value already consumed or expired out, now
// presented again. Peek is used so classification never burns a live record.
func (m *stateManager) Replayed(ctx context.Context, state string) bool {
	ts, random, providedHash, ok := splitState(state)
	if !ok || !secutil.ConstantTimeEquals(m.integrityHash(ts, random), providedHash) {
		return false
	}

	_, err := m.store.Peek(ctx, state)
	return errors.Is(err, stores.ErrStateNotFound)
}

func (m *stateManager) integrityHash(ts, random string) string {
	mac := hmac.New(sha256.New, m.macKey)
	mac.Write([]byte(ts))
	mac.Write([]byte{'.'})
	mac.Write([]byte(random))
	sum := mac.Sum(nil)
	return hex.EncodeToString(sum[:stateHashHexLen/2])
}

func splitState(state string) (ts, random, hash string, ok bool) {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return "", "", "", false
	}
	ts, random, hash = parts[0], parts[1], parts[2]
	if ts == "" || len(random) != stateRandomBytes*2 || len(hash) != stateHashHexLen {
		return "", "", "", false
	}
	if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
		return "", "", "", false
	}
	return ts, random, hash, true
}
