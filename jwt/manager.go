package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrEthical07/goSecure/internal/secutil"
)

// The signing algorithm is pinned at build time and never negotiated from
// token input. Header is always {"alg":"HS256","typ":"JWT"}.
const Algorithm = "HS256"

var (
	// ErrInvalidToken is returned for any verification failure. The specific
	// reason is carried by the wrapped error for diagnostic sinks only.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidClaims is returned when issuance input fails shape checks.
	ErrInvalidClaims = errors.New("invalid claims")

	// ErrExpiredToken re-exports the parser's expiry sentinel so callers can
	// distinguish a lapsed token from a forged one without importing the
	// underlying library.
	ErrExpiredToken = jwt.ErrTokenExpired
)

// Config defines a public type used by goSecure APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret            []byte
	Issuer            string
	Audience          []string
	AccessTTL         time.Duration
	MaxLifetime       time.Duration
	Leeway            time.Duration
	RequireJTIEntropy bool // production: reject low-variance token identifiers
}

// SessionClaims defines a public type used by goSecure APIs.
//
// SessionClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionClaims struct {
	Email      string   `json:"email,omitempty"`
	SessionID  string   `json:"sid"`
	AuthMethod string   `json:"amr,omitempty"`
	Scopes     []string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// IssueInput carries the caller-controlled claim fields for a new token.
// Subject must be the stable user identifier (UUID). TTL of zero selects
// the configured AccessTTL.
type IssueInput struct {
	Subject    string
	Email      string
	SessionID  string
	AuthMethod string
	Scopes     []string
	TTL        time.Duration
}

// Manager defines a public type used by goSecure APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxLifetime == 0 {
		cfg.MaxLifetime = 24 * time.Hour
	}
	if cfg.MaxLifetime < cfg.AccessTTL {
		return nil, errors.New("max lifetime below access TTL")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("issuer required")
	}
	if len(cfg.Audience) == 0 {
		return nil, errors.New("audience required")
	}
	return &Manager{config: cfg}, nil
}

// Issue describes the issue operation and its observable behavior.
//
// Issue may return an error when input validation, dependency calls, or security checks fail.
// Issue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Issue(input IssueInput) (string, *SessionClaims, error) {
	if m == nil {
		return "", nil, ErrInvalidClaims
	}
	if _, err := uuid.Parse(input.Subject); err != nil {
		return "", nil, fmt.Errorf("%w: subject is not a uuid", ErrInvalidClaims)
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return "", nil, fmt.Errorf("%w: session id required", ErrInvalidClaims)
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = m.config.AccessTTL
	}
	if ttl <= 0 {
		return "", nil, fmt.Errorf("%w: non-positive lifetime", ErrInvalidClaims)
	}
	if ttl > m.config.MaxLifetime {
		return "", nil, fmt.Errorf("%w: lifetime exceeds %s cap", ErrInvalidClaims, m.config.MaxLifetime)
	}

	jti, err := m.newTokenID()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	claims := &SessionClaims{
		Email:      input.Email,
		SessionID:  input.SessionID,
		AuthMethod: input.AuthMethod,
		Scopes:     append([]string(nil), input.Scopes...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.Subject,
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings(m.config.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Every failure wraps [ErrInvalidToken]; callers expose only the sentinel
// and route the wrapped detail to their diagnostic sink.
func (m *Manager) Verify(tokenStr string) (*SessionClaims, error) {
	if m == nil {
		return nil, ErrInvalidToken
	}
	if err := structuralCheck(tokenStr); err != nil {
		return nil, err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if len(m.config.Audience) > 0 {
		options = append(options, jwt.WithAudience(m.config.Audience[0]))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		// WithValidMethods already filters, but algorithm confusion is the
		// one attack this layer exists to stop, so check again explicitly.
		if t.Method.Alg() != Algorithm {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: claims rejected", ErrInvalidToken)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return nil, fmt.Errorf("%w: jti is not a uuid", ErrInvalidToken)
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat", ErrInvalidToken)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, fmt.Errorf("%w: exp not after iat", ErrInvalidToken)
	}
	if claims.IssuedAt.After(time.Now().Add(m.config.Leeway + time.Minute)) {
		return nil, fmt.Errorf("%w: iat in the future", ErrInvalidToken)
	}

	return claims, nil
}

func (m *Manager) newTokenID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	if m.config.RequireJTIEntropy {
		// A healthy urandom never yields fewer than a handful of distinct
		// bytes in 16; treat low variance as a broken entropy source.
		if secutil.ByteVariance(id[:]) < 6 {
			return "", fmt.Errorf("%w: token id entropy exhausted", ErrInvalidClaims)
		}
	}
	return id.String(), nil
}

func structuralCheck(tokenStr string) error {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidToken, len(parts))
	}
	for _, part := range parts {
		if part == "" {
			return fmt.Errorf("%w: empty segment", ErrInvalidToken)
		}
	}
	return nil
}
