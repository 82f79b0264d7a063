package goSecure

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSecure/internal/rate"
	"github.com/MrEthical07/goSecure/internal/stores"
	"github.com/MrEthical07/goSecure/jwt"
	"github.com/MrEthical07/goSecure/vault"
)

const (
	totpLimiterPrefix   = "gsa:t"
	backupLimiterPrefix = "gsa:b"
	totpCounterPrefix   = "gsc"
)

// Builder defines a public type used by goSecure APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	provider  CredentialProvider
	auditSink AuditSink
	sessions  SessionChecker
	ceremony  CeremonyVerifier

	keyStore     vault.KeyStore
	payloadStore vault.PayloadStore

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithCredentialProvider describes the withcredentialprovider operation and its observable behavior.
//
// WithCredentialProvider may return an error when input validation, dependency calls, or security checks fail.
// WithCredentialProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCredentialProvider(p CredentialProvider) *Builder {
	b.provider = p
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithSessionChecker describes the withsessionchecker operation and its observable behavior.
//
// WithSessionChecker may return an error when input validation, dependency calls, or security checks fail.
// WithSessionChecker does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionChecker(sc SessionChecker) *Builder {
	b.sessions = sc
	return b
}

// WithCeremonyVerifier describes the withceremonyverifier operation and its observable behavior.
//
// WithCeremonyVerifier may return an error when input validation, dependency calls, or security checks fail.
// WithCeremonyVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCeremonyVerifier(cv CeremonyVerifier) *Builder {
	b.ceremony = cv
	return b
}

// WithKeyStore describes the withkeystore operation and its observable behavior.
//
// WithKeyStore may return an error when input validation, dependency calls, or security checks fail.
// WithKeyStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithKeyStore(ks vault.KeyStore) *Builder {
	b.keyStore = ks
	return b
}

// WithPayloadStore describes the withpayloadstore operation and its observable behavior.
//
// WithPayloadStore may return an error when input validation, dependency calls, or security checks fail.
// WithPayloadStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPayloadStore(ps vault.PayloadStore) *Builder {
	b.payloadStore = ps
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Token.MaxLifetime == 0 {
		cfg.Token.MaxLifetime = maxLifetimeForTier(cfg.Tier)
	}

	// Secret strength is a build-time gate, not a verification-time one.
	// A weak secret never produces a working engine.
	if violations := ValidateSigningSecret(cfg.Token.Secret, cfg.Tier); len(violations) > 0 {
		return nil, secretPolicyError(violations)
	}

	engine := &Engine{
		config: cloneConfig(cfg),
	}

	jm, err := jwt.NewManager(jwt.Config{
		Secret:            append([]byte(nil), cfg.Token.Secret...),
		Issuer:            cfg.Token.Issuer,
		Audience:          cfg.Token.Audience,
		AccessTTL:         cfg.Token.AccessTTL,
		MaxLifetime:       cfg.Token.MaxLifetime,
		Leeway:            cfg.Token.Leeway,
		RequireJTIEntropy: cfg.Tier == TierProduction,
	})
	if err != nil {
		return nil, err
	}
	engine.jwtManager = jm

	engine.totp = newTOTPManager(cfg.TOTP)
	engine.counters = stores.NewTOTPCounterStore(b.redis, totpCounterPrefix)
	engine.totpLimiter = rate.New(b.redis, totpLimiterPrefix, cfg.TOTP.MaxAttempts, cfg.TOTP.AttemptCooldown)
	engine.backupLimiter = rate.New(b.redis, backupLimiterPrefix, cfg.TOTP.MaxAttempts, cfg.TOTP.AttemptCooldown)

	stateStore := stores.NewOAuthStateStore(b.redis, cfg.State.RedisPrefix)
	sm, err := newStateManager(cfg.State, stateStore, cfg.Token.Secret)
	if err != nil {
		return nil, err
	}
	engine.stateManager = sm

	keyStore := b.keyStore
	if keyStore == nil {
		keyStore = vault.NewRedisKeyStore(b.redis, cfg.Cipher.RedisPrefix)
	}
	payloadStore := b.payloadStore
	if payloadStore == nil {
		payloadStore = vault.NewRedisPayloadStore(b.redis, cfg.Cipher.RedisPrefix)
	}
	rotator, err := vault.NewRotator(keyStore, payloadStore, cfg.Cipher.KeySpace)
	if err != nil {
		return nil, err
	}
	engine.rotator = rotator

	engine.provider = b.provider
	engine.sessions = b.sessions
	engine.ceremony = b.ceremony
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
