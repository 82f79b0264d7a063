package goSecure

import (
	"errors"
	"time"
)

// Tier defines a public type used by goSecure APIs.
//
// Tier selects the deployment environment the engine validates secrets for.
// Validation strictness is a pure function of the tier; the engine never
// consults ambient environment variables.
type Tier uint8

const (
	// TierDevelopment is an exported constant or variable used by the credential security engine.
	TierDevelopment Tier = iota
	// TierTest is an exported constant or variable used by the credential security engine.
	TierTest
	// TierProduction is an exported constant or variable used by the credential security engine.
	TierProduction
)

func (t Tier) String() string {
	switch t {
	case TierProduction:
		return "production"
	case TierTest:
		return "test"
	default:
		return "development"
	}
}

// Config defines a public type used by goSecure APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Tier     Tier
	Token    TokenConfig
	TOTP     TOTPConfig
	PKCE     PKCEConfig
	State    StateConfig
	Redirect RedirectConfig
	Cipher   CipherConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goSecure APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	Secret      []byte
	Issuer      string
	Audience    []string
	AccessTTL   time.Duration
	MaxLifetime time.Duration // per-tier cap on exp-iat; zero selects the tier default
	Leeway      time.Duration
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig defines a public type used by goSecure APIs.
//
// TOTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPConfig struct {
	Enabled                 bool
	Issuer                  string
	Digits                  int
	Period                  int
	Algorithm               string
	Skew                    int
	EnforceReplayProtection bool
	BackupCodeCount         int
	BackupCodeLength        int
	MaxAttempts             int
	AttemptCooldown         time.Duration
}

/*
====================================
PKCE CONFIG
====================================
*/

// PKCEConfig defines a public type used by goSecure APIs.
//
// PKCEConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PKCEConfig struct {
	MinEntropyBits float64       // bits per character, Shannon estimate
	MinDuration    time.Duration // wall-clock floor for ValidateSecure
}

/*
====================================
OAUTH STATE CONFIG
====================================
*/

// StateConfig defines a public type used by goSecure APIs.
//
// StateConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StateConfig struct {
	TTL                time.Duration
	RedisPrefix        string
	RequireFingerprint bool
	MinDuration        time.Duration // latency floor shared with PKCE validation
}

// RedirectConfig defines a public type used by goSecure APIs.
//
// RedirectConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectConfig struct {
	AllowList     []string
	AllowInsecure bool // permit http:// for local development tiers
	MaxPathLength int
}

/*
====================================
CIPHER CONFIG
====================================
*/

// CipherConfig defines a public type used by goSecure APIs.
//
// CipherConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CipherConfig struct {
	KeySpace    string // logical key space; one active key version per space
	RedisPrefix string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goSecure APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSecure APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Tier: TierDevelopment,
		Token: TokenConfig{
			Issuer:    "goSecure",
			Audience:  []string{"goSecure"},
			AccessTTL: 15 * time.Minute,
			Leeway:    30 * time.Second,
		},
		TOTP: TOTPConfig{
			Enabled:                 true,
			Issuer:                  "goSecure",
			Digits:                  6,
			Period:                  30,
			Algorithm:               "SHA1",
			Skew:                    2,
			EnforceReplayProtection: true,
			BackupCodeCount:         10,
			BackupCodeLength:        10,
			MaxAttempts:             5,
			AttemptCooldown:         time.Minute,
		},
		PKCE: PKCEConfig{
			MinEntropyBits: 4.0,
			MinDuration:    2 * time.Millisecond,
		},
		State: StateConfig{
			TTL:         10 * time.Minute,
			RedisPrefix: "gss",
			MinDuration: 2 * time.Millisecond,
		},
		Redirect: RedirectConfig{
			MaxPathLength: 512,
		},
		Cipher: CipherConfig{
			KeySpace:    "default",
			RedisPrefix: "gsk",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// maxLifetimeForTier is the exp-iat cap applied when TokenConfig.MaxLifetime
// is zero. Production tokens get the tightest cap; development keeps long
// lifetimes workable for local debugging.
func maxLifetimeForTier(t Tier) time.Duration {
	switch t {
	case TierProduction:
		return 12 * time.Hour
	case TierTest:
		return 24 * time.Hour
	default:
		return 72 * time.Hour
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = append([]byte(nil), cfg.Token.Secret...)
	out.Token.Audience = append([]string(nil), cfg.Token.Audience...)
	out.Redirect.AllowList = append([]string(nil), cfg.Redirect.AllowList...)
	return out
}

func validateConfig(cfg Config) error {
	if cfg.Token.AccessTTL <= 0 {
		return errors.New("token access TTL must be positive")
	}
	if cfg.Token.MaxLifetime < 0 {
		return errors.New("token max lifetime must not be negative")
	}
	if cfg.TOTP.Enabled {
		if cfg.TOTP.Digits < 6 || cfg.TOTP.Digits > 10 {
			return errors.New("totp digits must be between 6 and 10")
		}
		if cfg.TOTP.Period <= 0 {
			return errors.New("totp period must be positive")
		}
		if cfg.TOTP.Skew < 0 || cfg.TOTP.Skew > 4 {
			return errors.New("totp skew must be between 0 and 4")
		}
		if cfg.TOTP.BackupCodeCount <= 0 || cfg.TOTP.BackupCodeLength < 8 {
			return errors.New("backup code count/length out of range")
		}
	}
	if cfg.PKCE.MinEntropyBits < 0 {
		return errors.New("pkce entropy threshold must not be negative")
	}
	if cfg.State.TTL <= 0 || cfg.State.TTL > time.Hour {
		return errors.New("state TTL must be positive and minutes-scale")
	}
	if cfg.Cipher.KeySpace == "" {
		return errors.New("cipher key space must be set")
	}
	return nil
}
