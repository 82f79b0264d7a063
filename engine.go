package goSecure

import (
	"github.com/MrEthical07/goSecure/internal/rate"
	"github.com/MrEthical07/goSecure/internal/stores"
	"github.com/MrEthical07/goSecure/jwt"
	"github.com/MrEthical07/goSecure/vault"
)

// Engine defines a public type used by goSecure APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config        Config
	jwtManager    *jwt.Manager
	totp          *totpManager
	stateManager  *stateManager
	counters      *stores.TOTPCounterStore
	totpLimiter   *rate.Limiter
	backupLimiter *rate.Limiter
	rotator       *vault.Rotator
	audit         *auditDispatcher
	metrics       *Metrics
	provider      CredentialProvider
	sessions      SessionChecker
	ceremony      CeremonyVerifier
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditDroppedByEvent describes the auditdroppedbyevent operation and its observable behavior.
//
// AuditDroppedByEvent may return an error when input validation, dependency calls, or security checks fail.
// AuditDroppedByEvent does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDroppedByEvent() map[string]uint64 {
	if e == nil || e.audit == nil {
		return nil
	}
	return e.audit.DroppedByEvent()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Config returns a defensive copy of the engine configuration with the
// signing secret redacted.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	cfg := cloneConfig(e.config)
	cfg.Token.Secret = nil
	return cfg
}
