package goSecure

import "sync/atomic"

// MetricID defines a public type used by goSecure APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricTokenIssued is an exported constant or variable used by the credential security engine.
	MetricTokenIssued MetricID = iota
	// MetricTokenVerified is an exported constant or variable used by the credential security engine.
	MetricTokenVerified
	// MetricTokenInvalid is an exported constant or variable used by the credential security engine.
	MetricTokenInvalid
	// MetricTokenPolicyRejected is an exported constant or variable used by the credential security engine.
	MetricTokenPolicyRejected
	// MetricPKCEGenerated is an exported constant or variable used by the credential security engine.
	MetricPKCEGenerated
	// MetricPKCEVerified is an exported constant or variable used by the credential security engine.
	MetricPKCEVerified
	// MetricPKCEFailed is an exported constant or variable used by the credential security engine.
	MetricPKCEFailed
	// MetricTOTPSuccess is an exported constant or variable used by the credential security engine.
	MetricTOTPSuccess
	// MetricTOTPFailure is an exported constant or variable used by the credential security engine.
	MetricTOTPFailure
	// MetricTOTPReplayDetected is an exported constant or variable used by the credential security engine.
	MetricTOTPReplayDetected
	// MetricTOTPRateLimited is an exported constant or variable used by the credential security engine.
	MetricTOTPRateLimited
	// MetricBackupCodeUsed is an exported constant or variable used by the credential security engine.
	MetricBackupCodeUsed
	// MetricBackupCodeFailed is an exported constant or variable used by the credential security engine.
	MetricBackupCodeFailed
	// MetricBackupCodeRegenerated is an exported constant or variable used by the credential security engine.
	MetricBackupCodeRegenerated
	// MetricStateIssued is an exported constant or variable used by the credential security engine.
	MetricStateIssued
	// MetricStateValidated is an exported constant or variable used by the credential security engine.
	MetricStateValidated
	// MetricStateRejected is an exported constant or variable used by the credential security engine.
	MetricStateRejected
	// MetricStateReplayDetected is an exported constant or variable used by the credential security engine.
	MetricStateReplayDetected
	// MetricRedirectRejected is an exported constant or variable used by the credential security engine.
	MetricRedirectRejected
	// MetricAttackDetected is an exported constant or variable used by the credential security engine.
	MetricAttackDetected
	// MetricEncryptOps is an exported constant or variable used by the credential security engine.
	MetricEncryptOps
	// MetricDecryptOps is an exported constant or variable used by the credential security engine.
	MetricDecryptOps
	// MetricDecryptFailed is an exported constant or variable used by the credential security engine.
	MetricDecryptFailed
	// MetricKeyRotations is an exported constant or variable used by the credential security engine.
	MetricKeyRotations
	// MetricRotationFailed is an exported constant or variable used by the credential security engine.
	MetricRotationFailed
	// MetricRateLimitHit is an exported constant or variable used by the credential security engine.
	MetricRateLimitHit

	metricIDCount
)

// paddedCounter keeps each counter on its own cache line to avoid false
// sharing between hot verification paths.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics defines a public type used by goSecure APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot defines a public type used by goSecure APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc describes the inc operation and its observable behavior.
//
// Inc does not mutate shared global state beyond its own counter slot and can be used concurrently.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value describes the value operation and its observable behavior.
//
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
