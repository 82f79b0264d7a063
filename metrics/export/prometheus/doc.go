// Package prometheus provides Prometheus collectors for goSecure metrics.
//
// [NewPrometheusExporter] accepts a [goSecure.Engine] and exposes an [http.Handler]
// that renders all goSecure counters in Prometheus text exposition format.
// Counter names are prefixed gosecure_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
