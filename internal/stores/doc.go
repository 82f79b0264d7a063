// Package stores contains the Redis persistence for single-use OAuth state
// records and TOTP replay counters. Both stores expose the atomic
// operations the engine's concurrency model depends on: state consumption
// is one GETDEL, counter advancement is an optimistic WATCH transaction.
package stores
