// Package secutil holds the shared entropy and timing primitives every
// secret-comparison site in the module goes through: Shannon entropy
// estimation, constant-time equality, wall-clock latency floors, and
// crypto/rand helpers with degenerate-output detection.
package secutil
