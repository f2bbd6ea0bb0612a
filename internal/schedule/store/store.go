// Package store holds the shared persistence schema for the schedule
// module's postgres-backed stores.
package store

import _ "embed"

// Schema creates the quarters, daily_slots, and templates collections.
// Idempotent; integration tests and fresh deployments apply it directly.
//
//go:embed schema.sql
var Schema string
