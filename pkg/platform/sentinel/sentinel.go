package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about persisted resources, not validation
// failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: write lost to a uniqueness or concurrent-update constraint
// - ErrInvalidState: entity in wrong lifecycle state for the operation
//   (e.g. writing slots into a submitted or locked quarter)
// - ErrBatchTooLarge: a single batch exceeded the store's per-transaction cap
// - ErrUnavailable: store temporarily unreachable
//
// For validation errors on caller input, use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrBatchTooLarge = errors.New("batch exceeds per-transaction cap")
	ErrUnavailable   = errors.New("unavailable")
)
