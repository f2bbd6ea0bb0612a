package service

import (
	"errors"
	"fmt"

	"whereabouts/internal/validation"
	dErrors "whereabouts/pkg/domain-errors"
)

// ValidationFailedError carries the full field-level validation result so
// handlers can serialize it for the UI instead of a flattened message.
type ValidationFailedError struct {
	Result validation.Result
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("pattern validation failed with %d error(s)", len(e.Result.Errors))
}

// Unwrap ties the error into the coded-error taxonomy handlers map from.
func (e *ValidationFailedError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvalidInput, "pattern validation failed")
}

// PartialBatchError reports a chunked write that stopped mid-way. Committed
// chunks stay committed; the caller learns exactly how far the write got.
type PartialBatchError struct {
	Committed     int
	FailedAtChunk int
	Cause         error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("batch write failed at chunk %d after committing %d slot(s): %v",
		e.FailedAtChunk, e.Committed, e.Cause)
}

func (e *PartialBatchError) Unwrap() error { return e.Cause }

// AsPartialBatch extracts a PartialBatchError from an error chain.
func AsPartialBatch(err error) (*PartialBatchError, bool) {
	var pbe *PartialBatchError
	if errors.As(err, &pbe) {
		return pbe, true
	}
	return nil, false
}
