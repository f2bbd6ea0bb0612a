package service

import (
	"context"
	"time"

	"whereabouts/internal/domain"
	"whereabouts/internal/schedule/ports"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

// BatchResult reports the outcome of a chunked bulk write. CommittedCount is
// exact: chunks commit strictly in order, so everything before the failing
// chunk is durable and nothing after it was attempted.
type BatchResult struct {
	CommittedCount int
	FailedAtChunk  int
	Err            error
}

// BulkCreate persists slots for a quarter in store-cap sized chunks. The
// public entry stamps ownership first; the service's own call sites stamp
// during expansion and use bulkCreate directly.
func (s *Service) BulkCreate(ctx context.Context, quarterID id.QuarterID, athleteID id.AthleteID, slots []domain.DailySlotAssignment) BatchResult {
	s.stampSlots(slots, quarterID, athleteID)
	return s.bulkCreate(ctx, slots)
}

// bulkCreate walks the slots in MaxBatchItems chunks, committing each chunk
// in its own transaction. Chunks are sequential; there is no cross-chunk
// atomicity. On failure the result carries the 1-based index of the chunk
// that failed and the count of slots already committed.
func (s *Service) bulkCreate(ctx context.Context, slots []domain.DailySlotAssignment) BatchResult {
	var result BatchResult

	for offset := 0; offset < len(slots); offset += ports.MaxBatchItems {
		end := min(offset+ports.MaxBatchItems, len(slots))
		chunk := make([]*domain.DailySlotAssignment, 0, end-offset)
		for i := offset; i < end; i++ {
			chunk = append(chunk, &slots[i])
		}

		chunkIndex := offset/ports.MaxBatchItems + 1
		if err := s.slots.CommitBatch(ctx, chunk); err != nil {
			s.metrics.IncChunkFailure()
			result.FailedAtChunk = chunkIndex
			result.Err = dErrors.Wrap(err, dErrors.CodeUnavailable, "commit slot chunk")
			return result
		}
		result.CommittedCount += len(chunk)
		s.metrics.AddSlotsCommitted(len(chunk))
	}

	return result
}

// deleteAllSlots removes every existing slot of a quarter in chunked date
// batches, for the overwrite path of pattern application.
func (s *Service) deleteAllSlots(ctx context.Context, quarterID id.QuarterID, existing []*domain.DailySlotAssignment) error {
	dates := make([]time.Time, len(existing))
	for i, slot := range existing {
		dates[i] = slot.Date
	}

	for offset := 0; offset < len(dates); offset += ports.MaxBatchItems {
		end := min(offset+ports.MaxBatchItems, len(dates))
		if err := s.slots.DeleteBatch(ctx, quarterID, dates[offset:end]); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "delete slot chunk")
		}
	}
	return nil
}
