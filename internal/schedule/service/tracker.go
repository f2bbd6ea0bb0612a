package service

import (
	"context"
	"math"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

// RecomputeCompletion recounts a quarter's complete slots and refreshes its
// days_completed, completion_percentage, and status. The percentage is
// rounded half-up; submitted and locked quarters keep their status but still
// get fresh numbers. The quarter's cache entry is invalidated on success.
func (s *Service) RecomputeCompletion(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error) {
	quarter, err := s.getQuarter(ctx, quarterID)
	if err != nil {
		return nil, err
	}

	count, err := s.slots.CountComplete(ctx, quarterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "count complete slots")
	}

	quarter.DaysCompleted = count
	quarter.CompletionPercentage = completionPercent(count, quarter.TotalDays)
	if !quarter.Status.Terminal() {
		quarter.Status = statusFor(quarter.CompletionPercentage)
	}
	quarter.UpdatedAt = s.now()

	if err := s.quarters.Update(ctx, quarter); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "update quarter")
	}

	s.invalidateCache(ctx, quarterID)
	s.metrics.IncRecompute(string(quarter.Status))
	return quarter, nil
}

// recomputeBestEffort runs the tracker after a slot mutation. A tracker
// failure never rolls back or masks the write that triggered it.
func (s *Service) recomputeBestEffort(ctx context.Context, quarterID id.QuarterID) {
	if _, err := s.RecomputeCompletion(ctx, quarterID); err != nil {
		s.logger.WarnContext(ctx, "completion recompute failed",
			"quarter_id", quarterID, "error", err)
	}
}

func completionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// statusFor maps a completion percentage to the non-terminal status ladder.
func statusFor(percent int) domain.QuarterStatus {
	switch {
	case percent == 0:
		return domain.QuarterDraft
	case percent >= 100:
		return domain.QuarterComplete
	default:
		return domain.QuarterIncomplete
	}
}
