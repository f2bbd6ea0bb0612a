// Package ports defines the store and publisher interfaces the schedule
// module depends on. Interfaces live here because both the service and its
// handlers consume them; implementations are injected, never reached through
// a package-level handle.
package ports

import (
	"context"
	"log/slog"
	"time"

	"whereabouts/internal/audit"
	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
)

// MaxBatchItems is the store's hard per-transaction item cap. Stores reject
// larger batches with sentinel.ErrBatchTooLarge; the persistence coordinator
// chunks its writes to stay under it.
const MaxBatchItems = 500

// QuarterStore persists quarterly filing records.
type QuarterStore interface {
	// Create inserts a new quarter. Returns sentinel.ErrConflict when a
	// quarter already exists for (athlete, year, name).
	Create(ctx context.Context, quarter *domain.Quarter) error

	// Get returns a quarter by id or sentinel.ErrNotFound.
	Get(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error)

	// Update persists changes to an existing quarter.
	Update(ctx context.Context, quarter *domain.Quarter) error

	// FindByPeriod returns the quarter for (athlete, year, name) or
	// sentinel.ErrNotFound.
	FindByPeriod(ctx context.Context, athleteID id.AthleteID, year int, name domain.QuarterName) (*domain.Quarter, error)

	// ListByAthlete returns all quarters of an athlete, newest period first.
	ListByAthlete(ctx context.Context, athleteID id.AthleteID) ([]*domain.Quarter, error)
}

// SlotStore persists daily slot assignments. One row exists per
// (quarter, date); Date values are normalized calendar dates.
type SlotStore interface {
	// Put writes a single slot, replacing any existing row for its
	// (quarter, date) key.
	Put(ctx context.Context, slot *domain.DailySlotAssignment) error

	// Find returns the slot for (quarter, date) or sentinel.ErrNotFound.
	Find(ctx context.Context, quarterID id.QuarterID, date time.Time) (*domain.DailySlotAssignment, error)

	// ListByQuarter returns a quarter's slots in ascending date order.
	ListByQuarter(ctx context.Context, quarterID id.QuarterID) ([]*domain.DailySlotAssignment, error)

	// CountComplete counts the quarter's slots flagged is_complete.
	CountComplete(ctx context.Context, quarterID id.QuarterID) (int, error)

	// CommitBatch atomically writes up to MaxBatchItems slots in one
	// transaction. Larger batches fail with sentinel.ErrBatchTooLarge
	// before any write happens.
	CommitBatch(ctx context.Context, slots []*domain.DailySlotAssignment) error

	// DeleteBatch atomically removes up to MaxBatchItems slots of a quarter
	// by date.
	DeleteBatch(ctx context.Context, quarterID id.QuarterID, dates []time.Time) error
}

// TemplateStore persists named weekly-pattern templates.
type TemplateStore interface {
	Save(ctx context.Context, template *domain.Template) error
	Get(ctx context.Context, templateID id.TemplateID) (*domain.Template, error)
	ListByAthlete(ctx context.Context, athleteID id.AthleteID) ([]*domain.Template, error)

	// ClearDefault drops the default flag from all of an athlete's
	// templates. The save path calls it before persisting a new default so
	// at most one default exists per athlete.
	ClearDefault(ctx context.Context, athleteID id.AthleteID) error

	Delete(ctx context.Context, templateID id.TemplateID) error
}

// CompetitionStore resolves competition references supplied by callers.
// Competitions are override inputs; the engine never writes them.
type CompetitionStore interface {
	Get(ctx context.Context, competitionID id.CompetitionID) (*domain.Competition, error)
	ListByIDs(ctx context.Context, ids []id.CompetitionID) ([]domain.Competition, error)
}

// SummaryCache is a read-through cache for quarter records. Misses return
// sentinel.ErrNotFound; writers invalidate after every mutation.
type SummaryCache interface {
	GetQuarter(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error)
	SetQuarter(ctx context.Context, quarter *domain.Quarter) error
	Invalidate(ctx context.Context, quarterID id.QuarterID) error
}

// AuditPublisher emits compliance audit events for slot-mutating operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit emits an audit event and logs it, tolerating a nil publisher or
// logger. Audit emission is best-effort; failures are logged, never
// propagated into the operation that triggered them.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event) {
	if publisher != nil {
		if err := publisher.Emit(ctx, event); err != nil && logger != nil {
			logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
		}
	}
	if logger != nil {
		logger.InfoContext(ctx, "audit", "action", event.Action,
			"athlete_id", event.AthleteID, "quarter_id", event.QuarterID)
	}
}
