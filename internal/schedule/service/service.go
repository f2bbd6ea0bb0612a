// Package service orchestrates the quarterly filing workflow: quarter
// creation, pattern expansion and application, single-slot edits, pattern
// mining, submission, and completion tracking. Stores are injected; the
// service owns the ordering and error translation, never the persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"whereabouts/internal/audit"
	"whereabouts/internal/calendar"
	"whereabouts/internal/domain"
	"whereabouts/internal/expansion"
	"whereabouts/internal/mining"
	"whereabouts/internal/schedule/metrics"
	"whereabouts/internal/schedule/ports"
	"whereabouts/internal/validation"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
	"whereabouts/pkg/platform/sentinel"
)

// Service implements the filing operations over injected stores.
type Service struct {
	quarters     ports.QuarterStore
	slots        ports.SlotStore
	templates    ports.TemplateStore
	competitions ports.CompetitionStore
	cache        ports.SummaryCache
	audit        ports.AuditPublisher
	logger       *slog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithTemplateStore(templates ports.TemplateStore) Option {
	return func(s *Service) { s.templates = templates }
}

func WithCompetitionStore(competitions ports.CompetitionStore) Option {
	return func(s *Service) { s.competitions = competitions }
}

func WithCache(cache ports.SummaryCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service around the two mandatory stores. Everything else is
// optional and nil-tolerant.
func New(quarters ports.QuarterStore, slots ports.SlotStore, opts ...Option) *Service {
	s := &Service{
		quarters: quarters,
		slots:    slots,
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateQuarterWithPattern creates the filing record for (athlete, year,
// quarter), expands the weekly pattern across the full period, and persists
// the resulting slots in chunks. Competition windows override their dates
// during expansion. Returns the created quarter and the number of slots
// committed; on a partial batch failure the quarter and committed count are
// still returned alongside the error.
func (s *Service) CreateQuarterWithPattern(ctx context.Context, athleteID id.AthleteID, year int, name domain.QuarterName, pattern domain.WeeklyPattern, competitions []domain.Competition) (*domain.Quarter, int, error) {
	if result := validation.CheckWeeklyPattern(pattern, nil); !result.Valid() {
		return nil, 0, &ValidationFailedError{Result: result}
	}

	span, err := calendar.QuarterDates(year, name)
	if err != nil {
		return nil, 0, err
	}

	started := s.now()
	slots, err := expansion.Expand(pattern, span.StartDate, span.EndDate, competitions)
	if err != nil {
		return nil, 0, err
	}
	s.metrics.ObserveExpand(s.now().Sub(started))

	quarter := &domain.Quarter{
		ID:             id.NewQuarterID(),
		AthleteID:      athleteID,
		Year:           year,
		Name:           name,
		StartDate:      span.StartDate,
		EndDate:        span.EndDate,
		FilingDeadline: span.FilingDeadline,
		Status:         domain.QuarterDraft,
		TotalDays:      span.TotalDays,
		CreatedAt:      s.now(),
		UpdatedAt:      s.now(),
	}

	if err := s.quarters.Create(ctx, quarter); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, 0, dErrors.Newf(dErrors.CodeConflict,
				"quarter %s %d already exists for this athlete", name, year)
		}
		return nil, 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "create quarter")
	}

	s.stampSlots(slots, quarter.ID, athleteID)
	result := s.bulkCreate(ctx, slots)
	if result.Err != nil {
		// Committed chunks stay committed; the caller sees how far we got.
		s.recomputeBestEffort(ctx, quarter.ID)
		return quarter, result.CommittedCount, &PartialBatchError{
			Committed:     result.CommittedCount,
			FailedAtChunk: result.FailedAtChunk,
			Cause:         result.Err,
		}
	}

	updated, err := s.RecomputeCompletion(ctx, quarter.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "completion recompute failed after create",
			"quarter_id", quarter.ID, "error", err)
	} else {
		quarter = updated
	}

	ports.LogAudit(ctx, s.logger, s.audit, s.auditEvent(athleteID, quarter.ID,
		audit.ActionQuarterCreated, map[string]string{
			"period":        fmt.Sprintf("%s %d", name, year),
			"slots_created": strconv.Itoa(result.CommittedCount),
		}))
	return quarter, result.CommittedCount, nil
}

// ApplyPatternToExistingQuarter projects a weekly pattern onto an existing
// quarter. With overwrite set, every slot of the quarter is replaced; without
// it, only dates that have no slot yet are filled in. Returns how many slots
// were newly created and how many replaced existing dates.
func (s *Service) ApplyPatternToExistingQuarter(ctx context.Context, quarterID id.QuarterID, athleteID id.AthleteID, pattern domain.WeeklyPattern, overwrite bool) (int, int, error) {
	if result := validation.CheckWeeklyPattern(pattern, nil); !result.Valid() {
		return 0, 0, &ValidationFailedError{Result: result}
	}

	quarter, err := s.getOwnedQuarter(ctx, quarterID, athleteID)
	if err != nil {
		return 0, 0, err
	}
	if quarter.Status.Terminal() {
		return 0, 0, dErrors.Newf(dErrors.CodeConflict,
			"quarter is %s and can no longer be edited", quarter.Status)
	}

	existing, err := s.slots.ListByQuarter(ctx, quarterID)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "list quarter slots")
	}
	existingDates := make(map[string]struct{}, len(existing))
	for _, slot := range existing {
		existingDates[domain.DateKey(slot.Date)] = struct{}{}
	}

	started := s.now()
	expanded, err := expansion.Expand(pattern, quarter.StartDate, quarter.EndDate, nil)
	if err != nil {
		return 0, 0, err
	}
	s.metrics.ObserveExpand(s.now().Sub(started))
	s.stampSlots(expanded, quarterID, athleteID)

	toWrite := expanded
	if overwrite {
		if err := s.deleteAllSlots(ctx, quarterID, existing); err != nil {
			return 0, 0, err
		}
	} else {
		toWrite = toWrite[:0:0]
		for _, slot := range expanded {
			if _, taken := existingDates[domain.DateKey(slot.Date)]; !taken {
				toWrite = append(toWrite, slot)
			}
		}
	}

	result := s.bulkCreate(ctx, toWrite)
	created, updated := 0, 0
	for _, slot := range toWrite[:result.CommittedCount] {
		if _, had := existingDates[domain.DateKey(slot.Date)]; had {
			updated++
		} else {
			created++
		}
	}
	if result.Err != nil {
		s.recomputeBestEffort(ctx, quarterID)
		return created, updated, &PartialBatchError{
			Committed:     result.CommittedCount,
			FailedAtChunk: result.FailedAtChunk,
			Cause:         result.Err,
		}
	}

	s.recomputeBestEffort(ctx, quarterID)
	ports.LogAudit(ctx, s.logger, s.audit, s.auditEvent(athleteID, quarterID,
		audit.ActionPatternApplied, map[string]string{
			"overwrite":     strconv.FormatBool(overwrite),
			"slots_created": strconv.Itoa(created),
			"slots_updated": strconv.Itoa(updated),
		}))
	return created, updated, nil
}

// ExtractPatternFromQuarter mines the dominant weekly pattern out of a
// quarter's existing slots. A quarter with no slots yields a nil pattern and
// no error; that is an empty result, not a failure.
func (s *Service) ExtractPatternFromQuarter(ctx context.Context, quarterID id.QuarterID) (domain.WeeklyPattern, error) {
	if _, err := s.getQuarter(ctx, quarterID); err != nil {
		return nil, err
	}

	slots, err := s.slots.ListByQuarter(ctx, quarterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list quarter slots")
	}

	assignments := make([]domain.DailySlotAssignment, len(slots))
	for i, slot := range slots {
		assignments[i] = *slot
	}

	pattern, ok := mining.ExtractPattern(assignments)
	if !ok {
		return nil, nil
	}
	s.metrics.IncPatternMined()
	return pattern, nil
}

// CopyQuarterPattern mines the source quarter's pattern and creates the
// target quarter from it.
func (s *Service) CopyQuarterPattern(ctx context.Context, sourceID id.QuarterID, targetYear int, targetName domain.QuarterName, athleteID id.AthleteID) (*domain.Quarter, int, error) {
	pattern, err := s.ExtractPatternFromQuarter(ctx, sourceID)
	if err != nil {
		return nil, 0, err
	}
	if pattern == nil {
		return nil, 0, dErrors.New(dErrors.CodeInvalidInput,
			"source quarter has no slots to derive a pattern from")
	}
	return s.CreateQuarterWithPattern(ctx, athleteID, targetYear, targetName, pattern, nil)
}

// SlotInput is the caller-editable portion of a daily slot.
type SlotInput struct {
	LocationType  domain.LocationType
	TimeStart     string
	TimeEnd       string
	IsCompetition bool
	CompetitionID *id.CompetitionID
	Notes         string
	IsComplete    bool
}

// UpsertSlot writes one day's slot. An existing row for (quarter, date) is
// updated in place with its modification count incremented; a new row starts
// at zero. The quarter's completion figures are recomputed afterwards.
func (s *Service) UpsertSlot(ctx context.Context, quarterID id.QuarterID, athleteID id.AthleteID, date time.Time, input SlotInput) (*domain.DailySlotAssignment, error) {
	quarter, err := s.getOwnedQuarter(ctx, quarterID, athleteID)
	if err != nil {
		return nil, err
	}
	if quarter.Status.Terminal() {
		return nil, dErrors.Newf(dErrors.CodeConflict,
			"quarter is %s and can no longer be edited", quarter.Status)
	}

	day := domain.DateOnly(date)
	if day.Before(quarter.StartDate) || day.After(quarter.EndDate) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"date %s is outside the quarter %s..%s",
			domain.DateKey(day), domain.DateKey(quarter.StartDate), domain.DateKey(quarter.EndDate))
	}
	if errs := validation.CheckDaySlot(domain.WeekdayOf(day), domain.DaySlotPattern{
		LocationType: input.LocationType,
		TimeStart:    input.TimeStart,
		TimeEnd:      input.TimeEnd,
	}); len(errs) > 0 {
		return nil, &ValidationFailedError{Result: validation.Result{Errors: errs}}
	}

	slot, err := s.slots.Find(ctx, quarterID, day)
	switch {
	case err == nil:
		slot.LocationType = input.LocationType
		slot.TimeStart = input.TimeStart
		slot.TimeEnd = input.TimeEnd
		slot.IsCompetition = input.IsCompetition
		slot.CompetitionID = input.CompetitionID
		slot.Notes = input.Notes
		slot.IsComplete = input.IsComplete
		slot.ModificationCount++
		slot.UpdatedAt = s.now()
	case errors.Is(err, sentinel.ErrNotFound):
		slot = &domain.DailySlotAssignment{
			ID:            id.NewSlotID(),
			QuarterID:     quarterID,
			AthleteID:     athleteID,
			Date:          day,
			LocationType:  input.LocationType,
			TimeStart:     input.TimeStart,
			TimeEnd:       input.TimeEnd,
			IsCompetition: input.IsCompetition,
			CompetitionID: input.CompetitionID,
			Notes:         input.Notes,
			IsComplete:    input.IsComplete,
			CreatedAt:     s.now(),
			UpdatedAt:     s.now(),
		}
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "find slot")
	}

	if err := s.slots.Put(ctx, slot); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "put slot")
	}

	s.recomputeBestEffort(ctx, quarterID)
	ports.LogAudit(ctx, s.logger, s.audit, s.auditEvent(athleteID, quarterID,
		audit.ActionSlotUpserted, map[string]string{
			"date":               domain.DateKey(day),
			"modification_count": strconv.Itoa(slot.ModificationCount),
		}))
	return slot, nil
}

// SubmitQuarter moves a complete quarter to submitted. Submitted quarters
// are terminal for the tracker; only an external unlock reopens them.
func (s *Service) SubmitQuarter(ctx context.Context, quarterID id.QuarterID) error {
	quarter, err := s.getQuarter(ctx, quarterID)
	if err != nil {
		return err
	}
	if quarter.Status.Terminal() {
		return dErrors.Newf(dErrors.CodeConflict, "quarter is already %s", quarter.Status)
	}
	if quarter.Status != domain.QuarterComplete {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"quarter is %d%% complete; every day must be filed before submission",
			quarter.CompletionPercentage)
	}

	quarter.Status = domain.QuarterSubmitted
	quarter.UpdatedAt = s.now()
	if err := s.quarters.Update(ctx, quarter); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "update quarter")
	}
	s.invalidateCache(ctx, quarterID)

	ports.LogAudit(ctx, s.logger, s.audit, s.auditEvent(quarter.AthleteID, quarterID,
		audit.ActionQuarterSubmitted, nil))
	return nil
}

// GetQuarter reads a quarter through the summary cache when one is wired.
func (s *Service) GetQuarter(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error) {
	if s.cache != nil {
		if quarter, err := s.cache.GetQuarter(ctx, quarterID); err == nil {
			return quarter, nil
		}
	}

	quarter, err := s.getQuarter(ctx, quarterID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetQuarter(ctx, quarter); err != nil {
			s.logger.WarnContext(ctx, "quarter cache set failed", "quarter_id", quarterID, "error", err)
		}
	}
	return quarter, nil
}

// ListQuarters returns an athlete's quarters, newest period first.
func (s *Service) ListQuarters(ctx context.Context, athleteID id.AthleteID) ([]*domain.Quarter, error) {
	quarters, err := s.quarters.ListByAthlete(ctx, athleteID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list quarters")
	}
	return quarters, nil
}

// ListSlots returns a quarter's slots in ascending date order.
func (s *Service) ListSlots(ctx context.Context, quarterID id.QuarterID) ([]*domain.DailySlotAssignment, error) {
	if _, err := s.getQuarter(ctx, quarterID); err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByQuarter(ctx, quarterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list quarter slots")
	}
	return slots, nil
}

func (s *Service) getQuarter(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error) {
	quarter, err := s.quarters.Get(ctx, quarterID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "quarter %s not found", quarterID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get quarter")
	}
	return quarter, nil
}

func (s *Service) getOwnedQuarter(ctx context.Context, quarterID id.QuarterID, athleteID id.AthleteID) (*domain.Quarter, error) {
	quarter, err := s.getQuarter(ctx, quarterID)
	if err != nil {
		return nil, err
	}
	if quarter.AthleteID != athleteID {
		// Report foreign quarters as absent rather than leaking their existence.
		return nil, dErrors.Newf(dErrors.CodeNotFound, "quarter %s not found", quarterID)
	}
	return quarter, nil
}

// stampSlots fills in the identity fields expansion leaves blank.
func (s *Service) stampSlots(slots []domain.DailySlotAssignment, quarterID id.QuarterID, athleteID id.AthleteID) {
	now := s.now()
	for i := range slots {
		slots[i].ID = id.NewSlotID()
		slots[i].QuarterID = quarterID
		slots[i].AthleteID = athleteID
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
	}
}

func (s *Service) auditEvent(athleteID id.AthleteID, quarterID id.QuarterID, action audit.Action, detail map[string]string) audit.Event {
	return audit.Event{
		AthleteID: athleteID,
		QuarterID: quarterID,
		Action:    action,
		Timestamp: s.now(),
		Detail:    detail,
	}
}

func (s *Service) invalidateCache(ctx context.Context, quarterID id.QuarterID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, quarterID); err != nil {
		s.logger.WarnContext(ctx, "quarter cache invalidate failed",
			"quarter_id", quarterID, "error", err)
	}
}
