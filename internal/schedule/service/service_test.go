package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whereabouts/internal/calendar"
	"whereabouts/internal/domain"
	"whereabouts/internal/schedule/ports"
	"whereabouts/internal/schedule/store/quarter"
	"whereabouts/internal/schedule/store/slot"
	"whereabouts/internal/schedule/store/template"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

type fixture struct {
	svc      *Service
	quarters *quarter.MemoryStore
	slots    *slot.MemoryStore
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	quarters := quarter.NewMemory()
	slots := slot.NewMemory()
	opts = append([]Option{
		WithTemplateStore(template.NewMemory()),
		WithClock(func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }),
	}, opts...)

	return &fixture{
		svc:      New(quarters, slots, opts...),
		quarters: quarters,
		slots:    slots,
	}
}

func validPattern() domain.WeeklyPattern {
	p := domain.WeeklyPattern{}
	for _, day := range domain.WeekOrder {
		p[day] = domain.DaySlotPattern{LocationType: domain.LocationHome, TimeStart: "06:00", TimeEnd: "07:00"}
	}
	p[domain.Wednesday] = domain.DaySlotPattern{LocationType: domain.LocationGym, TimeStart: "18:00", TimeEnd: "19:00"}
	return p
}

// seedQuarter inserts a quarter record without slots, for the operations
// that act on an existing quarter.
func (f *fixture) seedQuarter(t *testing.T, athleteID id.AthleteID, year int, name domain.QuarterName, status domain.QuarterStatus) *domain.Quarter {
	t.Helper()

	span, err := calendar.QuarterDates(year, name)
	require.NoError(t, err)

	q := &domain.Quarter{
		ID:             id.NewQuarterID(),
		AthleteID:      athleteID,
		Year:           year,
		Name:           name,
		StartDate:      span.StartDate,
		EndDate:        span.EndDate,
		FilingDeadline: span.FilingDeadline,
		Status:         status,
		TotalDays:      span.TotalDays,
	}
	require.NoError(t, f.quarters.Create(context.Background(), q))
	return q
}

func TestCreateQuarterWithPattern(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	t.Run("expands the full quarter and lands complete", func(t *testing.T) {
		f := newFixture(t)

		q, created, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q1, validPattern(), nil)
		require.NoError(t, err)
		assert.Equal(t, 90, created)
		assert.Equal(t, 90, q.TotalDays)
		assert.Equal(t, 90, q.DaysCompleted)
		assert.Equal(t, 100, q.CompletionPercentage)
		assert.Equal(t, domain.QuarterComplete, q.Status)

		slots, err := f.slots.ListByQuarter(ctx, q.ID)
		require.NoError(t, err)
		require.Len(t, slots, 90)
		assert.Equal(t, q.StartDate, slots[0].Date)
		assert.Equal(t, q.EndDate, slots[len(slots)-1].Date)
		for _, s := range slots {
			assert.Equal(t, q.ID, s.QuarterID)
			assert.Equal(t, athleteID, s.AthleteID)
		}
	})

	t.Run("competition window overrides its dates", func(t *testing.T) {
		f := newFixture(t)
		comp := domain.Competition{
			ID:        id.NewCompetitionID(),
			Name:      "National Trials",
			StartDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC),
		}

		q, _, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q1, validPattern(), []domain.Competition{comp})
		require.NoError(t, err)

		got, err := f.slots.Find(ctx, q.ID, comp.StartDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, domain.LocationTraining, got.LocationType)
		assert.True(t, got.IsCompetition)
		require.NotNil(t, got.CompetitionID)
		assert.Equal(t, comp.ID, *got.CompetitionID)
		assert.Equal(t, "Competition: National Trials", got.Notes)
	})

	t.Run("duplicate period conflicts", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q2, validPattern(), nil)
		require.NoError(t, err)

		_, _, err = f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q2, validPattern(), nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("invalid pattern blocks before any write", func(t *testing.T) {
		f := newFixture(t)
		p := validPattern()
		p[domain.Monday] = domain.DaySlotPattern{LocationType: domain.LocationHome, TimeStart: "06:00", TimeEnd: "08:00"}

		_, created, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q1, p, nil)
		assert.Zero(t, created)

		var vErr *ValidationFailedError
		require.ErrorAs(t, err, &vErr)
		require.NotEmpty(t, vErr.Result.Errors)
		assert.Equal(t, "duration", vErr.Result.Errors[0].Field)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		quarters, err := f.quarters.ListByAthlete(ctx, athleteID)
		require.NoError(t, err)
		assert.Empty(t, quarters)
	})
}

func TestApplyPatternToExistingQuarter(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	t.Run("merge fills only empty dates", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q1, domain.QuarterDraft)

		_, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, q.StartDate, SlotInput{
			LocationType: domain.LocationTraining, TimeStart: "09:00", TimeEnd: "10:00", IsComplete: true,
		})
		require.NoError(t, err)

		created, updated, err := f.svc.ApplyPatternToExistingQuarter(ctx, q.ID, athleteID, validPattern(), false)
		require.NoError(t, err)
		assert.Equal(t, 89, created)
		assert.Zero(t, updated)

		// The pre-existing slot survives a merge untouched.
		kept, err := f.slots.Find(ctx, q.ID, q.StartDate)
		require.NoError(t, err)
		assert.Equal(t, "09:00", kept.TimeStart)
	})

	t.Run("overwrite replaces every date", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q1, domain.QuarterDraft)

		_, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, q.StartDate, SlotInput{
			LocationType: domain.LocationTraining, TimeStart: "09:00", TimeEnd: "10:00",
		})
		require.NoError(t, err)

		created, updated, err := f.svc.ApplyPatternToExistingQuarter(ctx, q.ID, athleteID, validPattern(), true)
		require.NoError(t, err)
		assert.Equal(t, 89, created)
		assert.Equal(t, 1, updated)

		replaced, err := f.slots.Find(ctx, q.ID, q.StartDate)
		require.NoError(t, err)
		assert.Equal(t, "06:00", replaced.TimeStart)
	})

	t.Run("submitted quarter rejects edits", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q1, domain.QuarterSubmitted)

		_, _, err := f.svc.ApplyPatternToExistingQuarter(ctx, q.ID, athleteID, validPattern(), true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("foreign quarter reads as absent", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q1, domain.QuarterDraft)

		_, _, err := f.svc.ApplyPatternToExistingQuarter(ctx, q.ID, id.NewAthleteID(), validPattern(), true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestUpsertSlot(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	t.Run("insert then update increments modification count", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q3, domain.QuarterDraft)
		date := q.StartDate.AddDate(0, 0, 5)

		first, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, date, SlotInput{
			LocationType: domain.LocationHome, TimeStart: "06:00", TimeEnd: "07:00", IsComplete: true,
		})
		require.NoError(t, err)
		assert.Zero(t, first.ModificationCount)

		second, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, date, SlotInput{
			LocationType: domain.LocationGym, TimeStart: "18:00", TimeEnd: "19:00", IsComplete: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, second.ModificationCount)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, domain.LocationGym, second.LocationType)
	})

	t.Run("recomputes completion after the write", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q3, domain.QuarterDraft)

		_, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, q.StartDate, SlotInput{
			LocationType: domain.LocationHome, TimeStart: "06:00", TimeEnd: "07:00", IsComplete: true,
		})
		require.NoError(t, err)

		got, err := f.svc.GetQuarter(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.DaysCompleted)
		assert.Equal(t, 1, got.CompletionPercentage) // round(1/92*100)
		assert.Equal(t, domain.QuarterIncomplete, got.Status)
	})

	t.Run("date outside the quarter is rejected", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q3, domain.QuarterDraft)

		_, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, q.EndDate.AddDate(0, 0, 1), SlotInput{
			LocationType: domain.LocationHome, TimeStart: "06:00", TimeEnd: "07:00",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("malformed slot is rejected with field errors", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q3, domain.QuarterDraft)

		_, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, q.StartDate, SlotInput{
			LocationType: domain.LocationHome, TimeStart: "6am", TimeEnd: "07:00",
		})

		var vErr *ValidationFailedError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "time_start", vErr.Result.Errors[0].Field)
	})

	t.Run("locked quarter rejects edits", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q3, domain.QuarterLocked)

		_, err := f.svc.UpsertSlot(ctx, q.ID, athleteID, q.StartDate, SlotInput{
			LocationType: domain.LocationHome, TimeStart: "06:00", TimeEnd: "07:00",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestSubmitQuarter(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	t.Run("complete quarter submits and becomes terminal", func(t *testing.T) {
		f := newFixture(t)

		q, _, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q1, validPattern(), nil)
		require.NoError(t, err)
		require.Equal(t, domain.QuarterComplete, q.Status)

		require.NoError(t, f.svc.SubmitQuarter(ctx, q.ID))

		got, err := f.svc.GetQuarter(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuarterSubmitted, got.Status)

		err = f.svc.SubmitQuarter(ctx, q.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("incomplete quarter cannot submit", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q1, domain.QuarterDraft)

		err := f.svc.SubmitQuarter(ctx, q.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestExtractAndCopy(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	t.Run("extract recovers the dominant pattern", func(t *testing.T) {
		f := newFixture(t)

		q, _, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q1, validPattern(), nil)
		require.NoError(t, err)

		pattern, err := f.svc.ExtractPatternFromQuarter(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, validPattern(), pattern)
	})

	t.Run("empty quarter mines nothing without failing", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q2, domain.QuarterDraft)

		pattern, err := f.svc.ExtractPatternFromQuarter(ctx, q.ID)
		require.NoError(t, err)
		assert.Nil(t, pattern)
	})

	t.Run("copy carries the mined pattern into a new quarter", func(t *testing.T) {
		f := newFixture(t)

		source, _, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q1, validPattern(), nil)
		require.NoError(t, err)

		target, created, err := f.svc.CopyQuarterPattern(ctx, source.ID, 2025, domain.Q2, athleteID)
		require.NoError(t, err)
		assert.Equal(t, 91, created)
		assert.Equal(t, domain.Q2, target.Name)

		mined, err := f.svc.ExtractPatternFromQuarter(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, validPattern(), mined)
	})

	t.Run("copy from an empty source is an input error", func(t *testing.T) {
		f := newFixture(t)
		source := f.seedQuarter(t, athleteID, 2025, domain.Q1, domain.QuarterDraft)

		_, _, err := f.svc.CopyQuarterPattern(ctx, source.ID, 2025, domain.Q2, athleteID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unknown quarter is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ExtractPatternFromQuarter(ctx, id.NewQuarterID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// fakeCache is a map-backed ports.SummaryCache for wiring tests.
type fakeCache struct {
	entries map[id.QuarterID]*domain.Quarter
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[id.QuarterID]*domain.Quarter)}
}

func (c *fakeCache) GetQuarter(_ context.Context, quarterID id.QuarterID) (*domain.Quarter, error) {
	q, ok := c.entries[quarterID]
	if !ok {
		return nil, errors.New("miss")
	}
	c.hits++
	copied := *q
	return &copied, nil
}

func (c *fakeCache) SetQuarter(_ context.Context, q *domain.Quarter) error {
	copied := *q
	c.entries[q.ID] = &copied
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, quarterID id.QuarterID) error {
	delete(c.entries, quarterID)
	return nil
}

var _ ports.SummaryCache = (*fakeCache)(nil)

func TestGetQuarterCaching(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()
	cache := newFakeCache()
	f := newFixture(t, WithCache(cache))

	q, _, err := f.svc.CreateQuarterWithPattern(ctx, athleteID, 2025, domain.Q1, validPattern(), nil)
	require.NoError(t, err)

	// First read populates, second read hits.
	_, err = f.svc.GetQuarter(ctx, q.ID)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	cached, err := f.svc.GetQuarter(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, q.ID, cached.ID)

	// A mutation invalidates; the next read goes back to the store.
	_, err = f.svc.UpsertSlot(ctx, q.ID, athleteID, q.StartDate, SlotInput{
		LocationType: domain.LocationGym, TimeStart: "18:00", TimeEnd: "19:00", IsComplete: true,
	})
	require.NoError(t, err)

	_, err = f.svc.GetQuarter(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}
