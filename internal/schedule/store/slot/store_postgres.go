package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"whereabouts/internal/domain"
	"whereabouts/internal/schedule/ports"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// PostgresStore persists daily slots in PostgreSQL. Batch methods run in a
// single transaction each, which is what makes a chunk atomic in isolation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const slotColumns = `id, quarter_id, athlete_id, date, location_type, time_start,
	time_end, is_competition, competition_id, notes, is_complete,
	modification_count, created_at, updated_at`

const upsertSlotSQL = `
	INSERT INTO daily_slots (` + slotColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (quarter_id, date) DO UPDATE SET
		location_type = EXCLUDED.location_type,
		time_start = EXCLUDED.time_start,
		time_end = EXCLUDED.time_end,
		is_competition = EXCLUDED.is_competition,
		competition_id = EXCLUDED.competition_id,
		notes = EXCLUDED.notes,
		is_complete = EXCLUDED.is_complete,
		modification_count = EXCLUDED.modification_count,
		updated_at = EXCLUDED.updated_at`

func upsertArgs(slot *domain.DailySlotAssignment) []any {
	var competitionID *string
	if slot.CompetitionID != nil {
		raw := slot.CompetitionID.String()
		competitionID = &raw
	}
	return []any{
		slot.ID.String(), slot.QuarterID.String(), slot.AthleteID.String(),
		domain.DateOnly(slot.Date), string(slot.LocationType), slot.TimeStart,
		slot.TimeEnd, slot.IsCompetition, competitionID, slot.Notes,
		slot.IsComplete, slot.ModificationCount, slot.CreatedAt, slot.UpdatedAt,
	}
}

func (s *PostgresStore) Put(ctx context.Context, slot *domain.DailySlotAssignment) error {
	if _, err := s.pool.Exec(ctx, upsertSlotSQL, upsertArgs(slot)...); err != nil {
		return fmt.Errorf("put slot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, quarterID id.QuarterID, date time.Time) (*domain.DailySlotAssignment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+slotColumns+` FROM daily_slots
		WHERE quarter_id = $1 AND date = $2`,
		quarterID.String(), domain.DateOnly(date))
	return scanSlot(row)
}

func (s *PostgresStore) ListByQuarter(ctx context.Context, quarterID id.QuarterID) ([]*domain.DailySlotAssignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+slotColumns+` FROM daily_slots
		WHERE quarter_id = $1 ORDER BY date ASC`, quarterID.String())
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []*domain.DailySlotAssignment
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountComplete(ctx context.Context, quarterID id.QuarterID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM daily_slots
		WHERE quarter_id = $1 AND is_complete`, quarterID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count complete slots: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CommitBatch(ctx context.Context, slots []*domain.DailySlotAssignment) error {
	if len(slots) > ports.MaxBatchItems {
		return sentinel.ErrBatchTooLarge
	}
	if len(slots) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin slot batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	batch := &pgx.Batch{}
	for _, slot := range slots {
		batch.Queue(upsertSlotSQL, upsertArgs(slot)...)
	}

	results := tx.SendBatch(ctx, batch)
	for range slots {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("commit slot batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close slot batch: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) DeleteBatch(ctx context.Context, quarterID id.QuarterID, dates []time.Time) error {
	if len(dates) > ports.MaxBatchItems {
		return sentinel.ErrBatchTooLarge
	}
	if len(dates) == 0 {
		return nil
	}

	normalized := make([]time.Time, len(dates))
	for i, date := range dates {
		normalized[i] = domain.DateOnly(date)
	}

	_, err := s.pool.Exec(ctx, `
		DELETE FROM daily_slots WHERE quarter_id = $1 AND date = ANY($2)`,
		quarterID.String(), normalized)
	if err != nil {
		return fmt.Errorf("delete slot batch: %w", err)
	}
	return nil
}

func scanSlot(row pgx.Row) (*domain.DailySlotAssignment, error) {
	var slot domain.DailySlotAssignment
	var rawID, rawQuarter, rawAthlete, rawLocation string
	var rawCompetition *string

	err := row.Scan(&rawID, &rawQuarter, &rawAthlete, &slot.Date, &rawLocation,
		&slot.TimeStart, &slot.TimeEnd, &slot.IsCompetition, &rawCompetition,
		&slot.Notes, &slot.IsComplete, &slot.ModificationCount,
		&slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan slot: %w", err)
	}

	slotID, err := id.ParseSlotID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan slot id: %w", err)
	}
	quarterID, err := id.ParseQuarterID(rawQuarter)
	if err != nil {
		return nil, fmt.Errorf("scan slot quarter id: %w", err)
	}
	athleteID, err := id.ParseAthleteID(rawAthlete)
	if err != nil {
		return nil, fmt.Errorf("scan slot athlete id: %w", err)
	}

	slot.ID = slotID
	slot.QuarterID = quarterID
	slot.AthleteID = athleteID
	slot.LocationType = domain.LocationType(rawLocation)
	slot.Date = domain.DateOnly(slot.Date)
	if rawCompetition != nil {
		competitionID, err := id.ParseCompetitionID(*rawCompetition)
		if err != nil {
			return nil, fmt.Errorf("scan slot competition id: %w", err)
		}
		slot.CompetitionID = &competitionID
	}
	return &slot, nil
}
