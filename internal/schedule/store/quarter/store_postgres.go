package quarter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error code for unique constraint hits.
const uniqueViolation = "23505"

// PostgresStore persists quarters in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const quarterColumns = `id, athlete_id, year, quarter_name, start_date, end_date,
	filing_deadline, status, completion_percentage, days_completed, total_days,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, quarter *domain.Quarter) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quarters (`+quarterColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		quarter.ID.String(), quarter.AthleteID.String(), quarter.Year, string(quarter.Name),
		quarter.StartDate, quarter.EndDate, quarter.FilingDeadline, string(quarter.Status),
		quarter.CompletionPercentage, quarter.DaysCompleted, quarter.TotalDays,
		quarter.CreatedAt, quarter.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create quarter: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+quarterColumns+` FROM quarters WHERE id = $1`, quarterID.String())
	return scanQuarter(row)
}

func (s *PostgresStore) Update(ctx context.Context, quarter *domain.Quarter) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quarters SET
			status = $2, completion_percentage = $3, days_completed = $4,
			filing_deadline = $5, updated_at = $6
		WHERE id = $1`,
		quarter.ID.String(), string(quarter.Status), quarter.CompletionPercentage,
		quarter.DaysCompleted, quarter.FilingDeadline, quarter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quarter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByPeriod(ctx context.Context, athleteID id.AthleteID, year int, name domain.QuarterName) (*domain.Quarter, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+quarterColumns+` FROM quarters
		WHERE athlete_id = $1 AND year = $2 AND quarter_name = $3`,
		athleteID.String(), year, string(name))
	return scanQuarter(row)
}

func (s *PostgresStore) ListByAthlete(ctx context.Context, athleteID id.AthleteID) ([]*domain.Quarter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quarterColumns+` FROM quarters
		WHERE athlete_id = $1 ORDER BY start_date DESC`, athleteID.String())
	if err != nil {
		return nil, fmt.Errorf("list quarters: %w", err)
	}
	defer rows.Close()

	var out []*domain.Quarter
	for rows.Next() {
		quarter, err := scanQuarter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, quarter)
	}
	return out, rows.Err()
}

func scanQuarter(row pgx.Row) (*domain.Quarter, error) {
	var quarter domain.Quarter
	var rawID, rawAthlete, rawName, rawStatus string
	err := row.Scan(&rawID, &rawAthlete, &quarter.Year, &rawName,
		&quarter.StartDate, &quarter.EndDate, &quarter.FilingDeadline, &rawStatus,
		&quarter.CompletionPercentage, &quarter.DaysCompleted, &quarter.TotalDays,
		&quarter.CreatedAt, &quarter.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan quarter: %w", err)
	}

	quarterID, err := id.ParseQuarterID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan quarter id: %w", err)
	}
	athleteID, err := id.ParseAthleteID(rawAthlete)
	if err != nil {
		return nil, fmt.Errorf("scan athlete id: %w", err)
	}

	quarter.ID = quarterID
	quarter.AthleteID = athleteID
	quarter.Name = domain.QuarterName(rawName)
	quarter.Status = domain.QuarterStatus(rawStatus)
	quarter.StartDate = domain.DateOnly(quarter.StartDate)
	quarter.EndDate = domain.DateOnly(quarter.EndDate)
	quarter.FilingDeadline = domain.DateOnly(quarter.FilingDeadline)
	return &quarter, nil
}
