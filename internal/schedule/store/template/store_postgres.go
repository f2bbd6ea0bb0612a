package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// PostgresStore persists templates in PostgreSQL. The weekly pattern is
// stored as a JSONB document keyed by weekday name.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, template *domain.Template) error {
	pattern, err := json.Marshal(template.Pattern)
	if err != nil {
		return fmt.Errorf("encode template pattern: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO templates (id, athlete_id, name, pattern, usage_count, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			pattern = EXCLUDED.pattern,
			usage_count = EXCLUDED.usage_count,
			is_default = EXCLUDED.is_default,
			updated_at = EXCLUDED.updated_at`,
		template.ID.String(), template.AthleteID.String(), template.Name, pattern,
		template.UsageCount, template.IsDefault, template.CreatedAt, template.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, templateID id.TemplateID) (*domain.Template, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, athlete_id, name, pattern, usage_count, is_default, created_at, updated_at
		FROM templates WHERE id = $1`, templateID.String())
	return scanTemplate(row)
}

func (s *PostgresStore) ListByAthlete(ctx context.Context, athleteID id.AthleteID) ([]*domain.Template, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, athlete_id, name, pattern, usage_count, is_default, created_at, updated_at
		FROM templates WHERE athlete_id = $1 ORDER BY name ASC`, athleteID.String())
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.Template
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, template)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ClearDefault(ctx context.Context, athleteID id.AthleteID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE templates SET is_default = FALSE
		WHERE athlete_id = $1 AND is_default`, athleteID.String())
	if err != nil {
		return fmt.Errorf("clear default template: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, templateID id.TemplateID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, templateID.String())
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var template domain.Template
	var rawID, rawAthlete string
	var rawPattern []byte

	err := row.Scan(&rawID, &rawAthlete, &template.Name, &rawPattern,
		&template.UsageCount, &template.IsDefault, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}

	templateID, err := id.ParseTemplateID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan template id: %w", err)
	}
	athleteID, err := id.ParseAthleteID(rawAthlete)
	if err != nil {
		return nil, fmt.Errorf("scan template athlete id: %w", err)
	}

	template.ID = templateID
	template.AthleteID = athleteID
	if err := json.Unmarshal(rawPattern, &template.Pattern); err != nil {
		return nil, fmt.Errorf("decode template pattern: %w", err)
	}
	return &template, nil
}
