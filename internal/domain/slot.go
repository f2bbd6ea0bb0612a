package domain

import (
	"time"

	id "whereabouts/pkg/domain"
)

// DateLayout is the canonical wire format for naive calendar dates.
const DateLayout = "2006-01-02"

// DateOnly normalizes a timestamp to its calendar date at UTC midnight.
// All engine date arithmetic runs on normalized dates; no timezone
// conversion happens anywhere.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey renders a date as its canonical YYYY-MM-DD key, the uniqueness
// key of a slot within its quarter.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DailySlotAssignment is the concrete, dated 60-minute obligation for one
// calendar day of a quarter. Exactly one assignment exists per date within
// a quarter.
type DailySlotAssignment struct {
	ID                id.SlotID         `json:"id"`
	QuarterID         id.QuarterID      `json:"quarter_id"`
	AthleteID         id.AthleteID      `json:"athlete_id"`
	Date              time.Time         `json:"date"`
	LocationType      LocationType      `json:"location_type"`
	TimeStart         string            `json:"time_start"`
	TimeEnd           string            `json:"time_end"`
	IsCompetition     bool              `json:"is_competition"`
	CompetitionID     *id.CompetitionID `json:"competition_id,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	IsComplete        bool              `json:"is_complete"`
	ModificationCount int               `json:"modification_count"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
