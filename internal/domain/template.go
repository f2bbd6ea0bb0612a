package domain

import (
	"time"

	id "whereabouts/pkg/domain"
)

// Template is a named, persisted weekly pattern an athlete can reapply
// across quarters. At most one template per athlete carries IsDefault;
// the save path enforces that, not the type.
type Template struct {
	ID         id.TemplateID `json:"id"`
	AthleteID  id.AthleteID  `json:"athlete_id"`
	Name       string        `json:"name"`
	Pattern    WeeklyPattern `json:"pattern"`
	UsageCount int           `json:"usage_count"`
	IsDefault  bool          `json:"is_default"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
