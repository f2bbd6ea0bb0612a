package handler

import (
	"time"

	"whereabouts/internal/audit"
	"whereabouts/internal/domain"
	"whereabouts/internal/validation"
)

// QuarterResponse is the HTTP shape of a quarter record.
type QuarterResponse struct {
	ID                   string    `json:"id"`
	AthleteID            string    `json:"athlete_id"`
	Year                 int       `json:"year"`
	Quarter              string    `json:"quarter"`
	StartDate            string    `json:"start_date"`
	EndDate              string    `json:"end_date"`
	FilingDeadline       string    `json:"filing_deadline"`
	Status               string    `json:"status"`
	CompletionPercentage int       `json:"completion_percentage"`
	DaysCompleted        int       `json:"days_completed"`
	TotalDays            int       `json:"total_days"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func fromQuarter(q *domain.Quarter) *QuarterResponse {
	return &QuarterResponse{
		ID:                   q.ID.String(),
		AthleteID:            q.AthleteID.String(),
		Year:                 q.Year,
		Quarter:              string(q.Name),
		StartDate:            domain.DateKey(q.StartDate),
		EndDate:              domain.DateKey(q.EndDate),
		FilingDeadline:       domain.DateKey(q.FilingDeadline),
		Status:               string(q.Status),
		CompletionPercentage: q.CompletionPercentage,
		DaysCompleted:        q.DaysCompleted,
		TotalDays:            q.TotalDays,
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
	}
}

func fromQuarters(quarters []*domain.Quarter) []*QuarterResponse {
	out := make([]*QuarterResponse, len(quarters))
	for i, q := range quarters {
		out[i] = fromQuarter(q)
	}
	return out
}

// CreateQuarterResponse pairs the created quarter with the expansion count.
type CreateQuarterResponse struct {
	Quarter      *QuarterResponse `json:"quarter"`
	SlotsCreated int              `json:"slots_created"`
}

// ApplyPatternResponse reports how a pattern application landed.
type ApplyPatternResponse struct {
	SlotsCreated int `json:"slots_created"`
	SlotsUpdated int `json:"slots_updated"`
}

// SlotResponse is the HTTP shape of one daily slot.
type SlotResponse struct {
	ID                string    `json:"id"`
	QuarterID         string    `json:"quarter_id"`
	Date              string    `json:"date"`
	LocationType      string    `json:"location_type"`
	TimeStart         string    `json:"time_start"`
	TimeEnd           string    `json:"time_end"`
	IsCompetition     bool      `json:"is_competition"`
	CompetitionID     *string   `json:"competition_id,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	IsComplete        bool      `json:"is_complete"`
	ModificationCount int       `json:"modification_count"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func fromSlot(s *domain.DailySlotAssignment) *SlotResponse {
	resp := &SlotResponse{
		ID:                s.ID.String(),
		QuarterID:         s.QuarterID.String(),
		Date:              domain.DateKey(s.Date),
		LocationType:      string(s.LocationType),
		TimeStart:         s.TimeStart,
		TimeEnd:           s.TimeEnd,
		IsCompetition:     s.IsCompetition,
		Notes:             s.Notes,
		IsComplete:        s.IsComplete,
		ModificationCount: s.ModificationCount,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.CompetitionID != nil {
		raw := s.CompetitionID.String()
		resp.CompetitionID = &raw
	}
	return resp
}

func fromSlots(slots []*domain.DailySlotAssignment) []*SlotResponse {
	out := make([]*SlotResponse, len(slots))
	for i, s := range slots {
		out[i] = fromSlot(s)
	}
	return out
}

// PatternResponse is the HTTP shape of a weekly pattern, keyed by weekday.
type PatternResponse map[string]DayPatternRequest

func fromPattern(p domain.WeeklyPattern) PatternResponse {
	out := make(PatternResponse, len(p))
	for day, slot := range p {
		out[string(day)] = DayPatternRequest{
			LocationType: string(slot.LocationType),
			TimeStart:    slot.TimeStart,
			TimeEnd:      slot.TimeEnd,
		}
	}
	return out
}

// ValidationResponse carries the aggregated field findings of a rejected
// pattern so the UI can attach them to inputs.
type ValidationResponse struct {
	Errors   []validation.FieldError `json:"errors"`
	Warnings []validation.FieldError `json:"warnings,omitempty"`
}

// TemplateResponse is the HTTP shape of a saved template.
type TemplateResponse struct {
	ID         string          `json:"id"`
	AthleteID  string          `json:"athlete_id"`
	Name       string          `json:"name"`
	Pattern    PatternResponse `json:"pattern"`
	UsageCount int             `json:"usage_count"`
	IsDefault  bool            `json:"is_default"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func fromTemplate(t *domain.Template) *TemplateResponse {
	return &TemplateResponse{
		ID:         t.ID.String(),
		AthleteID:  t.AthleteID.String(),
		Name:       t.Name,
		Pattern:    fromPattern(t.Pattern),
		UsageCount: t.UsageCount,
		IsDefault:  t.IsDefault,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// AuditEventResponse is the HTTP shape of one audit trail entry.
type AuditEventResponse struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Detail    map[string]string `json:"detail,omitempty"`
}

func fromAuditEvents(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, len(events))
	for i, e := range events {
		out[i] = AuditEventResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			Timestamp: e.Timestamp,
			Detail:    e.Detail,
		}
	}
	return out
}
