package domain

import (
	"time"

	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

// QuarterName names one of the four filing periods of a year.
type QuarterName string

const (
	Q1 QuarterName = "Q1"
	Q2 QuarterName = "Q2"
	Q3 QuarterName = "Q3"
	Q4 QuarterName = "Q4"
)

// QuarterNames is the canonical ordering of filing periods in a year.
var QuarterNames = [4]QuarterName{Q1, Q2, Q3, Q4}

// ParseQuarterName validates a caller-supplied quarter name.
func ParseQuarterName(raw string) (QuarterName, error) {
	q := QuarterName(raw)
	if !q.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "quarter must be one of Q1-Q4, got %q", raw)
	}
	return q, nil
}

// IsValid reports whether q is one of Q1-Q4.
func (q QuarterName) IsValid() bool {
	switch q {
	case Q1, Q2, Q3, Q4:
		return true
	}
	return false
}

// QuarterStatus is the lifecycle state of a quarterly filing.
type QuarterStatus string

const (
	QuarterDraft      QuarterStatus = "draft"
	QuarterIncomplete QuarterStatus = "incomplete"
	QuarterComplete   QuarterStatus = "complete"
	QuarterSubmitted  QuarterStatus = "submitted"
	QuarterLocked     QuarterStatus = "locked"
)

// Terminal reports whether the status blocks further status recomputation.
// Submitted and locked quarters only leave those states through an explicit
// external unlock.
func (s QuarterStatus) Terminal() bool {
	return s == QuarterSubmitted || s == QuarterLocked
}

// Quarter is one athlete's filing record for a three-month period.
//
// Invariants: TotalDays equals the inclusive day count of
// [StartDate, EndDate]; CompletionPercentage is
// round(DaysCompleted/TotalDays*100).
type Quarter struct {
	ID                   id.QuarterID  `json:"id"`
	AthleteID            id.AthleteID  `json:"athlete_id"`
	Year                 int           `json:"year"`
	Name                 QuarterName   `json:"quarter_name"`
	StartDate            time.Time     `json:"start_date"`
	EndDate              time.Time     `json:"end_date"`
	FilingDeadline       time.Time     `json:"filing_deadline"`
	Status               QuarterStatus `json:"status"`
	CompletionPercentage int           `json:"completion_percentage"`
	DaysCompleted        int           `json:"days_completed"`
	TotalDays            int           `json:"total_days"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}
