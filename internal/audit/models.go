// Package audit records an append-only trail of slot-mutating operations.
// Anti-doping filings are compliance artifacts; who changed which day, and
// when, must be reconstructible after the fact.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "whereabouts/pkg/domain"
)

// Action names the operation that produced an event.
type Action string

const (
	ActionQuarterCreated   Action = "quarter_created"
	ActionPatternApplied   Action = "pattern_applied"
	ActionSlotUpserted     Action = "slot_upserted"
	ActionQuarterSubmitted Action = "quarter_submitted"
	ActionTemplateApplied  Action = "template_applied"
)

// Event is one audit record. Detail carries small operation-specific facts
// (slot counts, dates); never full documents.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	AthleteID id.AthleteID      `json:"athlete_id"`
	QuarterID id.QuarterID      `json:"quarter_id"`
	Action    Action            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Detail    map[string]string `json:"detail,omitempty"`
}
