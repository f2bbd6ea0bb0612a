// Package domain holds identifier types shared across modules. IDs are
// distinct types over uuid.UUID so the compiler rejects cross-entity mixups.
package domain

import (
	"github.com/google/uuid"

	dErrors "whereabouts/pkg/domain-errors"
)

type (
	// AthleteID identifies the athlete a filing belongs to.
	AthleteID uuid.UUID
	// QuarterID identifies a quarterly filing period record.
	QuarterID uuid.UUID
	// SlotID identifies a single daily slot assignment.
	SlotID uuid.UUID
	// CompetitionID identifies a competition used as an override input.
	CompetitionID uuid.UUID
	// TemplateID identifies a saved weekly-pattern template.
	TemplateID uuid.UUID
)

func NewAthleteID() AthleteID         { return AthleteID(uuid.New()) }
func NewQuarterID() QuarterID         { return QuarterID(uuid.New()) }
func NewSlotID() SlotID               { return SlotID(uuid.New()) }
func NewCompetitionID() CompetitionID { return CompetitionID(uuid.New()) }
func NewTemplateID() TemplateID       { return TemplateID(uuid.New()) }

func (id AthleteID) String() string     { return uuid.UUID(id).String() }
func (id QuarterID) String() string     { return uuid.UUID(id).String() }
func (id SlotID) String() string        { return uuid.UUID(id).String() }
func (id CompetitionID) String() string { return uuid.UUID(id).String() }
func (id TemplateID) String() string    { return uuid.UUID(id).String() }

func (id AthleteID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id QuarterID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SlotID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CompetitionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TemplateID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Parsing happens at trust boundaries only.
func parseUUID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", field)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", field)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", field)
	}
	return parsed, nil
}

func ParseAthleteID(raw string) (AthleteID, error) {
	parsed, err := parseUUID(raw, "athlete_id")
	return AthleteID(parsed), err
}

func ParseQuarterID(raw string) (QuarterID, error) {
	parsed, err := parseUUID(raw, "quarter_id")
	return QuarterID(parsed), err
}

func ParseSlotID(raw string) (SlotID, error) {
	parsed, err := parseUUID(raw, "slot_id")
	return SlotID(parsed), err
}

func ParseCompetitionID(raw string) (CompetitionID, error) {
	parsed, err := parseUUID(raw, "competition_id")
	return CompetitionID(parsed), err
}

func ParseTemplateID(raw string) (TemplateID, error) {
	parsed, err := parseUUID(raw, "template_id")
	return TemplateID(parsed), err
}
