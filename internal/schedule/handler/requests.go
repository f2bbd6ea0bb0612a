package handler

import (
	"strings"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

// DayPatternRequest is one weekday's slot in a request pattern.
type DayPatternRequest struct {
	LocationType string `json:"location_type"`
	TimeStart    string `json:"time_start"`
	TimeEnd      string `json:"time_end"`
}

// PatternRequest maps weekday names to their slot pattern. Keys are the
// lowercase weekday names; structural validation happens in the service so
// field-level findings come back as one aggregated list.
type PatternRequest map[string]DayPatternRequest

// ToDomain converts the request pattern. Unknown weekday keys are rejected
// here; everything else is the validator's job.
func (p PatternRequest) ToDomain() (domain.WeeklyPattern, error) {
	pattern := domain.WeeklyPattern{}
	for rawDay, slot := range p {
		day := domain.Weekday(strings.ToLower(rawDay))
		if !day.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown weekday %q", rawDay)
		}
		pattern[day] = domain.DaySlotPattern{
			LocationType: domain.LocationType(slot.LocationType),
			TimeStart:    slot.TimeStart,
			TimeEnd:      slot.TimeEnd,
		}
	}
	return pattern, nil
}

// CreateQuarterRequest is the body of POST /quarters.
type CreateQuarterRequest struct {
	AthleteID      string         `json:"athlete_id"`
	Year           int            `json:"year"`
	Quarter        string         `json:"quarter"`
	Pattern        PatternRequest `json:"pattern"`
	CompetitionIDs []string       `json:"competition_ids,omitempty"`

	parsedAthleteID    id.AthleteID
	parsedQuarter      domain.QuarterName
	parsedPattern      domain.WeeklyPattern
	parsedCompetitions []id.CompetitionID
}

func (r *CreateQuarterRequest) Validate() error {
	athleteID, err := id.ParseAthleteID(r.AthleteID)
	if err != nil {
		return err
	}
	r.parsedAthleteID = athleteID

	if r.Year < 2000 || r.Year > 2100 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "year %d is out of range", r.Year)
	}

	quarterName, err := domain.ParseQuarterName(r.Quarter)
	if err != nil {
		return err
	}
	r.parsedQuarter = quarterName

	pattern, err := r.Pattern.ToDomain()
	if err != nil {
		return err
	}
	r.parsedPattern = pattern

	for _, raw := range r.CompetitionIDs {
		competitionID, err := id.ParseCompetitionID(raw)
		if err != nil {
			return err
		}
		r.parsedCompetitions = append(r.parsedCompetitions, competitionID)
	}
	return nil
}

// ApplyPatternRequest is the body of POST /quarters/{quarterID}/pattern.
type ApplyPatternRequest struct {
	AthleteID string         `json:"athlete_id"`
	Pattern   PatternRequest `json:"pattern"`
	Overwrite bool           `json:"overwrite"`

	parsedAthleteID id.AthleteID
	parsedPattern   domain.WeeklyPattern
}

func (r *ApplyPatternRequest) Validate() error {
	athleteID, err := id.ParseAthleteID(r.AthleteID)
	if err != nil {
		return err
	}
	r.parsedAthleteID = athleteID

	pattern, err := r.Pattern.ToDomain()
	if err != nil {
		return err
	}
	r.parsedPattern = pattern
	return nil
}

// CopyQuarterRequest is the body of POST /quarters/copy.
type CopyQuarterRequest struct {
	SourceQuarterID string `json:"source_quarter_id"`
	AthleteID       string `json:"athlete_id"`
	TargetYear      int    `json:"target_year"`
	TargetQuarter   string `json:"target_quarter"`

	parsedSourceID  id.QuarterID
	parsedAthleteID id.AthleteID
	parsedQuarter   domain.QuarterName
}

func (r *CopyQuarterRequest) Validate() error {
	sourceID, err := id.ParseQuarterID(r.SourceQuarterID)
	if err != nil {
		return err
	}
	r.parsedSourceID = sourceID

	athleteID, err := id.ParseAthleteID(r.AthleteID)
	if err != nil {
		return err
	}
	r.parsedAthleteID = athleteID

	if r.TargetYear < 2000 || r.TargetYear > 2100 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "target_year %d is out of range", r.TargetYear)
	}

	quarterName, err := domain.ParseQuarterName(r.TargetQuarter)
	if err != nil {
		return err
	}
	r.parsedQuarter = quarterName
	return nil
}

// UpsertSlotRequest is the body of PUT /quarters/{quarterID}/slots/{date}.
type UpsertSlotRequest struct {
	AthleteID     string  `json:"athlete_id"`
	LocationType  string  `json:"location_type"`
	TimeStart     string  `json:"time_start"`
	TimeEnd       string  `json:"time_end"`
	IsCompetition bool    `json:"is_competition"`
	CompetitionID *string `json:"competition_id,omitempty"`
	Notes         string  `json:"notes"`
	IsComplete    bool    `json:"is_complete"`

	parsedAthleteID     id.AthleteID
	parsedCompetitionID *id.CompetitionID
}

func (r *UpsertSlotRequest) Validate() error {
	athleteID, err := id.ParseAthleteID(r.AthleteID)
	if err != nil {
		return err
	}
	r.parsedAthleteID = athleteID

	if r.CompetitionID != nil {
		competitionID, err := id.ParseCompetitionID(*r.CompetitionID)
		if err != nil {
			return err
		}
		r.parsedCompetitionID = &competitionID
	}
	return nil
}

// SaveTemplateRequest is the body of POST /templates.
type SaveTemplateRequest struct {
	AthleteID string         `json:"athlete_id"`
	Name      string         `json:"name"`
	Pattern   PatternRequest `json:"pattern"`
	IsDefault bool           `json:"is_default"`

	parsedAthleteID id.AthleteID
	parsedPattern   domain.WeeklyPattern
}

func (r *SaveTemplateRequest) Validate() error {
	athleteID, err := id.ParseAthleteID(r.AthleteID)
	if err != nil {
		return err
	}
	r.parsedAthleteID = athleteID

	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}

	pattern, err := r.Pattern.ToDomain()
	if err != nil {
		return err
	}
	r.parsedPattern = pattern
	return nil
}

// ApplyTemplateRequest is the body of POST /templates/{templateID}/apply.
type ApplyTemplateRequest struct {
	AthleteID string `json:"athlete_id"`
	QuarterID string `json:"quarter_id"`
	Overwrite bool   `json:"overwrite"`

	parsedAthleteID id.AthleteID
	parsedQuarterID id.QuarterID
}

func (r *ApplyTemplateRequest) Validate() error {
	athleteID, err := id.ParseAthleteID(r.AthleteID)
	if err != nil {
		return err
	}
	r.parsedAthleteID = athleteID

	quarterID, err := id.ParseQuarterID(r.QuarterID)
	if err != nil {
		return err
	}
	r.parsedQuarterID = quarterID
	return nil
}
