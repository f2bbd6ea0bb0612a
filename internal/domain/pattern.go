// Package domain holds the entities shared by the whereabouts engine modules:
// weekly patterns, quarters, daily slot assignments, competitions, templates.
package domain

import "time"

// Weekday names a day of the week in filing payloads. Values are lowercase
// English day names to keep persisted documents readable.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekOrder is the canonical Monday-first iteration order. Every module that
// walks a week (validation, expansion, mining) iterates this single table so
// the paths cannot drift apart.
var WeekOrder = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// weekdayByTime maps time.Weekday to the domain weekday. Assembled once;
// the only place the two representations meet.
var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf returns the domain weekday for a calendar date.
func WeekdayOf(date time.Time) Weekday {
	return weekdayByTime[date.Weekday()]
}

// IsValid reports whether d is one of the seven known weekdays.
func (d Weekday) IsValid() bool {
	_, ok := weekdayIndex[d]
	return ok
}

var weekdayIndex = func() map[Weekday]int {
	m := make(map[Weekday]int, len(WeekOrder))
	for i, d := range WeekOrder {
		m[d] = i
	}
	return m
}()

// LocationType classifies where the athlete can be located during a slot.
type LocationType string

const (
	LocationHome     LocationType = "home"
	LocationTraining LocationType = "training"
	LocationGym      LocationType = "gym"
)

// IsValid reports whether l is a known location type.
func (l LocationType) IsValid() bool {
	switch l {
	case LocationHome, LocationTraining, LocationGym:
		return true
	}
	return false
}

// LocationRef is a tagged location reference: the kind of place plus an
// optional concrete location record id. Callers supply this instead of
// encoding the kind into an identifier prefix.
type LocationRef struct {
	Type LocationType `json:"type"`
	ID   string       `json:"id,omitempty"`
}

// DaySlotPattern is one weekday's recurring 60-minute availability slot.
// Times are naive 24-hour "HH:mm" strings; no timezone semantics apply.
type DaySlotPattern struct {
	LocationType LocationType `json:"location_type"`
	TimeStart    string       `json:"time_start"`
	TimeEnd      string       `json:"time_end"`
}

// WeeklyPattern maps every weekday to its slot pattern. A well-formed
// pattern has exactly one entry per weekday; completeness is enforced by
// the validation engine, not the type.
type WeeklyPattern map[Weekday]DaySlotPattern

// Complete reports whether all seven weekdays are present.
func (p WeeklyPattern) Complete() bool {
	for _, d := range WeekOrder {
		if _, ok := p[d]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy so callers can hand patterns across
// module boundaries without aliasing.
func (p WeeklyPattern) Clone() WeeklyPattern {
	if p == nil {
		return nil
	}
	out := make(WeeklyPattern, len(p))
	for d, slot := range p {
		out[d] = slot
	}
	return out
}
