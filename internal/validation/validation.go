// Package validation checks weekly patterns and individual slots before any
// write is attempted. Failures come back as structured field-level lists so
// the UI can attach them to inputs; nothing here panics.
package validation

import (
	"fmt"
	"regexp"

	"whereabouts/internal/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

// SlotDurationMinutes is the mandated length of every whereabouts slot.
const SlotDurationMinutes = 60

// Severity distinguishes blocking errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// FieldError is one field-level finding on a pattern or slot.
type FieldError struct {
	Day      domain.Weekday `json:"day,omitempty"`
	Field    string         `json:"field"`
	Message  string         `json:"message"`
	Severity Severity       `json:"severity"`
}

// Result aggregates the findings for a whole weekly pattern. Warnings never
// block a write.
type Result struct {
	Errors   []FieldError `json:"errors"`
	Warnings []FieldError `json:"warnings"`
}

// Valid reports whether the pattern can be persisted.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

var timeFormat = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// TimeFormatOK reports whether s is a 24-hour HH:mm string.
func TimeFormatOK(s string) bool {
	return timeFormat.MatchString(s)
}

// minutesOf converts a validated HH:mm string to minutes since midnight.
func minutesOf(s string) (int, bool) {
	if !TimeFormatOK(s) {
		return 0, false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h*60 + m, true
}

// TimeRangeOK reports whether end is strictly after start.
func TimeRangeOK(start, end string) bool {
	s, okS := minutesOf(start)
	e, okE := minutesOf(end)
	return okS && okE && e > s
}

// SlotDurationOK reports whether the gap between start and end is exactly
// the mandated slot duration.
func SlotDurationOK(start, end string) bool {
	s, okS := minutesOf(start)
	e, okE := minutesOf(end)
	return okS && okE && e-s == SlotDurationMinutes
}

// CheckDaySlot validates one weekday's slot pattern and returns every
// field-level error found.
func CheckDaySlot(day domain.Weekday, p domain.DaySlotPattern) []FieldError {
	var errs []FieldError

	switch {
	case p.LocationType == "":
		errs = append(errs, FieldError{Day: day, Field: "location_type", Severity: SeverityError,
			Message: "location_type is required"})
	case !p.LocationType.IsValid():
		errs = append(errs, FieldError{Day: day, Field: "location_type", Severity: SeverityError,
			Message: fmt.Sprintf("location_type %q is not one of home, training, gym", p.LocationType)})
	}

	startOK := checkTime(day, "time_start", p.TimeStart, &errs)
	endOK := checkTime(day, "time_end", p.TimeEnd, &errs)

	// Range and duration checks only make sense once both times parse.
	if startOK && endOK {
		if !TimeRangeOK(p.TimeStart, p.TimeEnd) {
			errs = append(errs, FieldError{Day: day, Field: "time_end", Severity: SeverityError,
				Message: "time_end must be after time_start"})
		} else if !SlotDurationOK(p.TimeStart, p.TimeEnd) {
			errs = append(errs, FieldError{Day: day, Field: "duration", Severity: SeverityError,
				Message: fmt.Sprintf("slot must be exactly %d minutes", SlotDurationMinutes)})
		}
	}

	return errs
}

func checkTime(day domain.Weekday, field, value string, errs *[]FieldError) bool {
	if value == "" {
		*errs = append(*errs, FieldError{Day: day, Field: field, Severity: SeverityError,
			Message: field + " is required"})
		return false
	}
	if !TimeFormatOK(value) {
		*errs = append(*errs, FieldError{Day: day, Field: field, Severity: SeverityError,
			Message: field + " must be a 24-hour HH:mm time"})
		return false
	}
	return true
}

// OpenHours are a location's declared opening hours for one weekday.
type OpenHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// LocationSchedule declares a location's opening hours per weekday. Days
// without an entry are closed.
type LocationSchedule struct {
	Location domain.LocationRef           `json:"location"`
	Hours    map[domain.Weekday]OpenHours `json:"hours"`
}

// Availability is the outcome of checking one slot against a location's
// declared hours.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CheckLocationAvailability checks that a slot's start and end fall within
// the location's declared hours for that weekday.
func CheckLocationAvailability(day domain.Weekday, start, end string, sched LocationSchedule) Availability {
	hours, open := sched.Hours[day]
	if !open {
		return Availability{Available: false, Reason: fmt.Sprintf("location is closed on %s", day)}
	}

	slotStart, okS := minutesOf(start)
	slotEnd, okE := minutesOf(end)
	openAt, okO := minutesOf(hours.Open)
	closeAt, okC := minutesOf(hours.Close)
	if !okS || !okE || !okO || !okC {
		// Malformed times are reported by CheckDaySlot; availability stays
		// advisory and does not double-report them.
		return Availability{Available: true}
	}

	if slotStart < openAt || slotEnd > closeAt {
		return Availability{Available: false, Reason: fmt.Sprintf(
			"slot %s-%s falls outside open hours %s-%s on %s", start, end, hours.Open, hours.Close, day)}
	}
	return Availability{Available: true}
}

// CheckWeeklyPattern validates all seven days and aggregates findings.
// When location schedules are supplied, slots outside a location's declared
// hours produce non-blocking warnings.
func CheckWeeklyPattern(p domain.WeeklyPattern, locations map[domain.LocationType]LocationSchedule) Result {
	var result Result

	for _, day := range domain.WeekOrder {
		slot, ok := p[day]
		if !ok {
			result.Errors = append(result.Errors, FieldError{Day: day, Field: "pattern", Severity: SeverityError,
				Message: "a slot pattern is required for every weekday"})
			continue
		}

		result.Errors = append(result.Errors, CheckDaySlot(day, slot)...)

		if locations == nil {
			continue
		}
		sched, known := locations[slot.LocationType]
		if !known {
			continue
		}
		if avail := CheckLocationAvailability(day, slot.TimeStart, slot.TimeEnd, sched); !avail.Available {
			result.Warnings = append(result.Warnings, FieldError{Day: day, Field: "availability",
				Severity: SeverityWarning, Message: avail.Reason})
		}
	}

	return result
}

// RequireWeeklyPattern is the strict variant kept for the call sites that
// historically failed fast: it returns the first violation as a coded error
// instead of a list.
func RequireWeeklyPattern(p domain.WeeklyPattern) error {
	for _, day := range domain.WeekOrder {
		slot, ok := p[day]
		if !ok {
			return dErrors.Newf(dErrors.CodeInvalidInput, "pattern is missing %s", day)
		}
		if errs := CheckDaySlot(day, slot); len(errs) > 0 {
			first := errs[0]
			return dErrors.Newf(dErrors.CodeInvalidInput, "%s %s: %s", first.Day, first.Field, first.Message)
		}
	}
	return nil
}
