// Package calendar computes filing-period date ranges. Pure date arithmetic
// on naive calendar dates; the only failure mode is an unknown quarter name.
package calendar

import (
	"time"

	"whereabouts/internal/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

// FilingDeadlineDaysBeforeStart pins the deadline rule: the filing deadline
// is this many days before the quarter's first day. A competing rule ("the
// 15th of the month before the quarter") exists in older filings; the
// compliance owner has been asked to confirm which one stands. Until then
// this constant is the single source of truth.
const FilingDeadlineDaysBeforeStart = 15

// QuarterSpan is the computed date range of one filing period.
type QuarterSpan struct {
	StartDate      time.Time
	EndDate        time.Time
	FilingDeadline time.Time
	TotalDays      int
}

// quarterMonths fixes the quarter-to-month table: Q1=Jan-Mar, Q2=Apr-Jun,
// Q3=Jul-Sep, Q4=Oct-Dec.
var quarterMonths = map[domain.QuarterName]struct {
	first time.Month
	last  time.Month
}{
	domain.Q1: {time.January, time.March},
	domain.Q2: {time.April, time.June},
	domain.Q3: {time.July, time.September},
	domain.Q4: {time.October, time.December},
}

// QuarterDates computes the span of (year, quarter). EndDate is the last
// calendar day of the quarter's final month, leap-year aware; TotalDays is
// the inclusive day count.
func QuarterDates(year int, quarter domain.QuarterName) (QuarterSpan, error) {
	months, ok := quarterMonths[quarter]
	if !ok {
		return QuarterSpan{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown quarter name %q", quarter)
	}

	start := time.Date(year, months.first, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the following month is the last day of months.last.
	end := time.Date(year, months.last+1, 0, 0, 0, 0, 0, time.UTC)

	return QuarterSpan{
		StartDate:      start,
		EndDate:        end,
		FilingDeadline: start.AddDate(0, 0, -FilingDeadlineDaysBeforeStart),
		TotalDays:      InclusiveDays(start, end),
	}, nil
}

// InclusiveDays counts the calendar days in [start, end], both bounds
// included. Inputs are normalized to dates first.
func InclusiveDays(start, end time.Time) int {
	s, e := domain.DateOnly(start), domain.DateOnly(end)
	return int(e.Sub(s).Hours()/24) + 1
}
