// Package expansion projects a weekly pattern onto a date range, producing
// one dated slot assignment per calendar day. Deterministic and allocation
// only: inputs are never mutated.
package expansion

import (
	"fmt"
	"time"

	"whereabouts/internal/domain"
	"whereabouts/internal/validation"
	dErrors "whereabouts/pkg/domain-errors"
)

// Expand maps every calendar date in [start, end] inclusive, ascending, to
// its weekday's slot pattern. Dates inside a competition's inclusive window
// are overridden: location forced to training, competition id and a note
// attached. The returned slice carries exactly one entry per date.
//
// The forced-training override mirrors the established filing behavior for
// competition days; whether that is the intended compliance semantics is an
// open policy question with the domain owner, so the rule lives in one
// place here.
func Expand(pattern domain.WeeklyPattern, start, end time.Time, competitions []domain.Competition) ([]domain.DailySlotAssignment, error) {
	if err := validation.RequireWeeklyPattern(pattern); err != nil {
		return nil, err
	}

	first, last := domain.DateOnly(start), domain.DateOnly(end)
	if last.Before(first) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"end date %s precedes start date %s", domain.DateKey(last), domain.DateKey(first))
	}

	total := int(last.Sub(first).Hours()/24) + 1
	slots := make([]domain.DailySlotAssignment, 0, total)

	for date := first; !date.After(last); date = date.AddDate(0, 0, 1) {
		dayPattern := pattern[domain.WeekdayOf(date)]

		slot := domain.DailySlotAssignment{
			Date:         date,
			LocationType: dayPattern.LocationType,
			TimeStart:    dayPattern.TimeStart,
			TimeEnd:      dayPattern.TimeEnd,
			IsComplete:   true,
		}

		if comp, ok := coveringCompetition(date, competitions); ok {
			compID := comp.ID
			slot.LocationType = domain.LocationTraining
			slot.IsCompetition = true
			slot.CompetitionID = &compID
			slot.Notes = fmt.Sprintf("Competition: %s", comp.Name)
		}

		slots = append(slots, slot)
	}

	return slots, nil
}

// coveringCompetition returns the first competition in list order whose
// inclusive window covers date. List order is the caller's priority order.
func coveringCompetition(date time.Time, competitions []domain.Competition) (domain.Competition, bool) {
	for _, c := range competitions {
		if c.Covers(date) {
			return c, true
		}
	}
	return domain.Competition{}, false
}
