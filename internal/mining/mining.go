// Package mining infers a representative weekly pattern from a quarter's
// historical daily slots: a per-weekday majority vote over the observed
// (location, start, end) triples.
package mining

import (
	"sort"

	"whereabouts/internal/domain"
)

// defaultSlot fills weekdays with no observations at all.
var defaultSlot = domain.DaySlotPattern{
	LocationType: domain.LocationHome,
	TimeStart:    "06:00",
	TimeEnd:      "07:00",
}

type tally struct {
	slot      domain.DaySlotPattern
	count     int
	firstSeen int // scan position of the first observation, for tie-breaks
}

// ExtractPattern mines the majority slot per weekday from historical
// assignments. The scan runs in ascending date order and ties are broken by
// first observation, which keeps the result deterministic for a given
// quarter. Returns ok=false when no slots exist at all; a weekday without
// observations falls back to home 06:00-07:00.
func ExtractPattern(slots []domain.DailySlotAssignment) (domain.WeeklyPattern, bool) {
	if len(slots) == 0 {
		return nil, false
	}

	// Work on a sorted copy; callers keep their ordering.
	ordered := make([]domain.DailySlotAssignment, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	counts := make(map[domain.Weekday]map[domain.DaySlotPattern]*tally)
	for pos, slot := range ordered {
		day := domain.WeekdayOf(slot.Date)
		triple := domain.DaySlotPattern{
			LocationType: slot.LocationType,
			TimeStart:    slot.TimeStart,
			TimeEnd:      slot.TimeEnd,
		}

		byTriple, ok := counts[day]
		if !ok {
			byTriple = make(map[domain.DaySlotPattern]*tally)
			counts[day] = byTriple
		}
		if entry, ok := byTriple[triple]; ok {
			entry.count++
		} else {
			byTriple[triple] = &tally{slot: triple, count: 1, firstSeen: pos}
		}
	}

	pattern := make(domain.WeeklyPattern, len(domain.WeekOrder))
	for _, day := range domain.WeekOrder {
		pattern[day] = majority(counts[day])
	}
	return pattern, true
}

func majority(byTriple map[domain.DaySlotPattern]*tally) domain.DaySlotPattern {
	if len(byTriple) == 0 {
		return defaultSlot
	}

	var best *tally
	for _, entry := range byTriple {
		switch {
		case best == nil:
			best = entry
		case entry.count > best.count:
			best = entry
		case entry.count == best.count && entry.firstSeen < best.firstSeen:
			best = entry
		}
	}
	return best.slot
}
