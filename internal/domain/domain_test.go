package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayOf(t *testing.T) {
	// 2025-01-06 is a Monday.
	monday := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	for i, want := range WeekOrder {
		got := WeekdayOf(monday.AddDate(0, 0, i))
		assert.Equal(t, want, got, "day offset %d", i)
	}
}

func TestCompetitionCovers(t *testing.T) {
	comp := Competition{
		StartDate: time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.February, 12, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, comp.Covers(time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)), "start bound is inclusive")
	assert.True(t, comp.Covers(time.Date(2025, time.February, 12, 0, 0, 0, 0, time.UTC)), "end bound is inclusive")
	assert.True(t, comp.Covers(time.Date(2025, time.February, 11, 15, 30, 0, 0, time.UTC)), "time of day is ignored")
	assert.False(t, comp.Covers(time.Date(2025, time.February, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, comp.Covers(time.Date(2025, time.February, 13, 0, 0, 0, 0, time.UTC)))
}

func TestWeeklyPatternComplete(t *testing.T) {
	p := WeeklyPattern{}
	for _, d := range WeekOrder {
		p[d] = DaySlotPattern{LocationType: LocationHome, TimeStart: "06:00", TimeEnd: "07:00"}
	}
	assert.True(t, p.Complete())

	delete(p, Wednesday)
	assert.False(t, p.Complete())
}

func TestWeeklyPatternClone(t *testing.T) {
	p := WeeklyPattern{Monday: {LocationType: LocationGym, TimeStart: "08:00", TimeEnd: "09:00"}}
	clone := p.Clone()
	clone[Monday] = DaySlotPattern{LocationType: LocationHome, TimeStart: "06:00", TimeEnd: "07:00"}
	assert.Equal(t, LocationGym, p[Monday].LocationType, "clone must not alias the original")
}
