package mining

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whereabouts/internal/domain"
)

// mondays returns n consecutive Mondays starting 2025-01-06.
func mondays(n int) []time.Time {
	base := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, 7*i)
	}
	return out
}

func slotOn(date time.Time, loc domain.LocationType, start, end string) domain.DailySlotAssignment {
	return domain.DailySlotAssignment{
		Date:         date,
		LocationType: loc,
		TimeStart:    start,
		TimeEnd:      end,
	}
}

func TestExtractPattern_MajorityWins(t *testing.T) {
	var slots []domain.DailySlotAssignment
	days := mondays(13)
	for _, d := range days[:10] {
		slots = append(slots, slotOn(d, domain.LocationHome, "06:00", "07:00"))
	}
	for _, d := range days[10:] {
		slots = append(slots, slotOn(d, domain.LocationTraining, "07:00", "08:00"))
	}

	pattern, ok := ExtractPattern(slots)
	require.True(t, ok)
	assert.Equal(t, domain.DaySlotPattern{
		LocationType: domain.LocationHome, TimeStart: "06:00", TimeEnd: "07:00",
	}, pattern[domain.Monday])
}

func TestExtractPattern_TieBrokenByEarliestDate(t *testing.T) {
	days := mondays(4)
	// Two occurrences each; the gym triple appears first chronologically
	// even though it is passed last.
	slots := []domain.DailySlotAssignment{
		slotOn(days[3], domain.LocationHome, "06:00", "07:00"),
		slotOn(days[1], domain.LocationHome, "06:00", "07:00"),
		slotOn(days[2], domain.LocationGym, "18:00", "19:00"),
		slotOn(days[0], domain.LocationGym, "18:00", "19:00"),
	}

	pattern, ok := ExtractPattern(slots)
	require.True(t, ok)
	assert.Equal(t, domain.LocationGym, pattern[domain.Monday].LocationType,
		"first-seen in ascending-date order wins ties")
}

func TestExtractPattern_EmptyWeekdayDefaults(t *testing.T) {
	slots := []domain.DailySlotAssignment{
		slotOn(mondays(1)[0], domain.LocationGym, "18:00", "19:00"),
	}

	pattern, ok := ExtractPattern(slots)
	require.True(t, ok)
	assert.Equal(t, domain.LocationGym, pattern[domain.Monday].LocationType)
	for _, day := range domain.WeekOrder {
		if day == domain.Monday {
			continue
		}
		assert.Equal(t, defaultSlot, pattern[day], "weekday %s", day)
	}
}

func TestExtractPattern_NoSlots(t *testing.T) {
	pattern, ok := ExtractPattern(nil)
	assert.False(t, ok)
	assert.Nil(t, pattern)
}

func TestExtractPattern_DoesNotMutateInput(t *testing.T) {
	days := mondays(3)
	slots := []domain.DailySlotAssignment{
		slotOn(days[2], domain.LocationHome, "06:00", "07:00"),
		slotOn(days[0], domain.LocationHome, "06:00", "07:00"),
		slotOn(days[1], domain.LocationHome, "06:00", "07:00"),
	}

	_, ok := ExtractPattern(slots)
	require.True(t, ok)
	assert.Equal(t, days[2], slots[0].Date, "input order must be preserved")
}

func TestExtractPattern_CoversAllWeekdays(t *testing.T) {
	// A fully-filled week maps straight back to its source pattern.
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC) // Monday
	var slots []domain.DailySlotAssignment
	for i := 0; i < 14; i++ {
		slots = append(slots, slotOn(start.AddDate(0, 0, i), domain.LocationTraining, "09:00", "10:00"))
	}

	pattern, ok := ExtractPattern(slots)
	require.True(t, ok)
	for _, day := range domain.WeekOrder {
		assert.Equal(t, domain.LocationTraining, pattern[day].LocationType)
	}
}
