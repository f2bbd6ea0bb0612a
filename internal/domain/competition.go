package domain

import (
	"time"

	id "whereabouts/pkg/domain"
)

// Competition is an override input for expansion: dates inside its window
// replace the athlete's recurring pattern. The engine reads competitions,
// it never owns or mutates them.
type Competition struct {
	ID              id.CompetitionID `json:"id"`
	Name            string           `json:"name"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	LocationAddress string           `json:"location_address"`
}

// Covers reports whether date falls inside the competition's inclusive
// [StartDate, EndDate] window. Both bounds count.
func (c Competition) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(c.StartDate)) && !d.After(DateOnly(c.EndDate))
}
