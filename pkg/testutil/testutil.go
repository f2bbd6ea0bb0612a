// Package testutil holds small helpers shared by tests across modules.
package testutil

import (
	"io"
	"log/slog"
	"time"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
)

// DiscardLogger returns a logger that drops everything, for tests that
// exercise code paths which log.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Date parses a YYYY-MM-DD string, panicking on malformed test input.
func Date(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic("testutil: bad date literal " + s)
	}
	return d
}

// Competition builds a competition record with a fresh id and the given
// inclusive window.
func Competition(name, start, end string) domain.Competition {
	return domain.Competition{
		ID:        id.NewCompetitionID(),
		Name:      name,
		StartDate: Date(start),
		EndDate:   Date(end),
	}
}
