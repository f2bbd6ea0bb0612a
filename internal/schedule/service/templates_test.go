package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
)

func TestSaveTemplate(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	t.Run("saves and lists", func(t *testing.T) {
		f := newFixture(t)

		saved, err := f.svc.SaveTemplate(ctx, athleteID, "training camp", validPattern(), false)
		require.NoError(t, err)
		assert.Equal(t, "training camp", saved.Name)
		assert.Zero(t, saved.UsageCount)

		templates, err := f.svc.ListTemplates(ctx, athleteID)
		require.NoError(t, err)
		require.Len(t, templates, 1)
		assert.Equal(t, saved.ID, templates[0].ID)
	})

	t.Run("a new default displaces the old one", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.svc.SaveTemplate(ctx, athleteID, "off season", validPattern(), true)
		require.NoError(t, err)
		second, err := f.svc.SaveTemplate(ctx, athleteID, "in season", validPattern(), true)
		require.NoError(t, err)

		templates, err := f.svc.ListTemplates(ctx, athleteID)
		require.NoError(t, err)
		require.Len(t, templates, 2)
		for _, tpl := range templates {
			switch tpl.ID {
			case first.ID:
				assert.False(t, tpl.IsDefault)
			case second.ID:
				assert.True(t, tpl.IsDefault)
			}
		}
	})

	t.Run("rejects a nameless template", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.SaveTemplate(ctx, athleteID, "", validPattern(), false)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects an invalid pattern", func(t *testing.T) {
		f := newFixture(t)
		p := validPattern()
		delete(p, domain.Wednesday)

		_, err := f.svc.SaveTemplate(ctx, athleteID, "broken", p, false)

		var vErr *ValidationFailedError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestApplyTemplate(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	t.Run("projects the template and bumps usage", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q2, domain.QuarterDraft)

		tpl, err := f.svc.SaveTemplate(ctx, athleteID, "standard week", validPattern(), false)
		require.NoError(t, err)

		created, updated, err := f.svc.ApplyTemplate(ctx, tpl.ID, q.ID, athleteID, false)
		require.NoError(t, err)
		assert.Equal(t, q.TotalDays, created)
		assert.Zero(t, updated)

		templates, err := f.svc.ListTemplates(ctx, athleteID)
		require.NoError(t, err)
		require.Len(t, templates, 1)
		assert.Equal(t, 1, templates[0].UsageCount)
	})

	t.Run("another athlete's template reads as absent", func(t *testing.T) {
		f := newFixture(t)
		q := f.seedQuarter(t, athleteID, 2025, domain.Q2, domain.QuarterDraft)

		tpl, err := f.svc.SaveTemplate(ctx, id.NewAthleteID(), "theirs", validPattern(), false)
		require.NoError(t, err)

		_, _, err = f.svc.ApplyTemplate(ctx, tpl.ID, q.ID, athleteID, false)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestDeleteTemplate(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()
	f := newFixture(t)

	tpl, err := f.svc.SaveTemplate(ctx, athleteID, "short lived", validPattern(), false)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTemplate(ctx, tpl.ID, athleteID))

	err = f.svc.DeleteTemplate(ctx, tpl.ID, athleteID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestTemplatesUnconfigured(t *testing.T) {
	ctx := context.Background()
	athleteID := id.NewAthleteID()

	f := newFixture(t)
	svc := New(f.quarters, f.slots) // no template store wired

	_, err := svc.SaveTemplate(ctx, athleteID, "x", validPattern(), false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	_, err = svc.ListTemplates(ctx, athleteID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
