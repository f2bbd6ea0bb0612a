package service

import (
	"context"
	"errors"

	"whereabouts/internal/audit"
	"whereabouts/internal/domain"
	"whereabouts/internal/schedule/ports"
	"whereabouts/internal/validation"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
	"whereabouts/pkg/platform/sentinel"
)

// SaveTemplate stores a named weekly pattern for later reuse. Saving a
// default clears the athlete's previous default first, so at most one
// default exists per athlete.
func (s *Service) SaveTemplate(ctx context.Context, athleteID id.AthleteID, name string, pattern domain.WeeklyPattern, isDefault bool) (*domain.Template, error) {
	if s.templates == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "template storage is not configured")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "template name is required")
	}
	if result := validation.CheckWeeklyPattern(pattern, nil); !result.Valid() {
		return nil, &ValidationFailedError{Result: result}
	}

	if isDefault {
		if err := s.templates.ClearDefault(ctx, athleteID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "clear default template")
		}
	}

	template := &domain.Template{
		ID:        id.NewTemplateID(),
		AthleteID: athleteID,
		Name:      name,
		Pattern:   pattern.Clone(),
		IsDefault: isDefault,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.templates.Save(ctx, template); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "save template")
	}
	return template, nil
}

// ApplyTemplate projects a saved template's pattern onto an existing quarter
// and bumps the template's usage count.
func (s *Service) ApplyTemplate(ctx context.Context, templateID id.TemplateID, quarterID id.QuarterID, athleteID id.AthleteID, overwrite bool) (int, int, error) {
	if s.templates == nil {
		return 0, 0, dErrors.New(dErrors.CodeUnavailable, "template storage is not configured")
	}

	template, err := s.getOwnedTemplate(ctx, templateID, athleteID)
	if err != nil {
		return 0, 0, err
	}

	created, updated, err := s.ApplyPatternToExistingQuarter(ctx, quarterID, athleteID, template.Pattern, overwrite)
	if err != nil {
		return created, updated, err
	}

	template.UsageCount++
	template.UpdatedAt = s.now()
	if err := s.templates.Save(ctx, template); err != nil {
		// The pattern landed; a stale usage counter is not worth failing for.
		s.logger.WarnContext(ctx, "template usage count update failed",
			"template_id", templateID, "error", err)
	}

	ports.LogAudit(ctx, s.logger, s.audit, s.auditEvent(athleteID, quarterID,
		audit.ActionTemplateApplied, map[string]string{"template": template.Name}))
	return created, updated, nil
}

// ListTemplates returns an athlete's saved templates.
func (s *Service) ListTemplates(ctx context.Context, athleteID id.AthleteID) ([]*domain.Template, error) {
	if s.templates == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "template storage is not configured")
	}
	templates, err := s.templates.ListByAthlete(ctx, athleteID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list templates")
	}
	return templates, nil
}

// DeleteTemplate removes one of the athlete's templates.
func (s *Service) DeleteTemplate(ctx context.Context, templateID id.TemplateID, athleteID id.AthleteID) error {
	if s.templates == nil {
		return dErrors.New(dErrors.CodeUnavailable, "template storage is not configured")
	}
	if _, err := s.getOwnedTemplate(ctx, templateID, athleteID); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, templateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "template %s not found", templateID)
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "delete template")
	}
	return nil
}

func (s *Service) getOwnedTemplate(ctx context.Context, templateID id.TemplateID, athleteID id.AthleteID) (*domain.Template, error) {
	template, err := s.templates.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "template %s not found", templateID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get template")
	}
	if template.AthleteID != athleteID {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "template %s not found", templateID)
	}
	return template, nil
}
