// Package handler exposes the filing workflow over HTTP. Handlers stay
// thin: decode, validate shape, call the service, translate the outcome.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"whereabouts/internal/audit"
	"whereabouts/internal/domain"
	"whereabouts/internal/schedule/ports"
	"whereabouts/internal/schedule/service"
	id "whereabouts/pkg/domain"
	dErrors "whereabouts/pkg/domain-errors"
	"whereabouts/pkg/platform/httputil"
	"whereabouts/pkg/platform/sentinel"
)

// Service is the slice of the filing service the HTTP layer consumes.
type Service interface {
	CreateQuarterWithPattern(ctx context.Context, athleteID id.AthleteID, year int, name domain.QuarterName, pattern domain.WeeklyPattern, competitions []domain.Competition) (*domain.Quarter, int, error)
	ApplyPatternToExistingQuarter(ctx context.Context, quarterID id.QuarterID, athleteID id.AthleteID, pattern domain.WeeklyPattern, overwrite bool) (int, int, error)
	ExtractPatternFromQuarter(ctx context.Context, quarterID id.QuarterID) (domain.WeeklyPattern, error)
	CopyQuarterPattern(ctx context.Context, sourceID id.QuarterID, targetYear int, targetName domain.QuarterName, athleteID id.AthleteID) (*domain.Quarter, int, error)
	UpsertSlot(ctx context.Context, quarterID id.QuarterID, athleteID id.AthleteID, date time.Time, input service.SlotInput) (*domain.DailySlotAssignment, error)
	SubmitQuarter(ctx context.Context, quarterID id.QuarterID) error
	GetQuarter(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error)
	ListQuarters(ctx context.Context, athleteID id.AthleteID) ([]*domain.Quarter, error)
	ListSlots(ctx context.Context, quarterID id.QuarterID) ([]*domain.DailySlotAssignment, error)
	SaveTemplate(ctx context.Context, athleteID id.AthleteID, name string, pattern domain.WeeklyPattern, isDefault bool) (*domain.Template, error)
	ApplyTemplate(ctx context.Context, templateID id.TemplateID, quarterID id.QuarterID, athleteID id.AthleteID, overwrite bool) (int, int, error)
	ListTemplates(ctx context.Context, athleteID id.AthleteID) ([]*domain.Template, error)
	DeleteTemplate(ctx context.Context, templateID id.TemplateID, athleteID id.AthleteID) error
}

// Handler wires filing endpoints to the schedule service.
type Handler struct {
	service      Service
	competitions ports.CompetitionStore
	auditTrail   audit.Store
	logger       *slog.Logger
}

// New constructs the handler. Competition and audit stores are optional;
// endpoints needing an absent one answer unavailable.
func New(svc Service, competitions ports.CompetitionStore, auditTrail audit.Store, logger *slog.Logger) *Handler {
	return &Handler{
		service:      svc,
		competitions: competitions,
		auditTrail:   auditTrail,
		logger:       logger,
	}
}

// Register mounts the filing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/quarters", func(r chi.Router) {
		r.Post("/", h.HandleCreateQuarter)
		r.Get("/", h.HandleListQuarters)
		r.Post("/copy", h.HandleCopyQuarter)
		r.Route("/{quarterID}", func(r chi.Router) {
			r.Get("/", h.HandleGetQuarter)
			r.Post("/submit", h.HandleSubmitQuarter)
			r.Get("/slots", h.HandleListSlots)
			r.Put("/slots/{date}", h.HandleUpsertSlot)
			r.Post("/pattern", h.HandleApplyPattern)
			r.Get("/pattern", h.HandleExtractPattern)
			r.Get("/audit", h.HandleAuditTrail)
		})
	})
	r.Route("/templates", func(r chi.Router) {
		r.Post("/", h.HandleSaveTemplate)
		r.Get("/", h.HandleListTemplates)
		r.Post("/{templateID}/apply", h.HandleApplyTemplate)
		r.Delete("/{templateID}", h.HandleDeleteTemplate)
	})
}

// HandleCreateQuarter handles POST /quarters.
func (h *Handler) HandleCreateQuarter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.Decode[CreateQuarterRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	competitions, err := h.resolveCompetitions(ctx, req.parsedCompetitions)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	quarter, created, err := h.service.CreateQuarterWithPattern(ctx,
		req.parsedAthleteID, req.Year, req.parsedQuarter, req.parsedPattern, competitions)
	if err != nil {
		h.writeServiceError(ctx, w, "quarter create failed", err)
		return
	}

	h.logger.InfoContext(ctx, "quarter created",
		"quarter_id", quarter.ID,
		"athlete_id", quarter.AthleteID,
		"period", string(quarter.Name),
		"slots_created", created,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, CreateQuarterResponse{
		Quarter:      fromQuarter(quarter),
		SlotsCreated: created,
	})
}

// HandleListQuarters handles GET /quarters?athlete_id=.
func (h *Handler) HandleListQuarters(w http.ResponseWriter, r *http.Request) {
	athleteID, err := id.ParseAthleteID(r.URL.Query().Get("athlete_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	quarters, err := h.service.ListQuarters(r.Context(), athleteID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "quarter list failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromQuarters(quarters))
}

// HandleGetQuarter handles GET /quarters/{quarterID}.
func (h *Handler) HandleGetQuarter(w http.ResponseWriter, r *http.Request) {
	quarterID, err := id.ParseQuarterID(chi.URLParam(r, "quarterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	quarter, err := h.service.GetQuarter(r.Context(), quarterID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "quarter get failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromQuarter(quarter))
}

// HandleListSlots handles GET /quarters/{quarterID}/slots.
func (h *Handler) HandleListSlots(w http.ResponseWriter, r *http.Request) {
	quarterID, err := id.ParseQuarterID(chi.URLParam(r, "quarterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slots, err := h.service.ListSlots(r.Context(), quarterID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "slot list failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSlots(slots))
}

// HandleApplyPattern handles POST /quarters/{quarterID}/pattern.
func (h *Handler) HandleApplyPattern(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quarterID, err := id.ParseQuarterID(chi.URLParam(r, "quarterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[ApplyPatternRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, updated, err := h.service.ApplyPatternToExistingQuarter(ctx,
		quarterID, req.parsedAthleteID, req.parsedPattern, req.Overwrite)
	if err != nil {
		h.writeServiceError(ctx, w, "pattern apply failed", err)
		return
	}

	h.logger.InfoContext(ctx, "pattern applied",
		"quarter_id", quarterID, "overwrite", req.Overwrite,
		"slots_created", created, "slots_updated", updated)
	httputil.WriteJSON(w, http.StatusOK, ApplyPatternResponse{
		SlotsCreated: created,
		SlotsUpdated: updated,
	})
}

// HandleExtractPattern handles GET /quarters/{quarterID}/pattern. A quarter
// without slots yields an empty pattern object, not an error.
func (h *Handler) HandleExtractPattern(w http.ResponseWriter, r *http.Request) {
	quarterID, err := id.ParseQuarterID(chi.URLParam(r, "quarterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pattern, err := h.service.ExtractPatternFromQuarter(r.Context(), quarterID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "pattern extract failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPattern(pattern))
}

// HandleCopyQuarter handles POST /quarters/copy.
func (h *Handler) HandleCopyQuarter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CopyQuarterRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	quarter, created, err := h.service.CopyQuarterPattern(ctx,
		req.parsedSourceID, req.TargetYear, req.parsedQuarter, req.parsedAthleteID)
	if err != nil {
		h.writeServiceError(ctx, w, "quarter copy failed", err)
		return
	}

	h.logger.InfoContext(ctx, "quarter copied",
		"source_quarter_id", req.parsedSourceID,
		"quarter_id", quarter.ID, "slots_created", created)
	httputil.WriteJSON(w, http.StatusCreated, CreateQuarterResponse{
		Quarter:      fromQuarter(quarter),
		SlotsCreated: created,
	})
}

// HandleUpsertSlot handles PUT /quarters/{quarterID}/slots/{date}.
func (h *Handler) HandleUpsertSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quarterID, err := id.ParseQuarterID(chi.URLParam(r, "quarterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := time.Parse(domain.DateLayout, chi.URLParam(r, "date"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "date must be YYYY-MM-DD"))
		return
	}
	req, ok := httputil.Decode[UpsertSlotRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	slot, err := h.service.UpsertSlot(ctx, quarterID, req.parsedAthleteID, date, service.SlotInput{
		LocationType:  domain.LocationType(req.LocationType),
		TimeStart:     req.TimeStart,
		TimeEnd:       req.TimeEnd,
		IsCompetition: req.IsCompetition,
		CompetitionID: req.parsedCompetitionID,
		Notes:         req.Notes,
		IsComplete:    req.IsComplete,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "slot upsert failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSlot(slot))
}

// HandleSubmitQuarter handles POST /quarters/{quarterID}/submit.
func (h *Handler) HandleSubmitQuarter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quarterID, err := id.ParseQuarterID(chi.URLParam(r, "quarterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SubmitQuarter(ctx, quarterID); err != nil {
		h.writeServiceError(ctx, w, "quarter submit failed", err)
		return
	}

	quarter, err := h.service.GetQuarter(ctx, quarterID)
	if err != nil {
		h.writeServiceError(ctx, w, "quarter get failed", err)
		return
	}
	h.logger.InfoContext(ctx, "quarter submitted", "quarter_id", quarterID)
	httputil.WriteJSON(w, http.StatusOK, fromQuarter(quarter))
}

// HandleAuditTrail handles GET /quarters/{quarterID}/audit.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	if h.auditTrail == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audit trail is not configured"))
		return
	}

	quarterID, err := id.ParseQuarterID(chi.URLParam(r, "quarterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.auditTrail.ListByQuarter(r.Context(), quarterID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAuditEvents(events))
}

// HandleSaveTemplate handles POST /templates.
func (h *Handler) HandleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[SaveTemplateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	template, err := h.service.SaveTemplate(ctx, req.parsedAthleteID, req.Name, req.parsedPattern, req.IsDefault)
	if err != nil {
		h.writeServiceError(ctx, w, "template save failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromTemplate(template))
}

// HandleListTemplates handles GET /templates?athlete_id=.
func (h *Handler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	athleteID, err := id.ParseAthleteID(r.URL.Query().Get("athlete_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), athleteID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "template list failed", err)
		return
	}

	out := make([]*TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = fromTemplate(t)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleApplyTemplate handles POST /templates/{templateID}/apply.
func (h *Handler) HandleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	templateID, err := id.ParseTemplateID(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[ApplyTemplateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, updated, err := h.service.ApplyTemplate(ctx, templateID, req.parsedQuarterID, req.parsedAthleteID, req.Overwrite)
	if err != nil {
		h.writeServiceError(ctx, w, "template apply failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ApplyPatternResponse{
		SlotsCreated: created,
		SlotsUpdated: updated,
	})
}

// HandleDeleteTemplate handles DELETE /templates/{templateID}?athlete_id=.
func (h *Handler) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := id.ParseTemplateID(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	athleteID, err := id.ParseAthleteID(r.URL.Query().Get("athlete_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), templateID, athleteID); err != nil {
		h.writeServiceError(r.Context(), w, "template delete failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveCompetitions turns caller-supplied competition ids into records.
func (h *Handler) resolveCompetitions(ctx context.Context, ids []id.CompetitionID) ([]domain.Competition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if h.competitions == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "competition lookup is not configured")
	}

	competitions, err := h.competitions.ListByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown competition id in competition_ids")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "resolve competitions")
	}
	return competitions, nil
}

// writeServiceError logs and writes a service failure. Validation failures
// carry their field-level findings into the response body.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg, "error", err)

	var vErr *service.ValidationFailedError
	if errors.As(err, &vErr) {
		httputil.WriteErrorDetails(w, err, ValidationResponse{
			Errors:   vErr.Result.Errors,
			Warnings: vErr.Result.Warnings,
		})
		return
	}
	httputil.WriteError(w, err)
}
