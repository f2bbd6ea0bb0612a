package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whereabouts/internal/audit"
	"whereabouts/internal/schedule/service"
	"whereabouts/internal/schedule/store/competition"
	"whereabouts/internal/schedule/store/quarter"
	"whereabouts/internal/schedule/store/slot"
	"whereabouts/internal/schedule/store/template"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/testutil"
)

// syncPublisher appends events inline so tests see the trail immediately.
type syncPublisher struct {
	store audit.Store
}

func (p *syncPublisher) Emit(ctx context.Context, event audit.Event) error {
	return p.store.Append(ctx, event)
}

func newTestRouter(t *testing.T) (chi.Router, *competition.MemoryStore) {
	t.Helper()

	competitions := competition.NewMemory()
	trail := audit.NewMemoryStore()
	svc := service.New(quarter.NewMemory(), slot.NewMemory(),
		service.WithTemplateStore(template.NewMemory()),
		service.WithAuditPublisher(&syncPublisher{store: trail}),
		service.WithLogger(testutil.DiscardLogger()),
	)

	r := chi.NewRouter()
	New(svc, competitions, trail, testutil.DiscardLogger()).Register(r)
	return r, competitions
}

type envelope struct {
	Success          bool            `json:"success"`
	Data             json.RawMessage `json:"data"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func patternBody() map[string]any {
	pattern := map[string]any{}
	days := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	for _, day := range days {
		pattern[day] = map[string]string{
			"location_type": "home", "time_start": "06:00", "time_end": "07:00",
		}
	}
	return pattern
}

func createQuarter(t *testing.T, r http.Handler, athleteID string) CreateQuarterResponse {
	t.Helper()

	rec, env := doJSON(t, r, http.MethodPost, "/quarters", map[string]any{
		"athlete_id": athleteID,
		"year":       2025,
		"quarter":    "Q1",
		"pattern":    patternBody(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CreateQuarterResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

func TestHandleCreateQuarter(t *testing.T) {
	t.Run("creates and expands", func(t *testing.T) {
		r, _ := newTestRouter(t)

		resp := createQuarter(t, r, id.NewAthleteID().String())
		assert.Equal(t, 90, resp.SlotsCreated)
		assert.Equal(t, "Q1", resp.Quarter.Quarter)
		assert.Equal(t, "complete", resp.Quarter.Status)
		assert.Equal(t, "2025-01-01", resp.Quarter.StartDate)
		assert.Equal(t, "2025-03-31", resp.Quarter.EndDate)
	})

	t.Run("duplicate period conflicts", func(t *testing.T) {
		r, _ := newTestRouter(t)
		athleteID := id.NewAthleteID().String()
		createQuarter(t, r, athleteID)

		rec, env := doJSON(t, r, http.MethodPost, "/quarters", map[string]any{
			"athlete_id": athleteID, "year": 2025, "quarter": "Q1", "pattern": patternBody(),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "conflict", env.Error)
	})

	t.Run("invalid pattern returns field findings", func(t *testing.T) {
		r, _ := newTestRouter(t)
		pattern := patternBody()
		pattern["monday"] = map[string]string{
			"location_type": "home", "time_start": "06:00", "time_end": "09:00",
		}

		rec, env := doJSON(t, r, http.MethodPost, "/quarters", map[string]any{
			"athlete_id": id.NewAthleteID().String(), "year": 2025, "quarter": "Q1", "pattern": pattern,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_input", env.Error)

		var details ValidationResponse
		require.NoError(t, json.Unmarshal(env.Data, &details))
		require.Len(t, details.Errors, 1)
		assert.Equal(t, "duration", details.Errors[0].Field)
		assert.Equal(t, "monday", string(details.Errors[0].Day))
	})

	t.Run("unknown quarter name is rejected", func(t *testing.T) {
		r, _ := newTestRouter(t)

		rec, _ := doJSON(t, r, http.MethodPost, "/quarters", map[string]any{
			"athlete_id": id.NewAthleteID().String(), "year": 2025, "quarter": "Q5", "pattern": patternBody(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		r, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/quarters", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetQuarter(t *testing.T) {
	r, _ := newTestRouter(t)
	athleteID := id.NewAthleteID().String()
	created := createQuarter(t, r, athleteID)

	t.Run("found", func(t *testing.T) {
		rec, env := doJSON(t, r, http.MethodGet, "/quarters/"+created.Quarter.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got QuarterResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, created.Quarter.ID, got.ID)
		assert.Equal(t, 100, got.CompletionPercentage)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec, env := doJSON(t, r, http.MethodGet, "/quarters/"+id.NewQuarterID().String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", env.Error)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodGet, "/quarters/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUpsertSlot(t *testing.T) {
	r, _ := newTestRouter(t)
	athleteID := id.NewAthleteID().String()
	created := createQuarter(t, r, athleteID)

	body := map[string]any{
		"athlete_id": athleteID, "location_type": "gym",
		"time_start": "18:00", "time_end": "19:00", "is_complete": true,
	}

	rec, env := doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/quarters/%s/slots/2025-02-14", created.Quarter.ID), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var first SlotResponse
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.Equal(t, "gym", first.LocationType)
	assert.Equal(t, 1, first.ModificationCount) // expansion created the row

	t.Run("date outside the quarter is rejected", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPut,
			fmt.Sprintf("/quarters/%s/slots/2025-06-01", created.Quarter.ID), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unparseable date is rejected", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPut,
			fmt.Sprintf("/quarters/%s/slots/February-14", created.Quarter.ID), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubmitFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	athleteID := id.NewAthleteID().String()
	created := createQuarter(t, r, athleteID)

	rec, env := doJSON(t, r, http.MethodPost, "/quarters/"+created.Quarter.ID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got QuarterResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "submitted", got.Status)

	// Terminal: a second submit conflicts, and edits are refused.
	rec, _ = doJSON(t, r, http.MethodPost, "/quarters/"+created.Quarter.ID+"/submit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/quarters/%s/slots/2025-02-14", created.Quarter.ID), map[string]any{
			"athlete_id": athleteID, "location_type": "home",
			"time_start": "06:00", "time_end": "07:00",
		})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleExtractPattern(t *testing.T) {
	r, _ := newTestRouter(t)
	athleteID := id.NewAthleteID().String()
	created := createQuarter(t, r, athleteID)

	rec, env := doJSON(t, r, http.MethodGet, "/quarters/"+created.Quarter.ID+"/pattern", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pattern PatternResponse
	require.NoError(t, json.Unmarshal(env.Data, &pattern))
	require.Len(t, pattern, 7)
	assert.Equal(t, "home", pattern["monday"].LocationType)
	assert.Equal(t, "06:00", pattern["monday"].TimeStart)
}

func TestTemplateEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	athleteID := id.NewAthleteID().String()
	created := createQuarter(t, r, athleteID)

	rec, env := doJSON(t, r, http.MethodPost, "/templates", map[string]any{
		"athlete_id": athleteID, "name": "standard week",
		"pattern": patternBody(), "is_default": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tpl TemplateResponse
	require.NoError(t, json.Unmarshal(env.Data, &tpl))
	assert.True(t, tpl.IsDefault)

	rec, env = doJSON(t, r, http.MethodPost, "/templates/"+tpl.ID+"/apply", map[string]any{
		"athlete_id": athleteID, "quarter_id": created.Quarter.ID, "overwrite": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var applied ApplyPatternResponse
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.Equal(t, 90, applied.SlotsUpdated)

	rec, env = doJSON(t, r, http.MethodGet, "/templates?athlete_id="+athleteID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []TemplateResponse
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].UsageCount)

	rec, _ = doJSON(t, r, http.MethodDelete, "/templates/"+tpl.ID+"?athlete_id="+athleteID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleAuditTrail(t *testing.T) {
	r, _ := newTestRouter(t)
	athleteID := id.NewAthleteID().String()
	created := createQuarter(t, r, athleteID)

	rec, env := doJSON(t, r, http.MethodGet, "/quarters/"+created.Quarter.ID+"/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var events []AuditEventResponse
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.NotEmpty(t, events)
	assert.Equal(t, "quarter_created", events[0].Action)
}

func TestCreateQuarterWithCompetitions(t *testing.T) {
	r, competitions := newTestRouter(t)
	athleteID := id.NewAthleteID().String()

	comp := testutil.Competition("National Trials", "2025-02-10", "2025-02-12")
	competitions.Seed(comp)

	rec, env := doJSON(t, r, http.MethodPost, "/quarters", map[string]any{
		"athlete_id":      athleteID,
		"year":            2025,
		"quarter":         "Q1",
		"pattern":         patternBody(),
		"competition_ids": []string{comp.ID.String()},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CreateQuarterResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	rec, env = doJSON(t, r, http.MethodGet, "/quarters/"+resp.Quarter.ID+"/slots", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var slots []SlotResponse
	require.NoError(t, json.Unmarshal(env.Data, &slots))
	require.Len(t, slots, 90)

	overridden := 0
	for _, s := range slots {
		if s.IsCompetition {
			overridden++
			assert.Equal(t, "training", s.LocationType)
		}
	}
	assert.Equal(t, 3, overridden)

	t.Run("unknown competition id is rejected", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPost, "/quarters", map[string]any{
			"athlete_id":      id.NewAthleteID().String(),
			"year":            2025,
			"quarter":         "Q1",
			"pattern":         patternBody(),
			"competition_ids": []string{id.NewCompetitionID().String()},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
