package httpx

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwater-dev/leadboard/internal/config"
	"github.com/brightwater-dev/leadboard/internal/crm"
	"github.com/brightwater-dev/leadboard/internal/dashboard"
	"github.com/brightwater-dev/leadboard/internal/fetch"
	"github.com/brightwater-dev/leadboard/internal/models"
	"github.com/brightwater-dev/leadboard/internal/progress"
)

type fakeAPI struct {
	sourcesErr error
}

func (f *fakeAPI) ListRegistrationSources(ctx context.Context, projectID int) ([]models.RegistrationSource, error) {
	if f.sourcesErr != nil {
		return nil, f.sourcesErr
	}
	return []models.RegistrationSource{{ID: 1, Name: "Website"}}, nil
}

func (f *fakeAPI) ListCustomFields(ctx context.Context, projectID int) ([]models.CustomFieldDefinition, error) {
	return nil, nil
}

func (f *fakeAPI) ListContactsBySource(ctx context.Context, sourceID int) ([]models.Contact, error) {
	return []models.Contact{{ID: 101}}, nil
}

func (f *fakeAPI) ListContactsWithoutSource(ctx context.Context) ([]models.Contact, error) {
	return nil, nil
}

func (f *fakeAPI) GetContact(ctx context.Context, id int) (*models.Contact, error) {
	return &models.Contact{
		ID:                  id,
		CreatedAt:           time.Now().UTC().Add(-24 * time.Hour),
		Projects:            []models.ProjectMembership{{ProjectID: 1}},
		RegistrationSources: []models.SourceRef{{ID: 1}},
	}, nil
}

func (f *fakeAPI) ListAllInteractions(ctx context.Context, projectID int) ([]models.Interaction, error) {
	return nil, nil
}

func (f *fakeAPI) InteractionTypeMap(ctx context.Context, projectID int) map[int]string {
	return map[int]string{}
}

func (f *fakeAPI) TeamMemberMap(ctx context.Context, projectID int) map[int]string {
	return map[int]string{}
}

type mapStore struct{ m map[string]any }

func (s *mapStore) Get(k string) (any, bool) { v, ok := s.m[k]; return v, ok }
func (s *mapStore) Set(k string, v any)      { s.m[k] = v }
func (s *mapStore) Invalidate(k string)      { delete(s.m, k) }
func (s *mapStore) Clear()                   { s.m = make(map[string]any) }

func newTestRouter(api *fakeAPI, rateLimit int) http.Handler {
	orch := fetch.NewOrchestrator(api, 1, 50)
	svc := dashboard.NewService(orch, api, &mapStore{m: make(map[string]any)}, 1)
	return NewRouter(svc, dashboard.NewPresetStore(), config.ServerConfig{
		Port:           "0",
		RateLimit:      rateLimit,
		AllowedOrigins: []string{"*"},
	})
}

func TestParseQueryDefaultsToLastThirtyDays(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	q, err := parseQuery(r)
	require.NoError(t, err)

	assert.True(t, q.End.After(q.Start))
	assert.InDelta(t, float64(31*24*time.Hour), float64(q.End.Sub(q.Start)), float64(25*time.Hour))
	assert.Empty(t, q.ExcludedSources)
	assert.False(t, q.ExcludeAgents)
}

func TestParseQueryReadsFilters(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/dashboard?start=2026-07-01&end=2026-07-31&excludeSources=Website,%20Walk%20In&excludeAgents=true&excludeNoSource=true", nil)

	q, err := parseQuery(r)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), q.Start)
	// a bare end date covers the whole day
	assert.Equal(t, time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC).Add(24*time.Hour-time.Nanosecond), q.End)
	assert.Equal(t, []string{"Website", "Walk In"}, q.ExcludedSources)
	assert.True(t, q.ExcludeAgents)
	assert.True(t, q.ExcludeNoSource)
}

func TestParseQueryRejectsBadInput(t *testing.T) {
	for _, target := range []string{
		"/api/dashboard?start=not-a-date",
		"/api/dashboard?end=31-07-2026",
		"/api/dashboard?start=2026-07-31&end=2026-07-01",
	} {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		_, err := parseQuery(r)
		assert.Error(t, err, target)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, 100)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var dash models.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, 1, dash.KeyMetrics.TotalLeads)
	assert.Equal(t, []string{"Website"}, dash.AvailableSources)
}

func TestDashboardEndpointRejectsBadDates(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, 100)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?start=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardEndpointMapsUpstreamStatus(t *testing.T) {
	router := newTestRouter(&fakeAPI{
		sourcesErr: &crm.APIError{Status: http.StatusUnauthorized, Message: "authentication failed"},
	}, 100)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStreamEndpointEndsWithCompleteEvent(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, 100)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stream", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var events []progress.Event
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev progress.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}

	require.NotEmpty(t, events)
	terminal := 0
	for _, ev := range events {
		if ev.Stage.Terminal() {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)

	last := events[len(events)-1]
	assert.Equal(t, progress.StageComplete, last.Stage)
	assert.NotNil(t, last.Data)
}

func TestStreamEndpointEmitsErrorEvent(t *testing.T) {
	router := newTestRouter(&fakeAPI{sourcesErr: errors.New("upstream down")}, 100)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stream", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `"stage":"error"`)
	assert.NotContains(t, body, `"stage":"complete"`)
}

func TestPresetLifecycle(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, 100)

	body, _ := json.Marshal(models.FilterPreset{Name: "No agents", ExcludeAgents: true})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/filters/presets", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved models.FilterPreset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/filters/presets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var presets []models.FilterPreset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &presets))
	require.Len(t, presets, 1)
	assert.Equal(t, "No agents", presets[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/filters/presets/"+saved.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/filters/presets/"+saved.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresetValidation(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, 100)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/filters/presets", strings.NewReader(`{"name":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/filters/presets", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitCapsRequests(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, 2)

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/filters/presets", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&fakeAPI{}, 100)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
