package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwater-dev/leadboard/internal/fetch"
	"github.com/brightwater-dev/leadboard/internal/models"
	"github.com/brightwater-dev/leadboard/internal/progress"
)

type fakeAPI struct {
	sources      []models.RegistrationSource
	bySource     map[int][]models.Contact
	details      map[int]*models.Contact
	interactions []models.Interaction
	intErr       error

	sourceCalls int
}

func (f *fakeAPI) ListRegistrationSources(ctx context.Context, projectID int) ([]models.RegistrationSource, error) {
	f.sourceCalls++
	return f.sources, nil
}

func (f *fakeAPI) ListCustomFields(ctx context.Context, projectID int) ([]models.CustomFieldDefinition, error) {
	return []models.CustomFieldDefinition{{ID: 10, Name: "utm_source"}}, nil
}

func (f *fakeAPI) ListContactsBySource(ctx context.Context, sourceID int) ([]models.Contact, error) {
	return f.bySource[sourceID], nil
}

func (f *fakeAPI) ListContactsWithoutSource(ctx context.Context) ([]models.Contact, error) {
	return nil, nil
}

func (f *fakeAPI) GetContact(ctx context.Context, id int) (*models.Contact, error) {
	if c, ok := f.details[id]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) ListAllInteractions(ctx context.Context, projectID int) ([]models.Interaction, error) {
	return f.interactions, f.intErr
}

func (f *fakeAPI) InteractionTypeMap(ctx context.Context, projectID int) map[int]string {
	return map[int]string{1: "Email Sent"}
}

func (f *fakeAPI) TeamMemberMap(ctx context.Context, projectID int) map[int]string {
	return map[int]string{}
}

// mapStore is a Store without expiry.
type mapStore struct{ m map[string]any }

func newMapStore() *mapStore { return &mapStore{m: make(map[string]any)} }

func (s *mapStore) Get(k string) (any, bool) { v, ok := s.m[k]; return v, ok }
func (s *mapStore) Set(k string, v any)      { s.m[k] = v }
func (s *mapStore) Invalidate(k string)      { delete(s.m, k) }
func (s *mapStore) Clear()                   { s.m = make(map[string]any) }

func created(day int) time.Time {
	return time.Date(2026, 7, day, 12, 0, 0, 0, time.UTC)
}

func member(id, day int, agent bool, sourceIDs ...int) *models.Contact {
	c := &models.Contact{
		ID:        id,
		Agent:     agent,
		CreatedAt: created(day),
		Projects:  []models.ProjectMembership{{ProjectID: 1}},
	}
	for _, sid := range sourceIDs {
		c.RegistrationSources = append(c.RegistrationSources, models.SourceRef{ID: sid})
	}
	return c
}

func newFixture() (*Service, *fakeAPI, *mapStore) {
	api := &fakeAPI{
		sources: []models.RegistrationSource{{ID: 1, Name: "Website"}},
		bySource: map[int][]models.Contact{
			1: {{ID: 101}, {ID: 102}, {ID: 103}, {ID: 104}},
		},
		details: map[int]*models.Contact{
			101: member(101, 10, false, 1),
			102: member(102, 12, true, 1),
			103: member(103, 20, false, 1),
			// created before the query window; only the trend sees it
			104: member(104, 1, false, 1),
		},
	}
	store := newMapStore()
	orch := fetch.NewOrchestrator(api, 1, 50)
	return NewService(orch, api, store, 1), api, store
}

func query() fetch.Query {
	return fetch.Query{
		Start: time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestBuildAssemblesDashboard(t *testing.T) {
	svc, _, _ := newFixture()

	dash, err := svc.Build(context.Background(), query(), progress.Discard)
	require.NoError(t, err)

	assert.Equal(t, 3, dash.KeyMetrics.TotalLeads)
	assert.Equal(t, 3, dash.KeyMetrics.UnfilteredTotal)
	assert.Zero(t, dash.ActiveFilters.FilteredOutCount)
	require.Len(t, dash.LeadSources, 1)
	assert.Equal(t, models.LeadSourceCount{Name: "Website", Contacts: 3}, dash.LeadSources[0])
	assert.Equal(t, []string{"Website"}, dash.AvailableSources)
	require.NotNil(t, dash.Engagement)
	assert.True(t, dash.Engagement.Approximate)
}

func TestBuildTrendUsesPrecedingWindow(t *testing.T) {
	svc, _, _ := newFixture()

	// 27-day window with 3 leads; the preceding window holds contact 104
	dash, err := svc.Build(context.Background(), query(), progress.Discard)
	require.NoError(t, err)

	assert.Equal(t, models.TrendUp, dash.KeyMetrics.Trend.Direction)
	assert.Equal(t, 200, dash.KeyMetrics.Trend.Value)
}

func TestBuildCountsFilteredOutContacts(t *testing.T) {
	svc, _, _ := newFixture()

	q := query()
	q.ExcludeAgents = true
	dash, err := svc.Build(context.Background(), q, progress.Discard)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.KeyMetrics.TotalLeads)
	assert.Equal(t, 3, dash.KeyMetrics.UnfilteredTotal)
	assert.Equal(t, 1, dash.ActiveFilters.FilteredOutCount)
	assert.True(t, dash.ActiveFilters.ExcludeAgents)
}

func TestBuildServesSecondCallFromCache(t *testing.T) {
	svc, api, _ := newFixture()

	_, err := svc.Build(context.Background(), query(), progress.Discard)
	require.NoError(t, err)
	require.Equal(t, 1, api.sourceCalls)

	var events []progress.Event
	sink := progress.Func(func(ev progress.Event) { events = append(events, ev) })

	dash, err := svc.Build(context.Background(), query(), sink)
	require.NoError(t, err)
	assert.Equal(t, 1, api.sourceCalls, "cache hit must not refetch")

	require.Len(t, events, 1)
	assert.Equal(t, progress.StageComplete, events[0].Stage)
	assert.Same(t, dash, events[0].Data)
}

func TestBuildEmitsExactlyOneTerminalEvent(t *testing.T) {
	svc, _, _ := newFixture()

	var terminal int
	var last progress.Stage
	sink := progress.Func(func(ev progress.Event) {
		last = ev.Stage
		if ev.Stage.Terminal() {
			terminal++
		}
	})

	_, err := svc.Build(context.Background(), query(), sink)
	require.NoError(t, err)
	assert.Equal(t, 1, terminal)
	assert.Equal(t, progress.StageComplete, last)
}

func TestBuildOmitsEngagementWhenInteractionsFail(t *testing.T) {
	svc, api, _ := newFixture()
	api.intErr = errors.New("upstream down")

	dash, err := svc.Build(context.Background(), query(), progress.Discard)
	require.NoError(t, err)
	assert.Nil(t, dash.Engagement)
}

func TestBuildDistinctFiltersGetDistinctCacheEntries(t *testing.T) {
	svc, api, _ := newFixture()

	_, err := svc.Build(context.Background(), query(), progress.Discard)
	require.NoError(t, err)

	q := query()
	q.ExcludeAgents = true
	_, err = svc.Build(context.Background(), q, progress.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, api.sourceCalls)
}
