// Package dashboard composes fetching, aggregation, and caching into the
// dashboard responses the HTTP layer serves.
package dashboard

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/brightwater-dev/leadboard/internal/aggregate"
	"github.com/brightwater-dev/leadboard/internal/cache"
	"github.com/brightwater-dev/leadboard/internal/crm"
	"github.com/brightwater-dev/leadboard/internal/fetch"
	"github.com/brightwater-dev/leadboard/internal/logging"
	"github.com/brightwater-dev/leadboard/internal/metrics"
	"github.com/brightwater-dev/leadboard/internal/models"
	"github.com/brightwater-dev/leadboard/internal/progress"
)

type Service struct {
	orch      *fetch.Orchestrator
	api       crm.API
	store     cache.Store
	projectID int
	log       zerolog.Logger
}

func NewService(orch *fetch.Orchestrator, api crm.API, store cache.Store, projectID int) *Service {
	return &Service{
		orch:      orch,
		api:       api,
		store:     store,
		projectID: projectID,
		log:       logging.With("dashboard"),
	}
}

// Build returns the dashboard for one query, from cache when a fresh entry
// exists. Progress goes to the sink as the pass runs; on success the terminal
// complete event carries the payload. Errors are returned, not sent: the
// transport decides how to report them.
func (s *Service) Build(ctx context.Context, q fetch.Query, sink progress.Sink) (*models.Dashboard, error) {
	key := cache.Key(q.Start, q.End, q.ExcludedSources, q.ExcludeAgents, q.ExcludeNoSource)
	if v, ok := s.store.Get(key); ok {
		if dash, ok := v.(*models.Dashboard); ok {
			s.log.Debug().Str("key", key).Msg("cache hit")
			sink.Send(progress.Event{
				Stage:   progress.StageComplete,
				Message: "Dashboard ready (cached)",
				Data:    dash,
			})
			return dash, nil
		}
	}

	res, err := s.orch.Run(ctx, q, sink)
	if err != nil {
		return nil, fmt.Errorf("fetch contacts: %w", err)
	}

	sink.Send(progress.Event{
		Stage:   progress.StageAggregate,
		Message: fmt.Sprintf("Aggregating %d contacts...", len(res.ProjectContacts)),
	})

	timer := prometheus.NewTimer(metrics.AggregationDuration)
	dash := s.assemble(ctx, q, res)
	timer.ObserveDuration()

	s.store.Set(key, dash)
	sink.Send(progress.Event{
		Stage:   progress.StageComplete,
		Message: "Dashboard ready",
		Data:    dash,
	})
	return dash, nil
}

// assemble runs every aggregation over the fetched set. Pure except for the
// interaction fetch, which degrades to a nil Engagement block on failure.
func (s *Service) assemble(ctx context.Context, q fetch.Query, res *fetch.Result) *models.Dashboard {
	dateFiltered := fetch.FilterByDate(res.ProjectContacts, q.Start, q.End)
	filtered := fetch.ApplyExclusions(dateFiltered, q, res.ExcludedIDs)

	prevStart, prevEnd := aggregate.PreviousWindow(q.Start, q.End)
	var previous []models.Contact
	for _, c := range res.ProjectContacts {
		if !c.CreatedAt.IsZero() && aggregate.InWindow(c.CreatedAt, prevStart, prevEnd) {
			previous = append(previous, c)
		}
	}
	previous = fetch.ApplyExclusions(previous, q, res.ExcludedIDs)

	growth, growthBySource := aggregate.Growth(filtered, res.SourceNames)
	traffic, campaigns := aggregate.UTM(filtered, res.FieldNames)
	ratings, funnel := aggregate.Ratings(filtered)

	excluded := q.ExcludedSources
	if excluded == nil {
		excluded = []string{}
	}

	dash := &models.Dashboard{
		KeyMetrics: models.KeyMetrics{
			TotalLeads:      len(filtered),
			Trend:           aggregate.Trend(len(filtered), len(previous)),
			UnfilteredTotal: len(dateFiltered),
		},
		LeadSources:        aggregate.LeadSources(filtered, res.SourceNames),
		LeadGrowth:         growth,
		LeadGrowthBySource: growthBySource,
		LeadsByLocation:    aggregate.ByLocation(filtered),
		LeadsByZipCode:     aggregate.ByZipCode(filtered),
		AgentDistribution:  aggregate.AgentDistribution(filtered),
		TrafficSources:     traffic,
		TopCampaigns:       campaigns,
		RatingDistribution: ratings,
		PipelineFunnel:     funnel,
		Engagement:         s.engagement(ctx, filtered),
		AvailableSources:   res.AvailableSources,
		ActiveFilters: models.ActiveFilters{
			ExcludedSources:  excluded,
			ExcludeAgents:    q.ExcludeAgents,
			ExcludeNoSource:  q.ExcludeNoSource,
			FilteredOutCount: len(dateFiltered) - len(filtered),
		},
	}
	return dash
}

// engagement fetches interactions and scores the filtered set. A fetch
// failure drops the block rather than failing the dashboard.
func (s *Service) engagement(ctx context.Context, filtered []models.Contact) *models.Engagement {
	interactions, err := s.api.ListAllInteractions(ctx, s.projectID)
	if err != nil {
		s.log.Error().Err(err).Msg("interaction fetch failed, omitting engagement scores")
		return nil
	}

	ids := make(map[int]struct{}, len(filtered))
	for _, c := range filtered {
		ids[c.ID] = struct{}{}
	}
	var relevant []models.Interaction
	for _, in := range interactions {
		if _, ok := ids[in.ContactID]; ok {
			relevant = append(relevant, in)
		}
	}

	typeNames := s.api.InteractionTypeMap(ctx, s.projectID)
	eng := aggregate.EngagementScores(relevant, typeNames, len(filtered))
	return &eng
}
