// Package fetch assembles the complete contact set for a project from the
// CRM: sources, then contacts per source, then full per-contact detail, with
// progress reported through an injected sink.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/brightwater-dev/leadboard/internal/aggregate"
	"github.com/brightwater-dev/leadboard/internal/crm"
	"github.com/brightwater-dev/leadboard/internal/logging"
	"github.com/brightwater-dev/leadboard/internal/models"
	"github.com/brightwater-dev/leadboard/internal/progress"
)

// agentImportMarker names sources that are bulk agent imports; those are
// never part of the dashboard regardless of user filters.
const agentImportMarker = "agent import"

// Query is one dashboard request: an inclusive date range plus the
// user-selected exclusions.
type Query struct {
	Start           time.Time
	End             time.Time
	ExcludedSources []string
	ExcludeAgents   bool
	ExcludeNoSource bool
}

// Result is everything one pass fetched. ProjectContacts is the full
// project-membership-filtered set before any date or exclusion filtering; the
// trend calculation re-filters it over the shifted window.
type Result struct {
	ProjectContacts  []models.Contact
	SourceNames      map[int]string
	FieldNames       map[int]string
	ExcludedIDs      map[int]struct{}
	AvailableSources []string
}

type Orchestrator struct {
	api       crm.API
	projectID int
	batchSize int
	log       zerolog.Logger
}

func NewOrchestrator(api crm.API, projectID, batchSize int) *Orchestrator {
	return &Orchestrator{
		api:       api,
		projectID: projectID,
		batchSize: batchSize,
		log:       logging.With("fetch"),
	}
}

// Run pulls the complete contact set for the project. Failures listing
// sources or custom fields abort the pass; a failed per-contact detail fetch
// drops that contact and a failed page truncates one source's contribution.
func (o *Orchestrator) Run(ctx context.Context, q Query, sink progress.Sink) (*Result, error) {
	sink.Send(progress.Event{Stage: progress.StageSources, Message: "Fetching registration sources..."})

	sources, err := o.api.ListRegistrationSources(ctx, o.projectID)
	if err != nil {
		return nil, fmt.Errorf("list registration sources: %w", err)
	}

	sourceNames := make(map[int]string, len(sources))
	for _, s := range sources {
		if s.ID != 0 && s.Name != "" {
			sourceNames[s.ID] = s.Name
		}
	}
	sink.Send(progress.Event{
		Stage:   progress.StageSources,
		Message: fmt.Sprintf("Found %d registration sources", len(sourceNames)),
	})

	excludedIDs := excludedSourceIDs(sourceNames, q.ExcludedSources)

	sink.Send(progress.Event{Stage: progress.StageFields, Message: "Fetching custom field definitions..."})
	fields, err := o.api.ListCustomFields(ctx, o.projectID)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	fieldNames := make(map[int]string, len(fields))
	for _, f := range fields {
		if f.ID != 0 && f.Name != "" {
			fieldNames[f.ID] = f.Name
		}
	}

	var toFetch []models.RegistrationSource
	for _, s := range sources {
		if _, skip := excludedIDs[s.ID]; !skip {
			toFetch = append(toFetch, s)
		}
	}

	sink.Send(progress.Event{
		Stage:    progress.StageContacts,
		Message:  fmt.Sprintf("Loading contacts from %d sources...", len(toFetch)),
		Progress: &progress.Counter{Current: 0, Total: len(toFetch)},
	})

	var project []models.Contact
	seen := make(map[int]struct{})

	for i, src := range toFetch {
		counter := &progress.Counter{Current: i + 1, Total: len(toFetch)}
		sink.Send(progress.Event{
			Stage:    progress.StageContacts,
			Message:  fmt.Sprintf("Loading %q...", src.Name),
			Progress: counter,
		})

		listed, err := o.api.ListContactsBySource(ctx, src.ID)
		if err != nil {
			// One source's listing failing truncates its contribution
			// but does not abort the others.
			o.log.Error().Err(err).Str("source", src.Name).Msg("contact listing failed, skipping source")
			continue
		}
		if len(listed) == 0 {
			continue
		}

		sink.Send(progress.Event{
			Stage:    progress.StageContacts,
			Message:  fmt.Sprintf("%q: %d contacts found, fetching details...", src.Name, len(listed)),
			Progress: counter,
		})

		project = o.fetchDetails(ctx, listed, src.Name, project, seen, sink)

		sink.Send(progress.Event{
			Stage:    progress.StageContacts,
			Message:  fmt.Sprintf("%q: complete (%d total contacts)", src.Name, len(project)),
			Progress: counter,
		})
	}

	if !q.ExcludeNoSource {
		sink.Send(progress.Event{Stage: progress.StageNoSource, Message: "Fetching contacts with no registration source..."})

		listed, err := o.api.ListContactsWithoutSource(ctx)
		if err != nil {
			o.log.Error().Err(err).Msg("no-source listing failed, skipping")
		} else if len(listed) > 0 {
			sink.Send(progress.Event{
				Stage:   progress.StageNoSource,
				Message: fmt.Sprintf("Found %d contacts with no source, fetching details...", len(listed)),
			})
			project = o.fetchDetails(ctx, listed, aggregate.NoSourceLabel, project, seen, sink)
		}
	}

	return &Result{
		ProjectContacts:  project,
		SourceNames:      sourceNames,
		FieldNames:       fieldNames,
		ExcludedIDs:      excludedIDs,
		AvailableSources: availableSources(sourceNames, project),
	}, nil
}

// fetchDetails resolves listed contacts to full records in concurrent batches.
// The list endpoint lacks project memberships and custom fields, so every ID
// costs one extra request. Individual failures drop the contact.
func (o *Orchestrator) fetchDetails(ctx context.Context, listed []models.Contact, sourceName string, acc []models.Contact, seen map[int]struct{}, sink progress.Sink) []models.Contact {
	for start := 0; start < len(listed); start += o.batchSize {
		end := start + o.batchSize
		if end > len(listed) {
			end = len(listed)
		}
		batch := listed[start:end]

		sink.Send(progress.Event{
			Stage:    progress.StageDetails,
			Message:  fmt.Sprintf("%q: fetching details %d-%d of %d...", sourceName, start+1, end, len(listed)),
			Progress: &progress.Counter{Current: end, Total: len(listed), Source: sourceName},
		})

		detailed := make([]*models.Contact, len(batch))
		var g errgroup.Group
		for i, c := range batch {
			i, c := i, c
			g.Go(func() error {
				contact, err := o.api.GetContact(ctx, c.ID)
				if err != nil {
					o.log.Error().Err(err).Int("contact_id", c.ID).Msg("contact detail fetch failed, dropping")
					return nil
				}
				detailed[i] = contact
				return nil
			})
		}
		// Goroutines above never return errors; Wait is just the barrier.
		_ = g.Wait()

		for _, contact := range detailed {
			if contact == nil || !contact.InProject(o.projectID) {
				continue
			}
			if _, dup := seen[contact.ID]; dup {
				continue
			}
			seen[contact.ID] = struct{}{}
			acc = append(acc, *contact)
		}
	}
	return acc
}

// excludedSourceIDs resolves user-excluded source names to IDs and always
// adds agent-import sources.
func excludedSourceIDs(sourceNames map[int]string, excluded []string) map[int]struct{} {
	byName := make(map[string]int, len(sourceNames))
	for id, name := range sourceNames {
		byName[name] = id
	}

	ids := make(map[int]struct{})
	for _, name := range excluded {
		if id, ok := byName[strings.TrimSpace(name)]; ok {
			ids[id] = struct{}{}
		}
	}
	for id, name := range sourceNames {
		if strings.Contains(strings.ToLower(name), agentImportMarker) {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// availableSources lists the filterable source names for the UI, sorted, with
// a No Source entry when sourceless contacts exist.
func availableSources(sourceNames map[int]string, contacts []models.Contact) []string {
	out := make([]string, 0, len(sourceNames)+1)
	for _, name := range sourceNames {
		if !strings.Contains(strings.ToLower(name), agentImportMarker) {
			out = append(out, name)
		}
	}
	for _, c := range contacts {
		if len(c.RegistrationSources) == 0 {
			out = append(out, aggregate.NoSourceLabel)
			break
		}
	}
	sort.Strings(out)
	return out
}

// FilterByDate keeps contacts created inside the inclusive [start, end]
// range.
func FilterByDate(contacts []models.Contact, start, end time.Time) []models.Contact {
	var out []models.Contact
	for _, c := range contacts {
		if c.CreatedAt.IsZero() {
			continue
		}
		if !c.CreatedAt.Before(start) && !c.CreatedAt.After(end) {
			out = append(out, c)
		}
	}
	return out
}

// ApplyExclusions applies the remaining user predicates: agent flag,
// no-source flag, and excluded-source membership.
func ApplyExclusions(contacts []models.Contact, q Query, excludedIDs map[int]struct{}) []models.Contact {
	var out []models.Contact
	for _, c := range contacts {
		if q.ExcludeAgents && c.Agent {
			continue
		}
		if q.ExcludeNoSource && len(c.RegistrationSources) == 0 {
			continue
		}
		if hasExcludedSource(c, excludedIDs) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasExcludedSource(c models.Contact, excludedIDs map[int]struct{}) bool {
	if len(excludedIDs) == 0 {
		return false
	}
	for _, s := range c.RegistrationSources {
		if _, ok := excludedIDs[s.ID]; ok {
			return true
		}
	}
	return false
}
