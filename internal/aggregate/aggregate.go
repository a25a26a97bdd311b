// Package aggregate turns one pass of fetched contacts and interactions into
// the grouped dashboard metrics. Everything here is pure: no I/O, no clocks,
// no shared state.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// NoSourceLabel is the distinguished bucket for contacts with no registration
// source.
const NoSourceLabel = "No Source"

func sourceName(names map[int]string, id int) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return fmt.Sprintf("Source %d", id)
}

// LeadSources counts contacts per registration source. A contact referencing
// the same source twice counts once for that source; a contact with several
// distinct sources counts once for each. Sourceless contacts land in the
// NoSourceLabel bucket.
func LeadSources(contacts []models.Contact, names map[int]string) []models.LeadSourceCount {
	counts := make(map[int]int)
	noSource := 0
	for _, c := range contacts {
		if len(c.RegistrationSources) == 0 {
			noSource++
			continue
		}
		seen := make(map[int]struct{}, len(c.RegistrationSources))
		for _, s := range c.RegistrationSources {
			if s.ID == 0 {
				continue
			}
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			counts[s.ID]++
		}
		if len(seen) == 0 {
			noSource++
		}
	}

	out := make([]models.LeadSourceCount, 0, len(counts)+1)
	for id, n := range counts {
		out = append(out, models.LeadSourceCount{Name: sourceName(names, id), Contacts: n})
	}
	if noSource > 0 {
		out = append(out, models.LeadSourceCount{Name: NoSourceLabel, Contacts: noSource})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Contacts != out[j].Contacts {
			return out[i].Contacts > out[j].Contacts
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// growthLabel is the chart's short date form.
func growthLabel(day time.Time) string {
	return day.Format("Jan 2")
}

// Growth buckets contacts by UTC calendar day. The total series counts every
// contact once. The per-source series attributes each contact to its first
// listed source: the chart answers "which source produced this lead", so one
// contact never contributes to two source lines even when it carries several
// sources. That intentionally differs from LeadSources, which counts the full
// deduplicated set.
func Growth(contacts []models.Contact, names map[int]string) ([]models.GrowthPoint, map[string][]models.GrowthPoint) {
	type dayCount struct {
		day   time.Time
		count int
	}
	totals := make(map[string]*dayCount)
	bySource := make(map[string]map[string]*dayCount)

	for _, c := range contacts {
		if c.CreatedAt.IsZero() {
			continue
		}
		day := c.CreatedAt.UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")

		if t, ok := totals[key]; ok {
			t.count++
		} else {
			totals[key] = &dayCount{day: day, count: 1}
		}

		src := NoSourceLabel
		if len(c.RegistrationSources) > 0 {
			src = sourceName(names, c.RegistrationSources[0].ID)
		}
		if bySource[src] == nil {
			bySource[src] = make(map[string]*dayCount)
		}
		if t, ok := bySource[src][key]; ok {
			t.count++
		} else {
			bySource[src][key] = &dayCount{day: day, count: 1}
		}
	}

	flatten := func(m map[string]*dayCount) []models.GrowthPoint {
		days := make([]*dayCount, 0, len(m))
		for _, dc := range m {
			days = append(days, dc)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].day.Before(days[j].day) })
		out := make([]models.GrowthPoint, len(days))
		for i, dc := range days {
			out[i] = models.GrowthPoint{Date: growthLabel(dc.day), Leads: dc.count}
		}
		return out
	}

	series := make(map[string][]models.GrowthPoint, len(bySource))
	for src, m := range bySource {
		series[src] = flatten(m)
	}
	return flatten(totals), series
}

// AgentDistribution splits the filtered set into all/agent/non-agent buckets.
func AgentDistribution(contacts []models.Contact) []models.AgentBucket {
	agents := 0
	for _, c := range contacts {
		if c.Agent {
			agents++
		}
	}
	return []models.AgentBucket{
		{Category: "All Leads", Count: len(contacts)},
		{Category: "Agents", Count: agents},
		{Category: "Non-Agents", Count: len(contacts) - agents},
	}
}
