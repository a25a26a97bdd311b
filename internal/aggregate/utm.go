package aggregate

import (
	"sort"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// Defaults for contacts with no UTM custom fields.
const (
	DirectSource  = "Direct"
	NoMedium      = "None"
	NoCampaign    = "No Campaign"
	topCampaignsN = 20
)

// fieldValues resolves a contact's opaque custom-field entries through the
// definition name map.
func fieldValues(c models.Contact, fieldNames map[int]string) map[string]string {
	out := make(map[string]string, len(c.CustomFieldValues))
	for _, cfv := range c.CustomFieldValues {
		if name, ok := fieldNames[cfv.CustomFieldID]; ok && name != "" {
			out[name] = cfv.Value
		}
	}
	return out
}

// UTM attributes contacts to marketing campaigns through their utm_source,
// utm_medium, and utm_campaign custom fields. Traffic sources group by
// utm_source alone; campaigns group by the (campaign, source, medium) triple,
// capped to the top entries.
func UTM(contacts []models.Contact, fieldNames map[int]string) ([]models.TrafficSource, []models.Campaign) {
	sourceCounts := make(map[string]int)
	campaigns := make(map[[3]string]int)

	for _, c := range contacts {
		fields := fieldValues(c, fieldNames)

		src := fields["utm_source"]
		if src == "" {
			src = DirectSource
		}
		medium := fields["utm_medium"]
		if medium == "" {
			medium = NoMedium
		}
		campaign := fields["utm_campaign"]
		if campaign == "" {
			campaign = NoCampaign
		}

		sourceCounts[src]++
		campaigns[[3]string{campaign, src, medium}]++
	}

	traffic := make([]models.TrafficSource, 0, len(sourceCounts))
	for src, n := range sourceCounts {
		traffic = append(traffic, models.TrafficSource{Source: src, Leads: n})
	}
	sort.Slice(traffic, func(i, j int) bool {
		if traffic[i].Leads != traffic[j].Leads {
			return traffic[i].Leads > traffic[j].Leads
		}
		return traffic[i].Source < traffic[j].Source
	})

	top := make([]models.Campaign, 0, len(campaigns))
	for key, n := range campaigns {
		top = append(top, models.Campaign{Campaign: key[0], Source: key[1], Medium: key[2], Leads: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Leads != top[j].Leads {
			return top[i].Leads > top[j].Leads
		}
		return top[i].Campaign < top[j].Campaign
	})
	if len(top) > topCampaignsN {
		top = top[:topCampaignsN]
	}
	return traffic, top
}
