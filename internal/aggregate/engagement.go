package aggregate

import (
	"math"
	"strings"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// Interaction-count thresholds behind the engagement scores. A contact with
// engagedThreshold interactions counts as engaged; one at likelyAgentThreshold
// shows the repeat-contact pattern typical of agents rather than buyers.
const (
	engagedThreshold     = 2
	likelyAgentThreshold = 5
)

// EngagementScores derives interaction-based scores for the filtered contact
// set. These are proxies computed from interaction counts and type labels,
// not measured outcomes; the Approximate flag on the result is always set so
// the UI can label them as estimates.
func EngagementScores(interactions []models.Interaction, typeNames map[int]string, totalContacts int) models.Engagement {
	perContact := make(map[int]int)
	emailContacts := make(map[int]struct{})
	for _, in := range interactions {
		if in.ContactID == 0 {
			continue
		}
		perContact[in.ContactID]++
		if label, ok := typeNames[in.InteractionTypeID]; ok &&
			strings.Contains(strings.ToLower(label), "email") {
			emailContacts[in.ContactID] = struct{}{}
		}
	}

	engaged, likelyAgents := 0, 0
	for _, n := range perContact {
		if n >= engagedThreshold {
			engaged++
		}
		if n >= likelyAgentThreshold {
			likelyAgents++
		}
	}

	quality := wholePct(engaged, len(perContact))
	return models.Engagement{
		QualityScore:     quality,
		EngagementScore:  quality,
		EmailCoverage:    wholePct(len(emailContacts), len(perContact)),
		LikelyAgentShare: wholePct(likelyAgents, totalContacts),
		Approximate:      true,
	}
}

func wholePct(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
