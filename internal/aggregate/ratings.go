package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// funnelStages is the fixed pipeline order. Agent, Team, and Not Interested
// ratings are tracked in the distribution but stay out of the funnel.
var funnelStages = []string{"New", "Hot", "Warm", "Cold", "Reservation"}

// Ratings groups contacts by their first rating value. Percentages are shares
// of contacts that carry a rating at all, not of the grand total, rounded to
// one decimal place.
func Ratings(contacts []models.Contact) ([]models.RatingBucket, []models.FunnelStage) {
	counts := make(map[string]int)
	rated := 0
	for _, c := range contacts {
		if len(c.Ratings) == 0 || c.Ratings[0].Value == "" {
			continue
		}
		counts[c.Ratings[0].Value]++
		rated++
	}

	dist := make([]models.RatingBucket, 0, len(counts))
	for name, n := range counts {
		pct := 0.0
		if rated > 0 {
			pct = math.Round(float64(n)/float64(rated)*1000) / 10
		}
		dist = append(dist, models.RatingBucket{Name: name, Count: n, Percentage: pct})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].Name < dist[j].Name
	})

	funnel := make([]models.FunnelStage, len(funnelStages))
	for i, stage := range funnelStages {
		n := 0
		for name, count := range counts {
			if strings.EqualFold(name, stage) {
				n += count
			}
		}
		funnel[i] = models.FunnelStage{Stage: stage, Count: n}
	}
	return dist, funnel
}
