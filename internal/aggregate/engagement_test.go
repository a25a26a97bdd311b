package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightwater-dev/leadboard/internal/models"
)

func interactions(contactID, n, typeID int) []models.Interaction {
	out := make([]models.Interaction, n)
	for i := range out {
		out[i] = models.Interaction{ID: i + 1, ContactID: contactID, InteractionTypeID: typeID}
	}
	return out
}

func TestEngagementScoresThresholds(t *testing.T) {
	types := map[int]string{1: "Phone Call", 2: "Email Sent"}

	var ins []models.Interaction
	ins = append(ins, interactions(1, 1, 1)...) // below engaged threshold
	ins = append(ins, interactions(2, 2, 2)...) // engaged, via email
	ins = append(ins, interactions(3, 5, 1)...) // engaged and likely agent

	got := EngagementScores(ins, types, 10)

	// 2 of 3 interacting contacts are engaged
	assert.Equal(t, 67, got.QualityScore)
	assert.Equal(t, got.QualityScore, got.EngagementScore)
	// 1 of 3 touched by email
	assert.Equal(t, 33, got.EmailCoverage)
	// 1 likely agent over the full filtered set of 10
	assert.Equal(t, 10, got.LikelyAgentShare)
	assert.True(t, got.Approximate)
}

func TestEngagementScoresNoInteractions(t *testing.T) {
	got := EngagementScores(nil, nil, 5)
	assert.Equal(t, models.Engagement{Approximate: true}, got)
}

func TestEngagementScoresSkipsOrphanInteractions(t *testing.T) {
	ins := []models.Interaction{{ID: 1, ContactID: 0}}
	got := EngagementScores(ins, nil, 1)
	assert.Zero(t, got.QualityScore)
}
