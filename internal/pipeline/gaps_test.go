package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegrowth/profiler-cli/internal/vocab"
)

func newTestGapFiller() *GapFiller {
	return NewGapFiller(vocab.New())
}

func TestFillNeverOverwrites(t *testing.T) {
	profile := map[string]any{
		"business_identity": map[string]any{"business_stage": "Startup"},
	}
	out := newTestGapFiller().Fill(profile)

	identity := out["business_identity"].(map[string]any)
	assert.Equal(t, "Startup", identity["business_stage"])

	assumptions := out["missing_data_assumptions"].(map[string]any)
	assert.NotContains(t, assumptions, "business_identity.business_stage")
}

func TestFillBusinessStageDefault(t *testing.T) {
	out := newTestGapFiller().Fill(map[string]any{})

	identity := out["business_identity"].(map[string]any)
	assert.Equal(t, "Established", identity["business_stage"])

	assumptions := out["missing_data_assumptions"].(map[string]any)
	assert.Contains(t, assumptions, "business_identity.business_stage")
}

func TestFillResourcesDefaults(t *testing.T) {
	out := newTestGapFiller().Fill(map[string]any{})

	resources := out["resources"].(map[string]any)
	assert.Equal(t, "Owner-managed", resources["team_structure"])
	assert.Equal(t, "Basic phone photos and short videos", resources["content_capacity"])
}

func TestFillCategoryStrengths(t *testing.T) {
	profile := map[string]any{
		"business_identity": map[string]any{"business_type": "Food & Beverage"},
	}
	out := newTestGapFiller().Fill(profile)

	require.Contains(t, out, "strengths")
	assert.Equal(t, []any{"Fresh products", "Authentic local taste", "Personal customer relationships"}, out["strengths"])
}

func TestFillSkipsStrengthsWithoutCategoryDefaults(t *testing.T) {
	profile := map[string]any{
		"business_identity": map[string]any{"business_type": "Technology"},
	}
	out := newTestGapFiller().Fill(profile)

	_, present := out["strengths"]
	assert.False(t, present)

	assumptions := out["missing_data_assumptions"].(map[string]any)
	assert.NotContains(t, assumptions, "strengths")
}

func TestFillKeepsExistingStrengths(t *testing.T) {
	profile := map[string]any{
		"business_identity": map[string]any{"business_type": "Food & Beverage"},
		"strengths":         []any{"Family recipe"},
	}
	out := newTestGapFiller().Fill(profile)
	assert.Equal(t, []any{"Family recipe"}, out["strengths"])
}

func TestFillRecordsEveryAssumption(t *testing.T) {
	out := newTestGapFiller().Fill(map[string]any{})
	assumptions := out["missing_data_assumptions"].(map[string]any)

	for _, key := range []string{
		"business_identity.business_stage",
		"business_identity.business_size",
		"resources.team_structure",
		"resources.content_capacity",
	} {
		assert.Contains(t, assumptions, key)
	}
}

func TestFillLeavesPrimaryGoalEmpty(t *testing.T) {
	out := newTestGapFiller().Fill(map[string]any{})

	goals, present := out["goals"].(map[string]any)
	if present {
		assert.Empty(t, goals["primary_goal"])
	}

	assumptions := out["missing_data_assumptions"].(map[string]any)
	assert.NotContains(t, assumptions, "goals.primary_goal")
}
