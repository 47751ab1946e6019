package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/vocab"
)

func newTestEnhancer() *Enhancer {
	return NewEnhancer(vocab.New(), "LKR")
}

func TestEnhanceRuleTypeOverridesModel(t *testing.T) {
	profile := map[string]any{
		"business_identity": map[string]any{"business_type": "General Store"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{BusinessType: "Food & Beverage"})

	identity := out["business_identity"].(map[string]any)
	assert.Equal(t, "Food & Beverage", identity["business_type"])
}

func TestEnhanceKeepsModelLocationWhenPresent(t *testing.T) {
	profile := map[string]any{
		"business_identity": map[string]any{"location": "Kandy"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{Location: "Colombo"})

	identity := out["business_identity"].(map[string]any)
	assert.Equal(t, "Kandy", identity["location"])
}

func TestEnhanceBudgetRuleWins(t *testing.T) {
	profile := map[string]any{
		"resources": map[string]any{"monthly_budget": "about 20000"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{Budget: "LKR 30,000"})

	resources := out["resources"].(map[string]any)
	assert.Equal(t, "LKR 30,000", resources["monthly_budget"])
}

func TestEnhanceBudgetCanonicalizesModelOutput(t *testing.T) {
	profile := map[string]any{
		"resources": map[string]any{"monthly_budget": "30000"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{})

	resources := out["resources"].(map[string]any)
	assert.Equal(t, "LKR 30,000", resources["monthly_budget"])
}

func TestEnhancePlatformMerge(t *testing.T) {
	profile := map[string]any{
		"platform_preferences": map[string]any{
			"preferred_platforms": []any{"TikTok", "Facebook"},
		},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{Platforms: []string{"Facebook", "Instagram"}})

	prefs := out["platform_preferences"].(map[string]any)
	assert.Equal(t, []any{"Facebook", "Instagram", "TikTok"}, prefs["preferred_platforms"])
}

func TestEnhanceDefaultPlatformsForCategory(t *testing.T) {
	profile := map[string]any{
		"business_identity": map[string]any{"business_type": "Beauty & Personal Care"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{})

	prefs := out["platform_preferences"].(map[string]any)
	assert.Equal(t, []any{"Instagram", "Facebook", "TikTok"}, prefs["preferred_platforms"])
}

func TestEnhanceAudienceQualifier(t *testing.T) {
	e := newTestEnhancer()

	// Empty demographics get the category qualifier outright.
	out := e.Enhance(map[string]any{}, model.Analysis{BusinessType: "Beauty & Personal Care"})
	audience := out["target_audience"].(map[string]any)
	assert.Equal(t, "predominantly women aged 20-45", audience["demographics"])

	// A demographic with an age range is left alone.
	out = e.Enhance(map[string]any{
		"target_audience": map[string]any{"demographics": "women aged 25-45 in Galle"},
	}, model.Analysis{BusinessType: "Beauty & Personal Care"})
	audience = out["target_audience"].(map[string]any)
	assert.Equal(t, "women aged 25-45 in Galle", audience["demographics"])

	// A vague demographic gets the qualifier appended.
	out = e.Enhance(map[string]any{
		"target_audience": map[string]any{"demographics": "local residents"},
	}, model.Analysis{BusinessType: "Beauty & Personal Care"})
	audience = out["target_audience"].(map[string]any)
	assert.Equal(t, "local residents, predominantly women aged 20-45", audience["demographics"])

	// A demographic that already names a gender is left alone even without an
	// age range, so "mostly women" never becomes "mostly women, predominantly
	// women aged 20-45".
	out = e.Enhance(map[string]any{
		"target_audience": map[string]any{"demographics": "mostly women"},
	}, model.Analysis{BusinessType: "Beauty & Personal Care"})
	audience = out["target_audience"].(map[string]any)
	assert.Equal(t, "mostly women", audience["demographics"])
}

func TestEnhanceGoalRuleWinsOverModel(t *testing.T) {
	profile := map[string]any{
		"goals": map[string]any{"primary_goal": "we want more sales"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{
		NormalizedText: "family bakery in galle, we want more sales this year",
	})

	goals := out["goals"].(map[string]any)
	assert.Equal(t, "Increase Sales", goals["primary_goal"])
}

func TestEnhanceGoalNormalizesModelPhrasing(t *testing.T) {
	// No keyword in the form text, but the model's own phrasing carries one.
	profile := map[string]any{
		"goals": map[string]any{"primary_goal": "Attract new customers to the shop"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{
		NormalizedText: "family bakery in galle",
	})

	goals := out["goals"].(map[string]any)
	assert.Equal(t, "Acquire New Customers", goals["primary_goal"])
}

func TestEnhanceGoalKeepsUnmatchedFreeText(t *testing.T) {
	profile := map[string]any{
		"goals": map[string]any{"primary_goal": "Win the national bakery award"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{
		NormalizedText: "family bakery in galle",
	})

	goals := out["goals"].(map[string]any)
	assert.Equal(t, "Win the national bakery award", goals["primary_goal"])
}

func TestEnhanceChallengesMerge(t *testing.T) {
	profile := map[string]any{
		"challenges": []any{"Seasonal demand", "High competition"},
	}
	out := newTestEnhancer().Enhance(profile, model.Analysis{Challenges: []string{"High competition", "Limited budget"}})

	assert.Equal(t, []any{"High competition", "Limited budget", "Seasonal demand"}, out["challenges"])
}

func TestEnhanceNilProfile(t *testing.T) {
	out := newTestEnhancer().Enhance(nil, model.Analysis{BusinessType: "Technology"})
	identity := out["business_identity"].(map[string]any)
	assert.Equal(t, "Technology", identity["business_type"])
}
