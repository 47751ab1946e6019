package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/vocab"
)

// SchemaError reports a profile map that cannot be coerced into the canonical
// schema. Field names the offending path.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("validate: field %s: %s", e.Field, e.Reason)
}

// Validator coerces the enhanced profile map into the typed canonical profile
// and scores its completeness.
type Validator struct {
	vocab *vocab.Vocabulary
}

// NewValidator creates a validator over the given vocabulary.
func NewValidator(v *vocab.Vocabulary) *Validator {
	return &Validator{vocab: v}
}

// Validate builds the canonical profile from the map produced by the earlier
// stages. String fields tolerate absence (coerced to ""); a present field of
// the wrong structural type is a schema error, because it means the model
// output and the enhancement stages disagree about the shape.
func (v *Validator) Validate(profile map[string]any, detectedLanguage string) (*model.BusinessProfile, error) {
	out := model.NewBusinessProfile()

	identity, err := requireMap(profile, "business_identity")
	if err != nil {
		return nil, err
	}
	resources, err := requireMap(profile, "resources")
	if err != nil {
		return nil, err
	}
	goals, err := requireMap(profile, "goals")
	if err != nil {
		return nil, err
	}
	audience, err := requireMap(profile, "target_audience")
	if err != nil {
		return nil, err
	}
	platforms, err := requireMap(profile, "platform_preferences")
	if err != nil {
		return nil, err
	}

	out.BusinessIdentity = model.BusinessIdentity{
		BusinessType:           getString(identity, "business_type"),
		Industry:               getString(identity, "industry"),
		BusinessSize:           getString(identity, "business_size"),
		Location:               v.vocab.CanonicalLocation(getString(identity, "location")),
		BusinessStage:          getString(identity, "business_stage"),
		ProductsServices:       getString(identity, "products_services"),
		UniqueValueProposition: getString(identity, "unique_value_proposition"),
		YearsInBusiness:        getString(identity, "years_in_business"),
	}
	out.Resources = model.Resources{
		MonthlyBudget:       getString(resources, "monthly_budget"),
		TeamStructure:       getString(resources, "team_structure"),
		ContentCapacity:     getString(resources, "content_capacity"),
		TechnicalSkillLevel: getString(resources, "technical_skill_level"),
		HoursPerWeek:        getString(resources, "hours_per_week"),
	}
	secondaryGoals, err := listField(goals, "secondary_goals", "goals.secondary_goals")
	if err != nil {
		return nil, err
	}
	out.Goals = model.Goals{
		PrimaryGoal:          getString(goals, "primary_goal"),
		SecondaryGoals:       secondaryGoals,
		SuccessMetrics:       getString(goals, "success_metrics"),
		TimelineExpectations: getString(goals, "timeline_expectations"),
	}
	out.TargetAudience = model.TargetAudience{
		Demographics:             getString(audience, "demographics"),
		Locations:                getString(audience, "locations"),
		InterestsBehavior:        getString(audience, "interests_behavior"),
		BuyingFrequency:          getString(audience, "buying_frequency"),
		PriceSensitivity:         getString(audience, "price_sensitivity"),
		CommunicationPreferences: getString(audience, "communication_preferences"),
	}

	preferred, err := listField(platforms, "preferred_platforms", "platform_preferences.preferred_platforms")
	if err != nil {
		return nil, err
	}
	out.PlatformPreferences = model.PlatformPreferences{
		PreferredPlatforms: v.canonicalPlatforms(preferred),
		PlatformExperience: getString(platforms, "platform_experience"),
		BrandAssets:        getString(platforms, "brand_assets"),
		FollowerCounts:     getString(platforms, "follower_counts"),
		PostingFrequency:   getString(platforms, "posting_frequency"),
	}

	if out.Strengths, err = listField(profile, "strengths", "strengths"); err != nil {
		return nil, err
	}
	if out.Challenges, err = listField(profile, "challenges", "challenges"); err != nil {
		return nil, err
	}
	if out.Opportunities, err = listField(profile, "opportunities", "opportunities"); err != nil {
		return nil, err
	}
	out.MarketContext = getString(profile, "market_context")
	out.BrandPersonality = getString(profile, "brand_personality")

	if raw, ok := profile["missing_data_assumptions"].(map[string]any); ok {
		for k, val := range raw {
			if s, ok := val.(string); ok {
				out.MissingDataAssumptions[k] = s
			}
		}
	}

	out.ProfileMetadata = model.ProfileMetadata{
		CreatedAt:         time.Now().UTC(),
		PipelineVersion:   model.PipelineVersion,
		DetectedLanguage:  detectedLanguage,
		ProcessingNotes:   []string{},
		CompletenessScore: completeness(out),
	}

	return out, nil
}

// canonicalPlatforms maps each platform through the vocabulary and drops
// case-insensitive duplicates introduced by canonicalization.
func (v *Validator) canonicalPlatforms(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, p := range in {
		canon := v.vocab.CanonicalPlatform(p)
		if canon == "" {
			continue
		}
		key := strings.ToLower(canon)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, canon)
	}
	return out
}

// completeness scores the profile on its eight core fields: five scalars
// (business type, location, monthly budget, primary goal, demographics) and
// three lists (preferred platforms, strengths, challenges). Each populated
// field contributes 1/8.
func completeness(p *model.BusinessProfile) float64 {
	populated := 0
	for _, s := range []string{
		p.BusinessIdentity.BusinessType,
		p.BusinessIdentity.Location,
		p.Resources.MonthlyBudget,
		p.Goals.PrimaryGoal,
		p.TargetAudience.Demographics,
	} {
		if strings.TrimSpace(s) != "" {
			populated++
		}
	}
	for _, l := range [][]string{
		p.PlatformPreferences.PreferredPlatforms,
		p.Strengths,
		p.Challenges,
	} {
		if len(l) > 0 {
			populated++
		}
	}
	return float64(populated) / 8.0
}

// requireMap fetches a nested object that must exist and be an object by the
// time validation runs; the enhancer creates these groups even when the model
// omits them.
func requireMap(m map[string]any, key string) (map[string]any, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, &SchemaError{Field: key, Reason: "missing required object"}
	}
	sub, ok := raw.(map[string]any)
	if !ok {
		return nil, &SchemaError{Field: key, Reason: fmt.Sprintf("expected object, got %T", raw)}
	}
	return sub, nil
}

// listField reads a list field at key, reporting it under path on failure.
// Absence coerces to an empty list so serialized profiles never carry null
// lists, and a bare string becomes a one-element list. A present value of any
// other shape is a schema error rather than a silent drop.
func listField(m map[string]any, key, path string) ([]string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return []string{}, nil
	}
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}, nil
		}
		return []string{}, nil
	case []any:
		if list := getStringList(m, key); list != nil {
			return list, nil
		}
		return []string{}, nil
	default:
		return nil, &SchemaError{Field: path, Reason: fmt.Sprintf("expected list, got %T", raw)}
	}
}
