package pipeline

import (
	"github.com/smegrowth/profiler-cli/internal/vocab"
)

// GapFiller plugs empty profile fields with conservative SME defaults so a
// downstream strategy generator always has something to work from. Fills
// never overwrite a populated field, and every fill is recorded under
// missing_data_assumptions so consumers can tell data from assumption.
// The primary goal is never invented: when neither the form nor the model
// names one it stays empty and the completeness score reflects that.
type GapFiller struct {
	vocab *vocab.Vocabulary
}

// NewGapFiller creates a gap filler over the given vocabulary.
func NewGapFiller(v *vocab.Vocabulary) *GapFiller {
	return &GapFiller{vocab: v}
}

// gapRule fills one field when its current value is empty. path is the
// assumption key recorded for the fill.
type gapRule struct {
	path  string
	apply func(f *GapFiller, profile map[string]any) (filled bool, note string)
}

// gapRules run in order. Order matters only for readability of the
// assumptions map; rules are independent of each other except for the
// strengths rule, which reads the business type a prior stage may have set.
var gapRules = []gapRule{
	{
		path: "business_identity.business_stage",
		apply: func(f *GapFiller, profile map[string]any) (bool, string) {
			identity := ensureMap(profile, "business_identity")
			if getString(identity, "business_stage") != "" {
				return false, ""
			}
			identity["business_stage"] = "Established"
			return true, "Assumed an established business; most intake submissions come from operating businesses"
		},
	},
	{
		path: "business_identity.business_size",
		apply: func(f *GapFiller, profile map[string]any) (bool, string) {
			identity := ensureMap(profile, "business_identity")
			if getString(identity, "business_size") != "" {
				return false, ""
			}
			identity["business_size"] = "Small (1-10 employees)"
			return true, "Assumed a small team, typical for Sri Lankan SMEs"
		},
	},
	{
		path: "resources.team_structure",
		apply: func(f *GapFiller, profile map[string]any) (bool, string) {
			resources := ensureMap(profile, "resources")
			if getString(resources, "team_structure") != "" {
				return false, ""
			}
			resources["team_structure"] = "Owner-managed"
			return true, "Assumed the owner handles marketing personally"
		},
	},
	{
		path: "resources.content_capacity",
		apply: func(f *GapFiller, profile map[string]any) (bool, string) {
			resources := ensureMap(profile, "resources")
			if getString(resources, "content_capacity") != "" {
				return false, ""
			}
			resources["content_capacity"] = "Basic phone photos and short videos"
			return true, "Assumed phone-camera content capacity"
		},
	},
	{
		path: "strengths",
		apply: func(f *GapFiller, profile map[string]any) (bool, string) {
			if len(getStringList(profile, "strengths")) > 0 {
				return false, ""
			}
			businessType := getString(ensureMap(profile, "business_identity"), "business_type")
			defaults := f.vocab.DefaultStrengthsFor(businessType)
			if len(defaults) == 0 {
				return false, ""
			}
			profile["strengths"] = toAnyList(defaults)
			return true, "Assumed typical strengths for the business category"
		},
	},
}

// Fill applies every gap rule to the profile map in place and returns it.
func (f *GapFiller) Fill(profile map[string]any) map[string]any {
	if profile == nil {
		profile = map[string]any{}
	}

	assumptions, ok := profile["missing_data_assumptions"].(map[string]any)
	if !ok {
		assumptions = map[string]any{}
		profile["missing_data_assumptions"] = assumptions
	}

	for _, rule := range gapRules {
		if filled, note := rule.apply(f, profile); filled {
			assumptions[rule.path] = note
		}
	}
	return profile
}
