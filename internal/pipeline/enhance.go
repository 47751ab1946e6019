package pipeline

import (
	"strings"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/vocab"
)

// Enhancer reconciles the parsed model output with the deterministic rule
// analysis. Rule findings win over model output for the fields the rules
// cover: the rules are grounded in the literal form text while the model may
// paraphrase or hallucinate.
type Enhancer struct {
	vocab    *vocab.Vocabulary
	currency string
}

// NewEnhancer creates an enhancer over the given vocabulary.
func NewEnhancer(v *vocab.Vocabulary, currency string) *Enhancer {
	if currency == "" {
		currency = vocab.DefaultCurrency
	}
	return &Enhancer{vocab: v, currency: currency}
}

// Enhance applies rule reconciliation to the parsed profile map in place and
// also returns it. The map is the parser's output; missing intermediate maps
// are created as needed.
func (e *Enhancer) Enhance(profile map[string]any, analysis model.Analysis) map[string]any {
	if profile == nil {
		profile = map[string]any{}
	}

	identity := ensureMap(profile, "business_identity")
	resources := ensureMap(profile, "resources")
	goals := ensureMap(profile, "goals")
	audience := ensureMap(profile, "target_audience")
	platforms := ensureMap(profile, "platform_preferences")

	// Rule-derived business type and location override model output.
	if analysis.BusinessType != "" {
		identity["business_type"] = analysis.BusinessType
	}
	if analysis.Location != "" && getString(identity, "location") == "" {
		identity["location"] = analysis.Location
	}

	// Budget: rule extraction wins; otherwise canonicalize whatever the
	// model produced so "30000" and "LKR 30,000" render identically.
	if analysis.Budget != "" {
		resources["monthly_budget"] = analysis.Budget
	} else if raw := getString(resources, "monthly_budget"); raw != "" {
		if canon, ok := vocab.NormalizeBudget(raw, e.currency); ok {
			resources["monthly_budget"] = canon
		}
	}

	// Primary goal follows the same precedence as business type: a keyword
	// hit in the form text wins over the model's phrasing, and a model goal
	// with its own keyword hit is mapped onto the controlled vocabulary.
	// Free text with no keyword match is kept verbatim.
	if goal, ok := e.vocab.MatchGoal(analysis.NormalizedText); ok {
		goals["primary_goal"] = goal
	} else if stated := getString(goals, "primary_goal"); stated != "" {
		if goal, ok := e.vocab.MatchGoal(strings.ToLower(stated)); ok {
			goals["primary_goal"] = goal
		}
	}

	// Platforms stated by the owner are merged ahead of model suggestions,
	// preserving vocabulary priority order.
	if len(analysis.Platforms) > 0 {
		existing := getStringList(platforms, "preferred_platforms")
		platforms["preferred_platforms"] = toAnyList(mergeUnique(analysis.Platforms, existing))
	} else if existing := getStringList(platforms, "preferred_platforms"); len(existing) == 0 {
		businessType := getString(identity, "business_type")
		platforms["preferred_platforms"] = toAnyList(e.vocab.DefaultPlatformsFor(businessType))
	}

	// Category audience qualifier is appended when demographics carry no age
	// or gender signal of their own.
	if businessType := getString(identity, "business_type"); businessType != "" {
		if qualifier, ok := e.vocab.AudienceQualifierFor(businessType); ok {
			demo := getString(audience, "demographics")
			if demo == "" {
				audience["demographics"] = qualifier
			} else if !hasAudienceSignal(demo) {
				audience["demographics"] = demo + ", " + qualifier
			}
		}
	}

	// Rule-detected challenges and strengths merge ahead of model output.
	if len(analysis.Challenges) > 0 {
		profile["challenges"] = toAnyList(mergeUnique(analysis.Challenges, getStringList(profile, "challenges")))
	}
	if len(analysis.Strengths) > 0 {
		profile["strengths"] = toAnyList(mergeUnique(analysis.Strengths, getStringList(profile, "strengths")))
	}

	return profile
}

// ensureMap returns the nested map at key, creating it when absent or of the
// wrong type.
func ensureMap(m map[string]any, key string) map[string]any {
	if sub, ok := m[key].(map[string]any); ok {
		return sub
	}
	sub := map[string]any{}
	m[key] = sub
	return sub
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// getStringList reads a []any of strings tolerantly, skipping non-strings.
func getStringList(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func toAnyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// mergeUnique concatenates primary then secondary, dropping duplicates
// case-insensitively and keeping first occurrence order.
func mergeUnique(primary, secondary []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range append(append([]string{}, primary...), secondary...) {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// hasAudienceSignal reports whether a demographics string already names an
// age range or a gender, in which case the category qualifier would be
// redundant or contradictory.
func hasAudienceSignal(demo string) bool {
	if containsDigit(demo) {
		return true
	}
	lower := strings.ToLower(demo)
	for _, word := range []string{"aged", "women", "men", "female", "male", "ladies", "gents"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
