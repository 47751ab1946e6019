package pipeline

import (
	"fmt"
	"strings"

	"github.com/smegrowth/profiler-cli/internal/model"
)

// systemPrompt frames the model as a Sri Lankan SME marketing analyst and
// pins the output contract to JSON only.
const systemPrompt = `You are a marketing analyst specializing in Sri Lankan small and medium businesses. You read a business owner's intake form and produce a structured business profile.

Rules:
- Respond with a single JSON object and nothing else. No prose, no markdown fences.
- Use the exact JSON structure given in the user message.
- Use "" for unknown text fields and [] for unknown lists. Never invent facts.
- Budgets are in LKR unless the owner states another currency.
- Keep all values in English.`

// profileSkeleton is the JSON shape the model must fill. The keys mirror the
// serialized business profile so the parsed response maps onto it directly.
const profileSkeleton = `{
  "business_identity": {
    "business_type": "",
    "industry": "",
    "business_size": "",
    "location": "",
    "business_stage": "",
    "products_services": "",
    "unique_value_proposition": "",
    "years_in_business": ""
  },
  "resources": {
    "monthly_budget": "",
    "team_structure": "",
    "content_capacity": "",
    "technical_skill_level": "",
    "hours_per_week": ""
  },
  "goals": {
    "primary_goal": "",
    "secondary_goals": [],
    "success_metrics": "",
    "timeline_expectations": ""
  },
  "target_audience": {
    "demographics": "",
    "locations": "",
    "interests_behavior": "",
    "buying_frequency": "",
    "price_sensitivity": "",
    "communication_preferences": ""
  },
  "platform_preferences": {
    "preferred_platforms": [],
    "platform_experience": "",
    "brand_assets": "",
    "follower_counts": "",
    "posting_frequency": ""
  },
  "strengths": [],
  "challenges": [],
  "opportunities": [],
  "market_context": "",
  "brand_personality": ""
}`

// BuildPrompt renders the user prompt from the form payload, the normalized
// description and the rule analysis. Rule findings are included as hints the
// model should keep unless the text contradicts them.
func BuildPrompt(form model.FormData, analysis model.Analysis) (system, user string) {
	var b strings.Builder

	b.WriteString("Build a business profile from this intake form.\n\n")
	fmt.Fprintf(&b, "Business name: %s\n", form.BusinessName)
	if form.BusinessType != "" {
		fmt.Fprintf(&b, "Stated business type: %s\n", form.BusinessType)
	}
	if form.Location != "" {
		fmt.Fprintf(&b, "Stated location: %s\n", form.Location)
	}
	if form.MonthlyBudget != "" {
		fmt.Fprintf(&b, "Stated monthly budget: %s\n", form.MonthlyBudget)
	}
	if form.PrimaryGoal != "" {
		fmt.Fprintf(&b, "Stated primary goal: %s\n", form.PrimaryGoal)
	}
	if len(form.Platforms) > 0 {
		fmt.Fprintf(&b, "Stated platforms: %s\n", strings.Join(form.Platforms, ", "))
	}
	if len(form.Challenges) > 0 {
		fmt.Fprintf(&b, "Stated challenges: %s\n", strings.Join(form.Challenges, ", "))
	}

	b.WriteString("\nOwner's description (normalized):\n")
	b.WriteString(analysis.NormalizedText)
	b.WriteString("\n")

	if hints := formatHints(analysis); hints != "" {
		b.WriteString("\nRule-based findings (keep unless the description contradicts them):\n")
		b.WriteString(hints)
	}

	b.WriteString("\nReturn JSON with exactly this structure:\n")
	b.WriteString(profileSkeleton)

	return systemPrompt, b.String()
}

func formatHints(a model.Analysis) string {
	var parts []string
	if a.BusinessType != "" {
		parts = append(parts, "- business type: "+a.BusinessType)
	}
	if a.Location != "" {
		parts = append(parts, "- location: "+a.Location)
	}
	if a.Budget != "" {
		parts = append(parts, "- monthly budget: "+a.Budget)
	}
	if len(a.Platforms) > 0 {
		parts = append(parts, "- platforms: "+strings.Join(a.Platforms, ", "))
	}
	if len(a.Challenges) > 0 {
		parts = append(parts, "- challenges: "+strings.Join(a.Challenges, ", "))
	}
	if len(a.Strengths) > 0 {
		parts = append(parts, "- strengths: "+strings.Join(a.Strengths, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n"
}
