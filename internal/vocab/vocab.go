// Package vocab is the single source of truth for the lookup tables shared by
// the rule-based extractors, the profile enhancer and the schema validator.
// All tables are ordered slices: iteration order is part of the contract
// (first-match tie-breaks, substitution precedence) and must not be changed
// casually.
package vocab

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TermMapping is a single mixed-language phrase substitution. Entries are
// applied in table order; later entries may contain text matching an earlier
// key, and that is accepted behavior rather than a conflict to resolve.
type TermMapping struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Category is one business-type taxonomy entry. Keywords are matched
// case-insensitively as substrings; the first category with a hit wins.
type Category struct {
	Name              string   `yaml:"name"`
	Keywords          []string `yaml:"keywords"`
	DefaultPlatforms  []string `yaml:"default_platforms"`
	AudienceQualifier string   `yaml:"audience_qualifier"`
	DefaultStrengths  []string `yaml:"default_strengths"`
}

// Platform maps a canonical platform name to its alias keywords.
type Platform struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// KeywordEntry maps a trigger keyword to a short canonical label, used for
// challenge and strength detection.
type KeywordEntry struct {
	Keyword string `yaml:"keyword"`
	Label   string `yaml:"label"`
}

// GoalEntry maps a keyword to a controlled-vocabulary marketing goal.
type GoalEntry struct {
	Keyword string `yaml:"keyword"`
	Goal    string `yaml:"goal"`
}

// Vocabulary bundles every lookup table. It is read-only after construction
// and safe to share between concurrent pipeline runs.
type Vocabulary struct {
	Terms           []TermMapping
	Categories      []Category
	Locations       []string
	LocationAliases map[string]string
	Platforms       []Platform
	Goals           []GoalEntry
	ChallengeTable  []KeywordEntry
	StrengthTable   []KeywordEntry

	// GenericPlatforms is the fallback when no category default applies.
	GenericPlatforms []string

	titler cases.Caser
}

// New returns the built-in default vocabulary for the Sri Lankan SME market.
func New() *Vocabulary {
	return &Vocabulary{
		Terms:            defaultTerms,
		Categories:       defaultCategories,
		Locations:        defaultLocations,
		LocationAliases:  defaultLocationAliases,
		Platforms:        defaultPlatforms,
		Goals:            defaultGoals,
		ChallengeTable:   defaultChallenges,
		StrengthTable:    defaultStrengths,
		GenericPlatforms: []string{"Facebook", "Instagram"},
		titler:           cases.Title(language.English),
	}
}

// defaultTerms is the mixed-language phrase table. Sinhala and Tamil script
// entries come first, then common romanized Singlish terms. Order matters.
var defaultTerms = []TermMapping{
	{From: "කඩේ", To: "shop"},
	{From: "කඩය", To: "shop"},
	{From: "ව්‍යාපාරය", To: "business"},
	{From: "අවන්හල", To: "restaurant"},
	{From: "ආපනශාලාව", To: "restaurant"},
	{From: "බේකරිය", To: "bakery"},
	{From: "ගනුදෙනුකරුවන්", To: "customers"},
	{From: "පාරිභෝගිකයන්", To: "customers"},
	{From: "රුපියල්", To: "rupees"},
	{From: "මුදල්", To: "money"},
	{From: "கடை", To: "shop"},
	{From: "வணிகம்", To: "business"},
	{From: "உணவகம்", To: "restaurant"},
	{From: "kade", To: "shop"},
	{From: "badu", To: "goods"},
	{From: "salli", To: "money"},
	{From: "wyaparaya", To: "business"},
}

// defaultCategories is the business-type taxonomy. First match wins, so the
// order below is a designed tie-break (food service before retail, so a
// "bakery shop" classifies as Food & Beverage).
var defaultCategories = []Category{
	{
		Name:              "Food & Beverage",
		Keywords:          []string{"restaurant", "bakery", "cafe", "coffee shop", "catering", "food truck", "sweets", "juice bar", "food"},
		DefaultPlatforms:  []string{"Facebook", "Instagram", "WhatsApp"},
		AudienceQualifier: "mainly working adults and families aged 25-45",
		DefaultStrengths:  []string{"Fresh products", "Authentic local taste", "Personal customer relationships"},
	},
	{
		Name:              "Beauty & Personal Care",
		Keywords:          []string{"salon", "spa", "barber", "beauty", "hairdress", "nails", "cosmetics", "skincare"},
		DefaultPlatforms:  []string{"Instagram", "Facebook", "TikTok"},
		AudienceQualifier: "predominantly women aged 20-45",
	},
	{
		Name:             "Hospitality & Tourism",
		Keywords:         []string{"hotel", "guesthouse", "guest house", "villa", "homestay", "travel", "tour", "safari"},
		DefaultPlatforms: []string{"Instagram", "Facebook", "YouTube"},
	},
	{
		Name:             "Retail & E-commerce",
		Keywords:         []string{"boutique", "clothing", "fashion", "online store", "shop", "store", "retail", "handicraft", "grocery"},
		DefaultPlatforms: []string{"Instagram", "Facebook", "WhatsApp"},
	},
	{
		Name:             "Health & Fitness",
		Keywords:         []string{"gym", "fitness", "yoga", "wellness", "ayurveda", "physiotherapy", "clinic"},
		DefaultPlatforms: []string{"Instagram", "Facebook"},
	},
	{
		Name:             "Education & Training",
		Keywords:         []string{"tuition", "classes", "course", "training", "institute", "academy", "school"},
		DefaultPlatforms: []string{"Facebook", "YouTube", "LinkedIn"},
	},
	{
		Name:             "Professional Services",
		Keywords:         []string{"consulting", "accounting", "legal", "agency", "design", "photography", "architecture"},
		DefaultPlatforms: []string{"LinkedIn", "Facebook"},
	},
	{
		Name:             "Agriculture & Produce",
		Keywords:         []string{"farm", "tea estate", "coconut", "paddy", "plantation", "spice", "organic produce"},
		DefaultPlatforms: []string{"Facebook", "WhatsApp"},
	},
	{
		Name:             "Technology",
		Keywords:         []string{"software", "it services", "app development", "web development", "startup"},
		DefaultPlatforms: []string{"LinkedIn", "Facebook", "YouTube"},
	},
}

// defaultLocations is the place-name gazetteer, scanned in order.
var defaultLocations = []string{
	"Colombo", "Galle", "Kandy", "Negombo", "Jaffna", "Matara", "Kurunegala",
	"Anuradhapura", "Batticaloa", "Trincomalee", "Nuwara Eliya", "Ella",
	"Gampaha", "Ratnapura", "Badulla", "Hikkaduwa", "Mirissa", "Unawatuna",
	"Dehiwala", "Moratuwa", "Kalutara", "Panadura", "Sri Lanka",
}

// defaultLocationAliases canonicalizes shorthand and local spellings.
var defaultLocationAliases = map[string]string{
	"cmb":          "Colombo",
	"colombo city": "Colombo",
	"nuwaraeliya":  "Nuwara Eliya",
	"sl":           "Sri Lanka",
	"srilanka":     "Sri Lanka",
}

// defaultPlatforms lists canonical platform names with their aliases. Table
// order is the priority order for multi-match extraction. Short aliases (fb,
// ig) are matched on word boundaries to avoid hits inside unrelated words.
var defaultPlatforms = []Platform{
	{Name: "Facebook", Aliases: []string{"facebook", "fb"}},
	{Name: "Instagram", Aliases: []string{"instagram", "insta", "ig"}},
	{Name: "TikTok", Aliases: []string{"tiktok", "tik tok"}},
	{Name: "YouTube", Aliases: []string{"youtube", "you tube"}},
	{Name: "WhatsApp", Aliases: []string{"whatsapp", "whats app"}},
	{Name: "LinkedIn", Aliases: []string{"linkedin"}},
	{Name: "X", Aliases: []string{"twitter", "x.com"}},
}

// defaultGoals maps keywords to the controlled marketing-goal vocabulary.
var defaultGoals = []GoalEntry{
	{Keyword: "brand awareness", Goal: "Increase Brand Awareness"},
	{Keyword: "awareness", Goal: "Increase Brand Awareness"},
	{Keyword: "more sales", Goal: "Increase Sales"},
	{Keyword: "increase sales", Goal: "Increase Sales"},
	{Keyword: "sell more", Goal: "Increase Sales"},
	{Keyword: "new customers", Goal: "Acquire New Customers"},
	{Keyword: "more customers", Goal: "Acquire New Customers"},
	{Keyword: "retention", Goal: "Improve Customer Retention"},
	{Keyword: "repeat customers", Goal: "Improve Customer Retention"},
	{Keyword: "followers", Goal: "Grow Online Engagement"},
	{Keyword: "engagement", Goal: "Grow Online Engagement"},
	{Keyword: "leads", Goal: "Generate Leads"},
}

var defaultChallenges = []KeywordEntry{
	{Keyword: "competition", Label: "High competition"},
	{Keyword: "competitors", Label: "High competition"},
	{Keyword: "low budget", Label: "Limited budget"},
	{Keyword: "limited budget", Label: "Limited budget"},
	{Keyword: "no time", Label: "Time constraints"},
	{Keyword: "busy", Label: "Time constraints"},
	{Keyword: "sales drop", Label: "Declining sales"},
	{Keyword: "fewer customers", Label: "Declining sales"},
	{Keyword: "not enough customers", Label: "Customer acquisition"},
	{Keyword: "hard to find customers", Label: "Customer acquisition"},
	{Keyword: "no online presence", Label: "Weak online visibility"},
	{Keyword: "nobody knows", Label: "Weak online visibility"},
	{Keyword: "staff", Label: "Staffing constraints"},
	{Keyword: "don't know marketing", Label: "Limited marketing expertise"},
	{Keyword: "no experience", Label: "Limited marketing expertise"},
}

var defaultStrengths = []KeywordEntry{
	{Keyword: "quality", Label: "Product quality"},
	{Keyword: "fresh", Label: "Fresh products"},
	{Keyword: "service", Label: "Customer service"},
	{Keyword: "good location", Label: "Good location"},
	{Keyword: "affordable", Label: "Competitive pricing"},
	{Keyword: "cheap", Label: "Competitive pricing"},
	{Keyword: "experience", Label: "Experienced team"},
	{Keyword: "unique", Label: "Unique offerings"},
	{Keyword: "loyal", Label: "Loyal customer base"},
	{Keyword: "regulars", Label: "Loyal customer base"},
	{Keyword: "family recipe", Label: "Traditional recipes"},
}

// TitleCase renders s in English title case.
func (v *Vocabulary) TitleCase(s string) string {
	return v.titler.String(s)
}

// MatchCategory scans the taxonomy in order and returns the first category
// with a keyword hit. text must already be lowercased.
func (v *Vocabulary) MatchCategory(text string) (Category, bool) {
	for _, c := range v.Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				return c, true
			}
		}
	}
	return Category{}, false
}

// CategoryByName returns the taxonomy entry whose name matches, or a keyword
// match against the given type string when no exact name matches. This lets
// enhancer lookups work from either a taxonomy name or an LLM-provided type.
func (v *Vocabulary) CategoryByName(businessType string) (Category, bool) {
	lower := strings.ToLower(businessType)
	for _, c := range v.Categories {
		if strings.ToLower(c.Name) == lower {
			return c, true
		}
	}
	return v.MatchCategory(lower)
}

// MatchLocation returns the first gazetteer entry found in text (table order),
// already canonical. text must be lowercased.
func (v *Vocabulary) MatchLocation(text string) (string, bool) {
	for _, loc := range v.Locations {
		if strings.Contains(text, strings.ToLower(loc)) {
			return loc, true
		}
	}
	return "", false
}

// CanonicalLocation normalizes a free-text location against the alias table
// and the gazetteer. Unrecognized input is returned unchanged.
func (v *Vocabulary) CanonicalLocation(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if canon, ok := v.LocationAliases[lower]; ok {
		return canon
	}
	for _, loc := range v.Locations {
		if strings.ToLower(loc) == lower {
			return loc
		}
	}
	return trimmed
}

// MatchPlatforms returns every platform with an alias hit, in table order,
// deduplicated. Unlike category and location matching this is deliberately
// all-match: an SME naming three platforms wants all three back.
func (v *Vocabulary) MatchPlatforms(text string) []string {
	var out []string
	for _, p := range v.Platforms {
		for _, alias := range p.Aliases {
			if containsAlias(text, alias) {
				out = append(out, p.Name)
				break
			}
		}
	}
	return out
}

// containsAlias matches long aliases as substrings and short ones (<= 3
// runes) only on word boundaries, so "fb" does not fire inside "rufbar".
func containsAlias(text, alias string) bool {
	if len(alias) > 3 {
		return strings.Contains(text, alias)
	}
	for i := 0; ; {
		j := strings.Index(text[i:], alias)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(alias)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// CanonicalPlatform maps a platform alias or loose spelling to its canonical
// name. Unrecognized input is title-cased as-is.
func (v *Vocabulary) CanonicalPlatform(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, p := range v.Platforms {
		if strings.ToLower(p.Name) == lower {
			return p.Name
		}
		for _, alias := range p.Aliases {
			if strings.TrimSpace(alias) == lower {
				return p.Name
			}
		}
	}
	return v.TitleCase(trimmed)
}

// MatchGoal returns the controlled-vocabulary goal for the first keyword hit.
func (v *Vocabulary) MatchGoal(text string) (string, bool) {
	for _, g := range v.Goals {
		if strings.Contains(text, g.Keyword) {
			return g.Goal, true
		}
	}
	return "", false
}

// MatchChallenges returns the labels of all challenge keywords present, in
// table order, without duplicates.
func (v *Vocabulary) MatchChallenges(text string) []string {
	return matchKeywords(v.ChallengeTable, text)
}

// MatchStrengths returns the labels of all strength keywords present, in
// table order, without duplicates.
func (v *Vocabulary) MatchStrengths(text string) []string {
	return matchKeywords(v.StrengthTable, text)
}

func matchKeywords(table []KeywordEntry, text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range table {
		if seen[e.Label] {
			continue
		}
		if strings.Contains(text, e.Keyword) {
			out = append(out, e.Label)
			seen[e.Label] = true
		}
	}
	return out
}

// DefaultPlatformsFor returns the default platform list for a business type,
// falling back to the generic pair when no category matches.
func (v *Vocabulary) DefaultPlatformsFor(businessType string) []string {
	if c, ok := v.CategoryByName(businessType); ok && len(c.DefaultPlatforms) > 0 {
		return append([]string(nil), c.DefaultPlatforms...)
	}
	return append([]string(nil), v.GenericPlatforms...)
}

// AudienceQualifierFor returns the audience qualifier for a business type,
// if its category defines one.
func (v *Vocabulary) AudienceQualifierFor(businessType string) (string, bool) {
	c, ok := v.CategoryByName(businessType)
	if !ok || c.AudienceQualifier == "" {
		return "", false
	}
	return c.AudienceQualifier, true
}

// DefaultStrengthsFor returns the category's default strengths list, if any.
func (v *Vocabulary) DefaultStrengthsFor(businessType string) []string {
	if c, ok := v.CategoryByName(businessType); ok && len(c.DefaultStrengths) > 0 {
		return append([]string(nil), c.DefaultStrengths...)
	}
	return nil
}
