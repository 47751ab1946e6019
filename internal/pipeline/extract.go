package pipeline

import (
	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/vocab"
)

// Extractor is the deterministic rule pass. It never fails: fields it cannot
// determine are left empty and the language-model pass fills them later.
type Extractor struct {
	vocab    *vocab.Vocabulary
	currency string
}

// NewExtractor creates an extractor over the given vocabulary. currency is
// the assumed budget currency for amounts carrying no marker.
func NewExtractor(v *vocab.Vocabulary, currency string) *Extractor {
	if currency == "" {
		currency = vocab.DefaultCurrency
	}
	return &Extractor{vocab: v, currency: currency}
}

// Extract runs every rule extractor against normalized text and returns the
// combined analysis.
func (e *Extractor) Extract(normalized string) model.Analysis {
	a := model.Analysis{
		NormalizedText: normalized,
		Platforms:      []string{},
		Challenges:     []string{},
		Strengths:      []string{},
	}

	if c, ok := e.vocab.MatchCategory(normalized); ok {
		a.BusinessType = c.Name
	}
	if loc, ok := e.vocab.MatchLocation(normalized); ok {
		a.Location = loc
	}
	if budget, ok := vocab.ExtractBudget(normalized, e.currency); ok {
		a.Budget = budget
	}
	if platforms := e.vocab.MatchPlatforms(normalized); len(platforms) > 0 {
		a.Platforms = platforms
	}
	if challenges := e.vocab.MatchChallenges(normalized); len(challenges) > 0 {
		a.Challenges = challenges
	}
	if strengths := e.vocab.MatchStrengths(normalized); len(strengths) > 0 {
		a.Strengths = strengths
	}

	return a
}
