package vocab

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the budget currency assumed when input carries none.
const DefaultCurrency = "LKR"

// BudgetPattern pairs a compiled regex with a scale applied to the captured
// number. Patterns are tried in order and the first match wins even when a
// later pattern would match a longer span; that precedence is deliberate.
type BudgetPattern struct {
	Name  string
	Re    *regexp.Regexp
	Scale int64
}

// BudgetPatterns is the ordered budget precedence table: k-shorthand first,
// then explicit LKR, then Rs, then a bare number of at least three digits.
var BudgetPatterns = []BudgetPattern{
	{Name: "k_suffix", Re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k\b`), Scale: 1000},
	{Name: "lkr_prefix", Re: regexp.MustCompile(`(?i)lkr\.?\s*([\d,]+)`), Scale: 1},
	{Name: "rs_prefix", Re: regexp.MustCompile(`(?i)rs\.?\s*([\d,]+)`), Scale: 1},
	{Name: "bare_number", Re: regexp.MustCompile(`(\d[\d,]{2,})`), Scale: 1},
}

var budgetPrinter = message.NewPrinter(language.English)

// FormatBudget renders an amount as "<currency> <amount>" with thousands
// separators, e.g. FormatBudget("LKR", 25000) == "LKR 25,000".
func FormatBudget(currency string, amount int64) string {
	return currency + " " + budgetPrinter.Sprintf("%d", amount)
}

// ExtractBudget runs the precedence table against text and returns the
// canonical budget string for the first matching pattern. ok is false when no
// pattern matches.
func ExtractBudget(text, currency string) (string, bool) {
	for _, p := range BudgetPatterns {
		m := p.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		return FormatBudget(currency, int64(amount*float64(p.Scale))), true
	}
	return "", false
}

// NormalizeBudget canonicalizes a budget string that lacks a currency marker.
// Strings already carrying the currency are re-rendered through the same
// formatter, which makes normalization idempotent. Input with no leading
// numeric token is returned unchanged with ok false.
func NormalizeBudget(raw, currency string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw, false
	}
	if canon, ok := ExtractBudget(trimmed, currency); ok {
		return canon, true
	}
	return raw, false
}

func parseAmount(digits string) (float64, error) {
	clean := strings.ReplaceAll(digits, ",", "")
	return strconv.ParseFloat(clean, 64)
}
