package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/text/language"
)

func TestExtractBudgetPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"k suffix", "we can spend 25k monthly", "LKR 25,000"},
		{"fractional k", "around 2.5k per month", "LKR 2,500"},
		{"lkr prefix", "budget is LKR 30,000", "LKR 30,000"},
		{"rs prefix", "rs. 15000 a month", "LKR 15,000"},
		{"bare number", "about 40000 for ads", "LKR 40,000"},
		{"k beats bare number", "50k budget, maybe 100000 next year", "LKR 50,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBudget(tt.text, DefaultCurrency)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ExtractBudget("no numbers here", DefaultCurrency)
	assert.False(t, ok)
}

func TestNormalizeBudgetIdempotent(t *testing.T) {
	canon, ok := NormalizeBudget("25k", DefaultCurrency)
	require.True(t, ok)
	assert.Equal(t, "LKR 25,000", canon)

	again, ok := NormalizeBudget(canon, DefaultCurrency)
	require.True(t, ok)
	assert.Equal(t, canon, again)

	raw, ok := NormalizeBudget("depends on the season", DefaultCurrency)
	assert.False(t, ok)
	assert.Equal(t, "depends on the season", raw)
}

func TestFormatBudgetCurrency(t *testing.T) {
	assert.Equal(t, "USD 1,250,000", FormatBudget("USD", 1250000))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, language.Sinhala, DetectLanguage("මගේ කඩේ colombo වල"))
	assert.Equal(t, language.Tamil, DetectLanguage("எனது கடை யாழ்ப்பாணத்தில்"))
	assert.Equal(t, language.English, DetectLanguage("small bakery in colombo"))
	assert.Equal(t, "si", DetectLanguage("කඩේ").String())
}
