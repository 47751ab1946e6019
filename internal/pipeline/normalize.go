package pipeline

import (
	"strings"

	"github.com/smegrowth/profiler-cli/internal/vocab"
)

// Normalizer performs the lexical pass that runs before any extraction:
// lowercasing, mixed-language term substitution, bullet canonicalization and
// whitespace collapsing. Normalization is idempotent; running it twice yields
// the same output.
type Normalizer struct {
	vocab *vocab.Vocabulary
}

// NewNormalizer creates a normalizer over the given vocabulary.
func NewNormalizer(v *vocab.Vocabulary) *Normalizer {
	return &Normalizer{vocab: v}
}

// Normalize applies the full lexical pass to raw form text.
func (n *Normalizer) Normalize(raw string) string {
	text := strings.ToLower(raw)

	// Term substitution runs in table order so earlier entries take
	// precedence over later ones that contain the same substring.
	for _, t := range n.vocab.Terms {
		text = strings.ReplaceAll(text, t.From, t.To)
	}

	text = canonicalizeBullets(text)
	text = collapseWhitespace(text)
	return strings.TrimSpace(text)
}

// canonicalizeBullets rewrites leading bullet glyphs to "- " at the start of
// each line. Hyphens inside a line (age ranges like 25-45) are untouched.
func canonicalizeBullets(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		switch {
		case trimmed[0] == '*' || trimmed[0] == '-':
			lines[i] = "- " + strings.TrimLeft(trimmed[1:], " \t")
		case strings.HasPrefix(trimmed, "•"):
			lines[i] = "- " + strings.TrimLeft(strings.TrimPrefix(trimmed, "•"), " \t")
		default:
			lines[i] = trimmed
		}
	}
	return strings.Join(lines, "\n")
}

// collapseWhitespace squeezes runs of spaces and tabs to a single space and
// runs of blank lines to a single newline. Newlines are preserved as line
// separators because bullet structure depends on them.
func collapseWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	newlines := 0
	for _, r := range text {
		switch r {
		case ' ', '\t':
			space = true
		case '\n':
			newlines++
			space = false
		default:
			if newlines > 0 {
				b.WriteByte('\n')
				newlines = 0
			} else if space {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
