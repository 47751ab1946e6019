package vocab

import (
	"unicode"

	"golang.org/x/text/language"
)

// DetectLanguage classifies input by script. Any Sinhala rune marks the text
// Sinhala, any Tamil rune Tamil, otherwise English. Mixed Sinhala/English
// "Singlish" input therefore reports as Sinhala, which is what the term
// mapping table is built for. A pure script scan, no statistical model.
func DetectLanguage(text string) language.Tag {
	for _, r := range text {
		if unicode.Is(unicode.Sinhala, r) {
			return language.Sinhala
		}
		if unicode.Is(unicode.Tamil, r) {
			return language.Tamil
		}
	}
	return language.English
}
