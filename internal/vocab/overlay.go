package vocab

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Overlay is an optional YAML extension to the built-in vocabulary. Overlay
// entries are appended after the defaults so built-in precedence is kept;
// alias entries override on key collision.
type Overlay struct {
	Terms           []TermMapping     `yaml:"terms"`
	Categories      []Category        `yaml:"categories"`
	Locations       []string          `yaml:"locations"`
	LocationAliases map[string]string `yaml:"location_aliases"`
	Platforms       []Platform        `yaml:"platforms"`
	Goals           []GoalEntry       `yaml:"goals"`
	Challenges      []KeywordEntry    `yaml:"challenges"`
	Strengths       []KeywordEntry    `yaml:"strengths"`
}

// LoadOverlay reads an overlay file and merges it into v.
func (v *Vocabulary) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "vocab: read overlay %s", path)
	}
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return eris.Wrapf(err, "vocab: parse overlay %s", path)
	}
	v.Merge(o)
	return nil
}

// Merge appends overlay tables after the built-in entries.
func (v *Vocabulary) Merge(o Overlay) {
	v.Terms = append(v.Terms, o.Terms...)
	v.Categories = append(v.Categories, o.Categories...)
	v.Locations = append(v.Locations, o.Locations...)
	v.Platforms = append(v.Platforms, o.Platforms...)
	v.Goals = append(v.Goals, o.Goals...)
	v.ChallengeTable = append(v.ChallengeTable, o.Challenges...)
	v.StrengthTable = append(v.StrengthTable, o.Strengths...)
	if len(o.LocationAliases) > 0 {
		merged := make(map[string]string, len(v.LocationAliases)+len(o.LocationAliases))
		for k, val := range v.LocationAliases {
			merged[k] = val
		}
		for k, val := range o.LocationAliases {
			merged[k] = val
		}
		v.LocationAliases = merged
	}
}
