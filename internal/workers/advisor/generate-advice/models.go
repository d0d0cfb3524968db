// internal/workers/advisor/generate-advice/models.go
package generateadvice

import (
	"encoding/json"

	"university-matcher/internal/advisor"
)

// CampusCultureMatch selects the preference-based culture match instead
// of a relay feature.
const CampusCultureMatch = "campus-culture-match"

type Input struct {
	Feature     string                            `json:"feature"`
	Input       json.RawMessage                   `json:"input,omitempty"`
	Preferences *advisor.CampusCulturePreferences `json:"preferences,omitempty"`
}

type Output struct {
	Feature string `json:"feature"`
	Content string `json:"content"`
}
