// internal/workers/university/rank-universities/models.go
package rankuniversities

import "university-matcher/internal/models"

const (
	ModeProfile = "profile"
	ModeFilters = "filters"
	ModeSimilar = "similar"
	ModeMatch   = "match"
)

// Input is read from the job variables. Mode selects which of the other
// fields is used.
type Input struct {
	Mode         string                `json:"mode"`
	UniversityID string                `json:"universityId,omitempty"`
	Size         int                   `json:"size,omitempty"`
	Profile      models.ProfileRequest `json:"profile"`
	Filters      models.FilterRequest  `json:"filters"`
}

type Output struct {
	Mode            string                   `json:"rankingMode"`
	Recommendations []models.ScoredCandidate `json:"recommendations"`
	TotalMatches    int64                    `json:"totalMatches"`
}
