// internal/models/profile.go
package models

// InterestBudget is the combined weight shared by career and sports boosts.
const InterestBudget = 0.5

// DefaultCareerWeight applies when a request names neither weight.
const DefaultCareerWeight = 0.3

// InterestWeights splits InterestBudget between career and sports boosts.
// Build it with NewInterestWeights so the pair always sums to the budget.
type InterestWeights struct {
	Career float64 `json:"careerWeight"`
	Sports float64 `json:"sportsWeight"`
}

// NewInterestWeights derives the pair from whichever side the caller set.
// The career weight wins when both are given; out-of-range values are
// clamped to [0, InterestBudget].
func NewInterestWeights(career, sports *float64) InterestWeights {
	c := DefaultCareerWeight
	switch {
	case career != nil:
		c = *career
	case sports != nil:
		c = InterestBudget - *sports
	}
	if c < 0 {
		c = 0
	}
	if c > InterestBudget {
		c = InterestBudget
	}
	return InterestWeights{Career: c, Sports: InterestBudget - c}
}

// Filters is the optional filter overlay of a request. Nil fields add
// no predicate.
type Filters struct {
	Location          string   `json:"location,omitempty"`
	MaxRank           *float64 `json:"maxRank,omitempty"`
	MinGraduationRate *float64 `json:"minGraduationRate,omitempty"`
	MaxCost           *float64 `json:"maxCost,omitempty"`
	IsPublic          *bool    `json:"isPublic,omitempty"`
	Urbanicity        string   `json:"urbanicity,omitempty"`
}

// UserProfile is the request-scoped preference vector of one student.
type UserProfile struct {
	SATVerbal *int
	SATMath   *int
	MaxBudget *float64
	Career    *CareerTag
	Sports    *SportsTag
	Weights   InterestWeights
	Filters   Filters
}

// HasSAT reports whether both SAT sections were supplied. A zero
// section counts as missing.
func (p *UserProfile) HasSAT() bool {
	return p.SATVerbal != nil && *p.SATVerbal > 0 && p.SATMath != nil && *p.SATMath > 0
}

// HasBudget reports whether a positive budget was supplied.
func (p *UserProfile) HasBudget() bool {
	return p.MaxBudget != nil && *p.MaxBudget > 0
}
