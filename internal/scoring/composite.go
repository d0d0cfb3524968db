// internal/scoring/composite.go
package scoring

import (
	"math"

	"university-matcher/internal/models"
)

// Weights are the fixed contributions of each sub-score to the composite.
type Weights struct {
	SAT           float64 `mapstructure:"sat"`
	Affordability float64 `mapstructure:"affordability"`
	Career        float64 `mapstructure:"career"`
	Rank          float64 `mapstructure:"rank"`
}

var DefaultWeights = Weights{
	SAT:           0.4,
	Affordability: 0.2,
	Career:        0.25,
	Rank:          0.15,
}

// CompositeScorer folds the sub-scores a request can support into one
// overall match score, normalised by the weight actually used.
type CompositeScorer struct {
	weights Weights
}

func NewCompositeScorer(w Weights) *CompositeScorer {
	if w == (Weights{}) {
		w = DefaultWeights
	}
	return &CompositeScorer{weights: w}
}

// Score returns the overall match score for one candidate. Rank fit is
// always included; SAT needs both sections, affordability needs a budget
// and a known cost, career fit needs a recognised career tag.
func (c *CompositeScorer) Score(p *models.UserProfile, u *models.University) int {
	score, _ := c.Breakdown(p, u)
	return score
}

// Breakdown is Score plus the sub-scores that went into it.
func (c *CompositeScorer) Breakdown(p *models.UserProfile, u *models.University) (int, models.MatchFactors) {
	var total, weight float64
	var factors models.MatchFactors

	if p.HasSAT() {
		s := CombinedSATScore(float64(*p.SATVerbal), float64(*p.SATMath), u)
		factors.SATFit = &s
		total += s * c.weights.SAT
		weight += c.weights.SAT
	}

	if p.HasBudget() && u.AvgAnnualCost != nil && *u.AvgAnnualCost > 0 {
		s := AffordabilityScore(*p.MaxBudget, u.AvgAnnualCost)
		factors.Affordability = &s
		total += s * c.weights.Affordability
		weight += c.weights.Affordability
	}

	if p.Career != nil {
		s := CareerFitScore(*p.Career, u)
		factors.CareerFit = &s
		total += s * c.weights.Career
		weight += c.weights.Career
	}

	factors.RankFit = RankFitScore(u.RankNumber)
	total += factors.RankFit * c.weights.Rank
	weight += c.weights.Rank

	if weight <= 0 {
		return neutralScore, factors
	}
	return int(math.Round(total / weight)), factors
}
