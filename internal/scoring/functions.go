// Package scoring holds the sub-score functions and the composite match
// scorer. Every function is total: missing catalog data resolves to a
// neutral or fallback score instead of an error.
package scoring

import (
	"math"

	"university-matcher/internal/models"
)

const (
	neutralScore = 50

	satFloor   = 5
	satCeiling = 85

	// SATFitFallback is what the range-fit function yields for a school
	// without usable SAT percentiles.
	SATFitFallback = 0.01
)

// SATSubScore places a user's section score against an admitted range.
// The 25th and 75th percentiles map to 20 and 80; outside the range the
// score drops by one point per ten SAT points. Nil, non-positive or
// inverted bounds give the neutral 50.
func SATSubScore(userScore float64, pct25, pct75 *float64) float64 {
	if !validRange(pct25, pct75) {
		return neutralScore
	}
	lo, hi := *pct25, *pct75
	switch {
	case userScore < lo:
		return 20 + (userScore-lo)/10
	case userScore <= hi:
		return 20 + 60*(userScore-lo)/(hi-lo)
	default:
		return 80 - (userScore-hi)/10
	}
}

// CombinedSATScore averages the verbal and math sub-scores and clamps the
// result to [5, 85].
func CombinedSATScore(verbal, mathScore float64, u *models.University) float64 {
	v := SATSubScore(verbal, u.SATVerbal25, u.SATVerbal75)
	m := SATSubScore(mathScore, u.SATMath25, u.SATMath75)
	return clamp((v+m)/2, satFloor, satCeiling)
}

// SATRangeFit scores closeness to the middle of both admitted ranges:
// 100 at the midpoints, 0 at or beyond either percentile, averaged over
// the two sections. Schools without usable percentiles get
// SATFitFallback. This is the profile ranking function; the store script
// evaluates the same formula.
func SATRangeFit(verbal, mathScore float64, u *models.University) float64 {
	if !validRange(u.SATMath25, u.SATMath75) || !validRange(u.SATVerbal25, u.SATVerbal75) {
		return SATFitFallback
	}
	compM := 1 - math.Min(distanceFromCenter(mathScore, *u.SATMath25, *u.SATMath75), 1)
	compV := 1 - math.Min(distanceFromCenter(verbal, *u.SATVerbal25, *u.SATVerbal75), 1)
	return (compM + compV) / 2 * 100
}

func distanceFromCenter(score, lo, hi float64) float64 {
	mid := (lo + hi) / 2
	span := (hi - lo) / 2
	return math.Abs(score-mid) / span
}

// AffordabilityScore is a step function of budget as a share of cost.
func AffordabilityScore(maxBudget float64, cost *float64) float64 {
	if cost == nil || *cost <= 0 {
		return neutralScore
	}
	ratio := maxBudget / *cost
	switch {
	case ratio >= 1:
		return 100
	case ratio >= 0.8:
		return 75
	case ratio >= 0.6:
		return 50
	case ratio >= 0.4:
		return 25
	default:
		return 0
	}
}

// CareerFitScore grades the school's program rank for the career.
func CareerFitScore(tag models.CareerTag, u *models.University) float64 {
	rank, ok := u.Number(tag.RankField())
	if !ok {
		return neutralScore
	}
	switch {
	case rank <= 10:
		return 100
	case rank <= 25:
		return 90
	case rank <= 50:
		return 80
	case rank <= 100:
		return 70
	case rank <= 200:
		return 60
	case rank <= 300:
		return 50
	case rank <= 400:
		return 40
	case rank <= 500:
		return 30
	default:
		return 20
	}
}

// RankFitScore grades the overall rank with coarser buckets.
func RankFitScore(rankNumber *float64) float64 {
	if rankNumber == nil || *rankNumber <= 0 {
		return neutralScore
	}
	r := *rankNumber
	switch {
	case r <= 50:
		return 100
	case r <= 100:
		return 90
	case r <= 200:
		return 80
	case r <= 300:
		return 70
	case r <= 400:
		return 60
	default:
		return 50
	}
}

// Reciprocal is the inverse-rank boost: 1/value, with missing used when
// the attribute is absent.
func Reciprocal(value float64, present bool, missing float64) float64 {
	if !present || value <= 0 {
		value = missing
	}
	return 1 / value
}

func validRange(lo, hi *float64) bool {
	return lo != nil && hi != nil && *lo > 0 && *hi > *lo
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
