package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"university-matcher/internal/models"
)

func f(v float64) *float64 { return &v }

// ==========================
// SAT sub-score
// ==========================

func TestSATSubScore(t *testing.T) {
	tests := []struct {
		name     string
		user     float64
		pct25    *float64
		pct75    *float64
		expected float64
	}{
		{"at 25th percentile", 600, f(600), f(700), 20},
		{"at 75th percentile", 700, f(600), f(700), 80},
		{"inside range", 650, f(600), f(700), 50},
		{"below range", 550, f(600), f(700), 15},
		{"above range", 750, f(600), f(700), 75},
		{"missing lower bound", 650, nil, f(700), 50},
		{"missing upper bound", 650, f(600), nil, 50},
		{"inverted bounds", 650, f(700), f(600), 50},
		{"equal bounds", 650, f(650), f(650), 50},
		{"zero bound treated as missing", 650, f(0), f(700), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SATSubScore(tt.user, tt.pct25, tt.pct75), 1e-9)
		})
	}
}

func TestSATSubScore_BoundaryContinuity(t *testing.T) {
	ranges := [][2]float64{{400, 500}, {520, 610}, {690, 780}, {200, 800}}
	for _, r := range ranges {
		lo, hi := f(r[0]), f(r[1])
		assert.Equal(t, 20.0, SATSubScore(r[0], lo, hi))
		assert.Equal(t, 80.0, SATSubScore(r[1], lo, hi))

		const eps = 1e-6
		assert.InDelta(t, 20.0, SATSubScore(r[0]-eps, lo, hi), 1e-5)
		assert.InDelta(t, 80.0, SATSubScore(r[1]+eps, lo, hi), 1e-5)
	}
}

func TestSATSubScore_NonDecreasingInsideRange(t *testing.T) {
	lo, hi := f(550), f(720)
	prev := SATSubScore(550, lo, hi)
	for u := 551.0; u <= 720; u++ {
		cur := SATSubScore(u, lo, hi)
		assert.GreaterOrEqual(t, cur, prev, "score dropped at %v", u)
		prev = cur
	}
}

func TestCombinedSATScore_Clamped(t *testing.T) {
	uni := &models.University{
		SATVerbal25: f(600), SATVerbal75: f(700),
		SATMath25: f(620), SATMath75: f(740),
	}
	inputs := []float64{-1000, -1, 0, 200, 599, 600, 650, 700, 740, 800, 1600, 10000}
	for _, v := range inputs {
		for _, m := range inputs {
			s := CombinedSATScore(v, m, uni)
			assert.GreaterOrEqual(t, s, 5.0)
			assert.LessOrEqual(t, s, 85.0)
		}
	}

	assert.Equal(t, 5.0, CombinedSATScore(0, 0, uni))
	assert.Equal(t, 50.0, CombinedSATScore(650, 680, uni))
	assert.Equal(t, 50.0, CombinedSATScore(650, 680, &models.University{}))
}

// ==========================
// SAT range fit (profile ranking)
// ==========================

func TestSATRangeFit(t *testing.T) {
	uni := &models.University{
		SATVerbal25: f(600), SATVerbal75: f(700),
		SATMath25: f(600), SATMath75: f(700),
	}

	assert.InDelta(t, 100.0, SATRangeFit(650, 650, uni), 1e-9)
	assert.InDelta(t, 50.0, SATRangeFit(625, 675, uni), 1e-9)
	assert.InDelta(t, 0.0, SATRangeFit(600, 700, uni), 1e-9)
	assert.InDelta(t, 0.0, SATRangeFit(100, 800, uni), 1e-9)
	assert.InDelta(t, 50.0, SATRangeFit(650, 400, uni), 1e-9)

	assert.Equal(t, SATFitFallback, SATRangeFit(650, 650, &models.University{}))
	assert.Equal(t, SATFitFallback, SATRangeFit(650, 650, &models.University{
		SATVerbal25: f(700), SATVerbal75: f(600),
		SATMath25: f(600), SATMath75: f(700),
	}))
}

// Both SAT formulas treat the admitted-range edges as the boundary of
// full credit: the linear form reaches its 20/80 anchors there and the
// range fit reaches zero.
func TestSATFormulas_EdgeAgreement(t *testing.T) {
	lo, hi := 560.0, 680.0
	uni := &models.University{SATVerbal25: f(lo), SATVerbal75: f(hi), SATMath25: f(lo), SATMath75: f(hi)}

	assert.Equal(t, 20.0, SATSubScore(lo, f(lo), f(hi)))
	assert.Equal(t, 80.0, SATSubScore(hi, f(lo), f(hi)))
	assert.InDelta(t, 0.0, SATRangeFit(lo, lo, uni), 1e-9)
	assert.InDelta(t, 0.0, SATRangeFit(hi, hi, uni), 1e-9)
}

// ==========================
// Affordability
// ==========================

func TestAffordabilityScore(t *testing.T) {
	tests := []struct {
		name     string
		budget   float64
		cost     *float64
		expected float64
	}{
		{"budget covers cost", 30000, f(25000), 100},
		{"budget equals cost", 25000, f(25000), 100},
		{"exactly 80 percent", 20000, f(25000), 75},
		{"exactly 60 percent", 15000, f(25000), 50},
		{"exactly 40 percent", 10000, f(25000), 25},
		{"below 40 percent", 9999, f(25000), 0},
		{"missing cost", 20000, nil, 50},
		{"zero cost", 20000, f(0), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AffordabilityScore(tt.budget, tt.cost))
		})
	}
}

func TestAffordabilityScore_MonotonicInBudget(t *testing.T) {
	for _, cost := range []float64{8000, 25000, 61000} {
		prev := AffordabilityScore(0, f(cost))
		for budget := 0.0; budget <= 80000; budget += 250 {
			cur := AffordabilityScore(budget, f(cost))
			assert.GreaterOrEqual(t, cur, prev, "cost=%v budget=%v", cost, budget)
			prev = cur
		}
	}
}

// ==========================
// Career and rank fit
// ==========================

func TestCareerFitScore(t *testing.T) {
	assert.Equal(t, 80.0, CareerFitScore(models.CareerComputerSci, &models.University{ComputerScienceRank: f(30)}))
	assert.Equal(t, 50.0, CareerFitScore(models.CareerComputerSci, &models.University{}))
	assert.Equal(t, 50.0, CareerFitScore(models.CareerNursing, &models.University{ComputerScienceRank: f(1)}))
	assert.Equal(t, 100.0, CareerFitScore(models.CareerAerospace, &models.University{AerospaceRanking: f(4)}))

	buckets := []struct {
		rank     float64
		expected float64
	}{
		{10, 100}, {11, 90}, {25, 90}, {26, 80}, {50, 80}, {51, 70},
		{100, 70}, {101, 60}, {200, 60}, {201, 50}, {300, 50}, {301, 40},
		{400, 40}, {401, 30}, {500, 30}, {501, 20}, {5000, 20},
	}
	for _, b := range buckets {
		u := &models.University{FinanceRank: f(b.rank)}
		assert.Equal(t, b.expected, CareerFitScore(models.CareerFinance, u), "rank %v", b.rank)
	}
}

func TestCareerFitScore_MonotonicInRank(t *testing.T) {
	for _, tag := range models.AllCareerTags() {
		prev := 101.0
		for rank := 1.0; rank <= 700; rank++ {
			u := &models.University{}
			setRank(u, tag, rank)
			cur := CareerFitScore(tag, u)
			assert.LessOrEqual(t, cur, prev, "%s rank %v", tag, rank)
			assert.GreaterOrEqual(t, cur, 20.0)
			prev = cur
		}
	}
}

func TestRankFitScore(t *testing.T) {
	tests := []struct {
		rank     *float64
		expected float64
	}{
		{nil, 50}, {f(0), 50}, {f(1), 100}, {f(50), 100}, {f(51), 90},
		{f(100), 90}, {f(200), 80}, {f(300), 70}, {f(400), 60}, {f(401), 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RankFitScore(tt.rank))
	}
}

func TestReciprocal(t *testing.T) {
	assert.InDelta(t, 0.1, Reciprocal(10, true, 999), 1e-12)
	assert.InDelta(t, 1.0/999, Reciprocal(0, false, 999), 1e-12)
	assert.InDelta(t, 1.0/9999, Reciprocal(0, true, 9999), 1e-12)
}

func setRank(u *models.University, tag models.CareerTag, rank float64) {
	switch tag.RankField() {
	case models.FieldComputerScienceRank:
		u.ComputerScienceRank = f(rank)
	case models.FieldEngineeringRank:
		u.EngineeringRank = f(rank)
	case models.FieldBusinessRank:
		u.BusinessRank = f(rank)
	case models.FieldNursingRank:
		u.NursingRank = f(rank)
	case models.FieldPsychologyRank:
		u.PsychologyRank = f(rank)
	case models.FieldFinanceRank:
		u.FinanceRank = f(rank)
	case models.FieldEconomicsRank:
		u.EconomicsRank = f(rank)
	case models.FieldManagementRank:
		u.ManagementRank = f(rank)
	case models.FieldMarketingRank:
		u.MarketingRank = f(rank)
	case models.FieldArtificialIntelligenceRank:
		u.ArtificialIntelligenceRank = f(rank)
	case models.FieldAerospaceRanking:
		u.AerospaceRanking = f(rank)
	}
}
