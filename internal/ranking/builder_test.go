package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"university-matcher/internal/models"
	"university-matcher/internal/search"
)

func fp(v float64) *float64 { return &v }
func bp(v bool) *bool       { return &v }
func ip(v int) *int         { return &v }

func TestBuildFilteredQuery_AllFilters(t *testing.T) {
	f := models.Filters{
		Location:          "Boston, MA",
		MaxRank:           fp(100),
		MinGraduationRate: fp(0.8),
		MaxCost:           fp(40000),
		IsPublic:          bp(false),
		Urbanicity:        "Urban",
	}

	req := BuildFilteredQuery(f, []models.CareerTag{models.CareerFinance, models.CareerFinance, models.CareerAI}, 45)

	require.Len(t, req.Query.Must, 1)
	assert.Equal(t, search.Match{Field: models.FieldLocation, Text: "Boston, MA"}, req.Query.Must[0])
	assert.Equal(t, []search.Clause{
		search.Range{Field: models.FieldRankNumber, LTE: fp(100)},
		search.Range{Field: models.FieldGraduationRate, GTE: fp(0.8)},
		search.Range{Field: models.FieldAvgAnnualCost, LTE: fp(40000)},
		search.Term{Field: models.FieldPublic, Value: false},
		search.Term{Field: models.FieldUrbanicity, Value: "urban"},
	}, req.Query.Filter)

	require.NotNil(t, req.Scoring)
	assert.Equal(t, search.ScoreModeSum, req.Scoring.ScoreMode)
	assert.Equal(t, search.BoostModeMultiply, req.Scoring.BoostMode)
	assert.Equal(t, []search.WeightedFunction{
		{Function: search.FieldReciprocal{Field: models.FieldFinanceRank, Missing: 999}, Weight: 1.5},
		{Function: search.FieldReciprocal{Field: models.FieldArtificialIntelligenceRank, Missing: 999}, Weight: 1.5},
		{Function: search.FieldReciprocal{Field: models.FieldRankNumber, Missing: 9999}, Weight: 0.5},
	}, req.Scoring.Functions)
	assert.Equal(t, 45, req.Size)
	assert.True(t, req.SortByScore)
}

func TestBuildFilteredQuery_AbsentFiltersAreOmitted(t *testing.T) {
	req := BuildFilteredQuery(models.Filters{MinGraduationRate: fp(0)}, nil, 15)

	assert.True(t, req.Query.IsEmpty())
	assert.Equal(t, search.BoostModeReplace, req.Scoring.BoostMode)
	require.Len(t, req.Scoring.Functions, 1)
}

func TestBuildFilteredQuery_FilterOnlyReplacesScore(t *testing.T) {
	req := BuildFilteredQuery(models.Filters{MaxRank: fp(50)}, nil, 15)
	assert.Empty(t, req.Query.Must)
	assert.Equal(t, search.BoostModeReplace, req.Scoring.BoostMode)
}

func TestBuildProfileQuery(t *testing.T) {
	cs := models.CareerComputerSci
	tennis := models.SportsTennis
	p := &models.UserProfile{
		SATVerbal: ip(650),
		SATMath:   ip(700),
		Career:    &cs,
		Sports:    &tennis,
		Weights:   models.NewInterestWeights(fp(0.3), nil),
	}

	req := BuildProfileQuery(p, 45)

	assert.True(t, req.Query.IsEmpty())
	assert.Equal(t, search.ScoreModeSum, req.Scoring.ScoreMode)
	assert.Equal(t, search.BoostModeReplace, req.Scoring.BoostMode)

	fns := req.Scoring.Functions
	require.Len(t, fns, 4)
	assert.Equal(t, search.WeightedFunction{Function: search.SATFit{Verbal: 650, Math: 700}, Weight: 1}, fns[0])
	assert.Equal(t, search.WeightedFunction{Function: search.FieldReciprocal{Field: models.FieldRankNumber, Missing: 9999}, Weight: 0.05}, fns[1])
	assert.Equal(t, search.FieldReciprocal{Field: models.FieldComputerScienceRank, Missing: 999}, fns[2].Function)
	assert.InDelta(t, 0.3, fns[2].Weight, 1e-9)
	assert.Equal(t, search.FieldReciprocal{Field: models.FieldTennisRank, Missing: 999}, fns[3].Function)
	assert.InDelta(t, 0.2, fns[3].Weight, 1e-9)
}

func TestBuildProfileQuery_WithoutSATOrSportsBudget(t *testing.T) {
	cs := models.CareerComputerSci
	soccer := models.SportsSoccer
	p := &models.UserProfile{
		Career:  &cs,
		Sports:  &soccer,
		Weights: models.NewInterestWeights(fp(0.5), nil),
	}

	fns := BuildProfileQuery(p, 15).Scoring.Functions
	require.Len(t, fns, 2)
	for _, fn := range fns {
		_, isSAT := fn.Function.(search.SATFit)
		assert.False(t, isSAT)
	}
	assert.Equal(t, models.FieldComputerScienceRank, fns[1].Function.(search.FieldReciprocal).Field)
}

func TestBuildProfileQuery_ScoresInProcess(t *testing.T) {
	p := &models.UserProfile{SATVerbal: ip(650), SATMath: ip(650)}
	req := BuildProfileQuery(p, 15)

	centered := &models.University{
		RankNumber:  fp(20),
		SATVerbal25: fp(600), SATVerbal75: fp(700),
		SATMath25: fp(600), SATMath75: fp(700),
	}
	score, ok := req.Evaluate(centered)
	require.True(t, ok)
	assert.InDelta(t, 100+0.05/20, score, 1e-9)

	incomplete := &models.University{}
	score, ok = req.Evaluate(incomplete)
	require.True(t, ok)
	assert.InDelta(t, 0.01+0.05/9999, score, 1e-9)
}

func TestBuildTextQuery(t *testing.T) {
	req := BuildTextQuery("stanford", 45)
	require.Len(t, req.Query.Must, 1)
	mm, ok := req.Query.Must[0].(search.MultiMatch)
	require.True(t, ok)
	assert.Equal(t, "stanford", mm.Text)
	assert.Equal(t, []search.FieldBoost{{Field: models.FieldName, Boost: 2}, {Field: models.FieldLocation, Boost: 1}}, mm.Fields)
	assert.Nil(t, req.Scoring)
}
