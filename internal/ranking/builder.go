// internal/ranking/builder.go
package ranking

import (
	"strings"

	"university-matcher/internal/models"
	"university-matcher/internal/search"
)

// Profile-mode function weights and missing-value sentinels.
const (
	satFitWeight        = 1.0
	rankBonusWeight     = 0.05
	majorInterestWeight = 1.5
	listingRankWeight   = 0.5

	missingRank        = 9999
	missingProgramRank = 999
)

// filterQuery turns the filter overlay into predicates. Location is a
// scored text match; everything else is a non-scoring filter. Absent
// fields add nothing.
func filterQuery(f models.Filters) search.BoolQuery {
	var q search.BoolQuery

	if loc := strings.TrimSpace(f.Location); loc != "" {
		q.Must = append(q.Must, search.Match{Field: models.FieldLocation, Text: loc})
	}
	if f.MaxRank != nil {
		q.Filter = append(q.Filter, search.Range{Field: models.FieldRankNumber, LTE: f.MaxRank})
	}
	if f.MinGraduationRate != nil && *f.MinGraduationRate > 0 {
		q.Filter = append(q.Filter, search.Range{Field: models.FieldGraduationRate, GTE: f.MinGraduationRate})
	}
	if f.MaxCost != nil {
		q.Filter = append(q.Filter, search.Range{Field: models.FieldAvgAnnualCost, LTE: f.MaxCost})
	}
	if f.IsPublic != nil {
		q.Filter = append(q.Filter, search.Term{Field: models.FieldPublic, Value: *f.IsPublic})
	}
	if u := strings.TrimSpace(f.Urbanicity); u != "" {
		q.Filter = append(q.Filter, search.Term{Field: models.FieldUrbanicity, Value: strings.ToLower(u)})
	}
	return q
}

// BuildFilteredQuery builds the filtered listing: conjunctive filters,
// a reciprocal program-rank boost per major interest and a smaller
// overall-rank boost, ordered by score.
func BuildFilteredQuery(f models.Filters, majors []models.CareerTag, size int) search.Request {
	query := filterQuery(f)

	// A filter-only bool query scores 0 in the store, which would zero a
	// multiplied function score.
	boostMode := search.BoostModeReplace
	if len(query.Must) > 0 {
		boostMode = search.BoostModeMultiply
	}

	expr := search.NewScoreExpression(search.ScoreModeSum, boostMode)
	seen := make(map[models.CareerTag]bool, len(majors))
	for _, m := range majors {
		if seen[m] {
			continue
		}
		seen[m] = true
		expr.Add(search.FieldReciprocal{Field: m.RankField(), Missing: missingProgramRank}, majorInterestWeight)
	}
	expr.Add(search.FieldReciprocal{Field: models.FieldRankNumber, Missing: missingRank}, listingRankWeight)

	return search.Request{
		Query:       query,
		Scoring:     expr,
		Size:        size,
		SortByScore: true,
	}
}

// BuildProfileQuery builds the profile-weighted ranking: SAT range fit,
// a small overall-rank tie breaker and the career and sports boosts,
// summed and used as the score directly.
func BuildProfileQuery(p *models.UserProfile, size int) search.Request {
	expr := search.NewScoreExpression(search.ScoreModeSum, search.BoostModeReplace)

	if p.HasSAT() {
		expr.Add(search.SATFit{Verbal: float64(*p.SATVerbal), Math: float64(*p.SATMath)}, satFitWeight)
	}
	expr.Add(search.FieldReciprocal{Field: models.FieldRankNumber, Missing: missingRank}, rankBonusWeight)

	if p.Career != nil && p.Weights.Career > 0 {
		expr.Add(search.FieldReciprocal{Field: p.Career.RankField(), Missing: missingProgramRank}, p.Weights.Career)
	}
	if p.Sports != nil && p.Weights.Sports > 0 {
		expr.Add(search.FieldReciprocal{Field: p.Sports.RankField(), Missing: missingProgramRank}, p.Weights.Sports)
	}

	return search.Request{
		Query:       filterQuery(p.Filters),
		Scoring:     expr,
		Size:        size,
		SortByScore: true,
	}
}

// BuildCandidateQuery fetches every university passing the filters for
// MatchWithScores to score in-process.
func BuildCandidateQuery(f models.Filters) search.Request {
	return search.Request{Query: filterQuery(f), Size: search.All}
}

// BuildTextQuery is a free-text search over name and location.
func BuildTextQuery(text string, size int) search.Request {
	return search.Request{
		Query: search.BoolQuery{Must: []search.Clause{
			search.MultiMatch{Text: text, Fields: []search.FieldBoost{
				{Field: models.FieldName, Boost: 2},
				{Field: models.FieldLocation, Boost: 1},
			}},
		}},
		Size: size,
	}
}

// BuildLocationQuery matches the location field only.
func BuildLocationQuery(location string, size int) search.Request {
	return search.Request{
		Query: search.BoolQuery{Must: []search.Clause{
			search.Match{Field: models.FieldLocation, Text: location},
		}},
		Size: size,
	}
}
