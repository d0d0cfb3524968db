// internal/ranking/similarity.go
package ranking

import (
	"university-matcher/internal/models"
	"university-matcher/internal/search"
)

// Similarity bands and boosts.
const (
	rankBand    = 0.3
	costBand    = 0.2
	programBand = 0.3

	locationBoost    = 1.0
	rankBoost        = 2.0
	publicBoost      = 1.5
	costBoost        = 1.2
	sizeBoost        = 1.0
	urbanicityBoost  = 1.0
	programRankBoost = 1.5
)

// School size buckets, by enrollment.
const (
	mediumSchoolMin = 5000
	largeSchoolMin  = 15000
)

// BuildSimilarQuery builds an any-of query around ref. Each attribute the
// reference has contributes one boosted clause; absent attributes are
// skipped. It reports false when ref has nothing to compare on.
func BuildSimilarQuery(ref *models.University, size int) (search.Request, bool) {
	var should []search.Clause

	if ref.Location != "" {
		should = append(should, search.Match{Field: models.FieldLocation, Text: ref.Location, Boost: locationBoost})
	}
	if rank, ok := ref.Number(models.FieldRankNumber); ok {
		should = append(should, band(models.FieldRankNumber, rank, rankBand, rankBoost))
	}
	if public, ok := ref.Bool(models.FieldPublic); ok {
		should = append(should, search.Term{Field: models.FieldPublic, Value: public, Boost: publicBoost})
	}
	if cost, ok := ref.Number(models.FieldAvgAnnualCost); ok {
		should = append(should, band(models.FieldAvgAnnualCost, cost, costBand, costBoost))
	}
	if enrollment, ok := ref.Number(models.FieldSchoolSize); ok {
		lo, hi := sizeBucket(enrollment)
		should = append(should, search.Range{Field: models.FieldSchoolSize, GTE: lo, LTE: hi, Boost: sizeBoost})
	}
	if ref.Urbanicity != "" {
		should = append(should, search.Term{Field: models.FieldUrbanicity, Value: ref.Urbanicity, Boost: urbanicityBoost})
	}
	for _, field := range models.ProgramRankFields {
		if v, ok := ref.Number(field); ok {
			should = append(should, band(field, v, programBand, programRankBoost))
		}
	}

	if len(should) == 0 {
		return search.Request{}, false
	}

	q := search.BoolQuery{Should: should}
	if ref.ID != "" {
		q.MustNot = []search.Clause{search.IDs{Values: []string{ref.ID}}}
	}
	return search.Request{Query: q, Size: size}, true
}

func band(field string, v, width, boost float64) search.Range {
	return search.Range{
		Field: field,
		GTE:   search.Float(v * (1 - width)),
		LTE:   search.Float(v * (1 + width)),
		Boost: boost,
	}
}

func sizeBucket(size float64) (lo, hi *float64) {
	switch {
	case size < mediumSchoolMin:
		return search.Float(1), search.Float(mediumSchoolMin - 1)
	case size < largeSchoolMin:
		return search.Float(mediumSchoolMin), search.Float(largeSchoolMin - 1)
	default:
		return search.Float(largeSchoolMin), nil
	}
}
