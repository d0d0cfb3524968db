package search

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"university-matcher/internal/models"
	"university-matcher/internal/scoring"
)

// Evaluate applies the request to one document in-process. It reports
// whether the document matches and the score it would be ranked by.
// Text relevance is token overlap rather than BM25, so only the
// function-score part reproduces store-native numbers exactly.
func (r Request) Evaluate(u *models.University) (float64, bool) {
	queryScore, ok := evaluateBool(r.Query, u)
	if !ok {
		return 0, false
	}
	if r.Scoring == nil || len(r.Scoring.Functions) == 0 {
		return queryScore, true
	}

	fnScore := r.Scoring.Evaluate(u)
	switch r.Scoring.BoostMode {
	case BoostModeMultiply:
		return queryScore * fnScore, true
	case BoostModeSum:
		return queryScore + fnScore, true
	default:
		return fnScore, true
	}
}

// Evaluate computes the combined weighted function value for u.
func (e *ScoreExpression) Evaluate(u *models.University) float64 {
	var total float64
	if e.ScoreMode == ScoreModeMultiply {
		total = 1
	}
	for _, wf := range e.Functions {
		v := evaluateFunction(wf.Function, u) * wf.Weight
		if e.ScoreMode == ScoreModeMultiply {
			total *= v
		} else {
			total += v
		}
	}
	return total
}

func evaluateFunction(fn Function, u *models.University) float64 {
	switch f := fn.(type) {
	case SATFit:
		return scoring.SATRangeFit(f.Verbal, f.Math, u)
	case FieldReciprocal:
		v, ok := u.Number(f.Field)
		return scoring.Reciprocal(v, ok, f.Missing)
	}
	panic(fmt.Sprintf("search: unhandled function %T", fn))
}

func evaluateBool(b BoolQuery, u *models.University) (float64, bool) {
	if b.IsEmpty() {
		return 1, true
	}

	var score float64
	for _, c := range b.Must {
		s, ok := evaluateClause(c, u)
		if !ok {
			return 0, false
		}
		score += s
	}
	for _, c := range b.Filter {
		if _, ok := evaluateClause(c, u); !ok {
			return 0, false
		}
	}
	for _, c := range b.MustNot {
		if _, ok := evaluateClause(c, u); ok {
			return 0, false
		}
	}

	matchedShould := 0
	for _, c := range b.Should {
		if s, ok := evaluateClause(c, u); ok {
			score += s
			matchedShould++
		}
	}
	if len(b.Must) == 0 && len(b.Filter) == 0 && len(b.Should) > 0 && matchedShould == 0 {
		return 0, false
	}
	return score, true
}

func evaluateClause(c Clause, u *models.University) (float64, bool) {
	switch q := c.(type) {
	case Match:
		overlap := tokenOverlap(q.Text, u.Text(q.Field))
		return overlap * boost(q.Boost), overlap > 0
	case MultiMatch:
		best := 0.0
		for _, fb := range q.Fields {
			best = math.Max(best, tokenOverlap(q.Text, u.Text(fb.Field))*boost(fb.Boost))
		}
		return best, best > 0
	case Term:
		return boost(q.Boost), termMatches(q, u)
	case Range:
		v, ok := u.Number(q.Field)
		if !ok {
			return 0, false
		}
		if q.GTE != nil && v < *q.GTE {
			return 0, false
		}
		if q.LTE != nil && v > *q.LTE {
			return 0, false
		}
		return boost(q.Boost), true
	case IDs:
		for _, id := range q.Values {
			if id == u.ID {
				return 1, true
			}
		}
		return 0, false
	}
	panic(fmt.Sprintf("search: unhandled clause %T", c))
}

func termMatches(q Term, u *models.University) bool {
	switch v := q.Value.(type) {
	case bool:
		got, ok := u.Bool(q.Field)
		return ok && got == v
	case string:
		return u.Text(q.Field) == v
	case float64:
		got, ok := u.Number(q.Field)
		return ok && got == v
	case int:
		got, ok := u.Number(q.Field)
		return ok && got == float64(v)
	}
	return false
}

// tokenOverlap is the share of query tokens present in the field text.
func tokenOverlap(query, field string) float64 {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 0
	}
	present := make(map[string]struct{})
	for _, t := range tokenize(field) {
		present[t] = struct{}{}
	}
	hits := 0
	for _, t := range qTokens {
		if _, ok := present[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(qTokens))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
