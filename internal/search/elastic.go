package search

import (
	"fmt"

	"university-matcher/internal/models"
	"university-matcher/internal/scoring"
)

// satFitScript mirrors scoring.SATRangeFit inside Elasticsearch.
const satFitScript = `
double get(Map d, String f) {
  return (d.containsKey(f) && d[f].size() != 0) ? d[f].value : -1;
}
double minM = get(doc, params.math25);
double maxM = get(doc, params.math75);
double minV = get(doc, params.verbal25);
double maxV = get(doc, params.verbal75);
if (minM <= 0 || maxM <= minM || minV <= 0 || maxV <= minV) return params.fallback;
double dM = Math.abs(params.math - (minM + maxM) / 2.0) / ((maxM - minM) / 2.0);
double dV = Math.abs(params.verbal - (minV + maxV) / 2.0) / ((maxV - minV) / 2.0);
return ((1.0 - Math.min(dM, 1.0)) + (1.0 - Math.min(dV, 1.0))) / 2.0 * 100;
`

// Body renders the request as an Elasticsearch search body. Size is left
// to the caller's request parameters.
func (r Request) Body() map[string]interface{} {
	query := renderBool(r.Query)

	if r.Scoring != nil && len(r.Scoring.Functions) > 0 {
		functions := make([]interface{}, 0, len(r.Scoring.Functions))
		for _, wf := range r.Scoring.Functions {
			functions = append(functions, renderFunction(wf))
		}
		query = map[string]interface{}{
			"function_score": map[string]interface{}{
				"query":      query,
				"functions":  functions,
				"score_mode": string(r.Scoring.ScoreMode),
				"boost_mode": string(r.Scoring.BoostMode),
			},
		}
	}

	body := map[string]interface{}{
		"query":            query,
		"track_total_hits": true,
	}
	if r.SortByScore {
		body["sort"] = []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
		}
	}
	return body
}

func renderBool(b BoolQuery) map[string]interface{} {
	if b.IsEmpty() {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	boolQuery := make(map[string]interface{})
	if len(b.Must) > 0 {
		boolQuery["must"] = renderClauses(b.Must)
	}
	if len(b.Filter) > 0 {
		boolQuery["filter"] = renderClauses(b.Filter)
	}
	if len(b.Should) > 0 {
		boolQuery["should"] = renderClauses(b.Should)
	}
	if len(b.MustNot) > 0 {
		boolQuery["must_not"] = renderClauses(b.MustNot)
	}
	return map[string]interface{}{"bool": boolQuery}
}

func renderClauses(clauses []Clause) []interface{} {
	out := make([]interface{}, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, renderClause(c))
	}
	return out
}

func renderClause(c Clause) map[string]interface{} {
	switch q := c.(type) {
	case Match:
		return map[string]interface{}{
			"match": map[string]interface{}{
				q.Field: map[string]interface{}{"query": q.Text, "boost": boost(q.Boost)},
			},
		}
	case MultiMatch:
		fields := make([]string, 0, len(q.Fields))
		for _, fb := range q.Fields {
			if fb.Boost > 0 && fb.Boost != 1 {
				fields = append(fields, fmt.Sprintf("%s^%g", fb.Field, fb.Boost))
			} else {
				fields = append(fields, fb.Field)
			}
		}
		return map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": fields,
				"type":   "best_fields",
			},
		}
	case Term:
		return map[string]interface{}{
			"term": map[string]interface{}{
				q.Field: map[string]interface{}{"value": q.Value, "boost": boost(q.Boost)},
			},
		}
	case Range:
		bounds := map[string]interface{}{"boost": boost(q.Boost)}
		if q.GTE != nil {
			bounds["gte"] = *q.GTE
		}
		if q.LTE != nil {
			bounds["lte"] = *q.LTE
		}
		return map[string]interface{}{
			"range": map[string]interface{}{q.Field: bounds},
		}
	case IDs:
		return map[string]interface{}{
			"ids": map[string]interface{}{"values": q.Values},
		}
	}
	panic(fmt.Sprintf("search: unhandled clause %T", c))
}

func renderFunction(wf WeightedFunction) map[string]interface{} {
	out := map[string]interface{}{"weight": wf.Weight}
	switch fn := wf.Function.(type) {
	case SATFit:
		out["script_score"] = map[string]interface{}{
			"script": map[string]interface{}{
				"source": satFitScript,
				"params": map[string]interface{}{
					"verbal":   fn.Verbal,
					"math":     fn.Math,
					"verbal25": models.FieldSATVerbal25,
					"verbal75": models.FieldSATVerbal75,
					"math25":   models.FieldSATMath25,
					"math75":   models.FieldSATMath75,
					"fallback": scoring.SATFitFallback,
				},
			},
		}
	case FieldReciprocal:
		out["field_value_factor"] = map[string]interface{}{
			"field":    fn.Field,
			"modifier": "reciprocal",
			"factor":   1,
			"missing":  fn.Missing,
		}
	default:
		panic(fmt.Sprintf("search: unhandled function %T", wf.Function))
	}
	return out
}

func boost(b float64) float64 {
	if b <= 0 {
		return 1
	}
	return b
}
