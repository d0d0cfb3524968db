// internal/ranking/dedupe.go
package ranking

import (
	"university-matcher/internal/models"
	"university-matcher/internal/store"
)

// collect keeps the first hit per university name, in hit order, and
// stops at max unique names.
func collect(hits []store.Hit, max int) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, 0, min(len(hits), max))
	seen := make(map[string]struct{}, max)

	for _, h := range hits {
		if len(out) >= max {
			break
		}
		key := dedupeKey(&h.University)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.ScoredCandidate{University: h.University, MatchScore: h.Score})
	}
	return out
}

func dedupeKey(u *models.University) string {
	if k := u.NameKey(); k != "" {
		return k
	}
	return "id:" + u.ID
}
