// Package ranking orders match results by a deterministic total order.
package ranking

import (
	"sort"

	"medicine-locator/internal/models"
)

// Rank returns the results in presentation order. The input slice is
// not modified.
//
// Sort key, in priority order: confidence tier ascending (VERIFIED
// before SELF_REPORTED before STALE), distance ascending, quantity
// descending, store ID ascending. The last key makes the order a total
// one: identical input sets always produce identical output, which is
// what allows ranked responses to be cached.
func Rank(results []models.MatchResult) []models.MatchResult {
	out := make([]models.MatchResult, len(results))
	copy(out, results)

	sort.Slice(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// Less reports whether a ranks before b.
func Less(a, b models.MatchResult) bool {
	if at, bt := a.Confidence.Tier(), b.Confidence.Tier(); at != bt {
		return at < bt
	}
	if a.DistanceMeters != b.DistanceMeters {
		return a.DistanceMeters < b.DistanceMeters
	}
	if a.Quantity != b.Quantity {
		return a.Quantity > b.Quantity
	}
	return a.StoreID < b.StoreID
}
