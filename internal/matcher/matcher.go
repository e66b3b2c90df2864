// Package matcher joins geo candidates with inventory records and
// filters them down to presentable availability hits.
package matcher

import (
	"time"

	"medicine-locator/internal/models"
)

// Matcher applies the availability and freshness policy.
type Matcher struct {
	staleAfter time.Duration
}

// New creates a matcher with the given freshness window.
func New(staleAfter time.Duration) *Matcher {
	return &Matcher{staleAfter: staleAfter}
}

// Match keeps only candidates with a committed entry and quantity > 0.
// A candidate absent from the inventory map is dropped silently: a store
// that never reported the medicine is not assumed to be out of stock.
// Entries older than the freshness window are downgraded to STALE here,
// once, so ranking consumes an explicit tier instead of re-deriving age.
func (m *Matcher) Match(candidates []models.GeoCandidate, entries map[string]models.InventoryEntry, now time.Time) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		e, ok := entries[c.StoreID]
		if !ok || e.Quantity <= 0 {
			continue
		}

		confidence := e.Confidence
		age := now.Sub(e.LastUpdated)
		if age > m.staleAfter {
			confidence = models.ConfidenceStale
		}

		out = append(out, models.MatchResult{
			StoreID:        c.StoreID,
			MedicineID:     e.MedicineID,
			Quantity:       e.Quantity,
			DistanceMeters: c.DistanceMeters,
			Confidence:     confidence,
			Score:          score(confidence, c.DistanceMeters, age),
		})
	}
	return out
}

// score is a composite of confidence, proximity and recency. It is
// informational for callers; the ranking order is defined by explicit
// sort keys, not by this value.
func score(confidence models.Confidence, distanceMeters float64, age time.Duration) float64 {
	var base float64
	switch confidence {
	case models.ConfidenceVerified:
		base = 1.0
	case models.ConfidenceSelfReported:
		base = 0.7
	default:
		base = 0.3
	}

	proximity := 1.0 / (1.0 + distanceMeters/1000.0)

	recency := 0.0
	if age >= 0 {
		recency = 1.0 / (1.0 + age.Hours())
	}

	return 0.5*base + 0.3*proximity + 0.2*recency
}
