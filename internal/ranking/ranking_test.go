package ranking

import (
	"math/rand"
	"testing"

	"medicine-locator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(storeID string, confidence models.Confidence, distance float64, qty int) models.MatchResult {
	return models.MatchResult{
		StoreID:        storeID,
		MedicineID:     "med-1",
		Quantity:       qty,
		DistanceMeters: distance,
		Confidence:     confidence,
	}
}

func storeIDs(results []models.MatchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.StoreID
	}
	return ids
}

func TestConfidenceTierDominatesDistance(t *testing.T) {
	// A stale entry at 100m ranks below a verified entry at 5km.
	got := Rank([]models.MatchResult{
		result("stale-near", models.ConfidenceStale, 100, 50),
		result("verified-far", models.ConfidenceVerified, 5000, 1),
		result("self-mid", models.ConfidenceSelfReported, 300, 10),
	})

	assert.Equal(t, []string{"verified-far", "self-mid", "stale-near"}, storeIDs(got))
}

func TestDistanceOrdersWithinTier(t *testing.T) {
	got := Rank([]models.MatchResult{
		result("b", models.ConfidenceVerified, 3000, 10),
		result("a", models.ConfidenceVerified, 1000, 3),
	})

	assert.Equal(t, []string{"a", "b"}, storeIDs(got))
}

func TestQuantityBreaksDistanceTies(t *testing.T) {
	got := Rank([]models.MatchResult{
		result("low", models.ConfidenceVerified, 1000, 2),
		result("high", models.ConfidenceVerified, 1000, 20),
	})

	assert.Equal(t, []string{"high", "low"}, storeIDs(got))
}

func TestStoreIDIsFinalTieBreak(t *testing.T) {
	got := Rank([]models.MatchResult{
		result("z", models.ConfidenceVerified, 1000, 5),
		result("a", models.ConfidenceVerified, 1000, 5),
	})

	assert.Equal(t, []string{"a", "z"}, storeIDs(got))
}

func TestRankIsDeterministic(t *testing.T) {
	base := []models.MatchResult{
		result("a", models.ConfidenceVerified, 900, 3),
		result("b", models.ConfidenceSelfReported, 100, 9),
		result("c", models.ConfidenceStale, 50, 99),
		result("d", models.ConfidenceVerified, 900, 3),
		result("e", models.ConfidenceVerified, 2500, 7),
	}

	want := Rank(base)

	// Re-ranking any permutation of the same set yields the identical
	// ordering.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.MatchResult, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		assert.Equal(t, want, Rank(shuffled))
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []models.MatchResult{
		result("z", models.ConfidenceVerified, 2000, 1),
		result("a", models.ConfidenceVerified, 1000, 1),
	}

	got := Rank(in)
	require.Equal(t, "z", in[0].StoreID)
	assert.Equal(t, "a", got[0].StoreID)
}
