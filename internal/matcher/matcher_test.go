package matcher

import (
	"testing"
	"time"

	"medicine-locator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const staleAfter = 15 * time.Minute

func TestMatchFiltersZeroQuantityAndUnreported(t *testing.T) {
	m := New(staleAfter)
	now := time.Now()

	candidates := []models.GeoCandidate{
		{StoreID: "a", DistanceMeters: 100},
		{StoreID: "b", DistanceMeters: 200},
		{StoreID: "c", DistanceMeters: 300},
	}
	entries := map[string]models.InventoryEntry{
		"a": {StoreID: "a", MedicineID: "med-1", Quantity: 0, Confidence: models.ConfidenceVerified, LastUpdated: now},
		"b": {StoreID: "b", MedicineID: "med-1", Quantity: 5, Confidence: models.ConfidenceVerified, LastUpdated: now},
		// "c" never reported med-1: dropped, not assumed to be zero.
	}

	got := m.Match(candidates, entries, now)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].StoreID)
	assert.Equal(t, 5, got[0].Quantity)
	assert.Equal(t, 200.0, got[0].DistanceMeters)
}

func TestMatchDerivesStaleConfidence(t *testing.T) {
	m := New(staleAfter)
	now := time.Now()

	entries := map[string]models.InventoryEntry{
		"fresh": {StoreID: "fresh", MedicineID: "med-1", Quantity: 2, Confidence: models.ConfidenceVerified, LastUpdated: now.Add(-time.Minute)},
		"old":   {StoreID: "old", MedicineID: "med-1", Quantity: 2, Confidence: models.ConfidenceVerified, LastUpdated: now.Add(-time.Hour)},
	}
	candidates := []models.GeoCandidate{
		{StoreID: "fresh", DistanceMeters: 100},
		{StoreID: "old", DistanceMeters: 100},
	}

	got := m.Match(candidates, entries, now)
	require.Len(t, got, 2)

	byStore := map[string]models.MatchResult{}
	for _, r := range got {
		byStore[r.StoreID] = r
	}
	assert.Equal(t, models.ConfidenceVerified, byStore["fresh"].Confidence)
	assert.Equal(t, models.ConfidenceStale, byStore["old"].Confidence)
}

func TestMatchKeepsSelfReportedWithinWindow(t *testing.T) {
	m := New(staleAfter)
	now := time.Now()

	entries := map[string]models.InventoryEntry{
		"a": {StoreID: "a", MedicineID: "med-1", Quantity: 1, Confidence: models.ConfidenceSelfReported, LastUpdated: now.Add(-5 * time.Minute)},
	}
	got := m.Match([]models.GeoCandidate{{StoreID: "a", DistanceMeters: 50}}, entries, now)

	require.Len(t, got, 1)
	assert.Equal(t, models.ConfidenceSelfReported, got[0].Confidence)
}

func TestScoreOrdersByTrust(t *testing.T) {
	m := New(staleAfter)
	now := time.Now()

	entries := map[string]models.InventoryEntry{
		"verified": {StoreID: "verified", MedicineID: "med-1", Quantity: 1, Confidence: models.ConfidenceVerified, LastUpdated: now},
		"stale":    {StoreID: "stale", MedicineID: "med-1", Quantity: 1, Confidence: models.ConfidenceVerified, LastUpdated: now.Add(-2 * time.Hour)},
	}
	candidates := []models.GeoCandidate{
		{StoreID: "verified", DistanceMeters: 5000},
		{StoreID: "stale", DistanceMeters: 100},
	}

	got := m.Match(candidates, entries, now)
	require.Len(t, got, 2)

	byStore := map[string]models.MatchResult{}
	for _, r := range got {
		byStore[r.StoreID] = r
	}
	assert.Greater(t, byStore["verified"].Score, byStore["stale"].Score)
}

func TestMatchEmptyInputs(t *testing.T) {
	m := New(staleAfter)
	now := time.Now()

	assert.Empty(t, m.Match(nil, map[string]models.InventoryEntry{}, now))
	assert.Empty(t, m.Match([]models.GeoCandidate{{StoreID: "a"}}, map[string]models.InventoryEntry{}, now))
}
