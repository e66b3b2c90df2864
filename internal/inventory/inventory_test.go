package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"medicine-locator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(storeID, medicineID string, qty int, updated time.Time) models.InventoryEntry {
	return models.InventoryEntry{
		StoreID:     storeID,
		MedicineID:  medicineID,
		Quantity:    qty,
		Confidence:  models.ConfidenceVerified,
		LastUpdated: updated,
	}
}

func TestApplyAndLookup(t *testing.T) {
	s := NewStore()
	now := time.Now()

	require.NoError(t, s.Apply(entry("store-a", "med-1", 5, now)))
	require.NoError(t, s.Apply(entry("store-b", "med-1", 0, now)))

	got, err := s.Lookup(context.Background(), []string{"store-a", "store-b", "store-c"}, "med-1")
	require.NoError(t, err)

	// store-c never reported: absent, not zero.
	require.Len(t, got, 2)
	assert.Equal(t, 5, got["store-a"].Quantity)
	assert.Equal(t, 0, got["store-b"].Quantity)
	_, reported := got["store-c"]
	assert.False(t, reported)
}

func TestLookupUnknownMedicine(t *testing.T) {
	s := NewStore()
	got, err := s.Lookup(context.Background(), []string{"store-a"}, "med-x")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyRejectsInvalidRecords(t *testing.T) {
	s := NewStore()
	now := time.Now()

	err := s.Apply(entry("store-a", "med-1", -1, now))
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	bad := entry("store-a", "med-1", 1, now)
	bad.Confidence = models.ConfidenceStale
	assert.ErrorIs(t, s.Apply(bad), ErrInvalidConfidence)

	bad.Confidence = "GUESSED"
	assert.ErrorIs(t, s.Apply(bad), ErrInvalidConfidence)
}

func TestApplyNewestWins(t *testing.T) {
	s := NewStore()
	now := time.Now()

	require.NoError(t, s.Apply(entry("store-a", "med-1", 10, now)))

	err := s.Apply(entry("store-a", "med-1", 3, now.Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrStaleUpdate)

	e, ok := s.Get("store-a", "med-1")
	require.True(t, ok)
	assert.Equal(t, 10, e.Quantity)

	// A newer report replaces the record wholesale.
	require.NoError(t, s.Apply(entry("store-a", "med-1", 3, now.Add(time.Minute))))
	e, _ = s.Get("store-a", "med-1")
	assert.Equal(t, 3, e.Quantity)
}

func TestSnapshotMedicineIsolatedFromWrites(t *testing.T) {
	s := NewStore()
	now := time.Now()
	require.NoError(t, s.Apply(entry("store-a", "med-1", 5, now)))

	snap, err := s.SnapshotMedicine(context.Background(), "med-1")
	require.NoError(t, err)

	require.NoError(t, s.Apply(entry("store-a", "med-1", 99, now.Add(time.Second))))
	require.NoError(t, s.Apply(entry("store-b", "med-1", 1, now.Add(time.Second))))

	assert.Len(t, snap, 1)
	assert.Equal(t, 5, snap["store-a"].Quantity)
}

func TestSnapshotMedicineHonorsContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SnapshotMedicine(ctx, "med-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentWritesAcrossKeys(t *testing.T) {
	s := NewStore()
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Apply(entry("store-a", "med-1", i, base.Add(time.Duration(i)*time.Millisecond)))
		}()
		go func() {
			defer wg.Done()
			_ = s.Apply(entry("store-b", "med-2", i, base.Add(time.Duration(i)*time.Millisecond)))
		}()
	}
	wg.Wait()

	// The highest timestamp wins on both keys.
	a, ok := s.Get("store-a", "med-1")
	require.True(t, ok)
	assert.Equal(t, 49, a.Quantity)

	b, ok := s.Get("store-b", "med-2")
	require.True(t, ok)
	assert.Equal(t, 49, b.Quantity)
}
