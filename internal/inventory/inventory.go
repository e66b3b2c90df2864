// Package inventory holds the in-memory stock records the matcher reads.
//
// Records are grouped into per-medicine buckets with independent locks.
// A write replaces the whole record for its (store, medicine) key, so a
// concurrent reader sees either the old record or the new one, never a
// mix of fields. There is no lock shared across medicines.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"medicine-locator/internal/models"
)

// ErrStaleUpdate is returned when an update event carries an older
// timestamp than the committed record. The newer record wins.
var ErrStaleUpdate = errors.New("update older than committed record")

// ErrNegativeQuantity is returned for updates with quantity < 0.
var ErrNegativeQuantity = errors.New("quantity must be non-negative")

// ErrInvalidConfidence is returned for updates that carry a confidence
// level not accepted on the write path.
var ErrInvalidConfidence = errors.New("invalid confidence level")

type bucket struct {
	mu      sync.RWMutex
	entries map[string]models.InventoryEntry // keyed by store ID
}

// Store is the concurrent-safe inventory component.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]*bucket // keyed by medicine ID
}

// NewStore creates an empty inventory store.
func NewStore() *Store {
	return &Store{buckets: make(map[string]*bucket)}
}

// Apply commits a stock record. Updates for the same (store, medicine)
// key serialize on the medicine bucket; unrelated medicines update
// independently. The most recent ReportedAt wins.
func (s *Store) Apply(entry models.InventoryEntry) error {
	if entry.Quantity < 0 {
		return fmt.Errorf("%w: store=%s medicine=%s quantity=%d",
			ErrNegativeQuantity, entry.StoreID, entry.MedicineID, entry.Quantity)
	}
	if !entry.Confidence.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidConfidence, entry.Confidence)
	}

	b := s.bucket(entry.MedicineID)

	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.entries[entry.StoreID]; ok && prev.LastUpdated.After(entry.LastUpdated) {
		return ErrStaleUpdate
	}
	b.entries[entry.StoreID] = entry
	return nil
}

// Lookup returns the committed entries for the given stores. Stores that
// never reported the medicine are absent from the map, which is distinct
// from a reported quantity of zero.
func (s *Store) Lookup(ctx context.Context, storeIDs []string, medicineID string) (map[string]models.InventoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	b, ok := s.buckets[medicineID]
	s.mu.RUnlock()
	if !ok {
		return map[string]models.InventoryEntry{}, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]models.InventoryEntry, len(storeIDs))
	for _, id := range storeIDs {
		if e, ok := b.entries[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

// SnapshotMedicine copies every committed entry for a medicine. A query
// takes one snapshot at start and joins all radius attempts against it,
// so concurrent stock updates never interleave mid-computation.
func (s *Store) SnapshotMedicine(ctx context.Context, medicineID string) (map[string]models.InventoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	b, ok := s.buckets[medicineID]
	s.mu.RUnlock()
	if !ok {
		return map[string]models.InventoryEntry{}, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]models.InventoryEntry, len(b.entries))
	for id, e := range b.entries {
		out[id] = e
	}
	return out, nil
}

// Get returns the committed entry for one (store, medicine) key.
func (s *Store) Get(storeID, medicineID string) (models.InventoryEntry, bool) {
	s.mu.RLock()
	b, ok := s.buckets[medicineID]
	s.mu.RUnlock()
	if !ok {
		return models.InventoryEntry{}, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[storeID]
	return e, ok
}

func (s *Store) bucket(medicineID string) *bucket {
	s.mu.RLock()
	b, ok := s.buckets[medicineID]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.buckets[medicineID]; ok {
		return b
	}
	b = &bucket{entries: make(map[string]models.InventoryEntry)}
	s.buckets[medicineID] = b
	return b
}
