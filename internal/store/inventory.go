package store

import (
	"context"

	"medicine-locator/internal/models"

	"github.com/jmoiron/sqlx"
)

// UpsertInventoryEntry writes through one stock record. The database row
// is replaced wholesale, matching the in-memory append-on-write model;
// an older report never overwrites a newer row.
func (s *Store) UpsertInventoryEntry(ctx context.Context, entry *models.InventoryEntry) error {
	query := `
		INSERT INTO inventory (store_id, medicine_id, quantity, confidence, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (store_id, medicine_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    confidence = EXCLUDED.confidence,
		    last_updated = EXCLUDED.last_updated
		WHERE inventory.last_updated <= EXCLUDED.last_updated`

	_, err := s.db.ExecContext(ctx, query,
		entry.StoreID, entry.MedicineID, entry.Quantity, entry.Confidence, entry.LastUpdated)
	return err
}

// GetInventoryEntries retrieves every stock record, used to hydrate the
// in-memory inventory at boot.
func (s *Store) GetInventoryEntries(ctx context.Context) ([]models.InventoryEntry, error) {
	var entries []models.InventoryEntry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM inventory ORDER BY store_id, medicine_id")
	return entries, err
}

// GetInventoryByStores retrieves stock records for a medicine at the
// given stores.
func (s *Store) GetInventoryByStores(ctx context.Context, storeIDs []string, medicineID string) ([]models.InventoryEntry, error) {
	if len(storeIDs) == 0 {
		return []models.InventoryEntry{}, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM inventory WHERE medicine_id = ? AND store_id IN (?)",
		medicineID, storeIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var entries []models.InventoryEntry
	err = s.db.SelectContext(ctx, &entries, query, args...)
	return entries, err
}
