package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medicine-locator/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetStores retrieves all registered stores, active and inactive.
func (s *Store) GetStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := s.db.SelectContext(ctx, &stores, "SELECT * FROM stores ORDER BY id")
	return stores, err
}

// GetStoreByID retrieves a store by ID
func (s *Store) GetStoreByID(ctx context.Context, id string) (*models.Store, error) {
	var st models.Store
	err := s.db.GetContext(ctx, &st, "SELECT * FROM stores WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateStore registers a new store
func (s *Store) CreateStore(ctx context.Context, st *models.Store) error {
	query := `
		INSERT INTO stores (id, name, latitude, longitude, operating_hours, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	return s.db.GetContext(ctx, st, query,
		st.ID, st.Name, st.Latitude, st.Longitude, st.OperatingHours, st.Active)
}

// SetStoreActive flips the active flag. Stores are never deleted so
// historical queries stay reproducible.
func (s *Store) SetStoreActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE stores SET active = $1, updated_at = NOW() WHERE id = $2",
		active, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("store not found: %s", id)
	}
	return nil
}

// GetMedicines retrieves the medicine catalog
func (s *Store) GetMedicines(ctx context.Context) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := s.db.SelectContext(ctx, &medicines, "SELECT * FROM medicines ORDER BY id")
	return medicines, err
}

// GetMedicineAliases retrieves all catalog aliases
func (s *Store) GetMedicineAliases(ctx context.Context) ([]models.MedicineAlias, error) {
	var aliases []models.MedicineAlias
	err := s.db.SelectContext(ctx, &aliases, "SELECT * FROM medicine_aliases ORDER BY alias")
	return aliases, err
}
