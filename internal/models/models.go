package models

import "time"

// Confidence classifies how trustworthy a stock report is.
type Confidence string

const (
	ConfidenceVerified     Confidence = "VERIFIED"
	ConfidenceSelfReported Confidence = "SELF_REPORTED"
	ConfidenceStale        Confidence = "STALE"
)

// Tier returns the sort rank of a confidence level; lower is more trustworthy.
func (c Confidence) Tier() int {
	switch c {
	case ConfidenceVerified:
		return 0
	case ConfidenceSelfReported:
		return 1
	default:
		return 2
	}
}

// Valid reports whether c is a confidence level accepted on the write path.
// STALE is derived at read time, never written.
func (c Confidence) Valid() bool {
	return c == ConfidenceVerified || c == ConfidenceSelfReported
}

// Store represents a registered pharmacy or store.
// Stores are deactivated, never deleted, so past queries stay reproducible.
type Store struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Latitude       float64   `db:"latitude" json:"latitude"`
	Longitude      float64   `db:"longitude" json:"longitude"`
	OperatingHours string    `db:"operating_hours" json:"operating_hours"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Medicine represents reference data from the medicine catalog.
type Medicine struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// MedicineAlias maps an alternative name to a canonical medicine ID.
type MedicineAlias struct {
	Alias      string `db:"alias" json:"alias"`
	MedicineID string `db:"medicine_id" json:"medicine_id"`
}

// InventoryEntry is the stock record for one (store, medicine) pair.
// Each update replaces the prior entry wholesale; fields are never mutated
// in place.
type InventoryEntry struct {
	StoreID     string     `db:"store_id" json:"store_id"`
	MedicineID  string     `db:"medicine_id" json:"medicine_id"`
	Quantity    int        `db:"quantity" json:"quantity"`
	Confidence  Confidence `db:"confidence" json:"confidence"`
	LastUpdated time.Time  `db:"last_updated" json:"last_updated"`
}

// GeoCandidate is a store within the search radius, before inventory
// filtering. Transient, never persisted.
type GeoCandidate struct {
	StoreID        string  `json:"store_id"`
	DistanceMeters float64 `json:"distance_meters"`
}

// MatchResult is one ranked search hit. Immutable once built.
type MatchResult struct {
	StoreID        string     `json:"store_id"`
	MedicineID     string     `json:"medicine_id"`
	Quantity       int        `json:"quantity"`
	DistanceMeters float64    `json:"distance_meters"`
	Confidence     Confidence `json:"confidence"`
	Score          float64    `json:"score"`
}

// SearchResponse is the structured result every search returns.
// It is always populated, even on timeout or degraded lookups.
type SearchResponse struct {
	Results          []MatchResult `json:"results"`
	SearchRadiusUsed float64       `json:"search_radius_used"`
	TimedOut         bool          `json:"timed_out"`
	Degraded         bool          `json:"degraded"`
}

// Query states tracked by the search orchestrator.
const (
	QueryStateStarted           = "STARTED"
	QueryStateGeoResolved       = "GEO_RESOLVED"
	QueryStateInventoryResolved = "INVENTORY_RESOLVED"
	QueryStateMatched           = "MATCHED"
	QueryStateRanked            = "RANKED"
	QueryStateDone              = "DONE"
	QueryStateTimedOut          = "TIMED_OUT"
)
