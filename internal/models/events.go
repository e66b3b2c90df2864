package models

import "time"

// Event types
const (
	EventTypeInventoryUpdated = "INVENTORY_UPDATED"
	EventTypeStoreActivated   = "STORE_ACTIVATED"
	EventTypeStoreDeactivated = "STORE_DEACTIVATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// InventoryUpdatedEvent is published by the stock upload pipeline for every
// (store, medicine) quantity report.
type InventoryUpdatedEvent struct {
	BaseEvent
	StoreID    string     `json:"store_id"`
	MedicineID string     `json:"medicine_id"`
	Quantity   int        `json:"quantity"`
	Confidence Confidence `json:"confidence"`
	ReportedAt time.Time  `json:"reported_at"`
}

// StoreStatusEvent is published by the store registry when a store is
// activated or deactivated.
type StoreStatusEvent struct {
	BaseEvent
	StoreID   string  `json:"store_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Active    bool    `json:"active"`
}
