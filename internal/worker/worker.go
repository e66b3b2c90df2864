package worker

import (
	"context"
	"errors"
	"log"

	"medicine-locator/internal/broker"
	"medicine-locator/internal/geo"
	"medicine-locator/internal/inventory"
	"medicine-locator/internal/models"
	"medicine-locator/internal/store"
	"medicine-locator/internal/util"

	"go.uber.org/zap"
)

// InventoryWorker applies the inventory update feed: commit to the
// in-memory store, write through to Postgres, invalidate cached
// rankings for the medicine.
type InventoryWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	inventory    *inventory.Store
	db           *store.Store
	cache        ResultInvalidator
	logger       *zap.Logger
}

// ResultInvalidator is the subset of the search cache the worker needs.
type ResultInvalidator interface {
	Invalidate(ctx context.Context, medicineID string)
}

// NewInventoryWorker creates a new inventory worker. cache may be nil.
func NewInventoryWorker(consumer *broker.Consumer, inv *inventory.Store, db *store.Store, cache ResultInvalidator) *InventoryWorker {
	w := &InventoryWorker{
		consumer:  consumer,
		inventory: inv,
		db:        db,
		cache:     cache,
		logger:    util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnInventoryUpdated(w.handleInventoryUpdated)
	w.eventHandler = eventHandler

	return w
}

func (w *InventoryWorker) handleInventoryUpdated(ctx context.Context, event *models.InventoryUpdatedEvent) error {
	entry := models.InventoryEntry{
		StoreID:     event.StoreID,
		MedicineID:  event.MedicineID,
		Quantity:    event.Quantity,
		Confidence:  event.Confidence,
		LastUpdated: event.ReportedAt,
	}

	if err := w.inventory.Apply(entry); err != nil {
		if errors.Is(err, inventory.ErrStaleUpdate) {
			util.InventoryUpdatesFailedTotal.WithLabelValues("out_of_order").Inc()
			w.logger.Debug("Skipping out-of-order inventory update",
				zap.String("store_id", event.StoreID),
				zap.String("medicine_id", event.MedicineID))
			return nil
		}
		util.InventoryUpdatesFailedTotal.WithLabelValues("invalid").Inc()
		w.logger.Warn("Rejected inventory update",
			zap.String("store_id", event.StoreID),
			zap.String("medicine_id", event.MedicineID),
			zap.Error(err))
		return nil
	}

	if err := w.db.UpsertInventoryEntry(ctx, &entry); err != nil {
		util.InventoryUpdatesFailedTotal.WithLabelValues("db_error").Inc()
		w.logger.Error("Failed to persist inventory update",
			zap.String("store_id", event.StoreID),
			zap.String("medicine_id", event.MedicineID),
			zap.Error(err))
		return err
	}

	if w.cache != nil {
		w.cache.Invalidate(ctx, event.MedicineID)
	}

	util.InventoryUpdatesTotal.Inc()
	return nil
}

// Start starts the worker
func (w *InventoryWorker) Start(ctx context.Context) error {
	log.Println("Starting inventory worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *InventoryWorker) Stop() error {
	log.Println("Stopping inventory worker...")
	return w.consumer.Close()
}

// StoreWorker applies the store registry feed to the spatial index and
// the active flag in Postgres.
type StoreWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	geoIndex     *geo.Index
	db           *store.Store
	logger       *zap.Logger
}

// NewStoreWorker creates a new store registry worker
func NewStoreWorker(consumer *broker.Consumer, geoIndex *geo.Index, db *store.Store) *StoreWorker {
	w := &StoreWorker{
		consumer: consumer,
		geoIndex: geoIndex,
		db:       db,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnStoreStatus(w.handleStoreStatus)
	w.eventHandler = eventHandler

	return w
}

func (w *StoreWorker) handleStoreStatus(ctx context.Context, event *models.StoreStatusEvent) error {
	if event.Active {
		w.geoIndex.Insert(event.StoreID, event.Latitude, event.Longitude)
		util.StoreEventsTotal.WithLabelValues("activated").Inc()
	} else {
		w.geoIndex.Remove(event.StoreID)
		util.StoreEventsTotal.WithLabelValues("deactivated").Inc()
	}

	if err := w.db.SetStoreActive(ctx, event.StoreID, event.Active); err != nil {
		w.logger.Error("Failed to persist store status",
			zap.String("store_id", event.StoreID),
			zap.Bool("active", event.Active),
			zap.Error(err))
	}

	w.logger.Info("Store status applied",
		zap.String("store_id", event.StoreID),
		zap.Bool("active", event.Active))
	return nil
}

// Start starts the worker
func (w *StoreWorker) Start(ctx context.Context) error {
	log.Println("Starting store registry worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StoreWorker) Stop() error {
	log.Println("Stopping store registry worker...")
	return w.consumer.Close()
}
