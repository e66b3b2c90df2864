package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"medicine-locator/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes the two collaborator feeds: inventory updates
// from the stock upload pipeline and store registry status changes.
type EventPublisher struct {
	inventoryProducer *Producer
	storeProducer     *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(inventoryProducer, storeProducer *Producer) *EventPublisher {
	return &EventPublisher{
		inventoryProducer: inventoryProducer,
		storeProducer:     storeProducer,
	}
}

// PublishInventoryUpdated publishes an InventoryUpdated event. Events
// for the same (store, medicine) key share a partition key so they are
// consumed in order.
func (ep *EventPublisher) PublishInventoryUpdated(ctx context.Context, event *models.InventoryUpdatedEvent) error {
	key := fmt.Sprintf("%s:%s", event.StoreID, event.MedicineID)
	return ep.inventoryProducer.PublishEvent(ctx, key, event)
}

// PublishStoreStatus publishes a store activation or deactivation event.
func (ep *EventPublisher) PublishStoreStatus(ctx context.Context, event *models.StoreStatusEvent) error {
	return ep.storeProducer.PublishEvent(ctx, event.StoreID, event)
}

// EventHandler routes incoming feed events to registered handlers.
type EventHandler struct {
	onInventoryUpdated func(context.Context, *models.InventoryUpdatedEvent) error
	onStoreStatus      func(context.Context, *models.StoreStatusEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnInventoryUpdated registers a handler for InventoryUpdated events
func (eh *EventHandler) OnInventoryUpdated(handler func(context.Context, *models.InventoryUpdatedEvent) error) {
	eh.onInventoryUpdated = handler
}

// OnStoreStatus registers a handler for store status events
func (eh *EventHandler) OnStoreStatus(handler func(context.Context, *models.StoreStatusEvent) error) {
	eh.onStoreStatus = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeInventoryUpdated:
		if eh.onInventoryUpdated != nil {
			var event models.InventoryUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal InventoryUpdated event: %w", err)
			}
			return eh.onInventoryUpdated(ctx, &event)
		}

	case models.EventTypeStoreActivated, models.EventTypeStoreDeactivated:
		if eh.onStoreStatus != nil {
			var event models.StoreStatusEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal store status event: %w", err)
			}
			return eh.onStoreStatus(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
