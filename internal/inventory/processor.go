package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"locate-service/internal/events"

	"go.uber.org/zap"
)

// DecrementStore applies approval decrements to availability.
type DecrementStore interface {
	ApplyDecrement(ctx context.Context, d Decrement) (*Inventory, error)
}

// DecrementProcessor applies InventoryEvent payloads consumed from Kafka.
type DecrementProcessor struct {
	store  DecrementStore
	logger *zap.Logger
}

// NewDecrementProcessor creates a new decrement processor
func NewDecrementProcessor(store DecrementStore, logger *zap.Logger) *DecrementProcessor {
	return &DecrementProcessor{
		store:  store,
		logger: logger,
	}
}

// ProcessEvent processes a single event
func (p *DecrementProcessor) ProcessEvent(ctx context.Context, eventType string, eventData []byte) error {
	switch eventType {
	case events.InventoryDecrement:
		return p.processDecrement(ctx, eventData)
	default:
		return fmt.Errorf("%w: unknown event type %s", ErrInvalidEvent, eventType)
	}
}

func (p *DecrementProcessor) processDecrement(ctx context.Context, eventData []byte) error {
	var event events.InventoryEvent
	if err := json.Unmarshal(eventData, &event); err != nil {
		return fmt.Errorf("%w: failed to unmarshal event: %v", ErrInvalidEvent, err)
	}
	if event.SecurityID == "" || event.ApprovalID == "" {
		return fmt.Errorf("%w %s: missing security or approval id", ErrInvalidEvent, event.EventID)
	}
	if !event.DecrementQuantity.IsPositive() {
		return fmt.Errorf("%w %s: quantity %s", ErrInvalidEvent, event.EventID, event.DecrementQuantity.String())
	}

	inv, err := p.store.ApplyDecrement(ctx, Decrement{
		ApprovalID: event.ApprovalID,
		RequestID:  event.RequestID,
		SecurityID: event.SecurityID,
		Quantity:   event.DecrementQuantity,
	})
	if err != nil {
		return fmt.Errorf("failed to apply decrement: %w", err)
	}

	p.logger.Info("Inventory decremented",
		zap.String("security_id", event.SecurityID),
		zap.String("approval_id", event.ApprovalID),
		zap.String("decrement", event.DecrementQuantity.String()),
		zap.String("remaining", inv.RemainingAvailability.String()),
	)
	return nil
}
