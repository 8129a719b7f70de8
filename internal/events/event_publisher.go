package events

import (
	"context"
	"sync"
	"time"

	"locate-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Locate lifecycle event types
const (
	LocateCreated   = "LocateCreated"
	LocateApproved  = "LocateApproved"
	LocateRejected  = "LocateRejected"
	LocateCancelled = "LocateCancelled"
	LocateExpired   = "LocateExpired"
)

// InventoryDecrement asks the inventory owner to consume availability for an approval.
const InventoryDecrement = "InventoryDecrement"

// EventPublisher defines the interface for publishing domain events.
// Publishing is fire-and-forget from the workflow's point of view: a
// returned error is logged, never used to roll back a persisted transition.
type EventPublisher interface {
	PublishLocateEvent(ctx context.Context, event LocateEvent) error
	PublishInventoryEvent(ctx context.Context, event InventoryEvent) error
}

// LocateEvent describes a locate request state change
type LocateEvent struct {
	EventID           string           `json:"eventId"`
	EventType         string           `json:"eventType"`
	RequestID         string           `json:"requestId"`
	SecurityID        string           `json:"securityId"`
	ClientID          string           `json:"clientId"`
	Market            string           `json:"market,omitempty"`
	Status            string           `json:"status"`
	RequestedQuantity decimal.Decimal  `json:"requestedQuantity"`
	ApprovedQuantity  *decimal.Decimal `json:"approvedQuantity,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	OccurredAt        time.Time        `json:"occurredAt"`
}

// InventoryEvent carries the decrement of an approval
type InventoryEvent struct {
	EventID           string          `json:"eventId"`
	EventType         string          `json:"eventType"`
	SecurityID        string          `json:"securityId"`
	RequestID         string          `json:"requestId"`
	ApprovalID        string          `json:"approvalId"`
	DecrementQuantity decimal.Decimal `json:"decrementQuantity"`
	OccurredAt        time.Time       `json:"occurredAt"`
}

// NewLocateEvent snapshots req for the given event type
func NewLocateEvent(eventType string, req *domain.LocateRequest, at time.Time) LocateEvent {
	event := LocateEvent{
		EventID:           uuid.New().String(),
		EventType:         eventType,
		RequestID:         req.RequestID,
		SecurityID:        req.SecurityID,
		ClientID:          req.ClientID,
		Market:            req.Market,
		Status:            string(req.Status),
		RequestedQuantity: req.RequestedQuantity,
		OccurredAt:        at,
	}
	if req.Approval != nil {
		approved := req.Approval.ApprovedQuantity
		event.ApprovedQuantity = &approved
	}
	if req.Rejection != nil {
		event.Reason = req.Rejection.RejectionReason
	}
	return event
}

// NewInventoryEvent builds the decrement event of an approved request
func NewInventoryEvent(req *domain.LocateRequest, at time.Time) InventoryEvent {
	return InventoryEvent{
		EventID:           uuid.New().String(),
		EventType:         InventoryDecrement,
		SecurityID:        req.SecurityID,
		RequestID:         req.RequestID,
		ApprovalID:        req.Approval.ApprovalID,
		DecrementQuantity: req.Approval.DecrementQuantity,
		OccurredAt:        at,
	}
}

// InMemoryEventPublisher records events in memory. Used when Kafka is
// unavailable and in tests.
type InMemoryEventPublisher struct {
	logger          *zap.Logger
	mu              sync.Mutex
	locateEvents    []LocateEvent
	inventoryEvents []InventoryEvent
}

func NewInMemoryEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		logger: logger,
	}
}

func (p *InMemoryEventPublisher) PublishLocateEvent(ctx context.Context, event LocateEvent) error {
	p.mu.Lock()
	p.locateEvents = append(p.locateEvents, event)
	p.mu.Unlock()

	p.logger.Info("Event published (in-memory)",
		zap.String("event_type", event.EventType),
		zap.String("request_id", event.RequestID),
	)
	return nil
}

func (p *InMemoryEventPublisher) PublishInventoryEvent(ctx context.Context, event InventoryEvent) error {
	p.mu.Lock()
	p.inventoryEvents = append(p.inventoryEvents, event)
	p.mu.Unlock()

	p.logger.Info("Event published (in-memory)",
		zap.String("event_type", event.EventType),
		zap.String("security_id", event.SecurityID),
	)
	return nil
}

// LocateEvents returns a copy of the recorded locate events
func (p *InMemoryEventPublisher) LocateEvents() []LocateEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]LocateEvent(nil), p.locateEvents...)
}

// InventoryEvents returns a copy of the recorded inventory events
func (p *InMemoryEventPublisher) InventoryEvents() []InventoryEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]InventoryEvent(nil), p.inventoryEvents...)
}

var _ EventPublisher = (*InMemoryEventPublisher)(nil)
