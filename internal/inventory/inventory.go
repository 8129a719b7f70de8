package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInventoryNotFound            = errors.New("inventory not found")
	ErrDecrementExceedsAvailability = errors.New("decrement exceeds remaining availability")
	// ErrInvalidEvent marks payloads that can never be applied.
	ErrInvalidEvent = errors.New("invalid inventory event")
)

// Inventory is the availability snapshot for one security.
type Inventory struct {
	SecurityID            string          `json:"security_id"`
	AvailableQuantity     decimal.Decimal `json:"available_quantity"`
	RemainingAvailability decimal.Decimal `json:"remaining_availability"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Version               int             `json:"version"`
}

// HasAvailability reports whether the security has any lendable quantity.
func (i *Inventory) HasAvailability() bool {
	return i.AvailableQuantity.IsPositive()
}

// Covers reports whether the snapshot can satisfy quantity.
func (i *Inventory) Covers(quantity decimal.Decimal) bool {
	return i.HasAvailability() && i.RemainingAvailability.GreaterThanOrEqual(quantity)
}

// Query reads availability snapshots. Implementations must not cache.
type Query interface {
	GetInventory(ctx context.Context, securityID string) (*Inventory, error)
}
