package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"locate-service/internal/database"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Decrement is one approval's claim on a security's availability.
type Decrement struct {
	ApprovalID string
	RequestID  string
	SecurityID string
	Quantity   decimal.Decimal
}

// SQLiteStore keeps availability snapshots in the inventory_availability table.
type SQLiteStore struct {
	db     *database.SingleWriterDB
	logger *zap.Logger
	now    func() time.Time
}

// NewSQLiteStore creates a new SQLite inventory store
func NewSQLiteStore(db *database.SingleWriterDB, logger *zap.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// GetInventory reads the current snapshot straight from the database
func (s *SQLiteStore) GetInventory(ctx context.Context, securityID string) (*Inventory, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT security_id, available_quantity, remaining_availability, version, updated_at
		FROM inventory_availability
		WHERE security_id = ?
	`, securityID)
	return scanInventory(row, securityID)
}

// Upsert replaces the snapshot for a security
func (s *SQLiteStore) Upsert(ctx context.Context, inv *Inventory) error {
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = s.now()
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_availability (security_id, available_quantity, remaining_availability, version, updated_at)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT(security_id) DO UPDATE SET
				available_quantity = excluded.available_quantity,
				remaining_availability = excluded.remaining_availability,
				version = inventory_availability.version + 1,
				updated_at = excluded.updated_at
		`, inv.SecurityID, inv.AvailableQuantity.String(), inv.RemainingAvailability.String(), database.FormatTime(inv.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to upsert inventory: %w", err)
		}
		return nil
	})
}

// ApplyDecrement subtracts d.Quantity from the security's remaining
// availability. A decrement already applied for the same approval is a no-op,
// and a decrement larger than what remains fails with
// ErrDecrementExceedsAvailability without changing anything.
func (s *SQLiteStore) ApplyDecrement(ctx context.Context, d Decrement) (*Inventory, error) {
	var updated *Inventory

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var applied int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM inventory_decrements WHERE approval_id = ?", d.ApprovalID,
		).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check applied decrements: %w", err)
		}

		current, err := scanInventory(tx.QueryRowContext(ctx, `
			SELECT security_id, available_quantity, remaining_availability, version, updated_at
			FROM inventory_availability
			WHERE security_id = ?
		`, d.SecurityID), d.SecurityID)
		if err != nil {
			return err
		}

		if applied > 0 {
			s.logger.Info("Decrement already applied",
				zap.String("approval_id", d.ApprovalID),
				zap.String("security_id", d.SecurityID),
			)
			updated = current
			return nil
		}

		if current.RemainingAvailability.LessThan(d.Quantity) {
			return fmt.Errorf("%w: security %s remaining %s, decrement %s", ErrDecrementExceedsAvailability,
				d.SecurityID, current.RemainingAvailability.String(), d.Quantity.String())
		}

		now := s.now()
		remaining := current.RemainingAvailability.Sub(d.Quantity)
		result, err := tx.ExecContext(ctx, `
			UPDATE inventory_availability
			SET remaining_availability = ?, version = version + 1, updated_at = ?
			WHERE security_id = ? AND version = ?
		`, remaining.String(), database.FormatTime(now), d.SecurityID, current.Version)
		if err != nil {
			return fmt.Errorf("failed to decrement inventory: %w", err)
		}
		if rows, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if rows == 0 {
			return fmt.Errorf("inventory for %s changed during decrement", d.SecurityID)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_decrements (approval_id, security_id, request_id, quantity, applied_at)
			VALUES (?, ?, ?, ?, ?)
		`, d.ApprovalID, d.SecurityID, d.RequestID, d.Quantity.String(), database.FormatTime(now)); err != nil {
			return fmt.Errorf("failed to record decrement: %w", err)
		}

		current.RemainingAvailability = remaining
		current.Version++
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func scanInventory(row *sql.Row, securityID string) (*Inventory, error) {
	var (
		inv                  Inventory
		available, remaining string
		updatedAt            string
	)
	err := row.Scan(&inv.SecurityID, &available, &remaining, &inv.Version, &updatedAt)
	if errors.Is(err, database.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, securityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	if inv.AvailableQuantity, err = decimal.NewFromString(available); err != nil {
		return nil, fmt.Errorf("corrupt available quantity for %s: %w", securityID, err)
	}
	if inv.RemainingAvailability, err = decimal.NewFromString(remaining); err != nil {
		return nil, fmt.Errorf("corrupt remaining availability for %s: %w", securityID, err)
	}
	if inv.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("corrupt inventory timestamp for %s: %w", securityID, err)
	}
	return &inv, nil
}

var _ Query = (*SQLiteStore)(nil)
