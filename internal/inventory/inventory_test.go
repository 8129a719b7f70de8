package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"locate-service/internal/config"
	"locate-service/internal/database"
	"locate-service/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := &config.Config{SQLitePath: filepath.Join(t.TempDir(), "inventory.db")}
	db, err := database.NewSingleWriterDB(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db, zap.NewNop())
}

func seed(t *testing.T, store *SQLiteStore, securityID, available, remaining string) {
	t.Helper()
	require.NoError(t, store.Upsert(context.Background(), &Inventory{
		SecurityID:            securityID,
		AvailableQuantity:     decimal.RequireFromString(available),
		RemainingAvailability: decimal.RequireFromString(remaining),
	}))
}

func TestInventory_Covers(t *testing.T) {
	inv := &Inventory{
		AvailableQuantity:     decimal.NewFromInt(5000),
		RemainingAvailability: decimal.NewFromInt(1000),
	}

	assert.True(t, inv.HasAvailability())
	assert.True(t, inv.Covers(decimal.NewFromInt(1000)))
	assert.False(t, inv.Covers(decimal.RequireFromString("1000.01")))

	empty := &Inventory{RemainingAvailability: decimal.NewFromInt(1000)}
	assert.False(t, empty.HasAvailability())
	assert.False(t, empty.Covers(decimal.NewFromInt(1)))
}

func TestSQLiteStore_GetInventory(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "AAPL", "5000", "1200.5")

	inv, err := store.GetInventory(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", inv.SecurityID)
	assert.True(t, decimal.NewFromInt(5000).Equal(inv.AvailableQuantity))
	assert.True(t, decimal.RequireFromString("1200.5").Equal(inv.RemainingAvailability))
	assert.Equal(t, 1, inv.Version)
}

func TestSQLiteStore_GetInventory_NotFound(t *testing.T) {
	_, err := newTestStore(t).GetInventory(context.Background(), "MISSING")

	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

func TestSQLiteStore_UpsertBumpsVersion(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "AAPL", "10", "10")
	seed(t, store, "AAPL", "20", "15")

	inv, err := store.GetInventory(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, 2, inv.Version)
	assert.True(t, decimal.NewFromInt(15).Equal(inv.RemainingAvailability))
}

func TestSQLiteStore_ApplyDecrement(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "AAPL", "5000", "1000")
	ctx := context.Background()

	inv, err := store.ApplyDecrement(ctx, Decrement{ApprovalID: "A-1", RequestID: "R-1", SecurityID: "AAPL", Quantity: decimal.NewFromInt(200)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(inv.RemainingAvailability))

	stored, err := store.GetInventory(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(stored.RemainingAvailability))
	assert.True(t, decimal.NewFromInt(5000).Equal(stored.AvailableQuantity))
	assert.Equal(t, 2, stored.Version)
}

func TestSQLiteStore_ApplyDecrement_IsIdempotentPerApproval(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "AAPL", "5000", "1000")
	ctx := context.Background()
	d := Decrement{ApprovalID: "A-1", RequestID: "R-1", SecurityID: "AAPL", Quantity: decimal.NewFromInt(200)}

	_, err := store.ApplyDecrement(ctx, d)
	require.NoError(t, err)
	inv, err := store.ApplyDecrement(ctx, d)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(800).Equal(inv.RemainingAvailability))
}

func TestSQLiteStore_ApplyDecrement_RefusesToGoNegative(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "AAPL", "5000", "100")
	ctx := context.Background()

	_, err := store.ApplyDecrement(ctx, Decrement{ApprovalID: "A-1", SecurityID: "AAPL", Quantity: decimal.NewFromInt(101)})
	assert.ErrorIs(t, err, ErrDecrementExceedsAvailability)

	stored, err := store.GetInventory(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(stored.RemainingAvailability))
}

func TestSQLiteStore_ApplyDecrement_UnknownSecurity(t *testing.T) {
	_, err := newTestStore(t).ApplyDecrement(context.Background(), Decrement{ApprovalID: "A-1", SecurityID: "NOPE", Quantity: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

// MockDecrementStore is a mock implementation of DecrementStore
type MockDecrementStore struct {
	mock.Mock
}

func (m *MockDecrementStore) ApplyDecrement(ctx context.Context, d Decrement) (*Inventory, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Inventory), args.Error(1)
}

func decrementPayload(t *testing.T, qty string) []byte {
	t.Helper()
	data, err := json.Marshal(events.InventoryEvent{
		EventID:           "E-1",
		EventType:         events.InventoryDecrement,
		SecurityID:        "AAPL",
		RequestID:         "R-1",
		ApprovalID:        "A-1",
		DecrementQuantity: decimal.RequireFromString(qty),
		OccurredAt:        time.Now(),
	})
	require.NoError(t, err)
	return data
}

func TestDecrementProcessor_AppliesDecrement(t *testing.T) {
	store := new(MockDecrementStore)
	ctx := context.Background()
	store.On("ApplyDecrement", ctx, mock.MatchedBy(func(d Decrement) bool {
		return d.ApprovalID == "A-1" && d.SecurityID == "AAPL" && d.Quantity.Equal(decimal.NewFromInt(200))
	})).Return(&Inventory{SecurityID: "AAPL", RemainingAvailability: decimal.NewFromInt(800)}, nil)

	processor := NewDecrementProcessor(store, zap.NewNop())
	err := processor.ProcessEvent(ctx, events.InventoryDecrement, decrementPayload(t, "200"))

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestDecrementProcessor_PropagatesStoreError(t *testing.T) {
	store := new(MockDecrementStore)
	ctx := context.Background()
	store.On("ApplyDecrement", ctx, mock.Anything).Return(nil, ErrDecrementExceedsAvailability)

	processor := NewDecrementProcessor(store, zap.NewNop())
	err := processor.ProcessEvent(ctx, events.InventoryDecrement, decrementPayload(t, "200"))

	assert.True(t, errors.Is(err, ErrDecrementExceedsAvailability))
}

func TestDecrementProcessor_RejectsBadEvents(t *testing.T) {
	store := new(MockDecrementStore)
	processor := NewDecrementProcessor(store, zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, processor.ProcessEvent(ctx, "LocateApproved", decrementPayload(t, "1")), ErrInvalidEvent)
	assert.ErrorIs(t, processor.ProcessEvent(ctx, events.InventoryDecrement, []byte("{not json")), ErrInvalidEvent)
	assert.ErrorIs(t, processor.ProcessEvent(ctx, events.InventoryDecrement, decrementPayload(t, "0")), ErrInvalidEvent)

	store.AssertNotCalled(t, "ApplyDecrement", mock.Anything, mock.Anything)
}
