package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"locate-service/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// TimeLayout is a fixed-width UTC layout so stored timestamps compare correctly as text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// DateLayout stores calendar dates (business dates).
const DateLayout = "2006-01-02"

var ErrNoRows = sql.ErrNoRows

// SingleWriterDB implements Single Writer Principle for SQLite
// Only one writer can access the database at a time
type SingleWriterDB struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex // Mutex to ensure single writer
}

// NewSingleWriterDB creates a new database connection with single writer principle
func NewSingleWriterDB(cfg *config.Config, logger *zap.Logger) (*SingleWriterDB, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.SQLitePath+"?_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	swdb := &SingleWriterDB{
		db:     db,
		logger: logger,
	}

	// Initialize schema
	if err := swdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("SQLite database ready", zap.String("path", cfg.SQLitePath))

	return swdb, nil
}

// initSchema creates the database schema
func (swdb *SingleWriterDB) initSchema() error {
	schema := `
	-- Locate requests: one row per request, terminal rows are kept for audit
	CREATE TABLE IF NOT EXISTS locate_requests (
		request_id TEXT PRIMARY KEY,
		security_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		requestor_id TEXT NOT NULL,
		aggregation_unit_id TEXT,
		market TEXT,
		requested_quantity TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		request_timestamp TEXT NOT NULL,
		business_date TEXT NOT NULL,
		calculation_status TEXT NOT NULL DEFAULT 'PENDING',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(status IN ('PENDING', 'APPROVED', 'REJECTED', 'CANCELLED', 'EXPIRED'))
	);

	-- Locate approvals: at most one per request
	CREATE TABLE IF NOT EXISTS locate_approvals (
		approval_id TEXT PRIMARY KEY,
		request_id TEXT UNIQUE NOT NULL,
		approved_quantity TEXT NOT NULL,
		decrement_quantity TEXT NOT NULL,
		approved_by TEXT NOT NULL,
		security_temperature TEXT,
		borrow_rate TEXT NOT NULL DEFAULT '0',
		is_auto_approved INTEGER NOT NULL DEFAULT 0,
		approval_timestamp TEXT NOT NULL,
		expiry_date TEXT NOT NULL,
		FOREIGN KEY (request_id) REFERENCES locate_requests(request_id),
		CHECK(is_auto_approved IN (0, 1))
	);

	-- Locate rejections: at most one per request
	CREATE TABLE IF NOT EXISTS locate_rejections (
		rejection_id TEXT PRIMARY KEY,
		request_id TEXT UNIQUE NOT NULL,
		rejection_reason TEXT NOT NULL,
		rejected_by TEXT NOT NULL,
		is_auto_rejected INTEGER NOT NULL DEFAULT 0,
		rejection_timestamp TEXT NOT NULL,
		FOREIGN KEY (request_id) REFERENCES locate_requests(request_id),
		CHECK(is_auto_rejected IN (0, 1))
	);

	-- Workflow rules: externally managed, read by the rule provider
	CREATE TABLE IF NOT EXISTS workflow_rules (
		rule_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		market TEXT NOT NULL,
		rule_type TEXT NOT NULL DEFAULT 'LOCATE',
		priority INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		conditions TEXT NOT NULL DEFAULT '[]',
		action TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(active IN (0, 1))
	);

	-- Inventory availability snapshot per security
	CREATE TABLE IF NOT EXISTS inventory_availability (
		security_id TEXT PRIMARY KEY,
		available_quantity TEXT NOT NULL DEFAULT '0',
		remaining_availability TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	-- Applied decrements, keyed by approval so redelivered events are no-ops
	CREATE TABLE IF NOT EXISTS inventory_decrements (
		approval_id TEXT PRIMARY KEY,
		security_id TEXT NOT NULL,
		request_id TEXT NOT NULL,
		quantity TEXT NOT NULL,
		applied_at TEXT NOT NULL
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_locate_requests_status ON locate_requests(status);
	CREATE INDEX IF NOT EXISTS idx_locate_requests_business_date ON locate_requests(business_date, calculation_status);
	CREATE INDEX IF NOT EXISTS idx_locate_requests_client_security ON locate_requests(client_id, security_id);
	CREATE INDEX IF NOT EXISTS idx_locate_approvals_expiry ON locate_approvals(expiry_date);
	CREATE INDEX IF NOT EXISTS idx_workflow_rules_market ON workflow_rules(market, rule_type, active);
	`

	_, err := swdb.db.Exec(schema)
	return err
}

// WithTx runs fn inside a write transaction (Single Writer). The transaction
// commits when fn returns nil and rolls back otherwise.
func (swdb *SingleWriterDB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	swdb.mu.Lock()
	defer swdb.mu.Unlock()

	tx, err := swdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			swdb.logger.Warn("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// QueryContext executes a read query
func (swdb *SingleWriterDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return swdb.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row
func (swdb *SingleWriterDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return swdb.db.QueryRowContext(ctx, query, args...)
}

// Ping checks the database connection
func (swdb *SingleWriterDB) Ping() error {
	return swdb.db.Ping()
}

// Close closes the database connection
func (swdb *SingleWriterDB) Close() error {
	return swdb.db.Close()
}

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a value written by FormatTime.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(TimeLayout, value)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a value written by FormatDate.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// BoolToInt converts a bool to the 0/1 representation used by CHECK constraints.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
