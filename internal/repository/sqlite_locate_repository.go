package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"locate-service/internal/database"
	"locate-service/internal/domain"

	"github.com/shopspring/decimal"
)

// SQLiteLocateRepository persists locate requests with their approval and
// rejection records. Each Save runs in its own transaction.
type SQLiteLocateRepository struct {
	db *database.SingleWriterDB
}

// NewSQLiteLocateRepository creates a new SQLite locate repository
func NewSQLiteLocateRepository(db *database.SingleWriterDB) *SQLiteLocateRepository {
	return &SQLiteLocateRepository{db: db}
}

const selectLocates = `
	SELECT r.request_id, r.security_id, r.client_id, r.requestor_id, r.aggregation_unit_id, r.market,
	       r.requested_quantity, r.status, r.request_timestamp, r.business_date, r.calculation_status,
	       r.version, r.created_at, r.updated_at,
	       a.approval_id, a.approved_quantity, a.decrement_quantity, a.approved_by, a.security_temperature,
	       a.borrow_rate, a.is_auto_approved, a.approval_timestamp, a.expiry_date,
	       j.rejection_id, j.rejection_reason, j.rejected_by, j.is_auto_rejected, j.rejection_timestamp
	FROM locate_requests r
	LEFT JOIN locate_approvals a ON a.request_id = r.request_id
	LEFT JOIN locate_rejections j ON j.request_id = r.request_id
`

// FindByRequestID finds a locate request by id
func (r *SQLiteLocateRepository) FindByRequestID(ctx context.Context, requestID string) (*domain.LocateRequest, error) {
	reqs, err := r.query(ctx, selectLocates+` WHERE r.request_id = ?`, requestID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, &domain.NotFoundError{RequestID: requestID}
	}
	return reqs[0], nil
}

func (r *SQLiteLocateRepository) FindPendingLocates(ctx context.Context) ([]*domain.LocateRequest, error) {
	return r.query(ctx, selectLocates+` WHERE r.status = ? ORDER BY r.request_timestamp`, string(domain.StatusPending))
}

func (r *SQLiteLocateRepository) FindActiveLocates(ctx context.Context, asOf time.Time) ([]*domain.LocateRequest, error) {
	return r.query(ctx, selectLocates+` WHERE r.status = ? AND a.expiry_date >= ? ORDER BY r.request_timestamp`,
		string(domain.StatusApproved), database.FormatTime(asOf))
}

func (r *SQLiteLocateRepository) FindExpiredLocates(ctx context.Context, asOf time.Time) ([]*domain.LocateRequest, error) {
	return r.query(ctx, selectLocates+` WHERE r.status = ? AND a.expiry_date < ? ORDER BY a.expiry_date`,
		string(domain.StatusApproved), database.FormatTime(asOf))
}

func (r *SQLiteLocateRepository) FindByBusinessDateAndCalculationStatus(ctx context.Context, businessDate time.Time, calculationStatus string) ([]*domain.LocateRequest, error) {
	return r.query(ctx, selectLocates+` WHERE r.business_date = ? AND r.calculation_status = ? ORDER BY r.request_timestamp`,
		database.FormatDate(businessDate), calculationStatus)
}

// Save inserts or updates a locate request with optimistic locking
func (r *SQLiteLocateRepository) Save(ctx context.Context, req *domain.LocateRequest) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return saveInTx(ctx, tx, req)
	})
	if err != nil {
		return err
	}
	req.Version++
	return nil
}

// SaveAll stores every request in a single transaction
func (r *SQLiteLocateRepository) SaveAll(ctx context.Context, reqs []*domain.LocateRequest) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, req := range reqs {
			if err := saveInTx(ctx, tx, req); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, req := range reqs {
		req.Version++
	}
	return nil
}

func saveInTx(ctx context.Context, tx *sql.Tx, req *domain.LocateRequest) error {
	if req.Version == 0 {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO locate_requests (request_id, security_id, client_id, requestor_id, aggregation_unit_id, market,
				requested_quantity, status, request_timestamp, business_date, calculation_status, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		`,
			req.RequestID, req.SecurityID, req.ClientID, req.RequestorID, req.AggregationUnitID, req.Market,
			req.RequestedQuantity.String(), string(req.Status), database.FormatTime(req.RequestTimestamp),
			database.FormatDate(req.BusinessDate), req.CalculationStatus,
			database.FormatTime(req.CreatedAt), database.FormatTime(req.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert locate request: %w", err)
		}
	} else {
		result, err := tx.ExecContext(ctx, `
			UPDATE locate_requests
			SET status = ?, calculation_status = ?, version = version + 1, updated_at = ?
			WHERE request_id = ? AND version = ?
		`,
			string(req.Status), req.CalculationStatus, database.FormatTime(req.UpdatedAt),
			req.RequestID, req.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update locate request: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return domain.ErrConcurrentModification
		}
	}

	if a := req.Approval; a != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO locate_approvals (approval_id, request_id, approved_quantity, decrement_quantity, approved_by,
				security_temperature, borrow_rate, is_auto_approved, approval_timestamp, expiry_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			a.ApprovalID, req.RequestID, a.ApprovedQuantity.String(), a.DecrementQuantity.String(), a.ApprovedBy,
			string(a.SecurityTemperature), a.BorrowRate.String(), database.BoolToInt(a.IsAutoApproved),
			database.FormatTime(a.ApprovalTimestamp), database.FormatTime(a.ExpiryDate),
		)
		if err != nil {
			return fmt.Errorf("failed to insert locate approval: %w", err)
		}
	}

	if j := req.Rejection; j != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO locate_rejections (rejection_id, request_id, rejection_reason, rejected_by, is_auto_rejected, rejection_timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			j.RejectionID, req.RequestID, j.RejectionReason, j.RejectedBy, database.BoolToInt(j.IsAutoRejected),
			database.FormatTime(j.RejectionTimestamp),
		)
		if err != nil {
			return fmt.Errorf("failed to insert locate rejection: %w", err)
		}
	}

	return nil
}

func (r *SQLiteLocateRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.LocateRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query locate requests: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.LocateRequest, 0)
	for rows.Next() {
		req, err := scanLocate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locate requests: %w", err)
	}
	return result, nil
}

func scanLocate(rows *sql.Rows) (*domain.LocateRequest, error) {
	var (
		req                                                   domain.LocateRequest
		aggregationUnit, market                               sql.NullString
		requestedQty, status, requestTS, businessDate         string
		createdAt, updatedAt                                  string
		approvalID, approvedQty, decrementQty, approvedBy     sql.NullString
		temperature, borrowRate, approvalTS, expiryDate       sql.NullString
		autoApproved, autoRejected                            sql.NullInt64
		rejectionID, rejectionReason, rejectedBy, rejectionTS sql.NullString
	)

	err := rows.Scan(
		&req.RequestID, &req.SecurityID, &req.ClientID, &req.RequestorID, &aggregationUnit, &market,
		&requestedQty, &status, &requestTS, &businessDate, &req.CalculationStatus,
		&req.Version, &createdAt, &updatedAt,
		&approvalID, &approvedQty, &decrementQty, &approvedBy, &temperature,
		&borrowRate, &autoApproved, &approvalTS, &expiryDate,
		&rejectionID, &rejectionReason, &rejectedBy, &autoRejected, &rejectionTS,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan locate request: %w", err)
	}

	p := parser{}
	req.AggregationUnitID = aggregationUnit.String
	req.Market = market.String
	req.Status = domain.LocateStatus(status)
	req.RequestedQuantity = p.decimal(requestedQty)
	req.RequestTimestamp = p.time(requestTS)
	req.BusinessDate = p.date(businessDate)
	req.CreatedAt = p.time(createdAt)
	req.UpdatedAt = p.time(updatedAt)

	if approvalID.Valid {
		req.Approval = &domain.LocateApproval{
			ApprovalID:          approvalID.String,
			RequestID:           req.RequestID,
			ApprovedQuantity:    p.decimal(approvedQty.String),
			DecrementQuantity:   p.decimal(decrementQty.String),
			ApprovedBy:          approvedBy.String,
			SecurityTemperature: domain.SecurityTemperature(temperature.String),
			BorrowRate:          p.decimal(borrowRate.String),
			IsAutoApproved:      autoApproved.Int64 == 1,
			ApprovalTimestamp:   p.time(approvalTS.String),
			ExpiryDate:          p.time(expiryDate.String),
		}
	}

	if rejectionID.Valid {
		req.Rejection = &domain.LocateRejection{
			RejectionID:        rejectionID.String,
			RequestID:          req.RequestID,
			RejectionReason:    rejectionReason.String,
			RejectedBy:         rejectedBy.String,
			IsAutoRejected:     autoRejected.Int64 == 1,
			RejectionTimestamp: p.time(rejectionTS.String),
		}
	}

	if p.err != nil {
		return nil, fmt.Errorf("corrupt locate request %s: %w", req.RequestID, p.err)
	}
	return &req, nil
}

// parser keeps the first conversion error so scanning code stays linear.
type parser struct {
	err error
}

func (p *parser) decimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil && p.err == nil {
		p.err = err
	}
	return d
}

func (p *parser) time(value string) time.Time {
	t, err := database.ParseTime(value)
	if err != nil && p.err == nil {
		p.err = err
	}
	return t
}

func (p *parser) date(value string) time.Time {
	t, err := database.ParseDate(value)
	if err != nil && p.err == nil {
		p.err = err
	}
	return t
}

var (
	_ LocateRepository = (*SQLiteLocateRepository)(nil)
	_ LocateRepository = (*InMemoryLocateRepository)(nil)
)
