package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locate-service/internal/commands"
	"locate-service/internal/domain"
	"locate-service/internal/events"
	"locate-service/internal/inventory"
	"locate-service/internal/repository"
	"locate-service/internal/rules"
	"locate-service/internal/settlement"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RejectionReasonRuleRejected is used when a rejecting rule carries no reason.
const RejectionReasonRuleRejected = "RULE_REJECTED"

// LocateService owns the locate request lifecycle. Every state change is
// persisted before its events are published; publish failures are logged and
// do not undo the persisted change.
type LocateService struct {
	repo      repository.LocateRepository
	rules     rules.Provider
	publisher events.EventPublisher
	inventory inventory.Query
	calendar  *settlement.Calendar
	logger    *zap.Logger
	now       func() time.Time
}

// NewLocateService creates a new locate service
func NewLocateService(
	repo repository.LocateRepository,
	ruleProvider rules.Provider,
	publisher events.EventPublisher,
	inventoryQuery inventory.Query,
	calendar *settlement.Calendar,
	logger *zap.Logger,
) *LocateService {
	return &LocateService{
		repo:      repo,
		rules:     ruleProvider,
		publisher: publisher,
		inventory: inventoryQuery,
		calendar:  calendar,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source
func (s *LocateService) WithClock(now func() time.Time) *LocateService {
	s.now = now
	return s
}

// CreateLocateRequest validates and persists a new PENDING request
func (s *LocateService) CreateLocateRequest(ctx context.Context, cmd commands.CreateLocateCommand) (*domain.LocateRequest, error) {
	now := s.now()
	req := &domain.LocateRequest{
		SecurityID:        cmd.SecurityID,
		ClientID:          cmd.ClientID,
		RequestorID:       cmd.RequestorID,
		AggregationUnitID: cmd.AggregationUnitID,
		Market:            cmd.Market,
		RequestedQuantity: cmd.RequestedQuantity,
		RequestTimestamp:  now,
	}
	req.BusinessDate = s.calendar.DateIn(now, cmd.Market)
	req.Normalize(now)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save locate request: %w", err)
	}

	s.logger.Info("Locate request created",
		zap.String("request_id", req.RequestID),
		zap.String("security_id", req.SecurityID),
		zap.String("client_id", req.ClientID),
		zap.String("quantity", req.RequestedQuantity.String()),
	)

	s.publishLocateEvent(ctx, events.LocateCreated, req)
	return req, nil
}

// GetLocateRequest returns a request by id
func (s *LocateService) GetLocateRequest(ctx context.Context, requestID string) (*domain.LocateRequest, error) {
	return s.repo.FindByRequestID(ctx, requestID)
}

// ListPendingLocates returns requests awaiting a decision
func (s *LocateService) ListPendingLocates(ctx context.Context) ([]*domain.LocateRequest, error) {
	return s.repo.FindPendingLocates(ctx)
}

// ListActiveLocates returns approved requests whose approval has not lapsed
func (s *LocateService) ListActiveLocates(ctx context.Context) ([]*domain.LocateRequest, error) {
	return s.repo.FindActiveLocates(ctx, s.now())
}

// ProcessAutoApproval runs the market's rules against a PENDING request.
// It returns true when a rule decided the request and false when the request
// needs manual review, in which case nothing is changed.
func (s *LocateService) ProcessAutoApproval(ctx context.Context, requestID string) (bool, error) {
	req, err := s.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return false, err
	}
	if req.Status != domain.StatusPending {
		return false, &domain.IllegalStateError{RequestID: req.RequestID, Current: req.Status, Operation: "auto-process"}
	}

	activeRules, err := s.rules.GetActiveLocateRules(ctx, req.Market)
	if err != nil {
		return false, fmt.Errorf("failed to load locate rules: %w", err)
	}

	result, err := s.rules.ProcessRules(ctx, activeRules, map[string]interface{}{
		rules.KeySecurityID:        req.SecurityID,
		rules.KeyClientID:          req.ClientID,
		rules.KeyRequestedQuantity: req.RequestedQuantity,
		rules.KeyMarket:            req.Market,
		rules.KeyAggregationUnitID: req.AggregationUnitID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate locate rules: %w", err)
	}

	verdict := rules.ParseVerdict(result)
	now := s.now()

	switch verdict.Status {
	case rules.StatusApproved:
		available, err := s.ValidateInventoryAvailability(ctx, req)
		if err != nil {
			return false, err
		}
		if !available {
			rejection := domain.NewRejection(req, domain.RejectionReasonInsufficientInventory, domain.SystemUser, true, now)
			if err := req.Reject(rejection); err != nil {
				return false, err
			}
			if err := s.finalize(ctx, req, events.LocateRejected); err != nil {
				return false, err
			}
			s.logger.Info("Locate auto-rejected: insufficient inventory",
				zap.String("request_id", req.RequestID),
				zap.String("rule_id", verdict.RuleID),
			)
			return true, nil
		}

		approval := domain.NewApproval(req, req.RequestedQuantity, domain.SystemUser,
			domain.ParseTemperature(verdict.SecurityTemperature), verdict.BorrowRate, true, now)
		if err := req.Approve(approval); err != nil {
			return false, err
		}
		if err := s.finalize(ctx, req, events.LocateApproved); err != nil {
			return false, err
		}
		s.logger.Info("Locate auto-approved",
			zap.String("request_id", req.RequestID),
			zap.String("rule_id", verdict.RuleID),
			zap.String("decrement", approval.DecrementQuantity.String()),
		)
		return true, nil

	case rules.StatusRejected:
		reason := verdict.RejectionReason
		if reason == "" {
			reason = RejectionReasonRuleRejected
		}
		if err := req.Reject(domain.NewRejection(req, reason, domain.SystemUser, true, now)); err != nil {
			return false, err
		}
		if err := s.finalize(ctx, req, events.LocateRejected); err != nil {
			return false, err
		}
		s.logger.Info("Locate auto-rejected",
			zap.String("request_id", req.RequestID),
			zap.String("rule_id", verdict.RuleID),
			zap.String("reason", reason),
		)
		return true, nil

	default:
		s.logger.Info("Locate requires manual review", zap.String("request_id", req.RequestID))
		return false, nil
	}
}

// ApproveLocateRequest records a manual approval
func (s *LocateService) ApproveLocateRequest(ctx context.Context, cmd commands.ApproveLocateCommand) (*domain.LocateRequest, error) {
	req, err := s.repo.FindByRequestID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.StatusPending {
		return nil, &domain.IllegalStateError{RequestID: req.RequestID, Current: req.Status, Operation: "approve"}
	}

	quantity := cmd.ApprovedQuantity
	if quantity.IsZero() {
		quantity = req.RequestedQuantity
	}
	if quantity.IsNegative() || quantity.GreaterThan(req.RequestedQuantity) {
		return nil, &domain.ValidationError{Field: "ApprovedQuantity", Message: "must be between zero and the requested quantity"}
	}

	inv, err := s.availability(ctx, req.SecurityID)
	if err != nil {
		return nil, err
	}
	if inv == nil || !inv.Covers(quantity) {
		remaining := decimal.Zero
		if inv != nil {
			remaining = inv.RemainingAvailability
		}
		return nil, &domain.InsufficientInventoryError{SecurityID: req.SecurityID, Requested: quantity, Remaining: remaining}
	}

	approval := domain.NewApproval(req, quantity, cmd.ApprovedBy,
		domain.ParseTemperature(cmd.SecurityTemperature), cmd.BorrowRate, false, s.now())
	if err := req.Approve(approval); err != nil {
		return nil, err
	}
	if err := s.finalize(ctx, req, events.LocateApproved); err != nil {
		return nil, err
	}

	s.logger.Info("Locate approved",
		zap.String("request_id", req.RequestID),
		zap.String("approved_by", cmd.ApprovedBy),
		zap.String("approved_quantity", quantity.String()),
	)
	return req, nil
}

// RejectLocateRequest records a manual rejection
func (s *LocateService) RejectLocateRequest(ctx context.Context, cmd commands.RejectLocateCommand) (*domain.LocateRequest, error) {
	req, err := s.repo.FindByRequestID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if err := req.Reject(domain.NewRejection(req, cmd.Reason, cmd.RejectedBy, false, s.now())); err != nil {
		return nil, err
	}
	if err := s.finalize(ctx, req, events.LocateRejected); err != nil {
		return nil, err
	}

	s.logger.Info("Locate rejected",
		zap.String("request_id", req.RequestID),
		zap.String("rejected_by", cmd.RejectedBy),
		zap.String("reason", cmd.Reason),
	)
	return req, nil
}

// CancelLocateRequest cancels a PENDING request
func (s *LocateService) CancelLocateRequest(ctx context.Context, requestID string) (*domain.LocateRequest, error) {
	req, err := s.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.Cancel(s.now()); err != nil {
		return nil, err
	}
	if err := s.finalize(ctx, req, events.LocateCancelled); err != nil {
		return nil, err
	}

	s.logger.Info("Locate cancelled", zap.String("request_id", req.RequestID))
	return req, nil
}

// ExpireLocateRequest expires an APPROVED request
func (s *LocateService) ExpireLocateRequest(ctx context.Context, requestID string) (*domain.LocateRequest, error) {
	req, err := s.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.expire(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ProcessExpiredLocates expires every approved request whose approval has
// lapsed. Each request is saved on its own; a failure is logged and the sweep
// moves on. Returns the number of requests expired.
func (s *LocateService) ProcessExpiredLocates(ctx context.Context) (int, error) {
	expired, err := s.repo.FindExpiredLocates(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to find expired locates: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	processed := 0
	for _, req := range expired {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Expiry sweep interrupted",
				zap.Int("processed", processed),
				zap.Int("remaining", len(expired)-processed),
				zap.Error(err),
			)
			return processed, err
		}
		if err := s.expire(ctx, req); err != nil {
			s.logger.Error("Failed to expire locate",
				zap.String("request_id", req.RequestID),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	s.logger.Info("Expiry sweep completed",
		zap.Int("eligible", len(expired)),
		zap.Int("expired", processed),
	)
	return processed, nil
}

// ValidateInventoryAvailability reports whether the security's current
// inventory covers the requested quantity. Always reads fresh availability.
func (s *LocateService) ValidateInventoryAvailability(ctx context.Context, req *domain.LocateRequest) (bool, error) {
	inv, err := s.availability(ctx, req.SecurityID)
	if err != nil {
		return false, err
	}
	return inv != nil && inv.Covers(req.RequestedQuantity), nil
}

// ShortSellValidation is the outcome of a short-sell coverage check
type ShortSellValidation struct {
	ClientID         string
	SecurityID       string
	OrderQuantity    decimal.Decimal
	LocatedQuantity  decimal.Decimal
	Covered          bool
	LocateRequestIDs []string
}

// ValidateShortSell checks a short-sell order against the client's active
// locates on the security
func (s *LocateService) ValidateShortSell(ctx context.Context, cmd commands.ValidateShortSellCommand) (*ShortSellValidation, error) {
	if cmd.ClientID == "" {
		return nil, &domain.ValidationError{Field: "ClientID", Message: "is required"}
	}
	if cmd.SecurityID == "" {
		return nil, &domain.ValidationError{Field: "SecurityID", Message: "is required"}
	}
	if !cmd.Quantity.IsPositive() {
		return nil, &domain.ValidationError{Field: "Quantity", Message: "must be greater than zero"}
	}

	active, err := s.repo.FindActiveLocates(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to find active locates: %w", err)
	}

	result := &ShortSellValidation{
		ClientID:         cmd.ClientID,
		SecurityID:       cmd.SecurityID,
		OrderQuantity:    cmd.Quantity,
		LocatedQuantity:  decimal.Zero,
		LocateRequestIDs: make([]string, 0),
	}
	for _, req := range active {
		if req.ClientID != cmd.ClientID || req.SecurityID != cmd.SecurityID {
			continue
		}
		result.LocatedQuantity = result.LocatedQuantity.Add(req.Approval.ApprovedQuantity)
		result.LocateRequestIDs = append(result.LocateRequestIDs, req.RequestID)
	}
	result.Covered = result.LocatedQuantity.GreaterThanOrEqual(cmd.Quantity)

	s.logger.Info("Short sell validated",
		zap.String("client_id", cmd.ClientID),
		zap.String("security_id", cmd.SecurityID),
		zap.String("order_quantity", cmd.Quantity.String()),
		zap.String("located_quantity", result.LocatedQuantity.String()),
		zap.Bool("covered", result.Covered),
	)
	return result, nil
}

// MarkCalculated flags the business date's resolved requests as CALCULATED
// once the position job has picked them up. Pending requests are left alone.
func (s *LocateService) MarkCalculated(ctx context.Context, businessDate time.Time) (int, error) {
	candidates, err := s.repo.FindByBusinessDateAndCalculationStatus(ctx, businessDate, domain.CalculationPending)
	if err != nil {
		return 0, fmt.Errorf("failed to find uncalculated locates: %w", err)
	}

	resolved := make([]*domain.LocateRequest, 0, len(candidates))
	for _, req := range candidates {
		if !req.Status.IsResolved() {
			continue
		}
		req.CalculationStatus = domain.CalculationCalculated
		resolved = append(resolved, req)
	}
	if len(resolved) == 0 {
		return 0, nil
	}

	if err := s.repo.SaveAll(ctx, resolved); err != nil {
		return 0, fmt.Errorf("failed to mark locates calculated: %w", err)
	}

	s.logger.Info("Locates marked calculated",
		zap.String("business_date", businessDate.Format("2006-01-02")),
		zap.Int("count", len(resolved)),
	)
	return len(resolved), nil
}

func (s *LocateService) expire(ctx context.Context, req *domain.LocateRequest) error {
	if err := req.Expire(s.now()); err != nil {
		return err
	}
	if err := s.finalize(ctx, req, events.LocateExpired); err != nil {
		return err
	}
	s.logger.Info("Locate expired", zap.String("request_id", req.RequestID))
	return nil
}

// availability returns nil without error when the security has no inventory record.
func (s *LocateService) availability(ctx context.Context, securityID string) (*inventory.Inventory, error) {
	inv, err := s.inventory.GetInventory(ctx, securityID)
	if errors.Is(err, inventory.ErrInventoryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	return inv, nil
}

// finalize persists req and publishes its events.
func (s *LocateService) finalize(ctx context.Context, req *domain.LocateRequest, eventType string) error {
	if err := s.repo.Save(ctx, req); err != nil {
		return fmt.Errorf("failed to save locate request %s: %w", req.RequestID, err)
	}

	s.publishLocateEvent(ctx, eventType, req)

	if eventType == events.LocateApproved && req.Approval != nil {
		event := events.NewInventoryEvent(req, s.now())
		if err := s.publisher.PublishInventoryEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish inventory event",
				zap.String("request_id", req.RequestID),
				zap.String("security_id", req.SecurityID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *LocateService) publishLocateEvent(ctx context.Context, eventType string, req *domain.LocateRequest) {
	if err := s.publisher.PublishLocateEvent(ctx, events.NewLocateEvent(eventType, req, s.now())); err != nil {
		s.logger.Error("Failed to publish locate event",
			zap.String("event_type", eventType),
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
	}
}
