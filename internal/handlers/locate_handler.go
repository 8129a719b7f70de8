package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"locate-service/internal/commands"
	"locate-service/internal/domain"
	"locate-service/internal/workflow"
	"locate-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LocateWorkflow is the part of workflow.LocateService the API drives
type LocateWorkflow interface {
	CreateLocateRequest(ctx context.Context, cmd commands.CreateLocateCommand) (*domain.LocateRequest, error)
	GetLocateRequest(ctx context.Context, requestID string) (*domain.LocateRequest, error)
	ListPendingLocates(ctx context.Context) ([]*domain.LocateRequest, error)
	ListActiveLocates(ctx context.Context) ([]*domain.LocateRequest, error)
	ProcessAutoApproval(ctx context.Context, requestID string) (bool, error)
	ApproveLocateRequest(ctx context.Context, cmd commands.ApproveLocateCommand) (*domain.LocateRequest, error)
	RejectLocateRequest(ctx context.Context, cmd commands.RejectLocateCommand) (*domain.LocateRequest, error)
	CancelLocateRequest(ctx context.Context, requestID string) (*domain.LocateRequest, error)
	ExpireLocateRequest(ctx context.Context, requestID string) (*domain.LocateRequest, error)
	ProcessExpiredLocates(ctx context.Context) (int, error)
	ValidateShortSell(ctx context.Context, cmd commands.ValidateShortSellCommand) (*workflow.ShortSellValidation, error)
	MarkCalculated(ctx context.Context, businessDate time.Time) (int, error)
}

type LocateHandler struct {
	service LocateWorkflow
	logger  *zap.Logger
}

func NewLocateHandler(service LocateWorkflow, logger *zap.Logger) *LocateHandler {
	return &LocateHandler{
		service: service,
		logger:  logger,
	}
}

// CreateLocate handles POST /api/v1/locates
// @Summary      Create a locate request
// @Description  Opens a PENDING locate request. The requestor is the authenticated user and the business date is today in the market's time zone.
// @Description  **Idempotency**: send X-Request-ID to have retries answered with the original response.
// @Tags         locates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string               false  "Request ID for idempotency (UUID)"
// @Param        request       body      CreateLocateRequest  true   "Locate request"
// @Success      201           {object}  LocateResponse
// @Failure      400           {object}  errors.StandardError  "Missing security or client, or non-positive quantity"
// @Failure      401           {object}  errors.StandardError
// @Failure      500           {object}  errors.StandardError
// @Router       /locates [post]
func (h *LocateHandler) CreateLocate(c *gin.Context) {
	var req CreateLocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create locate request", zap.Error(err))
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		c.Abort()
		return
	}

	locate, err := h.service.CreateLocateRequest(c.Request.Context(), commands.CreateLocateCommand{
		SecurityID:        strings.TrimSpace(req.SecurityID),
		ClientID:          strings.TrimSpace(req.ClientID),
		RequestorID:       c.GetString("username"),
		AggregationUnitID: req.AggregationUnitID,
		Market:            req.Market,
		RequestedQuantity: req.RequestedQuantity,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLocateResponse(locate))
}

// GetLocate handles GET /api/v1/locates/:id
// @Summary      Get a locate request
// @Tags         locates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Locate request ID"
// @Success      200  {object}  LocateResponse
// @Failure      404  {object}  errors.StandardError
// @Router       /locates/{id} [get]
func (h *LocateHandler) GetLocate(c *gin.Context) {
	locate, err := h.service.GetLocateRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocateResponse(locate))
}

// ListLocates handles GET /api/v1/locates
// @Summary      List locate requests
// @Description  PENDING lists requests awaiting a decision. ACTIVE lists approved requests whose approval has not lapsed.
// @Tags         locates
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "PENDING (default) or ACTIVE"
// @Success      200     {object}  LocateListResponse
// @Failure      400     {object}  errors.StandardError
// @Router       /locates [get]
func (h *LocateHandler) ListLocates(c *gin.Context) {
	var (
		locates []*domain.LocateRequest
		err     error
	)

	switch strings.ToUpper(c.DefaultQuery("status", "PENDING")) {
	case "PENDING":
		locates, err = h.service.ListPendingLocates(c.Request.Context())
	case "ACTIVE":
		locates, err = h.service.ListActiveLocates(c.Request.Context())
	default:
		c.Error(errors.NewInvalidRequest("unsupported status filter", "status must be PENDING or ACTIVE"))
		c.Abort()
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocateList(locates))
}

// AutoApprove handles POST /api/v1/locates/:id/auto-approve
// @Summary      Run auto-approval rules
// @Description  Evaluates the market's rules. A matching rule approves (subject to inventory) or rejects; otherwise the request stays PENDING for manual review.
// @Tags         locates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Locate request ID"
// @Success      200  {object}  AutoApprovalResponse
// @Failure      404  {object}  errors.StandardError
// @Failure      409  {object}  errors.StandardError
// @Router       /locates/{id}/auto-approve [post]
func (h *LocateHandler) AutoApprove(c *gin.Context) {
	ctx := c.Request.Context()
	requestID := c.Param("id")

	processed, err := h.service.ProcessAutoApproval(ctx, requestID)
	if err != nil {
		h.fail(c, err)
		return
	}

	locate, err := h.service.GetLocateRequest(ctx, requestID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, AutoApprovalResponse{
		AutoProcessed: processed,
		Locate:        toLocateResponse(locate),
	})
}

// Approve handles POST /api/v1/locates/:id/approve
// @Summary      Approve a locate request
// @Description  Manual approval by the authenticated approver. Fails with 422 when inventory does not cover the approved quantity.
// @Tags         locates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Locate request ID"
// @Param        request  body      ApproveLocateRequest  false "Approval details"
// @Success      200      {object}  LocateResponse
// @Failure      400      {object}  errors.StandardError
// @Failure      403      {object}  errors.StandardError
// @Failure      404      {object}  errors.StandardError
// @Failure      409      {object}  errors.StandardError  "Request is not PENDING or was modified concurrently"
// @Failure      422      {object}  errors.StandardError  "Insufficient inventory"
// @Router       /locates/{id}/approve [post]
func (h *LocateHandler) Approve(c *gin.Context) {
	var req ApproveLocateRequest
	// The body is optional; an empty one approves the full requested quantity
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		c.Abort()
		return
	}

	locate, err := h.service.ApproveLocateRequest(c.Request.Context(), commands.ApproveLocateCommand{
		RequestID:           c.Param("id"),
		ApprovedQuantity:    req.ApprovedQuantity,
		ApprovedBy:          c.GetString("username"),
		SecurityTemperature: req.SecurityTemperature,
		BorrowRate:          req.BorrowRate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocateResponse(locate))
}

// Reject handles POST /api/v1/locates/:id/reject
// @Summary      Reject a locate request
// @Tags         locates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Locate request ID"
// @Param        request  body      RejectLocateRequest  true  "Rejection reason"
// @Success      200      {object}  LocateResponse
// @Failure      400      {object}  errors.StandardError
// @Failure      404      {object}  errors.StandardError
// @Failure      409      {object}  errors.StandardError
// @Router       /locates/{id}/reject [post]
func (h *LocateHandler) Reject(c *gin.Context) {
	var req RejectLocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("rejection reason is required", "reason"))
		c.Abort()
		return
	}

	locate, err := h.service.RejectLocateRequest(c.Request.Context(), commands.RejectLocateCommand{
		RequestID:  c.Param("id"),
		Reason:     req.Reason,
		RejectedBy: c.GetString("username"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocateResponse(locate))
}

// Cancel handles POST /api/v1/locates/:id/cancel
// @Summary      Cancel a pending locate request
// @Tags         locates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Locate request ID"
// @Success      200  {object}  LocateResponse
// @Failure      404  {object}  errors.StandardError
// @Failure      409  {object}  errors.StandardError
// @Router       /locates/{id}/cancel [post]
func (h *LocateHandler) Cancel(c *gin.Context) {
	locate, err := h.service.CancelLocateRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocateResponse(locate))
}

// Expire handles POST /api/v1/locates/:id/expire
// @Summary      Expire an approved locate request
// @Tags         locates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Locate request ID"
// @Success      200  {object}  LocateResponse
// @Failure      404  {object}  errors.StandardError
// @Failure      409  {object}  errors.StandardError
// @Router       /locates/{id}/expire [post]
func (h *LocateHandler) Expire(c *gin.Context) {
	locate, err := h.service.ExpireLocateRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocateResponse(locate))
}

// ExpireSweep handles POST /api/v1/locates/expire-sweep
// @Summary      Run the expiry sweep now
// @Description  Expires every approved request whose approval has lapsed. The same sweep runs daily at midnight.
// @Tags         locates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CountResponse
// @Failure      500  {object}  errors.StandardError
// @Router       /locates/expire-sweep [post]
func (h *LocateHandler) ExpireSweep(c *gin.Context) {
	count, err := h.service.ProcessExpiredLocates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// MarkCalculated handles POST /api/v1/locates/mark-calculated
// @Summary      Mark a business date's resolved locates as calculated
// @Tags         locates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      MarkCalculatedRequest  true  "Business date (YYYY-MM-DD)"
// @Success      200      {object}  CountResponse
// @Failure      400      {object}  errors.StandardError
// @Router       /locates/mark-calculated [post]
func (h *LocateHandler) MarkCalculated(c *gin.Context) {
	var req MarkCalculatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("business date is required", "businessDate"))
		c.Abort()
		return
	}
	businessDate, err := time.Parse(DateLayout, req.BusinessDate)
	if err != nil {
		c.Error(errors.NewInvalidRequest("invalid business date", "expected format YYYY-MM-DD"))
		c.Abort()
		return
	}

	count, err := h.service.MarkCalculated(c.Request.Context(), businessDate)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// ValidateShortSell handles POST /api/v1/short-sell/validate
// @Summary      Check short-sell coverage
// @Description  Sums the client's active approved locates on the security and reports whether they cover the order quantity.
// @Tags         short-sell
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ValidateShortSellRequest  true  "Order to check"
// @Success      200      {object}  ShortSellValidationResponse
// @Failure      400      {object}  errors.StandardError
// @Router       /short-sell/validate [post]
func (h *LocateHandler) ValidateShortSell(c *gin.Context) {
	var req ValidateShortSellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		c.Abort()
		return
	}

	result, err := h.service.ValidateShortSell(c.Request.Context(), commands.ValidateShortSellCommand{
		ClientID:   strings.TrimSpace(req.ClientID),
		SecurityID: strings.TrimSpace(req.SecurityID),
		Quantity:   req.Quantity,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toShortSellResponse(result))
}

func (h *LocateHandler) fail(c *gin.Context, err error) {
	h.logger.Debug("Locate operation failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.Error(errors.FromDomain(err))
	c.Abort()
}
