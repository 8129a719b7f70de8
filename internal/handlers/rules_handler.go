package handlers

import (
	"context"
	"net/http"

	"locate-service/internal/rules"
	"locate-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RuleStore reads and writes auto-approval rules
type RuleStore interface {
	GetActiveLocateRules(ctx context.Context, market string) ([]rules.WorkflowRule, error)
	SaveRule(ctx context.Context, rule rules.WorkflowRule) error
}

// RuleCache drops cached rule sets after a rule changes
type RuleCache interface {
	Invalidate(ctx context.Context) error
}

type RulesHandler struct {
	store  RuleStore
	cache  RuleCache
	logger *zap.Logger
}

// NewRulesHandler creates a rules handler. cache may be nil.
func NewRulesHandler(store RuleStore, cache RuleCache, logger *zap.Logger) *RulesHandler {
	return &RulesHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// ListRules handles GET /api/v1/rules
// @Summary      List active auto-approval rules
// @Description  Returns the active rules that apply to the market, including "*" rules, in evaluation order.
// @Tags         rules
// @Produce      json
// @Security     BearerAuth
// @Param        market  query     string  true  "Market code"
// @Success      200     {array}   rules.WorkflowRule
// @Failure      400     {object}  errors.StandardError
// @Router       /rules [get]
func (h *RulesHandler) ListRules(c *gin.Context) {
	market := c.Query("market")
	if market == "" {
		c.Error(errors.NewValidationError("market is required", "market"))
		c.Abort()
		return
	}

	active, err := h.store.GetActiveLocateRules(c.Request.Context(), market)
	if err != nil {
		c.Error(errors.NewDatabaseError("list rules", err))
		c.Abort()
		return
	}
	if active == nil {
		active = []rules.WorkflowRule{}
	}

	c.JSON(http.StatusOK, active)
}

// SaveRule handles PUT /api/v1/rules/:id
// @Summary      Create or replace an auto-approval rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "Rule ID"
// @Param        request  body      rules.WorkflowRule  true  "Rule definition"
// @Success      200      {object}  rules.WorkflowRule
// @Failure      400      {object}  errors.StandardError
// @Failure      403      {object}  errors.StandardError
// @Router       /rules/{id} [put]
func (h *RulesHandler) SaveRule(c *gin.Context) {
	var rule rules.WorkflowRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.Error(errors.NewInvalidRequest("invalid rule", err.Error()))
		c.Abort()
		return
	}
	rule.RuleID = c.Param("id")

	if err := rule.Validate(); err != nil {
		c.Error(errors.NewInvalidRequest("invalid rule", err.Error()))
		c.Abort()
		return
	}

	ctx := c.Request.Context()
	if err := h.store.SaveRule(ctx, rule); err != nil {
		c.Error(errors.NewDatabaseError("save rule", err))
		c.Abort()
		return
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.logger.Warn("Failed to invalidate rule cache", zap.String("rule_id", rule.RuleID), zap.Error(err))
		}
	}

	h.logger.Info("Workflow rule saved",
		zap.String("rule_id", rule.RuleID),
		zap.String("market", rule.Market),
		zap.String("updated_by", c.GetString("username")),
	)
	c.JSON(http.StatusOK, rule)
}
