package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"locate-service/internal/rules"
	"locate-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRuleStore is a mock implementation of RuleStore
type MockRuleStore struct {
	mock.Mock
}

func (m *MockRuleStore) GetActiveLocateRules(ctx context.Context, market string) ([]rules.WorkflowRule, error) {
	args := m.Called(ctx, market)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rules.WorkflowRule), args.Error(1)
}

func (m *MockRuleStore) SaveRule(ctx context.Context, rule rules.WorkflowRule) error {
	return m.Called(ctx, rule).Error(0)
}

// MockRuleCache is a mock implementation of RuleCache
type MockRuleCache struct {
	mock.Mock
}

func (m *MockRuleCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func setupRulesRouter(handler *RulesHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	router.Use(withUser("desk-admin"))
	router.GET("/api/v1/rules", handler.ListRules)
	router.PUT("/api/v1/rules/:id", handler.SaveRule)
	return router
}

func TestListRules(t *testing.T) {
	store := new(MockRuleStore)
	router := setupRulesRouter(NewRulesHandler(store, nil, zap.NewNop()))

	store.On("GetActiveLocateRules", mock.Anything, "JP").Return([]rules.WorkflowRule{{RuleID: "R1", Market: "JP", Active: true}}, nil)
	store.On("GetActiveLocateRules", mock.Anything, "TW").Return(nil, nil)
	store.On("GetActiveLocateRules", mock.Anything, "HK").Return(nil, errors.New("database is locked"))

	w := doJSON(router, "GET", "/api/v1/rules?market=JP", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []rules.WorkflowRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	w = doJSON(router, "GET", "/api/v1/rules?market=TW", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(router, "GET", "/api/v1/rules?market=HK", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(router, "GET", "/api/v1/rules", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveRule_InvalidatesCache(t *testing.T) {
	store := new(MockRuleStore)
	cache := new(MockRuleCache)
	router := setupRulesRouter(NewRulesHandler(store, cache, zap.NewNop()))

	store.On("SaveRule", mock.Anything, mock.MatchedBy(func(r rules.WorkflowRule) bool {
		return r.RuleID == "JP-HTB" && r.Market == "JP"
	})).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	w := doJSON(router, "PUT", "/api/v1/rules/JP-HTB", map[string]interface{}{
		"name":     "hard to borrow names",
		"market":   "JP",
		"priority": 1,
		"active":   true,
		"conditions": []map[string]interface{}{
			{"field": rules.KeySecurityID, "operator": "IN", "values": []string{"9984.T"}},
		},
		"action": map[string]interface{}{"status": "APPROVED", "securityTemperature": "HTB", "borrowRate": "0.08"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSaveRule_RejectsInvalidRule(t *testing.T) {
	store := new(MockRuleStore)
	router := setupRulesRouter(NewRulesHandler(store, nil, zap.NewNop()))

	w := doJSON(router, "PUT", "/api/v1/rules/BAD", map[string]interface{}{
		"market":     "JP",
		"conditions": []map[string]interface{}{{"field": "market", "operator": "LIKE", "value": "J%"}},
		"action":     map[string]interface{}{"status": "APPROVED"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertNotCalled(t, "SaveRule", mock.Anything, mock.Anything)
}
