package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"locate-service/internal/auth"
	"locate-service/internal/cache"
	"locate-service/internal/domain"
	"locate-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key-min-32-chars-for-testing"

func setupAuthMiddlewareTestRouter(jwtManager *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := zap.NewNop()

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtManager, logger))
	{
		protected.GET("/locates", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
		})
		protected.POST("/locates/:id/approve", RequireRole(logger, auth.RoleApprover, auth.RoleAdmin), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"approvedBy": c.GetString("username")})
		})
	}

	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, zap.NewNop())
	router := setupAuthMiddlewareTestRouter(jwtManager)

	token, _, err := jwtManager.GenerateToken("trader", auth.RoleTrader)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/locates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"trader"}`, w.Body.String())
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, zap.NewNop())
	router := setupAuthMiddlewareTestRouter(jwtManager)

	testCases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/locates", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, zap.NewNop())
	router := setupAuthMiddlewareTestRouter(jwtManager)

	testCases := []struct {
		role         string
		expectedCode int
	}{
		{auth.RoleApprover, http.StatusOK},
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleTrader, http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.role, func(t *testing.T) {
			token, _, err := jwtManager.GenerateToken("desk-"+tc.role, tc.role)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/v1/locates/R-1/approve", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedCode, w.Code)
		})
	}
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.GET("/illegal", func(c *gin.Context) {
		c.Error(fmt.Errorf("approve: %w", &domain.IllegalStateError{RequestID: "R-1", Current: domain.StatusRejected, Operation: "approve"}))
		c.Abort()
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Error(fmt.Errorf("disk full"))
		c.Abort()
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/illegal", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	var body errors.StandardError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "IllegalState", body.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RecoveryHandler(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware())
	router.POST("/api/v1/locates", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest("OPTIONS", "/api/v1/locates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// newServiceRouter wires login and an approve route the way cmd/api does:
// login is public, idempotency runs inside the protected group.
func newServiceRouter(t *testing.T) (*gin.Engine, *auth.JWTManager, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users, err := auth.ParseUsers("alice:alice-pass:admin,bob:bob-pass:approver")
	require.NoError(t, err)
	jwtManager := auth.NewJWTManager(testSecret, logger)
	store := NewCacheRequestIDStore(cache.NewInMemoryCache(logger))
	calls := 0

	router := gin.New()
	router.Use(RequestIDMiddleware(logger))
	router.Use(ErrorHandler(logger))

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", auth.NewAuthHandler(jwtManager, users, logger).Login)

	protected := v1.Group("")
	protected.Use(AuthMiddleware(jwtManager, logger))
	protected.Use(IdempotencyMiddleware(store, logger))
	protected.Use(StoreResponseMiddleware(store, logger, 5*time.Minute))
	protected.POST("/locates/:id/approve", RequireRole(logger, auth.RoleApprover, auth.RoleAdmin), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"approvedBy": c.GetString("username")})
	})

	return router, jwtManager, &calls
}

func send(router *gin.Engine, path, body, token, requestID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_ReusedRequestIDDoesNotLeakToken(t *testing.T) {
	router, _, _ := newServiceRouter(t)

	w := send(router, "/api/v1/auth/login", `{"username":"alice","password":"alice-pass"}`, "", "shared-id")
	require.Equal(t, http.StatusOK, w.Code)

	w = send(router, "/api/v1/auth/login", `{"username":"mallory","password":"wrong"}`, "", "shared-id")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "token")
}

func TestApprove_ReusedRequestIDIsScopedToCaller(t *testing.T) {
	router, jwtManager, calls := newServiceRouter(t)

	aliceToken, _, err := jwtManager.GenerateToken("alice", auth.RoleAdmin)
	require.NoError(t, err)
	bobToken, _, err := jwtManager.GenerateToken("bob", auth.RoleApprover)
	require.NoError(t, err)
	traderToken, _, err := jwtManager.GenerateToken("carol", auth.RoleTrader)
	require.NoError(t, err)

	w := send(router, "/api/v1/locates/R-1/approve", "", aliceToken, "shared-id")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"approvedBy":"alice"}`, w.Body.String())

	// Retry by alice replays
	w = send(router, "/api/v1/locates/R-1/approve", "", aliceToken, "shared-id")
	assert.JSONEq(t, `{"approvedBy":"alice"}`, w.Body.String())
	assert.Equal(t, 1, *calls)

	// No token, wrong role and another approver never see alice's response
	w = send(router, "/api/v1/locates/R-1/approve", "", "", "shared-id")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(router, "/api/v1/locates/R-1/approve", "", traderToken, "shared-id")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(router, "/api/v1/locates/R-1/approve", "", bobToken, "shared-id")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"approvedBy":"bob"}`, w.Body.String())
	assert.Equal(t, 2, *calls)
}
