package auth

import (
	"net/http"
	"time"

	"locate-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	jwtManager *JWTManager
	users      *UserDirectory
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtManager *JWTManager, users *UserDirectory, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
		users:      users,
		logger:     logger,
	}
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"approver"`
	Password string `json:"password" binding:"required" example:"approver123"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Type      string    `json:"type" example:"Bearer"`
	Role      string    `json:"role" example:"approver"`
	ExpiresIn int       `json:"expires_in" example:"600"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-15T12:00:00Z"`
}

// Login handles POST /api/v1/auth/login
// @Summary      Login and get JWT token
// @Description  Authenticates a desk operator and returns a JWT valid for 10 minutes. The token carries the operator role (trader, approver or admin).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  errors.StandardError  "Missing credentials"
// @Failure      401      {object}  errors.StandardError  "Invalid credentials"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid login request", zap.Error(err))
		c.Error(errors.NewValidationError("invalid request", "username or password"))
		c.Abort()
		return
	}

	user, ok := h.users.Authenticate(req.Username, req.Password)
	if !ok {
		h.logger.Warn("Invalid credentials",
			zap.String("username", req.Username),
		)
		c.Error(errors.NewUnauthorized("invalid credentials", "username or password incorrect"))
		c.Abort()
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(user.Username, user.Role)
	if err != nil {
		c.Error(errors.NewInternalError("failed to generate token", err))
		c.Abort()
		return
	}

	h.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("role", user.Role),
		zap.Time("expires_at", expiresAt),
	)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Type:      "Bearer",
		Role:      user.Role,
		ExpiresIn: int(TokenTTL.Seconds()),
		ExpiresAt: expiresAt,
	})
}
