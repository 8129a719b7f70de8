package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"locate-service/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader is the HTTP header name for request ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the context key for request ID
	RequestIDContextKey = "request_id"
)

// StoredResponse is a replayable write response
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// RequestIDStore stores processed requests for idempotency, keyed by
// IdempotencyKey
type RequestIDStore interface {
	// Store stores a key with its response
	Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error
	// Get retrieves a stored response by key
	Get(ctx context.Context, key string) (*StoredResponse, error)
	// Exists checks if a key exists
	Exists(ctx context.Context, key string) (bool, error)
}

// CacheRequestIDStore keeps request IDs in the shared cache, so duplicates are
// caught across API instances when Redis is configured.
type CacheRequestIDStore struct {
	cache cache.Cache
}

// NewCacheRequestIDStore creates a request ID store backed by c
func NewCacheRequestIDStore(c cache.Cache) *CacheRequestIDStore {
	return &CacheRequestIDStore{cache: c}
}

func (s *CacheRequestIDStore) Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error {
	return cache.SetJSON(ctx, s.cache, cache.PrefixRequestID+key, response, ttl)
}

func (s *CacheRequestIDStore) Get(ctx context.Context, key string) (*StoredResponse, error) {
	var response StoredResponse
	if err := cache.GetJSON(ctx, s.cache, cache.PrefixRequestID+key, &response); err != nil {
		if stderrors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrRequestIDNotFound
		}
		return nil, err
	}
	return &response, nil
}

func (s *CacheRequestIDStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.cache.Exists(ctx, cache.PrefixRequestID+key)
}

var (
	ErrRequestIDNotFound = &RequestIDError{Message: "request ID not found"}
)

type RequestIDError struct {
	Message string
}

func (e *RequestIDError) Error() string {
	return e.Message
}

// RequestIDMiddleware extracts or generates X-Request-ID header
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			logger.Debug("Generated new request ID",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
		} else {
			logger.Debug("Using provided request ID",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
		}

		c.Set(RequestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDContextKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// IdempotencyKey scopes a request ID to the caller and the endpoint, so a
// replayed response is only ever returned to the user that produced it.
func IdempotencyKey(username, method, path, requestID string) string {
	return username + "|" + method + "|" + path + "|" + requestID
}

// idempotencyKey returns "" when the request is not eligible for replay:
// reads, anonymous callers and requests without an ID.
func idempotencyKey(c *gin.Context) string {
	if isReadOnly(c.Request.Method) {
		return ""
	}
	username := c.GetString("username")
	requestID := GetRequestID(c)
	if username == "" || requestID == "" {
		return ""
	}
	return IdempotencyKey(username, c.Request.Method, c.Request.URL.Path, requestID)
}

// IdempotencyMiddleware replays the stored response when a write is retried
// with an X-Request-ID that was already processed. It must run after
// AuthMiddleware; unauthenticated requests are never replayed.
func IdempotencyMiddleware(store RequestIDStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := idempotencyKey(c)
		if key == "" {
			c.Next()
			return
		}

		exists, err := store.Exists(c.Request.Context(), key)
		if err != nil {
			// Fail open
			logger.Warn("Error checking request ID existence",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if exists {
			cached, err := store.Get(c.Request.Context(), key)
			if err == nil && len(cached.Body) > 0 {
				logger.Info("Duplicate request detected, returning cached response",
					zap.String("request_id", GetRequestID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				status := cached.Status
				if status == 0 {
					status = http.StatusOK
				}
				c.Data(status, "application/json", cached.Body)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// StoreResponseMiddleware stores successful write responses for idempotency.
// Like IdempotencyMiddleware it only acts on authenticated requests.
func StoreResponseMiddleware(store RequestIDStore, logger *zap.Logger, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := idempotencyKey(c)
		if key == "" {
			c.Next()
			return
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           make([]byte, 0),
		}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 || len(writer.body) == 0 {
			return
		}

		response := StoredResponse{Status: status, Body: writer.body}
		if err := store.Store(c.Request.Context(), key, response, ttl); err != nil {
			logger.Warn("Failed to store response for idempotency",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			return
		}

		logger.Debug("Stored response for idempotency",
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
		)
	}
}

// responseWriter captures the response body
type responseWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}
