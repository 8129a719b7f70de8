package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"locate-service/internal/auth"
	"locate-service/internal/cache"
	"locate-service/internal/config"
	"locate-service/internal/database"
	"locate-service/internal/events"
	"locate-service/internal/handlers"
	"locate-service/internal/inventory"
	"locate-service/internal/repository"
	"locate-service/internal/rules"
	"locate-service/internal/scheduler"
	"locate-service/internal/settlement"
	"locate-service/internal/workflow"
	"locate-service/pkg/logger"
	"locate-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "locate-service/docs" // Import docs for Swagger
)

// @title           Locate Service API
// @version         1.0
// @description     Locate approval and short-sell validation workflow for the inventory management system
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Example: "Bearer eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting Locate Service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.Int("sla_budget_ms", cfg.SLABudgetMs),
	)

	appLogger.Info("🔐 JWT Configuration",
		zap.Int("secret_length", len(cfg.JWTSecret)),
		zap.Duration("token_ttl", auth.TokenTTL),
	)

	appLogger.Info("📡 Kafka Configuration",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic_locates", cfg.KafkaTopicLocates),
		zap.String("topic_inventory", cfg.KafkaTopicInventory),
		zap.String("client_id", cfg.KafkaClientID),
		zap.String("acks", cfg.KafkaAcks),
		zap.Int("retries", cfg.KafkaRetries),
	)

	// Initialize database (Single Writer)
	appLogger.Info("🔧 Initializing database...")
	db, err := database.NewSingleWriterDB(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("✅ Database initialized successfully")

	// Initialize cache (Redis or in-memory fallback)
	appLogger.Info("🔧 Initializing cache...")
	appCache := cache.NewCache(cfg, appLogger)
	appLogger.Info("✅ Cache initialized successfully")

	// Initialize rules
	appLogger.Info("🔧 Initializing rule provider...")
	ruleStore := rules.NewSQLiteProvider(db, rules.NewEngine(appLogger), appLogger)
	ruleProvider := rules.NewCachedProvider(ruleStore, appCache, cache.TTL(cfg.RuleCacheTTL), appLogger)
	appLogger.Info("✅ Rule provider initialized successfully",
		zap.Int("cache_ttl_seconds", cfg.RuleCacheTTL),
	)

	// Initialize event publisher
	appLogger.Info("🔧 Initializing event publisher...")
	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Kafka unavailable, falling back to in-memory event publisher", zap.Error(err))
		publisher = events.NewInMemoryEventPublisher(appLogger)
	} else {
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}
	appLogger.Info("✅ Event publisher initialized successfully")

	// Initialize workflow service
	appLogger.Info("🔧 Initializing locate service...")
	calendar := settlement.NewCalendar(cfg.MarketCutoffHours)
	locateService := workflow.NewLocateService(
		repository.NewSQLiteLocateRepository(db),
		ruleProvider,
		publisher,
		inventory.NewSQLiteStore(db, appLogger),
		calendar,
		appLogger,
	)
	appLogger.Info("✅ Locate service initialized successfully")

	// Background context for the expiry sweep
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ExpirySweepEnabled {
		location, err := time.LoadLocation(cfg.ExpirySweepTimezone)
		if err != nil {
			appLogger.Warn("⚠️ Invalid expiry sweep timezone, using local time",
				zap.String("timezone", cfg.ExpirySweepTimezone),
				zap.Error(err),
			)
			location = time.Local
		}
		go scheduler.NewExpiryScheduler(locateService, location, appLogger).Run(ctx)
		appLogger.Info("⏰ Expiry sweep scheduled", zap.String("timezone", location.String()))
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()

	// CORS middleware (must be first to handle preflight requests)
	router.Use(middleware.CORSMiddleware())

	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(logger.GinMiddleware(appLogger, time.Duration(cfg.SLABudgetMs)*time.Millisecond))

	// Request ID middleware (must be early in the chain)
	router.Use(middleware.RequestIDMiddleware(appLogger))

	// Error handler middleware
	router.Use(middleware.ErrorHandler(appLogger))

	requestIDStore := middleware.NewCacheRequestIDStore(appCache)
	idempotencyTTL := cache.TTL(cfg.IdempotencyTTL)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize JWT manager
	appLogger.Info("🔧 Initializing JWT manager...")
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, appLogger)
	users, err := auth.ParseUsers(cfg.AuthUsers)
	if err != nil {
		appLogger.Fatal("Invalid AUTH_USERS", zap.Error(err))
	}
	authHandler := auth.NewAuthHandler(jwtManager, users, appLogger)
	appLogger.Info("✅ JWT manager initialized successfully")

	// Initialize handlers
	appLogger.Info("🔧 Initializing handlers...")
	locateHandler := handlers.NewLocateHandler(locateService, appLogger)
	settlementHandler := handlers.NewSettlementHandler(calendar)
	rulesHandler := handlers.NewRulesHandler(ruleStore, ruleProvider, appLogger)
	appLogger.Info("✅ Handlers initialized successfully")

	approvers := middleware.RequireRole(appLogger, auth.RoleApprover, auth.RoleAdmin)
	admins := middleware.RequireRole(appLogger, auth.RoleAdmin)

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint (public)
		v1.GET("/health", healthCheck)

		// Auth endpoints (public)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}

		// Protected endpoints (require JWT authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, appLogger))
		// Idempotent replay is keyed by the authenticated caller
		protected.Use(middleware.IdempotencyMiddleware(requestIDStore, appLogger))
		protected.Use(middleware.StoreResponseMiddleware(requestIDStore, appLogger, idempotencyTTL))
		{
			locates := protected.Group("/locates")
			{
				locates.POST("", locateHandler.CreateLocate)
				locates.GET("", locateHandler.ListLocates)
				locates.POST("/expire-sweep", approvers, locateHandler.ExpireSweep)
				locates.POST("/mark-calculated", approvers, locateHandler.MarkCalculated)
				locates.GET("/:id", locateHandler.GetLocate)
				locates.POST("/:id/auto-approve", locateHandler.AutoApprove)
				locates.POST("/:id/approve", approvers, locateHandler.Approve)
				locates.POST("/:id/reject", approvers, locateHandler.Reject)
				locates.POST("/:id/cancel", locateHandler.Cancel)
				locates.POST("/:id/expire", approvers, locateHandler.Expire)
			}

			protected.POST("/short-sell/validate", locateHandler.ValidateShortSell)

			settlementGroup := protected.Group("/settlement")
			{
				settlementGroup.GET("/date", settlementHandler.SettlementDate)
				settlementGroup.GET("/day", settlementHandler.SettlementDay)
			}

			rulesGroup := protected.Group("/rules")
			{
				rulesGroup.GET("", rulesHandler.ListRules)
				rulesGroup.PUT("/:id", admins, rulesHandler.SaveRule)
			}
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Starting locate service",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

// healthCheck godoc
// @Summary      Health check endpoint
// @Description  Reports that the service is up
// @Tags         health
// @Produce      json
// @Success      200  {object}  handlers.HealthResponse
// @Router       /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, handlers.HealthResponse{
		Status:  "healthy",
		Service: "locate-service",
	})
}
