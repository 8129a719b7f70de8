package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"locate-service/internal/config"
	"locate-service/internal/database"
	"locate-service/internal/inventory"
	"locate-service/internal/kafka"
	"locate-service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting Inventory Listener",
		zap.String("environment", cfg.Environment),
		zap.String("sqlite_path", cfg.SQLitePath),
	)

	appLogger.Info("📡 Kafka Configuration",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic_inventory", cfg.KafkaTopicInventory),
		zap.String("group_id", cfg.KafkaGroupID),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Bool("dead_letter_queue", cfg.DeadLetterQueue),
		zap.String("dlq_topic", cfg.DLQTopic),
	)

	// Initialize database (Single Writer)
	appLogger.Info("🔧 Initializing database...")
	db, err := database.NewSingleWriterDB(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("✅ Database initialized successfully")

	// Initialize DLQ producer
	var dlq kafka.DeadLetterSink
	if cfg.DeadLetterQueue {
		appLogger.Info("🔧 Initializing DLQ producer...")
		producer, err := kafka.NewDLQProducer(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize DLQ producer", zap.Error(err))
		}
		defer producer.Close()
		dlq = producer
		appLogger.Info("✅ DLQ producer initialized successfully")
	}

	// Initialize event processor
	appLogger.Info("🔧 Initializing decrement processor...")
	processor := inventory.NewDecrementProcessor(inventory.NewSQLiteStore(db, appLogger), appLogger)
	appLogger.Info("✅ Decrement processor initialized successfully")

	// Initialize Kafka consumer
	appLogger.Info("🔧 Initializing Kafka consumer...")
	consumer, err := kafka.NewConsumer(cfg, processor, dlq, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()
	appLogger.Info("✅ Kafka consumer initialized successfully",
		zap.String("topic", cfg.KafkaTopicInventory),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming Kafka messages in a goroutine
	errChan := make(chan error, 1)
	go func() {
		appLogger.Info("📨 Starting Kafka consumer...")
		if err := consumer.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		appLogger.Error("Consumer error", zap.Error(err))
	case sig := <-quit:
		appLogger.Info("Shutting down inventory listener", zap.String("signal", sig.String()))
		cancel()
	}

	appLogger.Info("Inventory listener exited")
}
