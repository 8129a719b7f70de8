package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locate-service/internal/config"
	"locate-service/internal/inventory"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// EventProcessor applies one consumed event
type EventProcessor interface {
	ProcessEvent(ctx context.Context, eventType string, eventData []byte) error
}

// DeadLetterSink receives messages that failed every attempt
type DeadLetterSink interface {
	Send(message *sarama.ConsumerMessage, cause error) error
}

// Consumer represents a Kafka consumer of the inventory topic
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	handler       *consumerGroupHandler
	logger        *zap.Logger
	groupID       string
	topics        []string
}

// NewConsumer creates a new Kafka consumer. dlq may be nil when the dead
// letter queue is disabled.
func NewConsumer(cfg *config.Config, processor EventProcessor, dlq DeadLetterSink, logger *zap.Logger) (*Consumer, error) {
	logger.Info("🔌 Creating Kafka consumer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Version = sarama.V2_8_0_0

	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	saramaConfig.Metadata.RefreshFrequency = 10 * time.Minute
	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	consumerGroup, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaConfig)
	if err != nil {
		logger.Error("❌ Failed to create Kafka consumer group",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger.Info("✅ Kafka consumer group created successfully",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	return &Consumer{
		consumerGroup: consumerGroup,
		handler:       newConsumerGroupHandler(processor, dlq, cfg, logger),
		logger:        logger,
		groupID:       cfg.KafkaGroupID,
		topics:        []string{cfg.KafkaTopicInventory},
	}, nil
}

// Start consumes until ctx is cancelled or the group fails
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.consumerGroup.Errors() {
			c.logger.Error("Consumer error", zap.Error(err))
		}
	}()

	c.logger.Info("Kafka consumer started",
		zap.Strings("topics", c.topics),
		zap.String("group_id", c.groupID),
	)

	for {
		// Consume returns on every rebalance
		if err := c.consumerGroup.Consume(ctx, c.topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error("Error from consumer",
				zap.Error(err),
				zap.String("error_type", fmt.Sprintf("%T", err)),
			)
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.consumerGroup.Close()
}

// consumerGroupHandler handles Kafka consumer group messages
type consumerGroupHandler struct {
	processor  EventProcessor
	dlq        DeadLetterSink
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

func newConsumerGroupHandler(processor EventProcessor, dlq DeadLetterSink, cfg *config.Config, logger *zap.Logger) *consumerGroupHandler {
	if !cfg.DeadLetterQueue {
		dlq = nil
	}
	return &consumerGroupHandler{
		processor:  processor,
		dlq:        dlq,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
// A message the dead letter queue refused ends the claim with an error, so
// no later offset is marked and the partition is redelivered from it.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if err := h.handleMessage(session.Context(), message); err != nil {
				if session.Context().Err() != nil {
					return nil
				}
				// Back off before the session is torn down and the message redelivered
				select {
				case <-session.Context().Done():
				case <-time.After(h.retryDelay):
				}
				return err
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessage processes one message. A nil result means its offset may be
// committed; a message that failed every attempt is committed only once the
// dead letter queue has accepted it.
func (h *consumerGroupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	eventType := extractEventType(message.Headers)
	if eventType == "" {
		h.logger.Warn("Message without event type, skipping",
			zap.String("topic", message.Topic),
			zap.Int32("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}

	err := h.processWithRetry(ctx, eventType, message.Value)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		// Shutting down; leave the offset for the next owner of the partition
		return ctx.Err()
	}

	h.logger.Error("Failed to process event after retries",
		zap.String("event_type", eventType),
		zap.String("topic", message.Topic),
		zap.Int64("offset", message.Offset),
		zap.Error(err),
	)

	if h.dlq == nil {
		return nil
	}
	if dlqErr := h.dlq.Send(message, err); dlqErr != nil {
		h.logger.Error("Failed to send to DLQ", zap.Error(dlqErr))
		return fmt.Errorf("dead letter queue rejected %s/%d offset %d: %w",
			message.Topic, message.Partition, message.Offset, dlqErr)
	}
	return nil
}

// processWithRetry processes an event, retrying transient failures with a
// linear backoff. Invalid payloads and exhausted availability are not retried.
func (h *consumerGroupHandler) processWithRetry(ctx context.Context, eventType string, eventData []byte) error {
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			delay := h.retryDelay * time.Duration(attempt)
			h.logger.Info("Retrying event processing",
				zap.String("event_type", eventType),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := h.processor.ProcessEvent(ctx, eventType, eventData)
		if err == nil {
			if attempt > 0 {
				h.logger.Info("Event processed successfully after retry",
					zap.String("event_type", eventType),
					zap.Int("attempts", attempt+1),
				)
			}
			return nil
		}

		lastErr = err
		if isPermanent(err) {
			return err
		}

		h.logger.Warn("Event processing failed, will retry",
			zap.String("event_type", eventType),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return fmt.Errorf("failed after %d attempts: %w", h.maxRetries+1, lastErr)
}

func isPermanent(err error) bool {
	return errors.Is(err, inventory.ErrInvalidEvent) ||
		errors.Is(err, inventory.ErrInventoryNotFound) ||
		errors.Is(err, inventory.ErrDecrementExceedsAvailability)
}

// extractEventType extracts event type from Kafka message headers
func extractEventType(headers []*sarama.RecordHeader) string {
	for _, header := range headers {
		if header != nil && string(header.Key) == "event-type" {
			return string(header.Value)
		}
	}
	return ""
}
