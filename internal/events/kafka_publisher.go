package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"locate-service/internal/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	defaultPublishAttempts = 3
	defaultRetryBackoff    = 100 * time.Millisecond
	sendTimeout            = 5 * time.Second
)

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer     sarama.SyncProducer
	logger       *zap.Logger
	config       *config.Config
	attempts     int
	retryBackoff time.Duration
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaEventPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, newProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaEventPublisherWithProducer(producer, cfg, logger), nil
}

// NewKafkaEventPublisherWithProducer wraps an existing producer
func NewKafkaEventPublisherWithProducer(producer sarama.SyncProducer, cfg *config.Config, logger *zap.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer:     producer,
		logger:       logger,
		config:       cfg,
		attempts:     defaultPublishAttempts,
		retryBackoff: defaultRetryBackoff,
	}
}

func newProducerConfig(cfg *config.Config) *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = cfg.KafkaClientID
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = cfg.KafkaRetries
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	// Parse acks. The idempotent producer requires WaitForAll, so weaker
	// settings also turn idempotence off.
	switch cfg.KafkaAcks {
	case "0":
		config.Producer.RequiredAcks = sarama.NoResponse
		config.Producer.Idempotent = false
	case "1":
		config.Producer.RequiredAcks = sarama.WaitForLocal
		config.Producer.Idempotent = false
	default:
		config.Producer.RequiredAcks = sarama.WaitForAll
	}
	return config
}

// PublishLocateEvent publishes to the locates topic, keyed by request id
func (p *KafkaEventPublisher) PublishLocateEvent(ctx context.Context, event LocateEvent) error {
	return p.publish(ctx, p.config.KafkaTopicLocates, event.RequestID, event.EventType, event.EventID, event.OccurredAt, event)
}

// PublishInventoryEvent publishes to the inventory topic, keyed by security id
// so all decrements of one security land on the same partition in order.
func (p *KafkaEventPublisher) PublishInventoryEvent(ctx context.Context, event InventoryEvent) error {
	return p.publish(ctx, p.config.KafkaTopicInventory, event.SecurityID, event.EventType, event.EventID, event.OccurredAt, event)
}

// publish sends an event with retries and exponential backoff
func (p *KafkaEventPublisher) publish(ctx context.Context, topic, key, eventType, eventID string, occurredAt time.Time, event interface{}) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(eventJSON),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(eventType)},
			{Key: []byte("event-id"), Value: []byte(eventID)},
			{Key: []byte("timestamp"), Value: []byte(occurredAt.UTC().Format(time.RFC3339))},
		},
	}

	for attempt := 0; attempt < p.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		done := make(chan error, 1)

		go func(attempt int) {
			partition, offset, err := p.producer.SendMessage(message)
			if err != nil {
				done <- err
				return
			}
			p.logger.Info("Event published to Kafka",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
				zap.String("event_type", eventType),
				zap.String("key", key),
				zap.Int("attempt", attempt+1),
			)
			done <- nil
		}(attempt)

		select {
		case err := <-done:
			cancel()
			if err == nil {
				return nil
			}
			p.logger.Warn("Failed to publish event to Kafka, retrying",
				zap.String("topic", topic),
				zap.String("event_type", eventType),
				zap.Error(err),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", p.attempts),
			)
		case <-sendCtx.Done():
			cancel()
			p.logger.Warn("Timeout publishing event to Kafka, retrying",
				zap.String("topic", topic),
				zap.String("event_type", eventType),
				zap.Error(sendCtx.Err()),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", p.attempts),
			)
		}

		if attempt < p.attempts-1 {
			delay := p.retryBackoff * time.Duration(1<<uint(attempt)) // 100ms, 200ms, 400ms
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("failed to publish %s to Kafka after %d attempts", eventType, p.attempts)
}

// Close closes the Kafka producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ EventPublisher = (*KafkaEventPublisher)(nil)
