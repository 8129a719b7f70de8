package kafka

import (
	"fmt"
	"strconv"
	"time"

	"locate-service/internal/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// DLQProducer forwards messages that could not be applied to the dead letter topic
type DLQProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

// NewDLQProducer creates a dead letter producer for cfg.DLQTopic
func NewDLQProducer(cfg *config.Config, logger *zap.Logger) (*DLQProducer, error) {
	logger.Info("🔌 Creating Kafka DLQ producer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.DLQTopic),
	)

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Version = sarama.V2_8_0_0

	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, saramaConfig)
	if err != nil {
		logger.Error("❌ Failed to create Kafka DLQ producer",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}

	return NewDLQProducerWithProducer(producer, cfg.DLQTopic, logger), nil
}

// NewDLQProducerWithProducer wraps an existing producer
func NewDLQProducerWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *DLQProducer {
	return &DLQProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
		now:      time.Now,
	}
}

// Send copies message to the dead letter topic. The original headers are kept
// and the failure is described in dlq-* headers.
func (p *DLQProducer) Send(message *sarama.ConsumerMessage, cause error) error {
	headers := make([]sarama.RecordHeader, 0, len(message.Headers)+5)
	for _, h := range message.Headers {
		if h != nil {
			headers = append(headers, *h)
		}
	}
	headers = append(headers,
		sarama.RecordHeader{Key: []byte("dlq-original-topic"), Value: []byte(message.Topic)},
		sarama.RecordHeader{Key: []byte("dlq-original-partition"), Value: []byte(strconv.Itoa(int(message.Partition)))},
		sarama.RecordHeader{Key: []byte("dlq-original-offset"), Value: []byte(strconv.FormatInt(message.Offset, 10))},
		sarama.RecordHeader{Key: []byte("dlq-error"), Value: []byte(cause.Error())},
		sarama.RecordHeader{Key: []byte("dlq-failed-at"), Value: []byte(p.now().UTC().Format(time.RFC3339))},
	)

	dlqMessage := &sarama.ProducerMessage{
		Topic:   p.topic,
		Value:   sarama.ByteEncoder(message.Value),
		Headers: headers,
	}
	if len(message.Key) > 0 {
		dlqMessage.Key = sarama.ByteEncoder(message.Key)
	}

	partition, offset, err := p.producer.SendMessage(dlqMessage)
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	p.logger.Warn("Message sent to DLQ",
		zap.String("original_topic", message.Topic),
		zap.Int64("original_offset", message.Offset),
		zap.String("dlq_topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.Error(cause),
	)
	return nil
}

// Close closes the producer
func (p *DLQProducer) Close() error {
	return p.producer.Close()
}
