package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"locate-service/internal/config"
	"locate-service/internal/domain"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		KafkaTopicLocates:   "ims.locates",
		KafkaTopicInventory: "ims.inventory",
	}
}

func approvedRequest(t *testing.T) *domain.LocateRequest {
	t.Helper()
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	req := domain.NewLocateRequest("AAPL", "CLIENT-1", "TRADER-1", "US", decimal.NewFromInt(1000))
	approval := domain.NewApproval(req, decimal.NewFromInt(800), "alice", domain.TemperatureGC, decimal.Zero, false, now)
	require.NoError(t, req.Approve(approval))
	return req
}

func newTestPublisher(producer sarama.SyncProducer) *KafkaEventPublisher {
	p := NewKafkaEventPublisherWithProducer(producer, testConfig(), zap.NewNop())
	p.retryBackoff = time.Millisecond
	return p
}

func TestKafkaEventPublisher_PublishLocateEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	req := approvedRequest(t)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event LocateEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != LocateApproved || event.RequestID != req.RequestID {
			return fmt.Errorf("unexpected event %s for %s", event.EventType, event.RequestID)
		}
		if event.ApprovedQuantity == nil || !event.ApprovedQuantity.Equal(decimal.NewFromInt(800)) {
			return errors.New("approved quantity missing")
		}
		return nil
	})

	publisher := newTestPublisher(producer)
	err := publisher.PublishLocateEvent(context.Background(), NewLocateEvent(LocateApproved, req, time.Now()))

	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_PublishInventoryEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	req := approvedRequest(t)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event InventoryEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != InventoryDecrement || event.ApprovalID != req.Approval.ApprovalID {
			return fmt.Errorf("unexpected event %s", event.EventType)
		}
		if !event.DecrementQuantity.Equal(decimal.NewFromInt(160)) {
			return fmt.Errorf("unexpected decrement %s", event.DecrementQuantity)
		}
		return nil
	})

	publisher := newTestPublisher(producer)
	err := publisher.PublishInventoryEvent(context.Background(), NewInventoryEvent(req, time.Now()))

	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_RetriesThenSucceeds(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	producer.ExpectSendMessageAndSucceed()

	publisher := newTestPublisher(producer)
	err := publisher.PublishLocateEvent(context.Background(), NewLocateEvent(LocateCreated, approvedRequest(t), time.Now()))

	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_FailsAfterAllAttempts(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	for i := 0; i < defaultPublishAttempts; i++ {
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	}

	publisher := newTestPublisher(producer)
	err := publisher.PublishLocateEvent(context.Background(), NewLocateEvent(LocateCreated, approvedRequest(t), time.Now()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.NoError(t, publisher.Close())
}

func TestKafkaEventPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	publisher := newTestPublisher(producer)
	err := publisher.PublishLocateEvent(ctx, NewLocateEvent(LocateCreated, approvedRequest(t), time.Now()))

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, publisher.Close())
}

func TestNewProducerConfig_Acks(t *testing.T) {
	tests := []struct {
		acks       string
		want       sarama.RequiredAcks
		idempotent bool
	}{
		{"0", sarama.NoResponse, false},
		{"1", sarama.WaitForLocal, false},
		{"all", sarama.WaitForAll, true},
		{"", sarama.WaitForAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.acks, func(t *testing.T) {
			cfg := newProducerConfig(&config.Config{KafkaAcks: tt.acks, KafkaRetries: 3, KafkaClientID: "locate-service"})
			assert.Equal(t, tt.want, cfg.Producer.RequiredAcks)
			assert.Equal(t, tt.idempotent, cfg.Producer.Idempotent)
			assert.Equal(t, "locate-service", cfg.ClientID)
		})
	}
}

func TestNewLocateEvent_Rejection(t *testing.T) {
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	req := domain.NewLocateRequest("AAPL", "CLIENT-1", "TRADER-1", "US", decimal.NewFromInt(10))
	require.NoError(t, req.Reject(domain.NewRejection(req, "RESTRICTED", "bob", false, now)))

	event := NewLocateEvent(LocateRejected, req, now)

	assert.Equal(t, "REJECTED", event.Status)
	assert.Equal(t, "RESTRICTED", event.Reason)
	assert.Nil(t, event.ApprovedQuantity)
	assert.NotEmpty(t, event.EventID)
}

func TestInMemoryEventPublisher_Records(t *testing.T) {
	publisher := NewInMemoryEventPublisher(zap.NewNop())
	req := approvedRequest(t)

	require.NoError(t, publisher.PublishLocateEvent(context.Background(), NewLocateEvent(LocateApproved, req, time.Now())))
	require.NoError(t, publisher.PublishInventoryEvent(context.Background(), NewInventoryEvent(req, time.Now())))

	require.Len(t, publisher.LocateEvents(), 1)
	require.Len(t, publisher.InventoryEvents(), 1)
	assert.Equal(t, req.SecurityID, publisher.InventoryEvents()[0].SecurityID)
}
