package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

func header(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishOrderPlaced(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})

	order := &domain.Order{
		ID:        12,
		Reference: "ORD-0123456789ABCDEF",
		UserID:    4,
		Total:     decimal.NewFromInt(45),
		Status:    domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(25)},
		},
	}
	p := NewPublisherWithProducer(producer, nil)
	require.NoError(t, p.PublishOrderPlaced(context.Background(), order))

	require.NotNil(t, sent)
	assert.Equal(t, TopicOrderPlaced, sent.Topic)
	assert.Equal(t, EventTypeOrderPlaced, header(sent, "event_type"))
	assert.NotEmpty(t, header(sent, "event_id"))

	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "user_4", string(key))

	body, err := sent.Value.Encode()
	require.NoError(t, err)
	var event OrderPlacedEvent
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, header(sent, "event_id"), event.EventID)
	assert.Equal(t, "ORD-0123456789ABCDEF", event.Reference)
	assert.True(t, event.Total.Equal(decimal.NewFromInt(45)))
	require.Len(t, event.Items, 2)
	assert.Equal(t, 2, event.Items[0].Quantity)
}

func TestPublishReportsProducerFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, nil)
	err := p.PublishProductViewed(context.Background(), domain.ProductView{ProductID: 3})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func viewedMessage(t *testing.T, event ProductViewedEvent, eventType string) *sarama.ConsumerMessage {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	msg := &sarama.ConsumerMessage{Topic: TopicProductViewed, Value: body}
	if eventType != "" {
		msg.Headers = append(msg.Headers, &sarama.RecordHeader{Key: []byte("event_type"), Value: []byte(eventType)})
	}
	return msg
}

func TestConsumerDispatchesProductViewed(t *testing.T) {
	c := newConsumer(nil, nil, "counter-worker", []string{TopicProductViewed})

	var got domain.ProductView
	c.RegisterHandler(EventTypeProductViewed, ProductViewedHandler(func(_ context.Context, event ProductViewedEvent) error {
		got = event.View()
		return nil
	}))

	msg := viewedMessage(t, ProductViewedEvent{ProductID: 8, UserID: 3, ViewerKey: "k"}, EventTypeProductViewed)
	require.NoError(t, c.handleMessage(context.Background(), msg))
	assert.Equal(t, domain.ProductView{ProductID: 8, UserID: 3, ViewerKey: "k"}, got)
}

func TestConsumerRejectsUnroutableMessages(t *testing.T) {
	c := newConsumer(nil, nil, "counter-worker", []string{TopicProductViewed})
	boom := errors.New("boom")
	c.RegisterHandler(EventTypeProductViewed, func(context.Context, []byte) error { return boom })

	assert.Error(t, c.handleMessage(context.Background(), viewedMessage(t, ProductViewedEvent{ProductID: 1}, "")))
	assert.Error(t, c.handleMessage(context.Background(), viewedMessage(t, ProductViewedEvent{ProductID: 1}, EventTypeOrderPlaced)))
	assert.ErrorIs(t, c.handleMessage(context.Background(), viewedMessage(t, ProductViewedEvent{ProductID: 1}, EventTypeProductViewed)), boom)

	bad := &sarama.ConsumerMessage{
		Value:   []byte("{"),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(EventTypeProductViewed)}},
	}
	c.RegisterHandler(EventTypeProductViewed, ProductViewedHandler(func(context.Context, ProductViewedEvent) error { return nil }))
	assert.Error(t, c.handleMessage(context.Background(), bad))
}

type recordingSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *recordingSession) Context() context.Context { return s.ctx }

func (s *recordingSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type bufferedClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c bufferedClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func claimOf(t *testing.T, events ...ProductViewedEvent) bufferedClaim {
	t.Helper()
	ch := make(chan *sarama.ConsumerMessage, len(events))
	for i, event := range events {
		msg := viewedMessage(t, event, EventTypeProductViewed)
		msg.Offset = int64(i)
		ch <- msg
	}
	close(ch)
	return bufferedClaim{messages: ch}
}

func TestConsumeClaimStopsBeforeTransientFailure(t *testing.T) {
	c := newConsumer(nil, nil, "counter-worker", []string{TopicProductViewed})
	c.retryBackoff = time.Millisecond
	var seen []uint
	c.RegisterHandler(EventTypeProductViewed, ProductViewedHandler(func(_ context.Context, event ProductViewedEvent) error {
		seen = append(seen, event.ProductID)
		if event.ProductID == 2 {
			return errors.New("pq: connection refused")
		}
		return nil
	}))

	session := &recordingSession{ctx: context.Background()}
	err := (&consumerGroupHandler{consumer: c}).ConsumeClaim(session,
		claimOf(t, ProductViewedEvent{ProductID: 1}, ProductViewedEvent{ProductID: 2}, ProductViewedEvent{ProductID: 3}))

	require.Error(t, err)
	assert.Equal(t, []int64{0}, session.marked)
	assert.Equal(t, []uint{1, 2}, seen)
}

func TestConsumeClaimSkipsPermanentFailures(t *testing.T) {
	c := newConsumer(nil, nil, "counter-worker", []string{TopicProductViewed})
	c.RegisterHandler(EventTypeProductViewed, ProductViewedHandler(func(_ context.Context, event ProductViewedEvent) error {
		if event.ProductID == 1 {
			return domain.Validation("product_id is required")
		}
		return nil
	}))

	session := &recordingSession{ctx: context.Background()}
	err := (&consumerGroupHandler{consumer: c}).ConsumeClaim(session,
		claimOf(t, ProductViewedEvent{ProductID: 1}, ProductViewedEvent{ProductID: 2}))

	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, session.marked)
}

func TestRetryableClassification(t *testing.T) {
	assert.False(t, retryable(nil))
	assert.True(t, retryable(errors.New("connection reset")))
	assert.False(t, retryable(domain.NotFound("product")))
	assert.False(t, retryable(Undeliverable(errors.New("bad payload"))))
}
