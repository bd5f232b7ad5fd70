package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"catalog/internal/models"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	called := m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return amqp.Queue{Name: name}, called.Error(0)
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func sampleEvent() models.ProductCreatedEvent {
	return models.ProductCreatedEvent{
		ProductID:     "p-1",
		Title:         "Mug",
		Category:      "Home",
		Price:         9.99,
		StockQuantity: 50,
		Status:        models.StatusPublished,
		ImageCount:    2,
		Timestamp:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewClient_DeclaresDurableQueue(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", DefaultQueue, true, false, false, false, amqp.Table(nil)).Return(nil).Once()

	client, err := newClient(ch, "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultQueue, client.queue)
	ch.AssertExpectations(t)
}

func TestNewClient_DeclareFailureClosesChannel(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", "catalog", true, false, false, false, amqp.Table(nil)).Return(errors.New("access refused")).Once()
	ch.On("Close").Return(nil).Once()

	client, err := newClient(ch, "catalog", zap.NewNop())
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "access refused")
	ch.AssertExpectations(t)
}

func TestPublishProductCreated(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", "catalog", true, false, false, false, amqp.Table(nil)).Return(nil)

	var published amqp.Publishing
	ch.On("Publish", "", "catalog", false, false, mock.AnythingOfType("amqp.Publishing")).
		Run(func(args mock.Arguments) { published = args.Get(4).(amqp.Publishing) }).
		Return(nil).Once()

	client, err := newClient(ch, "catalog", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, client.PublishProductCreated(context.Background(), sampleEvent()))

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, EventProductCreated, published.Type)
	assert.Equal(t, "p-1", published.MessageId)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(published.Body, &body))
	assert.Equal(t, "p-1", body["productId"])
	assert.Equal(t, "Mug", body["title"])
	assert.Equal(t, float64(2), body["imageCount"])
	ch.AssertExpectations(t)
}

func TestPublishProductCreated_Errors(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", DefaultQueue, true, false, false, false, amqp.Table(nil)).Return(nil)
	ch.On("Publish", "", DefaultQueue, false, false, mock.Anything).Return(amqp.ErrClosed).Once()

	client, err := newClient(ch, "", zap.NewNop())
	require.NoError(t, err)

	err = client.PublishProductCreated(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, amqp.ErrClosed)

	// A canceled context never reaches the channel.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, client.PublishProductCreated(ctx, sampleEvent()), context.Canceled)
	ch.AssertNumberOfCalls(t, "Publish", 1)
}

func TestClose(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", DefaultQueue, true, false, false, false, amqp.Table(nil)).Return(nil)
	ch.On("Close").Return(errors.New("channel already closed")).Once()

	client, err := newClient(ch, "", zap.NewNop())
	require.NoError(t, err)
	assert.ErrorContains(t, client.Close(), "channel already closed")
}
