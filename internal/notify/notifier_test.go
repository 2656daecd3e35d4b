package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"eventflow/internal/config"
	"eventflow/internal/logging"
	"eventflow/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func sampleOrder() *models.OrderRecord {
	return &models.OrderRecord{
		OrderNumber:        "EVT-1721498400000",
		PaymentMethod:      models.PaymentCard,
		PaymentMethodLabel: "Credit Card",
		Total:              "339.43",
		Email:              "jane@example.com",
		Tickets: []models.OrderTicket{
			{EventTitle: "Summer Music Festival 2024", TicketType: "VIP Pass", Quantity: 2, Price: "299.98"},
		},
	}
}

func TestAMQPNotifier_OrderConfirmed(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, "eventflow.orders", "order.confirmed", false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var body OrderConfirmedMessage
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return false
		}
		return msg.DeliveryMode == amqp.Persistent &&
			msg.ContentType == "application/json" &&
			msg.MessageId == "EVT-1721498400000" &&
			body.Type == "order.confirmed" &&
			body.Order.Total == "339.43"
	})).Return(nil)

	n := NewAMQPNotifierWithPublisher(pub, "eventflow.orders", "order.confirmed", logging.Discard())

	err := n.OrderConfirmed(context.Background(), sampleOrder())
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestAMQPNotifier_PublishError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).
		Return(errors.New("channel closed"))

	n := NewAMQPNotifierWithPublisher(pub, "eventflow.orders", "order.confirmed", logging.Discard())

	err := n.OrderConfirmed(context.Background(), sampleOrder())
	assert.ErrorContains(t, err, "channel closed")
	assert.ErrorContains(t, err, "EVT-1721498400000")
}

func TestLogNotifier_OrderConfirmed(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.OrderConfirmed(context.Background(), sampleOrder()))
	assert.Contains(t, buf.String(), "confirmation email sent")
	assert.Contains(t, buf.String(), "jane@example.com")
	assert.Contains(t, buf.String(), "tickets=2")
	assert.NoError(t, n.Close())
}

func TestNew_FallsBackToLogNotifier(t *testing.T) {
	n := New(config.NotifyConfig{}, logging.Discard())
	assert.IsType(t, &LogNotifier{}, n)

	n = New(config.NotifyConfig{AMQPURL: "not a url"}, logging.Discard())
	assert.IsType(t, &LogNotifier{}, n)
}
