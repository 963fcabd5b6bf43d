package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ayah/internal/config"
	"ayah/internal/events"
	"ayah/internal/mailer"
	"ayah/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMailer) Name() string { return "mock" }

func order() *models.Order {
	return &models.Order{
		OrderID:    "ORD-1",
		Email:      "parent@example.com",
		Items:      []models.OrderItem{{ID: "juz-amma", Name: "Juz Amma", Price: 60, Quantity: 1}},
		TotalPrice: 60,
		Timestamp:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestEncodeDecode(t *testing.T) {
	body, err := events.Encode(order())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"order.placed"`)

	ev, err := events.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", ev.Order.OrderID)
	assert.True(t, order().Timestamp.Equal(ev.Order.Timestamp))
}

func TestDecode_RejectsOtherTypes(t *testing.T) {
	_, err := events.Decode([]byte(`{"type":"order.cancelled","order":{}}`))
	assert.Error(t, err)

	_, err = events.Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var bus events.Bus = events.Noop{}
	assert.NoError(t, bus.PublishOrderPlaced(context.Background(), order()))
	assert.NoError(t, bus.SubscribeOrderPlaced(nil))
	assert.NoError(t, bus.Close())
}

func TestConfirmationHandler_SendsReceipt(t *testing.T) {
	m := new(MockMailer)
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "parent@example.com" && msg.From == "noreply@yourdomain.com"
	})).Return(nil).Once()

	h := events.NewConfirmationHandler(m, "noreply@yourdomain.com", zap.NewNop())
	require.NoError(t, h.Handle(context.Background(), events.OrderPlaced{Type: events.TypeOrderPlaced, Order: *order()}))
	m.AssertExpectations(t)
}

func TestConfirmationHandler_MailerFailure(t *testing.T) {
	m := new(MockMailer)
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

	h := events.NewConfirmationHandler(m, "noreply@yourdomain.com", zap.NewNop())
	err := h.Handle(context.Background(), events.OrderPlaced{Order: *order()})
	assert.ErrorContains(t, err, "ORD-1")
}

func TestConfirmationHandler_SkipsWithoutMailer(t *testing.T) {
	h := events.NewConfirmationHandler(mailer.Unconfigured{}, "noreply@yourdomain.com", zap.NewNop())
	assert.NoError(t, h.Handle(context.Background(), events.OrderPlaced{Order: *order()}))
}

func TestConnect(t *testing.T) {
	bus, err := events.Connect(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, events.Noop{}, bus)

	_, err = events.Connect(&config.Config{EventBroker: "kafka"}, zap.NewNop())
	assert.Error(t, err)
}
