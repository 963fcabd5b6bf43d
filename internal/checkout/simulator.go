// Package checkout simulates a purchase: it records the cart as the client's last order and
// reports success after a short delay. No payment is ever authorized.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ayah/internal/cart"
	"ayah/internal/events"
	"ayah/internal/models"
	"ayah/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is a checkout state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// IsTerminal reports whether the checkout has finished, successfully or not.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// DefaultEmail is recorded when neither a cached nor a signed-in email is known.
const DefaultEmail = "user@example.com"

// SuccessPath is where the client is sent once the order is confirmed.
const SuccessPath = "/success"

var (
	ErrEmptyCart          = cart.ErrEmptyCart
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrOrderNotRecorded   = errors.New("order could not be recorded")
)

// EmailSource yields the address recorded on the order, or "" when unknown.
type EmailSource interface {
	OrderEmail(ctx context.Context) string
}

// EmailFunc adapts a function to EmailSource.
type EmailFunc func(ctx context.Context) string

func (f EmailFunc) OrderEmail(ctx context.Context) string { return f(ctx) }

// View is what the HTTP layer renders for a checkout.
type View struct {
	State    Status        `json:"state"`
	Order    *models.Order `json:"order,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Simulator is the checkout state machine of one client.
type Simulator struct {
	cart      *cart.Store
	orders    repositories.OrderRepository
	email     EmailSource
	publisher events.Publisher
	delay     time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	state   Status
	order   *models.Order
	lastErr error
	timer   *time.Timer
	// bumped on every reset so a stale timer cannot complete a newer checkout
	generation int
}

// NewSimulator creates an idle simulator. A nil publisher drops events.
func NewSimulator(c *cart.Store, orders repositories.OrderRepository, email EmailSource, publisher events.Publisher, delay time.Duration, logger *zap.Logger) *Simulator {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Simulator{
		cart:      c,
		orders:    orders,
		email:     email,
		publisher: publisher,
		delay:     delay,
		logger:    logger,
		state:     StatusIdle,
	}
}

// Start places an order from the current cart. The cart is cleared immediately and stays locked
// until the simulated confirmation fires.
func (s *Simulator) Start(ctx context.Context) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatusProcessing:
		return nil, ErrCheckoutInProgress
	case StatusSuccess, StatusError:
		s.resetLocked()
	}

	snap, err := s.cart.LockForCheckout()
	if err != nil {
		return nil, err
	}

	s.state = StatusProcessing
	s.cart.Clear()

	order := &models.Order{
		OrderID:    "ORD-" + uuid.NewString(),
		Email:      s.orderEmail(ctx),
		Items:      make([]models.OrderItem, 0, len(snap.Items)),
		TotalPrice: snap.TotalPrice.Round(2).InexactFloat64(),
		Timestamp:  time.Now().UTC(),
	}
	for _, it := range snap.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	if err := s.orders.SaveLast(ctx, order); err != nil {
		s.logger.Error("Failed to record order", zap.String("order_id", order.OrderID), zap.Error(err))
		s.state = StatusError
		s.lastErr = err
		s.cart.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrOrderNotRecorded, err)
	}
	s.order = order

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.Warn("Failed to publish order event", zap.String("order_id", order.OrderID), zap.Error(err))
	}

	generation := s.generation
	s.timer = time.AfterFunc(s.delay, func() { s.complete(generation) })

	s.logger.Info("Order placed", zap.String("order_id", order.OrderID), zap.Float64("total", order.TotalPrice))
	return order, nil
}

func (s *Simulator) orderEmail(ctx context.Context) string {
	if s.email != nil {
		if email := s.email.OrderEmail(ctx); email != "" {
			return email
		}
	}
	return DefaultEmail
}

func (s *Simulator) complete(generation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation || s.state != StatusProcessing {
		return
	}
	s.state = StatusSuccess
	s.timer = nil
	s.cart.Unlock()
}

// Reset returns a finished checkout to idle. It fails while processing.
func (s *Simulator) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatusProcessing {
		return ErrCheckoutInProgress
	}
	s.resetLocked()
	return nil
}

func (s *Simulator) resetLocked() {
	s.state = StatusIdle
	s.order = nil
	s.lastErr = nil
	s.generation++
}

// State returns the current state.
func (s *Simulator) State() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status describes the current checkout; Redirect is set once it succeeded.
func (s *Simulator) Status() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{State: s.state}
	if s.order != nil {
		order := *s.order
		v.Order = &order
	}
	if s.state == StatusSuccess {
		v.Redirect = SuccessPath
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	return v
}

// LastOrder reads the order snapshot kept for the confirmation page.
func (s *Simulator) LastOrder(ctx context.Context) (*models.Order, error) {
	return s.orders.GetLast(ctx)
}

// Close stops a pending confirmation and releases the cart.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.state == StatusProcessing {
		s.cart.Unlock()
		s.resetLocked()
	}
}
