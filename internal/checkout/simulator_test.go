package checkout_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ayah/internal/cart"
	"ayah/internal/checkout"
	"ayah/internal/clientstore"
	"ayah/internal/models"
	"ayah/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type failingOrders struct{}

func (failingOrders) SaveLast(context.Context, *models.Order) error { return errors.New("disk full") }

func (failingOrders) GetLast(context.Context) (*models.Order, error) {
	return nil, repositories.ErrOrderNotFound
}

var lesson = models.CartItem{ID: "juz-amma", Name: "Juz Amma", Price: 60, Quantity: 1, Type: models.ItemTypeLesson}

type fixture struct {
	cart   *cart.Store
	orders *repositories.ClientOrderRepository
	sim    *checkout.Simulator
}

func newFixture(t *testing.T, delay time.Duration, email string, pub *MockPublisher) fixture {
	c := cart.NewStore()
	orders := repositories.NewClientOrderRepository(clientstore.Scope(clientstore.NewMemoryStore(), "client-1"))
	p := pub
	if p == nil {
		p = new(MockPublisher)
		p.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil)
	}
	sim := checkout.NewSimulator(c, orders, checkout.EmailFunc(func(context.Context) string { return email }), p, delay, zap.NewNop())
	t.Cleanup(sim.Close)
	return fixture{cart: c, orders: orders, sim: sim}
}

func TestSimulator_EmptyCartStaysIdle(t *testing.T) {
	f := newFixture(t, 0, "", nil)

	_, err := f.sim.Start(context.Background())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, checkout.StatusIdle, f.sim.State())

	_, err = f.sim.LastOrder(context.Background())
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}

func TestSimulator_PlacesOrder(t *testing.T) {
	f := newFixture(t, time.Hour, "", nil)
	require.NoError(t, f.cart.AddItem(lesson))

	order, err := f.sim.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.OrderID, "ORD-"))
	assert.Equal(t, 60.00, order.TotalPrice)
	assert.Equal(t, checkout.DefaultEmail, order.Email)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "juz-amma", order.Items[0].ID)

	assert.Equal(t, checkout.StatusProcessing, f.sim.State())
	assert.True(t, f.cart.IsEmpty())
	assert.ErrorIs(t, f.cart.AddItem(lesson), cart.ErrCartLocked)

	saved, err := f.sim.LastOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, saved.OrderID)
}

func TestSimulator_OrderIDsAreUnique(t *testing.T) {
	f := newFixture(t, 0, "", nil)
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		require.NoError(t, f.sim.Reset())
		require.Eventually(t, func() bool { return f.sim.State() == checkout.StatusIdle }, time.Second, 5*time.Millisecond)
		require.NoError(t, f.cart.AddItem(lesson))
		order, err := f.sim.Start(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[order.OrderID])
		seen[order.OrderID] = true
		require.Eventually(t, func() bool { return f.sim.State() == checkout.StatusSuccess }, time.Second, 5*time.Millisecond)
	}
}

func TestSimulator_UsesEmailSource(t *testing.T) {
	f := newFixture(t, time.Hour, "parent@example.com", nil)
	require.NoError(t, f.cart.AddItem(lesson))

	order, err := f.sim.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", order.Email)
}

func TestSimulator_SucceedsAfterDelay(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond, "", nil)
	require.NoError(t, f.cart.AddItem(lesson))

	_, err := f.sim.Start(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.sim.State() == checkout.StatusSuccess
	}, time.Second, 5*time.Millisecond)

	view := f.sim.Status()
	assert.Equal(t, checkout.SuccessPath, view.Redirect)
	require.NotNil(t, view.Order)
	assert.False(t, f.cart.Locked())
}

func TestSimulator_RejectsConcurrentStart(t *testing.T) {
	f := newFixture(t, time.Hour, "", nil)
	require.NoError(t, f.cart.AddItem(lesson))

	_, err := f.sim.Start(context.Background())
	require.NoError(t, err)

	_, err = f.sim.Start(context.Background())
	assert.ErrorIs(t, err, checkout.ErrCheckoutInProgress)
	assert.ErrorIs(t, f.sim.Reset(), checkout.ErrCheckoutInProgress)
}

func TestSimulator_RestartAfterSuccess(t *testing.T) {
	f := newFixture(t, 0, "", nil)
	require.NoError(t, f.cart.AddItem(lesson))
	_, err := f.sim.Start(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.sim.State() == checkout.StatusSuccess }, time.Second, 5*time.Millisecond)

	// an empty cart after success resets to idle and reports the empty cart
	_, err = f.sim.Start(context.Background())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, checkout.StatusIdle, f.sim.State())
}

func TestSimulator_RecordFailure(t *testing.T) {
	c := cart.NewStore()
	require.NoError(t, c.AddItem(lesson))
	sim := checkout.NewSimulator(c, failingOrders{}, nil, nil, time.Hour, zap.NewNop())
	defer sim.Close()

	_, err := sim.Start(context.Background())
	assert.ErrorIs(t, err, checkout.ErrOrderNotRecorded)
	assert.Equal(t, checkout.StatusError, sim.State())
	assert.False(t, c.Locked())
	assert.Equal(t, "disk full", sim.Status().Error)

	require.NoError(t, sim.Reset())
	assert.Equal(t, checkout.StatusIdle, sim.State())
}

func TestSimulator_PublishFailureDoesNotFailCheckout(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishOrderPlaced", mock.Anything, mock.AnythingOfType("*models.Order")).Return(errors.New("broker down")).Once()

	f := newFixture(t, time.Hour, "", pub)
	require.NoError(t, f.cart.AddItem(lesson))

	_, err := f.sim.Start(context.Background())
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestSimulator_CloseReleasesCart(t *testing.T) {
	f := newFixture(t, time.Hour, "", nil)
	require.NoError(t, f.cart.AddItem(lesson))
	_, err := f.sim.Start(context.Background())
	require.NoError(t, err)

	f.sim.Close()
	assert.False(t, f.cart.Locked())
	assert.Equal(t, checkout.StatusIdle, f.sim.State())
}

func TestSimulator_StartRacingRemovalNeverRecordsEmptyOrder(t *testing.T) {
	for i := 0; i < 200; i++ {
		f := newFixture(t, time.Hour, "", nil)
		require.NoError(t, f.cart.AddItem(lesson))

		removed := make(chan error, 1)
		go func() { removed <- f.cart.RemoveItem(lesson.ID) }()
		order, err := f.sim.Start(context.Background())
		removeErr := <-removed

		if err != nil {
			assert.ErrorIs(t, err, checkout.ErrEmptyCart)
			assert.NoError(t, removeErr)
			assert.Equal(t, checkout.StatusIdle, f.sim.State())
			assert.False(t, f.cart.Locked())
			continue
		}
		assert.NotEmpty(t, order.Items)
		assert.ErrorIs(t, removeErr, cart.ErrCartLocked)
		f.sim.Close()
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, checkout.StatusIdle.IsTerminal())
	assert.False(t, checkout.StatusProcessing.IsTerminal())
	assert.True(t, checkout.StatusSuccess.IsTerminal())
	assert.True(t, checkout.StatusError.IsTerminal())
}
