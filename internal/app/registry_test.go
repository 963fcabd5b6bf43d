package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"ayah/internal/app"
	"ayah/internal/auth"
	"ayah/internal/clientstore"
	"ayah/internal/identity"
	"ayah/internal/models"
	"ayah/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRegistry(t *testing.T) (*app.Registry, clientstore.Store) {
	return newRegistryWithDisposableIdle(t, 0)
}

func newRegistryWithDisposableIdle(t *testing.T, disposableIdle time.Duration) (*app.Registry, clientstore.Store) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	store := clientstore.NewMemoryStore()
	reg := app.NewRegistry(app.Deps{
		Store:          store,
		Identity:       identity.NewLocalDirectory(repositories.NewGORMUserRepository(db), "secret", zap.NewNop()),
		CheckoutDelay:  time.Hour,
		Logger:         zap.NewNop(),
		DisposableIdle: disposableIdle,
	})
	t.Cleanup(reg.Close)
	return reg, store
}

var lesson = models.CartItem{ID: "juz-amma", Name: "Juz' Amma", Price: 60, Quantity: 1, Type: models.ItemTypeLesson}

func TestRegistry_GetReturnsSameState(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	a, err := reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	b, err := reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	c, err := reg.Get(ctx, "client-2", "")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_LanguageNegotiationAndPersistence(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()

	st, err := reg.Get(ctx, "client-1", "ar-SA,ar;q=0.9")
	require.NoError(t, err)
	assert.Equal(t, models.LangArabic, st.Lang())
	assert.Equal(t, "rtl", st.Dir())

	next, err := st.ToggleLang(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LangEnglish, next)

	saved, err := store.Get(ctx, "client-1", clientstore.KeyLang)
	require.NoError(t, err)
	assert.Equal(t, "en", saved)

	assert.ErrorIs(t, st.SetLang(ctx, "fr"), app.ErrInvalidLang)

	// a saved preference beats the header after rehydration
	reg.Evict(0)
	st, err = reg.Get(ctx, "client-1", "ar")
	require.NoError(t, err)
	assert.Equal(t, models.LangEnglish, st.Lang())
}

func TestRegistry_CartIsPersistedAndRehydrated(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	st, err := reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	require.NoError(t, st.Cart().AddItem(lesson))
	require.NoError(t, st.Cart().AddItem(lesson))

	assert.Equal(t, 1, reg.Evict(0))
	assert.Equal(t, 0, reg.Len())

	st, err = reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Cart().TotalItems())
	assert.Equal(t, "120", st.Cart().TotalPrice().String())
}

func TestRegistry_CorruptCartStartsEmpty(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "client-1", clientstore.KeyCart, "{not json"))

	st, err := reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	assert.True(t, st.Cart().IsEmpty())
}

func TestRegistry_EvictKeepsCheckoutInFlight(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	st, err := reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	require.NoError(t, st.Cart().AddItem(lesson))
	_, err = st.Checkout().Start(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, reg.Evict(0))
	assert.Equal(t, 1, reg.Len())
}

func TestState_OrderEmailFallbacks(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()

	st, err := reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	require.NoError(t, st.Auth().Wait(ctx))
	assert.Equal(t, auth.StateAnonymous, st.Auth().State())
	assert.Equal(t, "", st.OrderEmail(ctx))

	_, err = st.Auth().SignUp(ctx, "parent@example.com", "secret1", "Amina")
	require.NoError(t, err)
	_, err = st.Auth().SignIn(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", st.OrderEmail(ctx))

	require.NoError(t, store.Set(ctx, "client-1", clientstore.KeyUserEmail, "cached@example.com"))
	assert.Equal(t, "cached@example.com", st.OrderEmail(ctx))
}

func TestState_CheckoutRecordsEmail(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "client-1", clientstore.KeyUserEmail, "parent@example.com"))

	st, err := reg.Get(ctx, "client-1", "")
	require.NoError(t, err)
	require.NoError(t, st.Cart().AddItem(lesson))

	order, err := st.Checkout().Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", order.Email)
	assert.Equal(t, 60.0, order.TotalPrice)

	// the cleared cart is persisted too
	var items []models.CartItem
	require.NoError(t, st.Store().GetJSON(ctx, clientstore.KeyCart, &items))
	assert.Empty(t, items)
}

func TestRegistry_GetRacingEvictReturnsLiveState(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()
	const maxIdle = 20 * time.Millisecond

	for round := 0; round < 10; round++ {
		_, err := reg.Get(ctx, "client-1", "")
		require.NoError(t, err)
		time.Sleep(maxIdle + 10*time.Millisecond)

		var wg sync.WaitGroup
		var st *app.State
		wg.Add(2)
		go func() {
			defer wg.Done()
			var err error
			st, err = reg.Get(ctx, "client-1", "")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			reg.Evict(maxIdle)
		}()
		wg.Wait()

		again, err := reg.Get(ctx, "client-1", "")
		require.NoError(t, err)
		require.Same(t, st, again, "round %d", round)

		require.NoError(t, st.Cart().AddItem(lesson))
		var items []models.CartItem
		require.NoError(t, clientstore.Scope(store, "client-1").GetJSON(ctx, clientstore.KeyCart, &items))
		assert.Equal(t, st.Cart().Items(), items)
		st.Cart().Clear()
	}
}

func TestRegistry_DisposableStatesEvictSooner(t *testing.T) {
	reg, _ := newRegistryWithDisposableIdle(t, 10*time.Millisecond)
	ctx := context.Background()

	_, err := reg.Get(ctx, "visitor", "")
	require.NoError(t, err)
	shopper, err := reg.Get(ctx, "shopper", "")
	require.NoError(t, err)
	require.NoError(t, shopper.Cart().AddItem(lesson))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, reg.Evict(time.Hour))
	assert.Equal(t, 1, reg.Len())

	again, err := reg.Get(ctx, "shopper", "")
	require.NoError(t, err)
	assert.Same(t, shopper, again)
}
