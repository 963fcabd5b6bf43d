package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ayah/internal/auth"
	"ayah/internal/cart"
	"ayah/internal/checkout"
	"ayah/internal/clientstore"
	"ayah/internal/events"
	"ayah/internal/i18n"
	"ayah/internal/identity"
	"ayah/internal/models"
	"ayah/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Deps are the shared collaborators every client state is built from.
type Deps struct {
	Store         clientstore.Store
	Identity      identity.Factory
	Publisher     events.Publisher
	CheckoutDelay time.Duration
	Logger        *zap.Logger

	// DisposableIdle, when set, is the shorter idle limit for states that hold nothing beyond
	// what the client store already has: an empty cart, no session and an idle checkout.
	DisposableIdle time.Duration
}

// Registry hands out one State per client id, creating it on first use.
type Registry struct {
	deps Deps

	mu     sync.RWMutex
	states map[string]*State
	build  singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry(deps Deps) *Registry {
	if deps.Publisher == nil {
		deps.Publisher = events.Noop{}
	}
	return &Registry{
		deps:   deps,
		states: make(map[string]*State),
	}
}

// Get returns the state of clientID, rehydrating it from the client store the first time.
// acceptLanguage picks the language only when the client never saved a preference.
func (r *Registry) Get(ctx context.Context, clientID, acceptLanguage string) (*State, error) {
	for {
		if st := r.lookup(clientID); st != nil {
			return st, nil
		}

		_, err, _ := r.build.Do(clientID, func() (interface{}, error) {
			r.mu.RLock()
			_, ok := r.states[clientID]
			r.mu.RUnlock()
			if ok {
				return nil, nil
			}

			st, err := r.newState(ctx, clientID, acceptLanguage)
			if err != nil {
				return nil, err
			}
			r.mu.Lock()
			r.states[clientID] = st
			r.mu.Unlock()
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
		// an eviction between the build and the lookup sends us round again
	}
}

// lookup touches the state under the registry lock, so Evict either removed it already or sees
// the fresh timestamp.
func (r *Registry) lookup(clientID string) *State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[clientID]
	if !ok {
		return nil
	}
	st.touch()
	return st
}

func (r *Registry) newState(ctx context.Context, clientID, acceptLanguage string) (*State, error) {
	scope := clientstore.Scope(r.deps.Store, clientID)
	logger := r.deps.Logger.With(zap.String("client_id", clientID))

	lang, err := loadLang(ctx, scope, acceptLanguage)
	if err != nil {
		return nil, err
	}

	c := cart.NewStore()
	var items []models.CartItem
	switch err := scope.GetJSON(ctx, clientstore.KeyCart, &items); {
	case err == nil:
		c.Restore(items)
	case errors.Is(err, clientstore.ErrNotFound):
	default:
		// a corrupt snapshot starts an empty cart rather than locking the client out
		logger.Warn("Discarding unreadable cart", zap.Error(err))
	}

	st := &State{
		scope:    scope,
		logger:   logger,
		cart:     c,
		auth:     auth.NewBridge(r.deps.Identity.NewProvider(scope), logger),
		lang:     lang,
		lastSeen: time.Now(),
	}
	st.checkout = checkout.NewSimulator(c, repositories.NewClientOrderRepository(scope), st, r.deps.Publisher, r.deps.CheckoutDelay, logger)
	st.unsubscribeCart = c.Subscribe(st.persistCart)
	st.auth.Start(ctx)

	return st, nil
}

func loadLang(ctx context.Context, scope clientstore.Scoped, acceptLanguage string) (models.Lang, error) {
	saved, err := scope.Get(ctx, clientstore.KeyLang)
	switch {
	case err == nil:
		if l, ok := i18n.Parse(saved); ok {
			return l, nil
		}
	case !errors.Is(err, clientstore.ErrNotFound):
		return "", fmt.Errorf("failed to load client state: %w", err)
	}
	return i18n.Negotiate(acceptLanguage), nil
}

// Len is the number of live states.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// Evict drops states idle for longer than maxIdle, or DisposableIdle for disposable ones. Their
// data stays in the client store and is rehydrated on the next request. States with a checkout in
// flight are kept.
func (r *Registry) Evict(maxIdle time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-maxIdle)
	disposableCutoff := cutoff
	if d := r.deps.DisposableIdle; d > 0 && d < maxIdle {
		disposableCutoff = now.Add(-d)
	}

	r.mu.Lock()
	var stale []*State
	for id, st := range r.states {
		limit := cutoff
		if st.disposable() {
			limit = disposableCutoff
		}
		if st.idleSince().Before(limit) && st.checkout.State() != checkout.StatusProcessing {
			stale = append(stale, st)
			delete(r.states, id)
		}
	}
	r.mu.Unlock()

	for _, st := range stale {
		st.Close()
	}
	return len(stale)
}

// RunJanitor evicts idle states every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(maxIdle); n > 0 {
				r.deps.Logger.Debug("Evicted idle client states", zap.Int("count", n))
			}
		}
	}
}

// Close tears down every state.
func (r *Registry) Close() {
	r.mu.Lock()
	states := r.states
	r.states = make(map[string]*State)
	r.mu.Unlock()

	for _, st := range states {
		st.Close()
	}
}
