// Package auth bridges a client's identity provider into the application state.
package auth

import (
	"context"
	"sync"

	"ayah/internal/identity"
	"ayah/internal/models"

	"go.uber.org/zap"
)

// State is the resolved authentication state of a client.
type State string

const (
	// StateUnknown means the session has not been resolved yet, or the provider could not be reached.
	StateUnknown       State = "unknown"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Snapshot is the bridge state as rendered by the HTTP layer.
type Snapshot struct {
	State      State        `json:"state"`
	IsLoading  bool         `json:"isLoading"`
	IsLoggedIn bool         `json:"isLoggedIn"`
	User       *models.User `json:"user"`
	Error      string       `json:"error,omitempty"`
}

// Bridge tracks the current user of one client.
type Bridge struct {
	provider identity.Provider
	logger   *zap.Logger

	mu      sync.RWMutex
	state   State
	user    *models.User
	loading bool
	lastErr error
	// set once a session event lands so a late initial lookup does not overwrite it
	settledByEvent bool

	startOnce   sync.Once
	ready       chan struct{}
	unsubscribe func()
}

// NewBridge creates a bridge in StateUnknown. Call Start to resolve the session.
func NewBridge(provider identity.Provider, logger *zap.Logger) *Bridge {
	return &Bridge{
		provider: provider,
		logger:   logger,
		state:    StateUnknown,
		loading:  true,
		ready:    make(chan struct{}),
	}
}

// Start subscribes to session changes and resolves the current session in the background.
// Calling it more than once has no effect.
func (b *Bridge) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		unsubscribe := b.provider.OnSessionChange(b.handleEvent)
		b.mu.Lock()
		b.unsubscribe = unsubscribe
		b.mu.Unlock()

		go b.resolve(context.WithoutCancel(ctx))
	})
}

func (b *Bridge) resolve(ctx context.Context) {
	defer close(b.ready)

	session, err := b.provider.GetSession(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if b.settledByEvent {
		return
	}
	if err != nil {
		b.logger.Warn("Failed to resolve session", zap.Error(err))
		b.lastErr = err
		b.state = StateUnknown
		return
	}
	b.lastErr = nil
	b.setSessionLocked(session)
}

func (b *Bridge) handleEvent(ev identity.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settledByEvent = true
	switch ev.Type {
	case identity.EventSignedOut:
		b.setSessionLocked(nil)
	case identity.EventSignedIn, identity.EventUserUpdated:
		b.setSessionLocked(ev.Session)
	}
}

func (b *Bridge) setSessionLocked(session *models.Session) {
	if session == nil {
		b.user = nil
		b.state = StateAnonymous
		return
	}
	user := session.User
	b.user = &user
	b.state = StateAuthenticated
	b.lastErr = nil
}

// Wait blocks until the initial session lookup has resolved or ctx is done.
func (b *Bridge) Wait(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Bridge) IsLoading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// IsLoggedIn is true only in StateAuthenticated.
func (b *Bridge) IsLoggedIn() bool {
	return b.State() == StateAuthenticated
}

// User returns a copy of the current user, or nil.
func (b *Bridge) User() *models.User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.user == nil {
		return nil
	}
	user := *b.user
	return &user
}

// LastError is the provider failure that left the bridge in StateUnknown, if any.
func (b *Bridge) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

func (b *Bridge) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := Snapshot{
		State:      b.state,
		IsLoading:  b.loading,
		IsLoggedIn: b.state == StateAuthenticated,
	}
	if b.user != nil {
		user := *b.user
		snap.User = &user
	}
	if b.lastErr != nil {
		snap.Error = b.lastErr.Error()
	}
	return snap
}

// SignIn signs in with email and password. Provider errors are returned unchanged.
func (b *Bridge) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	session, err := b.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.settledByEvent = true
	b.setSessionLocked(session)
	b.mu.Unlock()
	return b.User(), nil
}

// SignUp registers a new account with name stored in its profile. It does not sign in.
func (b *Bridge) SignUp(ctx context.Context, email, password, name string) (*models.User, error) {
	return b.provider.SignUp(ctx, email, password, identity.Profile{"name": name})
}

// Logout signs out at the provider and clears the local user even when the provider call fails.
func (b *Bridge) Logout(ctx context.Context) error {
	err := b.provider.SignOut(ctx)
	if err != nil {
		b.logger.Warn("Provider sign-out failed", zap.Error(err))
	}

	b.mu.Lock()
	b.settledByEvent = true
	b.setSessionLocked(nil)
	b.mu.Unlock()
	return err
}

// Close stops listening to session changes.
func (b *Bridge) Close() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
