// Package identity is the boundary to the identity provider. A Provider is scoped to one client:
// its session token lives in that client's store, the way a browser SDK keeps it in local storage.
package identity

import (
	"context"
	"sync"

	"ayah/internal/clientstore"
	"ayah/internal/models"
)

// EventType names a session change.
type EventType string

const (
	EventSignedIn    EventType = "SIGNED_IN"
	EventSignedOut   EventType = "SIGNED_OUT"
	EventUserUpdated EventType = "USER_UPDATED"
)

// Event is pushed to OnSessionChange subscribers. Session is nil after sign-out.
type Event struct {
	Type    EventType
	Session *models.Session
}

// Profile is free-form account data stored with the user at sign-up.
type Profile map[string]string

// Provider is the capability set the application consumes.
type Provider interface {
	GetSession(ctx context.Context) (*models.Session, error)
	OnSessionChange(fn func(Event)) (unsubscribe func())
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string, profile Profile) (*models.User, error)
	SignOut(ctx context.Context) error
}

// Factory builds the Provider of one client.
type Factory interface {
	NewProvider(scope clientstore.Scoped) Provider
}

// Error codes attached to a ProviderError. They follow GoTrue's error_code values.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserAlreadyExists  = "user_already_exists"
	CodeWeakPassword       = "weak_password"
	CodeValidationFailed   = "validation_failed"
)

// ProviderError carries the provider's own message. It is shown to users as is; Code is for
// branching and may be empty when the provider sent none.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// notifier fans session events out to subscribers.
type notifier struct {
	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func (n *notifier) OnSessionChange(fn func(Event)) func() {
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[int]func(Event))
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

func (n *notifier) emit(ev Event) {
	n.mu.Lock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
