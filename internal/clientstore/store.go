// Package clientstore keeps the small per-client state a browser would otherwise hold in local
// storage: language, cached account details, the cart, the auth token and the last order.
// Values are plain text, unauthenticated and overwritten without versioning.
package clientstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	KeyLang      = "lang"
	KeyLastOrder = "lastOrder"
	KeyUserEmail = "userEmail"
	KeyUserName  = "userName"
	KeyCart      = "cart"
	KeyAuthToken = "auth-token"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("client store: key not found")

// Store is a key/value namespace per client.
type Store interface {
	Get(ctx context.Context, clientID, key string) (string, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID, key string) error
}

// Scoped binds a Store to one client.
type Scoped struct {
	store    Store
	clientID string
}

// Scope returns the view of store owned by clientID.
func Scope(store Store, clientID string) Scoped {
	return Scoped{store: store, clientID: clientID}
}

// ClientID is the owner of this scope.
func (s Scoped) ClientID() string { return s.clientID }

func (s Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.clientID, key)
}

func (s Scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.clientID, key, value)
}

func (s Scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.clientID, key)
}

// GetJSON decodes the value under key into dst.
func (s Scoped) GetJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func (s Scoped) SetJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
