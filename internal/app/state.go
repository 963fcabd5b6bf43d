// Package app owns the per-client application state: language, cart, auth bridge and checkout.
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
	"ayah/internal/i18n"
	"ayah/internal/models"

	"go.uber.org/zap"
)

// ErrInvalidLang is returned for a language other than en or ar.
var ErrInvalidLang = errors.New("unsupported language")

// State is everything one client has, rehydrated from the client store.
type State struct {
	scope  clientstore.Scoped
	logger *zap.Logger

	cart     *cart.Store
	auth     *auth.Bridge
	checkout *checkout.Simulator

	mu       sync.RWMutex
	lang     models.Lang
	lastSeen time.Time

	unsubscribeCart func()
}

// ID is the client id.
func (s *State) ID() string { return s.scope.ClientID() }

func (s *State) Store() clientstore.Scoped { return s.scope }

func (s *State) Cart() *cart.Store { return s.cart }

func (s *State) Auth() *auth.Bridge { return s.auth }

func (s *State) Checkout() *checkout.Simulator { return s.checkout }

func (s *State) Lang() models.Lang {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// Dir is the text direction of the current language.
func (s *State) Dir() string {
	return i18n.Dir(s.Lang())
}

// SetLang switches language and saves the preference.
func (s *State) SetLang(ctx context.Context, l models.Lang) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLang, l)
	}
	s.mu.Lock()
	s.lang = l
	s.mu.Unlock()

	if err := s.scope.Set(ctx, clientstore.KeyLang, string(l)); err != nil {
		return fmt.Errorf("failed to save language: %w", err)
	}
	return nil
}

// ToggleLang flips between English and Arabic and returns the new language.
func (s *State) ToggleLang(ctx context.Context) (models.Lang, error) {
	s.mu.Lock()
	next := i18n.Toggle(s.lang)
	s.lang = next
	s.mu.Unlock()

	if err := s.scope.Set(ctx, clientstore.KeyLang, string(next)); err != nil {
		return next, fmt.Errorf("failed to save language: %w", err)
	}
	return next, nil
}

// OrderEmail is the cached sign-in email, else the signed-in user's email, else "".
func (s *State) OrderEmail(ctx context.Context) string {
	email, err := s.scope.Get(ctx, clientstore.KeyUserEmail)
	if err == nil && email != "" {
		return email
	}
	if err != nil && !errors.Is(err, clientstore.ErrNotFound) {
		s.logger.Warn("Failed to read cached email", zap.String("client_id", s.ID()), zap.Error(err))
	}
	if user := s.auth.User(); user != nil {
		return user.Email
	}
	return ""
}

// CachedName is the name remembered at registration, if any.
func (s *State) CachedName(ctx context.Context) string {
	name, err := s.scope.Get(ctx, clientstore.KeyUserName)
	if err != nil {
		return ""
	}
	return name
}

func (s *State) persistCart(snap cart.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.scope.SetJSON(ctx, clientstore.KeyCart, snap.Items); err != nil {
		s.logger.Warn("Failed to persist cart", zap.String("client_id", s.ID()), zap.Error(err))
	}
}

func (s *State) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// disposable reports whether evicting the state loses nothing a rehydrate would not restore cheaply.
func (s *State) disposable() bool {
	return s.cart.IsEmpty() &&
		s.checkout.State() == checkout.StatusIdle &&
		s.auth.State() != auth.StateAuthenticated
}

func (s *State) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Close releases the bridge subscription, a pending checkout and the cart subscription.
func (s *State) Close() {
	s.checkout.Close()
	s.auth.Close()
	if s.unsubscribeCart != nil {
		s.unsubscribeCart()
	}
}
