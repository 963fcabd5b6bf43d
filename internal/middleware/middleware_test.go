package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ayah/internal/app"
	"ayah/internal/clientstore"
	"ayah/internal/identity"
	"ayah/internal/middleware"
	"ayah/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubProvider answers GetSession with a fixed result.
type stubProvider struct {
	session *models.Session
	err     error
}

func (p stubProvider) GetSession(context.Context) (*models.Session, error) { return p.session, p.err }
func (p stubProvider) OnSessionChange(func(identity.Event)) func()         { return func() {} }
func (p stubProvider) SignInWithPassword(context.Context, string, string) (*models.Session, error) {
	return nil, errors.New("not supported")
}
func (p stubProvider) SignUp(context.Context, string, string, identity.Profile) (*models.User, error) {
	return nil, errors.New("not supported")
}
func (p stubProvider) SignOut(context.Context) error { return nil }

type stubFactory struct{ provider stubProvider }

func (f stubFactory) NewProvider(clientstore.Scoped) identity.Provider { return f.provider }

func newApp(t *testing.T, p stubProvider) *fiber.App {
	reg := app.NewRegistry(app.Deps{
		Store:         clientstore.NewMemoryStore(),
		Identity:      stubFactory{provider: p},
		CheckoutDelay: time.Second,
		Logger:        zap.NewNop(),
	})
	t.Cleanup(reg.Close)

	a := fiber.New()
	a.Use(middleware.ClientSession(false), middleware.ClientState(reg, zap.NewNop()))
	a.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(middleware.ClientID(c) + "|" + string(middleware.State(c).Lang()))
	})
	a.Get("/me", middleware.AuthRequired(zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString(middleware.User(c).Email)
	})
	return a
}

func TestClientSession_IssuesAndReusesCookie(t *testing.T) {
	a := newApp(t, stubProvider{})

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil), -1)
	require.NoError(t, err)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.ClientCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, cookies[0].Value+"|en", string(body))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	resp, err = a.Test(req, -1)
	require.NoError(t, err)
	assert.Empty(t, resp.Cookies())
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, cookies[0].Value+"|en", string(body))
}

func TestClientSession_ReplacesMalformedCookie(t *testing.T) {
	a := newApp(t, stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.ClientCookie, Value: "../../etc"})
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	require.Len(t, resp.Cookies(), 1)
	assert.NotEqual(t, "../../etc", resp.Cookies()[0].Value)
}

func TestClientState_NegotiatesLanguage(t *testing.T) {
	a := newApp(t, stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Accept-Language", "ar-EG,ar;q=0.9,en;q=0.5")
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "|ar")
}

func TestAuthRequired(t *testing.T) {
	tests := []struct {
		name     string
		provider stubProvider
		status   int
	}{
		{"anonymous", stubProvider{}, fiber.StatusUnauthorized},
		{"provider down", stubProvider{err: errors.New("identity provider unreachable")}, fiber.StatusServiceUnavailable},
		{"authenticated", stubProvider{session: &models.Session{User: models.User{ID: "u1", Email: "parent@example.com"}}}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t, tt.provider)
			resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/me", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "parent@example.com", string(body))
			}
		})
	}
}
