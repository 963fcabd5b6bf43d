package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ayah/internal/clientstore"
	"ayah/internal/models"
	"ayah/pkg/outbound"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// GoTrue talks to a hosted GoTrue-compatible auth server (the API behind Supabase Auth).
type GoTrue struct {
	baseURL string
	anonKey string
	http    *outbound.Client
	lookups singleflight.Group
	logger  *zap.Logger
}

// NewGoTrue creates a hosted-provider factory. baseURL has no trailing slash.
func NewGoTrue(baseURL, anonKey string, client *outbound.Client, logger *zap.Logger) *GoTrue {
	return &GoTrue{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    client,
		logger:  logger,
	}
}

// NewProvider implements Factory.
func (g *GoTrue) NewProvider(scope clientstore.Scoped) Provider {
	return &gotrueProvider{gt: g, scope: scope}
}

type gotrueUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func (u gotrueUser) toModel() models.User {
	name, _ := u.UserMetadata["name"].(string)
	return models.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         *gotrueUser `json:"user"`
}

type storedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (g *GoTrue) headers(bearer string) map[string]string {
	if bearer == "" {
		bearer = g.anonKey
	}
	return map[string]string{
		"apikey":        g.anonKey,
		"Authorization": "Bearer " + bearer,
	}
}

// fetchUser resolves the user behind an access token. Concurrent lookups of the same token share
// one upstream call.
func (g *GoTrue) fetchUser(ctx context.Context, accessToken string) (*gotrueUser, int, error) {
	type result struct {
		user   *gotrueUser
		status int
	}
	v, err, _ := g.lookups.Do(accessToken, func() (interface{}, error) {
		resp, err := g.http.Do(ctx, outbound.Request{
			Method:  http.MethodGet,
			URL:     g.baseURL + "/auth/v1/user",
			Headers: g.headers(accessToken),
		})
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return result{status: resp.Status}, nil
		}
		var u gotrueUser
		if err := json.Unmarshal(resp.Body, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		return result{user: &u, status: resp.Status}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	r := v.(result)
	return r.user, r.status, nil
}

type gotrueProvider struct {
	notifier
	gt    *GoTrue
	scope clientstore.Scoped
}

func (p *gotrueProvider) GetSession(ctx context.Context) (*models.Session, error) {
	var tok storedToken
	err := p.scope.GetJSON(ctx, clientstore.KeyAuthToken, &tok)
	if errors.Is(err, clientstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		p.forget(ctx)
		return nil, nil
	}
	if !tok.ExpiresAt.IsZero() && time.Now().After(tok.ExpiresAt) {
		p.forget(ctx)
		return nil, nil
	}

	user, status, err := p.gt.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		p.forget(ctx)
		return nil, nil
	case user == nil:
		return nil, &ProviderError{Status: status, Message: http.StatusText(status)}
	}
	return &models.Session{AccessToken: tok.AccessToken, ExpiresAt: tok.ExpiresAt, User: user.toModel()}, nil
}

func (p *gotrueProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := p.gt.http.Do(ctx, outbound.Request{
		Method:  http.MethodPost,
		URL:     p.gt.baseURL + "/auth/v1/token?grant_type=password",
		Headers: p.gt.headers(""),
		Body:    map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, decodeProviderError(resp)
	}

	var gs gotrueSession
	if err := json.Unmarshal(resp.Body, &gs); err != nil || gs.AccessToken == "" || gs.User == nil {
		return nil, &ProviderError{Status: http.StatusBadGateway, Message: "Unexpected response from identity provider"}
	}

	tok := storedToken{AccessToken: gs.AccessToken, RefreshToken: gs.RefreshToken, ExpiresAt: gs.expiry()}
	if err := p.scope.SetJSON(ctx, clientstore.KeyAuthToken, tok); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	session := &models.Session{AccessToken: gs.AccessToken, ExpiresAt: tok.ExpiresAt, User: gs.User.toModel()}
	p.emit(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

func (p *gotrueProvider) SignUp(ctx context.Context, email, password string, profile Profile) (*models.User, error) {
	resp, err := p.gt.http.Do(ctx, outbound.Request{
		Method:  http.MethodPost,
		URL:     p.gt.baseURL + "/auth/v1/signup",
		Headers: p.gt.headers(""),
		Body: map[string]interface{}{
			"email":    email,
			"password": password,
			"data":     profile,
		},
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, decodeProviderError(resp)
	}

	// Depending on email confirmation settings the server answers with a session or a bare user.
	var gs gotrueSession
	if err := json.Unmarshal(resp.Body, &gs); err == nil && gs.User != nil {
		u := gs.User.toModel()
		return &u, nil
	}
	var gu gotrueUser
	if err := json.Unmarshal(resp.Body, &gu); err != nil || gu.ID == "" {
		return nil, &ProviderError{Status: http.StatusBadGateway, Message: "Unexpected response from identity provider"}
	}
	u := gu.toModel()
	return &u, nil
}

func (p *gotrueProvider) SignOut(ctx context.Context) error {
	var tok storedToken
	readErr := p.scope.GetJSON(ctx, clientstore.KeyAuthToken, &tok)

	var callErr error
	if readErr == nil && tok.AccessToken != "" {
		resp, err := p.gt.http.Do(ctx, outbound.Request{
			Method:  http.MethodPost,
			URL:     p.gt.baseURL + "/auth/v1/logout",
			Headers: p.gt.headers(tok.AccessToken),
		})
		switch {
		case err != nil:
			callErr = err
		case !resp.OK() && resp.Status != http.StatusUnauthorized && resp.Status != http.StatusNotFound:
			callErr = decodeProviderError(resp)
		}
	}

	p.forget(ctx)
	p.emit(Event{Type: EventSignedOut})
	return callErr
}

func (p *gotrueProvider) forget(ctx context.Context) {
	if err := p.scope.Delete(ctx, clientstore.KeyAuthToken); err != nil {
		p.gt.logger.Warn("failed to clear stored session", zap.String("client_id", p.scope.ClientID()), zap.Error(err))
	}
}

func (s gotrueSession) expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	if s.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// decodeProviderError extracts the human readable message GoTrue puts in one of several fields,
// and its error_code.
func decodeProviderError(resp outbound.Response) *ProviderError {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
		ErrorCode        string `json:"error_code"`
	}
	_ = json.Unmarshal(resp.Body, &body)

	code := body.ErrorCode
	if code == "email_exists" {
		code = CodeUserAlreadyExists
	}
	perr := &ProviderError{Status: resp.Status, Code: code, Message: http.StatusText(resp.Status)}
	for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
		if m != "" {
			perr.Message = m
			break
		}
	}
	return perr
}
