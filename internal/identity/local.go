package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ayah/internal/clientstore"
	"ayah/internal/models"
	"ayah/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at sign-up.
const MinPasswordLength = 6

var (
	errInvalidCredentials = &ProviderError{Status: http.StatusBadRequest, Code: CodeInvalidCredentials, Message: "Invalid login credentials"}
	errAlreadyRegistered  = &ProviderError{Status: http.StatusUnprocessableEntity, Code: CodeUserAlreadyExists, Message: "User already registered"}
	errWeakPassword       = &ProviderError{Status: http.StatusUnprocessableEntity, Code: CodeWeakPassword, Message: "Password should be at least 6 characters"}
	errMissingEmail       = &ProviderError{Status: http.StatusBadRequest, Code: CodeValidationFailed, Message: "Signup requires a valid email"}
)

// LocalDirectory is the built-in identity provider: accounts in a UserRepository, bcrypt password
// hashes and HS256 session tokens.
type LocalDirectory struct {
	users     repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewLocalDirectory creates a LocalDirectory. Tokens are valid for 24 hours.
func NewLocalDirectory(users repositories.UserRepository, jwtSecret string, logger *zap.Logger) *LocalDirectory {
	return &LocalDirectory{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
		logger:    logger,
	}
}

// NewProvider implements Factory.
func (d *LocalDirectory) NewProvider(scope clientstore.Scoped) Provider {
	return &localProvider{dir: d, scope: scope}
}

func (d *LocalDirectory) issueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(d.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	})
	signed, err := token.SignedString(d.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, expiresAt, nil
}

// validateToken parses and validates a token, returning its claims.
func (d *LocalDirectory) validateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return d.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

type localProvider struct {
	notifier
	dir   *LocalDirectory
	scope clientstore.Scoped
}

func (p *localProvider) GetSession(ctx context.Context) (*models.Session, error) {
	token, err := p.scope.Get(ctx, clientstore.KeyAuthToken)
	if errors.Is(err, clientstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	claims, err := p.dir.validateToken(token)
	if err != nil {
		p.dir.logger.Debug("discarding stored session", zap.String("client_id", p.scope.ClientID()), zap.Error(err))
		p.forget(ctx)
		return nil, nil
	}
	userID, _ := claims["sub"].(string)
	user, err := p.dir.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		p.forget(ctx)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session := &models.Session{AccessToken: token, User: *user}
	if exp, ok := claims["exp"].(float64); ok {
		session.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return session, nil
}

func (p *localProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := p.dir.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, expiresAt, err := p.dir.issueToken(user)
	if err != nil {
		return nil, err
	}
	if err := p.scope.Set(ctx, clientstore.KeyAuthToken, token); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	session := &models.Session{AccessToken: token, ExpiresAt: expiresAt, User: *user}
	p.emit(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

func (p *localProvider) SignUp(ctx context.Context, email, password string, profile Profile) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, errMissingEmail
	}
	if len(password) < MinPasswordLength {
		return nil, errWeakPassword
	}

	_, err := p.dir.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, errAlreadyRegistered
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Email:        email,
		Name:         profile["name"],
		PasswordHash: string(hash),
	}
	err = p.dir.users.Create(ctx, user)
	if errors.Is(err, repositories.ErrUserExists) {
		return nil, errAlreadyRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (p *localProvider) SignOut(ctx context.Context) error {
	err := p.scope.Delete(ctx, clientstore.KeyAuthToken)
	p.emit(Event{Type: EventSignedOut})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (p *localProvider) forget(ctx context.Context) {
	if err := p.scope.Delete(ctx, clientstore.KeyAuthToken); err != nil {
		p.dir.logger.Warn("failed to clear stored session", zap.String("client_id", p.scope.ClientID()), zap.Error(err))
	}
}
