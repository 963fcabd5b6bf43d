package services

import (
	"context"
	"strings"

	"ayah/internal/auth"
	"ayah/internal/clientstore"
	"ayah/internal/i18n"
	"ayah/internal/identity"
	"ayah/internal/models"

	"go.uber.org/zap"
)

// Account is the slice of a client's state the sign-in flows work on.
type Account interface {
	Lang() models.Lang
	Auth() *auth.Bridge
	Store() clientstore.Scoped
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterForm is the account creation form.
type RegisterForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RegisterResult tells the client whether it ended up signed in and where to go next.
type RegisterResult struct {
	User     *models.User `json:"user"`
	SignedIn bool         `json:"signedIn"`
	Message  string       `json:"message"`
	Redirect string       `json:"redirect"`
}

// AuthService runs the login and registration forms against a client's auth bridge.
type AuthService struct {
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(logger *zap.Logger) *AuthService {
	return &AuthService{logger: logger}
}

// Login checks the form, signs in and caches the email for later checkouts. Provider errors
// are returned unchanged.
func (s *AuthService) Login(ctx context.Context, acct Account, form LoginForm) (*models.User, error) {
	lang := acct.Lang()
	email := strings.TrimSpace(form.Email)
	if email == "" || form.Password == "" {
		return nil, NewFormError(i18n.T(lang, "Please fill in all fields", "يرجى ملء جميع الحقول"))
	}
	if !strings.Contains(email, "@") {
		return nil, NewFormError(i18n.T(lang, "Please enter a valid email", "يرجى إدخال بريد إلكتروني صحيح"))
	}

	user, err := acct.Auth().SignIn(ctx, email, form.Password)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, acct.Store(), clientstore.KeyUserEmail, email)
	return user, nil
}

// Register checks the form, creates the account and then tries to sign in with it. A failed
// sign-in after a successful sign-up is not an error: the result asks the user to sign in.
func (s *AuthService) Register(ctx context.Context, acct Account, form RegisterForm) (*RegisterResult, error) {
	lang := acct.Lang()
	name := strings.TrimSpace(form.Name)
	email := strings.TrimSpace(form.Email)
	switch {
	case name == "" || email == "" || form.Password == "" || form.ConfirmPassword == "":
		return nil, NewFormError(i18n.T(lang, "Please fill in all fields", "يرجى ملء جميع الحقول"))
	case !strings.Contains(email, "@"):
		return nil, NewFormError(i18n.T(lang, "Please enter a valid email", "يرجى إدخال بريد إلكتروني صحيح"))
	case len(form.Password) < identity.MinPasswordLength:
		return nil, NewFormError(i18n.T(lang, "Password must be at least 6 characters", "كلمة المرور يجب أن تكون 6 أحرف على الأقل"))
	case form.Password != form.ConfirmPassword:
		return nil, NewFormError(i18n.T(lang, "Passwords do not match", "كلمات المرور غير متطابقة"))
	}

	bridge := acct.Auth()
	user, err := bridge.SignUp(ctx, email, form.Password, name)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, acct.Store(), clientstore.KeyUserEmail, email)
	s.remember(ctx, acct.Store(), clientstore.KeyUserName, name)

	signedIn, err := bridge.SignIn(ctx, email, form.Password)
	if err != nil {
		s.logger.Info("Sign-in after registration failed", zap.String("email", email), zap.Error(err))
		return &RegisterResult{
			User:     user,
			Message:  i18n.T(lang, "Account created successfully! Please sign in.", "تم إنشاء الحساب بنجاح! يرجى تسجيل الدخول."),
			Redirect: "/login",
		}, nil
	}
	return &RegisterResult{
		User:     signedIn,
		SignedIn: true,
		Message:  i18n.T(lang, "Account created successfully! You are now logged in.", "تم إنشاء الحساب بنجاح! أنت الآن مسجل الدخول."),
		Redirect: "/",
	}, nil
}

// Logout signs the client out. Local state is cleared even if the provider call fails.
func (s *AuthService) Logout(ctx context.Context, acct Account) error {
	return acct.Auth().Logout(ctx)
}

func (s *AuthService) remember(ctx context.Context, store clientstore.Scoped, key, value string) {
	if err := store.Set(ctx, key, value); err != nil {
		s.logger.Warn("Failed to cache account detail", zap.String("key", key), zap.Error(err))
	}
}
