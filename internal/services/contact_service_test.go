package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ayah/internal/mailer"
	"ayah/internal/models"
	"ayah/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockMailer is a mock implementation of mailer.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMailer) Name() string { return "mock" }

func newContactService(m mailer.Mailer) *services.ContactService {
	return services.NewContactService(m, "noreply@yourdomain.com", "ayahqurantutor@gmail.com", zap.NewNop())
}

func TestContactService_Relay(t *testing.T) {
	m := new(MockMailer)
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.Subject == "New contact from Amina" &&
			msg.From == "noreply@yourdomain.com" &&
			msg.To == "ayahqurantutor@gmail.com"
	})).Return(nil).Once()

	err := newContactService(m).Relay(context.Background(), models.ContactRequest{
		Name:    "Amina",
		Email:   "amina@example.com",
		Message: "When do classes start?",
		Lang:    models.LangArabic,
	})
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestContactService_RelayValidation(t *testing.T) {
	m := new(MockMailer)
	service := newContactService(m)

	err := service.Relay(context.Background(), models.ContactRequest{
		Name:    strings.Repeat("a", 201),
		Email:   "not-an-email",
		Message: "",
		Lang:    "fr",
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"String must contain at most 200 character(s)"}, verr.FieldErrors["name"])
	assert.Equal(t, []string{"Invalid email"}, verr.FieldErrors["email"])
	assert.Equal(t, []string{"Required"}, verr.FieldErrors["message"])
	assert.Contains(t, verr.FieldErrors["lang"][0], "'en' | 'ar'")
	assert.Empty(t, verr.FormErrors)
	m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestContactService_RelayProviderFailure(t *testing.T) {
	m := new(MockMailer)
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("Resend error: 500")).Once()

	err := newContactService(m).Relay(context.Background(), models.ContactRequest{
		Name: "Amina", Email: "amina@example.com", Message: "hi",
	})
	assert.ErrorIs(t, err, services.ErrRelayFailed)
}

func TestContactService_RelayWithoutProvider(t *testing.T) {
	err := newContactService(mailer.Unconfigured{}).Relay(context.Background(), models.ContactRequest{
		Name: "Amina", Email: "amina@example.com", Message: "hi",
	})
	assert.ErrorIs(t, err, services.ErrRelayFailed)
	assert.ErrorContains(t, err, "not configured")
}

func TestContactService_RequestTrial(t *testing.T) {
	m := new(MockMailer)
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.Subject == "New free trial request from Yusuf"
	})).Return(nil).Once()
	service := newContactService(m)

	err := service.RequestTrial(context.Background(), models.TrialRequest{
		Name: "Yusuf", Email: "yusuf@example.com", Phone: "+971500000000", ChildAge: "8",
	})
	require.NoError(t, err)

	err = service.RequestTrial(context.Background(), models.TrialRequest{Name: "Yusuf", Email: "yusuf@example.com"})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldErrors, "phone")
	assert.Contains(t, verr.FieldErrors, "childAge")
	m.AssertExpectations(t)
}
