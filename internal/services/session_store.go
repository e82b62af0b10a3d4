package services

import (
	"context"
	"strings"
	"sync"

	"ledgervault/internal/apiclient"
	"ledgervault/internal/dto"
	"ledgervault/internal/metrics"
	"ledgervault/internal/models"
	"ledgervault/internal/validation"
)

// Demo credentials offered on the sign-in screen.
const (
	DemoEmail    = "guest@example.com"
	DemoPassword = "123456"
)

// SessionStore holds at most one authenticated identity. The credential itself
// lives in the API client's cookie jar and is never visible here.
type SessionStore struct {
	mu        sync.RWMutex
	api       apiclient.BankingAPI
	validator *validation.Validator
	logger    WorkflowLoggerInterface
	metrics   metrics.Recorder
	identity  *models.Identity
}

func NewSessionStore(api apiclient.BankingAPI, logger WorkflowLoggerInterface, recorder metrics.Recorder) *SessionStore {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &SessionStore{
		api:       api,
		validator: validation.GetValidator(),
		logger:    logger,
		metrics:   recorder,
	}
}

// Login validates the form locally, then signs in. On success the identity
// echoed by the backend is adopted, or a minimal one built from the email.
func (s *SessionStore) Login(ctx context.Context, email, password string) (models.Identity, error) {
	email = strings.TrimSpace(email)
	if err := s.validator.Struct(validation.LoginForm{Email: email, Password: password}); err != nil {
		return models.Identity{}, err
	}

	user, err := s.api.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.recordEvent(ctx, "login_failed", email)
		return models.Identity{}, err
	}

	identity := models.Identity{Email: email}
	if user != nil {
		identity = *user
		if identity.Email == "" {
			identity.Email = email
		}
	}

	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()

	s.recordEvent(ctx, "login", identity.Email)
	return identity, nil
}

func (s *SessionStore) DemoLogin(ctx context.Context) (models.Identity, error) {
	return s.Login(ctx, DemoEmail, DemoPassword)
}

// Register creates a user. It does not sign in.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) error {
	form := validation.RegisterForm{Name: name, Email: strings.TrimSpace(email), Password: password}
	if err := s.validator.Struct(form); err != nil {
		return err
	}

	if err := s.api.Register(ctx, dto.RegisterRequest{Name: name, Email: form.Email, Password: password}); err != nil {
		s.recordEvent(ctx, "register_failed", form.Email)
		return err
	}

	s.recordEvent(ctx, "register", form.Email)
	return nil
}

// Logout tells the backend best-effort and always clears the local identity.
func (s *SessionStore) Logout(ctx context.Context) {
	email := ""
	if identity, ok := s.Current(); ok {
		email = identity.Email
	}

	if err := s.api.Logout(ctx); err != nil {
		s.recordEvent(ctx, "logout_remote_failed", email)
	}

	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	s.recordEvent(ctx, "logout", email)
}

func (s *SessionStore) Current() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

func (s *SessionStore) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *SessionStore) recordEvent(ctx context.Context, eventType, email string) {
	s.metrics.IncrementCounter(metrics.SessionEvent, map[string]string{"event_type": eventType})
	if s.logger != nil {
		s.logger.LogSessionEvent(ctx, eventType, email)
	}
}
