package services

import (
	"context"
	"errors"
	"testing"

	"ledgervault/internal/apiclient/apiclient_mocks"
	"ledgervault/internal/dto"
	apperrors "ledgervault/internal/errors"
	"ledgervault/internal/logging"
	"ledgervault/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

func TestSessionStore(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

type SessionStoreSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	api     *apiclient_mocks.MockBankingAPI
	session *SessionStore
	ctx     context.Context
}

func (s *SessionStoreSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.api = apiclient_mocks.NewMockBankingAPI(s.ctrl)
	s.session = NewSessionStore(s.api, NewWorkflowLogger(logging.Discard()), nil)
	s.ctx = context.Background()
}

func (s *SessionStoreSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SessionStoreSuite) TestStartsSignedOut() {
	_, ok := s.session.Current()
	s.False(ok)
	s.False(s.session.IsAuthenticated())
}

func (s *SessionStoreSuite) TestDemoLoginAdoptsFallbackIdentity() {
	s.api.EXPECT().
		Login(gomock.Any(), dto.LoginRequest{Email: DemoEmail, Password: DemoPassword}).
		Return(nil, nil)

	identity, err := s.session.DemoLogin(s.ctx)

	s.Require().NoError(err)
	s.Equal(models.Identity{Email: "guest@example.com"}, identity)
	current, ok := s.session.Current()
	s.True(ok)
	s.Equal(identity, current)
}

func (s *SessionStoreSuite) TestLoginAdoptsServerIdentity() {
	email := gofakeit.Email()
	name := gofakeit.Name()
	s.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(&models.Identity{ID: "u-1", Name: name, Email: email}, nil)

	identity, err := s.session.Login(s.ctx, "  "+email+" ", "secret1")

	s.Require().NoError(err)
	s.Equal(name, identity.DisplayName())
	s.Equal("u-1", identity.ID)
}

func (s *SessionStoreSuite) TestLoginFillsMissingEmail() {
	s.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(&models.Identity{Name: "Nameless"}, nil)

	identity, err := s.session.Login(s.ctx, "who@example.com", "secret1")

	s.Require().NoError(err)
	s.Equal("who@example.com", identity.Email)
}

func (s *SessionStoreSuite) TestLoginValidatesBeforeNetwork() {
	cases := []struct {
		email    string
		password string
		message  string
	}{
		{"", "secret1", "Please enter a valid email address."},
		{"nope", "secret1", "Please enter a valid email address."},
		{"a@b.co", "12345", "Password must be at least 6 characters long."},
	}

	for _, tc := range cases {
		_, err := s.session.Login(s.ctx, tc.email, tc.password)
		s.Require().Error(err)
		s.True(apperrors.IsValidation(err))
		s.Equal(tc.message, err.Error())
	}
	s.False(s.session.IsAuthenticated())
}

func (s *SessionStoreSuite) TestLoginServerErrorKeepsSignedOut() {
	s.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, apperrors.NewRequestError(401, "Invalid credentials"))

	_, err := s.session.Login(s.ctx, "a@b.co", "secret1")

	s.EqualError(err, "Invalid credentials")
	s.False(s.session.IsAuthenticated())
}

func (s *SessionStoreSuite) TestRegister() {
	s.Run("validates name first", func() {
		err := s.session.Register(s.ctx, "  ab ", "bad", "1")
		s.EqualError(err, "Name must be at least 3 characters long.")
	})

	s.Run("sends the form and stays signed out", func() {
		s.api.EXPECT().Register(gomock.Any(), dto.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"}).Return(nil)

		s.NoError(s.session.Register(s.ctx, "Ada", " ada@example.com", "secret1"))
		s.False(s.session.IsAuthenticated())
	})

	s.Run("surfaces server message", func() {
		s.api.EXPECT().Register(gomock.Any(), gomock.Any()).Return(apperrors.NewRequestError(409, "Email already registered"))

		s.EqualError(s.session.Register(s.ctx, "Ada", "ada@example.com", "secret1"), "Email already registered")
	})
}

func (s *SessionStoreSuite) TestLogoutAlwaysClearsIdentity() {
	s.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err := s.session.DemoLogin(s.ctx)
	s.Require().NoError(err)

	s.api.EXPECT().Logout(gomock.Any()).Return(errors.New("connection refused"))
	s.session.Logout(s.ctx)

	s.False(s.session.IsAuthenticated())
}
