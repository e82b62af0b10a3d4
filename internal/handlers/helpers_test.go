package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	"ledgervault/internal/config"
	"ledgervault/internal/database"
	"ledgervault/internal/ledger"
	"ledgervault/internal/logging"
	"ledgervault/internal/models"
	"ledgervault/internal/repositories"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// handlerSuite runs handlers against a real ledger service on in-memory sqlite.
type handlerSuite struct {
	suite.Suite
	db      *database.DB
	service *ledger.Service
	e       *echo.Echo
}

func (s *handlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.service = ledger.NewService(ledger.Deps{
		Users:     repositories.NewUserRepository(s.db.DB),
		Accounts:  repositories.NewAccountRepository(s.db.DB),
		Transfers: repositories.NewTransferRepository(s.db.DB),
		Revoked:   repositories.NewRevokedTokenRepository(s.db.DB),
		Tokens: ledger.NewTokenService(config.JWTConfig{
			Secret: []byte("handler-test-secret"),
			Issuer: "ledgervault-test",
			TTL:    time.Hour,
		}),
		BCryptCost: bcrypt.MinCost,
		Logger:     logging.Discard(),
	})
	s.e = echo.New()
	s.e.Validator = NewValidator()
}

// newContext builds a request context. A non-nil user is treated as signed in.
func (s *handlerSuite) newContext(method, target string, body interface{}, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace")
	if user != nil {
		c.Set(UserIDContextKey, user.ID)
	}
	return c, rec
}

func (s *handlerSuite) decodeError(rec *httptest.ResponseRecorder) ErrorResponse {
	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *handlerSuite) assertError(rec *httptest.ResponseRecorder, status int, code string) {
	s.Equal(status, rec.Code, rec.Body.String())
	resp := s.decodeError(rec)
	s.Equal(code, resp.Code)
	s.Equal("test-trace", resp.TraceID)
	s.NotEmpty(resp.Message)
}

func (s *handlerSuite) user(email string) *models.User {
	return database.CreateTestUser(s.T(), s.db, email)
}

func (s *handlerSuite) account(user *models.User, balance string) *models.LedgerAccount {
	return database.CreateTestAccount(s.T(), s.db, user, balance)
}
