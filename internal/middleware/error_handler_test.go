package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "ledgervault/internal/errors"
	"ledgervault/internal/logging"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type ErrorHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	metrics *HTTPMetrics
	handler echo.HTTPErrorHandler
}

func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.metrics = NewHTTPMetrics(prometheus.NewRegistry())
	s.handler = NewHTTPErrorHandler(logging.Discard(), s.metrics)
}

func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) handle(err error) (*httptest.ResponseRecorder, apperrors.ErrorResponse) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")

	s.handler(err, c)

	var resp apperrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	rec, resp := s.handle(echo.NewHTTPError(http.StatusNotFound, "Resource not found"))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(apperrors.AccountNotFound), resp.Code)
	s.Equal("Resource not found", resp.Message)
	s.Equal("test-trace-id", resp.TraceID)
}

func (s *ErrorHandlerTestSuite) TestStatusMapping() {
	cases := map[int]apperrors.ErrorCode{
		http.StatusBadRequest:          apperrors.ValidationGeneral,
		http.StatusMethodNotAllowed:    apperrors.ValidationGeneral,
		http.StatusUnauthorized:        apperrors.AuthMissingSession,
		http.StatusTooManyRequests:     apperrors.SystemRateLimitExceeded,
		http.StatusServiceUnavailable:  apperrors.SystemServiceUnavailable,
		http.StatusInternalServerError: apperrors.SystemInternalError,
		http.StatusTeapot:              apperrors.SystemInternalError,
	}
	for status, code := range cases {
		s.Equal(code, mapHTTPStatusToErrorCode(status), http.StatusText(status))
	}
}

func (s *ErrorHandlerTestSuite) TestValidationErrors() {
	type payload struct {
		Email string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	s.Require().Error(err)

	rec, resp := s.handle(err)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apperrors.ValidationGeneral), resp.Code)
	s.Equal([]string{"Email: is required"}, resp.Details)
}

func (s *ErrorHandlerTestSuite) TestGenericErrorIsHidden() {
	rec, resp := s.handle(errors.New("sql: connection refused"))

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(string(apperrors.SystemInternalError), resp.Code)
	s.NotContains(rec.Body.String(), "connection refused")
}

func (s *ErrorHandlerTestSuite) TestCountsErrors() {
	s.handle(echo.NewHTTPError(http.StatusTooManyRequests, "slow down"))
	s.handle(echo.NewHTTPError(http.StatusTooManyRequests, "slow down"))

	s.Equal(2.0, testutil.ToFloat64(s.metrics.errors.WithLabelValues("SYSTEM_004", "unmatched", "429")))
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsLeftAlone() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	s.Require().NoError(c.String(http.StatusOK, "done"))

	s.handler(errors.New("late failure"), c)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("done", rec.Body.String())
}

func (s *ErrorHandlerTestSuite) TestNilMetrics() {
	handler := NewHTTPErrorHandler(logging.Discard(), nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s.NotPanics(func() { handler(errors.New("boom"), s.echo.NewContext(req, rec)) })
	s.Equal(http.StatusInternalServerError, rec.Code)
}
