package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"ledgervault/internal/errors"
	"ledgervault/internal/ledger"

	"github.com/labstack/echo/v4"
)

// Error responses
//
// Handlers answer failures through SendError (client and business errors) or
// SendSystemError (anything the caller should not see the details of). Ledger
// errors go through sendServiceError, which picks one of the two.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

// ledgerErrorCodes maps ledger sentinel errors onto the shared code registry.
var ledgerErrorCodes = []struct {
	err  error
	code errors.ErrorCode
}{
	{ledger.ErrInvalidCredentials, errors.AuthInvalidCredentials},
	{ledger.ErrEmailTaken, errors.AuthEmailTaken},
	{ledger.ErrEmptyToken, errors.AuthMissingSession},
	{ledger.ErrExpiredToken, errors.AuthExpiredSession},
	{ledger.ErrInvalidToken, errors.AuthInvalidSession},
	{ledger.ErrInvalidIssuer, errors.AuthInvalidSession},
	{ledger.ErrSessionRevoked, errors.AuthInvalidSession},
	{ledger.ErrAccountNotFound, errors.AccountNotFound},
	{ledger.ErrAccountInactive, errors.AccountInactive},
	{ledger.ErrNonZeroBalance, errors.AccountNonZeroBalance},
	{ledger.ErrRecipientNotFound, errors.AccountRecipientNotFound},
	{ledger.ErrSameAccount, errors.TransferSameAccount},
	{ledger.ErrInvalidAmount, errors.TransferInvalidAmount},
	{ledger.ErrInsufficientFunds, errors.TransferInsufficientFunds},
	{ledger.ErrKeyReused, errors.TransferKeyReused},
}

// CodeForError returns the registry code for a ledger error. ok is false for
// errors that are not part of the ledger contract.
func CodeForError(err error) (code errors.ErrorCode, ok bool) {
	for _, entry := range ledgerErrorCodes {
		if stderrors.Is(err, entry.err) {
			return entry.code, true
		}
	}
	return "", false
}

// getTraceID extracts the trace ID from the Echo context
func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendSystemError answers 500 with a generic body and logs the internal error
func SendSystemError(c echo.Context, logger *slog.Logger, err error) error {
	traceID := getTraceID(c)
	errorResponse, internal := errors.WrapSystemError(err, traceID)
	if logger != nil {
		logger.Error("request failed",
			"trace_id", traceID,
			"method", c.Request().Method,
			"path", c.Path(),
			"error", internal,
		)
	}
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

func sendServiceError(c echo.Context, logger *slog.Logger, err error) error {
	if code, ok := CodeForError(err); ok {
		return SendError(c, code)
	}
	return SendSystemError(c, logger, err)
}

func sendValidationError(c echo.Context, err error) error {
	var ve *errors.ValidationError
	if stderrors.As(err, &ve) {
		opts := []errors.ErrorOption{errors.WithMessage(ve.Message)}
		if ve.Field != "" {
			opts = append(opts, errors.WithDetails(ve.Field))
		}
		return SendError(c, ve.Code, opts...)
	}
	return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
}
