package middleware

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"ledgervault/internal/errors"
	"ledgervault/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler formats errors that reach echo as standardized error
// responses, logs them and counts them on metrics (which may be nil).
func NewHTTPErrorHandler(logger *slog.Logger, metrics *HTTPMetrics) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "unknown"
		}

		var errorResponse *errors.ErrorResponse
		var httpStatus int

		var echoErr *echo.HTTPError
		var validationErrs validator.ValidationErrors
		switch {
		case stderrors.As(err, &echoErr):
			errorResponse = errors.NewErrorResponse(
				mapHTTPStatusToErrorCode(echoErr.Code),
				traceID,
				errors.WithMessage(fmt.Sprintf("%v", echoErr.Message)),
			)
			httpStatus = echoErr.Code
		case stderrors.As(err, &validationErrs):
			fieldErrors := make(map[string]string, len(validationErrs))
			for _, fieldErr := range validationErrs {
				fieldErrors[fieldErr.Field()] = validation.FormatFieldError(fieldErr)
			}
			errorResponse = errors.NewValidationError(fieldErrors, traceID)
			httpStatus = http.StatusBadRequest
		default:
			errorResponse, _ = errors.WrapSystemError(err, traceID)
			httpStatus = errorResponse.GetHTTPStatus()
		}

		level := slog.LevelWarn
		if httpStatus >= 500 {
			level = slog.LevelError
		}
		logger.Log(c.Request().Context(), level, "HTTP error occurred",
			"trace_id", traceID,
			"error_code", errorResponse.Code,
			"status", httpStatus,
			"path", c.Request().URL.Path,
			"method", c.Request().Method,
			"error", err.Error(),
		)

		endpoint := c.Path()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.observeError(errorResponse.Code, endpoint, httpStatus)

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpStatus)
		} else {
			err = c.JSON(httpStatus, errorResponse)
		}
		if err != nil {
			logger.Error("failed to send error response", "trace_id", traceID, "error", err)
		}
	}
}

func mapHTTPStatusToErrorCode(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnprocessableEntity,
		http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return errors.ValidationGeneral
	case http.StatusUnauthorized:
		return errors.AuthMissingSession
	case http.StatusForbidden:
		return errors.AccountOperationNotPermitted
	case http.StatusNotFound:
		return errors.AccountNotFound
	case http.StatusTooManyRequests:
		return errors.SystemRateLimitExceeded
	case http.StatusServiceUnavailable:
		return errors.SystemServiceUnavailable
	default:
		return errors.SystemInternalError
	}
}
