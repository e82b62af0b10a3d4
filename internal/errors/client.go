package errors

import (
	stderrors "errors"
	"fmt"
)

// ValidationError is raised by local form checks before any network call.
type ValidationError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError using the registered message for code
// unless a message override is given.
func NewValidation(code ErrorCode, field string, message ...string) *ValidationError {
	msg := GetErrorMessage(code)
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return &ValidationError{Code: code, Field: field, Message: msg}
}

// RequestError is returned when the backend answers with a non-success status.
// Message is the server-supplied message, or "Error <status>" when the body carried none.
type RequestError struct {
	Status  int
	Code    string
	Message string
	TraceID string
}

func (e *RequestError) Error() string {
	return e.Message
}

// NewRequestError builds a RequestError, falling back to the generic status message.
func NewRequestError(status int, message string) *RequestError {
	if message == "" {
		message = fmt.Sprintf("Error %d", status)
	}
	return &RequestError{Status: status, Code: string(ClientRequestFailed), Message: message}
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", GetErrorMessage(ClientNetworkError), e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsRequest reports whether err is, or wraps, a RequestError.
func IsRequest(err error) bool {
	_, ok := AsRequest(err)
	return ok
}

// AsRequest unwraps a RequestError from err.
func AsRequest(err error) (*RequestError, bool) {
	var target *RequestError
	if stderrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsNetwork reports whether err is, or wraps, a NetworkError.
func IsNetwork(err error) bool {
	var target *NetworkError
	return stderrors.As(err, &target)
}

// UserMessage returns the text shown to the user for any error produced by the client.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if stderrors.As(err, &netErr) {
		return GetErrorMessage(ClientNetworkError)
	}
	return err.Error()
}
