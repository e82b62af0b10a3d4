package errors

// ErrorCode represents a standardized error code shared by the client and the sandbox backend
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials ErrorCode = "AUTH_001"
	AuthMissingSession     ErrorCode = "AUTH_002"
	AuthExpiredSession     ErrorCode = "AUTH_003"
	AuthInvalidSession     ErrorCode = "AUTH_004"
	AuthEmailTaken         ErrorCode = "AUTH_005"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidAmount ErrorCode = "VALIDATION_006"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound              ErrorCode = "ACCOUNT_001"
	AccountInactive              ErrorCode = "ACCOUNT_002"
	AccountNonZeroBalance        ErrorCode = "ACCOUNT_003"
	AccountOperationNotPermitted ErrorCode = "ACCOUNT_004"
	AccountRecipientNotFound     ErrorCode = "ACCOUNT_005"
)

// Transfer error codes (TRANSFER_*)
const (
	TransferSameAccount       ErrorCode = "TRANSFER_001"
	TransferInsufficientFunds ErrorCode = "TRANSFER_002"
	TransferInvalidAmount     ErrorCode = "TRANSFER_003"
	TransferKeyReused         ErrorCode = "TRANSFER_004"
	TransferMissingRecipient  ErrorCode = "TRANSFER_005"
)

// Client transport error codes (CLIENT_*)
const (
	ClientRequestFailed ErrorCode = "CLIENT_001"
	ClientNetworkError  ErrorCode = "CLIENT_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_004"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthInvalidCredentials: "Invalid email or password",
	AuthMissingSession:     "Please sign in to continue",
	AuthExpiredSession:     "Your session has expired. Please sign in again",
	AuthInvalidSession:     "Invalid session",
	AuthEmailTaken:         "An account with this email already exists",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidEmail:  "Please enter a valid email address.",
	ValidationInvalidAmount: "Please enter a valid amount greater than $0.00.",

	// Account errors
	AccountNotFound:              "Account not found",
	AccountInactive:              "Account is closed or frozen",
	AccountNonZeroBalance:        "Account balance must be zero before closing",
	AccountOperationNotPermitted: "Account operation not permitted",
	AccountRecipientNotFound:     "No user found with that email",

	// Transfer errors
	TransferSameAccount:       "Cannot transfer to the same account.",
	TransferInsufficientFunds: "insufficient funds",
	TransferInvalidAmount:     "Invalid transfer amount",
	TransferKeyReused:         "Idempotency key was already used for a different transfer",
	TransferMissingRecipient:  "Please verify the recipient's email and select an account.",

	// Client errors
	ClientRequestFailed: "Request failed",
	ClientNetworkError:  "Network error. Check your connection and try again",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
