package services

import (
	"context"

	"ledgervault/internal/models"
)

// NotifierInterface is the toast queue shared by every dashboard component
type NotifierInterface interface {
	Push(message string, severity models.Severity) models.Toast
	Active() []models.Toast
	Expire(id uint64)
	OnChange(fn func([]models.Toast))
	Close()
}

// SessionStoreInterface holds the authenticated identity
type SessionStoreInterface interface {
	Login(ctx context.Context, email, password string) (models.Identity, error)
	DemoLogin(ctx context.Context) (models.Identity, error)
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context)
	Current() (models.Identity, bool)
	IsAuthenticated() bool
}

// AccountDirectoryInterface caches the user's accounts and their balances
type AccountDirectoryInterface interface {
	List(ctx context.Context) error
	Create(ctx context.Context) error
	Close(ctx context.Context, accountID string, confirm Confirmer) error
	FetchBalance(ctx context.Context, accountID string)
	RefreshAll(ctx context.Context)
	Accounts() []models.Account
	Account(accountID string) (models.Account, bool)
	Stats() models.AccountStats
	Reset()
}

// WorkflowLoggerInterface emits structured events for client-side operations
type WorkflowLoggerInterface interface {
	LogStateChange(ctx context.Context, workflowID string, from, to State)
	LogTransferSubmitted(ctx context.Context, workflowID string, draft models.TransferDraft, amount, idempotencyKey string)
	LogTransferCompleted(ctx context.Context, workflowID, idempotencyKey string, durationMs int64)
	LogTransferFailed(ctx context.Context, workflowID, idempotencyKey, errorMsg string, durationMs int64)
	LogResponseDropped(ctx context.Context, workflowID, operation string)
	LogRecipientResolved(ctx context.Context, workflowID, email string, candidates int)
	LogBalanceFetchFailed(ctx context.Context, accountID, errorMsg string)
	LogStaleBalanceDropped(ctx context.Context, accountID string)
	LogSessionEvent(ctx context.Context, eventType, email string)
}

// Confirmer asks the user a yes/no question and reports the answer.
type Confirmer func(prompt string) bool
