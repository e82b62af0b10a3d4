package apiclient

import (
	"context"

	"ledgervault/internal/dto"
	"ledgervault/internal/models"

	"github.com/shopspring/decimal"
)

// BankingAPI is the typed surface of the ledger backend used by the dashboard services.
type BankingAPI interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	// Login returns the user echoed by the backend, or nil when the response carried none.
	Login(ctx context.Context, req dto.LoginRequest) (*models.Identity, error)
	Logout(ctx context.Context) error
	ListAccounts(ctx context.Context) ([]models.Account, error)
	CreateAccount(ctx context.Context) error
	CloseAccount(ctx context.Context, accountID string) error
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	ResolveRecipient(ctx context.Context, email string) (*models.Recipient, error)
	SubmitTransfer(ctx context.Context, req dto.TransferRequest) error
}
