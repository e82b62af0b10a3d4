package repositories

import (
	"ledgervault/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepositoryInterface defines the contract for sandbox user persistence
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// AccountRepositoryInterface defines the contract for ledger account persistence
type AccountRepositoryInterface interface {
	Create(account *models.LedgerAccount) error
	GetByID(id uuid.UUID) (*models.LedgerAccount, error)
	GetByUserID(userID uuid.UUID) ([]models.LedgerAccount, error)
	ActiveIDsByUserID(userID uuid.UUID) ([]uuid.UUID, error)
	Close(id uuid.UUID) (*models.LedgerAccount, error)
	Deposit(id uuid.UUID, amount decimal.Decimal) (*models.LedgerAccount, error)
}

// TransferRepositoryInterface defines the contract for transfer persistence
type TransferRepositoryInterface interface {
	FindByIdempotencyKey(key string) (*models.Transfer, error)
	Execute(transfer *models.Transfer) error
}

// RevokedTokenRepositoryInterface tracks session tokens invalidated by logout
type RevokedTokenRepositoryInterface interface {
	Revoke(token *models.RevokedToken) error
	IsRevoked(jti string) (bool, error)
	DeleteExpired() (int64, error)
}
