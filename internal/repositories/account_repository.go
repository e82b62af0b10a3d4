package repositories

import (
	"errors"
	"fmt"

	"ledgervault/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *models.LedgerAccount) error {
	if err := r.db.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(id uuid.UUID) (*models.LedgerAccount, error) {
	account := &models.LedgerAccount{}
	if err := r.db.Where("id = ?", id).First(account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetByUserID returns every account the user owns, closed ones included, oldest first.
func (r *accountRepository) GetByUserID(userID uuid.UUID) ([]models.LedgerAccount, error) {
	var accounts []models.LedgerAccount
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get accounts for user: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) ActiveIDsByUserID(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.Model(&models.LedgerAccount{}).
		Where("user_id = ? AND status = ?", userID, models.AccountStatusActive).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get active account ids: %w", err)
	}
	return ids, nil
}

// Close locks the row and closes the account if its balance is zero.
func (r *accountRepository) Close(id uuid.UUID) (*models.LedgerAccount, error) {
	account := &models.LedgerAccount{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("failed to lock account: %w", err)
		}

		if err := account.Close(); err != nil {
			return err
		}

		if err := tx.Save(account).Error; err != nil {
			return fmt.Errorf("failed to close account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// Deposit credits an active account under a row lock.
func (r *accountRepository) Deposit(id uuid.UUID, amount decimal.Decimal) (*models.LedgerAccount, error) {
	account := &models.LedgerAccount{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("failed to lock account: %w", err)
		}

		if err := account.Credit(amount); err != nil {
			return err
		}

		if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
			return fmt.Errorf("failed to credit account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}
