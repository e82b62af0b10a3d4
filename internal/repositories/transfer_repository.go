package repositories

import (
	"bytes"
	"errors"
	"fmt"

	"ledgervault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransferNotFound             = errors.New("transfer not found")
	ErrTransferIdempotencyKeyExists = errors.New("transfer with idempotency key already exists")
)

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepositoryInterface {
	return &transferRepository{db: db}
}

func (r *transferRepository) FindByIdempotencyKey(key string) (*models.Transfer, error) {
	var transfer models.Transfer

	if err := r.db.Where("idempotency_key = ?", key).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by idempotency key: %w", err)
	}

	return &transfer, nil
}

// Execute records the transfer and moves the funds in one database transaction.
// The record is inserted first so a duplicate idempotency key aborts before any
// balance changes.
func (r *transferRepository) Execute(transfer *models.Transfer) error {
	if transfer == nil {
		return errors.New("transfer cannot be nil")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transfer).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrTransferIdempotencyKeyExists
			}
			return fmt.Errorf("failed to create transfer: %w", err)
		}

		from, to, err := lockPair(tx, transfer.FromAccountID, transfer.ToAccountID)
		if err != nil {
			return err
		}

		if err := from.Debit(transfer.Amount); err != nil {
			return err
		}
		if err := to.Credit(transfer.Amount); err != nil {
			return err
		}

		if err := tx.Model(from).Update("balance", from.Balance).Error; err != nil {
			return fmt.Errorf("failed to debit source account: %w", err)
		}
		if err := tx.Model(to).Update("balance", to.Balance).Error; err != nil {
			return fmt.Errorf("failed to credit destination account: %w", err)
		}

		return nil
	})
}

// lockOrder returns the two ids in the order their rows are locked. Opposite
// transfers between the same accounts take the locks in the same order.
func lockOrder(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

func lockPair(tx *gorm.DB, fromID, toID uuid.UUID) (from, to *models.LedgerAccount, err error) {
	firstID, secondID := lockOrder(fromID, toID)
	first, err := lockAccount(tx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := lockAccount(tx, secondID)
	if err != nil {
		return nil, nil, err
	}
	if firstID == fromID {
		return first, second, nil
	}
	return second, first, nil
}

func lockAccount(tx *gorm.DB, id uuid.UUID) (*models.LedgerAccount, error) {
	account := &models.LedgerAccount{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return account, nil
}
