package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransferStatusCompleted = "completed"
	TransferStatusFailed    = "failed"
)

var (
	ErrInvalidTransferStatus = errors.New("invalid transfer status")
	ErrInvalidTransferAmount = errors.New("transfer amount must be positive")
)

// Transfer is the sandbox's record of one executed transfer, keyed by the
// client's idempotency key.
type Transfer struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	FromAccountID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_transfer_from_account" json:"from_account_id"`
	ToAccountID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_transfer_to_account" json:"to_account_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	IdempotencyKey string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"idempotency_key"`
	Status         string          `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if t.Status == "" {
		t.Status = TransferStatusCompleted
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	return t.Validate()
}

func (t *Transfer) Validate() error {
	if t.FromAccountID == uuid.Nil {
		return errors.New("from account ID is required")
	}

	if t.ToAccountID == uuid.Nil {
		return errors.New("to account ID is required")
	}

	if t.FromAccountID == t.ToAccountID {
		return errors.New("from and to accounts cannot be the same")
	}

	if !t.Amount.IsPositive() {
		return ErrInvalidTransferAmount
	}

	if t.IdempotencyKey == "" {
		return errors.New("idempotency key is required")
	}

	if t.Status != TransferStatusCompleted && t.Status != TransferStatusFailed {
		return ErrInvalidTransferStatus
	}

	return nil
}

// SamePayload reports whether a retried request carries the same intent as this record.
func (t *Transfer) SamePayload(from, to uuid.UUID, amount decimal.Decimal) bool {
	return t.FromAccountID == from && t.ToAccountID == to && t.Amount.Equal(amount)
}

func (t *Transfer) TableName() string {
	return "transfers"
}
