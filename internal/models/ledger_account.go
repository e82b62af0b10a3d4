package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAccountStatus = errors.New("invalid account status")
	ErrInvalidBalance       = errors.New("balance cannot be negative")
	ErrAccountNotActive     = errors.New("account is not active")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrNonZeroBalance       = errors.New("account balance must be zero before closing")
)

// LedgerAccount is the sandbox backend's persisted account.
type LedgerAccount struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	Status    string          `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
	ClosedAt  *time.Time      `gorm:"index" json:"closed_at,omitempty"`
}

func (a *LedgerAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.Status == "" {
		a.Status = AccountStatusActive
	}

	if a.Currency == "" {
		a.Currency = "USD"
	}

	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

func (a *LedgerAccount) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return a.Validate()
}

func (a *LedgerAccount) Validate() error {
	if a.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if !IsValidAccountStatus(a.Status) {
		return ErrInvalidAccountStatus
	}

	if a.Balance.IsNegative() {
		return ErrInvalidBalance
	}

	return nil
}

func (a *LedgerAccount) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Debit removes funds, refusing to overdraw.
func (a *LedgerAccount) Debit(amount decimal.Decimal) error {
	if !a.IsActive() {
		return ErrAccountNotActive
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds funds.
func (a *LedgerAccount) Credit(amount decimal.Decimal) error {
	if !a.IsActive() {
		return ErrAccountNotActive
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Close marks the account closed. Only empty accounts can be closed.
func (a *LedgerAccount) Close() error {
	if a.Status == AccountStatusClosed {
		return ErrAccountNotActive
	}
	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}
	now := time.Now()
	a.Status = AccountStatusClosed
	a.ClosedAt = &now
	return nil
}

func (a *LedgerAccount) TableName() string {
	return "accounts"
}

func IsValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusActive, AccountStatusFrozen, AccountStatusClosed:
		return true
	default:
		return false
	}
}
