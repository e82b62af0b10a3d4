package handlers

import (
	"fmt"

	"ledgervault/internal/ledger"
	"ledgervault/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	// UserIDContextKey holds the authenticated user's uuid.UUID.
	UserIDContextKey = "user_id"
	// ClaimsContextKey holds the *models.SessionClaims of the current session.
	ClaimsContextKey = "session_claims"
)

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// LedgerService is the sandbox ledger as seen by the HTTP layer.
type LedgerService interface {
	Register(name, email, password string) (*models.User, error)
	Login(email, password string) (*ledger.Session, error)
	Authenticate(token string) (*models.SessionClaims, error)
	Logout(claims *models.SessionClaims) error
	ListAccounts(userID uuid.UUID) ([]models.LedgerAccount, error)
	OpenAccount(userID uuid.UUID) (*models.LedgerAccount, error)
	CloseAccount(userID, accountID uuid.UUID) error
	Balance(userID, accountID uuid.UUID) (decimal.Decimal, error)
	ResolveRecipient(email string) (*models.User, []uuid.UUID, error)
	Transfer(cmd ledger.TransferCommand) (*ledger.TransferResult, error)
}

var _ LedgerService = (*ledger.Service)(nil)

func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.UUID{}, ErrUnauthorized
	}
	return userID, nil
}
