package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ledgervault/internal/dto"
	"ledgervault/internal/errors"
	"ledgervault/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// DevService backs the development-only endpoints.
type DevService interface {
	SeedDemoData() error
	Deposit(userID, accountID uuid.UUID, amount decimal.Decimal) (*models.LedgerAccount, error)
}

// DevHandler handles development-only endpoints.
// Routes are only registered outside production.
type DevHandler struct {
	service DevService
	logger  *slog.Logger
}

func NewDevHandler(service DevService, logger *slog.Logger) *DevHandler {
	return &DevHandler{service: service, logger: logger}
}

// SeedDemoData creates the demo users if they are missing
//
// Method: POST /api/dev/seed
// Environment: Development only
func (h *DevHandler) SeedDemoData(c echo.Context) error {
	if err := h.service.SeedDemoData(); err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Demo data ready"})
}

// Deposit funds one of the signed-in user's accounts
//
// Method: POST /api/dev/accounts/:id/deposit
// Authentication: Required
// Environment: Development only
func (h *DevHandler) Deposit(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingSession)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.AccountNotFound)
	}

	var req dto.DepositRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return sendValidationError(c, err)
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return SendError(c, errors.ValidationInvalidAmount)
	}

	account, err := h.service.Deposit(userID, accountID, amount)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID: account.ID.String(),
		Balance:   json.Number(account.Balance.StringFixed(2)),
	})
}
