package handlers

import (
	"log/slog"
	"net/http"

	"ledgervault/internal/dto"
	"ledgervault/internal/errors"
	"ledgervault/internal/ledger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler executes transfers between accounts
type TransactionHandler struct {
	service LedgerService
	logger  *slog.Logger
}

func NewTransactionHandler(service LedgerService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, logger: logger}
}

// CreateTransfer moves funds from one of the user's accounts to any active account.
// A retry carrying the same idempotency key and payload answers 200 with replayed set.
// @Summary Transfer funds
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.TransferRequest true "Transfer"
// @Success 201 {object} dto.TransferResponse "Transfer executed"
// @Success 200 {object} dto.TransferResponse "Replay of an earlier transfer"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_* or TRANSFER_001/003"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001"
// @Failure 409 {object} errors.ErrorResponse "TRANSFER_004 - Idempotency key reused"
// @Failure 422 {object} errors.ErrorResponse "TRANSFER_002 or ACCOUNT_002"
// @Router /transactions/ [post]
func (h *TransactionHandler) CreateTransfer(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingSession)
	}

	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(&req); err != nil {
		return sendValidationError(c, err)
	}

	fromID, err := uuid.Parse(req.FromAccount)
	if err != nil {
		return SendError(c, errors.AccountNotFound, errors.WithDetails("fromAccount"))
	}
	toID, err := uuid.Parse(req.ToAccount)
	if err != nil {
		return SendError(c, errors.AccountNotFound, errors.WithDetails("toAccount"))
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return SendError(c, errors.ValidationInvalidAmount)
	}

	result, err := h.service.Transfer(ledger.TransferCommand{
		UserID:         userID,
		FromAccountID:  fromID,
		ToAccountID:    toID,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	transfer := result.Transfer
	return c.JSON(status, dto.TransferResponse{
		Message:     "Transfer successful",
		TransferID:  transfer.ID.String(),
		FromAccount: transfer.FromAccountID.String(),
		ToAccount:   transfer.ToAccountID.String(),
		Amount:      transfer.Amount.StringFixed(2),
		Replayed:    result.Replayed,
	})
}
