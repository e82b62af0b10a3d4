package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ledgervault/internal/dto"
	"ledgervault/internal/errors"
	"ledgervault/internal/models"
	"ledgervault/internal/validation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AccountHandler serves the account endpoints of the signed-in user
type AccountHandler struct {
	service LedgerService
	logger  *slog.Logger
}

func NewAccountHandler(service LedgerService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{service: service, logger: logger}
}

// ListAccounts returns the user's accounts, oldest first
// @Summary List accounts
// @Tags Accounts
// @Produce json
// @Success 200 {object} dto.AccountListResponse
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing session"
// @Router /accounts/ [get]
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingSession)
	}

	accounts, err := h.service.ListAccounts(userID)
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}

	views := make([]dto.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, toAccountView(&accounts[i]))
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{Accounts: views})
}

// CreateAccount opens a new empty account
// @Summary Open account
// @Tags Accounts
// @Produce json
// @Success 201 {object} dto.CreateAccountResponse
// @Router /accounts/ [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingSession)
	}

	account, err := h.service.OpenAccount(userID)
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, dto.CreateAccountResponse{
		Account: toAccountView(account),
		Message: "Account created successfully",
	})
}

// CloseAccount closes an empty account
// @Summary Close account
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001"
// @Failure 422 {object} errors.ErrorResponse "ACCOUNT_002 or ACCOUNT_003"
// @Router /accounts/{id} [delete]
func (h *AccountHandler) CloseAccount(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingSession)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.AccountNotFound)
	}

	if err := h.service.CloseAccount(userID, accountID); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account closed successfully"})
}

// GetBalance returns an account balance as a JSON number
// @Summary Account balance
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001"
// @Router /accounts/balance/{id} [get]
func (h *AccountHandler) GetBalance(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingSession)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.AccountNotFound)
	}

	balance, err := h.service.Balance(userID, accountID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID: accountID.String(),
		Balance:   json.Number(balance.StringFixed(2)),
	})
}

// ResolveRecipient maps an email to the owner's name and active account ids
// @Summary Resolve transfer recipient
// @Tags Accounts
// @Produce json
// @Param email path string true "Recipient email"
// @Success 200 {object} dto.ResolveRecipientResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_005"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_005"
// @Router /accounts/resolve/{email} [get]
func (h *AccountHandler) ResolveRecipient(c echo.Context) error {
	if _, err := getUserIDFromContext(c); err != nil {
		return SendError(c, errors.AuthMissingSession)
	}

	email := strings.TrimSpace(c.Param("email"))
	if err := validation.GetValidator().Email(email); err != nil {
		return sendValidationError(c, err)
	}

	user, accountIDs, err := h.service.ResolveRecipient(email)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	ids := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		ids = append(ids, id.String())
	}

	return c.JSON(http.StatusOK, dto.ResolveRecipientResponse{Name: user.Name, AccountIDs: ids})
}

func toAccountView(account *models.LedgerAccount) dto.AccountView {
	return dto.AccountView{
		ID:        account.ID.String(),
		Status:    account.Status,
		Currency:  account.Currency,
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
	}
}
