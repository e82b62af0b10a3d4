package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"ledgervault/internal/dto"
	"ledgervault/internal/models"

	"github.com/shopspring/decimal"
)

const (
	routeRegister     = "/auth/register"
	routeLogin        = "/auth/login"
	routeLogout       = "/auth/logout"
	routeAccounts     = "/accounts/"
	routeAccount      = "/accounts/:id"
	routeBalance      = "/accounts/balance/:id"
	routeResolve      = "/accounts/resolve/:email"
	routeTransactions = "/transactions/"
	accountPathPrefix = "/accounts/"
	balancePathPrefix = "/accounts/balance/"
	resolvePathPrefix = "/accounts/resolve/"
)

var _ BankingAPI = (*Client)(nil)

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) error {
	_, err := c.send(ctx, http.MethodPost, routeRegister, routeRegister, req)
	return err
}

func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*models.Identity, error) {
	data, err := c.send(ctx, http.MethodPost, routeLogin, routeLogin, req)
	if err != nil {
		return nil, err
	}

	var resp dto.LoginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, nil
	}
	if resp.User == nil || resp.User.Email == "" && resp.User.Name == "" {
		return nil, nil
	}
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodPost, routeLogout, routeLogout, struct{}{})
	return err
}

func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	data, err := c.send(ctx, http.MethodGet, routeAccounts, routeAccounts, nil)
	if err != nil {
		return nil, err
	}
	return NormalizeAccounts(data), nil
}

func (c *Client) CreateAccount(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodPost, routeAccounts, routeAccounts, struct{}{})
	return err
}

func (c *Client) CloseAccount(ctx context.Context, accountID string) error {
	_, err := c.send(ctx, http.MethodDelete, routeAccount, accountPathPrefix+url.PathEscape(accountID), nil)
	return err
}

func (c *Client) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	data, err := c.send(ctx, http.MethodGet, routeBalance, balancePathPrefix+url.PathEscape(accountID), nil)
	if err != nil {
		return decimal.Zero, err
	}
	return NormalizeBalance(data)
}

func (c *Client) ResolveRecipient(ctx context.Context, email string) (*models.Recipient, error) {
	data, err := c.send(ctx, http.MethodGet, routeResolve, resolvePathPrefix+url.PathEscape(email), nil)
	if err != nil {
		return nil, err
	}
	return NormalizeRecipient(data), nil
}

func (c *Client) SubmitTransfer(ctx context.Context, req dto.TransferRequest) error {
	_, err := c.send(ctx, http.MethodPost, routeTransactions, routeTransactions, req)
	return err
}
