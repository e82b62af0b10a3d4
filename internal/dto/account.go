package dto

import "encoding/json"

// Account Response DTOs

// AccountView is one account as served by the sandbox.
type AccountView struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"createdAt"`
}

// AccountListResponse is the sandbox's account listing envelope.
type AccountListResponse struct {
	Accounts []AccountView `json:"accounts"`
}

// CreateAccountResponse represents the response after creating an account
type CreateAccountResponse struct {
	Account AccountView `json:"account"`
	Message string      `json:"message"`
}

// BalanceResponse carries a balance as a JSON number.
type BalanceResponse struct {
	AccountID string      `json:"accountId"`
	Balance   json.Number `json:"balance"`
}

// ResolveRecipientResponse is returned by /accounts/resolve/:email.
type ResolveRecipientResponse struct {
	Name       string   `json:"name"`
	AccountIDs []string `json:"accountIds"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// DepositRequest is the body of the development-only deposit endpoint.
type DepositRequest struct {
	Amount json.Number `json:"amount" validate:"required,amount"`
}
