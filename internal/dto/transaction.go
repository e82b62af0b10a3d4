package dto

import "encoding/json"

// TransferRequest is the body of POST /transactions/. Amount is sent as a JSON number.
type TransferRequest struct {
	FromAccount    string      `json:"fromAccount" validate:"required"`
	ToAccount      string      `json:"toAccount" validate:"required"`
	Amount         json.Number `json:"amount" validate:"required,amount"`
	IdempotencyKey string      `json:"idempotencyKey" validate:"required,idempotency_key"`
}

// TransferResponse represents the response after a successful transfer
type TransferResponse struct {
	Message     string `json:"message"`
	TransferID  string `json:"transferId"`
	FromAccount string `json:"fromAccount"`
	ToAccount   string `json:"toAccount"`
	Amount      string `json:"amount"`
	Replayed    bool   `json:"replayed,omitempty"`
}
