package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ledgervault/internal/models"

	"github.com/shopspring/decimal"
)

// NormalizeAccounts extracts the account list from whichever envelope the backend used:
// {"accounts": [...]}, then {"data": [...]}, then a bare array. Anything else is an empty list.
// Elements that do not decode or carry no id are skipped.
func NormalizeAccounts(data json.RawMessage) []models.Account {
	data = bytes.TrimSpace(data)

	var raw []json.RawMessage
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return []models.Account{}
		}
	} else {
		var envelope struct {
			Accounts json.RawMessage `json:"accounts"`
			Data     json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return []models.Account{}
		}
		for _, candidate := range []json.RawMessage{envelope.Accounts, envelope.Data} {
			if isArray(candidate) {
				_ = json.Unmarshal(candidate, &raw)
				break
			}
		}
	}

	accounts := make([]models.Account, 0, len(raw))
	for _, item := range raw {
		var account models.Account
		if err := json.Unmarshal(item, &account); err != nil || account.ID == "" {
			continue
		}
		account.BalanceState = models.BalancePending
		accounts = append(accounts, account)
	}
	return accounts
}

// NormalizeBalance reads {"balance": n}, then {"data": {"balance": n}}, and defaults to zero
// when neither is present. The value may be a JSON number or a numeric string.
func NormalizeBalance(data json.RawMessage) (decimal.Decimal, error) {
	var envelope struct {
		Balance json.RawMessage `json:"balance"`
	}
	// A non-object body leaves the field empty.
	_ = json.Unmarshal(data, &envelope)

	value := envelope.Balance
	if isNull(value) {
		var nested struct {
			Data struct {
				Balance json.RawMessage `json:"balance"`
			} `json:"data"`
		}
		if err := json.Unmarshal(data, &nested); err == nil {
			value = nested.Data.Balance
		}
	}
	if isNull(value) {
		return decimal.Zero, nil
	}

	return parseBalance(value)
}

// NormalizeRecipient decodes {"name", "accountIds"}. A missing name yields an empty display name.
func NormalizeRecipient(data json.RawMessage) *models.Recipient {
	var body struct {
		Name       string   `json:"name"`
		AccountIDs []string `json:"accountIds"`
	}
	_ = json.Unmarshal(data, &body)

	ids := make([]string, 0, len(body.AccountIDs))
	for _, id := range body.AccountIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return models.NewRecipient(body.Name, ids)
}

func parseBalance(value json.RawMessage) (decimal.Decimal, error) {
	var number json.Number
	if err := json.Unmarshal(value, &number); err == nil {
		return decimal.NewFromString(number.String())
	}

	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(text))
		if err != nil {
			return decimal.Zero, fmt.Errorf("balance %q is not numeric: %w", text, err)
		}
		return amount, nil
	}

	return decimal.Zero, fmt.Errorf("balance has unsupported type: %s", string(value))
}

func isArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}
