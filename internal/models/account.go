package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive = "active"
	AccountStatusFrozen = "frozen"
	AccountStatusClosed = "closed"

	// UnknownBalanceDisplay is shown when a balance lookup failed.
	UnknownBalanceDisplay = "—"
)

// BalanceState tracks what the client knows about an account's balance.
type BalanceState int

const (
	BalancePending BalanceState = iota
	BalanceKnown
	BalanceUnknown
)

func (s BalanceState) String() string {
	switch s {
	case BalancePending:
		return "pending"
	case BalanceKnown:
		return "known"
	case BalanceUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Account is the client's view of one ledger account. Balance is display-only;
// the client never computes it.
type Account struct {
	ID            string           `json:"id"`
	Status        string           `json:"status"`
	CachedBalance *decimal.Decimal `json:"-"`
	BalanceState  BalanceState     `json:"-"`
}

// UnmarshalJSON accepts both "id" and "_id" and defaults a missing status to active.
func (a *Account) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a.ID = wire.ID
	if a.ID == "" {
		a.ID = wire.MongoID
	}
	a.Status = NormalizeStatus(wire.Status)
	return nil
}

// NormalizeStatus lower-cases a status and treats an empty one as active.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return AccountStatusActive
	}
	return status
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

func (a *Account) IsClosed() bool {
	return a.Status == AccountStatusClosed
}

// HasZeroBalance reports whether the last fetched balance is known and exactly zero.
func (a *Account) HasZeroBalance() bool {
	return a.BalanceState == BalanceKnown && a.CachedBalance != nil && a.CachedBalance.IsZero()
}

// BalanceDisplay renders the cached balance for the dashboard.
func (a *Account) BalanceDisplay() string {
	switch a.BalanceState {
	case BalanceKnown:
		if a.CachedBalance != nil {
			return FormatUSD(*a.CachedBalance)
		}
		return UnknownBalanceDisplay
	case BalancePending:
		return "Fetching…"
	default:
		return UnknownBalanceDisplay
	}
}

// StatusLabel capitalizes the status for display.
func (a *Account) StatusLabel() string {
	if a.Status == "" {
		return ""
	}
	return strings.ToUpper(a.Status[:1]) + a.Status[1:]
}

// AccountStats is the dashboard's summary strip.
type AccountStats struct {
	Total  int
	Active int
	Frozen int
}
