package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name           string
		payload        string
		expectedID     string
		expectedStatus string
	}{
		{"id field", `{"id":"acc-1","status":"ACTIVE"}`, "acc-1", AccountStatusActive},
		{"mongo id field", `{"_id":"65f0c1","status":"frozen"}`, "65f0c1", AccountStatusFrozen},
		{"id wins over _id", `{"id":"a","_id":"b","status":"closed"}`, "a", AccountStatusClosed},
		{"missing status", `{"id":"acc-2"}`, "acc-2", AccountStatusActive},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var account Account
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &account))
			assert.Equal(t, tc.expectedID, account.ID)
			assert.Equal(t, tc.expectedStatus, account.Status)
			assert.Equal(t, BalancePending, account.BalanceState)
		})
	}
}

func TestAccount_HasZeroBalance(t *testing.T) {
	zero := decimal.Zero
	fortyTwo := decimal.NewFromInt(42)

	assert.False(t, (&Account{BalanceState: BalancePending}).HasZeroBalance())
	assert.False(t, (&Account{BalanceState: BalanceUnknown}).HasZeroBalance())
	assert.False(t, (&Account{BalanceState: BalanceKnown, CachedBalance: &fortyTwo}).HasZeroBalance())
	assert.True(t, (&Account{BalanceState: BalanceKnown, CachedBalance: &zero}).HasZeroBalance())
}

func TestAccount_BalanceDisplay(t *testing.T) {
	balance := decimal.RequireFromString("100")

	assert.Equal(t, "$100.00", (&Account{BalanceState: BalanceKnown, CachedBalance: &balance}).BalanceDisplay())
	assert.Equal(t, UnknownBalanceDisplay, (&Account{BalanceState: BalanceUnknown}).BalanceDisplay())
	assert.Equal(t, "Fetching…", (&Account{}).BalanceDisplay())
}

func TestAccount_StatusLabel(t *testing.T) {
	assert.Equal(t, "Frozen", (&Account{Status: AccountStatusFrozen}).StatusLabel())
	assert.Equal(t, "", (&Account{}).StatusLabel())
}

func TestBalanceState_String(t *testing.T) {
	assert.Equal(t, "pending", BalancePending.String())
	assert.Equal(t, "known", BalanceKnown.String())
	assert.Equal(t, "unknown", BalanceUnknown.String())
}
