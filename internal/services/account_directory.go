package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"sync"

	"ledgervault/internal/apiclient"
	"ledgervault/internal/errors"
	"ledgervault/internal/metrics"
	"ledgervault/internal/models"
)

const (
	MsgAccountCreated     = "New account created!"
	MsgAccountClosed      = "Account closed successfully."
	MsgCloseConfirmPrompt = "Close this account? This is permanent."
	MsgCloseUnknown       = "Cannot close. Balance is unknown. Refresh and try again."
	MsgAlreadyClosed      = "Account is already closed."
)

// ErrCloseDeclined is returned by Close when the user does not confirm.
var ErrCloseDeclined = stderrors.New("account close declined")

// AccountDirectory caches the signed-in user's accounts. The list is always
// replaced wholesale on reload; balances are carried over by id so a re-list
// does not flash every card back to pending.
type AccountDirectory struct {
	mu       sync.RWMutex
	api      apiclient.BankingAPI
	notifier NotifierInterface
	logger   WorkflowLoggerInterface
	metrics  metrics.Recorder
	accounts []models.Account
}

func NewAccountDirectory(api apiclient.BankingAPI, notifier NotifierInterface, logger WorkflowLoggerInterface, recorder metrics.Recorder) *AccountDirectory {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &AccountDirectory{
		api:      api,
		notifier: notifier,
		logger:   logger,
		metrics:  recorder,
	}
}

// List reloads the account list. On failure the error is toasted and the previous list is kept.
func (d *AccountDirectory) List(ctx context.Context) error {
	fresh, err := d.api.ListAccounts(ctx)
	if err != nil {
		d.notifier.Push(errors.UserMessage(err), models.SeverityError)
		return err
	}

	d.mu.Lock()
	previous := make(map[string]models.Account, len(d.accounts))
	for _, account := range d.accounts {
		previous[account.ID] = account
	}

	next := make([]models.Account, 0, len(fresh))
	for _, account := range fresh {
		if old, ok := previous[account.ID]; ok {
			account.CachedBalance = old.CachedBalance
			account.BalanceState = old.BalanceState
		} else {
			account.CachedBalance = nil
			account.BalanceState = models.BalancePending
		}
		next = append(next, account)
	}
	d.accounts = next
	d.mu.Unlock()

	d.metrics.RecordGauge(metrics.AccountsListed, float64(len(next)), nil)
	return nil
}

// Create opens a new account and reloads the list. Nothing is inserted locally.
func (d *AccountDirectory) Create(ctx context.Context) error {
	if err := d.api.CreateAccount(ctx); err != nil {
		d.notifier.Push(errors.UserMessage(err), models.SeverityError)
		return err
	}

	// A failed reload is toasted by List itself; the account exists regardless.
	_ = d.List(ctx)
	d.notifier.Push(MsgAccountCreated, models.SeveritySuccess)
	return nil
}

// Close deletes an account after the local balance guard and an explicit confirmation.
// A nil confirm declines.
func (d *AccountDirectory) Close(ctx context.Context, accountID string, confirm Confirmer) error {
	account, ok := d.Account(accountID)
	if !ok {
		return d.reject(errors.NewValidation(errors.AccountNotFound, "account"))
	}
	if account.IsClosed() {
		return d.reject(errors.NewValidation(errors.AccountInactive, "account", MsgAlreadyClosed))
	}

	switch account.BalanceState {
	case models.BalanceKnown:
		if !account.HasZeroBalance() {
			msg := fmt.Sprintf("Cannot close. Balance is %s. Transfer all funds first.", account.BalanceDisplay())
			return d.reject(errors.NewValidation(errors.AccountNonZeroBalance, "balance", msg))
		}
	default:
		return d.reject(errors.NewValidation(errors.AccountNonZeroBalance, "balance", MsgCloseUnknown))
	}

	if confirm == nil || !confirm(MsgCloseConfirmPrompt) {
		return ErrCloseDeclined
	}

	if err := d.api.CloseAccount(ctx, accountID); err != nil {
		d.notifier.Push(errors.UserMessage(err), models.SeverityError)
		return err
	}

	d.notifier.Push(MsgAccountClosed, models.SeveritySuccess)
	_ = d.List(ctx)
	return nil
}

// FetchBalance refreshes one account's balance. Failures degrade the balance to
// unknown and are never returned. Responses for accounts that are no longer
// listed are dropped.
func (d *AccountDirectory) FetchBalance(ctx context.Context, accountID string) {
	balance, err := d.api.GetBalance(ctx, accountID)

	d.mu.Lock()
	idx := slices.IndexFunc(d.accounts, func(a models.Account) bool { return a.ID == accountID })
	if idx < 0 {
		d.mu.Unlock()
		if d.logger != nil {
			d.logger.LogStaleBalanceDropped(ctx, accountID)
		}
		return
	}

	if err != nil {
		d.accounts[idx].CachedBalance = nil
		d.accounts[idx].BalanceState = models.BalanceUnknown
	} else {
		d.accounts[idx].CachedBalance = &balance
		d.accounts[idx].BalanceState = models.BalanceKnown
	}
	d.mu.Unlock()

	status := "ok"
	if err != nil {
		status = "failed"
		if d.logger != nil {
			d.logger.LogBalanceFetchFailed(ctx, accountID, err.Error())
		}
	}
	d.metrics.IncrementCounter(metrics.BalanceFetch, map[string]string{"status": status})
}

// RefreshAll fetches every listed balance concurrently and waits for all of them.
func (d *AccountDirectory) RefreshAll(ctx context.Context) {
	accounts := d.Accounts()

	var wg sync.WaitGroup
	for _, account := range accounts {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			d.FetchBalance(ctx, id)
		}(account.ID)
	}
	wg.Wait()
}

// Accounts returns a copy of the cached list.
func (d *AccountDirectory) Accounts() []models.Account {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.accounts)
}

func (d *AccountDirectory) Account(accountID string) (models.Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, account := range d.accounts {
		if account.ID == accountID {
			return account, true
		}
	}
	return models.Account{}, false
}

// ActiveAccountIDs lists the ids of active accounts in display order.
func (d *AccountDirectory) ActiveAccountIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.accounts))
	for _, account := range d.accounts {
		if account.IsActive() {
			ids = append(ids, account.ID)
		}
	}
	return ids
}

// Stats counts accounts for the summary strip. Every non-active account counts as frozen.
func (d *AccountDirectory) Stats() models.AccountStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := models.AccountStats{Total: len(d.accounts)}
	for _, account := range d.accounts {
		if account.IsActive() {
			stats.Active++
		} else {
			stats.Frozen++
		}
	}
	return stats
}

// Reset forgets every cached account, e.g. after logout.
func (d *AccountDirectory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts = nil
}

func (d *AccountDirectory) reject(err *errors.ValidationError) error {
	d.notifier.Push(err.Message, models.SeverityError)
	return err
}
