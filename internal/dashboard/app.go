package dashboard

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ledgervault/internal/apiclient"
	"ledgervault/internal/errors"
	"ledgervault/internal/idempotency"
	"ledgervault/internal/metrics"
	"ledgervault/internal/models"
	"ledgervault/internal/services"
)

const (
	MsgSelectAccount  = "Please select an account."
	MsgUnknownAccount = "No listed account matches that reference."
)

var (
	// ErrNotAuthenticated is returned by every account or transfer action while signed out.
	ErrNotAuthenticated = stderrors.New(errors.GetErrorMessage(errors.AuthMissingSession))
	// ErrNoTransfer is returned when a transfer command runs without an open workflow.
	ErrNoTransfer = stderrors.New("no transfer in progress")
	// ErrAmbiguousAccount is returned when a short id matches more than one account.
	ErrAmbiguousAccount = stderrors.New("account reference matches more than one account")
)

// Deps are the collaborators the dashboard is assembled from.
type Deps struct {
	API           apiclient.BankingAPI
	Keys          idempotency.Generator
	Logger        *slog.Logger
	Metrics       metrics.Recorder
	ToastDuration time.Duration // zero disables expiry
}

// App is the composition root. It owns the session, the toast queue and the
// account directory for the life of the process, and gates every account or
// transfer action on an authenticated session.
type App struct {
	mu       sync.Mutex
	api      apiclient.BankingAPI
	keys     idempotency.Generator
	logger   services.WorkflowLoggerInterface
	metrics  metrics.Recorder
	session  *services.SessionStore
	notifier *services.Notifier
	accounts *services.AccountDirectory
	transfer *services.TransferWorkflow
}

func NewApp(deps Deps) *App {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	keys := deps.Keys
	if keys == nil {
		keys = idempotency.NewGenerator()
	}
	baseLogger := deps.Logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	logger := services.NewWorkflowLogger(baseLogger)
	notifier := services.NewNotifier(deps.ToastDuration, recorder)

	return &App{
		api:      deps.API,
		keys:     keys,
		logger:   logger,
		metrics:  recorder,
		session:  services.NewSessionStore(deps.API, logger, recorder),
		notifier: notifier,
		accounts: services.NewAccountDirectory(deps.API, notifier, logger, recorder),
	}
}

func (a *App) Session() *services.SessionStore {
	return a.session
}

func (a *App) Notifier() *services.Notifier {
	return a.notifier
}

func (a *App) Accounts() *services.AccountDirectory {
	return a.accounts
}

// Login signs in and loads the dashboard: the account list, then every balance.
func (a *App) Login(ctx context.Context, email, password string) (models.Identity, error) {
	identity, err := a.session.Login(ctx, email, password)
	if err != nil {
		return models.Identity{}, err
	}
	a.loadDashboard(ctx)
	return identity, nil
}

func (a *App) DemoLogin(ctx context.Context) (models.Identity, error) {
	return a.Login(ctx, services.DemoEmail, services.DemoPassword)
}

func (a *App) Register(ctx context.Context, name, email, password string) error {
	return a.session.Register(ctx, name, email, password)
}

// Logout ends the session locally no matter what the backend says, and forgets
// every piece of per-user state.
func (a *App) Logout(ctx context.Context) {
	a.mu.Lock()
	if a.transfer != nil {
		a.transfer.Dismiss()
		a.transfer = nil
	}
	a.mu.Unlock()

	a.session.Logout(ctx)
	a.accounts.Reset()
}

func (a *App) Reload(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if err := a.accounts.List(ctx); err != nil {
		return err
	}
	a.accounts.RefreshAll(ctx)
	return nil
}

func (a *App) CreateAccount(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if err := a.accounts.Create(ctx); err != nil {
		return err
	}
	a.accounts.RefreshAll(ctx)
	return nil
}

func (a *App) CloseAccount(ctx context.Context, ref string, confirm services.Confirmer) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := a.ResolveAccountRef(ref)
	if err != nil {
		return err
	}
	if err := a.accounts.Close(ctx, id, confirm); err != nil {
		return err
	}
	a.accounts.RefreshAll(ctx)
	return nil
}

func (a *App) RefreshBalance(ctx context.Context, ref string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := a.ResolveAccountRef(ref)
	if err != nil {
		return err
	}
	a.accounts.FetchBalance(ctx, id)
	return nil
}

// OpenTransfer starts a new transfer, dismissing any previous one.
func (a *App) OpenTransfer() (*services.TransferWorkflow, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.transfer != nil {
		a.transfer.Dismiss()
	}
	a.transfer = services.NewTransferWorkflow(a.api, a.keys, a.notifier, a.logger, a.metrics)
	return a.transfer, nil
}

// Transfer returns the open workflow.
func (a *App) Transfer() (*services.TransferWorkflow, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.transfer == nil || a.transfer.State() == services.StateClosed {
		return nil, ErrNoTransfer
	}
	return a.transfer, nil
}

// CloseTransfer dismisses the open workflow. A successful transfer reloads balances.
func (a *App) CloseTransfer(ctx context.Context) {
	a.mu.Lock()
	workflow := a.transfer
	a.transfer = nil
	a.mu.Unlock()

	if workflow == nil {
		return
	}
	succeeded := workflow.State() == services.StateSuccess
	workflow.Dismiss()
	if succeeded && a.session.IsAuthenticated() {
		a.accounts.RefreshAll(ctx)
	}
}

// ResolveAccountRef maps a full id or a case-insensitive id suffix (such as the
// eight characters shown on a card) to a listed account id. References that
// match no listed account are rejected with a toast.
func (a *App) ResolveAccountRef(ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "···")
	if ref == "" {
		return "", a.reject(errors.NewValidation(errors.ValidationRequiredField, "account", MsgSelectAccount))
	}

	var matches []string
	for _, account := range a.accounts.Accounts() {
		if account.ID == ref {
			return account.ID, nil
		}
		if strings.HasSuffix(strings.ToLower(account.ID), strings.ToLower(ref)) {
			matches = append(matches, account.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", a.reject(errors.NewValidation(errors.AccountNotFound, "account", MsgUnknownAccount))
	case 1:
		return matches[0], nil
	default:
		return "", ErrAmbiguousAccount
	}
}

// Shutdown stops toast timers.
func (a *App) Shutdown() {
	a.notifier.Close()
}

func (a *App) loadDashboard(ctx context.Context) {
	// List toasts its own failure; the user can reload.
	if err := a.accounts.List(ctx); err == nil {
		a.accounts.RefreshAll(ctx)
	}
}

func (a *App) reject(err *errors.ValidationError) error {
	a.notifier.Push(err.Message, models.SeverityError)
	return err
}

func (a *App) requireSession() error {
	if !a.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}
