package dashboard

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"ledgervault/internal/errors"
	"ledgervault/internal/models"
	"ledgervault/internal/services"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const helpText = `Commands:
  login <email> <password>         sign in
  demo                             sign in with the demo account
  register <email> <password> <name...>
  logout
  whoami
  accounts                         reload accounts and balances
  refresh <account>                refresh one balance
  create                           open a new account
  close <account>                  close an account with a zero balance
  show <account>                   print the full account id
  transfer new                     start a transfer
  transfer kind self|external
  transfer from <account>
  transfer to <account>
  transfer amount <amount>
  transfer recipient <email>       verify an external recipient
  transfer review | back | confirm | cancel | show
  toasts                           list visible notifications
  metrics                          print client metrics
  help
  quit

<account> is a full id or its last characters, as shown in the list.
`

var errUsage = stderrors.New("usage")

// Shell is a line-oriented front end for the dashboard.
type Shell struct {
	app      *App
	in       *bufio.Scanner
	outMu    sync.Mutex
	out      io.Writer
	lastSeen uint64
	gatherer prometheus.Gatherer
}

type ShellOption func(*Shell)

// WithGatherer enables the metrics command.
func WithGatherer(g prometheus.Gatherer) ShellOption {
	return func(sh *Shell) {
		sh.gatherer = g
	}
}

func NewShell(app *App, in io.Reader, out io.Writer, opts ...ShellOption) *Shell {
	sh := &Shell{
		app: app,
		in:  bufio.NewScanner(in),
		out: out,
	}
	for _, opt := range opts {
		opt(sh)
	}
	app.Notifier().OnChange(sh.printNewToasts)
	return sh
}

// Run reads commands until EOF, quit, or ctx is cancelled.
func (sh *Shell) Run(ctx context.Context) error {
	sh.printf("LedgerVault. Type 'help' for commands.\n")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sh.printf("> ")
		if !sh.in.Scan() {
			sh.printf("\n")
			return sh.in.Err()
		}

		before := sh.toastsSeen()
		quit, err := sh.Execute(ctx, sh.in.Text())
		if err != nil && !alreadyShown(err, sh.toastsSeen() > before) {
			if stderrors.Is(err, errUsage) {
				sh.printf("%s\n", err.Error())
			} else {
				sh.printf("error: %s\n", errors.UserMessage(err))
			}
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one command line.
func (sh *Shell) Execute(ctx context.Context, line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	ctx = services.WithCorrelationID(ctx, uuid.NewString())

	switch cmd, rest := strings.ToLower(args[0]), args[1:]; cmd {
	case "help", "?":
		sh.printf("%s", helpText)
	case "quit", "exit":
		return true, nil
	case "login":
		if len(rest) != 2 {
			return false, usage("login <email> <password>")
		}
		sh.login(ctx, func() (models.Identity, error) { return sh.app.Login(ctx, rest[0], rest[1]) })
	case "demo":
		sh.login(ctx, func() (models.Identity, error) { return sh.app.DemoLogin(ctx) })
	case "register":
		if len(rest) < 3 {
			return false, usage("register <email> <password> <name...>")
		}
		if err := sh.app.Register(ctx, strings.Join(rest[2:], " "), rest[0], rest[1]); err != nil {
			sh.printf("%s\n", errors.UserMessage(err))
			return false, nil
		}
		sh.printf("Account registered. Sign in with 'login %s <password>'.\n", rest[0])
	case "logout":
		sh.app.Logout(ctx)
		sh.printf("Signed out.\n")
	case "whoami":
		identity, ok := sh.app.Session().Current()
		if !ok {
			return false, ErrNotAuthenticated
		}
		sh.printf("Signed in as %s <%s>\n", identity.DisplayName(), identity.Email)
	case "accounts", "ls":
		if err := sh.app.Reload(ctx); err != nil {
			return false, err
		}
		sh.printAccounts()
	case "refresh":
		if len(rest) != 1 {
			return false, usage("refresh <account>")
		}
		if err := sh.app.RefreshBalance(ctx, rest[0]); err != nil {
			return false, err
		}
		sh.printAccounts()
	case "create":
		if err := sh.app.CreateAccount(ctx); err != nil {
			return false, err
		}
		sh.printAccounts()
	case "close":
		if len(rest) != 1 {
			return false, usage("close <account>")
		}
		if err := sh.app.CloseAccount(ctx, rest[0], sh.confirm); err != nil {
			return false, err
		}
		sh.printAccounts()
	case "show":
		if len(rest) != 1 {
			return false, usage("show <account>")
		}
		id, err := sh.app.ResolveAccountRef(rest[0])
		if err != nil {
			return false, err
		}
		sh.printf("%s\n", id)
	case "transfer":
		return false, sh.transfer(ctx, rest)
	case "toasts":
		for _, toast := range sh.app.Notifier().Active() {
			sh.printf("[%s] %s\n", toast.Severity, toast.Message)
		}
	case "metrics":
		return false, sh.printMetrics()
	default:
		return false, usage(fmt.Sprintf("unknown command %q, type 'help'", cmd))
	}
	return false, nil
}

func (sh *Shell) transfer(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("transfer new|kind|from|to|amount|recipient|review|back|confirm|cancel|show")
	}

	if args[0] == "new" {
		workflow, err := sh.app.OpenTransfer()
		if err != nil {
			return err
		}
		sh.printf("Transfer started (%s). Set 'from', 'to' and 'amount', then 'review'.\n", workflow.Draft().Kind)
		return nil
	}
	if args[0] == "cancel" {
		sh.app.CloseTransfer(ctx)
		sh.printf("Transfer closed.\n")
		return nil
	}

	workflow, err := sh.app.Transfer()
	if err != nil {
		return err
	}

	value := ""
	if len(args) > 1 {
		value = args[1]
	}

	switch args[0] {
	case "kind":
		if err := workflow.SetKind(models.TransferKind(strings.ToLower(value))); err != nil {
			return err
		}
	case "from":
		id, err := sh.app.ResolveAccountRef(value)
		if err != nil {
			return err
		}
		if err := workflow.SetSource(id); err != nil {
			return err
		}
	case "to":
		id, err := sh.resolveDestination(workflow, value)
		if err != nil {
			return err
		}
		if err := workflow.SetDestination(id); err != nil {
			return err
		}
	case "amount":
		if err := workflow.SetAmount(value); err != nil {
			return err
		}
	case "recipient":
		if err := workflow.ResolveRecipient(ctx, value); err != nil {
			return err
		}
	case "review":
		if err := workflow.Review(); err != nil {
			return err
		}
		sh.printSummary(workflow)
		sh.printf("A unique idempotency key will be generated to prevent duplicate transactions.\n")
		sh.printf("Type 'transfer confirm' to send or 'transfer back' to edit.\n")
		return nil
	case "back":
		if err := workflow.Back(); err != nil {
			return err
		}
	case "confirm":
		if err := workflow.Confirm(ctx); err != nil {
			return err
		}
		sh.printf("Transfer Successful\n%s\n", workflow.SuccessMessage())
		sh.app.CloseTransfer(ctx)
		return nil
	case "show":
	default:
		return usage(fmt.Sprintf("unknown transfer step %q", args[0]))
	}

	sh.printDraft(workflow)
	return nil
}

// resolveDestination matches a reference against the destination options first,
// so a recipient's account can be picked by its short id.
func (sh *Shell) resolveDestination(workflow *services.TransferWorkflow, ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "···")
	options := workflow.DestinationOptions(accountIDs(sh.app.Accounts().Accounts()))
	for _, id := range options {
		if id == ref || strings.HasSuffix(strings.ToLower(id), strings.ToLower(ref)) && ref != "" {
			return id, nil
		}
	}
	return sh.app.ResolveAccountRef(ref)
}

func (sh *Shell) login(ctx context.Context, do func() (models.Identity, error)) {
	identity, err := do()
	if err != nil {
		sh.printf("%s\n", errors.UserMessage(err))
		return
	}
	sh.printf("Welcome, %s.\n", identity.DisplayName())
	sh.printAccounts()
}

func (sh *Shell) confirm(prompt string) bool {
	sh.printf("%s [y/N] ", prompt)
	if !sh.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sh.in.Text()))
	return answer == "y" || answer == "yes"
}

func (sh *Shell) printAccounts() {
	accounts := sh.app.Accounts().Accounts()
	stats := sh.app.Accounts().Stats()

	sh.printf("Accounts: %d total, %d active, %d frozen\n", stats.Total, stats.Active, stats.Frozen)
	if len(accounts) == 0 {
		sh.printf("  No accounts yet. Type 'create' to open one.\n")
		return
	}
	for _, account := range accounts {
		sh.printf("  %-12s %-7s %14s  %s\n", models.ShortID(account.ID), account.StatusLabel(), account.BalanceDisplay(), account.ID)
	}
}

func (sh *Shell) printDraft(workflow *services.TransferWorkflow) {
	draft := workflow.Draft()
	sh.printf("Transfer [%s] kind=%s from=%s to=%s amount=%s",
		workflow.State(), draft.Kind, orDash(draft.SourceAccountID), orDash(draft.DestinationAccountID), orDash(draft.Amount))
	if draft.Kind == models.TransferExternal {
		recipient := "unverified"
		if draft.Recipient != nil {
			recipient = "Verified: " + draft.Recipient.DisplayName()
		}
		sh.printf(" recipient=%s (%s)", orDash(draft.RecipientEmail), recipient)
	}
	sh.printf("\n")

	if options := workflow.DestinationOptions(accountIDs(sh.app.Accounts().Accounts())); len(options) > 0 {
		labels := make([]string, 0, len(options))
		for _, id := range options {
			labels = append(labels, models.ShortID(id))
		}
		sh.printf("  destinations: %s\n", strings.Join(labels, ", "))
	}
}

func (sh *Shell) printSummary(workflow *services.TransferWorkflow) {
	rows, err := workflow.Summary()
	if err != nil {
		return
	}
	for _, row := range rows {
		if row.Extra != "" {
			sh.printf("  %-7s %s %s\n", row.Label, row.Extra, row.Value)
		} else {
			sh.printf("  %-7s %s\n", row.Label, row.Value)
		}
	}
}

func (sh *Shell) printMetrics() error {
	if sh.gatherer == nil {
		return usage("metrics are disabled")
	}
	families, err := sh.gatherer.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "ledgervault_") {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetName()+"="+label.GetValue())
			}

			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				value = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				value = float64(metric.GetHistogram().GetSampleCount())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", family.GetName(), strings.Join(labels, ","), value))
		}
	}

	sort.Strings(lines)
	for _, line := range lines {
		sh.printf("%s\n", line)
	}
	return nil
}

// printNewToasts prints toasts it has not shown yet. Expiry is silent.
func (sh *Shell) printNewToasts(toasts []models.Toast) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()

	for _, toast := range toasts {
		if toast.ID <= sh.lastSeen {
			continue
		}
		sh.lastSeen = toast.ID
		fmt.Fprintf(sh.out, "[%s] %s\n", toast.Severity, toast.Message)
	}
}

func (sh *Shell) printf(format string, args ...interface{}) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *Shell) toastsSeen() uint64 {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	return sh.lastSeen
}

// alreadyShown reports errors the user has already seen: client errors whose
// command printed a toast, and outcomes that need no message.
func alreadyShown(err error, toasted bool) bool {
	if stderrors.Is(err, services.ErrCloseDeclined) || stderrors.Is(err, services.ErrStaleResolution) {
		return true
	}
	return toasted && (errors.IsValidation(err) || errors.IsRequest(err) || errors.IsNetwork(err))
}

func usage(msg string) error {
	return fmt.Errorf("%w: %s", errUsage, msg)
}

func accountIDs(accounts []models.Account) []string {
	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	return ids
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
