package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ledgervault/internal/apiclient"
	"ledgervault/internal/dto"
	"ledgervault/internal/errors"
	"ledgervault/internal/idempotency"
	"ledgervault/internal/metrics"
	"ledgervault/internal/models"
	"ledgervault/internal/validation"

	"github.com/google/uuid"
)

// State is a step of the transfer workflow.
type State int

const (
	StateForm State = iota
	StateConfirm
	StateSubmitting
	StateSuccess
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateForm:
		return "form"
	case StateConfirm:
		return "confirm"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var allowedTransitions = map[State][]State{
	StateForm:       {StateConfirm, StateClosed},
	StateConfirm:    {StateForm, StateSubmitting, StateClosed},
	StateSubmitting: {StateSuccess, StateForm, StateClosed},
	StateSuccess:    {StateClosed},
}

func canTransition(from, to State) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// User-facing workflow messages.
const (
	MsgEmailRequired       = "Please enter an email address."
	MsgEmailFormat         = "Please enter a valid email format."
	MsgRecipientVerified   = "Recipient verified!"
	MsgRecipientNoAccounts = "Recipient has no accounts."
	MsgRecipientSelfKind   = "Switch to an external transfer to look up a recipient."
	MsgSourceRequired      = "Please select a source account."
	MsgDestinationRequired = "Please select a destination account."
	MsgTransferCompleted   = "Transfer completed successfully!"
	MsgSelfTransferSuccess = "Your funds have been securely transferred between your accounts."
	MsgOwnAccountLabel     = "My Account"
	msgExternalSuccessFmt  = "Your funds have been securely transferred to %s."
)

var (
	// ErrWorkflowClosed is returned by every operation after Dismiss.
	ErrWorkflowClosed = stderrors.New("transfer workflow is closed")
	// ErrInvalidState is returned when an operation is not available in the current step.
	ErrInvalidState = stderrors.New("operation not allowed in current state")
	// ErrStaleResolution is returned when the recipient input changed while a lookup was in flight.
	ErrStaleResolution = stderrors.New("recipient changed before lookup completed")
)

// SummaryRow is one line of the confirmation and success screens.
type SummaryRow struct {
	Label string
	Extra string
	Value string
}

// TransferWorkflow drives one transfer from data entry to completion:
//
//	form -> confirm -> submitting -> success
//	          |  ^          |
//	          v  |          v
//	          form <------ form (on failure)
//
// Dismiss closes the workflow from any step. Responses that arrive after
// dismissal are dropped without touching state or raising toasts.
type TransferWorkflow struct {
	mu         sync.Mutex
	id         string
	state      State
	draft      models.TransferDraft
	amount     string
	lastKey    string
	resolveSeq uint64

	api      apiclient.BankingAPI
	keys     idempotency.Generator
	notifier NotifierInterface
	logger   WorkflowLoggerInterface
	metrics  metrics.Recorder
}

func NewTransferWorkflow(api apiclient.BankingAPI, keys idempotency.Generator, notifier NotifierInterface, logger WorkflowLoggerInterface, recorder metrics.Recorder) *TransferWorkflow {
	if keys == nil {
		keys = idempotency.NewGenerator()
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &TransferWorkflow{
		id:       uuid.NewString(),
		state:    StateForm,
		draft:    models.NewTransferDraft(),
		api:      api,
		keys:     keys,
		notifier: notifier,
		logger:   logger,
		metrics:  recorder,
	}
}

func (w *TransferWorkflow) ID() string {
	return w.id
}

func (w *TransferWorkflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the current input.
func (w *TransferWorkflow) Draft() models.TransferDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// LastKey is the idempotency key of the most recent submission attempt, kept for diagnostics only.
func (w *TransferWorkflow) LastKey() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastKey
}

// SetKind switches between self and external transfers. The destination is always cleared.
func (w *TransferWorkflow) SetKind(kind models.TransferKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown transfer kind %q", kind)
	}
	return w.edit(func(d *models.TransferDraft) {
		d.Kind = kind
		d.DestinationAccountID = ""
	})
}

func (w *TransferWorkflow) SetSource(accountID string) error {
	return w.edit(func(d *models.TransferDraft) {
		d.SourceAccountID = accountID
	})
}

func (w *TransferWorkflow) SetDestination(accountID string) error {
	return w.edit(func(d *models.TransferDraft) {
		d.DestinationAccountID = accountID
	})
}

func (w *TransferWorkflow) SetAmount(raw string) error {
	return w.edit(func(d *models.TransferDraft) {
		d.Amount = raw
	})
}

// SetRecipientEmail edits the recipient email. Any earlier resolution is discarded.
func (w *TransferWorkflow) SetRecipientEmail(email string) error {
	return w.edit(func(d *models.TransferDraft) {
		w.clearRecipientLocked(d)
		d.RecipientEmail = email
	})
}

// ResolveRecipient looks up the owner of email and offers their accounts as
// destinations. Only external transfers have a recipient.
func (w *TransferWorkflow) ResolveRecipient(ctx context.Context, email string) error {
	w.mu.Lock()
	if err := w.requireLocked(StateForm); err != nil {
		w.mu.Unlock()
		return err
	}

	if w.draft.Kind != models.TransferExternal {
		w.mu.Unlock()
		return w.reject(errors.NewValidation(errors.ValidationGeneral, "recipientEmail", MsgRecipientSelfKind))
	}
	if email == "" {
		w.mu.Unlock()
		return w.reject(errors.NewValidation(errors.ValidationRequiredField, "recipientEmail", MsgEmailRequired))
	}
	trimmed := strings.TrimSpace(email)
	if err := validation.GetValidator().Email(trimmed); err != nil {
		w.mu.Unlock()
		return w.reject(errors.NewValidation(errors.ValidationInvalidEmail, "recipientEmail", MsgEmailFormat))
	}

	w.draft.RecipientEmail = email
	w.clearRecipientLocked(&w.draft)
	w.resolveSeq++
	seq := w.resolveSeq
	w.mu.Unlock()

	recipient, err := w.api.ResolveRecipient(ctx, trimmed)
	if err == nil && len(recipient.CandidateAccountIDs()) == 0 {
		err = errors.NewValidation(errors.AccountRecipientNotFound, "recipientEmail", MsgRecipientNoAccounts)
	}

	w.mu.Lock()
	if w.state != StateForm || seq != w.resolveSeq {
		stale := ErrStaleResolution
		if w.state == StateClosed {
			stale = ErrWorkflowClosed
		}
		w.mu.Unlock()
		w.logDropped(ctx, "resolve_recipient")
		return stale
	}

	if err != nil {
		w.clearRecipientLocked(&w.draft)
		w.mu.Unlock()
		w.notifier.Push(errors.UserMessage(err), models.SeverityError)
		return err
	}

	w.draft.Recipient = recipient
	w.draft.DestinationAccountID = recipient.CandidateAccountIDs()[0]
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.LogRecipientResolved(ctx, w.id, trimmed, len(recipient.CandidateAccountIDs()))
	}
	w.notifier.Push(MsgRecipientVerified, models.SeveritySuccess)
	return nil
}

// DestinationOptions lists the accounts the destination may be picked from:
// the resolved recipient's accounts for external transfers, otherwise the
// given own accounts minus the selected source.
func (w *TransferWorkflow) DestinationOptions(ownAccountIDs []string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft.Kind == models.TransferExternal {
		if w.draft.Recipient == nil {
			return nil
		}
		return w.draft.Recipient.CandidateAccountIDs()
	}

	options := make([]string, 0, len(ownAccountIDs))
	for _, id := range ownAccountIDs {
		if id != w.draft.SourceAccountID {
			options = append(options, id)
		}
	}
	return options
}

// Review validates the draft and moves to the confirmation step.
// Nothing is sent to the backend.
func (w *TransferWorkflow) Review() error {
	w.mu.Lock()
	if err := w.requireLocked(StateForm); err != nil {
		w.mu.Unlock()
		return err
	}

	amount, verr := w.checkDraftLocked()
	if verr != nil {
		w.mu.Unlock()
		return w.reject(verr)
	}

	w.amount = amount
	w.transitionLocked(context.Background(), StateConfirm)
	w.mu.Unlock()
	return nil
}

// Back returns from the confirmation step to the form with the draft intact.
func (w *TransferWorkflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireLocked(StateConfirm); err != nil {
		return err
	}
	w.transitionLocked(context.Background(), StateForm)
	return nil
}

// Confirm submits the reviewed transfer under a freshly minted idempotency key.
// On failure the workflow returns to the form with the draft preserved; a later
// attempt always uses a new key.
func (w *TransferWorkflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	if err := w.requireLocked(StateConfirm); err != nil {
		w.mu.Unlock()
		return err
	}

	key := w.keys.NewKey()
	w.lastKey = key
	draft := w.draft
	amount := w.amount
	req := dto.TransferRequest{
		FromAccount:    draft.SourceAccountID,
		ToAccount:      draft.DestinationAccountID,
		Amount:         json.Number(amount),
		IdempotencyKey: key,
	}
	w.transitionLocked(ctx, StateSubmitting)
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.LogTransferSubmitted(ctx, w.id, draft, amount, key)
	}

	start := time.Now()
	err := w.api.SubmitTransfer(ctx, req)
	elapsed := time.Since(start)

	w.mu.Lock()
	if w.state != StateSubmitting {
		w.mu.Unlock()
		w.logDropped(ctx, "submit_transfer")
		w.recordOutcome(draft.Kind, "dropped", elapsed)
		return ErrWorkflowClosed
	}

	if err != nil {
		w.transitionLocked(ctx, StateForm)
		w.mu.Unlock()

		if w.logger != nil {
			w.logger.LogTransferFailed(ctx, w.id, key, err.Error(), elapsed.Milliseconds())
		}
		w.recordOutcome(draft.Kind, "failed", elapsed)
		w.notifier.Push(errors.UserMessage(err), models.SeverityError)
		return err
	}

	w.transitionLocked(ctx, StateSuccess)
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.LogTransferCompleted(ctx, w.id, key, elapsed.Milliseconds())
	}
	w.recordOutcome(draft.Kind, "completed", elapsed)
	if parsed, perr := models.ParseAmount(amount); perr == nil {
		w.metrics.RecordGauge(metrics.TransferAmount, parsed.InexactFloat64(), nil)
	}
	w.notifier.Push(MsgTransferCompleted, models.SeveritySuccess)
	return nil
}

// Summary returns the rows shown on the confirmation and success screens.
func (w *TransferWorkflow) Summary() ([]SummaryRow, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateConfirm && w.state != StateSubmitting && w.state != StateSuccess {
		return nil, w.stateErrorLocked("summarize")
	}

	amount, err := models.ParseAmount(w.amount)
	if err != nil {
		return nil, err
	}

	to := MsgOwnAccountLabel
	if w.draft.Kind == models.TransferExternal && w.draft.Recipient != nil {
		to = w.draft.Recipient.DisplayName()
	}

	return []SummaryRow{
		{Label: "From", Value: models.ShortID(w.draft.SourceAccountID)},
		{Label: "To", Extra: to, Value: models.ShortID(w.draft.DestinationAccountID)},
		{Label: "Amount", Value: models.FormatUSD(amount)},
	}, nil
}

// SuccessMessage describes a completed transfer. It is empty before success.
func (w *TransferWorkflow) SuccessMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSuccess {
		return ""
	}
	if w.draft.Kind == models.TransferExternal && w.draft.Recipient != nil {
		return fmt.Sprintf(msgExternalSuccessFmt, w.draft.Recipient.DisplayName())
	}
	return MsgSelfTransferSuccess
}

// Dismiss discards the draft and closes the workflow for good. It is idempotent.
func (w *TransferWorkflow) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateClosed {
		return
	}
	w.transitionLocked(context.Background(), StateClosed)
	w.draft = models.NewTransferDraft()
	w.amount = ""
}

func (w *TransferWorkflow) edit(apply func(d *models.TransferDraft)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireLocked(StateForm); err != nil {
		return err
	}
	apply(&w.draft)
	return nil
}

// checkDraftLocked applies the form guards in display order and returns the
// normalized amount.
func (w *TransferWorkflow) checkDraftLocked() (string, *errors.ValidationError) {
	d := w.draft

	if err := validation.GetValidator().Amount(d.Amount); err != nil {
		return "", errors.NewValidation(errors.ValidationInvalidAmount, "amount")
	}
	amount, err := models.ParseAmount(d.Amount)
	if err != nil {
		return "", errors.NewValidation(errors.ValidationInvalidAmount, "amount")
	}

	if d.SourceAccountID == "" {
		return "", errors.NewValidation(errors.ValidationRequiredField, "fromAccount", MsgSourceRequired)
	}

	switch d.Kind {
	case models.TransferExternal:
		if d.Recipient == nil || d.DestinationAccountID == "" || !d.Recipient.HasCandidate(d.DestinationAccountID) {
			return "", errors.NewValidation(errors.TransferMissingRecipient, "toAccount")
		}
	default:
		if d.DestinationAccountID == "" {
			return "", errors.NewValidation(errors.ValidationRequiredField, "toAccount", MsgDestinationRequired)
		}
		if d.SourceAccountID == d.DestinationAccountID {
			return "", errors.NewValidation(errors.TransferSameAccount, "toAccount")
		}
	}

	return amount.String(), nil
}

func (w *TransferWorkflow) clearRecipientLocked(d *models.TransferDraft) {
	if d.Recipient != nil || d.Kind == models.TransferExternal {
		d.DestinationAccountID = ""
	}
	d.Recipient = nil
	w.resolveSeq++
}

func (w *TransferWorkflow) requireLocked(expected State) error {
	if w.state == StateClosed {
		return ErrWorkflowClosed
	}
	if w.state != expected {
		return fmt.Errorf("%w: expected %s, workflow is %s", ErrInvalidState, expected, w.state)
	}
	return nil
}

func (w *TransferWorkflow) stateErrorLocked(op string) error {
	if w.state == StateClosed {
		return ErrWorkflowClosed
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, w.state)
}

// transitionLocked moves to the next state. An edge outside the table is a programming error.
func (w *TransferWorkflow) transitionLocked(ctx context.Context, to State) {
	from := w.state
	if !canTransition(from, to) {
		panic(fmt.Sprintf("transfer workflow: illegal transition %s -> %s", from, to))
	}
	w.state = to
	if w.logger != nil {
		w.logger.LogStateChange(ctx, w.id, from, to)
	}
}

func (w *TransferWorkflow) reject(err *errors.ValidationError) error {
	w.notifier.Push(err.Message, models.SeverityError)
	return err
}

func (w *TransferWorkflow) logDropped(ctx context.Context, operation string) {
	if w.logger != nil {
		w.logger.LogResponseDropped(ctx, w.id, operation)
	}
}

func (w *TransferWorkflow) recordOutcome(kind models.TransferKind, status string, elapsed time.Duration) {
	w.metrics.IncrementCounter(metrics.TransferOutcome, map[string]string{"kind": string(kind), "status": status})
	w.metrics.RecordProcessingTime(metrics.WorkflowDuration, elapsed, nil)
}
