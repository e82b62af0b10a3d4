package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"ledgervault/internal/apiclient/apiclient_mocks"
	"ledgervault/internal/dto"
	apperrors "ledgervault/internal/errors"
	"ledgervault/internal/idempotency"
	"ledgervault/internal/logging"
	"ledgervault/internal/models"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

// sequenceKeys hands out predictable keys so tests can assert which one was sent.
type sequenceKeys struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceKeys) NewKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", g.n)
}

func TestTransferWorkflow(t *testing.T) {
	suite.Run(t, new(TransferWorkflowSuite))
}

type TransferWorkflowSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	api      *apiclient_mocks.MockBankingAPI
	keys     *sequenceKeys
	notifier *Notifier
	workflow *TransferWorkflow
	ctx      context.Context
}

func (s *TransferWorkflowSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.api = apiclient_mocks.NewMockBankingAPI(s.ctrl)
	s.keys = &sequenceKeys{}
	s.notifier = NewNotifier(0, nil)
	s.workflow = NewTransferWorkflow(s.api, s.keys, s.notifier, NewWorkflowLogger(logging.Discard()), nil)
	s.ctx = context.Background()
}

func (s *TransferWorkflowSuite) TearDownTest() {
	s.notifier.Close()
	s.ctrl.Finish()
}

func (s *TransferWorkflowSuite) lastToast() models.Toast {
	toasts := s.notifier.Active()
	s.Require().NotEmpty(toasts)
	return toasts[len(toasts)-1]
}

func (s *TransferWorkflowSuite) fillSelf(from, to, amount string) {
	s.Require().NoError(s.workflow.SetKind(models.TransferSelf))
	s.Require().NoError(s.workflow.SetSource(from))
	s.Require().NoError(s.workflow.SetDestination(to))
	s.Require().NoError(s.workflow.SetAmount(amount))
}

func (s *TransferWorkflowSuite) resolve(email, name string, ids ...string) {
	s.api.EXPECT().ResolveRecipient(gomock.Any(), email).Return(models.NewRecipient(name, ids), nil)
	s.Require().NoError(s.workflow.ResolveRecipient(s.ctx, email))
}

func (s *TransferWorkflowSuite) TestStartsInForm() {
	s.Equal(StateForm, s.workflow.State())
	s.Equal(models.TransferSelf, s.workflow.Draft().Kind)
	s.Empty(s.workflow.LastKey())
}

func (s *TransferWorkflowSuite) TestReviewRejectsInvalidAmounts() {
	for _, amount := range []string{"", "0", "0.00", "-5", "abc", "1e3", "NaN", "Infinity", "1,000", "0x10", "1.234"} {
		s.Run(amount, func() {
			s.SetupTest()
			s.fillSelf("acc-a", "acc-b", amount)

			err := s.workflow.Review()

			s.Require().Error(err)
			s.True(apperrors.IsValidation(err))
			s.Equal("Please enter a valid amount greater than $0.00.", err.Error())
			s.Equal(StateForm, s.workflow.State())
			s.Equal(models.SeverityError, s.lastToast().Severity)
		})
	}
}

func (s *TransferWorkflowSuite) TestReviewRejectsSameAccount() {
	s.fillSelf("acc-a", "acc-a", "10")

	err := s.workflow.Review()

	s.Require().Error(err)
	s.Equal("Cannot transfer to the same account.", err.Error())
	s.Equal(StateForm, s.workflow.State())
}

func (s *TransferWorkflowSuite) TestReviewGuardOrder() {
	s.Run("amount before source", func() {
		s.SetupTest()
		s.Require().NoError(s.workflow.SetAmount("0"))
		s.EqualError(s.workflow.Review(), "Please enter a valid amount greater than $0.00.")
	})

	s.Run("missing source", func() {
		s.SetupTest()
		s.Require().NoError(s.workflow.SetAmount("5"))
		s.EqualError(s.workflow.Review(), MsgSourceRequired)
	})

	s.Run("missing self destination", func() {
		s.SetupTest()
		s.fillSelf("acc-a", "", "5")
		s.EqualError(s.workflow.Review(), MsgDestinationRequired)
	})

	s.Run("external without recipient", func() {
		s.SetupTest()
		s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
		s.Require().NoError(s.workflow.SetSource("acc-a"))
		s.Require().NoError(s.workflow.SetAmount("5"))
		s.EqualError(s.workflow.Review(), "Please verify the recipient's email and select an account.")
	})

	s.Run("external destination outside candidates", func() {
		s.SetupTest()
		s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
		s.resolve("friend@example.com", "Friend", "fr-1")
		s.Require().NoError(s.workflow.SetSource("acc-a"))
		s.Require().NoError(s.workflow.SetDestination("acc-b"))
		s.Require().NoError(s.workflow.SetAmount("5"))
		s.EqualError(s.workflow.Review(), "Please verify the recipient's email and select an account.")
	})
}

func (s *TransferWorkflowSuite) TestSetKindClearsDestination() {
	for _, kind := range []models.TransferKind{models.TransferSelf, models.TransferExternal} {
		s.Require().NoError(s.workflow.SetDestination("acc-z"))
		s.Require().NoError(s.workflow.SetKind(kind))
		s.Empty(s.workflow.Draft().DestinationAccountID)
	}

	s.Error(s.workflow.SetKind("wire"))
}

func (s *TransferWorkflowSuite) TestSelfTransferHappyPath() {
	s.fillSelf("aaaa-1111-acc00001", "bbbb-2222-acc00002", "25.50")
	s.Require().NoError(s.workflow.Review())
	s.Equal(StateConfirm, s.workflow.State())

	rows, err := s.workflow.Summary()
	s.Require().NoError(err)
	s.Equal([]SummaryRow{
		{Label: "From", Value: "···ACC00001"},
		{Label: "To", Extra: "My Account", Value: "···ACC00002"},
		{Label: "Amount", Value: "$25.50"},
	}, rows)

	s.api.EXPECT().SubmitTransfer(gomock.Any(), dto.TransferRequest{
		FromAccount:    "aaaa-1111-acc00001",
		ToAccount:      "bbbb-2222-acc00002",
		Amount:         json.Number("25.5"),
		IdempotencyKey: "00000000-0000-4000-8000-000000000001",
	}).Return(nil)

	s.Require().NoError(s.workflow.Confirm(s.ctx))
	s.Equal(StateSuccess, s.workflow.State())
	s.Equal(MsgTransferCompleted, s.lastToast().Message)
	s.Equal(models.SeveritySuccess, s.lastToast().Severity)
	s.Equal(MsgSelfTransferSuccess, s.workflow.SuccessMessage())
}

func (s *TransferWorkflowSuite) TestExternalTransferHappyPath() {
	s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
	s.resolve("friend@example.com", "Jordan", "fr-1", "fr-2")
	s.Equal("fr-1", s.workflow.Draft().DestinationAccountID)
	s.Equal(MsgRecipientVerified, s.lastToast().Message)

	s.Require().NoError(s.workflow.SetDestination("fr-2"))
	s.Require().NoError(s.workflow.SetSource("acc-a"))
	s.Require().NoError(s.workflow.SetAmount("1000"))
	s.Require().NoError(s.workflow.Review())

	rows, err := s.workflow.Summary()
	s.Require().NoError(err)
	s.Equal("Jordan", rows[1].Extra)
	s.Equal("$1,000.00", rows[2].Value)

	s.api.EXPECT().SubmitTransfer(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req dto.TransferRequest) error {
		s.Equal("fr-2", req.ToAccount)
		s.Equal(json.Number("1000"), req.Amount)
		return nil
	})

	s.Require().NoError(s.workflow.Confirm(s.ctx))
	s.Equal("Your funds have been securely transferred to Jordan.", s.workflow.SuccessMessage())
}

func (s *TransferWorkflowSuite) TestServerErrorRevertsToForm() {
	s.fillSelf("acc-a", "acc-b", "25.50")
	s.Require().NoError(s.workflow.Review())

	s.api.EXPECT().SubmitTransfer(gomock.Any(), gomock.Any()).Return(apperrors.NewRequestError(422, "insufficient funds"))

	err := s.workflow.Confirm(s.ctx)

	s.Require().Error(err)
	s.Equal(StateForm, s.workflow.State())
	s.Equal("insufficient funds", s.lastToast().Message)
	s.Equal(models.SeverityError, s.lastToast().Severity)

	draft := s.workflow.Draft()
	s.Equal("acc-a", draft.SourceAccountID)
	s.Equal("acc-b", draft.DestinationAccountID)
	s.Equal("25.50", draft.Amount)
}

func (s *TransferWorkflowSuite) TestResubmissionUsesFreshKey() {
	s.fillSelf("acc-a", "acc-b", "5")
	var sent []string
	s.api.EXPECT().SubmitTransfer(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req dto.TransferRequest) error {
		sent = append(sent, req.IdempotencyKey)
		if len(sent) == 1 {
			return apperrors.NewRequestError(503, "")
		}
		return nil
	}).Times(2)

	s.Require().NoError(s.workflow.Review())
	s.Error(s.workflow.Confirm(s.ctx))
	s.Equal("Error 503", s.lastToast().Message)
	s.Equal(sent[0], s.workflow.LastKey())

	s.Require().NoError(s.workflow.Review())
	s.Require().NoError(s.workflow.Confirm(s.ctx))

	s.Require().Len(sent, 2)
	s.NotEqual(sent[0], sent[1])
	s.Equal(sent[1], s.workflow.LastKey())
}

func (s *TransferWorkflowSuite) TestNetworkErrorRevertsWithGenericMessage() {
	s.fillSelf("acc-a", "acc-b", "5")
	s.Require().NoError(s.workflow.Review())

	s.api.EXPECT().SubmitTransfer(gomock.Any(), gomock.Any()).Return(&apperrors.NetworkError{Method: "POST", Path: "/transactions/", Err: context.DeadlineExceeded})

	s.Error(s.workflow.Confirm(s.ctx))
	s.Equal(StateForm, s.workflow.State())
	s.Equal(apperrors.GetErrorMessage(apperrors.ClientNetworkError), s.lastToast().Message)
}

func (s *TransferWorkflowSuite) TestBackKeepsDraft() {
	s.fillSelf("acc-a", "acc-b", "7")
	s.Require().NoError(s.workflow.Review())
	s.Require().NoError(s.workflow.Back())

	s.Equal(StateForm, s.workflow.State())
	s.Equal("7", s.workflow.Draft().Amount)
	s.Empty(s.workflow.LastKey())
}

func (s *TransferWorkflowSuite) TestOperationsOutsideTheirState() {
	s.ErrorIs(s.workflow.Back(), ErrInvalidState)
	s.ErrorIs(s.workflow.Confirm(s.ctx), ErrInvalidState)
	_, err := s.workflow.Summary()
	s.ErrorIs(err, ErrInvalidState)
	s.Empty(s.workflow.SuccessMessage())

	s.fillSelf("acc-a", "acc-b", "7")
	s.Require().NoError(s.workflow.Review())
	s.ErrorIs(s.workflow.SetAmount("8"), ErrInvalidState)
	s.ErrorIs(s.workflow.Review(), ErrInvalidState)
}

func (s *TransferWorkflowSuite) TestResolveRecipientValidation() {
	s.Require().NoError(s.workflow.SetKind(models.TransferExternal))

	s.EqualError(s.workflow.ResolveRecipient(s.ctx, ""), MsgEmailRequired)
	s.EqualError(s.workflow.ResolveRecipient(s.ctx, "not-an-email"), MsgEmailFormat)
	s.EqualError(s.workflow.ResolveRecipient(s.ctx, "a@b"), MsgEmailFormat)
	s.Len(s.notifier.Active(), 3)
}

func (s *TransferWorkflowSuite) TestResolveRecipientIsIdempotent() {
	s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
	s.resolve("friend@example.com", "Friend", "fr-1", "fr-2")
	first := s.workflow.Draft().Recipient.CandidateAccountIDs()

	s.resolve("friend@example.com", "Friend", "fr-1", "fr-2")
	second := s.workflow.Draft().Recipient.CandidateAccountIDs()

	s.Equal(first, second)
	s.Equal([]string{"fr-1", "fr-2"}, s.workflow.DestinationOptions(nil))
}

func (s *TransferWorkflowSuite) TestResolveRecipientFailureClearsDestination() {
	s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
	s.resolve("friend@example.com", "Friend", "fr-1")

	s.api.EXPECT().ResolveRecipient(gomock.Any(), "ghost@example.com").Return(nil, apperrors.NewRequestError(404, "User not found"))
	err := s.workflow.ResolveRecipient(s.ctx, "ghost@example.com")

	s.Require().Error(err)
	s.Equal("User not found", s.lastToast().Message)
	s.Nil(s.workflow.Draft().Recipient)
	s.Empty(s.workflow.Draft().DestinationAccountID)
}

func (s *TransferWorkflowSuite) TestResolveRecipientRequiresExternalKind() {
	s.fillSelf("acc-a", "acc-b", "10")

	err := s.workflow.ResolveRecipient(s.ctx, "friend@example.com")

	s.Require().True(apperrors.IsValidation(err))
	s.Equal(MsgRecipientSelfKind, s.lastToast().Message)
	s.Nil(s.workflow.Draft().Recipient)
	s.Empty(s.workflow.Draft().RecipientEmail)
	s.Equal("acc-b", s.workflow.Draft().DestinationAccountID)
}

func (s *TransferWorkflowSuite) TestResolveRecipientWithoutAccounts() {
	s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
	s.api.EXPECT().ResolveRecipient(gomock.Any(), "empty@example.com").Return(models.NewRecipient("Empty", nil), nil)

	s.EqualError(s.workflow.ResolveRecipient(s.ctx, "empty@example.com"), MsgRecipientNoAccounts)
	s.Nil(s.workflow.Draft().Recipient)
}

func (s *TransferWorkflowSuite) TestEditingEmailClearsResolution() {
	s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
	s.resolve("friend@example.com", "Friend", "fr-1")

	s.Require().NoError(s.workflow.SetRecipientEmail("friend@example.co"))

	s.Nil(s.workflow.Draft().Recipient)
	s.Empty(s.workflow.Draft().DestinationAccountID)
}

func (s *TransferWorkflowSuite) TestStaleResolutionDropped() {
	s.Require().NoError(s.workflow.SetKind(models.TransferExternal))
	s.api.EXPECT().ResolveRecipient(gomock.Any(), "friend@example.com").DoAndReturn(func(context.Context, string) (*models.Recipient, error) {
		s.Require().NoError(s.workflow.SetRecipientEmail("other@example.com"))
		return models.NewRecipient("Friend", []string{"fr-1"}), nil
	})

	s.ErrorIs(s.workflow.ResolveRecipient(s.ctx, "friend@example.com"), ErrStaleResolution)
	s.Nil(s.workflow.Draft().Recipient)
	s.Empty(s.notifier.Active())
}

func (s *TransferWorkflowSuite) TestDestinationOptionsExcludeSource() {
	s.Require().NoError(s.workflow.SetSource("acc-b"))
	s.Equal([]string{"acc-a", "acc-c"}, s.workflow.DestinationOptions([]string{"acc-a", "acc-b", "acc-c"}))
}

func (s *TransferWorkflowSuite) TestDismissIsTerminal() {
	s.fillSelf("acc-a", "acc-b", "5")
	s.workflow.Dismiss()
	s.workflow.Dismiss()

	s.Equal(StateClosed, s.workflow.State())
	s.Empty(s.workflow.Draft().SourceAccountID)
	s.ErrorIs(s.workflow.SetAmount("1"), ErrWorkflowClosed)
	s.ErrorIs(s.workflow.Review(), ErrWorkflowClosed)
	s.ErrorIs(s.workflow.ResolveRecipient(s.ctx, "friend@example.com"), ErrWorkflowClosed)
	_, err := s.workflow.Summary()
	s.ErrorIs(err, ErrWorkflowClosed)
}

func (s *TransferWorkflowSuite) TestResponseAfterDismissIsDropped() {
	s.fillSelf("acc-a", "acc-b", "5")
	s.Require().NoError(s.workflow.Review())

	s.api.EXPECT().SubmitTransfer(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, dto.TransferRequest) error {
		s.workflow.Dismiss()
		return apperrors.NewRequestError(500, "boom")
	})

	s.ErrorIs(s.workflow.Confirm(s.ctx), ErrWorkflowClosed)
	s.Equal(StateClosed, s.workflow.State())
	s.Empty(s.notifier.Active())
}

func (s *TransferWorkflowSuite) TestDefaultGeneratorMintsCanonicalKeys() {
	workflow := NewTransferWorkflow(s.api, nil, s.notifier, nil, nil)
	workflow.SetSource("acc-a")
	workflow.SetDestination("acc-b")
	workflow.SetAmount("1")
	s.Require().NoError(workflow.Review())

	s.api.EXPECT().SubmitTransfer(gomock.Any(), gomock.Any()).Return(nil)
	s.Require().NoError(workflow.Confirm(s.ctx))
	s.True(idempotency.IsValidKey(workflow.LastKey()))
}

func (s *TransferWorkflowSuite) TestTransitionTableRejectsIllegalEdges() {
	s.True(canTransition(StateForm, StateConfirm))
	s.True(canTransition(StateSubmitting, StateForm))
	s.False(canTransition(StateForm, StateSubmitting))
	s.False(canTransition(StateSuccess, StateForm))
	s.False(canTransition(StateClosed, StateForm))

	s.Panics(func() {
		s.workflow.mu.Lock()
		defer s.workflow.mu.Unlock()
		s.workflow.transitionLocked(s.ctx, StateSuccess)
	})
}

func (s *TransferWorkflowSuite) TestStateString() {
	s.Equal("form", StateForm.String())
	s.Equal("confirm", StateConfirm.String())
	s.Equal("submitting", StateSubmitting.String())
	s.Equal("success", StateSuccess.String())
	s.Equal("closed", StateClosed.String())
	s.Equal("state(9)", State(9).String())
}
