package repositories

import (
	"testing"

	"ledgervault/internal/database"
	"ledgervault/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestTransferRepository(t *testing.T) {
	suite.Run(t, new(TransferRepositorySuite))
}

type TransferRepositorySuite struct {
	suite.Suite
	db       *database.DB
	repo     TransferRepositoryInterface
	accounts AccountRepositoryInterface
	user     *models.User
	from     *models.LedgerAccount
	to       *models.LedgerAccount
}

func (s *TransferRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransferRepository(s.db.DB)
	s.accounts = NewAccountRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "sender@example.com")
	s.from = database.CreateTestAccount(s.T(), s.db, s.user, "100.00")
	s.to = database.CreateTestAccount(s.T(), s.db, s.user, "0")
}

func (s *TransferRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransferRepositorySuite) transfer(amount string) *models.Transfer {
	return &models.Transfer{
		UserID:         s.user.ID,
		FromAccountID:  s.from.ID,
		ToAccountID:    s.to.ID,
		Amount:         decimal.RequireFromString(amount),
		IdempotencyKey: uuid.NewString(),
	}
}

func (s *TransferRepositorySuite) balance(id uuid.UUID) decimal.Decimal {
	account, err := s.accounts.GetByID(id)
	s.Require().NoError(err)
	return account.Balance
}

func (s *TransferRepositorySuite) TestExecute_MovesFunds() {
	transfer := s.transfer("40.25")

	s.Require().NoError(s.repo.Execute(transfer))

	s.True(s.balance(s.from.ID).Equal(decimal.RequireFromString("59.75")))
	s.True(s.balance(s.to.ID).Equal(decimal.RequireFromString("40.25")))

	found, err := s.repo.FindByIdempotencyKey(transfer.IdempotencyKey)
	s.Require().NoError(err)
	s.Equal(transfer.ID, found.ID)
	s.Equal(models.TransferStatusCompleted, found.Status)
}

func (s *TransferRepositorySuite) TestExecute_DuplicateKeyDoesNotMoveFunds() {
	first := s.transfer("10.00")
	s.Require().NoError(s.repo.Execute(first))

	second := s.transfer("10.00")
	second.IdempotencyKey = first.IdempotencyKey

	err := s.repo.Execute(second)
	s.ErrorIs(err, ErrTransferIdempotencyKeyExists)
	s.True(s.balance(s.from.ID).Equal(decimal.RequireFromString("90.00")))
}

func (s *TransferRepositorySuite) TestExecute_InsufficientFundsRollsBack() {
	transfer := s.transfer("500.00")

	err := s.repo.Execute(transfer)
	s.ErrorIs(err, models.ErrInsufficientFunds)

	_, err = s.repo.FindByIdempotencyKey(transfer.IdempotencyKey)
	s.ErrorIs(err, ErrTransferNotFound)
	s.True(s.balance(s.from.ID).Equal(decimal.RequireFromString("100.00")))
}

func (s *TransferRepositorySuite) TestExecute_ClosedDestination() {
	_, err := s.accounts.Close(s.to.ID)
	s.Require().NoError(err)

	err = s.repo.Execute(s.transfer("1.00"))
	s.ErrorIs(err, models.ErrAccountNotActive)
	s.True(s.balance(s.from.ID).Equal(decimal.RequireFromString("100.00")))
}

func (s *TransferRepositorySuite) TestExecute_UnknownAccount() {
	transfer := s.transfer("1.00")
	transfer.ToAccountID = uuid.New()

	s.ErrorIs(s.repo.Execute(transfer), ErrAccountNotFound)
}

func (s *TransferRepositorySuite) TestExecute_Nil() {
	s.Error(s.repo.Execute(nil))
}

func (s *TransferRepositorySuite) TestLockOrderIsIndependentOfDirection() {
	low := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	high := uuid.MustParse("ffffffff-0000-4000-8000-000000000001")

	first, second := lockOrder(low, high)
	s.Equal([]uuid.UUID{low, high}, []uuid.UUID{first, second})

	first, second = lockOrder(high, low)
	s.Equal([]uuid.UUID{low, high}, []uuid.UUID{first, second})
}

func (s *TransferRepositorySuite) TestLockPairKeepsRoles() {
	for _, ids := range [][2]uuid.UUID{{s.from.ID, s.to.ID}, {s.to.ID, s.from.ID}} {
		from, to, err := lockPair(s.db.DB, ids[0], ids[1])
		s.Require().NoError(err)
		s.Equal(ids[0], from.ID)
		s.Equal(ids[1], to.ID)
	}
}

func (s *TransferRepositorySuite) TestExecute_OppositeDirections() {
	s.Require().NoError(s.repo.Execute(s.transfer("30.00")))

	back := s.transfer("10.00")
	back.FromAccountID, back.ToAccountID = s.to.ID, s.from.ID
	s.Require().NoError(s.repo.Execute(back))

	s.True(s.balance(s.from.ID).Equal(decimal.RequireFromString("80.00")))
	s.True(s.balance(s.to.ID).Equal(decimal.RequireFromString("20.00")))
}
