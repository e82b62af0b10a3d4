package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ledgervault/internal/models"
	"ledgervault/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionRevoked     = errors.New("session has been revoked")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is not active")
	ErrNonZeroBalance     = errors.New("account balance must be zero before closing")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrInvalidAmount      = errors.New("invalid transfer amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrKeyReused          = errors.New("idempotency key reused with a different payload")
)

// Session is the result of a successful login.
type Session struct {
	Token  string
	Claims *models.SessionClaims
	User   *models.User
}

// TransferCommand is a validated transfer request.
type TransferCommand struct {
	UserID         uuid.UUID
	FromAccountID  uuid.UUID
	ToAccountID    uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey string
}

// TransferResult reports the stored transfer and whether it was a replay of an
// earlier request with the same idempotency key.
type TransferResult struct {
	Transfer *models.Transfer
	Replayed bool
}

type Deps struct {
	Users      repositories.UserRepositoryInterface
	Accounts   repositories.AccountRepositoryInterface
	Transfers  repositories.TransferRepositoryInterface
	Revoked    repositories.RevokedTokenRepositoryInterface
	Tokens     *TokenService
	BCryptCost int
	Logger     *slog.Logger
}

// Service implements the sandbox ledger behind the REST contract.
type Service struct {
	users      repositories.UserRepositoryInterface
	accounts   repositories.AccountRepositoryInterface
	transfers  repositories.TransferRepositoryInterface
	revoked    repositories.RevokedTokenRepositoryInterface
	tokens     *TokenService
	bcryptCost int
	logger     *slog.Logger
}

func NewService(deps Deps) *Service {
	cost := deps.BCryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:      deps.Users,
		accounts:   deps.Accounts,
		transfers:  deps.Transfers,
		revoked:    deps.Revoked,
		tokens:     deps.Tokens,
		bcryptCost: cost,
		logger:     deps.Logger,
	}
}

func (s *Service) Register(name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *Service) Login(email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("login failed", "email", user.Email)
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &Session{Token: token, Claims: claims, User: user}, nil
}

// Authenticate validates a session token and rejects revoked ones.
func (s *Service) Authenticate(token string) (*models.SessionClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}

// Logout revokes the session token so a replayed cookie is refused.
func (s *Service) Logout(claims *models.SessionClaims) error {
	if claims == nil {
		return nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidToken
	}

	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revoked.Revoke(&models.RevokedToken{
		JTI:       claims.ID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}

	if deleted, err := s.revoked.DeleteExpired(); err != nil {
		s.logger.Warn("failed to purge expired revoked tokens", "error", err)
	} else if deleted > 0 {
		s.logger.Debug("purged expired revoked tokens", "count", deleted)
	}

	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

func (s *Service) ListAccounts(userID uuid.UUID) ([]models.LedgerAccount, error) {
	return s.accounts.GetByUserID(userID)
}

func (s *Service) OpenAccount(userID uuid.UUID) (*models.LedgerAccount, error) {
	account := &models.LedgerAccount{UserID: userID}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}

	s.logger.Info("account opened", "user_id", userID, "account_id", account.ID)
	return account, nil
}

// ownedAccount hides accounts that belong to other users behind ErrAccountNotFound.
func (s *Service) ownedAccount(userID, accountID uuid.UUID) (*models.LedgerAccount, error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (s *Service) CloseAccount(userID, accountID uuid.UUID) error {
	if _, err := s.ownedAccount(userID, accountID); err != nil {
		return err
	}

	if _, err := s.accounts.Close(accountID); err != nil {
		switch {
		case errors.Is(err, models.ErrNonZeroBalance):
			return ErrNonZeroBalance
		case errors.Is(err, models.ErrAccountNotActive):
			return ErrAccountInactive
		case errors.Is(err, repositories.ErrAccountNotFound):
			return ErrAccountNotFound
		}
		return err
	}

	s.logger.Info("account closed", "user_id", userID, "account_id", accountID)
	return nil
}

func (s *Service) Balance(userID, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.ownedAccount(userID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Deposit credits one of the user's accounts. It only exists so sandbox
// accounts can be funded without seed data.
func (s *Service) Deposit(userID, accountID uuid.UUID, amount decimal.Decimal) (*models.LedgerAccount, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	if _, err := s.ownedAccount(userID, accountID); err != nil {
		return nil, err
	}

	account, err := s.accounts.Deposit(accountID, amount)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAccountNotActive):
			return nil, ErrAccountInactive
		case errors.Is(err, repositories.ErrAccountNotFound):
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	s.logger.Info("sandbox deposit", "user_id", userID, "account_id", accountID, "amount", amount.StringFixed(2))
	return account, nil
}

// ResolveRecipient looks a user up by email and returns their active account ids.
func (s *Service) ResolveRecipient(email string) (*models.User, []uuid.UUID, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, ErrRecipientNotFound
		}
		return nil, nil, err
	}

	ids, err := s.accounts.ActiveIDsByUserID(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, ids, nil
}

// Transfer executes a transfer at most once per idempotency key. A retry with
// the same key and payload replays the stored result; a different payload under
// a used key is refused.
func (s *Service) Transfer(cmd TransferCommand) (*TransferResult, error) {
	if cmd.FromAccountID == cmd.ToAccountID {
		return nil, ErrSameAccount
	}
	if !validAmount(cmd.Amount) {
		return nil, ErrInvalidAmount
	}

	if result, err := s.replay(cmd); result != nil || err != nil {
		return result, err
	}

	from, err := s.ownedAccount(cmd.UserID, cmd.FromAccountID)
	if err != nil {
		return nil, err
	}
	if !from.IsActive() {
		return nil, ErrAccountInactive
	}

	to, err := s.accounts.GetByID(cmd.ToAccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !to.IsActive() {
		return nil, ErrAccountInactive
	}

	transfer := &models.Transfer{
		UserID:         cmd.UserID,
		FromAccountID:  cmd.FromAccountID,
		ToAccountID:    cmd.ToAccountID,
		Amount:         cmd.Amount,
		IdempotencyKey: cmd.IdempotencyKey,
	}

	if err := s.transfers.Execute(transfer); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransferIdempotencyKeyExists):
			// lost a race with a concurrent request carrying the same key
			if result, replayErr := s.replay(cmd); result != nil || replayErr != nil {
				return result, replayErr
			}
			return nil, ErrKeyReused
		case errors.Is(err, models.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		case errors.Is(err, models.ErrAccountNotActive):
			return nil, ErrAccountInactive
		case errors.Is(err, repositories.ErrAccountNotFound):
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	s.logger.Info("transfer executed",
		"transfer_id", transfer.ID,
		"user_id", cmd.UserID,
		"from_account_id", cmd.FromAccountID,
		"to_account_id", cmd.ToAccountID,
		"amount", cmd.Amount.StringFixed(2),
		"idempotency_key", cmd.IdempotencyKey,
	)

	return &TransferResult{Transfer: transfer}, nil
}

// replay returns the stored result for a previously used key, nil when the key is new.
func (s *Service) replay(cmd TransferCommand) (*TransferResult, error) {
	existing, err := s.transfers.FindByIdempotencyKey(cmd.IdempotencyKey)
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if existing.UserID != cmd.UserID || !existing.SamePayload(cmd.FromAccountID, cmd.ToAccountID, cmd.Amount) {
		s.logger.Warn("idempotency key reused with a different payload",
			"idempotency_key", cmd.IdempotencyKey, "user_id", cmd.UserID)
		return nil, ErrKeyReused
	}

	s.logger.Info("transfer replayed", "transfer_id", existing.ID, "idempotency_key", cmd.IdempotencyKey)
	return &TransferResult{Transfer: existing, Replayed: true}, nil
}

// validAmount accepts positive amounts with at most two decimal places.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(2))
}
