package ledger

import (
	"errors"
	"fmt"

	"ledgervault/internal/models"
	"ledgervault/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	DemoEmail    = "guest@example.com"
	DemoPassword = "123456"
	FriendEmail  = "friend@example.com"
)

type seedUser struct {
	name     string
	email    string
	balances []string
}

var demoUsers = []seedUser{
	{name: "Guest User", email: DemoEmail, balances: []string{"1500.00", "250.00"}},
	{name: "Alex Friend", email: FriendEmail, balances: []string{"100.00"}},
}

// SeedDemoData creates the demo login and a transfer counterpart. Users that
// already exist are left untouched.
func (s *Service) SeedDemoData() error {
	for _, seed := range demoUsers {
		if _, err := s.users.GetByEmail(seed.email); err == nil {
			continue
		} else if !errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("failed to look up seed user %s: %w", seed.email, err)
		}

		user, err := s.Register(seed.name, seed.email, DemoPassword)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", seed.email, err)
		}

		for _, balance := range seed.balances {
			account := &models.LedgerAccount{
				UserID:  user.ID,
				Balance: decimal.RequireFromString(balance),
			}
			if err := s.accounts.Create(account); err != nil {
				return fmt.Errorf("failed to seed account for %s: %w", seed.email, err)
			}
		}

		s.logger.Info("seeded demo user", "email", seed.email, "accounts", len(seed.balances))
	}

	return nil
}
