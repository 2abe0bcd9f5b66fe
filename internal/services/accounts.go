package services

import (
	"context"
	"errors"
	"log/slog"

	"finbot/internal/core"
	"finbot/internal/storage"
)

// Accounts resolves a user's default transactional account, creating
// "Conta Principal" on first use. Implicit creation happens only here;
// additional accounts go through CreateAccount.
type Accounts struct {
	repo *storage.SQLiteRepository
}

func NewAccounts(repo *storage.SQLiteRepository) *Accounts {
	return &Accounts{repo: repo}
}

// Default returns the user's checking account, creating it with balance
// zero when the user has none. Concurrent first use converges on one
// row via the storage uniqueness constraint.
func (s *Accounts) Default(ctx context.Context, user core.User) (core.Account, error) {
	q := s.repo.Queries()

	acc, err := q.GetDefaultAccount(ctx, user.ID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Account{}, err
	}

	if err := q.InsertDefaultAccount(ctx, user.ID); err != nil {
		return core.Account{}, err
	}
	slog.InfoContext(ctx, "Created default account", "user_id", user.ID, "name", core.DefaultAccountName)

	return q.GetDefaultAccount(ctx, user.ID)
}

func (s *Accounts) Create(ctx context.Context, a core.Account) (core.Account, error) {
	return s.repo.Queries().CreateAccount(ctx, a)
}

func (s *Accounts) ListByOwner(ctx context.Context, user core.User) ([]core.Account, error) {
	return s.repo.Queries().ListAccountsByOwner(ctx, user.ID)
}
