// Package services implements the ledger's business operations on top of
// the storage layer: resolvers, the ledger engine, summaries and the
// command dispatcher.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finbot/internal/core"
	"finbot/internal/storage"
)

// Users resolves chat senders to persisted users, creating one on first
// contact. Users are never hard-deleted, only deactivated.
type Users struct {
	repo *storage.SQLiteRepository
}

func NewUsers(repo *storage.SQLiteRepository) *Users {
	return &Users{repo: repo}
}

func (s *Users) GetOrCreate(ctx context.Context, handle, name string) (core.User, error) {
	q := s.repo.Queries()

	u, err := q.GetUserByHandle(ctx, handle)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, err
	}

	u, err = q.CreateUser(ctx, handle, name)
	if err != nil {
		// A concurrent first contact may have won the unique handle.
		if existing, getErr := q.GetUserByHandle(ctx, handle); getErr == nil {
			return existing, nil
		}
		return core.User{}, fmt.Errorf("register user %s: %w", handle, err)
	}

	slog.InfoContext(ctx, "Registered new user", "user_id", u.ID, "handle", handle)
	return u, nil
}

func (s *Users) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Queries().DeactivateUser(ctx, id)
}
