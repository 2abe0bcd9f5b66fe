package services

import (
	"context"
	"log/slog"
	"time"

	"finbot/internal/core"
	"finbot/internal/storage"
)

// ExportPublisher notifies the export pipeline after a transaction
// commits. Implementations must be safe to call best effort.
type ExportPublisher interface {
	PublishTransactionExport(ctx context.Context, id, ownerID int64) error
}

// Ledger applies validated financial operations against account and
// transaction state. It is the only writer of Account.balance: every
// mutation pairs the transaction row change with the balance delta in
// one storage unit of work.
type Ledger struct {
	repo      *storage.SQLiteRepository
	publisher ExportPublisher // optional
}

func NewLedger(repo *storage.SQLiteRepository, publisher ExportPublisher) *Ledger {
	return &Ledger{repo: repo, publisher: publisher}
}

// Record creates a transaction and adjusts the account balance
// atomically. The category may be nil. Returns the persisted
// transaction and the post-update balance.
func (l *Ledger) Record(ctx context.Context, user core.User, account core.Account, category *core.Category, amount core.Money, description string, typ core.TransactionType) (core.Transaction, core.Money, error) {
	if err := amount.Validate(); err != nil {
		return core.Transaction{}, core.Money{}, err
	}
	if account.OwnerID != user.ID {
		return core.Transaction{}, core.Money{}, core.ErrForbidden
	}

	t := core.Transaction{
		OwnerID:     user.ID,
		AccountID:   account.ID,
		Amount:      amount,
		Type:        typ,
		Description: description,
		Date:        time.Now(),
	}
	if category != nil {
		t.CategoryID = category.ID
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, core.Money{}, err
	}

	var balance int64
	err := l.repo.InTx(ctx, func(q *storage.Queries) error {
		created, err := q.CreateTransaction(ctx, t)
		if err != nil {
			return err
		}
		t = created
		balance, err = q.AdjustAccountBalance(ctx, account.ID, typ.Delta(amount))
		return err
	})
	if err != nil {
		return core.Transaction{}, core.Money{}, err
	}

	slog.InfoContext(ctx, "Recorded transaction",
		"transaction_id", t.ID,
		"user_id", user.ID,
		"type", string(typ),
		"amount_cents", amount.Cents,
		"balance_cents", balance)

	if l.publisher != nil {
		if err := l.publisher.PublishTransactionExport(ctx, t.ID, t.OwnerID); err != nil {
			// The ledger write already committed; export catches up later.
			slog.ErrorContext(ctx, "Failed to publish transaction export",
				"transaction_id", t.ID, "error", err)
		}
	}

	return t, core.Money{Cents: balance}, nil
}

// Delete removes a transaction owned by the user, reversing its balance
// delta in the same unit of work. Returns the post-update balance.
func (l *Ledger) Delete(ctx context.Context, user core.User, transactionID int64) (core.Money, error) {
	var balance int64
	err := l.repo.InTx(ctx, func(q *storage.Queries) error {
		t, err := q.GetTransactionForOwner(ctx, transactionID, user.ID)
		if err != nil {
			return err
		}
		balance, err = q.AdjustAccountBalance(ctx, t.AccountID, -t.Type.Delta(t.Amount))
		if err != nil {
			return err
		}
		return q.DeleteTransaction(ctx, transactionID)
	})
	if err != nil {
		return core.Money{}, err
	}

	slog.InfoContext(ctx, "Deleted transaction",
		"transaction_id", transactionID,
		"user_id", user.ID,
		"balance_cents", balance)

	return core.Money{Cents: balance}, nil
}
