package worker

import (
	"context"
	"fmt"
	"time"

	"finbot/internal/core"
	applog "finbot/internal/log"
	"finbot/internal/storage"
)

// timeNow is overridable in tests.
var timeNow = time.Now

// ReminderSender delivers a reminder text to a user.
type ReminderSender interface {
	SendMessage(ctx context.Context, to, text string) error
}

// BillReminder messages users about unpaid bills that have come due.
// Each bill is reminded at most once.
type BillReminder struct {
	repo   *storage.SQLiteRepository
	sender ReminderSender
	logger *applog.Logger
}

func NewBillReminder(repo *storage.SQLiteRepository, sender ReminderSender, logger *applog.Logger) *BillReminder {
	return &BillReminder{
		repo:   repo,
		sender: sender,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Run performs one reminder pass. A failed send leaves the bill
// unreminded so the next pass retries it.
func (r *BillReminder) Run(ctx context.Context) error {
	q := r.repo.Queries()

	due, err := q.ListDueUnremindedBills(ctx, timeNow())
	if err != nil {
		return fmt.Errorf("list due bills: %w", err)
	}

	for _, d := range due {
		text := fmt.Sprintf("📅 Lembrete de conta!\n\n%s: %s\nVencimento: %s",
			d.Bill.Description,
			core.FormatReais(d.Bill.Amount),
			d.Bill.DueDate.Format("02/01/2006"))

		if err := r.sender.SendMessage(ctx, d.OwnerHandle, text); err != nil {
			r.logger.ErrorContext(ctx, "Failed to send bill reminder",
				applog.FieldError, err,
				applog.FieldHandle, d.OwnerHandle)
			continue
		}

		if err := q.MarkBillReminded(ctx, d.Bill.ID); err != nil {
			r.logger.ErrorContext(ctx, "Failed to mark bill reminded",
				applog.FieldError, err)
			continue
		}

		r.logger.InfoContext(ctx, "Bill reminder sent",
			applog.FieldHandle, d.OwnerHandle,
			applog.FieldAmountCents, d.Bill.Amount.Cents)
	}
	return nil
}
