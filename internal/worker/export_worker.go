// Package worker holds the background jobs run by finbot-worker:
// spreadsheet export of committed transactions and bill reminders.
package worker

import (
	"context"
	"errors"
	"fmt"

	"finbot/internal/amqp"
	"finbot/internal/core"
	applog "finbot/internal/log"
	"finbot/internal/sheets"
	"finbot/internal/storage"
)

// ExportWorker appends committed transactions to the spreadsheet.
type ExportWorker struct {
	repo     *storage.SQLiteRepository
	appender sheets.TransactionAppender
	logger   *applog.Logger
}

func NewExportWorker(repo *storage.SQLiteRepository, appender sheets.TransactionAppender, logger *applog.Logger) *ExportWorker {
	return &ExportWorker{
		repo:     repo,
		appender: appender,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleExportMessage loads the transaction named by the message and
// appends it to the sheet. A transaction deleted between publish and
// consume is skipped, not retried.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.TransactionExportMessage) error {
	q := w.repo.Queries()

	t, err := q.GetTransactionForOwner(ctx, msg.ID, msg.OwnerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.logger.WarnContext(ctx, "Transaction gone before export, skipping",
				applog.FieldTransactionID, msg.ID)
			return nil
		}
		return fmt.Errorf("load transaction %d: %w", msg.ID, err)
	}

	owner, err := q.GetUserByID(ctx, t.OwnerID)
	if err != nil {
		return fmt.Errorf("load owner %d: %w", t.OwnerID, err)
	}

	categoryName := ""
	if t.CategoryID != 0 {
		category, err := q.GetCategoryByID(ctx, t.CategoryID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("load category %d: %w", t.CategoryID, err)
		}
		categoryName = category.Name
	}

	row := sheets.TransactionRow{
		ID:          t.ID,
		Date:        t.Date.Format("02/01/2006 15:04"),
		Handle:      owner.Handle,
		Type:        string(t.Type),
		Description: t.Description,
		Category:    categoryName,
		Amount:      float64(t.Amount.Cents) / 100.0,
	}
	if err := w.appender.Append(ctx, row); err != nil {
		return fmt.Errorf("append transaction %d: %w", t.ID, err)
	}

	w.logger.InfoContext(ctx, "Transaction exported",
		applog.FieldTransactionID, t.ID,
		applog.FieldHandle, owner.Handle,
		applog.FieldAmountCents, t.Amount.Cents)
	return nil
}
