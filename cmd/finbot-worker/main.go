package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finbot/internal/amqp"
	"finbot/internal/cli"
	applog "finbot/internal/log"
	gsheet "finbot/internal/sheets/google"
	"finbot/internal/whatsapp"
	"finbot/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	slogger := cli.SetupLogger()

	slogger.Info("Starting finbot-worker")

	cfg := cli.LoadAndValidateConfig(slogger)

	repo := cli.InitSQLite(slogger, cfg.SQLiteDBPath)
	defer repo.Close()

	logger := applog.New(applog.DefaultConfig())

	// Google Sheets export is optional.
	var exportWorker *worker.ExportWorker
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			slogger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exportWorker = worker.NewExportWorker(repo, sheetsClient, logger)
		slogger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		slogger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	sender := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppAPIKey)
	reminder := worker.NewBillReminder(repo, sender, logger)

	ctx, done := cli.GracefulShutdown(slogger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	if exportWorker != nil && cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slogger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeTransactionExports(gctx, func(msg *amqp.TransactionExportMessage) error {
				return exportWorker.HandleExportMessage(gctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		slogger.Info("Skipping AMQP consumption - export not configured")
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReminderInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := reminder.Run(gctx); err != nil {
					slogger.Error("Bill reminder pass failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		slogger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	slogger.Info("Worker stopped gracefully")
}
