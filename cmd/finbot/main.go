package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finbot/internal/amqp"
	"finbot/internal/cache"
	"finbot/internal/cli"
	apphttp "finbot/internal/http"
	"finbot/internal/services"
	"finbot/internal/whatsapp"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting finbot")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP publisher is optional; without it transactions simply are not
	// exported to the spreadsheet.
	var publisher services.ExportPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	sender := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppAPIKey)

	users := services.NewUsers(repo)
	accounts := services.NewAccounts(repo)
	categories := services.NewCategories(repo)
	ledger := services.NewLedger(repo, publisher)
	summary := services.NewSummary(repo)
	replies := cache.NewLRU[string](500, 5*time.Minute)
	dispatcher := services.NewDispatcher(users, accounts, categories, ledger, summary, replies)

	srv := apphttp.NewServer(":"+cfg.Port, dispatcher, sender)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finbot server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
