package main

import (
	"context"
	"errors"
	"time"

	"turni/internal/amqp"
	"turni/internal/cli"
	"turni/internal/log"
	"turni/internal/timesheet"
	gsheet "turni/internal/timesheet/google"
	"turni/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting turni-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Google Sheets is optional; without it the worker marks nothing synced
	// and the backlog stays put until a client is configured.
	var sheet timesheet.ShiftAppender
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			return
		}
		sheet = sheetsClient
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		logger.Info("Shutting down worker")
	})

	syncWorker := worker.NewSyncWorker(repo, sheet, cfg.SyncBatchSize)

	// On startup, export anything left pending by a previous run.
	logger.Info("Performing startup sync check")
	if err := syncWorker.ProcessPendingShifts(ctx); err != nil {
		logger.Error("Startup sync check failed", log.FieldError, err)
	}

	go func() {
		handler := func(msg *amqp.ShiftSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeShiftSync(ctx, handler); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}
	}()

	// Periodic sweep for shifts whose sync message was lost.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.ProcessPendingShifts(ctx); err != nil {
					logger.Error("Periodic sync failed", log.FieldError, err)
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
