package main

import (
	"context"
	"os"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/session"
	"budget/internal/sheets"
	gsheet "budget/internal/sheets/google"
	"budget/internal/shell"
)

func main() {
	// Load .env file for local development
	cli.LoadEnvFile()

	logger := cli.SetupLogger("WARN", "text")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := cli.EnsureStorageDir(logger, cfg.StorageDir); err != nil {
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize session backend", log.FieldBackend, backendCfg.Type, log.FieldError, err)
		os.Exit(1)
	}

	// CSV export always goes to the storage directory, whatever the backend.
	csvStore := session.NewFileStore(cfg.StorageDir)
	csvStore.JSONName = cfg.JSONFile
	csvStore.CSVName = cfg.CSVFile

	tracker := services.NewTracker(result.Backend, csvStore, newPublisher(ctx, cfg, logger), newExporter(ctx, cfg, logger), logger)
	tracker.OnClose(result.Close)
	defer func() {
		if err := tracker.Close(); err != nil {
			logger.Error("Shutdown cleanup failed", log.FieldError, err)
		}
	}()

	logger.Info("Starting budget tracker", log.FieldOperation, log.OpStartup, log.FieldBackend, backendCfg.Type, log.FieldPath, cfg.StorageDir)
	if err := shell.New(tracker, os.Stdin, os.Stdout, logger).Run(ctx); err != nil {
		logger.Error("Shell stopped", log.FieldError, err)
	}
}

// newPublisher connects to the broker when AMQP is configured. A broker that
// cannot be reached only disables publishing.
func newPublisher(ctx context.Context, cfg *config.Config, logger *log.Logger) services.ReportPublisher {
	if !cfg.AMQPEnabled() {
		logger.Debug("Report publishing disabled - no AMQP_URL provided")
		return nil
	}
	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, amqp.Options{Logger: logger})
	if err != nil {
		logger.Warn("Report publishing unavailable", log.FieldExchange, cfg.AMQPExchange, log.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized", log.FieldExchange, cfg.AMQPExchange, log.FieldRoutingKey, cfg.AMQPRoutingKey)
	return client
}

// newExporter builds the Google Sheets client when a spreadsheet is configured.
func newExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) sheets.TransactionExporter {
	if !cfg.SheetsEnabled() {
		logger.Debug("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil
	}
	client, err := gsheet.NewFromConfig(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Warn("Google Sheets sync unavailable", log.FieldSpreadsheet, cfg.GoogleSpreadsheetID, log.FieldError, err)
		return nil
	}
	logger.Info("Google Sheets client initialized", log.FieldSpreadsheet, cfg.GoogleSpreadsheetID)
	return client
}
