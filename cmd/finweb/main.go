package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finweb/internal/amqp"
	"finweb/internal/cli"
	"finweb/internal/financeapi"
	apphttp "finweb/internal/http"
	"finweb/internal/log"
	"finweb/internal/session"
	gsheet "finweb/internal/sheets/google"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger().WithComponent(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	store, err := session.OpenStore(cfg.SessionBackend, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open session store",
			log.FieldError, err,
			"backend", cfg.SessionBackend)
		os.Exit(1)
	}
	defer store.Close()

	sessions := session.NewManager(store, session.ManagerConfig{
		TTL:    cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
		Logger: logger,
	})

	finance := financeapi.New(cfg.APIBaseURL,
		financeapi.WithTimeout(cfg.APITimeout),
		financeapi.WithLogger(logger))

	deps := apphttp.Deps{
		Finance:  finance,
		Sessions: sessions,
		Logger:   logger,
	}

	// Activity events are optional; the frontend keeps working without a broker.
	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		publisher, err = amqp.NewClient(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, activity events disabled", log.FieldError, err)
		} else {
			deps.Publisher = publisher
			logger.Info("Publishing activity events", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("Activity events disabled - no AMQP_URL provided")
	}

	if cfg.ExportEnabled() {
		exporter, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		deps.Exporter = exporter
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	srv := apphttp.NewServer(cfg, deps)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := publisher.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
	})

	logger.Info("Starting finweb server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"session_backend", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
