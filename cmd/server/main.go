package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"opnamecore/internal/config"
	"opnamecore/internal/repository/mongodb"
	"opnamecore/internal/repository/sheets"
	"opnamecore/internal/scheduler"
	"opnamecore/internal/server/handlers"
	"opnamecore/internal/server/router"
	"opnamecore/internal/service/analysis"
	"opnamecore/internal/service/opname"
	"opnamecore/internal/service/reconcile"
	"opnamecore/pkg/clients/inventory"
	"opnamecore/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoClient, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb connection", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	sessionStore := mongodb.NewSessionStore(mongoClient, cfg.MongoDB.DBName)
	historyLedger := mongodb.NewHistoryLedger(mongoClient, cfg.MongoDB.DBName, baseLogger.Named("repo.history"))

	// The Sheets export is optional; it stays nil when no spreadsheet is
	// configured.
	var exporter sheets.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets export disabled, EXPORT_SPREADSHEET_ID not set")
	}

	gateway := inventory.NewClient(cfg.Inventory)

	engine := reconcile.NewEngine(gateway, historyLedger, sessionStore, exporter, baseLogger.Named("svc.reconcile"))
	sessionSvc := opname.NewService(sessionStore, engine, baseLogger.Named("svc.opname"))
	analyzer := analysis.NewAnalyzer(baseLogger.Named("svc.analysis"))

	drafts := opname.NewDraftSaver(sessionSvc.SaveDraft, cfg.Opname.DraftDebounce, baseLogger.Named("svc.opname.drafts"))
	defer drafts.Close()

	opnameHandler := handlers.NewOpnameHandler(sessionSvc, engine, drafts, baseLogger.Named("handlers.opname"))
	historyHandler := handlers.NewHistoryHandler(historyLedger, analyzer, baseLogger.Named("handlers.history"))
	engineRouter := router.New(opnameHandler, historyHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Monitoring, historyLedger, analyzer, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
