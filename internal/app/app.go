package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"opportunity-sync-go/internal/config"
	"opportunity-sync-go/internal/configstore"
	"opportunity-sync-go/internal/db"
	"opportunity-sync-go/internal/docstore"
	"opportunity-sync-go/internal/fireflies"
	"opportunity-sync-go/internal/handlers"
	"opportunity-sync-go/internal/mail"
	"opportunity-sync-go/internal/metrics"
	"opportunity-sync-go/internal/orchestrator"
	"opportunity-sync-go/internal/repository"
	"opportunity-sync-go/internal/scheduler"
	"opportunity-sync-go/internal/server"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Opportunity Sync Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()

	transcripts := fireflies.NewClient(&cfg.Fireflies)

	var mailSource mail.Source
	if cfg.Google.UseIMAP {
		mailSource, err = mail.NewIMAPSource(&cfg.Google, cfg.Sync.MaxThreads)
		if err != nil {
			return fmt.Errorf("failed to create IMAP source: %w", err)
		}
		logrus.Info("Using IMAP for email fetching")
	} else {
		mailSource, err = mail.NewGmailSource(&cfg.Google, cfg.Sync.MaxThreads)
		if err != nil {
			return fmt.Errorf("failed to create Gmail source: %w", err)
		}
		logrus.Info("Using Gmail API for email fetching")
	}

	var store configstore.Store
	var docs docstore.Store
	if cfg.Storage.UseDatabase {
		store = configstore.NewDatabaseStore(dbConn)
		docs = docstore.NewDatabaseStore(dbConn)
		logrus.Info("Using database-backed opportunity tracker and documents")
	} else {
		store, err = configstore.NewSheetStore(&cfg.Google)
		if err != nil {
			return fmt.Errorf("failed to create sheet store: %w", err)
		}
		docs, err = docstore.NewGoogleDocsStore(&cfg.Google)
		if err != nil {
			return fmt.Errorf("failed to create docs store: %w", err)
		}
		logrus.Info("Using Google Sheets opportunity tracker and Google Docs documents")
	}

	runs := repository.New(dbConn)

	orch := orchestrator.New(transcripts, mailSource, docs, store, runs, m, orchestrator.Options{
		LookbackDays:   cfg.Sync.LookbackDays,
		MaxTranscripts: cfg.Sync.MaxTranscripts,
		MaxThreads:     cfg.Sync.MaxThreads,
	})

	sched := scheduler.NewScheduler(&cfg.Scheduler, orch)

	h := handlers.NewHandlers(dbConn, store, sched, runs)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := mailSource.Close(); err != nil {
		logrus.Errorf("Failed to close mail source: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
