package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoice-management-backend/internal/config"
	"invoice-management-backend/internal/logger"
	"invoice-management-backend/internal/models"
	"invoice-management-backend/internal/repository"
	"invoice-management-backend/internal/routes"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid environment: %v", err)
	}

	logr, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	db, err := config.InitDB(cfg.DatabaseConfig)
	if err != nil {
		logr.Fatalw("failed to open invoice database", "error", err)
	}
	if db == nil {
		logr.Warnw("invoice database not configured; listing returns [] and writes fail until SUPABASE_DB_URL is set")
	} else if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.Invoice{}); err != nil {
			logr.Fatalw("failed to migrate invoices table", "error", err)
		}
		logr.Infow("invoices table migrated")
	}

	invoiceRepo := repository.NewInvoiceRepository(db, cfg.Timeout)

	r := routes.NewRouter(cfg, logr)
	routes.RegisterRoutes(r, invoiceRepo, logr)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Infow("backend listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatalw("server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logr.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Errorw("graceful shutdown failed", "error", err)
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
