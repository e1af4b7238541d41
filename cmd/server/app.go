package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/redinklabs/redink-api/internal/config"
	"github.com/redinklabs/redink-api/internal/grading"
	"github.com/redinklabs/redink-api/internal/platform/ark"
	"github.com/redinklabs/redink-api/internal/platform/baiduocr"
	"github.com/redinklabs/redink-api/internal/platform/logger"
	"github.com/redinklabs/redink-api/internal/platform/postgres"
	"github.com/redinklabs/redink-api/internal/task"
)

const shutdownTimeout = 10 * time.Second

// run loads configuration, wires all dependencies, and serves HTTP
// until the process receives an interrupt.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	recognizer, err := baiduocr.NewClient(baiduocr.Config{
		APIKey:      cfg.OCR.APIKey,
		SecretKey:   cfg.OCR.SecretKey,
		TokenURL:    cfg.OCR.TokenURL,
		EndpointURL: cfg.OCR.EndpointURL,
		Timeout:     cfg.OCR.Timeout,
	}, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create ocr client: %w", err)
	}

	completer, err := ark.NewClient(ark.Config{
		APIKey:  cfg.LLM.APIKey,
		ModelID: cfg.LLM.ModelID,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	}, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}

	gradingStore := postgres.NewPostgresGradingStore(db, appLogger)
	engine := grading.NewEngine(recognizer, completer, gradingStore, appLogger)

	manager := task.NewManager(task.ManagerConfig{
		IdlePollInterval: cfg.Task.IdlePollInterval,
		TerminalTTL:      cfg.Task.TerminalTTL,
	}, appLogger)
	manager.Start(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: newRouter(engine, manager, appLogger),
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", "addr", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		appLogger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
	}

	appLogger.Info("server stopped")
	return nil
}
