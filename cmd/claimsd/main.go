package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/expensedesk/claims-engine/internal/acquire"
	"github.com/expensedesk/claims-engine/internal/claims"
	"github.com/expensedesk/claims-engine/internal/common"
	"github.com/expensedesk/claims-engine/internal/extract"
	"github.com/expensedesk/claims-engine/internal/repository"
	"github.com/expensedesk/claims-engine/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("claim store init failed", "backend", cfg.Database.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	extCfg := extract.DefaultConfig()
	if cfg.Claims.VendorScanLines > 0 {
		extCfg.VendorScanLines = cfg.Claims.VendorScanLines
	}
	engine := claims.NewEngine(store, acquire.PlainText{}, extCfg, logger)
	issuer := server.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(engine, issuer, cfg.Auth.Secret, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("claims engine listening", "addr", cfg.Server.Addr, "backend", cfg.Database.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// openStore selects the claim store adapter from configuration.
func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (repository.ClaimStore, func(), error) {
	switch cfg.Database.Backend {
	case "postgres":
		store, err := repository.OpenPostgres(ctx, repository.PostgresConfig{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "workbook":
		store, err := repository.OpenWorkbook(cfg.Database.WorkbookPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		store, err := repository.OpenSQLite(ctx, cfg.Database.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
