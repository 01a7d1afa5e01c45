package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/config"
	db "github.com/cmhillm75/sqlalchemy-challenge/internal/db"
	httpapi "github.com/cmhillm75/sqlalchemy-challenge/internal/httpapi"
	climate "github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/repository"
	climateviews "github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"corsAllowedOrigins", cfg.CORSAllowedOrigins,
		"dataBackend", cfg.DataBackend,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbLogSQL", cfg.LogSQL,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()
	slog.Info("database connection successful")

	srv, err := NewServer(ctx, cfg, dbConn)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// NewServer checks the dataset layout, picks the query backend and returns a
// server with every route registered. It does not start listening.
func NewServer(ctx context.Context, cfg config.Config, dbConn *sql.DB) (*http.Server, error) {
	if err := db.VerifySchema(ctx, dbConn); err != nil {
		return nil, fmt.Errorf("verify dataset: %w", err)
	}

	repo, err := newRepository(ctx, cfg, dbConn)
	if err != nil {
		return nil, err
	}

	if err := climateviews.LoadTemplates(); err != nil {
		return nil, err
	}

	metrics := httpapi.NewMetrics()
	mux := httpapi.NewMux(dbConn, cfg.DataBackend, metrics)
	climate.RegisterFeature(mux, repo)

	return httpapi.NewServer(cfg, mux, metrics), nil
}

func newRepository(ctx context.Context, cfg config.Config, dbConn *sql.DB) (repository.ClimateRepository, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		snapshot, err := repository.LoadSnapshot(ctx, dbConn)
		if err != nil {
			return nil, err
		}
		return snapshot, nil
	case config.BackendSQLite, "":
		return repository.NewRepository(dbConn), nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
