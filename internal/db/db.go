package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Open returns a pooled, read-only handle on the dataset. The dataset is never
// written by this process, so the connection is opened with mode=ro and
// query_only; every request borrows its own connection from the pool.
func Open(cfg config.Config) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL {
		connector, err := NewLoggingConnector(dsn, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("db connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Validate connectivity early
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := cfg.Path
	params := []string{
		"mode=ro",
		"_query_only=true",
		"_busy_timeout=5000",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	// mode=ro never creates the file, but the driver error for a missing
	// file is opaque ("unable to open database file"), so check first.
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("dataset %s: %w", path, err)
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
