package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/config"
)

// Mirrors the hawaii.sqlite layout.
const hawaiiSchema = `
CREATE TABLE station (
  id        INTEGER PRIMARY KEY,
  station   TEXT,
  name      TEXT,
  latitude  FLOAT,
  longitude FLOAT,
  elevation FLOAT
);
CREATE TABLE measurement (
  id      INTEGER PRIMARY KEY,
  station TEXT,
  date    TEXT,
  prcp    FLOAT,
  tobs    FLOAT
);
`

func createDataset(t *testing.T, schema string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	rw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open writable: %v", err)
	}
	defer func() {
		if err := rw.Close(); err != nil {
			t.Fatalf("close writable: %v", err)
		}
	}()
	if _, err := rw.Exec(schema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	if _, err := rw.Exec(`INSERT INTO station (station, name) VALUES ('USC00519397', 'WAIKIKI 717.2, HI US')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}

func TestBuildDSN(t *testing.T) {
	path := createDataset(t, hawaiiSchema)

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{DSN: "file:x.db?cache=shared", Path: path},
			want: "file:x.db?cache=shared",
		},
		{
			name: "plain path",
			cfg:  config.Config{Path: path},
			want: "file:" + path + "?mode=ro&_query_only=true&_busy_timeout=5000",
		},
		{
			name: "file uri without params",
			cfg:  config.Config{Path: "file:/data/hawaii.sqlite"},
			want: "file:/data/hawaii.sqlite?mode=ro&_query_only=true&_busy_timeout=5000",
		},
		{
			name: "file uri with params",
			cfg:  config.Config{Path: "file:/data/hawaii.sqlite?cache=shared"},
			want: "file:/data/hawaii.sqlite?cache=shared&mode=ro&_query_only=true&_busy_timeout=5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDSN_MissingFile(t *testing.T) {
	_, err := buildDSN(config.Config{Path: filepath.Join(t.TempDir(), "nope.sqlite")})
	if err == nil {
		t.Fatal("buildDSN() error = nil, want error for missing dataset")
	}
	if !strings.Contains(err.Error(), "nope.sqlite") {
		t.Errorf("error %q should name the path", err)
	}
}

func TestOpen_ReadOnly(t *testing.T) {
	path := createDataset(t, hawaiiSchema)
	conn, err := Open(config.Config{Driver: "sqlite3", Path: path, MaxOpenConns: 2, MaxIdleConns: 2})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() {
		if err := Close(conn); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}()

	var name string
	if err := conn.QueryRow(`SELECT name FROM station`).Scan(&name); err != nil {
		t.Fatalf("select: %v", err)
	}
	if name != "WAIKIKI 717.2, HI US" {
		t.Errorf("name = %q", name)
	}

	if _, err := conn.Exec(`INSERT INTO station (station, name) VALUES ('X', 'Y')`); err == nil {
		t.Fatal("insert on read-only handle succeeded; want error")
	}
}

func TestOpen_WithSQLLogging(t *testing.T) {
	path := createDataset(t, hawaiiSchema)
	conn, err := Open(config.Config{Driver: "sqlite3", Path: path, LogSQL: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = Close(conn) }()

	if err := VerifySchema(context.Background(), conn); err != nil {
		t.Fatalf("VerifySchema() error = %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v, want nil", err)
	}
}

func TestVerifySchema(t *testing.T) {
	t.Run("complete schema", func(t *testing.T) {
		conn := memoryDB(t, hawaiiSchema)
		if err := VerifySchema(context.Background(), conn); err != nil {
			t.Fatalf("VerifySchema() error = %v", err)
		}
	})

	t.Run("missing table and column", func(t *testing.T) {
		conn := memoryDB(t, `CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, tobs FLOAT);`)
		err := VerifySchema(context.Background(), conn)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("VerifySchema() error = %v, want *SchemaError", err)
		}
		want := []string{"measurement.prcp", "table station"}
		if strings.Join(schemaErr.Missing, "|") != strings.Join(want, "|") {
			t.Errorf("Missing = %v, want %v", schemaErr.Missing, want)
		}
	})

	t.Run("column names are case insensitive", func(t *testing.T) {
		conn := memoryDB(t, strings.ReplaceAll(hawaiiSchema, "tobs", "TOBS"))
		if err := VerifySchema(context.Background(), conn); err != nil {
			t.Fatalf("VerifySchema() error = %v", err)
		}
	})
}

func memoryDB(t *testing.T, schema string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	if _, err := conn.Exec(schema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	return conn
}
