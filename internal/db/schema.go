package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// requiredColumns lists the tables and columns the query layer reads.
// Extra tables or columns in the dataset are ignored.
var requiredColumns = map[string][]string{
	"measurement": {"station", "date", "prcp", "tobs"},
	"station":     {"station", "name", "latitude", "longitude", "elevation"},
}

// SchemaError lists every table or column the dataset is missing.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "dataset schema: missing " + strings.Join(e.Missing, ", ")
}

// VerifySchema checks that the dataset exposes the tables and columns the
// query layer depends on. It only reads table metadata.
func VerifySchema(ctx context.Context, db *sql.DB) error {
	tables := make([]string, 0, len(requiredColumns))
	for name := range requiredColumns {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	var missing []string
	for _, table := range tables {
		cols, err := tableColumns(ctx, db, table)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if len(cols) == 0 {
			missing = append(missing, "table "+table)
			continue
		}
		for _, col := range requiredColumns[table] {
			if !cols[col] {
				missing = append(missing, table+"."+col)
			}
		}
	}

	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	slog.Debug("dataset schema verified", "tables", tables)
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	// PRAGMA arguments cannot be bound; table names come from requiredColumns only.
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close table_info rows", "table", table, "error", err)
		}
	}()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = true
	}
	return out, rows.Err()
}
