// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package duckdbx provides database/sql access to DuckDB database files.
package duckdbx

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
	"github.com/pkg/errors"
)

// DB is a handle on a DuckDB database.
type DB struct {
	*sql.DB
	path string
}

type config struct {
	threads       int
	memoryLimitGB int
}

// Option configures a DB at open time.
type Option func(*config)

// WithThreads caps the number of threads DuckDB uses.
func WithThreads(n int) Option {
	return func(c *config) {
		c.threads = n
	}
}

// WithMemoryLimitGB caps DuckDB's memory use, in gigabytes.
func WithMemoryLimitGB(gb int) Option {
	return func(c *config) {
		c.memoryLimitGB = gb
	}
}

// Open opens the DuckDB database at path, creating the file if absent. An
// empty path opens an in-memory database. The handle is pinned to a single
// connection: DuckDB is embedded and attached catalogs and pragmas are
// connection state.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening duckdb")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "pinging duckdb at %s", dsn)
	}
	if cfg.threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", cfg.threads)); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "setting threads")
		}
	}
	if cfg.memoryLimitGB > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dGB'", cfg.memoryLimitGB)); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "setting memory limit")
		}
	}
	return &DB{DB: db, path: path}, nil
}

// Path returns the path the database was opened with.
func (d *DB) Path() string {
	return d.path
}

// Close checkpoints the database and releases the connection. The checkpoint
// folds the write-ahead log into the database file so the file is complete
// on disk once Close returns.
func (d *DB) Close() error {
	if _, err := d.DB.Exec("CHECKPOINT"); err != nil {
		d.DB.Close()
		return errors.Wrap(err, "checkpointing database")
	}
	return d.DB.Close()
}

// Checkpoint flushes the write-ahead log into the database file.
func (d *DB) Checkpoint(ctx context.Context) error {
	_, err := d.ExecContext(ctx, "CHECKPOINT")
	return errors.Wrap(err, "checkpointing database")
}

// Attach attaches the database file at path under the given alias.
func (d *DB) Attach(ctx context.Context, path, alias string, readOnly bool) error {
	stmt := fmt.Sprintf("ATTACH '%s' AS %s", EscapeString(path), QuoteIdent(alias))
	if readOnly {
		stmt += " (READ_ONLY)"
	}
	_, err := d.ExecContext(ctx, stmt)
	return errors.Wrapf(err, "attaching %s", path)
}

// Detach detaches a previously attached database.
func (d *DB) Detach(ctx context.Context, alias string) error {
	_, err := d.ExecContext(ctx, fmt.Sprintf("DETACH %s", QuoteIdent(alias)))
	return errors.Wrapf(err, "detaching %s", alias)
}

// Tables lists the tables of the main schema whose names start with prefix.
// An empty prefix lists every table.
func (d *DB) Tables(ctx context.Context, prefix string) ([]string, error) {
	return d.tables(ctx, `SELECT table_name FROM information_schema.tables
		WHERE table_catalog = current_database() AND table_schema = 'main'
		ORDER BY table_name`, prefix)
}

// TablesIn lists the tables of an attached catalog whose names start with
// prefix. An empty prefix lists every table.
func (d *DB) TablesIn(ctx context.Context, catalog, prefix string) ([]string, error) {
	return d.tables(ctx, fmt.Sprintf(`SELECT table_name FROM information_schema.tables
		WHERE table_catalog = '%s' AND table_schema = 'main'
		ORDER BY table_name`, EscapeString(catalog)), prefix)
}

func (d *DB) tables(ctx context.Context, query, prefix string) ([]string, error) {
	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "listing tables")
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning table name")
		}
		// Filtered here rather than with LIKE since "_" is a LIKE wildcard.
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

// Columns lists the column names of a table, in declaration order. An empty
// catalog names the current database.
func (d *DB) Columns(ctx context.Context, catalog, table string) ([]string, error) {
	catalogExpr := "current_database()"
	if catalog != "" {
		catalogExpr = "'" + EscapeString(catalog) + "'"
	}
	rows, err := d.QueryContext(ctx, fmt.Sprintf(`SELECT column_name FROM information_schema.columns
		WHERE table_catalog = %s AND table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position`, catalogExpr), table)
	if err != nil {
		return nil, errors.Wrapf(err, "listing columns of %s", table)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning column name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableExists reports whether a table exists in the main schema.
func (d *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := d.QueryRowContext(ctx, `SELECT count(*) FROM information_schema.tables
		WHERE table_catalog = current_database() AND table_schema = 'main' AND table_name = ?`, name).Scan(&count)
	if err != nil {
		return false, errors.Wrapf(err, "checking table %s", name)
	}
	return count > 0, nil
}

// ParquetColumns returns the column names of a parquet file, in file order.
func (d *DB) ParquetColumns(ctx context.Context, path string) ([]string, error) {
	rows, err := d.QueryContext(ctx, fmt.Sprintf("SELECT column_name FROM (DESCRIBE SELECT * FROM read_parquet('%s'))", EscapeString(path)))
	if err != nil {
		return nil, errors.Wrapf(err, "describing %s", path)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning describe row")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CopyToParquet writes the result of query to a parquet file at path.
func (d *DB) CopyToParquet(ctx context.Context, query, path string) error {
	_, err := d.ExecContext(ctx, fmt.Sprintf("COPY (%s) TO '%s' (FORMAT PARQUET)", query, EscapeString(path)))
	return errors.Wrapf(err, "copying to %s", path)
}

// QuoteIdent quotes an identifier for embedding in a SQL statement.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// EscapeString escapes a string for embedding in a single-quoted SQL literal.
// The surrounding quotes are the caller's.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
