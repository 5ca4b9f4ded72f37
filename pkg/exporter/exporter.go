// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package exporter converts a graph store export into its relational form.
//
// Each node table lands in a nodes_<Table> table and each rel table in an
// edges_<Rel> table of a DuckDB database file, loaded from the export's
// parquet files according to the types declared in schema.cypher. A
// kg_tables catalog records the graph topology for downstream converters.
package exporter

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ladybugdb/smallkgs/pkg/catalog"
	"github.com/ladybugdb/smallkgs/pkg/duckdbx"
	"github.com/ladybugdb/smallkgs/pkg/lbdb"
	"github.com/pkg/errors"
)

// Options configures a Run.
type Options struct {
	// ExportDir is the graph store export directory.
	ExportDir string
	// OutputPath is the DuckDB file to create or overwrite tables in.
	OutputPath string
	// Threads caps DuckDB's thread count. Zero keeps the engine default.
	Threads int
	// MemoryLimitGB caps DuckDB's memory use. Zero keeps the engine default.
	MemoryLimitGB int
}

// TableReport describes one converted table.
type TableReport struct {
	Table   string
	Source  string
	Rows    int64
	Skipped bool
}

// Report summarizes a Run.
type Report struct {
	Tables []TableReport
}

// Created returns the number of tables written.
func (r *Report) Created() int {
	n := 0
	for _, t := range r.Tables {
		if !t.Skipped {
			n++
		}
	}
	return n
}

// Run converts the export at opts.ExportDir into a relational DuckDB file at
// opts.OutputPath. Pre-existing nodes_ and edges_ tables in the output are
// dropped first. Declared tables whose parquet file is missing from the
// export are skipped with a warning, matching the export facility's habit of
// omitting empty tables.
func Run(ctx context.Context, opts Options) (*Report, error) {
	export, err := lbdb.OpenExport(opts.ExportDir)
	if err != nil {
		return nil, err
	}
	if len(export.Schema.Nodes) == 0 && len(export.Schema.Rels) == 0 {
		return nil, errors.Errorf("export schema declares no tables: %s", opts.ExportDir)
	}
	var dbOpts []duckdbx.Option
	if opts.Threads > 0 {
		dbOpts = append(dbOpts, duckdbx.WithThreads(opts.Threads))
	}
	if opts.MemoryLimitGB > 0 {
		dbOpts = append(dbOpts, duckdbx.WithMemoryLimitGB(opts.MemoryLimitGB))
	}
	db, err := duckdbx.Open(ctx, opts.OutputPath, dbOpts...)
	if err != nil {
		return nil, err
	}
	closeDB := sync.OnceValue(db.Close)
	defer closeDB()
	if err := dropConverted(ctx, db); err != nil {
		return nil, err
	}
	report := &Report{}
	var entries []catalog.Table
	for _, t := range export.Schema.Nodes {
		parquet, ok := export.NodeParquet(t.Name)
		if !ok {
			log.Printf("Warning: no parquet file for node table %s: %s", t.Name, parquet)
			report.Tables = append(report.Tables, TableReport{Table: catalog.NodeTablePrefix + t.Name, Skipped: true})
			continue
		}
		rows, err := importTable(ctx, db, parquet, func(cols []string) (tablePlan, error) {
			return planNodeImport(t, cols, parquet)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "converting node table %s", t.Name)
		}
		log.Printf("Created node table: %s%s (%d rows)", catalog.NodeTablePrefix, t.Name, rows)
		report.Tables = append(report.Tables, TableReport{Table: catalog.NodeTablePrefix + t.Name, Source: parquet, Rows: rows})
		entries = append(entries, catalog.Table{
			Name:       catalog.NodeTablePrefix + t.Name,
			Kind:       catalog.KindNode,
			Label:      t.Name,
			PrimaryKey: t.PrimaryKey,
		})
	}
	for _, t := range export.Schema.Rels {
		parquet, ok := export.RelParquet(t)
		if !ok {
			log.Printf("Warning: no parquet file for rel table %s", t.Name)
			report.Tables = append(report.Tables, TableReport{Table: catalog.RelTablePrefix + t.Name, Skipped: true})
			continue
		}
		rows, err := importTable(ctx, db, parquet, func(cols []string) (tablePlan, error) {
			return planRelImport(t, cols, parquet)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "converting rel table %s", t.Name)
		}
		log.Printf("Created edge table: %s%s (%d rows)", catalog.RelTablePrefix, t.Name, rows)
		report.Tables = append(report.Tables, TableReport{Table: catalog.RelTablePrefix + t.Name, Source: parquet, Rows: rows})
		entries = append(entries, catalog.Table{
			Name:  catalog.RelTablePrefix + t.Name,
			Kind:  catalog.KindRel,
			Label: t.Name,
			From:  t.From,
			To:    t.To,
		})
	}
	if err := catalog.Write(ctx, db, entries); err != nil {
		return nil, err
	}
	return report, errors.Wrap(closeDB(), "closing output database")
}

// dropConverted removes any previously converted tables so reruns replace
// rather than append.
func dropConverted(ctx context.Context, db *duckdbx.DB) error {
	for _, prefix := range []string{catalog.NodeTablePrefix, catalog.RelTablePrefix} {
		names, err := db.Tables(ctx, prefix)
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", duckdbx.QuoteIdent(name))); err != nil {
				return errors.Wrapf(err, "dropping %s", name)
			}
		}
	}
	return nil
}

func importTable(ctx context.Context, db *duckdbx.DB, parquet string, plan func([]string) (tablePlan, error)) (int64, error) {
	cols, err := db.ParquetColumns(ctx, parquet)
	if err != nil {
		return 0, err
	}
	p, err := plan(cols)
	if err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, p.Create); err != nil {
		return 0, errors.Wrapf(err, "creating %s", p.Table)
	}
	if _, err := db.ExecContext(ctx, p.Insert); err != nil {
		return 0, errors.Wrapf(err, "loading %s", p.Table)
	}
	var rows int64
	if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT count(*) FROM %s", duckdbx.QuoteIdent(p.Table))).Scan(&rows); err != nil {
		return 0, errors.Wrapf(err, "counting %s", p.Table)
	}
	return rows, nil
}
