// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog records which graph tables a converted database holds.
//
// The graph store's relational form is not self-describing: a rel table's
// endpoint node tables exist only in the original schema.cypher. The
// exporter therefore writes a kg_tables catalog alongside the data, and the
// CSR converter reads it back instead of re-parsing the export.
package catalog

import (
	"context"
	"fmt"

	"github.com/ladybugdb/smallkgs/pkg/duckdbx"
	"github.com/pkg/errors"
)

// TableName is the name of the catalog table.
const TableName = "kg_tables"

// Table kinds.
const (
	KindNode = "node"
	KindRel  = "rel"
)

// Table name prefixes of the relational form.
const (
	NodeTablePrefix = "nodes_"
	RelTablePrefix  = "edges_"
)

// Edge endpoint columns of the relational form. Every edges_ table starts
// with these two BIGINT columns regardless of declared properties.
const (
	SourceColumn = "source"
	TargetColumn = "target"
)

// Table describes one converted graph table.
type Table struct {
	Name       string // nodes_Person, edges_Knows
	Kind       string // KindNode or KindRel
	Label      string // Person, Knows
	From       string // rel only: source node table label
	To         string // rel only: target node table label
	PrimaryKey string // node only: declared primary key column
}

// Nodes returns the node entries, in input order.
func Nodes(tables []Table) []Table {
	return filter(tables, KindNode)
}

// Rels returns the rel entries, in input order.
func Rels(tables []Table) []Table {
	return filter(tables, KindRel)
}

func filter(tables []Table, kind string) []Table {
	var out []Table
	for _, t := range tables {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// FindLabel looks up an entry of the given kind by its label.
func FindLabel(tables []Table, kind, label string) (Table, bool) {
	for _, t := range tables {
		if t.Kind == kind && t.Label == label {
			return t, true
		}
	}
	return Table{}, false
}

// Write replaces the catalog table in db with the given entries.
func Write(ctx context.Context, db *duckdbx.DB, tables []Table) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", TableName)); err != nil {
		return errors.Wrap(err, "dropping catalog table")
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (
		table_name VARCHAR,
		kind VARCHAR,
		label VARCHAR,
		from_table VARCHAR,
		to_table VARCHAR,
		primary_key VARCHAR
	)`, TableName)); err != nil {
		return errors.Wrap(err, "creating catalog table")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning catalog insert")
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (?, ?, ?, ?, ?, ?)", TableName))
	if err != nil {
		return errors.Wrap(err, "preparing catalog insert")
	}
	defer stmt.Close()
	for _, t := range tables {
		if _, err := stmt.ExecContext(ctx, t.Name, t.Kind, t.Label, t.From, t.To, t.PrimaryKey); err != nil {
			return errors.Wrapf(err, "inserting catalog entry %s", t.Name)
		}
	}
	return errors.Wrap(tx.Commit(), "committing catalog insert")
}

// Exists reports whether the catalog table is present in the named attached
// database, or in the main database when dbName is empty.
func Exists(ctx context.Context, db *duckdbx.DB, dbName string) (bool, error) {
	if dbName == "" {
		return db.TableExists(ctx, TableName)
	}
	names, err := db.TablesIn(ctx, dbName, TableName)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == TableName {
			return true, nil
		}
	}
	return false, nil
}

// Read loads the catalog from the named attached database, or from the main
// database when dbName is empty.
func Read(ctx context.Context, db *duckdbx.DB, dbName string) ([]Table, error) {
	qualified := TableName
	if dbName != "" {
		qualified = duckdbx.QuoteIdent(dbName) + "." + TableName
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf(
		"SELECT table_name, kind, label, from_table, to_table, primary_key FROM %s ORDER BY kind, table_name", qualified))
	if err != nil {
		return nil, errors.Wrap(err, "reading catalog table")
	}
	defer rows.Close()
	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Name, &t.Kind, &t.Label, &t.From, &t.To, &t.PrimaryKey); err != nil {
			return nil, errors.Wrap(err, "scanning catalog entry")
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}
