// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package exporter

import (
	"fmt"
	"strings"

	"github.com/ladybugdb/smallkgs/pkg/catalog"
	"github.com/ladybugdb/smallkgs/pkg/duckdbx"
	"github.com/ladybugdb/smallkgs/pkg/lbdb"
	"github.com/pkg/errors"
)

// tablePlan is the DDL and load statement for one table.
type tablePlan struct {
	Table  string
	Create string
	Insert string
}

// planNodeImport builds the statements that load a node table from its
// parquet file. Column names come from the parquet file with alias prefixes
// stripped; column types come from the declared schema, defaulting to
// VARCHAR for undeclared columns.
func planNodeImport(t lbdb.NodeTable, parquetCols []string, parquetPath string) (tablePlan, error) {
	if len(parquetCols) == 0 {
		return tablePlan{}, errors.Errorf("parquet file for node table %s has no columns", t.Name)
	}
	var defs, selects []string
	for _, col := range parquetCols {
		base := lbdb.BaseColumn(col)
		typ := "VARCHAR"
		if declared, ok := t.Column(base); ok {
			typ = lbdb.DuckDBType(declared.Type)
		}
		defs = append(defs, fmt.Sprintf("%s %s", duckdbx.QuoteIdent(base), typ))
		selects = append(selects, fmt.Sprintf("%s AS %s", duckdbx.QuoteIdent(col), duckdbx.QuoteIdent(base)))
	}
	table := catalog.NodeTablePrefix + t.Name
	return tablePlan{
		Table:  table,
		Create: fmt.Sprintf("CREATE TABLE %s (%s)", duckdbx.QuoteIdent(table), strings.Join(defs, ", ")),
		Insert: fmt.Sprintf("INSERT INTO %s SELECT %s FROM read_parquet('%s')",
			duckdbx.QuoteIdent(table), strings.Join(selects, ", "), duckdbx.EscapeString(parquetPath)),
	}, nil
}

// planRelImport builds the statements that load a rel table from its parquet
// file. The a.id and b.id columns become the BIGINT source and target
// columns; remaining columns become properties typed from the declared
// schema.
func planRelImport(t lbdb.RelTable, parquetCols []string, parquetPath string) (tablePlan, error) {
	var sourceCol, targetCol string
	var propCols []string
	for _, col := range parquetCols {
		if lbdb.BaseColumn(col) == "id" {
			switch lbdb.ColumnAlias(col) {
			case "a":
				sourceCol = col
			case "b":
				targetCol = col
			}
			continue
		}
		propCols = append(propCols, col)
	}
	if sourceCol == "" || targetCol == "" {
		return tablePlan{}, errors.Errorf("parquet file for rel table %s is missing the a.id or b.id column", t.Name)
	}
	defs := []string{
		fmt.Sprintf("%s BIGINT", duckdbx.QuoteIdent(catalog.SourceColumn)),
		fmt.Sprintf("%s BIGINT", duckdbx.QuoteIdent(catalog.TargetColumn)),
	}
	selects := []string{
		fmt.Sprintf("%s AS %s", duckdbx.QuoteIdent(sourceCol), duckdbx.QuoteIdent(catalog.SourceColumn)),
		fmt.Sprintf("%s AS %s", duckdbx.QuoteIdent(targetCol), duckdbx.QuoteIdent(catalog.TargetColumn)),
	}
	for _, col := range propCols {
		base := lbdb.BaseColumn(col)
		typ := "VARCHAR"
		if declared, ok := t.Prop(base); ok {
			typ = lbdb.DuckDBType(declared.Type)
		}
		defs = append(defs, fmt.Sprintf("%s %s", duckdbx.QuoteIdent(base), typ))
		selects = append(selects, fmt.Sprintf("%s AS %s", duckdbx.QuoteIdent(col), duckdbx.QuoteIdent(base)))
	}
	table := catalog.RelTablePrefix + t.Name
	return tablePlan{
		Table:  table,
		Create: fmt.Sprintf("CREATE TABLE %s (%s)", duckdbx.QuoteIdent(table), strings.Join(defs, ", ")),
		Insert: fmt.Sprintf("INSERT INTO %s SELECT %s FROM read_parquet('%s')",
			duckdbx.QuoteIdent(table), strings.Join(selects, ", "), duckdbx.EscapeString(parquetPath)),
	}, nil
}
