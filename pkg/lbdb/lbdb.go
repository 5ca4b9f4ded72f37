// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package lbdb reads LadybugDB graph store exports.
//
// An export is a directory produced by the graph store's EXPORT DATABASE
// facility with the following structure:
//
//	<export_path>/
//	  schema.cypher
//	  <NodeTable>.parquet
//	  ...
//	  <RelTable>_<From>_<To>.parquet
//	  ...
//
// The schema.cypher file contains the CREATE NODE TABLE and CREATE REL TABLE
// statements that describe the graph. Each node table is accompanied by a
// parquet file named after it. Each rel table is accompanied by a parquet
// file named <RelTable>_<From>_<To>.parquet, or <RelTable>.parquet for
// exports that predate endpoint-qualified file names. Parquet columns carry
// the exporting scan's aliases as prefixes (a.id, b.id, r.weight).
//
// This package does not read the graph store's native binary files.
package lbdb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SchemaFileName is the canonical name of the export's DDL file.
const SchemaFileName = "schema.cypher"

// Export is a graph store export directory bound with its parsed schema.
type Export struct {
	Dir    string
	Schema *Schema
}

// OpenExport binds the export directory at dir and parses its schema.
func OpenExport(dir string) (*Export, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading export dir")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("export path is not a directory: %s", dir)
	}
	f, err := os.Open(filepath.Join(dir, SchemaFileName))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", SchemaFileName)
	}
	defer f.Close()
	s, err := ParseSchema(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", SchemaFileName)
	}
	return &Export{Dir: dir, Schema: s}, nil
}

// NodeParquet returns the path of the parquet file for the named node table
// and whether it exists.
func (e *Export) NodeParquet(table string) (string, bool) {
	p := filepath.Join(e.Dir, table+".parquet")
	return p, fileExists(p)
}

// RelParquet returns the path of the parquet file for the given rel table and
// whether it exists. The endpoint-qualified name is preferred over the bare
// rel name.
func (e *Export) RelParquet(rel RelTable) (string, bool) {
	p := filepath.Join(e.Dir, rel.Name+"_"+rel.From+"_"+rel.To+".parquet")
	if fileExists(p) {
		return p, true
	}
	p = filepath.Join(e.Dir, rel.Name+".parquet")
	return p, fileExists(p)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// BaseColumn strips the exporting scan's alias prefix from a parquet column
// name: "a.id" becomes "id", "name" stays "name".
func BaseColumn(col string) string {
	if i := strings.LastIndex(col, "."); i >= 0 {
		return col[i+1:]
	}
	return col
}

// ColumnAlias returns the alias prefix of a parquet column name, if any:
// "a.id" yields "a", "name" yields "".
func ColumnAlias(col string) string {
	if i := strings.Index(col, "."); i >= 0 {
		return col[:i]
	}
	return ""
}
