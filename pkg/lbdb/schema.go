// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package lbdb

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Column is a declared table column.
type Column struct {
	Name string
	Type string
}

// NodeTable is a declared node table.
type NodeTable struct {
	Name       string
	Columns    []Column
	PrimaryKey string
}

// Column looks up a declared column by name, case-insensitively.
func (t NodeTable) Column(name string) (Column, bool) {
	return findColumn(t.Columns, name)
}

// RelTable is a declared relationship table.
type RelTable struct {
	Name  string
	From  string
	To    string
	Props []Column
}

// Prop looks up a declared property column by name, case-insensitively.
func (t RelTable) Prop(name string) (Column, bool) {
	return findColumn(t.Props, name)
}

func findColumn(cols []Column, name string) (Column, bool) {
	for _, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Schema is the set of table declarations from a schema.cypher file.
type Schema struct {
	Nodes []NodeTable
	Rels  []RelTable
}

// Node looks up a node table by name.
func (s *Schema) Node(name string) (NodeTable, bool) {
	for _, t := range s.Nodes {
		if t.Name == name {
			return t, true
		}
	}
	return NodeTable{}, false
}

// Rel looks up a rel table by name.
func (s *Schema) Rel(name string) (RelTable, bool) {
	for _, t := range s.Rels {
		if t.Name == name {
			return t, true
		}
	}
	return RelTable{}, false
}

const (
	nodeTablePrefix = "CREATE NODE TABLE"
	relTablePrefix  = "CREATE REL TABLE"
)

// ParseSchema parses the CREATE NODE TABLE and CREATE REL TABLE statements
// from a schema.cypher file. Statements of any other kind are ignored.
func ParseSchema(r io.Reader) (*Schema, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema")
	}
	s := &Schema{}
	for _, stmt := range strings.Split(string(b), ";") {
		stmt = strings.TrimSpace(stmt)
		upper := strings.ToUpper(stmt)
		switch {
		case strings.HasPrefix(upper, nodeTablePrefix):
			t, err := parseNodeTable(stmt)
			if err != nil {
				return nil, err
			}
			s.Nodes = append(s.Nodes, t)
		case strings.HasPrefix(upper, relTablePrefix):
			t, err := parseRelTable(stmt)
			if err != nil {
				return nil, err
			}
			s.Rels = append(s.Rels, t)
		}
	}
	return s, nil
}

func parseNodeTable(stmt string) (NodeTable, error) {
	name, rest := takeIdent(stmt[len(nodeTablePrefix):])
	if name == "" {
		return NodeTable{}, errors.Errorf("node table statement missing name: %s", abbrev(stmt))
	}
	inner, err := columnList(rest)
	if err != nil {
		return NodeTable{}, errors.Wrapf(err, "node table %s", name)
	}
	t := NodeTable{Name: name}
	for _, def := range splitTopLevel(inner) {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(def), "PRIMARY KEY") {
			pk, err := columnList(def[len("PRIMARY KEY"):])
			if err != nil {
				return NodeTable{}, errors.Wrapf(err, "node table %s primary key", name)
			}
			t.PrimaryKey = trimIdent(pk)
			continue
		}
		colName, colType := takeIdent(def)
		colType = strings.TrimSpace(colType)
		if colName == "" || colType == "" {
			continue
		}
		if upper := strings.ToUpper(colType); strings.HasSuffix(upper, "PRIMARY KEY") {
			t.PrimaryKey = colName
			colType = strings.TrimSpace(colType[:len(colType)-len("PRIMARY KEY")])
		}
		t.Columns = append(t.Columns, Column{Name: colName, Type: colType})
	}
	if t.PrimaryKey == "" {
		if len(t.Columns) > 0 {
			t.PrimaryKey = t.Columns[0].Name
		} else {
			t.PrimaryKey = "id"
		}
	}
	return t, nil
}

func parseRelTable(stmt string) (RelTable, error) {
	name, rest := takeIdent(stmt[len(relTablePrefix):])
	if name == "" {
		return RelTable{}, errors.Errorf("rel table statement missing name: %s", abbrev(stmt))
	}
	inner, err := columnList(rest)
	if err != nil {
		return RelTable{}, errors.Wrapf(err, "rel table %s", name)
	}
	defs := splitTopLevel(inner)
	if len(defs) == 0 {
		return RelTable{}, errors.Errorf("rel table %s missing FROM/TO clause", name)
	}
	fields := strings.Fields(defs[0])
	if len(fields) < 4 || !strings.EqualFold(fields[0], "FROM") || !strings.EqualFold(fields[2], "TO") {
		return RelTable{}, errors.Errorf("rel table %s missing FROM/TO clause", name)
	}
	t := RelTable{Name: name, From: trimIdent(fields[1]), To: trimIdent(fields[3])}
	for _, def := range defs[1:] {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		colName, colType := takeIdent(def)
		colType = strings.TrimSpace(colType)
		// Single-word entries are rel multiplicities (MANY_MANY and friends).
		if colName == "" || colType == "" {
			continue
		}
		t.Props = append(t.Props, Column{Name: colName, Type: colType})
	}
	return t, nil
}

// columnList returns the content of the parenthesized list that opens s,
// respecting nested parentheses (DECIMAL(18, 3) stays intact).
func columnList(s string) (string, error) {
	start := strings.Index(s, "(")
	if start < 0 {
		return "", errors.New("missing column list")
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start+1 : i], nil
			}
		}
	}
	return "", errors.New("unbalanced parentheses in column list")
}

// splitTopLevel splits on commas that are not nested inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// takeIdent consumes a leading identifier, optionally backtick-quoted,
// returning it and the remainder of the string.
func takeIdent(s string) (string, string) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "`") {
		if end := strings.Index(s[1:], "`"); end >= 0 {
			return s[1 : 1+end], s[2+end:]
		}
		return "", s
	}
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func trimIdent(s string) string {
	return strings.Trim(strings.TrimSpace(s), "`")
}

func abbrev(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

var duckdbTypes = map[string]string{
	"INT64":     "BIGINT",
	"INT32":     "INTEGER",
	"INT16":     "SMALLINT",
	"INT8":      "TINYINT",
	"UINT64":    "UBIGINT",
	"UINT32":    "UINTEGER",
	"UINT16":    "USMALLINT",
	"UINT8":     "UTINYINT",
	"DOUBLE":    "DOUBLE",
	"FLOAT":     "FLOAT",
	"BOOL":      "BOOLEAN",
	"STRING":    "VARCHAR",
	"DATE":      "DATE",
	"TIMESTAMP": "TIMESTAMP",
	"TIME":      "TIME",
	"BLOB":      "BLOB",
	"JSON":      "VARCHAR",
}

// DuckDBType maps a LadybugDB column type to its DuckDB storage type.
// Types without a direct equivalent are stored as VARCHAR.
func DuckDBType(t string) string {
	if mapped, ok := duckdbTypes[strings.ToUpper(strings.TrimSpace(t))]; ok {
		return mapped
	}
	return "VARCHAR"
}
