// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package lbdb

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenExport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SchemaFileName, `
CREATE NODE TABLE Person (id INT64, PRIMARY KEY (id));
CREATE REL TABLE Knows (FROM Person TO Person);
`)
	writeFile(t, dir, "Person.parquet", "not a real parquet")
	writeFile(t, dir, "Knows_Person_Person.parquet", "not a real parquet")

	e, err := OpenExport(dir)
	if err != nil {
		t.Fatalf("OpenExport() returned error: %v", err)
	}
	if len(e.Schema.Nodes) != 1 || len(e.Schema.Rels) != 1 {
		t.Fatalf("OpenExport() schema = %+v, want 1 node and 1 rel table", e.Schema)
	}
	if p, ok := e.NodeParquet("Person"); !ok || p != filepath.Join(dir, "Person.parquet") {
		t.Errorf("NodeParquet(Person) = %q, %v", p, ok)
	}
	if _, ok := e.NodeParquet("Absent"); ok {
		t.Error("NodeParquet(Absent) unexpectedly found")
	}
	rel := e.Schema.Rels[0]
	if p, ok := e.RelParquet(rel); !ok || p != filepath.Join(dir, "Knows_Person_Person.parquet") {
		t.Errorf("RelParquet(Knows) = %q, %v, want endpoint-qualified file", p, ok)
	}
}

func TestRelParquetFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SchemaFileName, `CREATE NODE TABLE Person (id INT64, PRIMARY KEY (id));
CREATE REL TABLE Knows (FROM Person TO Person);`)
	writeFile(t, dir, "Knows.parquet", "not a real parquet")

	e, err := OpenExport(dir)
	if err != nil {
		t.Fatalf("OpenExport() returned error: %v", err)
	}
	if p, ok := e.RelParquet(e.Schema.Rels[0]); !ok || p != filepath.Join(dir, "Knows.parquet") {
		t.Errorf("RelParquet(Knows) = %q, %v, want bare-name fallback", p, ok)
	}
}

func TestOpenExportErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := OpenExport(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("OpenExport() expected error for missing directory")
		}
	})
	t.Run("missing schema", func(t *testing.T) {
		if _, err := OpenExport(t.TempDir()); err == nil {
			t.Error("OpenExport() expected error for missing schema.cypher")
		}
	})
	t.Run("file instead of directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "plain", "")
		if _, err := OpenExport(filepath.Join(dir, "plain")); err == nil {
			t.Error("OpenExport() expected error for non-directory path")
		}
	})
}

func TestBaseColumn(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"a.id", "id"},
		{"b.id", "id"},
		{"r.weight", "weight"},
		{"name", "name"},
		{"x.y.z", "z"},
	}
	for _, tc := range testCases {
		if got := BaseColumn(tc.in); got != tc.expected {
			t.Errorf("BaseColumn(%q) = %q, want %q", tc.in, got, tc.expected)
		}
	}
}

func TestColumnAlias(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"a.id", "a"},
		{"b.id", "b"},
		{"name", ""},
	}
	for _, tc := range testCases {
		if got := ColumnAlias(tc.in); got != tc.expected {
			t.Errorf("ColumnAlias(%q) = %q, want %q", tc.in, got, tc.expected)
		}
	}
}
