// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package exporter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ladybugdb/smallkgs/pkg/lbdb"
)

func TestPlanNodeImport(t *testing.T) {
	testCases := []struct {
		name        string
		table       lbdb.NodeTable
		parquetCols []string
		path        string
		expected    tablePlan
		expectedErr bool
	}{
		{
			name: "prefixed columns use declared types",
			table: lbdb.NodeTable{
				Name: "Person",
				Columns: []lbdb.Column{
					{Name: "id", Type: "INT64"},
					{Name: "name", Type: "STRING"},
					{Name: "age", Type: "INT32"},
				},
				PrimaryKey: "id",
			},
			parquetCols: []string{"a.id", "a.name", "a.age"},
			path:        "/kg/Person.parquet",
			expected: tablePlan{
				Table:  "nodes_Person",
				Create: `CREATE TABLE "nodes_Person" ("id" BIGINT, "name" VARCHAR, "age" INTEGER)`,
				Insert: `INSERT INTO "nodes_Person" SELECT "a.id" AS "id", "a.name" AS "name", "a.age" AS "age" FROM read_parquet('/kg/Person.parquet')`,
			},
		},
		{
			name: "undeclared parquet column falls back to varchar",
			table: lbdb.NodeTable{
				Name:       "Event",
				Columns:    []lbdb.Column{{Name: "id", Type: "INT64"}},
				PrimaryKey: "id",
			},
			parquetCols: []string{"id", "extra"},
			path:        "/kg/Event.parquet",
			expected: tablePlan{
				Table:  "nodes_Event",
				Create: `CREATE TABLE "nodes_Event" ("id" BIGINT, "extra" VARCHAR)`,
				Insert: `INSERT INTO "nodes_Event" SELECT "id" AS "id", "extra" AS "extra" FROM read_parquet('/kg/Event.parquet')`,
			},
		},
		{
			name: "declared type lookup is case-insensitive",
			table: lbdb.NodeTable{
				Name:       "Place",
				Columns:    []lbdb.Column{{Name: "Id", Type: "INT64"}},
				PrimaryKey: "Id",
			},
			parquetCols: []string{"a.id"},
			path:        "/kg/Place.parquet",
			expected: tablePlan{
				Table:  "nodes_Place",
				Create: `CREATE TABLE "nodes_Place" ("id" BIGINT)`,
				Insert: `INSERT INTO "nodes_Place" SELECT "a.id" AS "id" FROM read_parquet('/kg/Place.parquet')`,
			},
		},
		{
			name:        "empty parquet column list",
			table:       lbdb.NodeTable{Name: "Empty"},
			parquetCols: nil,
			path:        "/kg/Empty.parquet",
			expectedErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := planNodeImport(tc.table, tc.parquetCols, tc.path)
			if tc.expectedErr {
				if err == nil {
					t.Fatal("planNodeImport() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("planNodeImport() returned error: %v", err)
			}
			if diff := cmp.Diff(tc.expected, p); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanRelImport(t *testing.T) {
	testCases := []struct {
		name        string
		table       lbdb.RelTable
		parquetCols []string
		path        string
		expected    tablePlan
		expectedErr bool
	}{
		{
			name: "endpoints map to source and target",
			table: lbdb.RelTable{
				Name: "Knows",
				From: "Person",
				To:   "Person",
				Props: []lbdb.Column{
					{Name: "since", Type: "DATE"},
					{Name: "weight", Type: "DOUBLE"},
				},
			},
			parquetCols: []string{"a.id", "b.id", "r.since", "r.weight"},
			path:        "/kg/Knows_Person_Person.parquet",
			expected: tablePlan{
				Table:  "edges_Knows",
				Create: `CREATE TABLE "edges_Knows" ("source" BIGINT, "target" BIGINT, "since" DATE, "weight" DOUBLE)`,
				Insert: `INSERT INTO "edges_Knows" SELECT "a.id" AS "source", "b.id" AS "target", "r.since" AS "since", "r.weight" AS "weight" FROM read_parquet('/kg/Knows_Person_Person.parquet')`,
			},
		},
		{
			name:        "no properties",
			table:       lbdb.RelTable{Name: "LocatedIn", From: "Event", To: "Place"},
			parquetCols: []string{"a.id", "b.id"},
			path:        "/kg/LocatedIn.parquet",
			expected: tablePlan{
				Table:  "edges_LocatedIn",
				Create: `CREATE TABLE "edges_LocatedIn" ("source" BIGINT, "target" BIGINT)`,
				Insert: `INSERT INTO "edges_LocatedIn" SELECT "a.id" AS "source", "b.id" AS "target" FROM read_parquet('/kg/LocatedIn.parquet')`,
			},
		},
		{
			name: "endpoint columns out of order",
			table: lbdb.RelTable{
				Name: "WorksAt", From: "Person", To: "Organization",
				Props: []lbdb.Column{{Name: "role", Type: "STRING"}},
			},
			parquetCols: []string{"r.role", "b.id", "a.id"},
			path:        "/kg/WorksAt.parquet",
			expected: tablePlan{
				Table:  "edges_WorksAt",
				Create: `CREATE TABLE "edges_WorksAt" ("source" BIGINT, "target" BIGINT, "role" VARCHAR)`,
				Insert: `INSERT INTO "edges_WorksAt" SELECT "a.id" AS "source", "b.id" AS "target", "r.role" AS "role" FROM read_parquet('/kg/WorksAt.parquet')`,
			},
		},
		{
			name:        "missing endpoint column",
			table:       lbdb.RelTable{Name: "Broken", From: "A", To: "B"},
			parquetCols: []string{"a.id", "r.weight"},
			path:        "/kg/Broken.parquet",
			expectedErr: true,
		},
		{
			name:        "bare id column is not an endpoint",
			table:       lbdb.RelTable{Name: "Bare", From: "A", To: "B"},
			parquetCols: []string{"id", "b.id"},
			path:        "/kg/Bare.parquet",
			expectedErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := planRelImport(tc.table, tc.parquetCols, tc.path)
			if tc.expectedErr {
				if err == nil {
					t.Fatal("planRelImport() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("planRelImport() returned error: %v", err)
			}
			if diff := cmp.Diff(tc.expected, p); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReportCreated(t *testing.T) {
	r := &Report{Tables: []TableReport{
		{Table: "nodes_Person", Rows: 10},
		{Table: "nodes_Ghost", Skipped: true},
		{Table: "edges_Knows", Rows: 4},
	}}
	if got := r.Created(); got != 2 {
		t.Errorf("Created() = %d, want 2", got)
	}
}
