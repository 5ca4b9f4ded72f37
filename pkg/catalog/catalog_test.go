// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testTables = []Table{
	{Name: "nodes_Person", Kind: KindNode, Label: "Person", PrimaryKey: "id"},
	{Name: "nodes_Place", Kind: KindNode, Label: "Place", PrimaryKey: "id"},
	{Name: "edges_Knows", Kind: KindRel, Label: "Knows", From: "Person", To: "Person"},
	{Name: "edges_LivesIn", Kind: KindRel, Label: "LivesIn", From: "Person", To: "Place"},
}

func TestNodesAndRels(t *testing.T) {
	nodes := Nodes(testTables)
	if diff := cmp.Diff([]string{"nodes_Person", "nodes_Place"}, names(nodes)); diff != "" {
		t.Errorf("Nodes mismatch (-want +got):\n%s", diff)
	}
	rels := Rels(testTables)
	if diff := cmp.Diff([]string{"edges_Knows", "edges_LivesIn"}, names(rels)); diff != "" {
		t.Errorf("Rels mismatch (-want +got):\n%s", diff)
	}
}

func TestFindLabel(t *testing.T) {
	got, ok := FindLabel(testTables, KindRel, "LivesIn")
	if !ok || got.To != "Place" {
		t.Errorf("FindLabel(rel, LivesIn) = %+v, %v", got, ok)
	}
	if _, ok := FindLabel(testTables, KindNode, "LivesIn"); ok {
		t.Error("FindLabel(node, LivesIn) unexpectedly found")
	}
	if _, ok := FindLabel(testTables, KindRel, "Absent"); ok {
		t.Error("FindLabel(rel, Absent) unexpectedly found")
	}
}

func names(tables []Table) []string {
	var out []string
	for _, t := range tables {
		out = append(out, t.Name)
	}
	return out
}
