// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package duckdbx

import "testing"

func TestQuoteIdent(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"nodes_Person", `"nodes_Person"`},
		{"weird name", `"weird name"`},
		{`with"quote`, `"with""quote"`},
		{"", `""`},
	}
	for _, tc := range testCases {
		if got := QuoteIdent(tc.in); got != tc.expected {
			t.Errorf("QuoteIdent(%q) = %s, want %s", tc.in, got, tc.expected)
		}
	}
}

func TestEscapeString(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"/tmp/plain.duckdb", "/tmp/plain.duckdb"},
		{"it's.db", "it''s.db"},
		{"a''b", "a''''b"},
	}
	for _, tc := range testCases {
		if got := EscapeString(tc.in); got != tc.expected {
			t.Errorf("EscapeString(%q) = %q, want %q", tc.in, got, tc.expected)
		}
	}
}
