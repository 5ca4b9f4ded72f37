// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package graphstd reads and writes the standard graph storage layout.
//
// A graph is stored on disk in the following structure:
//
//	<storage_path>/
//	  graph.yaml
//	  vertex/<NodeTable>/part-00000.parquet
//	  ...
//	  edge/<RelTable>/offsets.parquet
//	  edge/<RelTable>/targets.parquet
//	  edge/<RelTable>/properties.parquet
//	  ...
//
// The graph.yaml file is the Descriptor: it names the graph and lists every
// vertex and edge table with its row count and file paths.
//
// Vertex parquet rows are sorted by the table's primary key, so a row's
// position is its CSR ordinal. The offsets file holds one (node, first_edge)
// row per vertex plus a trailing sentinel row; the targets file holds one
// (pos, node) row per edge, where node is the target's ordinal. The
// properties file is present only for rel tables with property columns and
// is row-aligned with the targets file.
package graphstd
