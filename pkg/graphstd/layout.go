// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package graphstd

import "path"

const (
	// DescriptorName is the canonical name of the graph manifest.
	DescriptorName = "graph.yaml"
	// VertexDir is the directory holding vertex tables.
	VertexDir = "vertex"
	// EdgeDir is the directory holding edge tables.
	EdgeDir = "edge"
	// VertexFileName is the name of a vertex table's parquet file.
	VertexFileName = "part-00000.parquet"
	// OffsetsFileName is the name of an edge table's CSR offsets file.
	OffsetsFileName = "offsets.parquet"
	// TargetsFileName is the name of an edge table's CSR targets file.
	TargetsFileName = "targets.parquet"
	// PropertiesFileName is the name of an edge table's properties file.
	PropertiesFileName = "properties.parquet"
)

// VertexPath returns the layout-relative path of a vertex table's parquet file.
func VertexPath(table string) string {
	return path.Join(VertexDir, table, VertexFileName)
}

// OffsetsPath returns the layout-relative path of a rel table's offsets file.
func OffsetsPath(rel string) string {
	return path.Join(EdgeDir, rel, OffsetsFileName)
}

// TargetsPath returns the layout-relative path of a rel table's targets file.
func TargetsPath(rel string) string {
	return path.Join(EdgeDir, rel, TargetsFileName)
}

// PropertiesPath returns the layout-relative path of a rel table's properties file.
func PropertiesPath(rel string) string {
	return path.Join(EdgeDir, rel, PropertiesFileName)
}
