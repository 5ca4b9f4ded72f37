// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package graphstd

import (
	"context"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TableCopier writes the rows of a query as a parquet file at a
// layout-relative path. The database engine writes parquet payloads itself,
// so implementations resolve the relative path against the storage root.
type TableCopier interface {
	CopyParquet(ctx context.Context, query, relPath string) error
}

// Writer materializes a storage directory one table at a time. Directory
// structure and the descriptor go through the filesystem; parquet payloads
// go through the TableCopier. Finish writes the descriptor and must be the
// last call.
type Writer struct {
	fs     billy.Filesystem
	copier TableCopier
	desc   Descriptor
}

// NewWriter returns a Writer rooted at fs for a graph with the given name.
func NewWriter(fs billy.Filesystem, name string, copier TableCopier) *Writer {
	return &Writer{fs: fs, copier: copier, desc: Descriptor{Name: name}}
}

// WriteVertex writes one vertex table from the rows of query. The query must
// order rows by the table's primary key.
func (w *Writer) WriteVertex(ctx context.Context, entry VertexEntry, query string) error {
	file := VertexPath(entry.Table)
	if err := w.fs.MkdirAll(path.Dir(file), 0755); err != nil {
		return errors.Wrapf(err, "creating vertex dir for %s", entry.Table)
	}
	if err := w.copier.CopyParquet(ctx, query, file); err != nil {
		return errors.Wrapf(err, "writing vertex table %s", entry.Table)
	}
	entry.File = file
	w.desc.Vertices = append(w.desc.Vertices, entry)
	return nil
}

// WriteEdge writes one edge table's CSR files. propertiesQuery may be empty
// for rel tables without property columns; no properties file is written
// then. The queries must share the edge ordering so rows stay aligned.
func (w *Writer) WriteEdge(ctx context.Context, entry EdgeEntry, offsetsQuery, targetsQuery, propertiesQuery string) error {
	if err := w.fs.MkdirAll(path.Join(EdgeDir, entry.Rel), 0755); err != nil {
		return errors.Wrapf(err, "creating edge dir for %s", entry.Rel)
	}
	entry.Offsets = OffsetsPath(entry.Rel)
	if err := w.copier.CopyParquet(ctx, offsetsQuery, entry.Offsets); err != nil {
		return errors.Wrapf(err, "writing offsets of %s", entry.Rel)
	}
	entry.Targets = TargetsPath(entry.Rel)
	if err := w.copier.CopyParquet(ctx, targetsQuery, entry.Targets); err != nil {
		return errors.Wrapf(err, "writing targets of %s", entry.Rel)
	}
	if propertiesQuery != "" {
		entry.Properties = PropertiesPath(entry.Rel)
		if err := w.copier.CopyParquet(ctx, propertiesQuery, entry.Properties); err != nil {
			return errors.Wrapf(err, "writing properties of %s", entry.Rel)
		}
	}
	w.desc.Edges = append(w.desc.Edges, entry)
	return nil
}

// Descriptor returns the manifest accumulated so far.
func (w *Writer) Descriptor() *Descriptor {
	return &w.desc
}

// Finish writes the graph.yaml manifest.
func (w *Writer) Finish() error {
	b, err := yaml.Marshal(&w.desc)
	if err != nil {
		return errors.Wrap(err, "marshalling descriptor")
	}
	return errors.Wrapf(util.WriteFile(w.fs, DescriptorName, b, 0644), "writing %s", DescriptorName)
}
