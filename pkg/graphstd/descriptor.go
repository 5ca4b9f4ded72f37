// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package graphstd

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Descriptor is the graph.yaml manifest.
type Descriptor struct {
	Name     string        `yaml:"name"`
	Vertices []VertexEntry `yaml:"vertices"`
	Edges    []EdgeEntry   `yaml:"edges"`
}

// VertexEntry describes one vertex table.
type VertexEntry struct {
	Table      string `yaml:"table"`
	PrimaryKey string `yaml:"primary_key"`
	Count      int64  `yaml:"count"`
	File       string `yaml:"file"`
}

// EdgeEntry describes one edge table.
type EdgeEntry struct {
	Rel        string `yaml:"rel"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	Count      int64  `yaml:"count"`
	Offsets    string `yaml:"offsets"`
	Targets    string `yaml:"targets"`
	Properties string `yaml:"properties,omitempty"`
}

// Vertex looks up a vertex entry by table name.
func (d *Descriptor) Vertex(table string) (VertexEntry, bool) {
	for _, v := range d.Vertices {
		if v.Table == table {
			return v, true
		}
	}
	return VertexEntry{}, false
}

// Edge looks up an edge entry by rel name.
func (d *Descriptor) Edge(rel string) (EdgeEntry, bool) {
	for _, e := range d.Edges {
		if e.Rel == rel {
			return e, true
		}
	}
	return EdgeEntry{}, false
}

// ReadDescriptor loads the graph.yaml manifest from a storage directory.
func ReadDescriptor(fs billy.Filesystem) (*Descriptor, error) {
	b, err := util.ReadFile(fs, DescriptorName)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", DescriptorName)
	}
	var d Descriptor
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", DescriptorName)
	}
	return &d, nil
}
