// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package csr converts edge lists into compressed sparse row adjacency.
package csr

import (
	"github.com/pkg/errors"
)

// Edge is a directed edge between node ordinals.
type Edge struct {
	Source int
	Target int
}

// Matrix is a compressed sparse row adjacency layout. Offsets carries one
// entry per source node plus a trailing sentinel: the targets of node i
// occupy Targets[Offsets[i]:Offsets[i+1]].
type Matrix struct {
	Offsets []int64
	Targets []int64
}

// NumNodes returns the number of source nodes.
func (m *Matrix) NumNodes() int {
	return len(m.Offsets) - 1
}

// NumEdges returns the number of edges.
func (m *Matrix) NumEdges() int {
	return len(m.Targets)
}

// Row returns the target ordinals of node i.
func (m *Matrix) Row(i int) []int64 {
	return m.Targets[m.Offsets[i]:m.Offsets[i+1]]
}

// Build lays out edges as a compressed sparse row matrix over sourceCount
// source nodes and targetCount target nodes. Edges need not be sorted;
// within a row, targets keep the input order. Self loops and duplicate
// edges are preserved.
func Build(sourceCount, targetCount int, edges []Edge) (*Matrix, error) {
	if sourceCount < 0 || targetCount < 0 {
		return nil, errors.Errorf("negative node count: %d source, %d target", sourceCount, targetCount)
	}
	offsets := make([]int64, sourceCount+1)
	for _, e := range edges {
		if e.Source < 0 || e.Source >= sourceCount {
			return nil, errors.Errorf("edge source ordinal %d out of range [0, %d)", e.Source, sourceCount)
		}
		if e.Target < 0 || e.Target >= targetCount {
			return nil, errors.Errorf("edge target ordinal %d out of range [0, %d)", e.Target, targetCount)
		}
		offsets[e.Source+1]++
	}
	for i := 1; i <= sourceCount; i++ {
		offsets[i] += offsets[i-1]
	}
	targets := make([]int64, len(edges))
	next := make([]int64, sourceCount)
	copy(next, offsets[:sourceCount])
	for _, e := range edges {
		targets[next[e.Source]] = int64(e.Target)
		next[e.Source]++
	}
	return &Matrix{Offsets: offsets, Targets: targets}, nil
}

// Ordinals assigns each key its position in the given order. The resulting
// map translates stored node keys into matrix ordinals.
func Ordinals(keys []int64) (map[int64]int, error) {
	ords := make(map[int64]int, len(keys))
	for i, k := range keys {
		if _, ok := ords[k]; ok {
			return nil, errors.Errorf("duplicate node key %d", k)
		}
		ords[k] = i
	}
	return ords, nil
}
