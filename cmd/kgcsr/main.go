// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Converts a relational knowledge graph into CSR adjacency tables and a
// storage directory.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/ladybugdb/smallkgs/pkg/csr"
	"github.com/pkg/errors"
)

var (
	sourceDB      = flag.String("source-db", "", "Input path to the relational DuckDB file.")
	outputDB      = flag.String("output-db", "", "Output path for the CSR DuckDB file. May equal -source-db to convert in place.")
	storage       = flag.String("storage", "", "Output path for the storage directory.")
	csrTable      = flag.String("csr-table", "", "Restrict conversion to one edge table, with or without the edges_ prefix. Empty converts all.")
	threads       = flag.Int("threads", 0, "DuckDB thread cap. 0 keeps the engine default.")
	memoryLimitGB = flag.Int("memory-limit-gb", 0, "DuckDB memory cap in GB. 0 keeps the engine default.")
)

func run() error {
	flag.Parse()

	if *sourceDB == "" || *outputDB == "" || *storage == "" {
		flag.Usage()
		return errors.New("-source-db, -output-db, and -storage are required")
	}

	report, err := csr.Convert(context.Background(), csr.Options{
		SourceDB:      *sourceDB,
		OutputDB:      *outputDB,
		StorageDir:    *storage,
		Table:         *csrTable,
		Threads:       *threads,
		MemoryLimitGB: *memoryLimitGB,
	})
	if err != nil {
		return err
	}
	for _, g := range report.Graphs {
		log.Printf("Built %s (%s -> %s): %d edges, build %s", g.Rel, g.From, g.To, g.Edges, g.BuildID)
	}
	log.Printf("Converted %d edge tables into %s", len(report.Graphs), *outputDB)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
