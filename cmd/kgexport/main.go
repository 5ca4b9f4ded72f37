// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Converts a graph store export directory into a relational DuckDB file.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/ladybugdb/smallkgs/pkg/exporter"
	"github.com/pkg/errors"
)

var (
	inputDB       = flag.String("input-db", "", "Input path to the graph store export directory.")
	output        = flag.String("output", "", "Output path for the relational DuckDB file.")
	threads       = flag.Int("threads", 0, "DuckDB thread cap. 0 keeps the engine default.")
	memoryLimitGB = flag.Int("memory-limit-gb", 0, "DuckDB memory cap in GB. 0 keeps the engine default.")
)

func run() error {
	flag.Parse()

	if *inputDB == "" || *output == "" {
		flag.Usage()
		return errors.New("both -input-db and -output are required")
	}

	report, err := exporter.Run(context.Background(), exporter.Options{
		ExportDir:     *inputDB,
		OutputPath:    *output,
		Threads:       *threads,
		MemoryLimitGB: *memoryLimitGB,
	})
	if err != nil {
		return err
	}
	log.Printf("Converted %d tables into %s", report.Created(), *output)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
