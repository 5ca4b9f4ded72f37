// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// cardFrontMatter is the YAML header of the dataset card, in the layout the
// Hub's dataset viewer expects.
type cardFrontMatter struct {
	Language            []string     `yaml:"language"`
	License             string       `yaml:"license"`
	LibraryName         string       `yaml:"library_name"`
	PrettyName          string       `yaml:"pretty_name"`
	SizeCategories      []string     `yaml:"size_categories"`
	AnnotationsCreators []string     `yaml:"annotations_creators"`
	SourceDatasets      []string     `yaml:"source_datasets"`
	TaskCategories      []string     `yaml:"task_categories"`
	TaskIDs             []string     `yaml:"task_ids"`
	Configs             []string     `yaml:"configs"`
	DatasetInfo         []cardConfig `yaml:"dataset_info"`
}

type cardConfig struct {
	ConfigName   string        `yaml:"config_name"`
	Features     []cardFeature `yaml:"features"`
	Splits       []cardSplit   `yaml:"splits"`
	DownloadSize int64         `yaml:"download_size"`
	DatasetSize  int64         `yaml:"dataset_size"`
}

type cardFeature struct {
	Name  string `yaml:"name"`
	Dtype string `yaml:"dtype"`
}

type cardSplit struct {
	Name        string `yaml:"name"`
	NumExamples int    `yaml:"num_examples"`
}

const cardBody = `# Small Knowledge Graphs - %[1]s

A knowledge graph variant stored in multiple formats for graph ML research and development.

## Dataset Structure

This dataset contains knowledge graphs in three formats under the ` + "`%[1]s/`" + ` directory:

### graph-std
Standard graph format with edges and nodes as structured data.

### duckdb
DuckDB database format for efficient analytical queries.

### lbdb
LadybugDB format for graph database operations.

## Usage

### Load this variant
` + "```python" + `
from datasets import load_dataset
dataset = load_dataset("%[2]s", name="%[1]s")
` + "```" + `

## Variant Contents

- **Variant Name**: %[1]s
- **Storage Path**: %[1]s/
`

// Card renders the dataset README for a variant of the given repository.
func Card(variant, repoID string) ([]byte, error) {
	fm := cardFrontMatter{
		Language:            []string{"en"},
		License:             "mit",
		LibraryName:         "ladybug",
		PrettyName:          "Small Knowledge Graphs - " + variant,
		SizeCategories:      []string{"n<1K"},
		AnnotationsCreators: []string{"no-annotation"},
		SourceDatasets:      []string{"original"},
		TaskCategories:      []string{"graph-analysis"},
		TaskIDs:             []string{"link-prediction", "node-classification", "knowledge-graph-completion"},
		Configs:             []string{variant},
		DatasetInfo: []cardConfig{{
			ConfigName: variant,
			Features: []cardFeature{
				{Name: "edges", Dtype: "list"},
				{Name: "nodes", Dtype: "list"},
				{Name: "metadata", Dtype: "dict"},
			},
			Splits: []cardSplit{{Name: "train", NumExamples: 1}},
		}},
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&fm); err != nil {
		return nil, errors.Wrap(err, "marshalling card header")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "marshalling card header")
	}
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, cardBody, variant, repoID)
	return buf.Bytes(), nil
}
