// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/ladybugdb/smallkgs/pkg/hfhub"
	"github.com/pkg/errors"
)

// Options configures a Publish.
type Options struct {
	// InputDir contains the variant's format subdirectories.
	InputDir string
	// Org and Name identify the target dataset repository.
	Org  string
	Name string
	// Variant overrides the variant name; empty derives it from InputDir.
	Variant string
	// Private creates the repository private when it does not exist yet.
	Private bool
	// Hub is the destination API client.
	Hub hfhub.Hub
}

// Report summarizes a Publish.
type Report struct {
	RepoID    string
	RepoURL   string
	Variant   string
	Formats   []string
	NewRepo   bool
	CardAdded bool
}

// Publish stages the variant directory and pushes it to the dataset
// repository, creating the repository and its card when absent. All of the
// variant's files land in one commit under the variant's subdirectory.
func Publish(ctx context.Context, opts Options) (*Report, error) {
	abs, err := filepath.Abs(opts.InputDir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", opts.InputDir)
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, errors.Wrap(err, "input directory")
	} else if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", abs)
	}
	variant := opts.Variant
	if variant == "" {
		variant = filepath.Base(abs)
	}
	repoID := opts.Org + "/" + opts.Name

	id, err := opts.Hub.WhoAmI(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "checking hub login")
	}
	log.Printf("Logged in as: %s", id.Name)
	exists, hasCard := true, false
	if info, err := opts.Hub.DatasetInfo(ctx, repoID); errors.Is(err, hfhub.ErrNotFound) {
		exists = false
	} else if err != nil {
		return nil, errors.Wrap(err, "checking repository")
	} else {
		hasCard = info.File("README.md")
	}
	created, err := opts.Hub.CreateDataset(ctx, hfhub.CreateDatasetRequest{
		Name:         opts.Name,
		Organization: opts.Org,
		Private:      opts.Private,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating repository")
	}
	if !exists {
		log.Printf("Dataset repository created: %s", repoID)
	}

	staging, err := os.MkdirTemp("", "small-kgs-"+variant+"-")
	if err != nil {
		return nil, errors.Wrap(err, "creating staging dir")
	}
	defer os.RemoveAll(staging)
	staged := osfs.New(staging)
	src := osfs.New(abs)
	var formats []string
	bar := pb.StartNew(len(Formats))
	for _, format := range Formats {
		ok, err := StageFormat(staged, src, format)
		if err != nil {
			return nil, err
		}
		if ok {
			formats = append(formats, format)
		}
		bar.Increment()
	}
	bar.Finish()
	if len(formats) == 0 {
		return nil, errors.Errorf("%s has none of the variant formats (%s)", abs, strings.Join(Formats, ", "))
	}
	log.Printf("Staged formats: %s", strings.Join(formats, ", "))

	report := &Report{RepoID: repoID, RepoURL: created.URL, Variant: variant, Formats: formats, NewRepo: !exists}
	if !exists || !hasCard {
		card, err := Card(variant, repoID)
		if err != nil {
			return nil, err
		}
		if _, err := opts.Hub.UploadFile(ctx, repoID, hfhub.CommitFile{Path: "README.md", Content: card}, "Add dataset card"); err != nil {
			return nil, errors.Wrap(err, "uploading dataset card")
		}
		log.Printf("Uploaded dataset card")
		report.CardAdded = true
	}
	if _, err := opts.Hub.UploadFolder(ctx, repoID, staged, variant, fmt.Sprintf("Add %s variant", variant)); err != nil {
		return nil, errors.Wrapf(err, "uploading %s variant", variant)
	}
	log.Printf("Uploaded %s variant", variant)
	return report, nil
}
