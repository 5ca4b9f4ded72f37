// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package dataset stages knowledge graph variant directories and publishes
// them to a Hugging Face dataset repository.
package dataset

import (
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/ladybugdb/smallkgs/internal/billyx"
	"github.com/pkg/errors"
)

// Formats are the storage formats a variant directory may carry, in upload
// order.
var Formats = []string{"graph-std", "duckdb", "lbdb"}

// StageFormat copies one format subtree from src into dst. It reports false
// without error when src has no such subtree.
func StageFormat(dst, src billy.Filesystem, format string) (bool, error) {
	if _, err := src.Stat(format); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "checking %s", format)
	}
	sub, err := src.Chroot(format)
	if err != nil {
		return false, errors.Wrapf(err, "opening %s", format)
	}
	if err := dst.MkdirAll(format, 0755); err != nil {
		return false, errors.Wrapf(err, "creating staged %s", format)
	}
	dstSub, err := dst.Chroot(format)
	if err != nil {
		return false, errors.Wrapf(err, "opening staged %s", format)
	}
	return true, errors.Wrapf(billyx.CopyFS(dstSub, sub), "copying %s", format)
}
