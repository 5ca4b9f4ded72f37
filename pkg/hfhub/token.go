// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package hfhub

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ResolveToken finds the Hub token to use: an explicitly provided value
// wins, then the HF_TOKEN environment variable, then the token file the
// huggingface CLI writes on login.
func ResolveToken(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if tok := os.Getenv("HF_TOKEN"); tok != "" {
		return tok, nil
	}
	path, err := tokenFilePath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.New("no token found: pass a token, set HF_TOKEN, or run huggingface-cli login")
	} else if err != nil {
		return "", errors.Wrap(err, "reading token file")
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", errors.Errorf("token file %s is empty", path)
	}
	return tok, nil
}

// tokenFilePath is where the huggingface CLI stores its token: under
// HF_HOME if set, else under the user cache dir.
func tokenFilePath() (string, error) {
	if home := os.Getenv("HF_HOME"); home != "" {
		return filepath.Join(home, "token"), nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "finding cache dir")
	}
	return filepath.Join(cache, "huggingface", "token"), nil
}
