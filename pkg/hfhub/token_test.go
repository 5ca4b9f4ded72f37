// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package hfhub

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveToken(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "hf_env")
		tok, err := ResolveToken("hf_flag")
		if err != nil {
			t.Fatalf("ResolveToken(): %v", err)
		}
		if tok != "hf_flag" {
			t.Errorf("ResolveToken() = %q, want %q", tok, "hf_flag")
		}
	})
	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "hf_env")
		tok, err := ResolveToken("")
		if err != nil {
			t.Fatalf("ResolveToken(): %v", err)
		}
		if tok != "hf_env" {
			t.Errorf("ResolveToken() = %q, want %q", tok, "hf_env")
		}
	})
	t.Run("token file fallback", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "")
		dir := t.TempDir()
		t.Setenv("HF_HOME", dir)
		if err := os.WriteFile(filepath.Join(dir, "token"), []byte("hf_file\n"), 0600); err != nil {
			t.Fatal(err)
		}
		tok, err := ResolveToken("")
		if err != nil {
			t.Fatalf("ResolveToken(): %v", err)
		}
		if tok != "hf_file" {
			t.Errorf("ResolveToken() = %q, want %q", tok, "hf_file")
		}
	})
	t.Run("missing everywhere", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "")
		t.Setenv("HF_HOME", t.TempDir())
		if _, err := ResolveToken(""); err == nil {
			t.Fatal("ResolveToken() expected error")
		}
	})
	t.Run("empty token file", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "")
		dir := t.TempDir()
		t.Setenv("HF_HOME", dir)
		if err := os.WriteFile(filepath.Join(dir, "token"), []byte("  \n"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := ResolveToken(""); err == nil {
			t.Fatal("ResolveToken() expected error")
		}
	})
}
