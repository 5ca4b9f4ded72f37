// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package hashext

import (
	"bytes"
	"crypto"
	_ "crypto/sha256"
	"testing"
)

func TestTypedHash(t *testing.T) {
	h := NewTypedHash(crypto.SHA256)
	if h.Algorithm != crypto.SHA256 {
		t.Errorf("Algorithm = %v, expected %v", h.Algorithm, crypto.SHA256)
	}

	data := []byte("test data")
	n, err := h.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("Write returned %d, expected %d", n, len(data))
	}

	want := crypto.SHA256.New()
	want.Write(data)
	if !bytes.Equal(h.Sum(nil), want.Sum(nil)) {
		t.Errorf("Sum differs from direct %v sum", crypto.SHA256)
	}

	h.Reset()
	if !bytes.Equal(h.Sum(nil), crypto.SHA256.New().Sum(nil)) {
		t.Errorf("Reset did not clear hash state")
	}
}
