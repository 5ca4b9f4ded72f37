// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package hfhub

import (
	"bytes"
	"context"
	"crypto"
	_ "crypto/sha256" // Register SHA-256 for LFS oids
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ladybugdb/smallkgs/internal/hashext"
	"github.com/pkg/errors"
)

// UploadMode selects how a file's content reaches the Hub.
type UploadMode string

// Small files travel base64-encoded inside the commit; large or binary
// files go through git-lfs first. The Hub decides per file.
const (
	UploadModeRegular UploadMode = "regular"
	UploadModeLFS     UploadMode = "lfs"
)

// sampleSize is how much of a file the preupload check samples.
const sampleSize = 512

// CommitFile is one file of a commit, with its full content.
type CommitFile struct {
	Path    string
	Content []byte
}

// LFSPointer identifies an LFS object committed by reference.
type LFSPointer struct {
	Path string
	OID  string
	Size int64
}

// CommitResult is the Hub's response to a commit.
type CommitResult struct {
	URL string `json:"commitUrl"`
	OID string `json:"commitOid"`
}

type preuploadFile struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Sample string `json:"sample"`
}

type preuploadRequest struct {
	Files []preuploadFile `json:"files"`
}

type preuploadResult struct {
	Files []struct {
		Path       string     `json:"path"`
		UploadMode UploadMode `json:"uploadMode"`
	} `json:"files"`
}

// PreuploadCheck asks the Hub how each file should be uploaded. The result
// maps each file path to its UploadMode.
func (h HTTPHub) PreuploadCheck(ctx context.Context, repo string, files []CommitFile) (map[string]UploadMode, error) {
	var pr preuploadRequest
	for _, f := range files {
		sample := f.Content
		if len(sample) > sampleSize {
			sample = sample[:sampleSize]
		}
		pr.Files = append(pr.Files, preuploadFile{
			Path:   f.Path,
			Size:   int64(len(f.Content)),
			Sample: base64.StdEncoding.EncodeToString(sample),
		})
	}
	body, err := json.Marshal(pr)
	if err != nil {
		return nil, err
	}
	pathURL, err := url.Parse(path.Join("/api/datasets", repo, "preupload", defaultRevision))
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint().ResolveReference(pathURL).String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, errors.Errorf("hub api error: %v", resp.Status)
	}
	var result preuploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	modes := make(map[string]UploadMode, len(result.Files))
	for _, f := range result.Files {
		modes[f.Path] = f.UploadMode
	}
	return modes, nil
}

type commitHeader struct {
	Summary string `json:"summary"`
}

type commitRegularFile struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
}

type commitLFSFile struct {
	Path string `json:"path"`
	Algo string `json:"algo"`
	OID  string `json:"oid"`
	Size int64  `json:"size"`
}

type commitLine struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// CommitFiles commits regular files and previously uploaded LFS objects in
// one commit on the main branch. The payload is newline-delimited JSON: a
// header line followed by one line per file.
func (h HTTPHub) CommitFiles(ctx context.Context, repo, message string, regular []CommitFile, lfs []LFSPointer) (*CommitResult, error) {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	if err := enc.Encode(commitLine{Key: "header", Value: commitHeader{Summary: message}}); err != nil {
		return nil, err
	}
	for _, f := range regular {
		line := commitLine{Key: "file", Value: commitRegularFile{
			Content:  base64.StdEncoding.EncodeToString(f.Content),
			Path:     f.Path,
			Encoding: "base64",
		}}
		if err := enc.Encode(line); err != nil {
			return nil, err
		}
	}
	for _, p := range lfs {
		line := commitLine{Key: "lfsFile", Value: commitLFSFile{
			Path: p.Path,
			Algo: "sha256",
			OID:  p.OID,
			Size: p.Size,
		}}
		if err := enc.Encode(line); err != nil {
			return nil, err
		}
	}
	pathURL, err := url.Parse(path.Join("/api/datasets", repo, "commit", defaultRevision))
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint().ResolveReference(pathURL).String(), &body)
	req.Header.Set("Content-Type", "application/x-ndjson")
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, errors.Errorf("hub api error: %v", resp.Status)
	}
	var result CommitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LFSObject identifies an object to negotiate with the LFS server.
type LFSObject struct {
	OID  string `json:"oid"`
	Size int64  `json:"size"`
}

type lfsBatchRequest struct {
	Operation string      `json:"operation"`
	Transfers []string    `json:"transfers"`
	Objects   []LFSObject `json:"objects"`
	HashAlgo  string      `json:"hash_algo"`
}

type lfsAction struct {
	Href   string            `json:"href"`
	Header map[string]string `json:"header"`
}

type lfsBatchObject struct {
	OID     string               `json:"oid"`
	Size    int64                `json:"size"`
	Actions map[string]lfsAction `json:"actions"`
	Error   *lfsBatchError       `json:"error"`
}

type lfsBatchError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lfsBatchResult struct {
	Objects []lfsBatchObject `json:"objects"`
}

// lfsBatch negotiates uploads with the repository's LFS server. Objects
// returned without an upload action are already present server-side.
func (h HTTPHub) lfsBatch(ctx context.Context, repo string, objects []LFSObject) (*lfsBatchResult, error) {
	body, err := json.Marshal(lfsBatchRequest{
		Operation: "upload",
		Transfers: []string{"basic", "multipart"},
		Objects:   objects,
		HashAlgo:  "sha256",
	})
	if err != nil {
		return nil, err
	}
	pathURL, err := url.Parse(path.Join("/datasets", repo+".git", "info", "lfs", "objects", "batch"))
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint().ResolveReference(pathURL).String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/vnd.git-lfs+json")
	req.Header.Set("Accept", "application/vnd.git-lfs+json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, errors.Errorf("lfs batch error: %v", resp.Status)
	}
	var result lfsBatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// lfsPut transfers one object's content to the address the batch call
// returned.
func (h HTTPHub) lfsPut(ctx context.Context, action lfsAction, content []byte) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPut, action.Href, bytes.NewReader(content))
	for k, v := range action.Header {
		req.Header.Set(k, v)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("lfs upload error: %v", resp.Status)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// lfsOID computes an object's SHA-256 content address.
func lfsOID(content []byte) string {
	h := hashext.NewTypedHash(crypto.SHA256)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// UploadFile uploads one file and commits it with the given message.
func (h HTTPHub) UploadFile(ctx context.Context, repo string, file CommitFile, message string) (*CommitResult, error) {
	return h.uploadFiles(ctx, repo, []CommitFile{file}, message)
}

// UploadFolder uploads every file under fs, placed under pathInRepo, as a
// single commit with the given message.
func (h HTTPHub) UploadFolder(ctx context.Context, repo string, fs billy.Filesystem, pathInRepo, message string) (*CommitResult, error) {
	var files []CommitFile
	err := util.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		content, err := util.ReadFile(fs, p)
		if err != nil {
			return err
		}
		files = append(files, CommitFile{
			Path:    path.Join(pathInRepo, strings.TrimPrefix(p, "/")),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking folder")
	}
	if len(files) == 0 {
		return nil, errors.New("folder has no files")
	}
	return h.uploadFiles(ctx, repo, files, message)
}

// uploadFiles routes each file by its preupload mode, pushes LFS content,
// and commits everything at once.
func (h HTTPHub) uploadFiles(ctx context.Context, repo string, files []CommitFile, message string) (*CommitResult, error) {
	modes, err := h.PreuploadCheck(ctx, repo, files)
	if err != nil {
		return nil, errors.Wrap(err, "preupload check")
	}
	var regular, large []CommitFile
	for _, f := range files {
		if modes[f.Path] == UploadModeLFS {
			large = append(large, f)
		} else {
			regular = append(regular, f)
		}
	}
	var pointers []LFSPointer
	if len(large) > 0 {
		objects := make([]LFSObject, len(large))
		for i, f := range large {
			objects[i] = LFSObject{OID: lfsOID(f.Content), Size: int64(len(f.Content))}
			pointers = append(pointers, LFSPointer{Path: f.Path, OID: objects[i].OID, Size: objects[i].Size})
		}
		batch, err := h.lfsBatch(ctx, repo, objects)
		if err != nil {
			return nil, err
		}
		byOID := make(map[string][]byte, len(large))
		for i, obj := range objects {
			byOID[obj.OID] = large[i].Content
		}
		for _, obj := range batch.Objects {
			if obj.Error != nil {
				return nil, errors.Errorf("lfs object %s rejected: %s", obj.OID, obj.Error.Message)
			}
			action, ok := obj.Actions["upload"]
			if !ok {
				continue // Already on the server
			}
			if err := h.lfsPut(ctx, action, byOID[obj.OID]); err != nil {
				return nil, errors.Wrapf(err, "uploading lfs object %s", obj.OID)
			}
		}
	}
	result, err := h.CommitFiles(ctx, repo, message, regular, pointers)
	if err != nil {
		return nil, errors.Wrap(err, "committing files")
	}
	return result, nil
}
