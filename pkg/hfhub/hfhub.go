// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

// Package hfhub implements the subset of the Hugging Face Hub API needed to
// create dataset repositories and push files to them.
package hfhub

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/ladybugdb/smallkgs/internal/httpx"
	"github.com/ladybugdb/smallkgs/internal/urlx"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var endpointURL = urlx.MustParse("https://huggingface.co")

// defaultRevision is the branch commits land on.
const defaultRevision = "main"

// userAgent identifies this client to the Hub.
const userAgent = "ladybugdb-smallkgs/1.0"

// ErrNotFound indicates the requested repository does not exist.
var ErrNotFound = errors.New("repository not found")

// Identity describes the account a token belongs to.
type Identity struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Orgs []Org  `json:"orgs"`
}

// Org is an organization the account belongs to.
type Org struct {
	Name string `json:"name"`
}

// RepoFile is one file of a repository.
type RepoFile struct {
	Path string `json:"rfilename"`
}

// DatasetInfo is the Hub metadata of a dataset repository.
type DatasetInfo struct {
	ID           string     `json:"id"`
	Private      bool       `json:"private"`
	SHA          string     `json:"sha"`
	LastModified time.Time  `json:"lastModified"`
	Files        []RepoFile `json:"siblings"`
}

// File reports whether the repository contains the named file.
func (d *DatasetInfo) File(path string) bool {
	for _, f := range d.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}

// CreateDatasetRequest describes a dataset repository to create.
type CreateDatasetRequest struct {
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Type         string `json:"type"`
	Private      bool   `json:"private"`
}

// CreatedRepo is the Hub's response to a repository creation.
type CreatedRepo struct {
	URL string `json:"url"`
}

// Hub is a Hugging Face Hub API client for dataset repositories.
type Hub interface {
	WhoAmI(context.Context) (*Identity, error)
	DatasetInfo(context.Context, string) (*DatasetInfo, error)
	CreateDataset(context.Context, CreateDatasetRequest) (*CreatedRepo, error)
	UploadFile(context.Context, string, CommitFile, string) (*CommitResult, error)
	UploadFolder(context.Context, string, billy.Filesystem, string, string) (*CommitResult, error)
}

// HTTPHub is a Hub implementation that uses the huggingface.co HTTP API.
type HTTPHub struct {
	Client httpx.BasicClient
	// Endpoint overrides the huggingface.co endpoint when set.
	Endpoint *url.URL
}

type config struct {
	endpoint  *url.URL
	userAgent string
	throttle  time.Duration
	base      httpx.BasicClient
}

// Option configures an HTTPHub.
type Option func(*config)

// WithEndpoint points the client at an alternate Hub endpoint.
func WithEndpoint(u *url.URL) Option {
	return func(c *config) {
		c.endpoint = u
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// WithThrottle spaces requests at least d apart.
func WithThrottle(d time.Duration) Option {
	return func(c *config) {
		c.throttle = d
	}
}

// WithBaseClient substitutes the transport under the auth and User-Agent
// layers.
func WithBaseClient(client httpx.BasicClient) Option {
	return func(c *config) {
		c.base = client
	}
}

// NewHTTPHub returns an HTTPHub that authenticates with token.
func NewHTTPHub(token string, opts ...Option) *HTTPHub {
	cfg := config{userAgent: userAgent}
	for _, opt := range opts {
		opt(&cfg)
	}
	var client httpx.BasicClient
	if cfg.base != nil {
		client = cfg.base
	} else {
		client = &http.Client{Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}}
	}
	client = &httpx.WithUserAgent{BasicClient: client, UserAgent: cfg.userAgent}
	if cfg.throttle > 0 {
		client = &httpx.RateLimitedClient{BasicClient: client, Ticker: time.NewTicker(cfg.throttle)}
	}
	return &HTTPHub{Client: client, Endpoint: cfg.endpoint}
}

func (h HTTPHub) endpoint() *url.URL {
	if h.Endpoint != nil {
		return h.Endpoint
	}
	return endpointURL
}

// WhoAmI returns the identity behind the client's token.
func (h HTTPHub) WhoAmI(ctx context.Context) (*Identity, error) {
	pathURL, err := url.Parse("/api/whoami-v2")
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint().ResolveReference(pathURL).String(), nil)
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.New("invalid or expired token")
	}
	if resp.StatusCode != 200 {
		return nil, errors.Errorf("hub api error: %v", resp.Status)
	}
	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, err
	}
	return &id, nil
}

// DatasetInfo returns the metadata of a dataset repository, or ErrNotFound
// if it does not exist.
func (h HTTPHub) DatasetInfo(ctx context.Context, repo string) (*DatasetInfo, error) {
	pathURL, err := url.Parse(path.Join("/api/datasets", repo))
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint().ResolveReference(pathURL).String(), nil)
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != 200 {
		return nil, errors.Errorf("hub api error: %v", resp.Status)
	}
	var info DatasetInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CreateDataset creates a dataset repository. An already existing repository
// is not an error: the Hub's conflict response is mapped to the repository's
// URL, matching create-if-missing semantics.
func (h HTTPHub) CreateDataset(ctx context.Context, cr CreateDatasetRequest) (*CreatedRepo, error) {
	cr.Type = "dataset"
	body, err := json.Marshal(cr)
	if err != nil {
		return nil, err
	}
	pathURL, err := url.Parse("/api/repos/create")
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
	if resp.StatusCode == http.StatusConflict {
		u := h.endpoint().ResolveReference(&url.URL{Path: path.Join("/datasets", cr.Organization, cr.Name)})
		return &CreatedRepo{URL: u.String()}, nil
	}
	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return nil, errors.Errorf("hub api error: %v", resp.Status)
	}
	var created CreatedRepo
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

var _ Hub = &HTTPHub{}
