// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package hfhub

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeHTTPClient struct {
	DoFunc func(*http.Request) (*http.Response, error)
}

func (c *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.DoFunc(req)
}

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

func TestHTTPHub_WhoAmI(t *testing.T) {
	testCases := []struct {
		name         string
		httpResponse *http.Response
		httpError    error
		expected     *Identity
		expectedErr  error
		expectedURI  *url.URL
	}{
		{
			name: "Success",
			httpResponse: &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"name":"alice","type":"user","orgs":[{"name":"ladybugdb"}]}`))),
			},
			expected:    &Identity{Name: "alice", Type: "user", Orgs: []Org{{Name: "ladybugdb"}}},
			expectedURI: must(url.Parse("https://huggingface.co/api/whoami-v2")),
		},
		{
			name:         "Bad token",
			httpResponse: &http.Response{StatusCode: 401, Status: http.StatusText(401), Body: io.NopCloser(bytes.NewReader(nil))},
			expectedErr:  errors.New("invalid or expired token"),
			expectedURI:  must(url.Parse("https://huggingface.co/api/whoami-v2")),
		},
		{
			name:        "HTTP Error",
			httpError:   errors.New("network error"),
			expectedErr: errors.New("network error"),
			expectedURI: must(url.Parse("https://huggingface.co/api/whoami-v2")),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hub := HTTPHub{
				Client: &fakeHTTPClient{
					DoFunc: func(req *http.Request) (*http.Response, error) {
						if diff := cmp.Diff(req.URL, tc.expectedURI); diff != "" {
							t.Errorf("URI mismatch: diff\n%v", diff)
						}
						return tc.httpResponse, tc.httpError
					},
				},
			}
			actual, err := hub.WhoAmI(context.Background())
			if err != nil && err.Error() != tc.expectedErr.Error() {
				t.Errorf("Error mismatch: got %v, want %v", err, tc.expectedErr)
			}
			if tc.expected != nil {
				if diff := cmp.Diff(actual, tc.expected); diff != "" {
					t.Errorf("Identity mismatch: diff\n%v", diff)
				}
			}
		})
	}
}

func TestHTTPHub_DatasetInfo(t *testing.T) {
	testCases := []struct {
		name         string
		repo         string
		httpResponse *http.Response
		httpError    error
		expected     *DatasetInfo
		expectedErr  error
		expectedURI  *url.URL
	}{
		{
			name: "Success",
			repo: "ladybugdb/small-kgs",
			httpResponse: &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"id":"ladybugdb/small-kgs","private":false,"sha":"abc123","siblings":[{"rfilename":"README.md"}]}`))),
			},
			expected: &DatasetInfo{
				ID:    "ladybugdb/small-kgs",
				SHA:   "abc123",
				Files: []RepoFile{{Path: "README.md"}},
			},
			expectedURI: must(url.Parse("https://huggingface.co/api/datasets/ladybugdb/small-kgs")),
		},
		{
			name:         "Not found",
			repo:         "ladybugdb/missing",
			httpResponse: &http.Response{StatusCode: 404, Status: http.StatusText(404), Body: io.NopCloser(bytes.NewReader(nil))},
			expectedErr:  ErrNotFound,
			expectedURI:  must(url.Parse("https://huggingface.co/api/datasets/ladybugdb/missing")),
		},
		{
			name:         "HTTP Error Status",
			repo:         "ladybugdb/small-kgs",
			httpResponse: &http.Response{StatusCode: 500, Status: http.StatusText(500), Body: io.NopCloser(bytes.NewReader(nil))},
			expectedErr:  errors.New("hub api error: Internal Server Error"),
			expectedURI:  must(url.Parse("https://huggingface.co/api/datasets/ladybugdb/small-kgs")),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hub := HTTPHub{
				Client: &fakeHTTPClient{
					DoFunc: func(req *http.Request) (*http.Response, error) {
						if diff := cmp.Diff(req.URL, tc.expectedURI); diff != "" {
							t.Errorf("URI mismatch: diff\n%v", diff)
						}
						return tc.httpResponse, tc.httpError
					},
				},
			}
			actual, err := hub.DatasetInfo(context.Background(), tc.repo)
			if err != nil && !errors.Is(err, tc.expectedErr) && err.Error() != tc.expectedErr.Error() {
				t.Errorf("Error mismatch: got %v, want %v", err, tc.expectedErr)
			}
			if tc.expected != nil {
				if diff := cmp.Diff(actual, tc.expected); diff != "" {
					t.Errorf("DatasetInfo mismatch: diff\n%v", diff)
				}
			}
		})
	}
}

func TestHTTPHub_CreateDataset(t *testing.T) {
	testCases := []struct {
		name         string
		request      CreateDatasetRequest
		httpResponse *http.Response
		expected     *CreatedRepo
		expectedErr  error
		expectedBody string
	}{
		{
			name:    "Success",
			request: CreateDatasetRequest{Name: "small-kgs", Organization: "ladybugdb"},
			httpResponse: &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"url":"https://huggingface.co/datasets/ladybugdb/small-kgs"}`))),
			},
			expected:     &CreatedRepo{URL: "https://huggingface.co/datasets/ladybugdb/small-kgs"},
			expectedBody: `{"name":"small-kgs","organization":"ladybugdb","type":"dataset","private":false}`,
		},
		{
			name:         "Already exists",
			request:      CreateDatasetRequest{Name: "small-kgs", Organization: "ladybugdb"},
			httpResponse: &http.Response{StatusCode: 409, Status: http.StatusText(409), Body: io.NopCloser(bytes.NewReader(nil))},
			expected:     &CreatedRepo{URL: "https://huggingface.co/datasets/ladybugdb/small-kgs"},
			expectedBody: `{"name":"small-kgs","organization":"ladybugdb","type":"dataset","private":false}`,
		},
		{
			name:         "Forbidden",
			request:      CreateDatasetRequest{Name: "small-kgs", Organization: "someoneelse", Private: true},
			httpResponse: &http.Response{StatusCode: 403, Status: http.StatusText(403), Body: io.NopCloser(bytes.NewReader(nil))},
			expectedErr:  errors.New("hub api error: Forbidden"),
			expectedBody: `{"name":"small-kgs","organization":"someoneelse","type":"dataset","private":true}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hub := HTTPHub{
				Client: &fakeHTTPClient{
					DoFunc: func(req *http.Request) (*http.Response, error) {
						if req.Method != http.MethodPost {
							t.Errorf("Method mismatch: got %v, want POST", req.Method)
						}
						if got := req.URL.String(); got != "https://huggingface.co/api/repos/create" {
							t.Errorf("URI mismatch: got %v", got)
						}
						body := string(must(io.ReadAll(req.Body)))
						if diff := cmp.Diff(tc.expectedBody, body); diff != "" {
							t.Errorf("Body mismatch (-want +got):\n%s", diff)
						}
						return tc.httpResponse, nil
					},
				},
			}
			actual, err := hub.CreateDataset(context.Background(), tc.request)
			if err != nil && err.Error() != tc.expectedErr.Error() {
				t.Errorf("Error mismatch: got %v, want %v", err, tc.expectedErr)
			}
			if tc.expected != nil {
				if diff := cmp.Diff(actual, tc.expected); diff != "" {
					t.Errorf("CreatedRepo mismatch: diff\n%v", diff)
				}
			}
		})
	}
}

func TestDatasetInfoFile(t *testing.T) {
	info := &DatasetInfo{Files: []RepoFile{{Path: "README.md"}, {Path: "duckdb/kg.duckdb"}}}
	if !info.File("README.md") {
		t.Error("File(README.md) = false, want true")
	}
	if info.File("missing.txt") {
		t.Error("File(missing.txt) = true, want false")
	}
}
