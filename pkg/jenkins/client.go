// Copyright 2026 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jenkins triggers parameterized Jenkins builds, acquiring a CSRF
// crumb for every trigger.
package jenkins

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

const (
	// maxResponseBytes bounds how much of a Jenkins response body is read.
	maxResponseBytes = 1 << 20

	// DefaultTimeout is the deadline applied to each outbound call when none
	// is configured.
	DefaultTimeout = 10 * time.Second
)

// Credentials identify the Jenkins server and the user that triggers builds.
// They are loaded once at start-up and only ever read.
type Credentials struct {
	BaseURL  *url.URL
	Username string
	Token    string
}

// LogValue implements [slog.LogValuer] and never includes the token.
func (c Credentials) LogValue() slog.Value {
	endpoint := ""
	if c.BaseURL != nil {
		endpoint = c.BaseURL.Redacted()
	}
	return slog.GroupValue(
		slog.String("endpoint", endpoint),
		slog.String("username", c.Username))
}

// Client talks to a single Jenkins job. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	jobPath    string
	timeout    time.Duration
}

// Option is an optional configuration for the Client.
type Option func(c *Client) *Client

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) *Client {
		c.httpClient = hc
		return c
	}
}

// NewClient creates a Client for the job at jobPath, for example
// "/job/automation/job/robot-tests". Every outbound call is bound by timeout.
func NewClient(jobPath string, timeout time.Duration, opts ...Option) (*Client, error) {
	if jobPath == "" {
		return nil, fmt.Errorf("job path is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	// A redirect is the answer itself, never a hop to follow.
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	c := &Client{
		httpClient: hc,
		jobPath:    jobPath,
		timeout:    timeout,
	}
	for _, opt := range opts {
		c = opt(c)
	}
	return c, nil
}

// endpoint resolves elems against the base URL, escaping each path segment.
func endpoint(base *url.URL, elems ...string) (string, error) {
	if base == nil {
		return "", fmt.Errorf("jenkins base url is not configured")
	}
	return base.JoinPath(elems...).String(), nil
}

// drain discards the remainder of a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()
}
