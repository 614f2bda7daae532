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

// Package webhook is the webhook server that turns Bitbucket pull request
// events into Jenkins builds.
package webhook

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"

	"github.com/abcxyz/build-dispatcher/pkg/event"
	"github.com/abcxyz/build-dispatcher/pkg/jenkins"
	"github.com/abcxyz/build-dispatcher/pkg/version"
	"github.com/abcxyz/pkg/healthcheck"
	"github.com/abcxyz/pkg/logging"
	"github.com/abcxyz/pkg/renderer"
)

// CrumbFetcher obtains a fresh CSRF crumb from Jenkins.
type CrumbFetcher interface {
	FetchCrumb(ctx context.Context, creds jenkins.Credentials) (*jenkins.Crumb, error)
}

// BuildDispatcher triggers a Jenkins build.
type BuildDispatcher interface {
	Dispatch(ctx context.Context, creds jenkins.Credentials, crumb *jenkins.Crumb, params *jenkins.BuildParameters) (*jenkins.DispatchResult, error)
}

// Server provides the server implementation.
type Server struct {
	h *renderer.Renderer

	classifier *event.Classifier
	creds      jenkins.Credentials
	crumbs     CrumbFetcher
	dispatcher BuildDispatcher
	params     jenkins.BuildParameters

	projectID       string
	webhookSecret   string
	maxPayloadBytes int64
	limiter         *rateLimiter
}

// WebhookClientOptions encapsulate client config options as well as dependency
// implementation overrides.
type WebhookClientOptions struct {
	SecretManagerClientOpts []option.ClientOption
	JenkinsClientOpts       []jenkins.Option

	CrumbFetcherOverride CrumbFetcher    // used for unit testing
	DispatcherOverride   BuildDispatcher // used for unit testing
}

// NewServer creates a new HTTP server implementation that will handle
// receiving webhook payloads.
func NewServer(ctx context.Context, h *renderer.Renderer, cfg *Config, wco *WebhookClientOptions) (*Server, error) {
	if wco == nil {
		wco = &WebhookClientOptions{}
	}

	creds, err := LoadCredentials(ctx, cfg, wco.SecretManagerClientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	client, err := jenkins.NewClient(cfg.JenkinsJobPath, cfg.JenkinsTimeout, wco.JenkinsClientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create jenkins client: %w", err)
	}

	var crumbs CrumbFetcher = client
	if wco.CrumbFetcherOverride != nil {
		crumbs = wco.CrumbFetcherOverride
	}

	var dispatcher BuildDispatcher = client
	if wco.DispatcherOverride != nil {
		dispatcher = wco.DispatcherOverride
	}

	return &Server{
		h:               h,
		classifier:      event.NewClassifier(cfg.TargetBranch),
		creds:           creds,
		crumbs:          crumbs,
		dispatcher:      dispatcher,
		params:          cfg.BuildParameters(),
		projectID:       cfg.ProjectID,
		webhookSecret:   cfg.WebhookSecret,
		maxPayloadBytes: int64(cfg.MaxPayloadBytes),
		limiter:         newRateLimiter(cfg.RateLimitPerMinute),
	}, nil
}

// Routes creates a ServeMux of all of the routes that
// this Router supports.
func (s *Server) Routes(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/healthz", healthcheck.HandleHTTPHealthCheck())
	mux.Handle("/webhook", s.rateLimit(s.handleWebhook()))
	mux.Handle("/version", s.handleVersion())

	// Middleware
	root := logging.HTTPInterceptor(logger, s.projectID)(mux)

	return root
}

// handleVersion is a simple http.HandlerFunc that responds
// with version information for the server.
func (s *Server) handleVersion() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.h.RenderJSON(w, http.StatusOK, map[string]string{
			"version": version.HumanVersion,
		})
	})
}
