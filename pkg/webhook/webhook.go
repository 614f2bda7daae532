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

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/abcxyz/build-dispatcher/pkg/event"
	"github.com/abcxyz/pkg/logging"
)

const (
	// EventKeyHeader is the Bitbucket header key used to pass the event type.
	EventKeyHeader = "X-Event-Key"
	// RequestUUIDHeader is the Bitbucket header key used to pass the unique ID
	// for the webhook delivery.
	RequestUUIDHeader = "X-Request-UUID"
	// SignatureHeader is the Bitbucket header key used to pass the
	// HMAC-SHA256 hexdigest of the payload.
	SignatureHeader = "X-Hub-Signature"
	// mb is used for conversion to megabytes.
	mb = 1000000
)

var (
	errReadingPayload   = fmt.Errorf("failed to read webhook payload")
	errInvalidSignature = fmt.Errorf("failed to validate webhook signature")
	errInternal         = fmt.Errorf("unexpected failure handling webhook")
	errMethodNotAllowed = fmt.Errorf("method not allowed")
	errPayloadTooLarge  = fmt.Errorf("webhook payload exceeds the size limit")
)

// RawEvent is an inbound delivery before it is parsed.
type RawEvent struct {
	EventKey   string
	DeliveryID string
	Payload    []byte
}

// Response is the envelope returned to the webhook caller. Message is sent as
// a JSON encoded string.
type Response struct {
	StatusCode int
	Message    string
}

// errorResponse converts a failure to reach or authenticate with Jenkins into
// a 500 envelope.
func errorResponse(err error) *Response {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Error: %s", err),
	}
}

// Handle classifies raw and, when it matches, triggers a build. Every outcome
// is reported as a Response; ignored events are successful no-ops.
func (s *Server) Handle(ctx context.Context, raw *RawEvent) *Response {
	logger := logging.FromContext(ctx).With(
		"event_key", raw.EventKey,
		"delivery_id", raw.DeliveryID)

	ev := event.ParseEvent(raw.EventKey, raw.Payload)
	logger.InfoContext(ctx, "received webhook event",
		"source_branch", ev.SourceBranch,
		"target_branch", ev.TargetBranch)

	decision := s.classifier.Classify(ev)
	if !decision.Accepted {
		logger.InfoContext(ctx, "ignoring webhook event", "reason", decision.Reason)
		return &Response{StatusCode: http.StatusOK, Message: decision.Reason}
	}

	logger = logger.With("dispatch_id", uuid.NewString())

	crumb, err := s.crumbs.FetchCrumb(ctx, s.creds)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch crumb",
			"code", http.StatusInternalServerError,
			"error", err)
		return errorResponse(err)
	}
	logger.DebugContext(ctx, "fetched crumb", "crumb", crumb)

	params := s.params.ForBranch(decision.SourceBranch)
	result, err := s.dispatcher.Dispatch(ctx, s.creds, crumb, params)
	if err != nil {
		logger.ErrorContext(ctx, "failed to trigger build",
			"code", http.StatusInternalServerError,
			"error", err)
		return errorResponse(err)
	}

	if !result.Succeeded {
		logger.WarnContext(ctx, "jenkins rejected build trigger",
			"code", result.StatusCode,
			"branch", params.Branch)
		return &Response{StatusCode: result.StatusCode, Message: result.Message}
	}

	logger.InfoContext(ctx, "triggered build",
		"code", result.StatusCode,
		"branch", params.Branch)
	return &Response{StatusCode: http.StatusOK, Message: result.Message}
}

// handleWebhook handles the logic for receiving Bitbucket webhooks and
// triggering Jenkins builds.
func (s *Server) handleWebhook() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		defer func() {
			if p := recover(); p != nil {
				logger.ErrorContext(ctx, "panic handling webhook",
					"code", http.StatusInternalServerError,
					"panic", p)
				s.h.RenderJSON(w, http.StatusInternalServerError, errorResponse(errInternal).Message)
			}
		}()

		if r.Method != http.MethodPost {
			s.h.RenderJSON(w, http.StatusMethodNotAllowed, errorResponse(errMethodNotAllowed).Message)
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, s.maxPayloadBytes+1))
		if err != nil {
			logger.ErrorContext(ctx, "failed read webhook request body",
				"code", http.StatusInternalServerError,
				"error", err)
			s.h.RenderJSON(w, http.StatusInternalServerError, errorResponse(errReadingPayload).Message)
			return
		}
		// One byte past the limit tells an oversize body apart from one that
		// fits exactly.
		if int64(len(payload)) > s.maxPayloadBytes {
			logger.ErrorContext(ctx, "webhook payload too large",
				"code", http.StatusRequestEntityTooLarge,
				"max_payload_bytes", s.maxPayloadBytes)
			s.h.RenderJSON(w, http.StatusRequestEntityTooLarge, errorResponse(errPayloadTooLarge).Message)
			return
		}

		if s.webhookSecret != "" && !s.isValidSignature(r.Header.Get(SignatureHeader), payload) {
			logger.ErrorContext(ctx, "failed to validate webhook payload",
				"code", http.StatusUnauthorized)
			s.h.RenderJSON(w, http.StatusUnauthorized, errorResponse(errInvalidSignature).Message)
			return
		}

		resp := s.Handle(ctx, &RawEvent{
			EventKey:   r.Header.Get(EventKeyHeader),
			DeliveryID: r.Header.Get(RequestUUIDHeader),
			Payload:    payload,
		})
		s.h.RenderJSON(w, resp.StatusCode, resp.Message)
	})
}

// isValidSignature validates the http request signature against the signature of the payload.
func (s *Server) isValidSignature(signature string, payload []byte) bool {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	got := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(signature), []byte(got)) == 1
}
