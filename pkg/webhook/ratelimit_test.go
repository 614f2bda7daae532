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
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/abcxyz/pkg/logging"
)

func TestNewRateLimiter_Disabled(t *testing.T) {
	t.Parallel()

	if rl := newRateLimiter(0); rl != nil {
		t.Errorf("expected no limiter for 0 per minute, got %#v", rl)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1)

	if !rl.allow("10.0.0.1") {
		t.Fatalf("expected first request to be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Errorf("expected second request to be rate limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Errorf("expected a different source to be allowed")
	}
}

func TestRateLimiter_ConcurrentFirstRequests(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.allow("10.0.0.1") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got, want := allowed.Load(), int32(1); got != want {
		t.Errorf("expected %d allowed requests to be %d", got, want)
	}
}

func TestServer_RateLimit(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))

	cfg := validConfig()
	cfg.RateLimitPerMinute = 1

	dispatcher := &MockDispatcher{}
	srv, err := NewServer(ctx, newTestRenderer(ctx, t), cfg, &WebhookClientOptions{
		CrumbFetcherOverride: &MockCrumbFetcher{},
		DispatcherOverride:   dispatcher,
	})
	if err != nil {
		t.Fatal(err)
	}
	handler := srv.Routes(ctx)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(matchingPayload))
		req.Header.Set(EventKeyHeader, "pullrequest:created")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}

	if got, want := codes[0], http.StatusOK; got != want {
		t.Errorf("expected first status %d to be %d", got, want)
	}
	if got, want := codes[1], http.StatusTooManyRequests; got != want {
		t.Errorf("expected second status %d to be %d", got, want)
	}
	if got, want := dispatcher.Calls(), 1; got != want {
		t.Errorf("expected %d dispatches to be %d", got, want)
	}
}

func TestServer_RateLimit_IgnoresCallerForwardedEntries(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))

	cfg := validConfig()
	cfg.RateLimitPerMinute = 1

	dispatcher := &MockDispatcher{}
	srv, err := NewServer(ctx, newTestRenderer(ctx, t), cfg, &WebhookClientOptions{
		CrumbFetcherOverride: &MockCrumbFetcher{},
		DispatcherOverride:   dispatcher,
	})
	if err != nil {
		t.Fatal(err)
	}
	handler := srv.Routes(ctx)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(matchingPayload))
		req.Header.Set(EventKeyHeader, "pullrequest:created")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d, 203.0.113.7", i))

		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}

	want := []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range want {
		if got := codes[i]; got != want[i] {
			t.Errorf("request %d: expected status %d to be %d", i, got, want[i])
		}
	}
	if got, want := dispatcher.Calls(), 1; got != want {
		t.Errorf("expected %d dispatches to be %d", got, want)
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "remote_addr",
			remoteAddr: "192.0.2.1:1234",
			want:       "192.0.2.1",
		},
		{
			name:       "forwarded",
			remoteAddr: "192.0.2.1:1234",
			forwarded:  "203.0.113.7, 10.0.0.1",
			want:       "10.0.0.1",
		},
		{
			name:       "forwarded_single",
			remoteAddr: "192.0.2.1:1234",
			forwarded:  "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded_trailing_empty",
			remoteAddr: "192.0.2.1:1234",
			forwarded:  "203.0.113.7, ",
			want:       "192.0.2.1",
		},
		{
			name:       "remote_addr_without_port",
			remoteAddr: "192.0.2.1",
			want:       "192.0.2.1",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}

			if got := clientIP(req); got != tc.want {
				t.Errorf("expected %q to be %q", got, tc.want)
			}
		})
	}
}
