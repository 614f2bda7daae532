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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abcxyz/build-dispatcher/pkg/version"
	"github.com/abcxyz/pkg/logging"
)

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))

	srv, err := NewServer(ctx, newTestRenderer(ctx, t), validConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	handler := srv.Routes(ctx)

	cases := []struct {
		name         string
		path         string
		wantCode     int
		wantContains string
	}{
		{
			name:     "healthz",
			path:     "/healthz",
			wantCode: http.StatusOK,
		},
		{
			name:         "version",
			path:         "/version",
			wantCode:     http.StatusOK,
			wantContains: version.Name,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			if got, want := resp.Code, tc.wantCode; got != want {
				t.Errorf("expected %d to be %d", got, want)
			}
			if !strings.Contains(resp.Body.String(), tc.wantContains) {
				t.Errorf("expected %q to contain %q", resp.Body.String(), tc.wantContains)
			}
		})
	}
}
