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

package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/abcxyz/pkg/cli"
	"github.com/abcxyz/pkg/logging"
	"github.com/abcxyz/pkg/testutil"
	"github.com/sethvargo/go-envconfig"
)

type fakeJenkins struct {
	triggerStatus int

	mu       sync.Mutex
	branches []string
}

func (f *fakeJenkins) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/crumbIssuer/api/json":
		fmt.Fprint(w, `{"crumb":"abc123","crumbRequestField":"Jenkins-Crumb"}`)
	case "/job/robot-tests/buildWithParameters":
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.branches = append(f.branches, r.PostForm.Get("branch"))
		f.mu.Unlock()
		w.WriteHeader(f.triggerStatus)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestTriggerCommand(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))

	cases := []struct {
		name          string
		args          []string
		env           map[string]string
		triggerStatus int
		expErr        string
		expOut        string
		expBranches   []string
	}{
		{
			name:   "too_many_args",
			args:   []string{"-branch", "feature-x", "foo"},
			expErr: `unexpected arguments: ["foo"]`,
		},
		{
			name:   "missing_branch",
			expErr: `-branch is required`,
		},
		{
			name: "invalid_config",
			args: []string{"-branch", "feature-x"},
			env: map[string]string{
				"JENKINS_URL": "",
			},
			expErr: `JENKINS_URL is required`,
		},
		{
			name:          "rejected",
			args:          []string{"-branch", "feature-x"},
			triggerStatus: http.StatusInternalServerError,
			expErr:        `jenkins rejected build trigger with status 500`,
			expBranches:   []string{"feature-x"},
		},
		{
			name:          "success",
			args:          []string{"-branch", "feature-x"},
			triggerStatus: http.StatusCreated,
			expOut:        `Jenkins job triggered successfully.`,
			expBranches:   []string{"feature-x"},
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeJenkins{triggerStatus: tc.triggerStatus}
			srv := httptest.NewServer(fake)
			t.Cleanup(srv.Close)

			var cmd TriggerCommand
			cmd.testFlagSetOpts = []cli.Option{cli.WithLookupEnv(envconfig.MultiLookuper(
				envconfig.MapLookuper(tc.env),
				envconfig.MapLookuper(map[string]string{
					"JENKINS_URL":      srv.URL,
					"JENKINS_JOB_PATH": "/job/robot-tests",
					"JENKINS_USERNAME": "bot",
					"JENKINS_TOKEN":    "token",
				}),
			).Lookup)}

			_, stdout, _ := cmd.Pipe()

			err := cmd.Run(ctx, tc.args)
			if diff := testutil.DiffErrString(err, tc.expErr); diff != "" {
				t.Fatal(diff)
			}

			if got, want := strings.TrimSpace(stdout.String()), tc.expOut; got != want {
				t.Errorf("expected stdout %q to be %q", got, want)
			}

			fake.mu.Lock()
			defer fake.mu.Unlock()
			if got, want := len(fake.branches), len(tc.expBranches); got != want {
				t.Fatalf("expected %d triggers to be %d", got, want)
			}
			for i, want := range tc.expBranches {
				if got := fake.branches[i]; got != want {
					t.Errorf("expected branch %q to be %q", got, want)
				}
			}
		})
	}
}
