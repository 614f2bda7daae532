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

package event

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testPayload = `{
  "pullrequest": {
    "id": 7,
    "source": {"branch": {"name": "feature-x"}},
    "destination": {"branch": {"name": "Automation"}}
  }
}`

func TestParseEvent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		want    *WebhookEvent
	}{
		{
			name:    "full_payload",
			payload: testPayload,
			want: &WebhookEvent{
				EventKey:     "pullrequest:created",
				SourceBranch: "feature-x",
				TargetBranch: "Automation",
				RawPayload:   []byte(testPayload),
			},
		},
		{
			name:    "missing_destination",
			payload: `{"pullrequest":{"source":{"branch":{"name":"feature-x"}}}}`,
			want: &WebhookEvent{
				EventKey:     "pullrequest:created",
				SourceBranch: "feature-x",
				RawPayload:   []byte(`{"pullrequest":{"source":{"branch":{"name":"feature-x"}}}}`),
			},
		},
		{
			name:    "missing_pullrequest",
			payload: `{}`,
			want: &WebhookEvent{
				EventKey:   "pullrequest:created",
				RawPayload: []byte(`{}`),
			},
		},
		{
			name:    "non_string_branch",
			payload: `{"pullrequest":{"destination":{"branch":{"name":12}}}}`,
			want: &WebhookEvent{
				EventKey:   "pullrequest:created",
				RawPayload: []byte(`{"pullrequest":{"destination":{"branch":{"name":12}}}}`),
			},
		},
		{
			name:    "malformed_json",
			payload: `{"pullrequest":`,
			want: &WebhookEvent{
				EventKey:   "pullrequest:created",
				RawPayload: []byte(`{"pullrequest":`),
			},
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ParseEvent("pullrequest:created", []byte(tc.payload))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseEvent() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
