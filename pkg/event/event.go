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

// Package event parses and classifies inbound Bitbucket pull request webhook
// events.
package event

import (
	"github.com/tidwall/gjson"
)

const (
	sourceBranchPath      = "pullrequest.source.branch.name"
	destinationBranchPath = "pullrequest.destination.branch.name"
)

// WebhookEvent is a single inbound webhook delivery. It is created per request
// and never modified after parsing.
type WebhookEvent struct {
	EventKey     string
	SourceBranch string
	TargetBranch string
	RawPayload   []byte
}

// ParseEvent builds a WebhookEvent from the event key header and the raw JSON
// body. It never fails: a malformed payload or a missing field results in
// empty branch names.
func ParseEvent(eventKey string, payload []byte) *WebhookEvent {
	ev := &WebhookEvent{
		EventKey:   eventKey,
		RawPayload: payload,
	}

	if !gjson.ValidBytes(payload) {
		return ev
	}

	results := gjson.GetManyBytes(payload, sourceBranchPath, destinationBranchPath)
	ev.SourceBranch = stringValue(results[0])
	ev.TargetBranch = stringValue(results[1])
	return ev
}

func stringValue(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
