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
	"fmt"

	"github.com/go-playground/webhooks/v6/bitbucket"
)

// DefaultTargetBranch is the destination branch that triggers a build when no
// other branch is configured.
const DefaultTargetBranch = "Automation"

// acceptedEvents are the pull request lifecycle events that can trigger a
// build.
var acceptedEvents = map[bitbucket.Event]struct{}{
	bitbucket.PullRequestCreatedEvent: {},
	bitbucket.PullRequestUpdatedEvent: {},
}

// Decision is the outcome of classifying a WebhookEvent.
type Decision struct {
	// Accepted is true when the event should trigger a build.
	Accepted bool

	// SourceBranch is the branch to build. Only set when Accepted.
	SourceBranch string

	// Reason describes why the event was ignored. Only set when not Accepted.
	Reason string
}

// Classifier decides whether an event warrants a build.
type Classifier struct {
	targetBranch string
}

// NewClassifier returns a Classifier that accepts pull requests whose
// destination is exactly targetBranch.
func NewClassifier(targetBranch string) *Classifier {
	return &Classifier{targetBranch: targetBranch}
}

// TargetBranch returns the destination branch this classifier matches.
func (c *Classifier) TargetBranch() string {
	return c.targetBranch
}

// Classify returns the Decision for ev. It has no side effects.
func (c *Classifier) Classify(ev *WebhookEvent) Decision {
	if _, ok := acceptedEvents[bitbucket.Event(ev.EventKey)]; !ok {
		return Decision{Reason: fmt.Sprintf("Ignored event: %s", ev.EventKey)}
	}

	if ev.TargetBranch != c.targetBranch {
		return Decision{Reason: fmt.Sprintf("Ignored: Target branch is not '%s'", c.targetBranch)}
	}

	return Decision{
		Accepted:     true,
		SourceBranch: ev.SourceBranch,
	}
}
