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

	"github.com/abcxyz/build-dispatcher/pkg/jenkins"
	"github.com/abcxyz/build-dispatcher/pkg/webhook"
	"github.com/abcxyz/pkg/cli"
	"github.com/abcxyz/pkg/logging"
)

var _ cli.Command = (*TriggerCommand)(nil)

// TriggerCommand triggers a single build for a branch, the same way an
// accepted webhook event does.
type TriggerCommand struct {
	cli.BaseCommand

	cfg *webhook.Config

	flagBranch string

	// testFlagSetOpts is only used for testing.
	testFlagSetOpts []cli.Option
}

func (c *TriggerCommand) Desc() string {
	return `Trigger a Jenkins build for a branch`
}

func (c *TriggerCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options]
  Fetch a crumb and trigger the configured Jenkins job for a branch.

Trigger a build of feature-x:

  {{ COMMAND }} -branch=feature-x
`
}

func (c *TriggerCommand) Flags() *cli.FlagSet {
	c.cfg = &webhook.Config{}
	set := cli.NewFlagSet(c.testFlagSetOpts...)
	c.cfg.JenkinsFlags(set)

	f := set.NewSection("TRIGGER OPTIONS")
	f.StringVar(&cli.StringVar{
		Name:    "branch",
		Target:  &c.flagBranch,
		Example: "feature-x",
		Usage:   `Branch to build.`,
	})

	return set
}

func (c *TriggerCommand) Run(ctx context.Context, args []string) error {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	args = f.Args()
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %q", args)
	}

	if c.flagBranch == "" {
		return fmt.Errorf("-branch is required")
	}
	if err := c.cfg.ValidateJenkins(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.FromContext(ctx)

	creds, err := webhook.LoadCredentials(ctx, c.cfg, secretManagerClientOptions("trigger")...)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	client, err := jenkins.NewClient(c.cfg.JenkinsJobPath, c.cfg.JenkinsTimeout)
	if err != nil {
		return fmt.Errorf("failed to create jenkins client: %w", err)
	}

	crumb, err := client.FetchCrumb(ctx, creds)
	if err != nil {
		return fmt.Errorf("failed to fetch crumb: %w", err)
	}

	params := c.cfg.BuildParameters()
	result, err := client.Dispatch(ctx, creds, crumb, params.ForBranch(c.flagBranch))
	if err != nil {
		return fmt.Errorf("failed to trigger build: %w", err)
	}
	if err := result.Err(); err != nil {
		return err //nolint:wrapcheck // Want passthrough
	}

	logger.DebugContext(ctx, "triggered build",
		"branch", c.flagBranch,
		"code", result.StatusCode)
	c.Outf("%s", result.Message)
	return nil
}
