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
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/abcxyz/build-dispatcher/pkg/event"
	"github.com/abcxyz/build-dispatcher/pkg/jenkins"
	"github.com/abcxyz/pkg/cli"
)

// Config defines the set over environment variables required
// for running this application.
type Config struct {
	Port               string
	ProjectID          string
	MaxPayloadBytes    int
	WebhookSecret      string
	RateLimitPerMinute int

	JenkinsURL         string
	JenkinsJobPath     string
	JenkinsUsername    string
	JenkinsToken       string
	JenkinsTokenSecret string
	JenkinsTimeout     time.Duration

	TargetBranch     string
	BuildEnvironment string
	BuildFaker       string
	BuildTag         string
	BuildFilename    string
}

// Validate validates the service config after load.
func (cfg *Config) Validate() error {
	var merr error

	if cfg.TargetBranch == "" {
		merr = errors.Join(merr, fmt.Errorf("TARGET_BRANCH is required"))
	}

	if cfg.MaxPayloadBytes <= 0 {
		merr = errors.Join(merr, fmt.Errorf("MAX_PAYLOAD_BYTES must be positive"))
	}

	if cfg.RateLimitPerMinute < 0 {
		merr = errors.Join(merr, fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative"))
	}

	return errors.Join(cfg.ValidateJenkins(), merr)
}

// ValidateJenkins validates only the options needed to reach Jenkins.
func (cfg *Config) ValidateJenkins() error {
	var merr error

	if cfg.JenkinsURL == "" {
		merr = errors.Join(merr, fmt.Errorf("JENKINS_URL is required"))
	} else if _, err := parseJenkinsURL(cfg.JenkinsURL); err != nil {
		merr = errors.Join(merr, err)
	}

	if cfg.JenkinsJobPath == "" {
		merr = errors.Join(merr, fmt.Errorf("JENKINS_JOB_PATH is required"))
	}

	if cfg.JenkinsUsername == "" {
		merr = errors.Join(merr, fmt.Errorf("JENKINS_USERNAME is required"))
	}

	if cfg.JenkinsToken == "" && cfg.JenkinsTokenSecret == "" {
		merr = errors.Join(merr, fmt.Errorf("one of JENKINS_TOKEN or JENKINS_TOKEN_SECRET is required"))
	}
	if cfg.JenkinsToken != "" && cfg.JenkinsTokenSecret != "" {
		merr = errors.Join(merr, fmt.Errorf("only one of JENKINS_TOKEN or JENKINS_TOKEN_SECRET may be set"))
	}

	if cfg.JenkinsTimeout <= 0 {
		merr = errors.Join(merr, fmt.Errorf("JENKINS_TIMEOUT must be positive"))
	}

	return merr
}

// BuildParameters returns the fixed build parameters. The branch is left
// empty and is filled in per event.
func (cfg *Config) BuildParameters() jenkins.BuildParameters {
	return jenkins.BuildParameters{
		Environment: cfg.BuildEnvironment,
		Faker:       cfg.BuildFaker,
		Tag:         cfg.BuildTag,
		Filename:    cfg.BuildFilename,
	}
}

// LogValue implements [slog.LogValuer]. Secrets are never included.
func (cfg *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", cfg.Port),
		slog.String("jenkins_url", cfg.JenkinsURL),
		slog.String("jenkins_job_path", cfg.JenkinsJobPath),
		slog.String("jenkins_username", cfg.JenkinsUsername),
		slog.String("jenkins_token_secret", cfg.JenkinsTokenSecret),
		slog.Duration("jenkins_timeout", cfg.JenkinsTimeout),
		slog.String("target_branch", cfg.TargetBranch),
		slog.Bool("verify_signatures", cfg.WebhookSecret != ""),
		slog.Int("rate_limit_per_minute", cfg.RateLimitPerMinute))
}

// parseJenkinsURL parses and checks the Jenkins base URL. Credentials are
// sent in headers, so the URL must not carry any.
func parseJenkinsURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("JENKINS_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("JENKINS_URL must be an http or https url")
	}
	if u.Host == "" {
		return nil, fmt.Errorf("JENKINS_URL must include a host")
	}
	if u.User != nil {
		return nil, fmt.Errorf("JENKINS_URL must not contain user info")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("JENKINS_URL must not contain a query or fragment")
	}
	return u, nil
}

// ToFlags binds the config to the give [cli.FlagSet] and returns it.
func (cfg *Config) ToFlags(set *cli.FlagSet) *cli.FlagSet {
	cfg.ServerFlags(set)
	cfg.JenkinsFlags(set)
	return set
}

// ServerFlags binds the inbound webhook server options.
func (cfg *Config) ServerFlags(set *cli.FlagSet) *cli.FlagSet {
	f := set.NewSection("SERVER OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "port",
		Target:  &cfg.Port,
		EnvVar:  "PORT",
		Default: "8080",
		Usage:   `The port the webhook server listens to.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "project-id",
		Target: &cfg.ProjectID,
		EnvVar: "PROJECT_ID",
		Usage:  `Google Cloud project ID, used to correlate request logs.`,
	})

	f.IntVar(&cli.IntVar{
		Name:    "max-payload-bytes",
		Target:  &cfg.MaxPayloadBytes,
		EnvVar:  "MAX_PAYLOAD_BYTES",
		Default: 25 * mb,
		Usage:   `The largest webhook body that is read, in bytes.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "webhook-secret",
		Target: &cfg.WebhookSecret,
		EnvVar: "WEBHOOK_SECRET",
		Usage: `Secret used to verify the X-Hub-Signature header. When empty, ` +
			`webhook payloads are not verified.`,
	})

	f.IntVar(&cli.IntVar{
		Name:    "rate-limit-per-minute",
		Target:  &cfg.RateLimitPerMinute,
		EnvVar:  "RATE_LIMIT_PER_MINUTE",
		Default: 0,
		Usage:   `Maximum webhook deliveries per minute from one source. 0 disables the limit.`,
	})

	return set
}

// JenkinsFlags binds the Jenkins and build options.
func (cfg *Config) JenkinsFlags(set *cli.FlagSet) *cli.FlagSet {
	f := set.NewSection("JENKINS OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "jenkins-url",
		Target:  &cfg.JenkinsURL,
		EnvVar:  "JENKINS_URL",
		Example: "https://jenkins.example.com",
		Usage:   `Base URL of the Jenkins server.`,
	})

	f.StringVar(&cli.StringVar{
		Name:    "jenkins-job-path",
		Target:  &cfg.JenkinsJobPath,
		EnvVar:  "JENKINS_JOB_PATH",
		Example: "/job/automation/job/robot-tests",
		Usage:   `Path of the job to trigger, relative to the Jenkins URL.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "jenkins-username",
		Target: &cfg.JenkinsUsername,
		EnvVar: "JENKINS_USERNAME",
		Usage:  `Jenkins user that triggers builds.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "jenkins-token",
		Target: &cfg.JenkinsToken,
		EnvVar: "JENKINS_TOKEN",
		Usage:  `Jenkins API token of the user.`,
	})

	f.StringVar(&cli.StringVar{
		Name:    "jenkins-token-secret",
		Target:  &cfg.JenkinsTokenSecret,
		EnvVar:  "JENKINS_TOKEN_SECRET",
		Example: "projects/my-project/secrets/jenkins-token/versions/latest",
		Usage:   `Secret Manager resource holding the Jenkins API token.`,
	})

	f.DurationVar(&cli.DurationVar{
		Name:    "jenkins-timeout",
		Target:  &cfg.JenkinsTimeout,
		EnvVar:  "JENKINS_TIMEOUT",
		Default: jenkins.DefaultTimeout,
		Usage:   `The timeout for each request to Jenkins.`,
	})

	b := set.NewSection("BUILD OPTIONS")

	b.StringVar(&cli.StringVar{
		Name:    "target-branch",
		Target:  &cfg.TargetBranch,
		EnvVar:  "TARGET_BRANCH",
		Default: event.DefaultTargetBranch,
		Usage:   `Pull requests into this branch trigger a build.`,
	})

	b.StringVar(&cli.StringVar{
		Name:    "build-environment",
		Target:  &cfg.BuildEnvironment,
		EnvVar:  "BUILD_ENVIRONMENT",
		Default: "testing",
		Usage:   `Value of the environment build parameter.`,
	})

	b.StringVar(&cli.StringVar{
		Name:    "build-faker",
		Target:  &cfg.BuildFaker,
		EnvVar:  "BUILD_FAKER",
		Default: "true",
		Usage:   `Value of the faker build parameter.`,
	})

	b.StringVar(&cli.StringVar{
		Name:    "build-tag",
		Target:  &cfg.BuildTag,
		EnvVar:  "BUILD_TAG",
		Default: "example",
		Usage:   `Value of the tag build parameter.`,
	})

	b.StringVar(&cli.StringVar{
		Name:    "build-filename",
		Target:  &cfg.BuildFilename,
		EnvVar:  "BUILD_FILENAME",
		Default: "example.robot",
		Usage:   `Value of the filename build parameter.`,
	})

	return set
}
