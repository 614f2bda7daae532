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
	"strings"

	"google.golang.org/api/option"

	"github.com/abcxyz/build-dispatcher/pkg/jenkins"
	"github.com/abcxyz/build-dispatcher/pkg/secrets"
)

// LoadCredentials resolves the Jenkins credentials once at start-up. The token
// is read from Secret Manager when JENKINS_TOKEN_SECRET is configured.
func LoadCredentials(ctx context.Context, cfg *Config, smOpts ...option.ClientOption) (jenkins.Credentials, error) {
	u, err := parseJenkinsURL(cfg.JenkinsURL)
	if err != nil {
		return jenkins.Credentials{}, err
	}

	token := cfg.JenkinsToken
	if cfg.JenkinsTokenSecret != "" {
		token, err = secrets.GetSecret(ctx, cfg.JenkinsTokenSecret, smOpts...)
		if err != nil {
			return jenkins.Credentials{}, fmt.Errorf("failed to load jenkins token: %w", err)
		}
	}

	return jenkins.Credentials{
		BaseURL:  u,
		Username: cfg.JenkinsUsername,
		Token:    strings.TrimSpace(token),
	}, nil
}
