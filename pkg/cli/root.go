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

// Package cli implements the commands for the build-dispatcher CLI.
package cli

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/abcxyz/build-dispatcher/pkg/version"
	"github.com/abcxyz/pkg/cli"
)

var rootCmd = func() cli.Command {
	return &cli.RootCommand{
		Name:    "build-dispatcher",
		Version: version.HumanVersion,
		Commands: map[string]cli.CommandFactory{
			"webhook": func() cli.Command {
				return &cli.RootCommand{
					Name:        "webhook",
					Description: "Perform webhook operations",
					Commands: map[string]cli.CommandFactory{
						"server": func() cli.Command {
							return &WebhookServerCommand{}
						},
					},
				}
			},
			"trigger": func() cli.Command {
				return &TriggerCommand{}
			},
		},
	}
}

// Run executes the CLI.
func Run(ctx context.Context, args []string) error {
	return rootCmd().Run(ctx, args) //nolint:wrapcheck // Want passthrough
}

// userAgent is the product agent sent on Google API calls. component is
// appended after the binary name when set.
func userAgent(component string) string {
	if component == "" {
		return fmt.Sprintf("abcxyz:%s/%s", version.Name, version.Version)
	}
	return fmt.Sprintf("abcxyz:%s/%s/%s", version.Name, component, version.Version)
}

// secretManagerClientOptions puts the user agent ahead of any extra options.
func secretManagerClientOptions(component string, extra ...option.ClientOption) []option.ClientOption {
	return append([]option.ClientOption{option.WithUserAgent(userAgent(component))}, extra...)
}
