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

package jenkins

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// BuildParameters are the form values sent to buildWithParameters. Branch is
// always the pull request source branch, the rest is fixed configuration.
type BuildParameters struct {
	Environment string `url:"environment"`
	Faker       string `url:"faker"`
	Tag         string `url:"tag"`
	Filename    string `url:"filename"`
	Branch      string `url:"branch"`
}

// ForBranch returns a copy of p that builds branch.
func (p BuildParameters) ForBranch(branch string) *BuildParameters {
	p.Branch = branch
	return &p
}

// Values encodes the parameters as form values. Every field is present, even
// when empty.
func (p *BuildParameters) Values() (url.Values, error) {
	v, err := query.Values(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode build parameters: %w", err)
	}
	return v, nil
}
