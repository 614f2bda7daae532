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
	"context"
	"fmt"
	"net/http"
	"strings"
)

const buildWithParametersPath = "buildWithParameters"

const (
	// MessageTriggered is reported when Jenkins accepted the build.
	MessageTriggered = "Jenkins job triggered successfully."

	// MessageTriggerFailed is reported when Jenkins answered with a
	// non-success status.
	MessageTriggerFailed = "Jenkins job trigger failed."
)

// DispatchResult is the outcome of a trigger that reached Jenkins.
type DispatchResult struct {
	Succeeded  bool
	StatusCode int
	Message    string
}

// Err returns a *RemoteRejection when the trigger was not accepted.
func (r *DispatchResult) Err() error {
	if r.Succeeded {
		return nil
	}
	return &RemoteRejection{StatusCode: r.StatusCode}
}

// Dispatch triggers the configured job with params, presenting crumb. A
// response from Jenkins is always a DispatchResult, whatever its status. An
// error is returned only when the request could not be made or Jenkins could
// not be reached, in which case it is a *NetworkError. Redirects are not
followed, so a 3xx is reported as a failed trigger. There are no retries.
func (c *Client) Dispatch(ctx context.Context, creds Credentials, crumb *Crumb, params *BuildParameters) (*DispatchResult, error) {
	if crumb == nil {
		return nil, ErrMissingCrumb
	}
	if err := crumb.spend(); err != nil {
		return nil, err
	}

	form, err := params.Values()
	if err != nil {
		return nil, err
	}

	u, err := endpoint(creds.BaseURL, c.jobPath, buildWithParametersPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build trigger request: %w", err)
	}
	req.SetBasicAuth(creds.Username, creds.Token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(crumb.HeaderName, crumb.HeaderValue)
	for _, cookie := range crumb.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "trigger build", Err: err}
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return &DispatchResult{
			Succeeded:  true,
			StatusCode: resp.StatusCode,
			Message:    MessageTriggered,
		}, nil
	default:
		return &DispatchResult{
			StatusCode: resp.StatusCode,
			Message:    MessageTriggerFailed,
		}, nil
	}
}
