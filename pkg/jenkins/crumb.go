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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
)

const crumbIssuerPath = "crumbIssuer/api/json"

// Crumb is a CSRF token issued by Jenkins. The header it names must be sent
// with the next state-changing request, together with the session cookies it
// was issued under. A Crumb is good for one trigger.
type Crumb struct {
	HeaderName  string
	HeaderValue string

	cookies []*http.Cookie
	spent   atomic.Bool
}

// String implements [fmt.Stringer] without revealing the token.
func (c *Crumb) String() string {
	return c.HeaderName + ": [REDACTED]"
}

// LogValue implements [slog.LogValuer] without revealing the token.
func (c *Crumb) LogValue() slog.Value {
	return slog.GroupValue(slog.String("header", c.HeaderName))
}

// spend marks the crumb as used. It fails if it was already used.
func (c *Crumb) spend() error {
	if !c.spent.CompareAndSwap(false, true) {
		return ErrCrumbSpent
	}
	return nil
}

type crumbResponse struct {
	Crumb             string `json:"crumb"`
	CrumbRequestField string `json:"crumbRequestField"`
}

// FetchCrumb requests a fresh crumb from the Jenkins crumb issuer. It makes
// exactly one request and never caches the result.
func (c *Client) FetchCrumb(ctx context.Context, creds Credentials) (*Crumb, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := endpoint(creds.BaseURL, crumbIssuerPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build crumb request: %w", err)
	}
	req.SetBasicAuth(creds.Username, creds.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "fetch crumb", Err: err}
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Op: "read crumb", Err: err}
	}

	var cr crumbResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: err}
	}
	if cr.CrumbRequestField == "" || cr.Crumb == "" {
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Err:        errors.New("missing crumbRequestField or crumb"),
		}
	}

	return &Crumb{
		HeaderName:  cr.CrumbRequestField,
		HeaderValue: cr.Crumb,
		cookies:     resp.Cookies(),
	}, nil
}
