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
	"errors"
	"fmt"
	"net"
)

// ErrCrumbSpent is returned when a crumb is presented for a second trigger.
var ErrCrumbSpent = errors.New("crumb has already been used")

// ErrMissingCrumb is returned when a trigger is attempted without a crumb.
var ErrMissingCrumb = errors.New("crumb is required to trigger a build")

// NetworkError is returned when Jenkins could not be reached or did not answer
// before the deadline.
type NetworkError struct {
	// Op is the operation that failed, such as "fetch crumb".
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("failed to %s: jenkins did not respond in time: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s: jenkins is unreachable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline expiry.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(e.Err, &nerr) && nerr.Timeout()
}

// AuthError is returned when Jenkins refuses to issue a crumb or issues one
// that cannot be understood.
type AuthError struct {
	// StatusCode is the HTTP status of the crumb response.
	StatusCode int
	// Err is set when the response body could not be parsed.
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid crumb response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("jenkins rejected crumb request with status %d", e.StatusCode)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RemoteRejection is a build trigger that reached Jenkins and was answered
// with a non-success status.
type RemoteRejection struct {
	StatusCode int
}

func (e *RemoteRejection) Error() string {
	return fmt.Sprintf("jenkins rejected build trigger with status %d", e.StatusCode)
}
