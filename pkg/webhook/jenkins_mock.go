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
	"sync"

	"github.com/abcxyz/build-dispatcher/pkg/jenkins"
)

type MockCrumbFetcher struct {
	mu    sync.Mutex
	calls int

	crumb *jenkins.Crumb
	err   error
}

func (m *MockCrumbFetcher) FetchCrumb(ctx context.Context, creds jenkins.Credentials) (*jenkins.Crumb, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.crumb != nil {
		return m.crumb, nil
	}
	return &jenkins.Crumb{HeaderName: "Jenkins-Crumb", HeaderValue: "mock-crumb"}, nil
}

func (m *MockCrumbFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type MockDispatcher struct {
	mu     sync.Mutex
	calls  int
	params *jenkins.BuildParameters
	crumb  *jenkins.Crumb

	result *jenkins.DispatchResult
	err    error
}

func (m *MockDispatcher) Dispatch(ctx context.Context, creds jenkins.Credentials, crumb *jenkins.Crumb, params *jenkins.BuildParameters) (*jenkins.DispatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.params = params
	m.crumb = crumb

	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &jenkins.DispatchResult{Succeeded: true, StatusCode: 201, Message: jenkins.MessageTriggered}, nil
}

func (m *MockDispatcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDispatcher) Params() *jenkins.BuildParameters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params
}
