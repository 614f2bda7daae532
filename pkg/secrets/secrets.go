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

// Package secrets reads credentials from Google Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"hash/crc32"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/option"
)

var (
	// can be overriden for testing
	retryMinWaitDuration        = 500 * time.Millisecond
	retryMaxAttempts     uint64 = 3
	retryFunc                   = retry.NewExponential
)

// Accessor is the subset of the Secret Manager client used to read secrets.
type Accessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// GetSecret reads a secret from Secret Manager and validates that it was not
// corrupted during retrieval. The secretResourceName should be in the format:
// 'projects/*/secrets/*/versions/*'.
func GetSecret(ctx context.Context, secretResourceName string, opts ...option.ClientOption) (string, error) {
	sm, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer sm.Close()

	secret, err := AccessSecretWithRetry(ctx, sm, secretResourceName)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret: %w", err)
	}
	return secret, nil
}

// AccessSecretWithRetry calls AccessSecret, retrying transient failures and
// corrupted payloads with exponential backoff.
func AccessSecretWithRetry(ctx context.Context, client Accessor, secretResourceName string) (string, error) {
	backoff := retryFunc(retryMinWaitDuration)
	backoff = retry.WithMaxRetries(retryMaxAttempts, backoff)

	var secret string
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := AccessSecret(ctx, client, secretResourceName)
		if err != nil {
			return retry.RetryableError(err)
		}
		secret = s
		return nil
	}); err != nil {
		return "", err //nolint:wrapcheck // already wrapped by AccessSecret
	}
	return secret, nil
}

// AccessSecret reads a secret from Secret Manager using the given client and
// validates that it was not corrupted during retrieval. The secretResourceName
// should be in the format: 'projects/*/secrets/*/versions/*'.
func AccessSecret(ctx context.Context, client Accessor, secretResourceName string) (string, error) {
	req := secretmanagerpb.AccessSecretVersionRequest{
		Name: secretResourceName,
	}
	result, err := client.AccessSecretVersion(ctx, &req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret version for %q - %w", secretResourceName, err)
	}

	payload := result.GetPayload()
	if payload == nil || payload.DataCrc32C == nil {
		return "", fmt.Errorf("failed to access secret version for %q - missing checksum", secretResourceName)
	}

	crc32c := crc32.MakeTable(crc32.Castagnoli)
	checksum := int64(crc32.Checksum(payload.GetData(), crc32c))
	if checksum != payload.GetDataCrc32C() {
		return "", fmt.Errorf("failed to access secret version for %q - data corrupted", secretResourceName)
	}
	return string(payload.GetData()), nil
}
