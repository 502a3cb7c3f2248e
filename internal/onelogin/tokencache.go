/*
 * Copyright (c) 2021-Present, OneLogin, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package onelogin

import (
	"sync"
	"time"

	"github.com/onelogin/onelogin-aws-cli/internal/config"
)

// tokenGenerator the slice of OAuthTokenClient the cache needs
type tokenGenerator interface {
	GenerateTokens(clientID, clientSecret string) (*TokenResponse, error)
}

// cachedToken a token plus its computed expiry; replaced wholesale on each
// refresh, only ever touched under the cache mutex.
type cachedToken struct {
	accessToken string
	expiresAt   time.Time
	raw         *TokenResponse
}

// TokenCache Holds a single cached OAuth access token for one Credentials
// identity. GetToken is safe for concurrent use; the mutex serializes the
// check-and-refresh section so at most one token request is ever in flight.
type TokenCache struct {
	client tokenGenerator
	creds  Credentials
	clock  config.Clock

	mu      sync.Mutex
	current *cachedToken
}

// NewTokenCache TokenCache constructor
func NewTokenCache(client tokenGenerator, creds Credentials, clock config.Clock) *TokenCache {
	return &TokenCache{
		client: client,
		creds:  creds,
		clock:  clock,
	}
}

// GetToken Returns a usable access token, refreshing through the OAuth
// client when the cached one is absent or expired. Callers arriving during a
// refresh block until it resolves and then observe the fresh value. A failed
// refresh propagates its error and leaves the previous (stale) entry in
// place, so the next call retries.
func (tc *TokenCache) GetToken() (string, error) {
	if tc.creds.Kind() == Bearer {
		return tc.creds.Secret(), nil
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.current != nil && tc.clock.Now().Before(tc.current.expiresAt) {
		return tc.current.accessToken, nil
	}

	tokens, err := tc.client.GenerateTokens(tc.creds.Login(), tc.creds.Secret())
	if err != nil {
		return "", err
	}

	tc.current = &cachedToken{
		accessToken: tokens.AccessToken,
		expiresAt:   tokens.ExpiresAt(),
		raw:         tokens,
	}
	return tc.current.accessToken, nil
}
