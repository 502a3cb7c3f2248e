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
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/onelogin/onelogin-aws-cli/internal/testutils"
	"github.com/stretchr/testify/require"
)

// countingGenerator fake token generator that counts its calls and can be
// told to fail.
type countingGenerator struct {
	calls   int32
	fail    bool
	clock   *testutils.TestClock
	expires int64
}

func (g *countingGenerator) GenerateTokens(clientID, clientSecret string) (*TokenResponse, error) {
	n := atomic.AddInt32(&g.calls, 1)
	if g.fail {
		return nil, fmt.Errorf("token endpoint unavailable")
	}
	return &TokenResponse{
		AccessToken: fmt.Sprintf("token-%d", n),
		CreatedAt:   g.clock.Now(),
		ExpiresIn:   g.expires,
		TokenType:   "bearer",
	}, nil
}

func newCacheFixture() (*TokenCache, *countingGenerator, *testutils.TestClock) {
	clock := testutils.NewTestClock()
	gen := &countingGenerator{clock: clock, expires: 36000}
	cache := NewTokenCache(gen, NewBasicCredentials("client-id", "client-secret"), clock)
	return cache, gen, clock
}

func TestTokenCacheSingleFlight(t *testing.T) {
	cache, gen, _ := newCacheFixture()

	const n = 25
	tokens := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.GetToken()
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "token-1", tokens[i])
	}
}

func TestTokenCacheReusesUnexpiredToken(t *testing.T) {
	cache, gen, clock := newCacheFixture()

	first, err := cache.GetToken()
	require.NoError(t, err)

	clock.Advance(9 * time.Hour)
	second, err := cache.GetToken()
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
}

func TestTokenCacheRefreshesExpiredToken(t *testing.T) {
	cache, gen, clock := newCacheFixture()

	first, err := cache.GetToken()
	require.NoError(t, err)

	clock.Advance(11 * time.Hour)
	second, err := cache.GetToken()
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Equal(t, int32(2), atomic.LoadInt32(&gen.calls))
}

func TestTokenCacheFailedRefreshRetries(t *testing.T) {
	cache, gen, _ := newCacheFixture()
	gen.fail = true

	_, err := cache.GetToken()
	require.Error(t, err)

	// the failure is not cached; the next call retries the endpoint
	gen.fail = false
	token, err := cache.GetToken()
	require.NoError(t, err)
	require.Equal(t, "token-2", token)
	require.Equal(t, int32(2), atomic.LoadInt32(&gen.calls))
}

func TestTokenCacheBearerCredentials(t *testing.T) {
	clock := testutils.NewTestClock()
	gen := &countingGenerator{clock: clock, expires: 36000}
	cache := NewTokenCache(gen, NewBearerCredentials("static-token"), clock)

	token, err := cache.GetToken()
	require.NoError(t, err)
	require.Equal(t, "static-token", token)
	require.Equal(t, int32(0), atomic.LoadInt32(&gen.calls))
}
