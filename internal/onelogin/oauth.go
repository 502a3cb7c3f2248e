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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/onelogin/onelogin-aws-cli/internal/utils"
)

const (
	// OAuthTokenEndpoint the client credentials token endpoint
	OAuthTokenEndpoint = "/auth/oauth2/v2/token"
)

// TokenResponse OneLogin API response of POST /auth/oauth2/v2/token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresIn   int64     `json:"expires_in"`
	TokenType   string    `json:"token_type"`
	AccountID   int64     `json:"account_id"`
}

// ExpiresAt The instant the access token stops being usable,
// created_at (UTC) + expires_in seconds.
func (t *TokenResponse) ExpiresAt() time.Time {
	return t.CreatedAt.UTC().Add(time.Duration(t.ExpiresIn) * time.Second)
}

// OAuthTokenClient performs the client-credentials token request against the
// OneLogin identity endpoint.
type OAuthTokenClient struct {
	baseURI    string
	userAgent  string
	httpClient *http.Client
}

// NewOAuthTokenClient OAuthTokenClient constructor
func NewOAuthTokenClient(baseURI, userAgent string, httpClient *http.Client) *OAuthTokenClient {
	return &OAuthTokenClient{
		baseURI:    baseURI,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// GenerateTokens Requests a fresh access token with the client-credentials
// grant. Credentials travel in the Authorization header in OneLogin's
// "client_id:<id>, client_secret:<secret>" form.
func (c *OAuthTokenClient) GenerateTokens(clientID, clientSecret string) (*TokenResponse, error) {
	if clientID == "" {
		return nil, &ValidationError{Field: "clientId"}
	}
	if clientSecret == "" {
		return nil, &ValidationError{Field: "clientSecret"}
	}

	body, err := json.Marshal(map[string]string{"grant_type": "client_credentials"})
	if err != nil {
		return nil, err
	}
	apiURL := c.baseURI + OAuthTokenEndpoint
	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Add(utils.Authorization, fmt.Sprintf("client_id:%s, client_secret:%s", clientID, clientSecret))
	req.Header.Add(utils.Accept, utils.ApplicationJSON)
	req.Header.Add(utils.ContentType, utils.ApplicationJSON)
	req.Header.Add(utils.UserAgentHeader, c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: apiURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err = NewAPIError(resp); err != nil {
		return nil, err
	}

	token := &TokenResponse{}
	if err = json.NewDecoder(resp.Body).Decode(token); err != nil {
		return nil, err
	}

	return token, nil
}
