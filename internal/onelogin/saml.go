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
	"strconv"

	"github.com/onelogin/onelogin-aws-cli/internal/utils"
)

const (
	// SAMLAssertionEndpoint the SAML assertion endpoint
	SAMLAssertionEndpoint = "/api/2/saml_assertion"
	// VerifyFactorEndpoint the SAML assertion MFA step-up endpoint
	VerifyFactorEndpoint = "/api/2/saml_assertion/verify_factor"

	// MessageSuccess sentinel message value of a final SAML response; any
	// other value means a factor verification is still required
	MessageSuccess = "Success"
)

// Device An MFA factor registered for the user
type Device struct {
	DeviceID   int    `json:"device_id"`
	DeviceType string `json:"device_type"`
}

// User OneLogin user info carried on the SAML assertion response
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// SAMLResponse OneLogin API response of both SAML assertion endpoints. In the
// final state message is "Success" and data holds the base64 SAML document;
// in the step-up state data is empty and state_token/devices drive the factor
// verification instead.
type SAMLResponse struct {
	Message     string   `json:"message"`
	Data        string   `json:"data"`
	StateToken  string   `json:"state_token"`
	Devices     []Device `json:"devices"`
	CallbackURL string   `json:"callback_url"`
	User        *User    `json:"user"`
}

// MFARequired Whether the response demands a factor verification before the
// final SAML document is issued.
func (r *SAMLResponse) MFARequired() bool {
	return r.Message != MessageSuccess
}

// SAMLClient performs the SAML assertion and verify factor requests,
// authenticated with bearer tokens from the token cache.
type SAMLClient struct {
	baseURI    string
	userAgent  string
	httpClient *http.Client
	tokens     *TokenCache
}

// NewSAMLClient SAMLClient constructor
func NewSAMLClient(baseURI, userAgent string, httpClient *http.Client, tokens *TokenCache) *SAMLClient {
	return &SAMLClient{
		baseURI:    baseURI,
		userAgent:  userAgent,
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// GenerateAssertion Requests a SAML assertion for the user against the AWS
// app. All arguments are required; an empty one fails before any network
// call.
func (c *SAMLClient) GenerateAssertion(usernameOrEmail, password, appID, subdomain string) (*SAMLResponse, error) {
	if usernameOrEmail == "" {
		return nil, &ValidationError{Field: "usernameOrEmail"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password"}
	}
	if appID == "" {
		return nil, &ValidationError{Field: "appId"}
	}
	if subdomain == "" {
		return nil, &ValidationError{Field: "subdomain"}
	}

	body := map[string]string{
		"username_or_email": usernameOrEmail,
		"password":          password,
		"app_id":            appID,
		"subdomain":         subdomain,
	}
	return c.post(SAMLAssertionEndpoint, body)
}

// VerifyFactor Completes the MFA step-up with an OTP from the chosen device.
// The response carries the final SAML document in data.
func (c *SAMLClient) VerifyFactor(appID string, deviceID int, stateToken, otpToken string) (*SAMLResponse, error) {
	if appID == "" {
		return nil, &ValidationError{Field: "appId"}
	}
	if stateToken == "" {
		return nil, &ValidationError{Field: "stateToken"}
	}

	body := map[string]string{
		"app_id":      appID,
		"device_id":   strconv.Itoa(deviceID),
		"state_token": stateToken,
		"otp_token":   otpToken,
	}
	return c.post(VerifyFactorEndpoint, body)
}

func (c *SAMLClient) post(endpoint string, body map[string]string) (*SAMLResponse, error) {
	accessToken, err := c.tokens.GetToken()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	apiURL := c.baseURI + endpoint
	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Add(utils.Authorization, fmt.Sprintf("bearer %s", accessToken))
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

	samlResp := &SAMLResponse{}
	if err = json.NewDecoder(resp.Body).Decode(samlResp); err != nil {
		return nil, err
	}

	return samlResp, nil
}
