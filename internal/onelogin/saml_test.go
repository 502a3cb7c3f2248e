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
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/onelogin/onelogin-aws-cli/internal/config"
	"github.com/onelogin/onelogin-aws-cli/internal/testutils"
	"github.com/stretchr/testify/require"
)

const tokenResponseBody = `{"access_token":"test-access-token","created_at":"2009-11-10T23:00:00.000Z","expires_in":36000,"token_type":"bearer","account_id":555}`

func samlTestClient(t *testing.T, handler func(req *http.Request, body map[string]string) *http.Response) *Client {
	t.Helper()
	cfg, err := config.NewConfig(&config.Attributes{
		BaseURI:      "https://" + testutils.TestDomainName,
		Subdomain:    "example",
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		AWSAppID:     "123456",
	})
	require.NoError(t, err)
	cfg.SetClock(testutils.NewTestClock())

	cfg.HTTPClient().Transport = testutils.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == OAuthTokenEndpoint {
			return testutils.JSONResponse(http.StatusOK, tokenResponseBody), nil
		}

		require.Equal(t, "bearer test-access-token", req.Header.Get("Authorization"))
		payload, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		body := map[string]string{}
		require.NoError(t, json.Unmarshal(payload, &body))
		return handler(req, body), nil
	})

	return NewClient(cfg)
}

func TestGenerateAssertionValidatesArguments(t *testing.T) {
	client := samlTestClient(t, func(req *http.Request, body map[string]string) *http.Response {
		t.Errorf("no SAML HTTP request expected, got %s %s", req.Method, req.URL)
		return nil
	})

	var vErr *ValidationError
	_, err := client.SAML.GenerateAssertion("", "pass", "123456", "example")
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "usernameOrEmail", vErr.Field)

	_, err = client.SAML.GenerateAssertion("user@example.com", "pass", "", "example")
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "appId", vErr.Field)
}

func TestGenerateAssertionSuccess(t *testing.T) {
	client := samlTestClient(t, func(req *http.Request, body map[string]string) *http.Response {
		require.Equal(t, SAMLAssertionEndpoint, req.URL.Path)
		require.Equal(t, map[string]string{
			"username_or_email": "user@example.com",
			"password":          "pass",
			"app_id":            "123456",
			"subdomain":         "example",
		}, body)
		return testutils.JSONResponse(http.StatusOK, `{"message":"Success","data":"QmFzZTY0U0FNTA=="}`)
	})

	resp, err := client.SAML.GenerateAssertion("user@example.com", "pass", "123456", "example")
	require.NoError(t, err)
	require.False(t, resp.MFARequired())
	require.Equal(t, "QmFzZTY0U0FNTA==", resp.Data)
}

func TestGenerateAssertionMFAStepUp(t *testing.T) {
	stepUp := `{
		"message": "MFA is required for this user",
		"state_token": "state-123",
		"devices": [
			{"device_id": 111, "device_type": "OneLogin Protect"},
			{"device_id": 222, "device_type": "Google Authenticator"}
		],
		"callback_url": "https://api.us.onelogin.com/api/2/saml_assertion/verify_factor"
	}`
	client := samlTestClient(t, func(req *http.Request, body map[string]string) *http.Response {
		return testutils.JSONResponse(http.StatusOK, stepUp)
	})

	resp, err := client.SAML.GenerateAssertion("user@example.com", "pass", "123456", "example")
	require.NoError(t, err)
	require.True(t, resp.MFARequired())
	require.Equal(t, "state-123", resp.StateToken)
	require.Len(t, resp.Devices, 2)
	require.Equal(t, 111, resp.Devices[0].DeviceID)
}

func TestVerifyFactor(t *testing.T) {
	client := samlTestClient(t, func(req *http.Request, body map[string]string) *http.Response {
		require.Equal(t, VerifyFactorEndpoint, req.URL.Path)
		// device_id travels as a string even though devices list it as a number
		require.Equal(t, map[string]string{
			"app_id":      "123456",
			"device_id":   "111",
			"state_token": "state-123",
			"otp_token":   "424242",
		}, body)
		return testutils.JSONResponse(http.StatusOK, `{"message":"Success","data":"QmFzZTY0U0FNTA=="}`)
	})

	resp, err := client.SAML.VerifyFactor("123456", 111, "state-123", "424242")
	require.NoError(t, err)
	require.False(t, resp.MFARequired())
	require.Equal(t, "QmFzZTY0U0FNTA==", resp.Data)
}

func TestVerifyFactorAuthorizationError(t *testing.T) {
	client := samlTestClient(t, func(req *http.Request, body map[string]string) *http.Response {
		return testutils.JSONResponse(http.StatusUnauthorized,
			`{"status":{"error":true,"code":401,"type":"Unauthorized","message":"Failed authentication with this factor"}}`)
	})

	_, err := client.SAML.VerifyFactor("123456", 111, "state-123", "000000")
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Failed authentication with this factor", authErr.Message)
}
