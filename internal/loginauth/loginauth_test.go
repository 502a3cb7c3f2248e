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

package loginauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/onelogin/onelogin-aws-cli/internal/config"
	"github.com/onelogin/onelogin-aws-cli/internal/onelogin"
	"github.com/onelogin/onelogin-aws-cli/internal/saml"
	"github.com/onelogin/onelogin-aws-cli/internal/testutils"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

const tokenResponseBody = `{"access_token":"test-access-token","created_at":"2009-11-10T23:00:00.000Z","expires_in":36000,"token_type":"bearer","account_id":555}`

const stsResponseBody = `<AssumeRoleWithSAMLResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <AssumeRoleWithSAMLResult>
    <Credentials>
      <AccessKeyId>ASIATESTACCESSKEY</AccessKeyId>
      <SecretAccessKey>test-secret-access-key</SecretAccessKey>
      <SessionToken>test-session-token</SessionToken>
      <Expiration>2026-03-01T12:00:00Z</Expiration>
    </Credentials>
  </AssumeRoleWithSAMLResult>
  <ResponseMetadata>
    <RequestId>00000000-0000-0000-0000-000000000000</RequestId>
  </ResponseMetadata>
</AssumeRoleWithSAMLResponse>`

// scriptPrompter scripted Prompter with call counts
type scriptPrompter struct {
	otp string

	askUsernameCalls  int
	askPasswordCalls  int
	chooseDeviceCalls int
	askOTPCalls       int
	chooseRoleCalls   int
}

func (p *scriptPrompter) AskUsername() (string, error) {
	p.askUsernameCalls++
	return "prompted.user@example.com", nil
}

func (p *scriptPrompter) AskPassword() (string, error) {
	p.askPasswordCalls++
	return "prompted-password", nil
}

func (p *scriptPrompter) ChooseDevice(devices []onelogin.Device) (*onelogin.Device, error) {
	p.chooseDeviceCalls++
	return &devices[0], nil
}

func (p *scriptPrompter) AskOTP(device *onelogin.Device) (string, error) {
	p.askOTPCalls++
	return p.otp, nil
}

func (p *scriptPrompter) ChooseRole(roles []saml.IAMRole) (*saml.IAMRole, error) {
	p.chooseRoleCalls++
	return &roles[0], nil
}

type captureLogger struct {
	info strings.Builder
	warn strings.Builder
}

func (l *captureLogger) Info(format string, a ...any) (int, error) {
	return fmt.Fprintf(&l.info, format, a...)
}

func (l *captureLogger) Warn(format string, a ...any) (int, error) {
	return fmt.Fprintf(&l.warn, format, a...)
}

func samlDocument(roleARNs ...string) string {
	values := ""
	for _, arn := range roleARNs {
		values += fmt.Sprintf("<saml:AttributeValue>%s,arn:aws:iam::123456789012:saml-provider/OneLogin</saml:AttributeValue>", arn)
	}
	return fmt.Sprintf(`<saml:Response xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion">
  <saml:Assertion>
    <saml:AttributeStatement>
      <saml:Attribute Name="%s">%s</saml:Attribute>
    </saml:AttributeStatement>
  </saml:Assertion>
</saml:Response>`, saml.RoleAttributeName, values)
}

// fakeAPI scripted OneLogin / STS backend behind a RoundTripFunc
type fakeAPI struct {
	assertionResponse   string
	verifyResponse      string
	verifyRequests      []map[string]string
	assertionStatusCode int
}

func (f *fakeAPI) roundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasPrefix(req.URL.Host, "sts.") {
		header := http.Header{}
		header.Set("Content-Type", "text/xml")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(stsResponseBody)),
		}, nil
	}

	switch req.URL.Path {
	case onelogin.OAuthTokenEndpoint:
		return testutils.JSONResponse(http.StatusOK, tokenResponseBody), nil
	case onelogin.SAMLAssertionEndpoint:
		statusCode := f.assertionStatusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		return testutils.JSONResponse(statusCode, f.assertionResponse), nil
	case onelogin.VerifyFactorEndpoint:
		payload, _ := io.ReadAll(req.Body)
		body := map[string]string{}
		_ = json.Unmarshal(payload, &body)
		f.verifyRequests = append(f.verifyRequests, body)
		return testutils.JSONResponse(http.StatusOK, f.verifyResponse), nil
	}
	return testutils.JSONResponse(http.StatusNotFound, `{"message":"not found","statusCode":404,"name":"NotFoundError"}`), nil
}

func successBody(samlXML string) string {
	data := base64.StdEncoding.EncodeToString([]byte(samlXML))
	return fmt.Sprintf(`{"message":"Success","data":"%s"}`, data)
}

func loginFixture(t *testing.T, api *fakeAPI, mutate func(attrs *config.Attributes)) (*config.Config, *scriptPrompter, *captureLogger) {
	t.Helper()
	attrs := &config.Attributes{
		BaseURI:        "https://" + testutils.TestDomainName,
		Subdomain:      "example",
		ClientID:       "test-client-id",
		ClientSecret:   "test-client-secret",
		AWSAppID:       "123456",
		Username:       "test.user@example.com",
		Password:       "correct-horse",
		Region:         "us-east-1",
		AWSCredentials: filepath.Join(t.TempDir(), "credentials"),
	}
	if mutate != nil {
		mutate(attrs)
	}
	cfg, err := config.NewConfig(attrs)
	require.NoError(t, err)
	cfg.SetClock(testutils.NewTestClock())
	cfg.HTTPClient().Transport = testutils.RoundTripFunc(api.roundTrip)

	log := &captureLogger{}
	cfg.Logger = log
	return cfg, &scriptPrompter{otp: "424242"}, log
}

func TestEstablishIAMCredentialsNoMFA(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: successBody(samlDocument("arn:aws:iam::123456789012:role/Admin")),
	}
	cfg, p, log := loginFixture(t, api, nil)

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	require.NoError(t, err)

	// nothing needed prompting: credentials configured, one role, no MFA
	require.Zero(t, p.askUsernameCalls)
	require.Zero(t, p.askPasswordCalls)
	require.Zero(t, p.chooseDeviceCalls)
	require.Zero(t, p.askOTPCalls)
	require.Zero(t, p.chooseRoleCalls)

	creds, err := ini.Load(cfg.AWSCredentials())
	require.NoError(t, err)
	section := creds.Section("test.user@example.com@Admin")
	require.Equal(t, "ASIATESTACCESSKEY", section.Key("aws_access_key_id").String())
	require.Equal(t, "test-secret-access-key", section.Key("aws_secret_access_key").String())
	require.Equal(t, "test-session-token", section.Key("aws_session_token").String())

	require.Contains(t, log.warn.String(), "arn:aws:iam::123456789012:role/Admin")
	require.Contains(t, log.warn.String(), "2026-03-01T12:00:00Z")
}

func TestEstablishIAMCredentialsMFAPreselectedDevice(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: `{
			"message": "MFA is required for this user",
			"state_token": "state-123",
			"devices": [
				{"device_id": 111, "device_type": "OneLogin Protect"},
				{"device_id": 222, "device_type": "Google Authenticator"}
			]
		}`,
		verifyResponse: successBody(samlDocument("arn:aws:iam::123456789012:role/Admin")),
	}
	cfg, p, _ := loginFixture(t, api, func(attrs *config.Attributes) {
		attrs.OTPDeviceID = 222
		attrs.OTP = "313131"
	})

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	require.NoError(t, err)

	// the configured device and OTP bypass both prompts
	require.Zero(t, p.chooseDeviceCalls)
	require.Zero(t, p.askOTPCalls)
	require.Len(t, api.verifyRequests, 1)
	require.Equal(t, "222", api.verifyRequests[0]["device_id"])
	require.Equal(t, "313131", api.verifyRequests[0]["otp_token"])
	require.Equal(t, "state-123", api.verifyRequests[0]["state_token"])
}

func TestEstablishIAMCredentialsMFAPromptsDeviceChoice(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: `{
			"message": "MFA is required for this user",
			"state_token": "state-123",
			"devices": [
				{"device_id": 111, "device_type": "OneLogin Protect"},
				{"device_id": 222, "device_type": "Google Authenticator"}
			]
		}`,
		verifyResponse: successBody(samlDocument("arn:aws:iam::123456789012:role/Admin")),
	}
	cfg, p, _ := loginFixture(t, api, nil)

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	require.NoError(t, err)

	// two enrolled devices and no otp_device_id: the prompter picks one,
	// then exactly one verify_factor call follows
	require.Equal(t, 1, p.chooseDeviceCalls)
	require.Equal(t, 1, p.askOTPCalls)
	require.Len(t, api.verifyRequests, 1)
	require.Equal(t, "111", api.verifyRequests[0]["device_id"])
	require.Equal(t, "424242", api.verifyRequests[0]["otp_token"])
}

func TestEstablishIAMCredentialsMFASoleDeviceAutoSelected(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: `{
			"message": "MFA is required for this user",
			"state_token": "state-123",
			"devices": [{"device_id": 111, "device_type": "OneLogin Protect"}]
		}`,
		verifyResponse: successBody(samlDocument("arn:aws:iam::123456789012:role/Admin")),
	}
	cfg, p, _ := loginFixture(t, api, nil)

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	require.NoError(t, err)

	require.Zero(t, p.chooseDeviceCalls)
	require.Equal(t, 1, p.askOTPCalls)
	require.Len(t, api.verifyRequests, 1)
	require.Equal(t, "111", api.verifyRequests[0]["device_id"])
	require.Equal(t, "424242", api.verifyRequests[0]["otp_token"])
}

func TestEstablishIAMCredentialsConfiguredDeviceNotEnrolled(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: `{
			"message": "MFA is required for this user",
			"state_token": "state-123",
			"devices": [{"device_id": 111, "device_type": "OneLogin Protect"}]
		}`,
	}
	cfg, p, _ := loginFixture(t, api, func(attrs *config.Attributes) {
		attrs.OTPDeviceID = 999
	})

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	var protoErr *saml.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Contains(t, protoErr.Message, "999")
	require.Empty(t, api.verifyRequests)
}

func TestEstablishIAMCredentialsConfiguredRole(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: successBody(samlDocument(
			"arn:aws:iam::123456789012:role/Admin",
			"arn:aws:iam::123456789012:role/ReadOnly",
		)),
	}
	cfg, p, _ := loginFixture(t, api, func(attrs *config.Attributes) {
		attrs.RoleARN = "arn:aws:iam::123456789012:role/ReadOnly"
		attrs.Profile = "readonly"
	})

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	require.NoError(t, err)
	require.Zero(t, p.chooseRoleCalls)

	creds, err := ini.Load(cfg.AWSCredentials())
	require.NoError(t, err)
	require.True(t, creds.Section("readonly").HasKey("aws_access_key_id"))
}

func TestEstablishIAMCredentialsConfiguredRoleMissing(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: successBody(samlDocument("arn:aws:iam::123456789012:role/Admin")),
	}
	cfg, p, _ := loginFixture(t, api, func(attrs *config.Attributes) {
		attrs.RoleARN = "arn:aws:iam::123456789012:role/DoesNotExist"
	})

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	var protoErr *saml.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Contains(t, protoErr.Message, "arn:aws:iam::123456789012:role/DoesNotExist")
}

func TestEstablishIAMCredentialsNoRolesInAssertion(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: successBody(`<saml:Response xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion"></saml:Response>`),
	}
	cfg, p, _ := loginFixture(t, api, nil)

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	var protoErr *saml.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Contains(t, protoErr.Message, "no assumable roles")
}

func TestEstablishIAMCredentialsAuthenticationFailure(t *testing.T) {
	api := &fakeAPI{
		assertionStatusCode: http.StatusUnauthorized,
		assertionResponse:   `{"status":{"error":true,"code":401,"type":"Unauthorized","message":"Authentication Failure"}}`,
	}
	cfg, p, log := loginFixture(t, api, nil)

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	var authErr *onelogin.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Authentication Failure", authErr.Message)
	require.Contains(t, log.warn.String(), "SAML assertion was not granted")
}

func TestEstablishIAMCredentialsPromptsForMissingCredentials(t *testing.T) {
	api := &fakeAPI{
		assertionResponse: successBody(samlDocument("arn:aws:iam::123456789012:role/Admin")),
	}
	cfg, p, _ := loginFixture(t, api, func(attrs *config.Attributes) {
		attrs.Username = ""
		attrs.Password = ""
	})

	err := NewLoginAuthentication(cfg, p).EstablishIAMCredentials()
	require.NoError(t, err)
	require.Equal(t, 1, p.askUsernameCalls)
	require.Equal(t, 1, p.askPasswordCalls)
	require.Equal(t, "prompted.user@example.com", cfg.Username())
}
