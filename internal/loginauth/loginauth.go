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

// Package loginauth drives the login flow end to end: OneLogin SAML
// assertion with MFA step-up, role selection, the STS assume role call, and
// rendering of the assumed credentials.
package loginauth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	oaws "github.com/onelogin/onelogin-aws-cli/internal/aws"
	"github.com/onelogin/onelogin-aws-cli/internal/config"
	"github.com/onelogin/onelogin-aws-cli/internal/exec"
	"github.com/onelogin/onelogin-aws-cli/internal/onelogin"
	"github.com/onelogin/onelogin-aws-cli/internal/output"
	"github.com/onelogin/onelogin-aws-cli/internal/saml"
)

// Prompter collects the login inputs that settings resolution left open.
type Prompter interface {
	AskUsername() (string, error)
	AskPassword() (string, error)
	ChooseDevice(devices []onelogin.Device) (*onelogin.Device, error)
	AskOTP(device *onelogin.Device) (string, error)
	ChooseRole(roles []saml.IAMRole) (*saml.IAMRole, error)
}

// LoginAuthentication Orchestrates the OneLogin to AWS credential exchange.
type LoginAuthentication struct {
	config   *config.Config
	client   *onelogin.Client
	prompter Prompter
}

// NewLoginAuthentication New login authentication constructor
func NewLoginAuthentication(cfg *config.Config, p Prompter) *LoginAuthentication {
	return &LoginAuthentication{
		config:   cfg,
		client:   onelogin.NewClient(cfg),
		prompter: p,
	}
}

// EstablishIAMCredentials Runs the full login flow and renders the assumed
// AWS credentials in the configured format.
func (l *LoginAuthentication) EstablishIAMCredentials() error {
	if err := l.collectLoginInputs(); err != nil {
		return err
	}

	resp, err := l.fetchSAMLResponse()
	if err != nil {
		l.config.Logger.Warn("%s SAML assertion was not granted\n", aurora.Red("✖"))
		return err
	}

	assertion := resp.Data
	if assertion == "" {
		return &saml.ProtocolError{Message: "assertion response carries no SAML document"}
	}
	decoded, err := base64.StdEncoding.DecodeString(assertion)
	if err != nil {
		return &saml.ProtocolError{Message: "SAML document is not valid base64"}
	}

	roles := saml.ExtractRoles(string(decoded))
	if len(roles) == 0 {
		return &saml.ProtocolError{Message: "no assumable roles in the SAML assertion"}
	}

	role, err := l.selectRole(roles)
	if err != nil {
		return err
	}

	cc, err := oaws.AssumeRoleWithSAML(l.config, role.RoleARN, role.PrincipalARN, assertion)
	if err != nil {
		return err
	}
	cc.Profile = l.profileName(role)

	if err = output.RenderAWSCredential(l.config, cc); err != nil {
		return err
	}

	expiry := "unknown"
	if cc.Expiration != nil {
		expiry = cc.Expiration.UTC().Format(time.RFC3339)
	}
	l.config.Logger.Warn("%s assumed %q as profile %q, expires %s\n", aurora.Green("✔"), role.RoleARN, cc.Profile, expiry)

	if l.config.Exec() {
		exe, err := exec.NewExec()
		if err != nil {
			return err
		}
		return exe.Run(cc)
	}
	return nil
}

// collectLoginInputs fills username and password from the prompter when
// settings resolution left them empty.
func (l *LoginAuthentication) collectLoginInputs() error {
	if l.config.Username() == "" {
		username, err := l.prompter.AskUsername()
		if err != nil {
			return err
		}
		l.config.SetUsername(username)
	}
	if l.config.Password() == "" {
		password, err := l.prompter.AskPassword()
		if err != nil {
			return err
		}
		l.config.SetPassword(password)
	}
	return nil
}

// fetchSAMLResponse requests the assertion and completes the MFA step-up when
// OneLogin demands one.
func (l *LoginAuthentication) fetchSAMLResponse() (*onelogin.SAMLResponse, error) {
	resp, err := l.client.SAML.GenerateAssertion(
		l.config.Username(),
		l.config.Password(),
		l.config.AWSAppID(),
		l.config.Subdomain(),
	)
	if err != nil {
		return nil, err
	}
	if !resp.MFARequired() {
		return resp, nil
	}

	device, err := l.selectDevice(resp.Devices)
	if err != nil {
		return nil, err
	}

	otp := l.config.OTP()
	if otp == "" {
		if otp, err = l.prompter.AskOTP(device); err != nil {
			return nil, err
		}
	}

	resp, err = l.client.SAML.VerifyFactor(l.config.AWSAppID(), device.DeviceID, resp.StateToken, otp)
	if err != nil {
		return nil, err
	}
	if resp.MFARequired() {
		return nil, &saml.ProtocolError{Message: fmt.Sprintf("factor verification did not complete: %s", resp.Message)}
	}
	return resp, nil
}

// selectDevice resolves the MFA device: a configured otp_device_id must match
// an enrolled device, otherwise the prompter chooses.
func (l *LoginAuthentication) selectDevice(devices []onelogin.Device) (*onelogin.Device, error) {
	if len(devices) == 0 {
		return nil, &saml.ProtocolError{Message: "MFA is required but no devices are enrolled"}
	}
	if want := l.config.OTPDeviceID(); want != 0 {
		for i := range devices {
			if devices[i].DeviceID == want {
				return &devices[i], nil
			}
		}
		return nil, &saml.ProtocolError{Message: fmt.Sprintf("configured otp_device_id %d is not an enrolled MFA device", want)}
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}
	return l.prompter.ChooseDevice(devices)
}

// selectRole resolves the IAM role: a configured role_arn must be among the
// extracted roles, otherwise the prompter chooses.
func (l *LoginAuthentication) selectRole(roles []saml.IAMRole) (*saml.IAMRole, error) {
	if want := l.config.RoleARN(); want != "" {
		for i := range roles {
			if roles[i].RoleARN == want {
				return &roles[i], nil
			}
		}
		return nil, &saml.ProtocolError{Message: fmt.Sprintf("configured role_arn %q is not among the assumable roles", want)}
	}
	if len(roles) == 1 {
		return &roles[0], nil
	}
	return l.prompter.ChooseRole(roles)
}

// profileName the configured profile, else "<username>@<role-name>".
func (l *LoginAuthentication) profileName(role *saml.IAMRole) string {
	if profile := l.config.Profile(); profile != "" {
		return profile
	}
	roleName := role.RoleARN
	if idx := strings.LastIndex(roleName, "/"); idx >= 0 {
		roleName = roleName[idx+1:]
	}
	profile := fmt.Sprintf("%s@%s", l.config.Username(), roleName)
	l.config.SetProfile(profile)
	return profile
}
