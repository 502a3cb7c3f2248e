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

// Package prompter collects login inputs from the operator: credentials, the
// MFA device and its OTP, and the IAM role to assume. When stdin is not a
// terminal the inputs are read once as a JSON document instead, so the CLI
// stays scriptable.
package prompter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/onelogin/onelogin-aws-cli/internal/onelogin"
	"github.com/onelogin/onelogin-aws-cli/internal/picker"
	"github.com/onelogin/onelogin-aws-cli/internal/saml"
)

// Feed scripted login inputs accepted on a redirected stdin
type Feed struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// Console interactive prompter backed by the terminal
type Console struct {
	interactive bool
	feed        *Feed
}

// NewConsole Creates a prompter. A redirected stdin switches it to feed mode.
func NewConsole() (*Console, error) {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return &Console{interactive: true}, nil
	}

	var feed Feed
	if err := json.NewDecoder(os.Stdin).Decode(&feed); err != nil {
		return nil, fmt.Errorf("stdin is not a TTY and does not carry a credentials JSON document: %w", err)
	}
	return &Console{feed: &feed}, nil
}

// AskUsername Prompts for the OneLogin username or email.
func (c *Console) AskUsername() (string, error) {
	if !c.interactive {
		if c.feed.Username == "" {
			return "", fmt.Errorf("stdin feed is missing \"username\"")
		}
		return c.feed.Username, nil
	}
	return askField("OneLogin username:", false)
}

// AskPassword Prompts for the OneLogin password, masked.
func (c *Console) AskPassword() (string, error) {
	if !c.interactive {
		if c.feed.Password == "" {
			return "", fmt.Errorf("stdin feed is missing \"password\"")
		}
		return c.feed.Password, nil
	}
	return askField("OneLogin password:", true)
}

// ChooseDevice Picks one of the user's enrolled MFA devices. A sole device is
// chosen without prompting.
func (c *Console) ChooseDevice(devices []onelogin.Device) (*onelogin.Device, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("no MFA devices to choose from")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}
	if !c.interactive {
		return nil, fmt.Errorf("MFA device selection requires a TTY; set otp_device_id to pre-select a device")
	}

	labels := make([]string, len(devices))
	byLabel := map[string]*onelogin.Device{}
	for i := range devices {
		label := fmt.Sprintf("%s (device %d)", devices[i].DeviceType, devices[i].DeviceID)
		labels[i] = label
		byLabel[label] = &devices[i]
	}
	choice, err := picker.Pick("Choose an MFA device:", labels)
	if err != nil {
		return nil, err
	}
	return byLabel[choice], nil
}

// AskOTP Prompts for the one time password of the chosen device.
func (c *Console) AskOTP(device *onelogin.Device) (string, error) {
	if !c.interactive {
		if c.feed.OTP == "" {
			return "", fmt.Errorf("stdin feed is missing \"otp\"")
		}
		return c.feed.OTP, nil
	}
	return askField(fmt.Sprintf("OTP from %s:", device.DeviceType), false)
}

// ChooseRole Picks one of the assumable IAM roles extracted from the SAML
// assertion. A sole role is chosen without prompting.
func (c *Console) ChooseRole(roles []saml.IAMRole) (*saml.IAMRole, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("no roles to choose from")
	}
	if len(roles) == 1 {
		return &roles[0], nil
	}
	if !c.interactive {
		return nil, fmt.Errorf("role selection requires a TTY; set role_arn to pre-select a role")
	}

	arns := make([]string, len(roles))
	byARN := map[string]*saml.IAMRole{}
	for i := range roles {
		arns[i] = roles[i].RoleARN
		byARN[roles[i].RoleARN] = &roles[i]
	}
	choice, err := picker.Pick("Choose an IAM role:", arns)
	if err != nil {
		return nil, err
	}
	return byARN[choice], nil
}
