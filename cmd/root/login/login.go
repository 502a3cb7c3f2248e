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

package login

import (
	"github.com/spf13/cobra"

	"github.com/onelogin/onelogin-aws-cli/internal/config"
	"github.com/onelogin/onelogin-aws-cli/internal/loginauth"
	"github.com/onelogin/onelogin-aws-cli/internal/prompter"
)

// NewLoginCommand Sets up the login cobra sub command
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Establish AWS credentials through OneLogin",
		RunE:  RunLogin,
	}
}

// RunLogin Evaluates settings and drives the login flow. Also the root
// command's default run.
func RunLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.EvaluateSettings()
	if err != nil {
		return err
	}
	console, err := prompter.NewConsole()
	if err != nil {
		return err
	}
	return loginauth.NewLoginAuthentication(cfg, console).EstablishIAMCredentials()
}
