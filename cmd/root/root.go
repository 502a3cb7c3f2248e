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

// Package root is the root cobra command of the CLI. Global settings flags
// live here and propagate to the subcommands.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/onelogin/onelogin-aws-cli/cmd/root/configslist"
	"github.com/onelogin/onelogin-aws-cli/cmd/root/login"
	"github.com/onelogin/onelogin-aws-cli/internal/config"
	cliFlag "github.com/onelogin/onelogin-aws-cli/internal/flag"
)

var flags = []cliFlag.Flag{
	{
		Name:   config.ConfigNameFlag,
		Short:  "C",
		Value:  "",
		Usage:  "Name of a ~/.onelogin-aws.config section to use",
		EnvVar: config.ConfigNameEnvVar,
	},
	{
		Name:   config.ProfileFlag,
		Short:  "p",
		Value:  "",
		Usage:  "AWS profile name to save the credentials under",
		EnvVar: config.ProfileEnvVar,
	},
	{
		Name:   config.UsernameFlag,
		Short:  "u",
		Value:  "",
		Usage:  "OneLogin username or email",
		EnvVar: config.UsernameEnvVar,
	},
	{
		Name:  config.RegionFlag,
		Short: "r",
		Value: "",
		Usage: "AWS region for the STS call",
	},
	{
		Name:  config.RoleARNFlag,
		Short: "R",
		Value: "",
		Usage: "IAM role ARN to assume without prompting",
	},
	{
		Name:   config.DurationSecondsFlag,
		Short:  "d",
		Value:  int64(0),
		Usage:  "AWS session duration in seconds (900 to 43200)",
		EnvVar: config.DurationSecondsEnvVar,
	},
	{
		Name:   config.AWSCredentialsFlag,
		Short:  "c",
		Value:  "",
		Usage:  "Path of the AWS credentials file",
		EnvVar: config.AWSSharedCredentialsFileEnvVar,
	},
	{
		Name:  config.WriteAWSCredentialsFlag,
		Short: "w",
		Value: false,
		Usage: "Write credentials to the AWS credentials file",
	},
	{
		Name:  config.FormatFlag,
		Short: "f",
		Value: "",
		Usage: "Output format: aws-credentials, env-var, or process-credentials",
	},
	{
		Name:  config.DebugAPICallsFlag,
		Short: "D",
		Value: false,
		Usage: "Dump full API requests and responses",
	},
	{
		Name:  config.ExecFlag,
		Short: "x",
		Value: false,
		Usage: "Run the command after '--' with the credentials in its environment",
	},
}

// NewRootCommand Sets up the root cobra command. Running it without a
// subcommand performs the login flow.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "onelogin-aws",
		Short:   "onelogin-aws - OneLogin federated identity for the AWS CLI",
		Version: config.Version,
		Long: `onelogin-aws - OneLogin federated identity for the AWS CLI

Authenticates the operator against OneLogin, completes MFA, exchanges the
resulting SAML assertion with AWS STS for temporary IAM credentials, and
saves or prints them for the AWS CLI.`,
		RunE: login.RunLogin,
	}
	cliFlag.MakeFlagBindings(cmd, flags, true)

	cmd.AddCommand(login.NewLoginCommand())
	cmd.AddCommand(configslist.NewConfigsListCommand())

	return cmd
}

// Execute Executes the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "onelogin-aws experienced the following error: %s\n", err)
		os.Exit(1)
	}
}
