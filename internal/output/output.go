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

// Package output renders assumed AWS credentials in the formats the CLI
// supports.
package output

import (
	oaws "github.com/onelogin/onelogin-aws-cli/internal/aws"
	"github.com/onelogin/onelogin-aws-cli/internal/config"
)

// Outputter Interface to output AWS credentials in different formats.
type Outputter interface {
	Output(c *config.Config, cc *oaws.CredentialContainer) error
}

// RenderAWSCredential Renders the credentials in the prescribed format.
func RenderAWSCredential(cfg *config.Config, cc *oaws.CredentialContainer) error {
	var o Outputter
	switch cfg.Format() {
	case config.ProcessCredentialsFormat:
		o = NewProcessCredentials()
	case config.EnvVarFormat:
		o = NewEnvVar()
	default:
		o = NewAWSCredentialsFile()
	}
	return o.Output(cfg, cc)
}
