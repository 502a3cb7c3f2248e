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

package output

import (
	"os"
	"path/filepath"

	oaws "github.com/onelogin/onelogin-aws-cli/internal/aws"
	"github.com/onelogin/onelogin-aws-cli/internal/config"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// legacySessionTokenKey key name some very old AWS SDKs read instead of
// aws_session_token; it is removed on rewrite so stale tokens never linger.
const legacySessionTokenKey = "aws_security_token"

// AWSCredentialsFile AWS credentials file output formatter
type AWSCredentialsFile struct{}

// NewAWSCredentialsFile Creates a new AWSCredentialsFile
func NewAWSCredentialsFile() *AWSCredentialsFile {
	return &AWSCredentialsFile{}
}

// Output Satisfies the Outputter interface and writes the credential to the
// profile's section of the AWS credentials file, creating the file if need be.
// Rewriting the same profile replaces its keys in place; other profiles are
// left untouched.
func (e *AWSCredentialsFile) Output(c *config.Config, cc *oaws.CredentialContainer) error {
	filename := c.AWSCredentials()
	profile := cc.Profile

	cfc := &oaws.CredsFileCredential{
		AccessKeyID:     cc.AccessKeyID,
		SecretAccessKey: cc.SecretAccessKey,
		SessionToken:    cc.SessionToken,
		Region:          cc.Region,
	}
	cfc.SetProfile(profile)

	if err := ensureCredsFileExists(filename); err != nil {
		return err
	}
	if err := saveProfile(filename, cfc); err != nil {
		return err
	}

	c.Logger.Warn("Wrote profile %q to %s\n", profile, filename)
	c.Logger.Warn("Use them with the AWS CLI, e.g. aws --profile %q sts get-caller-identity\n", profile)
	return nil
}

// ensureCredsFileExists creates the credentials file, and its directory, when
// absent. The file is created owner read/write only.
func ensureCredsFileExists(filename string) error {
	_, err := os.Stat(filename)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "unable to inspect %s", filename)
	}

	dir := filepath.Dir(filename)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "unable to create %s directory", dir)
	}
	f, err := os.OpenFile(filename, os.O_CREATE, 0o600)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", filename)
	}
	return f.Close()
}

func saveProfile(filename string, cfc *oaws.CredsFileCredential) error {
	creds, err := ini.Load(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to parse %s", filename)
	}

	section, err := creds.NewSection(cfc.Profile())
	if err != nil {
		return err
	}
	if err = section.ReflectFrom(cfc); err != nil {
		return err
	}
	if cfc.Region == "" {
		section.DeleteKey("region")
	}
	section.DeleteKey(legacySessionTokenKey)

	return creds.SaveTo(filename)
}
