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

// Package exec runs a subcommand with the assumed AWS credentials in its
// environment.
package exec

import (
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	oaws "github.com/onelogin/onelogin-aws-cli/internal/aws"
	"github.com/onelogin/onelogin-aws-cli/internal/utils"
)

// Exec is a executor / a process runner
type Exec struct {
	name string
	args []string
}

// NewExec Create a new executor from the CLI arguments after the "--"
// terminator.
func NewExec() (*Exec, error) {
	args := []string{}
	foundArgs := false
	for _, arg := range os.Args {
		if arg == "--" {
			foundArgs = true
			continue
		}
		if !foundArgs {
			continue
		}

		args = append(args, arg)
	}

	if len(args) < 1 {
		return nil, fmt.Errorf("there must be at least one additional argument after the '--' CLI argument terminator")
	}

	ex := &Exec{
		name: args[0],
		args: args[1:],
	}

	return ex, nil
}

// Run Run the executor
func (e *Exec) Run(cc *oaws.CredentialContainer) error {
	pairs := map[string]string{}
	// carry over any AWS_* env vars already present
	for _, kv := range os.Environ() {
		pair := strings.SplitN(kv, "=", 2)
		k := pair[0]
		if strings.HasPrefix(k, "AWS_") {
			pairs[k] = pair[1]
		}
	}
	pairs[utils.AWSAccessKeyIDVar] = cc.AccessKeyID
	pairs[utils.AWSSecretAccessKeyVar] = cc.SecretAccessKey
	pairs[utils.AWSSessionTokenVar] = cc.SessionToken

	cmd := osexec.Command(e.name, e.args...)
	for k, v := range pairs {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	out, err := cmd.Output()
	if ee, ok := err.(*osexec.ExitError); ok {
		fmt.Fprintf(os.Stderr, "error running process\n")
		fmt.Fprintf(os.Stderr, "%s %s\n", e.name, strings.Join(e.args, " "))
		fmt.Fprintf(os.Stderr, utils.PassThroughStringNewLineFMT, ee.Stderr)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s", string(out))
	return nil
}
