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

package configslist

import (
	"github.com/spf13/cobra"

	"github.com/onelogin/onelogin-aws-cli/internal/config"
	"github.com/onelogin/onelogin-aws-cli/internal/logger"
)

// NewConfigsListCommand Sets up the list-configs cobra sub command
func NewConfigsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-configs",
		Short: "Lists configuration names in ~/.onelogin-aws.config",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewFullLogger()
			names, err := config.ConfigNames()
			if err != nil {
				return err
			}

			log.Info("Configurations:\n")
			for _, name := range names {
				log.Info(" %s\n", name)
			}
			return nil
		},
	}
}
