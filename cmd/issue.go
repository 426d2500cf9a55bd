/*
 * Copyright (C) 2025 Verimble community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/openid4vci"
)

func issueCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "issue [offer]",
		Short: "Accept a credential offer and retrieve the offered credential",
		Long: "Accepts the given credential offer (deeplink or URL) and runs the issuance flow: " +
			"authorization, token exchange and the credential request. " +
			"Prints the credential on success, or the acceptance token when issuance is deferred.",
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			config, err := loadConfig(command)
			if err != nil {
				return err
			}
			httpClient := core.NewStrictHTTPClient(config.StrictMode, config.Timeout, nil)
			if err := resolveMetadata(command.Context(), &config, httpClient); err != nil {
				return err
			}
			params, err := config.FlowParams()
			if err != nil {
				return err
			}
			flow := openid4vci.NewFlow(params, config.StrictMode, config.Timeout)
			response, err := flow.Issue(command.Context(), args[0])
			if err != nil {
				return err
			}
			if response.IsDeferred {
				wait, _ := command.Flags().GetBool("wait")
				if !wait {
					fmt.Fprintln(command.OutOrStdout(), "Issuance deferred, collect with: vci deferred "+response.AcceptanceToken)
					return nil
				}
				response, err = waitForDeferred(command, func() (*openid4vci.CredentialResponse, error) {
					return flow.CollectDeferred(command.Context())
				})
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(command.OutOrStdout(), response.Credential)
			return nil
		},
	}
	addWaitFlags(command)
	return command
}
