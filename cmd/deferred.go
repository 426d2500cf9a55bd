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
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"
	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/openid4vci"
)

var errCredentialNotReady = errors.New("credential not ready yet")

func deferredCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "deferred [acceptance-token]",
		Short: "Collect a deferred credential using its acceptance token",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			config, err := loadConfig(command)
			if err != nil {
				return err
			}
			httpClient := core.NewStrictHTTPClient(config.StrictMode, config.Timeout, nil)
			if err := resolveMetadata(command.Context(), &config, httpClient); err != nil {
				return err
			}
			if config.Issuer.DeferredCredentialEndpoint == "" {
				return errors.New("no deferred credential endpoint configured")
			}
			requester := openid4vci.NewCredentialRequester(httpClient)
			acceptanceToken := args[0]
			collect := func() (*openid4vci.CredentialResponse, error) {
				response, err := requester.RequestDeferredCredential(command.Context(), acceptanceToken, config.Issuer.DeferredCredentialEndpoint)
				if err != nil {
					return nil, err
				}
				// issuers may rotate the acceptance token between attempts
				if response.IsDeferred && response.AcceptanceToken != "" {
					acceptanceToken = response.AcceptanceToken
				}
				return response, nil
			}

			response, err := collect()
			if err != nil {
				return err
			}
			if response.IsDeferred {
				wait, _ := command.Flags().GetBool("wait")
				if !wait {
					fmt.Fprintln(command.OutOrStdout(), "Credential not ready yet, acceptance token: "+acceptanceToken)
					return nil
				}
				response, err = waitForDeferred(command, collect)
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

func addWaitFlags(command *cobra.Command) {
	command.Flags().Bool("wait", false, "Poll the deferred credential endpoint until the credential is ready")
	command.Flags().Uint("wait-attempts", 10, "Maximum number of polling attempts")
	command.Flags().Duration("wait-interval", 5*time.Second, "Delay between polling attempts")
}

// waitForDeferred polls collect until it yields a credential or the attempts run out.
// The flow itself never retries; this is the caller-side polling loop.
func waitForDeferred(command *cobra.Command, collect func() (*openid4vci.CredentialResponse, error)) (*openid4vci.CredentialResponse, error) {
	attempts, _ := command.Flags().GetUint("wait-attempts")
	interval, _ := command.Flags().GetDuration("wait-interval")
	return retry.DoWithData(func() (*openid4vci.CredentialResponse, error) {
		response, err := collect()
		if err != nil {
			return nil, err
		}
		if response.IsDeferred {
			return nil, errCredentialNotReady
		}
		return response, nil
	},
		retry.Context(command.Context()),
		retry.Attempts(attempts),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errCredentialNotReady)
		}),
	)
}
