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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Execute runs the vci command line client.
func Execute() {
	command := CreateCommand()
	command.SetOut(os.Stdout)
	command.SetErr(os.Stderr)
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

// CreateCommand creates the root command with all subcommands and flags registered.
func CreateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           "vci",
		Short:         "Wallet-side OpenID4VCI issuance client",
		SilenceErrors: false,
		SilenceUsage:  true,
	}
	command.PersistentFlags().AddFlagSet(ClientFlags())
	command.AddCommand(issueCommand())
	command.AddCommand(deferredCommand())
	return command
}

// loadConfig assembles the client config for the given command and applies the log level.
func loadConfig(command *cobra.Command) (ClientConfig, error) {
	config := DefaultClientConfig()
	if err := config.Load(command.Flags()); err != nil {
		return ClientConfig{}, err
	}
	level, err := logrus.ParseLevel(config.Verbosity)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("invalid verbosity: %w", err)
	}
	logrus.SetLevel(level)
	return config, nil
}
