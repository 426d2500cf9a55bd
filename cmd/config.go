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
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/crypto"
	"github.com/verimble/oid4vci-client/oauth"
	"github.com/verimble/oid4vci-client/openid4vci"
)

const defaultConfigFile = "vci.yaml"
const configFileFlag = "configfile"
const defaultEnvPrefix = "VCI_"
const defaultEnvDelimiter = "_"
const configDelimiter = "."

// ClientConfig holds the command line client's configuration.
// Values are assembled from defaults, a YAML config file, environment variables and flags,
// in that order of precedence (flags win).
type ClientConfig struct {
	Verbosity   string           `koanf:"verbosity"`
	StrictMode  bool             `koanf:"strictmode"`
	Timeout     time.Duration    `koanf:"timeout"`
	DID         string           `koanf:"did"`
	KeyFile     string           `koanf:"keyfile"`
	RedirectURI string           `koanf:"redirecturi"`
	Pin         string           `koanf:"pin"`
	AuthServer  AuthServerConfig `koanf:"authserver"`
	Issuer      IssuerConfig     `koanf:"issuer"`
}

// AuthServerConfig holds the authorization server endpoints.
type AuthServerConfig struct {
	Issuer                string `koanf:"issuer"`
	AuthorizationEndpoint string `koanf:"authorizationendpoint"`
	TokenEndpoint         string `koanf:"tokenendpoint"`
}

// IssuerConfig holds the credential issuer endpoints.
type IssuerConfig struct {
	CredentialIssuer           string `koanf:"credentialissuer"`
	CredentialEndpoint         string `koanf:"credentialendpoint"`
	DeferredCredentialEndpoint string `koanf:"deferredcredentialendpoint"`
}

// DefaultClientConfig returns a ClientConfig with default values set.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Verbosity:   "info",
		StrictMode:  true,
		Timeout:     30 * time.Second,
		RedirectURI: openid4vci.DefaultRedirectURI,
	}
}

// Load fills the config from the config file, environment and the given flag set.
func (c *ClientConfig) Load(flags *pflag.FlagSet) error {
	instance := koanf.New(configDelimiter)

	configFile := defaultConfigFile
	if flags.Changed(configFileFlag) {
		configFile, _ = flags.GetString(configFileFlag)
	}
	if err := instance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		// a missing default config file is fine, an explicitly configured one is not
		if !errors.Is(err, os.ErrNotExist) || flags.Changed(configFileFlag) {
			return fmt.Errorf("unable to load config file: %w", err)
		}
	}
	if err := instance.Load(env.Provider(defaultEnvPrefix, configDelimiter, func(rawKey string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(rawKey, defaultEnvPrefix)), defaultEnvDelimiter, configDelimiter)
	}), nil); err != nil {
		return err
	}
	if err := instance.Load(posflag.Provider(flags, configDelimiter, instance), nil); err != nil {
		return err
	}
	return instance.Unmarshal("", c)
}

// resolveMetadata fills in endpoints that were not configured explicitly by fetching the
// well-known metadata of the configured issuer identifiers. Explicit endpoints always win.
func resolveMetadata(ctx context.Context, config *ClientConfig, httpClient core.HTTPRequestDoer) error {
	loader := openid4vci.NewMetadataLoader(httpClient)
	if config.Issuer.CredentialEndpoint == "" && config.Issuer.CredentialIssuer != "" {
		metadata, err := loader.CredentialIssuerMetadata(ctx, config.Issuer.CredentialIssuer)
		if err != nil {
			return err
		}
		config.Issuer.CredentialEndpoint = metadata.CredentialEndpoint
		config.Issuer.DeferredCredentialEndpoint = metadata.DeferredCredentialEndpoint
	}
	if config.AuthServer.TokenEndpoint == "" && config.AuthServer.Issuer != "" {
		metadata, err := loader.AuthorizationServerMetadata(ctx, config.AuthServer.Issuer)
		if err != nil {
			return err
		}
		config.AuthServer.AuthorizationEndpoint = metadata.AuthorizationEndpoint
		config.AuthServer.TokenEndpoint = metadata.TokenEndpoint
	}
	return nil
}

// FlowParams converts the config into the parameters of a single issuance attempt,
// loading the signing key from disk.
func (c ClientConfig) FlowParams() (openid4vci.FlowParams, error) {
	keyBytes, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return openid4vci.FlowParams{}, fmt.Errorf("unable to read key file: %w", err)
	}
	key, err := crypto.PemToPrivateKey(keyBytes)
	if err != nil {
		return openid4vci.FlowParams{}, fmt.Errorf("unable to parse key file (file=%s): %w", c.KeyFile, err)
	}
	identity, err := crypto.ParseSigningIdentity(c.DID, key)
	if err != nil {
		return openid4vci.FlowParams{}, err
	}
	return openid4vci.FlowParams{
		Identity: identity,
		AuthorizationServer: oauth.AuthorizationServerMetadata{
			Issuer:                c.AuthServer.Issuer,
			AuthorizationEndpoint: c.AuthServer.AuthorizationEndpoint,
			TokenEndpoint:         c.AuthServer.TokenEndpoint,
		},
		CredentialIssuer: openid4vci.CredentialIssuerMetadata{
			CredentialIssuer:           c.Issuer.CredentialIssuer,
			CredentialEndpoint:         c.Issuer.CredentialEndpoint,
			DeferredCredentialEndpoint: c.Issuer.DeferredCredentialEndpoint,
		},
		UserPin:     c.Pin,
		RedirectURI: c.RedirectURI,
	}, nil
}

// ClientFlags returns the flag set shared by all commands.
func ClientFlags() *pflag.FlagSet {
	defaults := DefaultClientConfig()
	flags := pflag.NewFlagSet("vci", pflag.ContinueOnError)
	flags.String(configFileFlag, defaultConfigFile, "Config file location")
	flags.String("verbosity", defaults.Verbosity, "Log level (trace, debug, info, warn, error)")
	flags.Bool("strictmode", defaults.StrictMode, "When enabled, plaintext HTTP endpoints are refused")
	flags.Duration("timeout", defaults.Timeout, "HTTP request timeout")
	flags.String("did", "", "DID of the wallet holder")
	flags.String("keyfile", "", "Path to the PEM-encoded EC private key of the holder")
	flags.String("redirecturi", defaults.RedirectURI, "Redirect URI reported in authorization requests")
	flags.String("pin", "", "User PIN, selects the pre-authorized code grant when set")
	flags.String("authserver.issuer", "", "Authorization server issuer identifier")
	flags.String("authserver.authorizationendpoint", "", "Authorization endpoint URL")
	flags.String("authserver.tokenendpoint", "", "Token endpoint URL")
	flags.String("issuer.credentialissuer", "", "Credential issuer identifier")
	flags.String("issuer.credentialendpoint", "", "Credential endpoint URL")
	flags.String("issuer.deferredcredentialendpoint", "", "Deferred credential endpoint URL")
	return flags
}
