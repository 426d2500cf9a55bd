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

package openid4vci

import (
	"context"
	"errors"
	"fmt"

	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/oauth"
)

// MetadataLoader fetches the well-known metadata documents that configure an issuance attempt.
// The protocol operations themselves only consume already-parsed metadata; this loader exists
// for callers (such as the CLI) that are given nothing but the issuer identifiers.
type MetadataLoader struct {
	httpClient core.HTTPRequestDoer
}

// NewMetadataLoader creates a MetadataLoader using the given HTTP client.
func NewMetadataLoader(httpClient core.HTTPRequestDoer) *MetadataLoader {
	return &MetadataLoader{httpClient: httpClient}
}

// CredentialIssuerMetadata loads the credential issuer metadata from the issuer's well-known endpoint.
func (l MetadataLoader) CredentialIssuerMetadata(ctx context.Context, credentialIssuer string) (*CredentialIssuerMetadata, error) {
	metadataURL := core.JoinURLPaths(credentialIssuer, oauth.OpenIdCredIssuerWellKnown)
	metadata := CredentialIssuerMetadata{}
	if _, err := httpGet(ctx, l.httpClient, metadataURL, &metadata); err != nil {
		return nil, fmt.Errorf("unable to load credential issuer metadata (url=%s): %w", metadataURL, err)
	}
	if metadata.CredentialIssuer != credentialIssuer {
		return nil, fmt.Errorf("invalid credential issuer metadata: credential_issuer does not match (expected=%s, was=%s)", credentialIssuer, metadata.CredentialIssuer)
	}
	if metadata.CredentialEndpoint == "" {
		return nil, errors.New("invalid credential issuer metadata: missing credential_endpoint")
	}
	return &metadata, nil
}

// AuthorizationServerMetadata loads the OAuth2 authorization server metadata from its well-known endpoint.
func (l MetadataLoader) AuthorizationServerMetadata(ctx context.Context, issuer string) (*oauth.AuthorizationServerMetadata, error) {
	metadataURL := core.JoinURLPaths(issuer, oauth.AuthzServerWellKnown)
	metadata := oauth.AuthorizationServerMetadata{}
	if _, err := httpGet(ctx, l.httpClient, metadataURL, &metadata); err != nil {
		return nil, fmt.Errorf("unable to load authorization server metadata (url=%s): %w", metadataURL, err)
	}
	if metadata.Issuer != issuer {
		return nil, fmt.Errorf("invalid authorization server metadata: issuer does not match (expected=%s, was=%s)", issuer, metadata.Issuer)
	}
	if metadata.TokenEndpoint == "" {
		return nil, errors.New("invalid authorization server metadata: missing token_endpoint")
	}
	return &metadata, nil
}
