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
	"net/url"

	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/crypto"
	"github.com/verimble/oid4vci-client/oauth"
)

// TokenExchanger exchanges an authorization code or pre-authorized code for an access token.
type TokenExchanger struct {
	httpClient core.HTTPRequestDoer
}

// NewTokenExchanger creates a TokenExchanger using the given HTTP client.
func NewTokenExchanger(httpClient core.HTTPRequestDoer) *TokenExchanger {
	return &TokenExchanger{httpClient: httpClient}
}

// ExchangeAuthorizationCode requests an access token using the authorization_code grant.
func (t TokenExchanger) ExchangeAuthorizationCode(ctx context.Context, metadata oauth.AuthorizationServerMetadata,
	identity *crypto.SigningIdentity, code string, codeVerifier string) (*oauth.TokenResponse, error) {
	values := url.Values{}
	values.Set(oauth.GrantTypeParam, oauth.AuthorizationCodeGrantType)
	values.Set(oauth.CodeParam, code)
	values.Set(oauth.ClientIDParam, identity.DID.String())
	values.Set(oauth.CodeVerifierParam, codeVerifier)
	return t.requestAccessToken(ctx, metadata, values)
}

// ExchangePreAuthorizedCode requests an access token using the pre-authorized_code grant.
// The user PIN is included when non-empty.
func (t TokenExchanger) ExchangePreAuthorizedCode(ctx context.Context, metadata oauth.AuthorizationServerMetadata,
	preAuthorizedCode string, userPin string) (*oauth.TokenResponse, error) {
	values := url.Values{}
	values.Set(oauth.GrantTypeParam, oauth.PreAuthorizedCodeGrantType)
	values.Set(oauth.PreAuthorizedCodeParam, preAuthorizedCode)
	if userPin != "" {
		values.Set(oauth.UserPinParam, userPin)
	}
	return t.requestAccessToken(ctx, metadata, values)
}

func (t TokenExchanger) requestAccessToken(ctx context.Context, metadata oauth.AuthorizationServerMetadata, values url.Values) (*oauth.TokenResponse, error) {
	if metadata.TokenEndpoint == "" {
		return nil, Error{Code: TokenRequestFailed, Err: errors.New("no token endpoint configured")}
	}
	accessTokenResponse := oauth.TokenResponse{}
	if _, err := httpPostForm(ctx, t.httpClient, metadata.TokenEndpoint, values, &accessTokenResponse); err != nil {
		return nil, Error{Code: TokenRequestFailed, Err: fmt.Errorf("request access token error: %w", err)}
	}
	if accessTokenResponse.AccessToken == "" {
		return nil, Error{Code: TokenRequestFailed, Err: errors.New("token response does not contain an access token")}
	}
	return &accessTokenResponse, nil
}
