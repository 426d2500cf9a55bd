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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/crypto"
	internalHttp "github.com/verimble/oid4vci-client/http"
	"github.com/verimble/oid4vci-client/log"
	"github.com/verimble/oid4vci-client/oauth"
)

// openidCredentialDetailsType is the authorization_details type for requesting credential issuance (RFC9396).
const openidCredentialDetailsType = "openid_credential"

// authorizationDetails describes the requested credential in the authorization request.
type authorizationDetails struct {
	Type      string   `json:"type"`
	Format    string   `json:"format"`
	Types     []string `json:"types"`
	Locations []string `json:"locations,omitempty"`
}

// RedirectOutcome is the interpreted result of an authorization round-trip:
// either the authorization code itself, or the challenge parameters needed to
// complete the id_token sub-flow.
type RedirectOutcome struct {
	Code        string
	State       string
	Nonce       string
	RedirectURI string
}

// AuthorizationCoordinator drives authorization-code acquisition, including the id_token fallback.
type AuthorizationCoordinator struct {
	// httpClient must refuse redirects: the authorization endpoint is expected to answer
	// with a redirect, which is recovered from the transport error.
	httpClient  core.HTTPRequestDoer
	redirectURI string
}

// NewAuthorizationCoordinator creates a coordinator that reports the given redirect URI as its callback.
func NewAuthorizationCoordinator(httpClient core.HTTPRequestDoer, redirectURI string) *AuthorizationCoordinator {
	return &AuthorizationCoordinator{
		httpClient:  httpClient,
		redirectURI: redirectURI,
	}
}

// RequestAuthorization obtains an authorization code for the offered credential.
// A fresh state and nonce are generated for every call; they are never reused.
func (c AuthorizationCoordinator) RequestAuthorization(ctx context.Context, identity *crypto.SigningIdentity, offer CredentialOffer,
	metadata oauth.AuthorizationServerMetadata, codeVerifier string) (string, error) {
	if metadata.AuthorizationEndpoint == "" {
		return "", Error{Code: AuthorizationFailed, Err: errors.New("no authorization endpoint configured")}
	}
	endpoint, err := url.Parse(metadata.AuthorizationEndpoint)
	if err != nil {
		return "", Error{Code: AuthorizationFailed, Err: fmt.Errorf("unable to parse authorization endpoint: %w", err)}
	}

	details, _ := json.Marshal([]authorizationDetails{{
		Type:      openidCredentialDetailsType,
		Format:    FormatJWTVC,
		Types:     offer.Credentials[0].Types,
		Locations: []string{offer.CredentialIssuer},
	}})
	clientMetadata, _ := json.Marshal(oauth.OAuthClientMetadata{
		VPFormatsSupported: map[string]map[string][]string{
			"jwt_vp": {"alg": {"ES256"}},
			"jwt_vc": {"alg": {"ES256"}},
		},
	})
	params := map[string]string{
		oauth.ResponseTypeParam:         oauth.CodeResponseType,
		oauth.ScopeParam:                "openid",
		oauth.StateParam:                crypto.GenerateNonce(),
		oauth.ClientIDParam:             identity.DID.String(),
		oauth.AuthorizationDetailsParam: string(details),
		oauth.RedirectURIParam:          c.redirectURI,
		oauth.NonceParam:                crypto.GenerateNonce(),
		oauth.CodeChallengeParam:        crypto.S256Challenge(codeVerifier),
		oauth.CodeChallengeMethodParam:  "S256",
		oauth.ClientMetadataParam:       string(clientMetadata),
	}
	if offer.Grants != nil && offer.Grants.AuthorizationCode != nil && offer.Grants.AuthorizationCode.IssuerState != "" {
		params[oauth.IssuerStateParam] = offer.Grants.AuthorizationCode.IssuerState
	}
	requestURL := internalHttp.AddQueryParams(*endpoint, params)

	responseURL, err := c.executeAuthorizationRequest(ctx, requestURL.String())
	if err != nil {
		return "", Error{Code: AuthorizationFailed, Err: err}
	}
	outcome, err := interpretRedirect(responseURL)
	if err != nil {
		return "", Error{Code: AuthorizationFailed, Err: err}
	}
	if outcome.Code != "" {
		return outcome.Code, nil
	}

	log.Logger().Debug("Authorization response carries no code, completing via id_token")
	return c.completeViaIdToken(ctx, identity, metadata, outcome.RedirectURI, outcome.Nonce, outcome.State)
}

// executeAuthorizationRequest performs the GET against the authorization endpoint and returns the
// effective response URL. The endpoint is expected to redirect; the redirect target is recovered
// from the transport error. A plain 2xx response means the body text is the response URL.
func (c AuthorizationCoordinator) executeAuthorizationRequest(ctx context.Context, requestURL string) (string, error) {
	httpRequest, _ := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	responseBody, err := httpDo(c.httpClient, httpRequest, nil)
	if err != nil {
		target := redirectTargetFromError(err)
		if target == "" {
			// Not a redirect, a real transport failure.
			return "", fmt.Errorf("authorization request failed: %w", err)
		}
		return target, nil
	}
	return string(responseBody), nil
}

// redirectTargetFromError recovers the attempted redirect target from the error returned
// by a redirect-refusing HTTP client.
func redirectTargetFromError(err error) string {
	var urlError *url.Error
	if errors.As(err, &urlError) && errors.Is(urlError, core.ErrRedirectAttempted) {
		return urlError.URL
	}
	return ""
}

// interpretRedirect maps the recovered response URL onto a RedirectOutcome.
// An empty or unparseable URL is a hard failure, never an empty successful response.
func interpretRedirect(rawURL string) (*RedirectOutcome, error) {
	if rawURL == "" {
		return nil, errors.New("empty authorization response URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("authorization response is not a valid URL: %w", err)
	}
	query := parsed.Query()
	if code := query.Get(oauth.CodeParam); code != "" {
		return &RedirectOutcome{Code: code}, nil
	}
	outcome := &RedirectOutcome{
		State:       query.Get(oauth.StateParam),
		Nonce:       query.Get(oauth.NonceParam),
		RedirectURI: query.Get(oauth.RedirectURIParam),
	}
	if outcome.RedirectURI == "" {
		return nil, fmt.Errorf("authorization response carries neither code nor redirect_uri: %s", rawURL)
	}
	return outcome, nil
}

// completeViaIdToken completes authorization by answering the authorization server's challenge
// with a self-issued id_token, POSTed to the challenge's redirect URI.
func (c AuthorizationCoordinator) completeViaIdToken(ctx context.Context, identity *crypto.SigningIdentity,
	metadata oauth.AuthorizationServerMetadata, redirectURI string, nonce string, state string) (string, error) {
	idToken, err := NewProofBuilder(identity).BuildIDToken(metadata.AuthorizationEndpoint, nonce)
	if err != nil {
		return "", Error{Code: IdTokenExchangeFailed, Err: err}
	}
	values := url.Values{}
	values.Set(oauth.IDTokenParam, idToken)
	values.Set(oauth.StateParam, state)
	responseBody, err := httpPostForm(ctx, c.httpClient, redirectURI, values, nil)
	if err != nil {
		return "", Error{Code: IdTokenExchangeFailed, Err: err}
	}
	// The response body is itself a URL carrying the authorization code.
	responseURL, err := url.Parse(string(responseBody))
	if err != nil {
		return "", Error{Code: IdTokenExchangeFailed, Err: fmt.Errorf("id_token response is not a valid URL: %w", err)}
	}
	code := responseURL.Query().Get(oauth.CodeParam)
	if code == "" {
		return "", Error{Code: IdTokenExchangeFailed, Err: errors.New("id_token response carries no authorization code")}
	}
	return code, nil
}
