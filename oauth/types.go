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

// Package oauth contains generic OAuth related functionality, variables and constants
package oauth

import (
	"encoding/json"
)

// TokenResponse is the OAuth access token response.
// Extension parameters (for OpenID4VCI, for instance c_nonce) are retained on unmarshalling
// and retrieved through Get().
type TokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   *int    `json:"expires_in,omitempty"`
	TokenType   string  `json:"token_type"`
	Scope       *string `json:"scope,omitempty"`

	additionalParams map[string]interface{}
}

var _ json.Unmarshaler = (*TokenResponse)(nil)
var _ json.Marshaler = (*TokenResponse)(nil)

func (t *TokenResponse) UnmarshalJSON(data []byte) error {
	type Alias TokenResponse
	var result Alias
	// base parameters
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	// extension parameters
	additionalParams := map[string]interface{}{}
	_ = json.Unmarshal(data, &additionalParams) // can't fail, already unmarshalled
	delete(additionalParams, "access_token")
	delete(additionalParams, "expires_in")
	delete(additionalParams, "token_type")
	delete(additionalParams, "scope")
	*t = TokenResponse(result)
	if len(additionalParams) > 0 {
		t.additionalParams = additionalParams
	}
	return nil
}

func (t TokenResponse) MarshalJSON() ([]byte, error) {
	result := make(map[string]interface{})
	for key, value := range t.additionalParams {
		result[key] = value
	}
	result["access_token"] = t.AccessToken
	result["token_type"] = t.TokenType
	if t.ExpiresIn != nil {
		result["expires_in"] = t.ExpiresIn
	}
	if t.Scope != nil {
		result["scope"] = t.Scope
	}

	return json.Marshal(result)
}

// Get returns the value of the additional parameter with the given key as a string.
// If the key does not exist or the value is not a string, it returns an empty string.
func (t TokenResponse) Get(key string) string {
	if t.additionalParams == nil {
		return ""
	}
	if val, ok := t.additionalParams[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// AuthorizationServerMetadata holds the authorization server endpoints used during issuance.
// It is supplied by the caller as already-parsed well-known configuration.
type AuthorizationServerMetadata struct {
	// Issuer defines the authorization server's identifier.
	Issuer string `json:"issuer,omitempty"`
	// AuthorizationEndpoint defines the URL of the authorization server's authorization endpoint (RFC6749)
	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	// TokenEndpoint defines the URL of the authorization server's token endpoint (RFC6749)
	TokenEndpoint string `json:"token_endpoint,omitempty"`
}

// OAuthClientMetadata advertises the client's capabilities in an authorization request (client_metadata parameter).
type OAuthClientMetadata struct {
	VPFormatsSupported     map[string]map[string][]string `json:"vp_formats_supported,omitempty"`
	ResponseTypesSupported []string                       `json:"response_types_supported,omitempty"`
	AuthorizationEndpoint  string                         `json:"authorization_endpoint,omitempty"`
}

// metadata endpoints
const (
	// AuthzServerWellKnown is the well-known base path for the oauth authorization server metadata as defined in RFC8414
	AuthzServerWellKnown = "/.well-known/oauth-authorization-server"
	// OpenIdCredIssuerWellKnown is the well-known base path for the openID credential issuer metadata as defined in
	// OpenID4VCI specification
	OpenIdCredIssuerWellKnown = "/.well-known/openid-credential-issuer"
)

// oauth parameter keys
const (
	// AuthorizationDetailsParam is the parameter name for the authorization_details parameter. (RFC9396)
	AuthorizationDetailsParam = "authorization_details"
	// ClientIDParam is the parameter name for the client_id parameter. (RFC6749)
	ClientIDParam = "client_id"
	// ClientMetadataParam is the parameter name for the client_metadata parameter. (OpenID4VP)
	ClientMetadataParam = "client_metadata"
	// CNonceParam is the parameter name for the c_nonce parameter. (OpenID4VCI)
	CNonceParam = "c_nonce"
	// CodeParam is the parameter name for the code parameter. (RFC6749)
	CodeParam = CodeResponseType
	// CodeChallengeParam is the parameter name for the code_challenge parameter. (RFC7636)
	CodeChallengeParam = "code_challenge"
	// CodeChallengeMethodParam is the parameter name for the code_challenge_method parameter. (RFC7636)
	CodeChallengeMethodParam = "code_challenge_method"
	// CodeVerifierParam is the parameter name for the code_verifier parameter. (RFC7636)
	CodeVerifierParam = "code_verifier"
	// GrantTypeParam is the parameter name for the grant_type parameter. (RFC6749)
	GrantTypeParam = "grant_type"
	// IDTokenParam is the parameter name for the id_token parameter. (OpenID Connect)
	IDTokenParam = "id_token"
	// IssuerStateParam is the parameter name for the issuer_state parameter. (OpenID4VCI)
	IssuerStateParam = "issuer_state"
	// NonceParam is the parameter name for the nonce parameter
	NonceParam = "nonce"
	// PreAuthorizedCodeParam is the parameter name for the pre-authorized_code parameter. (OpenID4VCI)
	PreAuthorizedCodeParam = "pre-authorized_code"
	// RedirectURIParam is the parameter name for the redirect_uri parameter. (RFC6749)
	RedirectURIParam = "redirect_uri"
	// ResponseTypeParam is the parameter name for the response_type parameter. (RFC6749)
	ResponseTypeParam = "response_type"
	// ScopeParam is the parameter name for the scope parameter. (RFC6749)
	ScopeParam = "scope"
	// StateParam is the parameter name for the state parameter. (RFC6749)
	StateParam = "state"
	// UserPinParam is the parameter name for the user_pin parameter. (OpenID4VCI)
	UserPinParam = "user_pin"
)

// grant types
const (
	// AuthorizationCodeGrantType is the grant_type for the authorization_code grant type. (RFC6749)
	AuthorizationCodeGrantType = "authorization_code"
	// PreAuthorizedCodeGrantType is the grant_type for the pre-authorized_code grant type. (OpenID4VCI)
	PreAuthorizedCodeGrantType = "urn:ietf:params:oauth:grant-type:pre-authorized_code"
)

// response types
const (
	// CodeResponseType is the parameter name for the code parameter. (RFC6749)
	CodeResponseType = "code"
)
