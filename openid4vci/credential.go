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
	"fmt"

	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/crypto"
)

// CredentialRequester requests credentials from the issuer's credential endpoint,
// immediately or through the deferred-issuance path.
type CredentialRequester struct {
	httpClient core.HTTPRequestDoer
}

// NewCredentialRequester creates a CredentialRequester using the given HTTP client.
func NewCredentialRequester(httpClient core.HTTPRequestDoer) *CredentialRequester {
	return &CredentialRequester{httpClient: httpClient}
}

// RequestCredential requests the offered credential, presenting a proof JWT bound to the issuer and c_nonce.
func (r CredentialRequester) RequestCredential(ctx context.Context, identity *crypto.SigningIdentity, offer CredentialOffer,
	accessToken string, cNonce string, endpoint string) (*CredentialResponse, error) {
	proof, err := NewProofBuilder(identity).BuildProof(offer.CredentialIssuer, cNonce)
	if err != nil {
		return nil, Error{Code: CredentialRequestFailed, Err: err}
	}
	request := CredentialRequest{
		Types:  offer.Credentials[0].Types,
		Format: FormatJWTVC,
		Proof: &CredentialRequestProof{
			ProofType: ProofTypeJWT,
			Jwt:       proof,
		},
	}

	credentialResponse := CredentialResponse{}
	if _, err := httpPostJSON(ctx, r.httpClient, endpoint, accessToken, request, &credentialResponse); err != nil {
		return nil, Error{Code: CredentialRequestFailed, Err: fmt.Errorf("get credential request failed: %w", err)}
	}
	if err := credentialResponse.validate(); err != nil {
		return nil, Error{Code: CredentialRequestFailed, Err: err}
	}
	return &credentialResponse, nil
}

// RequestDeferredCredential fetches a deferred credential using its acceptance token.
// A single attempt per call; repeated polling is the caller's responsibility.
func (r CredentialRequester) RequestDeferredCredential(ctx context.Context, acceptanceToken string, deferredEndpoint string) (*CredentialResponse, error) {
	credentialResponse := CredentialResponse{}
	if _, err := httpPostJSON(ctx, r.httpClient, deferredEndpoint, acceptanceToken, struct{}{}, &credentialResponse); err != nil {
		return nil, Error{Code: CredentialRequestFailed, Err: fmt.Errorf("get deferred credential request failed: %w", err)}
	}
	if err := credentialResponse.validate(); err != nil {
		return nil, Error{Code: CredentialRequestFailed, Err: err}
	}
	return &credentialResponse, nil
}
