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
	"errors"
	"fmt"
)

// FormatJWTVC is the only credential format requested by this client.
const FormatJWTVC = "jwt_vc"

// ProofTypeJWT is the proof_type of a JWT proof-of-possession.
const ProofTypeJWT = "jwt"

// CredentialOffer is the resolved credential offer, immutable for the lifetime of one issuance attempt.
type CredentialOffer struct {
	// CredentialIssuer is the base URL of the credential issuer.
	CredentialIssuer string `json:"credential_issuer"`
	// Credentials describes the offered credentials.
	Credentials []OfferedCredential `json:"credentials"`
	// Grants holds the grants that can be used to request an access token.
	Grants *OfferGrants `json:"grants,omitempty"`
}

// OfferedCredential describes a single credential in an offer.
type OfferedCredential struct {
	Format string   `json:"format,omitempty"`
	Types  []string `json:"types"`
}

// OfferGrants holds the grant parameters embedded in a credential offer.
// At most one of the grants drives the token stage for a given offer.
type OfferGrants struct {
	AuthorizationCode *AuthorizationCodeGrant `json:"authorization_code,omitempty"`
	PreAuthorizedCode *PreAuthorizedCodeGrant `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
}

// AuthorizationCodeGrant holds the authorization_code grant parameters of a credential offer.
type AuthorizationCodeGrant struct {
	IssuerState string `json:"issuer_state,omitempty"`
}

// PreAuthorizedCodeGrant holds the pre-authorized_code grant parameters of a credential offer.
type PreAuthorizedCodeGrant struct {
	PreAuthorizedCode string `json:"pre-authorized_code"`
	UserPinRequired   bool   `json:"user_pin_required,omitempty"`
}

func (o CredentialOffer) validate() error {
	if o.CredentialIssuer == "" {
		return errors.New("missing credential_issuer")
	}
	if len(o.Credentials) == 0 {
		return errors.New("there must be at least 1 credential in the offer")
	}
	for _, credential := range o.Credentials {
		if len(credential.Types) == 0 {
			return errors.New("offered credential does not list any types")
		}
	}
	return nil
}

// CredentialIssuerMetadata holds the credential issuer endpoints used during issuance.
// It is supplied by the caller as already-parsed well-known configuration.
type CredentialIssuerMetadata struct {
	CredentialIssuer           string `json:"credential_issuer"`
	CredentialEndpoint         string `json:"credential_endpoint"`
	DeferredCredentialEndpoint string `json:"deferred_credential_endpoint,omitempty"`
}

// CredentialRequest is the body POSTed to the credential endpoint.
type CredentialRequest struct {
	Types  []string                `json:"types"`
	Format string                  `json:"format"`
	Proof  *CredentialRequestProof `json:"proof,omitempty"`
}

// CredentialRequestProof is the proof-of-possession presented with a credential request.
type CredentialRequestProof struct {
	ProofType string `json:"proof_type"`
	Jwt       string `json:"jwt"`
}

// CredentialResponse is the response of the credential and deferred credential endpoints.
// It either carries the credential, or an acceptance token for deferred issuance.
type CredentialResponse struct {
	Format          string `json:"format,omitempty"`
	Credential      string `json:"credential,omitempty"`
	AcceptanceToken string `json:"acceptance_token,omitempty"`
	IsDeferred      bool   `json:"is_deferred,omitempty"`
	IsPinRequired   bool   `json:"user_pin_required,omitempty"`
}

// validate asserts the deferred-issuance invariant: a non-empty acceptance token means deferred
// issuance without a credential payload, and vice versa. It also derives IsDeferred for servers
// that leave the flag unset.
func (r *CredentialResponse) validate() error {
	if r.AcceptanceToken != "" {
		if r.Credential != "" {
			return fmt.Errorf("credential response contains both a credential and an acceptance token")
		}
		r.IsDeferred = true
		return nil
	}
	if r.Credential == "" {
		return fmt.Errorf("credential response contains neither a credential nor an acceptance token")
	}
	if r.IsDeferred {
		return fmt.Errorf("credential response is flagged deferred but carries no acceptance token")
	}
	return nil
}
