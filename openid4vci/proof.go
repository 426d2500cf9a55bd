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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/verimble/oid4vci-client/crypto"
	"github.com/verimble/oid4vci-client/oauth"
)

// jwtTypeProof defines the OpenID4VCI JWT-subtype (used as typ header in the JWT).
// MUST be openid4vci-proof+jwt, which explicitly types the proof JWT as recommended in Section 3.11 of RFC8725.
const jwtTypeProof = "openid4vci-proof+jwt"

// jwtTypeIDToken is the typ header of the id_token used in the non-interactive authorization sub-flow.
const jwtTypeIDToken = "JWT"

// proofValidity is the lifetime of a credential request proof.
const proofValidity = 24 * time.Hour

// idTokenValidity is the lifetime of an id_token.
const idTokenValidity = time.Hour

var nowFunc = time.Now

// ProofBuilder constructs and signs the compact JWTs this client presents to remote parties:
// the proof-of-possession for credential requests and the id_token for the authorization sub-flow.
type ProofBuilder struct {
	identity *crypto.SigningIdentity
}

// NewProofBuilder creates a ProofBuilder signing with the given identity.
func NewProofBuilder(identity *crypto.SigningIdentity) ProofBuilder {
	return ProofBuilder{identity: identity}
}

// BuildProof creates the proof JWT bound to the given credential issuer and c_nonce.
func (b ProofBuilder) BuildProof(credentialIssuer string, cNonce string) (string, error) {
	issuedAt := nowFunc()
	claims := map[string]interface{}{
		jwt.IssuerKey:     b.identity.DID.String(),
		jwt.AudienceKey:   credentialIssuer,
		jwt.IssuedAtKey:   issuedAt.Unix(),
		jwt.ExpirationKey: issuedAt.Add(proofValidity).Unix(),
		jwt.JwtIDKey:      uuid.NewString(),
		oauth.NonceParam:  cNonce,
	}
	headers := map[string]interface{}{
		"typ": jwtTypeProof,
		"kid": b.identity.KeyID(),
	}
	proof, err := b.identity.SignJWT(claims, headers)
	if err != nil {
		return "", fmt.Errorf("unable to sign request proof: %w", err)
	}
	return proof, nil
}

// BuildIDToken creates the self-issued id_token used to complete authorization without user interaction.
// Its audience is the authorization endpoint that issued the challenge.
func (b ProofBuilder) BuildIDToken(audience string, nonce string) (string, error) {
	issuedAt := nowFunc()
	claims := map[string]interface{}{
		jwt.IssuerKey:     b.identity.DID.String(),
		jwt.SubjectKey:    b.identity.DID.String(),
		jwt.AudienceKey:   audience,
		jwt.IssuedAtKey:   issuedAt.Unix(),
		jwt.ExpirationKey: issuedAt.Add(idTokenValidity).Unix(),
		oauth.NonceParam:  nonce,
	}
	headers := map[string]interface{}{
		"typ": jwtTypeIDToken,
		"kid": b.identity.KeyID(),
	}
	idToken, err := b.identity.SignJWT(claims, headers)
	if err != nil {
		return "", fmt.Errorf("unable to sign id_token: %w", err)
	}
	return idToken, nil
}
