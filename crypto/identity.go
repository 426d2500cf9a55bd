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

package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"github.com/nuts-foundation/go-did/did"
)

// SigningIdentity ties a DID to the ES256 private key backing one of its verification methods.
// It is owned by the caller; this package only uses the key to produce signatures.
type SigningIdentity struct {
	DID did.DID
	Key *ecdsa.PrivateKey
}

// ParseSigningIdentity parses the given DID string and validates the key curve.
func ParseSigningIdentity(didString string, key *ecdsa.PrivateKey) (*SigningIdentity, error) {
	parsed, err := did.ParseDID(didString)
	if err != nil {
		return nil, fmt.Errorf("invalid DID: %w", err)
	}
	if key == nil || key.Curve != elliptic.P256() {
		return nil, ErrUnsupportedSigningKey
	}
	return &SigningIdentity{DID: *parsed, Key: key}, nil
}

// KeyID returns the DID URL identifying the signing key: <did>#<method-specific-id>.
func (i SigningIdentity) KeyID() string {
	return i.DID.String() + "#" + i.DID.ID
}

// SignJWT signs the given claims and headers with the identity's key.
func (i SigningIdentity) SignJWT(claims map[string]interface{}, headers map[string]interface{}) (string, error) {
	return SignJWT(i.Key, claims, headers)
}
