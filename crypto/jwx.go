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
	"errors"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrUnsupportedSigningKey is returned when an unsupported private key is used to sign.
// Only P-256 (ES256) keys are supported.
var ErrUnsupportedSigningKey = errors.New("signing key algorithm not supported")

// SignJWT signs claims with the given ES256 key and returns the compacted token.
// The headers param can be used to add additional protected headers.
func SignJWT(key *ecdsa.PrivateKey, claims map[string]interface{}, headers map[string]interface{}) (string, error) {
	if key == nil || key.Params().BitSize != 256 {
		return "", ErrUnsupportedSigningKey
	}
	token := jwt.New()
	for name, value := range claims {
		if err := token.Set(name, value); err != nil {
			return "", err
		}
	}
	hdr := jws.NewHeaders()
	for name, value := range headers {
		if err := hdr.Set(name, value); err != nil {
			return "", err
		}
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256, key, jws.WithProtectedHeaders(hdr)))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}
