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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/crypto"
)

const testDID = "did:key:z6Mkv6Lv7eN2PRkl"

func testIdentity(t *testing.T) *crypto.SigningIdentity {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	identity, err := crypto.ParseSigningIdentity(testDID, key)
	require.NoError(t, err)
	return identity
}

func testOffer(issuer string) CredentialOffer {
	return CredentialOffer{
		CredentialIssuer: issuer,
		Credentials: []OfferedCredential{
			{
				Format: FormatJWTVC,
				Types:  []string{"VerifiableCredential", "UniversityDegreeCredential"},
			},
		},
	}
}

// offerString renders the given offer as an inline credential_offer deeplink.
func offerString(t *testing.T, offer CredentialOffer) string {
	t.Helper()
	offerJSON, err := json.Marshal(offer)
	require.NoError(t, err)
	return "openid-credential-offer://?" + credentialOfferParam + "=" + url.QueryEscape(string(offerJSON))
}

func testHTTPClient() *core.StrictHTTPClient {
	return core.NewStrictHTTPClient(false, 5*time.Second, nil)
}

func testRedirectRefusingHTTPClient() *core.StrictHTTPClient {
	return core.NewRedirectRefusingHTTPClient(false, 5*time.Second, nil)
}

func assertProtocolError(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var protocolError Error
	require.ErrorAs(t, err, &protocolError)
	assert.Equal(t, code, protocolError.Code)
}
