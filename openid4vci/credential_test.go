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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRequester_RequestCredential(t *testing.T) {
	ctx := context.Background()
	identity := testIdentity(t)

	t.Run("immediate issuance", func(t *testing.T) {
		var authorizationHeader string
		var credentialRequest CredentialRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorizationHeader = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&credentialRequest))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"format": "jwt_vc", "credential": "eyJhbGciOiJFUzI1NiJ9.e30."}`))
		}))
		defer server.Close()
		requester := NewCredentialRequester(testHTTPClient())

		response, err := requester.RequestCredential(ctx, identity, testOffer("https://issuer.example.com"), "AT1", "n0nce", server.URL)

		require.NoError(t, err)
		assert.Equal(t, "eyJhbGciOiJFUzI1NiJ9.e30.", response.Credential)
		assert.False(t, response.IsDeferred)
		assert.Equal(t, "Bearer AT1", authorizationHeader)
		assert.Equal(t, FormatJWTVC, credentialRequest.Format)
		assert.Equal(t, []string{"VerifiableCredential", "UniversityDegreeCredential"}, credentialRequest.Types)
		require.NotNil(t, credentialRequest.Proof)
		assert.Equal(t, ProofTypeJWT, credentialRequest.Proof.ProofType)
		// the proof binds issuer and c_nonce
		token, err := jwt.ParseInsecure([]byte(credentialRequest.Proof.Jwt))
		require.NoError(t, err)
		assert.Equal(t, []string{"https://issuer.example.com"}, token.Audience())
		nonce, _ := token.Get("nonce")
		assert.Equal(t, "n0nce", nonce)
	})
	t.Run("deferred issuance yields an acceptance token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"acceptance_token": "accept-1"}`))
		}))
		defer server.Close()
		requester := NewCredentialRequester(testHTTPClient())

		response, err := requester.RequestCredential(ctx, identity, testOffer("https://issuer.example.com"), "AT1", "n0nce", server.URL)

		require.NoError(t, err)
		assert.True(t, response.IsDeferred)
		assert.Equal(t, "accept-1", response.AcceptanceToken)
		assert.Empty(t, response.Credential)
	})
	t.Run("error - response carries both credential and acceptance token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"credential": "eyJ", "acceptance_token": "accept-1"}`))
		}))
		defer server.Close()
		requester := NewCredentialRequester(testHTTPClient())

		_, err := requester.RequestCredential(ctx, identity, testOffer("https://issuer.example.com"), "AT1", "n0nce", server.URL)

		assertProtocolError(t, err, CredentialRequestFailed)
	})
	t.Run("error - credential endpoint rejects the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "invalid_token"}`, http.StatusUnauthorized)
		}))
		defer server.Close()
		requester := NewCredentialRequester(testHTTPClient())

		_, err := requester.RequestCredential(ctx, identity, testOffer("https://issuer.example.com"), "AT1", "n0nce", server.URL)

		assertProtocolError(t, err, CredentialRequestFailed)
	})
}

func TestCredentialRequester_RequestDeferredCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("credential ready", func(t *testing.T) {
		var authorizationHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorizationHeader = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"format": "jwt_vc", "credential": "eyJhbGciOiJFUzI1NiJ9.e30."}`))
		}))
		defer server.Close()
		requester := NewCredentialRequester(testHTTPClient())

		response, err := requester.RequestDeferredCredential(ctx, "accept-1", server.URL)

		require.NoError(t, err)
		assert.Equal(t, "eyJhbGciOiJFUzI1NiJ9.e30.", response.Credential)
		// the acceptance token authenticates the deferred request
		assert.Equal(t, "Bearer accept-1", authorizationHeader)
	})
	t.Run("error - single attempt, no retry on failure", func(t *testing.T) {
		var requestCount int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCount++
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()
		requester := NewCredentialRequester(testHTTPClient())

		_, err := requester.RequestDeferredCredential(ctx, "accept-1", server.URL)

		assertProtocolError(t, err, CredentialRequestFailed)
		assert.Equal(t, 1, requestCount)
	})
}
