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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verimble/oid4vci-client/oauth"
)

func TestMetadataLoader_CredentialIssuerMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/.well-known/openid-credential-issuer", request.URL.Path)
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(CredentialIssuerMetadata{
				CredentialIssuer:           server.URL,
				CredentialEndpoint:         server.URL + "/credential",
				DeferredCredentialEndpoint: server.URL + "/deferred_credential",
			})
		}))
		defer server.Close()
		loader := NewMetadataLoader(testHTTPClient())

		metadata, err := loader.CredentialIssuerMetadata(ctx, server.URL)

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/credential", metadata.CredentialEndpoint)
		assert.Equal(t, server.URL+"/deferred_credential", metadata.DeferredCredentialEndpoint)
	})
	t.Run("error - credential issuer mismatch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(CredentialIssuerMetadata{
				CredentialIssuer:   "https://other.example.com",
				CredentialEndpoint: "https://other.example.com/credential",
			})
		}))
		defer server.Close()
		loader := NewMetadataLoader(testHTTPClient())

		metadata, err := loader.CredentialIssuerMetadata(ctx, server.URL)

		assert.ErrorContains(t, err, "credential_issuer does not match")
		assert.Nil(t, metadata)
	})
	t.Run("error - missing credential_endpoint", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(CredentialIssuerMetadata{CredentialIssuer: server.URL})
		}))
		defer server.Close()
		loader := NewMetadataLoader(testHTTPClient())

		metadata, err := loader.CredentialIssuerMetadata(ctx, server.URL)

		assert.EqualError(t, err, "invalid credential issuer metadata: missing credential_endpoint")
		assert.Nil(t, metadata)
	})
	t.Run("error - server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		loader := NewMetadataLoader(testHTTPClient())

		metadata, err := loader.CredentialIssuerMetadata(ctx, server.URL)

		assert.ErrorContains(t, err, "unable to load credential issuer metadata")
		assert.ErrorContains(t, err, "server returned HTTP 404")
		assert.Nil(t, metadata)
	})
}

func TestMetadataLoader_AuthorizationServerMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/.well-known/oauth-authorization-server", request.URL.Path)
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(oauth.AuthorizationServerMetadata{
				Issuer:                server.URL,
				AuthorizationEndpoint: server.URL + "/authorize",
				TokenEndpoint:         server.URL + "/token",
			})
		}))
		defer server.Close()
		loader := NewMetadataLoader(testHTTPClient())

		metadata, err := loader.AuthorizationServerMetadata(ctx, server.URL)

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/authorize", metadata.AuthorizationEndpoint)
		assert.Equal(t, server.URL+"/token", metadata.TokenEndpoint)
	})
	t.Run("error - issuer mismatch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(oauth.AuthorizationServerMetadata{
				Issuer:        "https://other.example.com",
				TokenEndpoint: "https://other.example.com/token",
			})
		}))
		defer server.Close()
		loader := NewMetadataLoader(testHTTPClient())

		metadata, err := loader.AuthorizationServerMetadata(ctx, server.URL)

		assert.ErrorContains(t, err, "issuer does not match")
		assert.Nil(t, metadata)
	})
	t.Run("error - missing token_endpoint", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(oauth.AuthorizationServerMetadata{Issuer: server.URL})
		}))
		defer server.Close()
		loader := NewMetadataLoader(testHTTPClient())

		metadata, err := loader.AuthorizationServerMetadata(ctx, server.URL)

		assert.EqualError(t, err, "invalid authorization server metadata: missing token_endpoint")
		assert.Nil(t, metadata)
	})
}
