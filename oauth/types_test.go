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

package oauth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenResponse_UnmarshalJSON(t *testing.T) {
	t.Run("base parameters", func(t *testing.T) {
		var response TokenResponse
		err := json.Unmarshal([]byte(`{"access_token":"AT1","token_type":"bearer","expires_in":300}`), &response)

		require.NoError(t, err)
		assert.Equal(t, "AT1", response.AccessToken)
		assert.Equal(t, "bearer", response.TokenType)
		require.NotNil(t, response.ExpiresIn)
		assert.Equal(t, 300, *response.ExpiresIn)
	})
	t.Run("extension parameters are retained", func(t *testing.T) {
		var response TokenResponse
		err := json.Unmarshal([]byte(`{"access_token":"AT1","token_type":"bearer","c_nonce":"N1","authorization_pending":"true"}`), &response)

		require.NoError(t, err)
		assert.Equal(t, "N1", response.Get(CNonceParam))
		assert.Equal(t, "true", response.Get("authorization_pending"))
		assert.Empty(t, response.Get("unknown"))
	})
	t.Run("marshal roundtrip keeps extensions", func(t *testing.T) {
		var response TokenResponse
		require.NoError(t, json.Unmarshal([]byte(`{"access_token":"AT1","token_type":"bearer","c_nonce":"N1","interval":"5"}`), &response))

		data, err := json.Marshal(response)

		require.NoError(t, err)
		var asMap map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &asMap))
		assert.Equal(t, "AT1", asMap["access_token"])
		assert.Equal(t, "N1", asMap["c_nonce"])
		assert.Equal(t, "5", asMap["interval"])
	})
}
