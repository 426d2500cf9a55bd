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
	"crypto/sha256"
	"encoding/base64"
)

// PKCEParams holds a PKCE code_verifier and its derived code_challenge (RFC7636).
type PKCEParams struct {
	Challenge       string
	ChallengeMethod string
	Verifier        string
}

// GeneratePKCEParams creates a fresh code_verifier with its S256 code_challenge.
func GeneratePKCEParams() PKCEParams {
	verifier := GenerateNonce()
	return PKCEParams{
		Challenge:       S256Challenge(verifier),
		ChallengeMethod: "S256",
		Verifier:        verifier,
	}
}

// S256Challenge derives the S256 code_challenge for the given code_verifier.
func S256Challenge(verifier string) string {
	sha := sha256.Sum256([]byte(verifier))
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(sha[:])
}
