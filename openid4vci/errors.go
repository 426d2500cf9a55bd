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

// ErrorCode tags a failure with the issuance stage that produced it.
type ErrorCode string

const (
	// MalformedOffer is returned when the credential offer carries neither an inline offer nor a
	// retrievable offer URI, or its body does not parse against the offer schema.
	MalformedOffer ErrorCode = "malformed_offer"
	// AuthorizationFailed is returned when no authorization endpoint is configured, the authorization
	// request URL cannot be constructed, or no authorization code could be obtained.
	AuthorizationFailed ErrorCode = "authorization_failed"
	// IdTokenExchangeFailed is returned when the id_token sub-flow response is not a parseable URL
	// or carries no authorization code.
	IdTokenExchangeFailed ErrorCode = "id_token_exchange_failed"
	// TokenRequestFailed is returned on a transport error or response-schema mismatch at the token endpoint.
	TokenRequestFailed ErrorCode = "token_request_failed"
	// CredentialRequestFailed is returned on a transport or schema error at the (deferred) credential endpoint.
	CredentialRequestFailed ErrorCode = "credential_request_failed"
)

// Error signals which issuance stage failed and why, wrapping the underlying transport or parse cause.
// Callers receive it from every stage; no stage substitutes defaults on failure.
type Error struct {
	// Code identifies the failed stage.
	Code ErrorCode
	// Err is the underlying error, may be omitted.
	Err error
}

// Error returns the error message, which is either the underlying error or the code if there is no underlying error
func (e Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return string(e.Code) + " - " + e.Err.Error()
}

// Unwrap makes errors.Is/As work through the wrapper.
func (e Error) Unwrap() error {
	return e.Err
}
