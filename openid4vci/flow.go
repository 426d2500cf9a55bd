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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/crypto"
	"github.com/verimble/oid4vci-client/log"
	"github.com/verimble/oid4vci-client/oauth"
)

// DefaultRedirectURI is the fixed local redirect target reported in authorization requests.
const DefaultRedirectURI = "http://127.0.0.1/callback"

// State is the position of an issuance attempt in its lifecycle.
type State string

const (
	StateStart              State = "start"
	StateOfferResolved      State = "offer-resolved"
	StateAuthorized         State = "authorized"
	StateTokenAcquired      State = "token-acquired"
	StateDeferredPending    State = "deferred-pending"
	StateCredentialAcquired State = "credential-acquired"
	StateFailed             State = "failed"
)

// FlowParams carries the per-attempt inputs of an issuance flow.
type FlowParams struct {
	Identity            *crypto.SigningIdentity
	AuthorizationServer oauth.AuthorizationServerMetadata
	CredentialIssuer    CredentialIssuerMetadata
	// UserPin selects the pre-authorized_code grant when non-empty.
	UserPin string
	// RedirectURI is the local callback reported in authorization requests. Defaults to DefaultRedirectURI.
	RedirectURI string
	// CodeVerifier is the PKCE code verifier. Generated when empty. Must not be reused across attempts.
	CodeVerifier string
}

// Flow drives a single issuance attempt through its stages.
// Each attempt gets its own Flow value and carries its own offer, identity and tokens,
// so concurrent attempts need no coordination. There is no rollback; a failed stage
// terminates the attempt for that offer.
type Flow struct {
	id          string
	params      FlowParams
	resolver    *OfferResolver
	coordinator *AuthorizationCoordinator
	exchanger   *TokenExchanger
	requester   *CredentialRequester

	state           State
	offer           *CredentialOffer
	acceptanceToken string
}

// NewFlow creates a Flow for a single issuance attempt.
func NewFlow(params FlowParams, strictMode bool, timeout time.Duration) *Flow {
	return newFlow(params,
		core.NewStrictHTTPClient(strictMode, timeout, nil),
		core.NewRedirectRefusingHTTPClient(strictMode, timeout, nil))
}

func newFlow(params FlowParams, httpClient core.HTTPRequestDoer, authorizationClient core.HTTPRequestDoer) *Flow {
	if params.CodeVerifier == "" {
		params.CodeVerifier = crypto.GeneratePKCEParams().Verifier
	}
	if params.RedirectURI == "" {
		params.RedirectURI = DefaultRedirectURI
	}
	return &Flow{
		id:          uuid.NewString(),
		params:      params,
		resolver:    NewOfferResolver(httpClient),
		coordinator: NewAuthorizationCoordinator(authorizationClient, params.RedirectURI),
		exchanger:   NewTokenExchanger(httpClient),
		requester:   NewCredentialRequester(httpClient),
		state:       StateStart,
	}
}

// ID returns the attempt identifier used for log correlation.
func (f *Flow) ID() string {
	return f.id
}

// State returns the current state of the attempt.
func (f *Flow) State() State {
	return f.state
}

// Issue runs the issuance attempt for the given offer string: offer resolution, authorization
// (unless the pre-authorized grant applies), token exchange and the credential request.
// Stages execute strictly sequentially; no stage is retried.
func (f *Flow) Issue(ctx context.Context, offerString string) (*CredentialResponse, error) {
	if f.state != StateStart {
		return nil, fmt.Errorf("issuance flow already used (state=%s)", f.state)
	}
	logger := log.Logger().WithField("flow", f.id)

	offer, err := f.resolver.ResolveOffer(ctx, offerString)
	if err != nil {
		return nil, f.fail(err)
	}
	f.offer = offer
	f.state = StateOfferResolved
	logger.Debugf("Resolved credential offer (issuer=%s)", offer.CredentialIssuer)

	token, err := f.acquireToken(ctx)
	if err != nil {
		return nil, f.fail(err)
	}
	f.state = StateTokenAcquired

	// c_nonce is an OpenID4VCI extension of the token response, carried as an additional parameter
	cNonce := token.Get(oauth.CNonceParam)
	response, err := f.requester.RequestCredential(ctx, f.params.Identity, *offer, token.AccessToken, cNonce, f.params.CredentialIssuer.CredentialEndpoint)
	if err != nil {
		return nil, f.fail(err)
	}
	if response.IsDeferred {
		f.acceptanceToken = response.AcceptanceToken
		f.state = StateDeferredPending
		logger.Debug("Issuance deferred, awaiting caller-driven collection")
		return response, nil
	}
	f.state = StateCredentialAcquired
	logger.Debug("Credential acquired")
	return response, nil
}

// acquireToken selects the grant driving the token stage: the pre-authorized path if and only if
// a non-empty user PIN is available, the authorization-code path otherwise.
func (f *Flow) acquireToken(ctx context.Context) (*oauth.TokenResponse, error) {
	if f.params.UserPin != "" {
		grants := f.offer.Grants
		if grants == nil || grants.PreAuthorizedCode == nil {
			return nil, Error{Code: TokenRequestFailed, Err: errors.New("user PIN supplied but offer carries no pre-authorized_code grant")}
		}
		return f.exchanger.ExchangePreAuthorizedCode(ctx, f.params.AuthorizationServer, grants.PreAuthorizedCode.PreAuthorizedCode, f.params.UserPin)
	}

	code, err := f.coordinator.RequestAuthorization(ctx, f.params.Identity, *f.offer, f.params.AuthorizationServer, f.params.CodeVerifier)
	if err != nil {
		return nil, err
	}
	f.state = StateAuthorized
	return f.exchanger.ExchangeAuthorizationCode(ctx, f.params.AuthorizationServer, f.params.Identity, code, f.params.CodeVerifier)
}

// CollectDeferred fetches the deferred credential using the acceptance token obtained by Issue.
// A transport failure leaves the attempt in StateDeferredPending so the caller can invoke it again;
// the flow itself never polls.
func (f *Flow) CollectDeferred(ctx context.Context) (*CredentialResponse, error) {
	if f.state != StateDeferredPending {
		return nil, fmt.Errorf("no deferred credential pending (state=%s)", f.state)
	}
	endpoint := f.params.CredentialIssuer.DeferredCredentialEndpoint
	if endpoint == "" {
		return nil, f.fail(Error{Code: CredentialRequestFailed, Err: errors.New("no deferred credential endpoint configured")})
	}
	response, err := f.requester.RequestDeferredCredential(ctx, f.acceptanceToken, endpoint)
	if err != nil {
		return nil, err
	}
	if response.IsDeferred {
		// Still pending. Issuers may rotate the acceptance token.
		if response.AcceptanceToken != "" {
			f.acceptanceToken = response.AcceptanceToken
		}
		return response, nil
	}
	f.state = StateCredentialAcquired
	log.Logger().WithField("flow", f.id).Debug("Deferred credential acquired")
	return response, nil
}

func (f *Flow) fail(err error) error {
	f.state = StateFailed
	log.Logger().WithField("flow", f.id).WithError(err).Debug("Issuance attempt failed")
	return err
}
