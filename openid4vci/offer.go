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
	"errors"
	"fmt"
	"net/url"

	"github.com/verimble/oid4vci-client/core"
)

// offer query parameters as defined by the OpenID4VCI credential offer endpoint
const (
	credentialOfferParam    = "credential_offer"
	credentialOfferURIParam = "credential_offer_uri"
)

// OfferResolver turns a raw credential offer string into a structured CredentialOffer.
type OfferResolver struct {
	httpClient core.HTTPRequestDoer
}

// NewOfferResolver creates an OfferResolver that uses the given HTTP client to fetch by-reference offers.
func NewOfferResolver(httpClient core.HTTPRequestDoer) *OfferResolver {
	return &OfferResolver{httpClient: httpClient}
}

// ResolveOffer parses the given offer string.
// An offer embedding an inline credential_offer JSON fragment is parsed directly, without network I/O.
// An offer carrying a credential_offer_uri is fetched with a single GET.
// Anything else fails with MalformedOffer.
func (r OfferResolver) ResolveOffer(ctx context.Context, offerString string) (*CredentialOffer, error) {
	parsed, err := url.Parse(offerString)
	if err != nil {
		return nil, Error{Code: MalformedOffer, Err: fmt.Errorf("offer is not a valid URL: %w", err)}
	}
	query := parsed.Query()

	if inlineOffer := query.Get(credentialOfferParam); inlineOffer != "" {
		offer := CredentialOffer{}
		if err := json.Unmarshal([]byte(inlineOffer), &offer); err != nil {
			return nil, Error{Code: MalformedOffer, Err: fmt.Errorf("unable to unmarshal inline credential offer: %w", err)}
		}
		if err := offer.validate(); err != nil {
			return nil, Error{Code: MalformedOffer, Err: err}
		}
		return &offer, nil
	}

	offerURI := query.Get(credentialOfferURIParam)
	if offerURI == "" {
		return nil, Error{Code: MalformedOffer, Err: errors.New("offer contains neither credential_offer nor credential_offer_uri")}
	}
	offer := CredentialOffer{}
	if _, err := httpGet(ctx, r.httpClient, offerURI, &offer); err != nil {
		return nil, Error{Code: MalformedOffer, Err: fmt.Errorf("unable to retrieve credential offer (uri=%s): %w", offerURI, err)}
	}
	if err := offer.validate(); err != nil {
		return nil, Error{Code: MalformedOffer, Err: err}
	}
	return &offer, nil
}
