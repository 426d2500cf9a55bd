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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/verimble/oid4vci-client/core"
	"github.com/verimble/oid4vci-client/log"
)

func httpGet(ctx context.Context, httpClient core.HTTPRequestDoer, targetURL string, result interface{}) ([]byte, error) {
	httpRequest, _ := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	return httpDo(httpClient, httpRequest, result)
}

func httpPostForm(ctx context.Context, httpClient core.HTTPRequestDoer, targetURL string, values url.Values, result interface{}) ([]byte, error) {
	httpRequest, _ := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, strings.NewReader(values.Encode()))
	httpRequest.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	return httpDo(httpClient, httpRequest, result)
}

func httpPostJSON(ctx context.Context, httpClient core.HTTPRequestDoer, targetURL string, accessToken string, body interface{}, result interface{}) ([]byte, error) {
	requestBody, _ := json.Marshal(body)
	httpRequest, _ := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(requestBody))
	httpRequest.Header.Add("Authorization", "Bearer "+accessToken)
	httpRequest.Header.Add("Content-Type", "application/json")
	return httpDo(httpClient, httpRequest, result)
}

func httpDo(httpClient core.HTTPRequestDoer, httpRequest *http.Request, result interface{}) ([]byte, error) {
	httpResponse, err := httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("http request error: %w", err)
	}
	defer httpResponse.Body.Close()
	// non-OK responses surface as core.HttpError, carrying the status code and body
	if err := core.TestResponseCodeWithLog(http.StatusOK, httpResponse, log.Logger()); err != nil {
		return nil, err
	}
	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("read error (%s): %w", httpRequest.URL, err)
	}
	if result != nil {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return nil, fmt.Errorf("%T JSON unmarshal error: %w", result, err)
		}
	}
	return responseBody, nil
}
