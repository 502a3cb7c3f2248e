/*
 * Copyright (c) 2021-Present, OneLogin, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package onelogin is the OneLogin API surface the CLI needs: the
// client-credentials token flow with its process wide cache, and the SAML
// assertion endpoints with MFA step-up.
package onelogin

import (
	"fmt"
	"strings"

	"github.com/onelogin/onelogin-aws-cli/internal/config"
)

// APIBaseURIFormat the region scoped API base URI
const APIBaseURIFormat = "https://api.%s.onelogin.com"

// Client Aggregate OneLogin API client. One token cache per client; the SAML
// client authenticates through it.
type Client struct {
	OAuth *OAuthTokenClient
	SAML  *SAMLClient
}

// NewClient Builds a client for the config's region with a token cache keyed
// to the config's client id / client secret pair.
func NewClient(cfg *config.Config) *Client {
	baseURI := strings.TrimSuffix(cfg.BaseURI(), "/")
	if region := cfg.APIRegion(); baseURI == "" && region != "" {
		baseURI = fmt.Sprintf(APIBaseURIFormat, region)
	}

	oauth := NewOAuthTokenClient(baseURI, cfg.UserAgent(), cfg.HTTPClient())
	creds := NewBasicCredentials(cfg.ClientID(), cfg.ClientSecret())
	tokens := NewTokenCache(oauth, creds, cfg.Clock())

	return &Client{
		OAuth: oauth,
		SAML:  NewSAMLClient(baseURI, cfg.UserAgent(), cfg.HTTPClient(), tokens),
	}
}
