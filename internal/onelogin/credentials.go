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

package onelogin

// AuthenticationKind How a Credentials value authenticates against the API
type AuthenticationKind int

const (
	// Basic client id and client secret pair for the token endpoint
	Basic AuthenticationKind = iota
	// Bearer a ready made access token
	Bearer
)

// Credentials Immutable API credentials. Basic credentials carry a login
// (client id) and secret (client secret); Bearer credentials carry only a
// token.
type Credentials struct {
	login  string
	secret string
	kind   AuthenticationKind
}

// NewBasicCredentials Credentials from a client id / client secret pair
func NewBasicCredentials(clientID, clientSecret string) Credentials {
	return Credentials{
		login:  clientID,
		secret: clientSecret,
		kind:   Basic,
	}
}

// NewBearerCredentials Credentials from an already issued access token
func NewBearerCredentials(token string) Credentials {
	return Credentials{
		secret: token,
		kind:   Bearer,
	}
}

// Login The client id, empty for Bearer credentials
func (c Credentials) Login() string { return c.login }

// Secret The client secret or bearer token
func (c Credentials) Secret() string { return c.secret }

// Kind Basic or Bearer
func (c Credentials) Kind() AuthenticationKind { return c.kind }
