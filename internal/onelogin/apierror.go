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

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// APIErrorMessageBase base API error message when the error body is
	// unparseable
	APIErrorMessageBase = "OneLogin API returned an unknown error"
)

// APIError Normalized OneLogin API error. The API answers with two error
// envelope shapes, a flat {message, statusCode, name} and a wrapped
// {status: {type, code, message}}; both normalize here.
type APIError struct {
	Name       string `json:"name"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Error String-ify the Error
func (e *APIError) Error() string {
	if e.Message == "" {
		return APIErrorMessageBase
	}
	return fmt.Sprintf("OneLogin API returned an error: %s", e.Message)
}

// AuthorizationError HTTP 401 from the API; invalid credentials, a locked
// account, or a failed factor verification.
type AuthorizationError struct {
	*APIError
}

// NotFoundError HTTP 404 from the API
type NotFoundError struct {
	*APIError
}

// ValidationError A required client call argument was empty; raised before
// any network call.
type ValidationError struct {
	Field string
}

// Error Error interface error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q cannot be empty", e.Field)
}

// TransportError A network level failure reaching the API; never retried.
type TransportError struct {
	Endpoint string
	Err      error
}

// Error Error interface error message
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.Endpoint, e.Err)
}

// Unwrap Expose the underlying transport failure
func (e *TransportError) Unwrap() error {
	return e.Err
}

// wrappedStatus the {status: {...}} error envelope variant
type wrappedStatus struct {
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type apiErrorEnvelope struct {
	Name       string         `json:"name"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Status     *wrappedStatus `json:"status"`
}

// NewAPIError Constructor for an API error from a response, returns nil when
// the response is not an error. 401s become AuthorizationError, 404s
// NotFoundError, any other non-2xx the generic APIError.
func NewAPIError(resp *http.Response) error {
	statusCode := resp.StatusCode
	if statusCode >= http.StatusOK && statusCode < http.StatusBadRequest {
		return nil
	}

	e := &APIError{StatusCode: statusCode}
	bodyBytes, _ := io.ReadAll(resp.Body)
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err == nil {
		if envelope.Status != nil {
			e.Name = envelope.Status.Type
			e.Message = envelope.Status.Message
			if envelope.Status.Code != 0 {
				e.StatusCode = envelope.Status.Code
			}
		} else {
			e.Name = envelope.Name
			e.Message = envelope.Message
			if envelope.StatusCode != 0 {
				e.StatusCode = envelope.StatusCode
			}
		}
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return &AuthorizationError{e}
	case http.StatusNotFound:
		return &NotFoundError{e}
	}
	return e
}
