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

package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"

	"github.com/onelogin/onelogin-aws-cli/internal/utils"
)

const (
	// TestDomainName Fake API domain name for tests / recordings
	TestDomainName = "api.test.dne-onelogin.com"
	// TestAuthorizationValue scrubbed Authorization header of recordings
	TestAuthorizationValue = "client_id:test-client-id, client_secret:test-client-secret"

	// APIDomainEnvVar real API host of a live recording session, scrubbed
	// from cassettes after capture
	APIDomainEnvVar = "ONELOGIN_AWS_CLI_API_DOMAIN"
)

// TestClock Is a settable test clock of the config Clock interface
type TestClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewTestClock New test clock pinned to the Go playground epoch
func NewTestClock() *TestClock {
	return &TestClock{now: time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)}
}

// Now The test clock's now
func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance Moves the test clock forward
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// RoundTripFunc Adapter so a bare function can serve as an http.RoundTripper
// on a config's HTTP client.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTrip Satisfies http.RoundTripper
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// JSONResponse Canned JSON response for RoundTripFunc bodies
func JSONResponse(statusCode int, body string) *http.Response {
	header := http.Header{}
	header.Set(utils.ContentType, utils.ApplicationJSON)
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// VCROneLoginAPIRequestHook Modifies VCR recordings: scrubs the real API
// domain and the Authorization header so that HTTP requests escaping VCR are
// bad and secrets never land on disk.
func VCROneLoginAPIRequestHook(i *cassette.Interaction) error {
	vcrHostname := TestDomainName
	orgHostname := os.Getenv(APIDomainEnvVar)

	// save disk space, clean up what gets written to disk
	i.Request.Headers.Del("User-Agent")
	if i.Request.Headers.Get(utils.Authorization) != "" {
		i.Request.Headers.Set(utils.Authorization, TestAuthorizationValue)
	}
	deleteResponseHeaders := []string{
		"Cache-Control",
		"Content-Security-Policy",
		"Expires",
		"Pragma",
		"Server",
		"Set-Cookie",
		"Strict-Transport-Security",
		"Vary",
	}
	for _, header := range deleteResponseHeaders {
		i.Response.Headers.Del(header)
	}
	for name := range i.Response.Headers {
		// delete all X-headers
		if strings.HasPrefix(name, "X-") {
			i.Response.Headers.Del(name)
			continue
		}
	}

	if orgHostname != "" {
		i.Request.Host = strings.ReplaceAll(i.Request.Host, orgHostname, vcrHostname)
		i.Request.URL = strings.ReplaceAll(i.Request.URL, orgHostname, vcrHostname)
		i.Request.Body = strings.ReplaceAll(i.Request.Body, orgHostname, vcrHostname)
		i.Response.Body = strings.ReplaceAll(i.Response.Body, orgHostname, vcrHostname)
	}

	return nil
}

// VCROneLoginAPIRequestMatcher Defines how VCR will match requests to
// responses.
func VCROneLoginAPIRequestMatcher(r *http.Request, i cassette.Request) bool {
	// scrub host for lookup
	r.URL.Host = TestDomainName

	// Default matcher compares method and URL only
	if !cassette.DefaultMatcher(r, i) {
		return false
	}
	if r.Body == nil {
		return true
	}

	var b bytes.Buffer
	if _, err := b.ReadFrom(r.Body); err != nil {
		log.Printf("[DEBUG] Failed to read request body from cassette: %v", err)
		return false
	}
	r.Body = io.NopCloser(&b)
	reqBody := b.String()
	// If body matches identically, we are done
	if reqBody == i.Body {
		return true
	}

	// JSON might be the same, but reordered. Try parsing json and comparing
	contentType := r.Header.Get(utils.ContentType)
	if strings.Contains(contentType, utils.ApplicationJSON) {
		var reqJSON, cassetteJSON interface{}
		if err := json.Unmarshal([]byte(reqBody), &reqJSON); err != nil {
			log.Printf("[DEBUG] Failed to unmarshall request json: %v", err)
			return false
		}
		if err := json.Unmarshal([]byte(i.Body), &cassetteJSON); err != nil {
			log.Printf("[DEBUG] Failed to unmarshall cassette json: %v", err)
			return false
		}
		return reflect.DeepEqual(reqJSON, cassetteJSON)
	}

	return true
}

// NewVCRRecorder New VCR recording settings
func NewVCRRecorder(t *testing.T, transport http.RoundTripper) (rec *recorder.Recorder, err error) {
	dir, _ := os.Getwd()
	vcrFixturesHome := path.Join(dir, "../../test/fixtures/vcr")
	cassettesPath := path.Join(vcrFixturesHome, t.Name())
	rec, err = recorder.NewWithOptions(&recorder.Options{
		CassetteName:       cassettesPath,
		Mode:               recorder.ModeRecordOnce,
		SkipRequestLatency: true, // skip how vcr will mimic the real request latency that it can record allowing for fast playback
		RealTransport:      transport,
	})
	if err != nil {
		return
	}

	rec.SetMatcher(VCROneLoginAPIRequestMatcher)
	rec.AddHook(VCROneLoginAPIRequestHook, recorder.AfterCaptureHook)

	return
}

// OsSetEnvIfBlank Set env var if its blank and return a clearing function
func OsSetEnvIfBlank(key, value string) func() {
	if os.Getenv(key) != "" {
		return func() {}
	}
	_ = os.Setenv(key, value)
	return func() {
		_ = os.Unsetenv(key)
	}
}
