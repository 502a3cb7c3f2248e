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

package utils

const (
	// ContentType http header content type
	ContentType = "Content-Type"
	// Accept HTTP Accept header
	Accept = "Accept"
	// Authorization HTTP Authorization header
	Authorization = "Authorization"
	// ApplicationJSON content value for json
	ApplicationJSON = "application/json"
	// UserAgentHeader user agent header
	UserAgentHeader = "User-Agent"
	// PassThroughStringNewLineFMT string formatter to make lint happy
	PassThroughStringNewLineFMT = "%s\n"

	// AWSAccessKeyIDVar AWS creds access key ID env var name
	AWSAccessKeyIDVar = "AWS_ACCESS_KEY_ID"
	// AWSSecretAccessKeyVar AWS creds secret access key env var name
	AWSSecretAccessKeyVar = "AWS_SECRET_ACCESS_KEY"
	// AWSSessionTokenVar AWS creds session token env var name
	AWSSessionTokenVar = "AWS_SESSION_TOKEN"
)
