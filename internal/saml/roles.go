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

// Package saml extracts assumable IAM roles from a decoded SAML assertion.
package saml

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const (
	// RoleAttributeName the AWS role attribute URI of the SAML convention
	RoleAttributeName = "https://aws.amazon.com/SAML/Attributes/Role"

	nameKey            = "name"
	attributeElement   = "attribute"
	attributeValueNode = "attributevalue"
)

// IAMRole A role ARN / principal ARN pair from one AttributeValue of the
// assertion's Role attribute.
type IAMRole struct {
	RoleARN      string
	PrincipalARN string
}

// ProtocolError Failure of the SAML document's contract: no roles to choose
// from, or a configured role missing from the extracted list.
type ProtocolError struct {
	Message string
}

// Error Error interface error message
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("SAML protocol error: %s", e.Message)
}

// ExtractRoles Walks the decoded SAML XML for AttributeValue nodes of the
// Attribute named with the AWS role URI. Each value splits on its first comma
// into role ARN then principal ARN, in document order. Malformed XML or an
// absent attribute yields an empty slice; callers decide whether that is
// fatal.
//
// The parser tolerates any namespace prefix (saml:, saml2:, none) by
// matching on local element names.
func ExtractRoles(samlXML string) []IAMRole {
	doc, err := html.Parse(strings.NewReader(samlXML))
	if err != nil {
		return nil
	}

	roles := []IAMRole{}
	attr, ok := findRoleAttribute(doc)
	if !ok {
		return roles
	}
	for _, value := range attributeValues(attr) {
		roleARN, principalARN, found := strings.Cut(strings.TrimSpace(value), ",")
		if !found {
			continue
		}
		roles = append(roles, IAMRole{
			RoleARN:      strings.TrimSpace(roleARN),
			PrincipalARN: strings.TrimSpace(principalARN),
		})
	}
	return roles
}

// localName element name with any namespace prefix stripped; the html parser
// has already lower cased it.
func localName(data string) string {
	if _, after, found := strings.Cut(data, ":"); found {
		return after
	}
	return data
}

func findRoleAttribute(n *html.Node) (node *html.Node, found bool) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode && localName(n.Data) == attributeElement {
		for _, a := range n.Attr {
			if a.Key == nameKey && a.Val == RoleAttributeName {
				return n, true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if node, found = findRoleAttribute(c); found {
			return
		}
	}
	return nil, false
}

func attributeValues(n *html.Node) []string {
	values := []string{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || localName(c.Data) != attributeValueNode {
			continue
		}
		if c.FirstChild != nil && c.FirstChild.Type == html.TextNode {
			values = append(values, c.FirstChild.Data)
		}
	}
	return values
}
