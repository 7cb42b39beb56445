// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uri

import (
	"net/url"
	"regexp"
	"strings"
)

// LocationKind is the resource shape a location points at.
type LocationKind int

const (
	LocationUnknown LocationKind = iota
	LocationAllShells
	LocationShell
	LocationSubmodel
	LocationConceptDescription
	LocationQuery
)

func (k LocationKind) String() string {
	switch k {
	case LocationAllShells:
		return "all-shells"
	case LocationShell:
		return "shell"
	case LocationSubmodel:
		return "submodel"
	case LocationConceptDescription:
		return "concept-description"
	case LocationQuery:
		return "query"
	default:
		return "unknown"
	}
}

// maxIDSegment bounds the identifier part of single-resource locations.
// Encoded identifiers of real-world IRIs easily exceed 100 characters; 1000
// is the largest repeat count RE2 accepts.
const maxIDSegment = "1000"

type matcher struct {
	kind LocationKind
	re   *regexp.Regexp
}

// matchers is ordered by precedence; the first match wins. Locations such as
// ".../aaspe-query/shells" fit more than one pattern. Sub-resources of a
// shell (thumbnail, asset information) are not shells and stay unknown.
var matchers = []matcher{
	{LocationQuery, regexp.MustCompile(`(?i)^https?://(.*?)/aaspe-query/(.+)$`)},
	{LocationConceptDescription, regexp.MustCompile(`(?i)^https?://(.*?)/(conceptdescriptions|concept-descriptions)/(.{1,` + maxIDSegment + `})$`)},
	{LocationSubmodel, regexp.MustCompile(`(?i)^https?://(.*?)/submodels/(.{1,` + maxIDSegment + `})$`)},
	{LocationShell, regexp.MustCompile(`(?i)^https?://(.*?)/shells/([^/?]{1,` + maxIDSegment + `})/?(\?.*)?$`)},
	{LocationAllShells, regexp.MustCompile(`(?i)^https?://(.*?)/shells(|/|/?\?(.*))$`)},
}

// Match classifies location. Unrecognised locations yield LocationUnknown.
func Match(location string) LocationKind {
	for _, m := range matchers {
		if m.re.MatchString(location) {
			return m.kind
		}
	}

	return LocationUnknown
}

// Matches lists every kind whose pattern fits location, in precedence order.
func Matches(location string) []LocationKind {
	var kinds []LocationKind

	for _, m := range matchers {
		if m.re.MatchString(location) {
			kinds = append(kinds, m.kind)
		}
	}

	return kinds
}

// IsValidAny reports whether any pattern fits location.
func IsValidAny(location string) bool {
	return Match(location) != LocationUnknown
}

// resourceSegments mark where the base of a location ends. "/submodel" also
// covers "/submodels", the same holds for concept descriptions.
var resourceSegments = []string{"/shells", "/submodel", "/conceptdescription", "/concept-description", "/aaspe-query"}

// GetBaseURI strips the resource part of location and returns the base the
// builders combine with, always ending in "/". Without a known resource
// segment the base is the authority root. It returns nil for locations
// without scheme or authority.
func GetBaseURI(location string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}

	path := u.EscapedPath()
	lower := strings.ToLower(path)

	cut := -1

	for _, seg := range resourceSegments {
		if i := strings.Index(lower, seg); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}

	basePath := "/"
	if cut >= 0 {
		basePath = path[:cut] + "/"
	}

	base := &url.URL{
		Scheme: strings.ToLower(u.Scheme),
		User:   u.User,
		Host:   u.Host,
	}

	unescaped, err := url.PathUnescape(basePath)
	if err != nil {
		return nil
	}

	base.Path = unescaped
	if unescaped != basePath {
		base.RawPath = basePath
	}

	return base
}
