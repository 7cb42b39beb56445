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

// Package uri builds and recognises the REST locations of an AAS repository.
//
// Builders never panic and never return an error: a missing base or an empty
// identifier yields a nil *url.URL, which callers treat as a configuration
// error.
package uri

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
)

const (
	segmentShells              = "shells"
	segmentSubmodels           = "submodels"
	segmentConceptDescriptions = "concept-descriptions"
	segmentQuery               = "aaspe-query"
	segmentDescription         = "description"
	suffixThumbnail            = "asset-information/thumbnail"
)

// EncodeID encodes an identifier as URL-safe Base64 without padding.
func EncodeID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeID reverses EncodeID. Padded input is accepted.
func DecodeID(segment string) (string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return "", fmt.Errorf("decode id segment %q: %w", segment, err)
	}

	return string(decoded), nil
}

func idSegment(id string, encrypt bool) string {
	if encrypt {
		return EncodeID(id)
	}

	return url.PathEscape(id)
}

// CombineURI resolves relative against base. The base is treated as a
// directory, so "https://host/api" and "https://host/api/" combine the same.
func CombineURI(base *url.URL, relative string) *url.URL {
	if base == nil || !base.IsAbs() || base.Host == "" || relative == "" {
		return nil
	}

	dir := *base
	dir.RawQuery = ""
	dir.Fragment = ""

	if !strings.HasSuffix(dir.Path, "/") {
		dir.Path += "/"
		if dir.RawPath != "" {
			dir.RawPath += "/"
		}
	}

	ref, err := url.Parse(relative)
	if err != nil {
		return nil
	}

	return dir.ResolveReference(ref)
}

// BuildForAllShells returns "shells?Limit=N[&Cursor=c]". Limit is omitted when
// not positive. The cursor is appended exactly as the server sent it.
func BuildForAllShells(base *url.URL, limit int, cursor string) *url.URL {
	u := CombineURI(base, segmentShells)
	if u == nil {
		return nil
	}

	var query []string
	if limit > 0 {
		query = append(query, "Limit="+strconv.Itoa(limit))
	}

	if cursor != "" {
		query = append(query, "Cursor="+cursor)
	}

	u.RawQuery = strings.Join(query, "&")

	return u
}

func buildForID(base *url.URL, collection string, id string, encrypt bool, suffix string) *url.URL {
	if id == "" {
		return nil
	}

	rel := collection + "/" + idSegment(id, encrypt)
	if suffix != "" {
		rel += "/" + suffix
	}

	return CombineURI(base, rel)
}

// BuildForShell returns "shells/{id}".
func BuildForShell(base *url.URL, id string, encrypt bool) *url.URL {
	return buildForID(base, segmentShells, id, encrypt, "")
}

// BuildForShellThumbnail returns "shells/{id}/asset-information/thumbnail".
func BuildForShellThumbnail(base *url.URL, id string, encrypt bool) *url.URL {
	return buildForID(base, segmentShells, id, encrypt, suffixThumbnail)
}

// BuildForSubmodel returns "submodels/{id}".
func BuildForSubmodel(base *url.URL, id string, encrypt bool) *url.URL {
	return buildForID(base, segmentSubmodels, id, encrypt, "")
}

// BuildForSubmodelRef resolves a reference with exactly one Submodel key.
func BuildForSubmodelRef(base *url.URL, ref *aas.Reference, encrypt bool) *url.URL {
	if !ref.IsSubmodelRef() {
		return nil
	}

	return BuildForSubmodel(base, ref.Keys[0].Value, encrypt)
}

// BuildForConceptDescription returns "concept-descriptions/{id}".
func BuildForConceptDescription(base *url.URL, id string, encrypt bool) *url.URL {
	return buildForID(base, segmentConceptDescriptions, id, encrypt, "")
}

// BuildFor dispatches on kind.
func BuildFor(base *url.URL, kind aas.Kind, id string, encrypt bool) *url.URL {
	switch kind {
	case aas.KindShell:
		return BuildForShell(base, id, encrypt)
	case aas.KindSubmodel:
		return BuildForSubmodel(base, id, encrypt)
	case aas.KindConceptDescription:
		return BuildForConceptDescription(base, id, encrypt)
	default:
		return nil
	}
}

// BuildForQuery returns "aaspe-query/{base64(query)}". The resource is a
// proprietary extension of some servers, not part of the AAS API.
func BuildForQuery(base *url.URL, query string) *url.URL {
	if query == "" {
		return nil
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(query))

	return CombineURI(base, segmentQuery+"/"+url.PathEscape(encoded))
}

// BuildForDescription returns the "description" resource listing the
// service profiles of a server.
func BuildForDescription(base *url.URL) *url.URL {
	return CombineURI(base, segmentDescription)
}
