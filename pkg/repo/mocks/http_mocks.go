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

// Package mocks answers the requests of a sync run with gock responders that
// imitate an AAS repository.
package mocks

import (
	"bytes"
	"net/http"
	"regexp"

	"github.com/h2non/gock"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
)

const (
	Host     = "https://repo.example.com"
	BasePath = "/api/v3"
	// BaseAddress is the repository base address the responders answer for.
	BaseAddress = Host + BasePath
)

// Intercept routes the shared HTTP client through gock. Call it before
// registering responders.
func Intercept() {
	gock.InterceptClient(httpclient.GetClient(false))
}

func exact(path string) string {
	return "^" + regexp.QuoteMeta(path) + "$"
}

// Path returns the request path of a single resource with an encoded id.
func Path(collection, id string) string {
	return BasePath + "/" + collection + "/" + uri.EncodeID(id)
}

// Shell returns the JSON of a shell referencing the given submodels.
func Shell(id string, submodelIDs ...string) map[string]any {
	refs := make([]map[string]any, 0, len(submodelIDs))
	for _, sm := range submodelIDs {
		refs = append(refs, map[string]any{
			"type": "ModelReference",
			"keys": []map[string]any{{"type": "Submodel", "value": sm}},
		})
	}

	return map[string]any{
		"modelType":        "AssetAdministrationShell",
		"id":               id,
		"assetInformation": map[string]any{"assetKind": "Instance"},
		"submodels":        refs,
	}
}

// Submodel returns the JSON of a submodel with one property per semantic id.
func Submodel(id string, semanticIDs ...string) map[string]any {
	elements := make([]map[string]any, 0, len(semanticIDs))
	for _, sem := range semanticIDs {
		elements = append(elements, map[string]any{
			"modelType":  "Property",
			"idShort":    "p",
			"semanticId": map[string]any{"type": "ExternalReference", "keys": []map[string]any{{"type": "GlobalReference", "value": sem}}},
		})
	}

	return map[string]any{
		"modelType":        "Submodel",
		"id":               id,
		"submodelElements": elements,
	}
}

func ConceptDescription(id string) map[string]any {
	return map[string]any{"modelType": "ConceptDescription", "id": id}
}

// Envelope wraps items in the paged list envelope. An empty cursor marks the
// last page.
func Envelope(cursor string, items ...any) map[string]any {
	paging := map[string]any{}
	if cursor != "" {
		paging["cursor"] = cursor
	}

	if items == nil {
		items = []any{}
	}

	return map[string]any{"result": items, "paging_metadata": paging}
}

// MockShellPage answers GET shells. A non-empty requestCursor restricts the
// responder to requests carrying that cursor.
func MockShellPage(requestCursor, nextCursor string, shells ...any) *gock.Request {
	req := gock.New(Host).Get(exact(BasePath + "/shells"))
	if requestCursor != "" {
		req = req.MatchParam("Cursor", "^"+regexp.QuoteMeta(requestCursor)+"$")
	}

	req.Reply(http.StatusOK).JSON(Envelope(nextCursor, shells...))

	return req
}

// MockJSON answers GET path with status and a JSON body.
func MockJSON(path string, status int, body any) *gock.Request {
	req := gock.New(Host).Get(exact(path))
	req.Reply(status).JSON(body)

	return req
}

// MockRaw answers GET path with a verbatim body.
func MockRaw(path string, status int, contentType string, body []byte) *gock.Request {
	req := gock.New(Host).Get(exact(path))
	req.Reply(status).SetHeader("Content-Type", contentType).Body(bytes.NewReader(body))

	return req
}

// MockItem answers GET {collection}/{base64url(id)} with body.
func MockItem(collection, id string, body any) *gock.Request {
	return MockJSON(Path(collection, id), http.StatusOK, body)
}

// MockStatus answers GET {collection}/{base64url(id)} with an empty error
// response.
func MockStatus(collection, id string, status int) *gock.Request {
	req := gock.New(Host).Get(exact(Path(collection, id)))
	req.Reply(status)

	return req
}

// MockThumbnail answers the thumbnail resource of shellID.
func MockThumbnail(shellID, contentType string, data []byte) *gock.Request {
	return MockRaw(Path("shells", shellID)+"/asset-information/thumbnail", http.StatusOK, contentType, data)
}

// MockDescription answers GET description with the given profile URIs.
func MockDescription(profiles ...string) *gock.Request {
	if profiles == nil {
		profiles = []string{}
	}

	return MockJSON(BasePath+"/description", http.StatusOK, map[string]any{"profiles": profiles})
}
