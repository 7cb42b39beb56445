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

package session

import (
	"net/url"

	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/record"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
)

// FetchContext is what a committed run needs to continue a paged listing.
// Cursor is opaque and passed back to the server unchanged.
type FetchContext struct {
	Record *record.ConnectionRecord `json:"record,omitempty"`
	Cursor string                   `json:"cursor,omitempty"`
	// BaseURI is the base of the location that served the page. The cursor
	// is only valid there.
	BaseURI string `json:"baseUri,omitempty"`
	// PageOffset counts pages locally, 0 for the first one.
	PageOffset int `json:"pageOffset"`
}

// HasMore reports whether the server announced another page.
func (c FetchContext) HasMore() bool {
	return c.Cursor != "" && c.Record != nil && c.Record.QueryMode == record.QueryAllShells
}

// NextLocation builds the location of the next page, or "" on the last one.
// Follow-up pages request PageLimit elements; the skip only applies to the
// first page.
func (c FetchContext) NextLocation() (string, error) {
	if !c.HasMore() {
		return "", nil
	}

	base, err := c.base()
	if err != nil {
		return "", err
	}

	next := uri.BuildForAllShells(base, c.Record.PageLimit, c.Cursor)
	if next == nil {
		return "", syncerr.Configurationf("cannot build follow-up location from base %q", base)
	}

	return next.String(), nil
}

// base prefers the base that served the page over the record's address.
func (c FetchContext) base() (*url.URL, error) {
	if c.BaseURI != "" {
		base, err := url.Parse(c.BaseURI)
		if err != nil {
			return nil, syncerr.NewConfigurationError(err)
		}

		return base, nil
	}

	location, err := uri.BuildLocationFrom(c.Record, "")
	if err != nil {
		return nil, err
	}

	return uri.GetBaseURI(location), nil
}

// NextPageOffset is the offset of the page NextLocation points at.
func (c FetchContext) NextPageOffset() int {
	return c.PageOffset + 1
}
