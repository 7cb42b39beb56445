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

	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/record"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
)

// BuildLocationFrom builds the location a session starts from. For all-shells
// the requested limit includes the skipped items, as the skip is applied
// after the page was received. cursor is only used for all-shells.
func BuildLocationFrom(rec *record.ConnectionRecord, cursor string) (string, error) {
	if rec == nil || rec.BaseAddress == "" {
		return "", syncerr.Configurationf("no base address")
	}

	base, err := url.Parse(rec.BaseAddress)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return "", syncerr.Configurationf("base address %q is not an absolute URI", rec.BaseAddress)
	}

	var u *url.URL

	switch rec.QueryMode {
	case record.QueryAllShells:
		u = BuildForAllShells(base, rec.PageLimit+rec.PageSkip, cursor)
	case record.QuerySingleShell:
		u = BuildForShell(base, rec.ShellID, rec.EncryptIDs)
	case record.QuerySingleSubmodel:
		u = BuildForSubmodel(base, rec.SubmodelID, rec.EncryptIDs)
	case record.QuerySingleConceptDescription:
		u = BuildForConceptDescription(base, rec.ConceptDescriptionID, rec.EncryptIDs)
	case record.QueryFreeForm:
		u = BuildForQuery(base, rec.Query)
	default:
		return "", syncerr.Configurationf("unknown query mode %q", rec.QueryMode)
	}

	if u == nil {
		return "", syncerr.Configurationf("cannot build %s location: identifier is empty", rec.QueryMode)
	}

	return u.String(), nil
}
