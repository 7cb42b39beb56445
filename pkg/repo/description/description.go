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

// Package description reads the service description of a repository and
// names the service profiles it claims to implement.
package description

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
	"github.com/united-manufacturing-hub/aas-sync/pkg/safejson"
)

// StatusUnavailable is the status text when the description can't be read.
const StatusUnavailable = "Error retrieving /description !"

// ErrNoProfiles is returned when the description has no "profiles" member.
var ErrNoProfiles = errors.New("service description lists no profiles")

// Getter performs one GET.
type Getter interface {
	Get(ctx context.Context, uri string) (*httpclient.Response, error)
}

// Profile is a known service specification profile.
type Profile struct {
	URI          string `json:"uri"`
	Abbreviation string `json:"abbreviation"`
}

// Status is the outcome of a probe.
type Status struct {
	Profiles []Profile `json:"profiles"`
	// Unknown holds profile URIs missing from the registry.
	Unknown []string `json:"unknown,omitempty"`
}

func (s Status) String() string {
	if len(s.Profiles) == 0 {
		return "No profiles described!"
	}

	abbrevs := make([]string, 0, len(s.Profiles))
	for _, p := range s.Profiles {
		abbrevs = append(abbrevs, p.Abbreviation)
	}

	return "Profiles: " + strings.Join(abbrevs, ", ")
}

type serviceDescription struct {
	Profiles *[]string `json:"profiles"`
}

// Probe GETs "{endpoint}/description".
func Probe(ctx context.Context, client Getter, endpoint *url.URL) (Status, error) {
	location := uri.BuildForDescription(endpoint)
	if location == nil {
		return Status{}, syncerr.Configurationf("no endpoint to probe")
	}

	resp, err := client.Get(ctx, location.String())
	if err != nil {
		return Status{}, err
	}

	var desc serviceDescription
	if err := safejson.Unmarshal(resp.Body, &desc); err != nil {
		return Status{}, syncerr.NewParseError(location.String(), fmt.Errorf("decode service description: %w", err))
	}

	if desc.Profiles == nil {
		return Status{}, syncerr.NewParseError(location.String(), ErrNoProfiles)
	}

	var status Status

	for _, raw := range *desc.Profiles {
		profile := strings.TrimSpace(raw)
		if profile == "" {
			continue
		}

		if p, ok := FindProfile(profile); ok {
			status.Profiles = append(status.Profiles, p)
		} else {
			status.Unknown = append(status.Unknown, profile)
		}
	}

	return status, nil
}
