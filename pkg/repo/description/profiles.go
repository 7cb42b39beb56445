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

package description

import "strings"

const profilePrefix = "https://admin-shell.io/aas/API/3/0/"

// profiles maps the service specification profiles of the AAS API (Part 2,
// V3.0) to short names.
var profiles = []Profile{
	{profilePrefix + "AssetAdministrationShellServiceSpecification/SSP-001", "AAS-FULL"},
	{profilePrefix + "AssetAdministrationShellServiceSpecification/SSP-002", "AAS-READ"},
	{profilePrefix + "SubmodelServiceSpecification/SSP-001", "SM-FULL"},
	{profilePrefix + "SubmodelServiceSpecification/SSP-002", "SM-READ"},
	{profilePrefix + "SubmodelServiceSpecification/SSP-003", "SM-VALUE"},
	{profilePrefix + "AasxFileServerServiceSpecification/SSP-001", "AASX-FS-FULL"},
	{profilePrefix + "AssetAdministrationShellRegistryServiceSpecification/SSP-001", "AAS-REG-FULL"},
	{profilePrefix + "AssetAdministrationShellRegistryServiceSpecification/SSP-002", "AAS-REG-READ"},
	{profilePrefix + "SubmodelRegistryServiceSpecification/SSP-001", "SM-REG-FULL"},
	{profilePrefix + "SubmodelRegistryServiceSpecification/SSP-002", "SM-REG-READ"},
	{profilePrefix + "DiscoveryServiceSpecification/SSP-001", "DISC-FULL"},
	{profilePrefix + "AssetAdministrationShellRepositoryServiceSpecification/SSP-001", "AAS-REPO-FULL"},
	{profilePrefix + "AssetAdministrationShellRepositoryServiceSpecification/SSP-002", "AAS-REPO-READ"},
	{profilePrefix + "SubmodelRepositoryServiceSpecification/SSP-001", "SM-REPO-FULL"},
	{profilePrefix + "SubmodelRepositoryServiceSpecification/SSP-002", "SM-REPO-READ"},
	{profilePrefix + "SubmodelRepositoryServiceSpecification/SSP-003", "SM-REPO-TMPL"},
	{profilePrefix + "SubmodelRepositoryServiceSpecification/SSP-004", "SM-REPO-TMPL-READ"},
	{profilePrefix + "ConceptDescriptionRepositoryServiceSpecification/SSP-001", "CD-REPO-FULL"},
}

// FindProfile looks up a profile URI. Trailing slashes and case are ignored.
func FindProfile(profileURI string) (Profile, bool) {
	needle := strings.TrimRight(strings.TrimSpace(profileURI), "/")

	for _, p := range profiles {
		if strings.EqualFold(p.URI, needle) {
			return p, true
		}
	}

	return Profile{}, false
}

// Profiles returns a copy of the registry.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)

	return out
}
