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

package aas

import "strings"

// Kind identifies one of the three top-level identifiable types.
type Kind int

const (
	KindUnknown Kind = iota
	KindShell
	KindSubmodel
	KindConceptDescription
)

// KindInfo is the static metadata registered for a Kind.
type KindInfo struct {
	// ModelType is the value of the "modelType" JSON field.
	ModelType string
	// Segment is the REST collection path segment.
	Segment string
	// Operation is the name of the single-resource fetch operation.
	Operation string
	// Label is used for logs and metric labels.
	Label string
}

// kindInfo is the explicit registration list. Adding a kind means adding a row here.
var kindInfo = map[Kind]KindInfo{
	KindShell: {
		ModelType: "AssetAdministrationShell",
		Segment:   "shells",
		Operation: "GetAssetAdministrationShellById",
		Label:     "shell",
	},
	KindSubmodel: {
		ModelType: "Submodel",
		Segment:   "submodels",
		Operation: "GetSubmodelById",
		Label:     "submodel",
	},
	KindConceptDescription: {
		ModelType: "ConceptDescription",
		Segment:   "concept-descriptions",
		Operation: "GetConceptDescriptionById",
		Label:     "concept_description",
	},
}

// Kinds lists all registered kinds in a stable order.
var Kinds = []Kind{KindShell, KindSubmodel, KindConceptDescription}

// Info returns the registered metadata. Unknown kinds yield a zero KindInfo
// with Label "unknown".
func (k Kind) Info() KindInfo {
	if info, ok := kindInfo[k]; ok {
		return info
	}

	return KindInfo{Label: "unknown"}
}

func (k Kind) String() string {
	return k.Info().Label
}

// KindByModelType resolves a "modelType" value (case-insensitive).
func KindByModelType(modelType string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(kindInfo[k].ModelType, modelType) {
			return k, true
		}
	}

	return KindUnknown, false
}
