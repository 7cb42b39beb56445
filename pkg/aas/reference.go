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

// KeyType is the "type" of a reference key.
type KeyType string

const (
	KeyTypeAssetAdministrationShell KeyType = "AssetAdministrationShell"
	KeyTypeSubmodel                 KeyType = "Submodel"
	KeyTypeConceptDescription       KeyType = "ConceptDescription"
	KeyTypeGlobalReference          KeyType = "GlobalReference"
	KeyTypeFragmentReference        KeyType = "FragmentReference"
	KeyTypeSubmodelElement          KeyType = "SubmodelElement"
)

// ReferenceType distinguishes model references from external ones.
type ReferenceType string

const (
	ReferenceTypeModel    ReferenceType = "ModelReference"
	ReferenceTypeExternal ReferenceType = "ExternalReference"
)

type Key struct {
	Type  KeyType `json:"type"`
	Value string  `json:"value"`
}

type Reference struct {
	Type ReferenceType `json:"type,omitempty"`
	Keys []Key         `json:"keys"`
}

// NewSubmodelRef builds a model reference to a submodel id.
func NewSubmodelRef(id string) Reference {
	return Reference{
		Type: ReferenceTypeModel,
		Keys: []Key{{Type: KeyTypeSubmodel, Value: id}},
	}
}

// IsSubmodelRef reports whether r points at exactly one submodel.
func (r *Reference) IsSubmodelRef() bool {
	return r != nil && len(r.Keys) == 1 && r.Keys[0].Type == KeyTypeSubmodel && r.Keys[0].Value != ""
}

// First returns the first key, if any.
func (r *Reference) First() (Key, bool) {
	if r == nil || len(r.Keys) == 0 {
		return Key{}, false
	}

	return r.Keys[0], true
}

// ConceptDescriptionID returns the id a semantic reference resolves to when
// looked up as a concept description.
func (r *Reference) ConceptDescriptionID() (string, bool) {
	key, ok := r.First()
	if !ok || key.Value == "" {
		return "", false
	}

	switch key.Type {
	case KeyTypeConceptDescription, KeyTypeGlobalReference:
		return key.Value, true
	default:
		return "", false
	}
}
