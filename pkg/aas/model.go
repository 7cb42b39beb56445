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

import (
	"fmt"

	"github.com/united-manufacturing-hub/aas-sync/pkg/safejson"
)

// Identifiable is implemented by shells, submodels and concept descriptions.
type Identifiable interface {
	GetID() string
	Kind() Kind
	// RawJSON returns the representation the entity was decoded from.
	RawJSON() safejson.RawMessage
}

// Only the fields needed for traversal are decoded; Raw keeps the rest.

type Resource struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType,omitempty"`
}

type AssetInformation struct {
	AssetKind        string    `json:"assetKind,omitempty"`
	GlobalAssetID    string    `json:"globalAssetId,omitempty"`
	DefaultThumbnail *Resource `json:"defaultThumbnail,omitempty"`
}

type Shell struct {
	ID               string            `json:"id"`
	IDShort          string            `json:"idShort,omitempty"`
	ModelType        string            `json:"modelType,omitempty"`
	AssetInformation *AssetInformation `json:"assetInformation,omitempty"`
	Submodels        []Reference       `json:"submodels,omitempty"`

	Raw safejson.RawMessage `json:"-"`
}

func (s *Shell) GetID() string {
	if s == nil {
		return ""
	}

	return s.ID
}

func (s *Shell) Kind() Kind { return KindShell }

func (s *Shell) RawJSON() safejson.RawMessage {
	if s == nil {
		return nil
	}

	return s.Raw
}

type Submodel struct {
	ID               string            `json:"id"`
	IDShort          string            `json:"idShort,omitempty"`
	ModelType        string            `json:"modelType,omitempty"`
	SemanticID       *Reference        `json:"semanticId,omitempty"`
	SubmodelElements []SubmodelElement `json:"submodelElements,omitempty"`

	Raw safejson.RawMessage `json:"-"`
}

func (s *Submodel) GetID() string {
	if s == nil {
		return ""
	}

	return s.ID
}

func (s *Submodel) Kind() Kind { return KindSubmodel }

func (s *Submodel) RawJSON() safejson.RawMessage {
	if s == nil {
		return nil
	}

	return s.Raw
}

// SubmodelElement keeps its value undecoded. Nested elements are only decoded
// on demand through Children.
type SubmodelElement struct {
	IDShort    string              `json:"idShort,omitempty"`
	ModelType  string              `json:"modelType"`
	SemanticID *Reference          `json:"semanticId,omitempty"`
	Value      safejson.RawMessage `json:"value,omitempty"`
	Statements safejson.RawMessage `json:"statements,omitempty"`
}

// Children decodes the nested elements of collections, lists and entities.
// Other element types have none.
func (e *SubmodelElement) Children() ([]SubmodelElement, error) {
	var raw safejson.RawMessage

	switch e.ModelType {
	case "SubmodelElementCollection", "SubmodelElementList":
		raw = e.Value
	case "Entity":
		raw = e.Statements
	default:
		return nil, nil
	}

	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var children []SubmodelElement
	if err := safejson.Unmarshal(raw, &children); err != nil {
		return nil, fmt.Errorf("children of %s %q: %w", e.ModelType, e.IDShort, err)
	}

	return children, nil
}

type ConceptDescription struct {
	ID        string      `json:"id"`
	IDShort   string      `json:"idShort,omitempty"`
	ModelType string      `json:"modelType,omitempty"`
	IsCaseOf  []Reference `json:"isCaseOf,omitempty"`

	Raw safejson.RawMessage `json:"-"`
}

func (c *ConceptDescription) GetID() string {
	if c == nil {
		return ""
	}

	return c.ID
}

func (c *ConceptDescription) Kind() Kind { return KindConceptDescription }

func (c *ConceptDescription) RawJSON() safejson.RawMessage {
	if c == nil {
		return nil
	}

	return c.Raw
}
