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

// Environment aggregates shells, submodels and concept descriptions. A nil
// list means the collection was not populated (see Prune). Environment is not
// safe for concurrent use.
type Environment struct {
	Shells              *IdentifiableList[*Shell]
	Submodels           *IdentifiableList[*Submodel]
	ConceptDescriptions *IdentifiableList[*ConceptDescription]
}

// NewEnvironment creates an environment with three empty lists.
func NewEnvironment() *Environment {
	return &Environment{
		Shells:              NewList[*Shell](KindShell),
		Submodels:           NewList[*Submodel](KindSubmodel),
		ConceptDescriptions: NewList[*ConceptDescription](KindConceptDescription),
	}
}

// Add routes item to the list of its kind.
func (env *Environment) Add(item Identifiable, side *SideInfo) error {
	switch v := item.(type) {
	case *Shell:
		return env.Shells.Add(v, side)
	case *Submodel:
		return env.Submodels.Add(v, side)
	case *ConceptDescription:
		return env.ConceptDescriptions.Add(v, side)
	default:
		return fmt.Errorf("unsupported identifiable %T", item)
	}
}

// AddStub adds an id-only entry to the list of kind.
func (env *Environment) AddStub(kind Kind, id string) error {
	switch kind {
	case KindShell:
		return env.Shells.AddStub(id)
	case KindSubmodel:
		return env.Submodels.AddStub(id)
	case KindConceptDescription:
		return env.ConceptDescriptions.AddStub(id)
	default:
		return fmt.Errorf("unsupported kind %s", kind)
	}
}

// Contains reports whether an entry (stub or full) for id exists.
func (env *Environment) Contains(kind Kind, id string) bool {
	switch kind {
	case KindShell:
		return env.Shells.Contains(id)
	case KindSubmodel:
		return env.Submodels.Contains(id)
	case KindConceptDescription:
		return env.ConceptDescriptions.Contains(id)
	default:
		return false
	}
}

// SideInfo returns the side information stored for id, if any.
func (env *Environment) SideInfo(kind Kind, id string) *SideInfo {
	switch kind {
	case KindShell:
		e, _ := env.Shells.Get(id)
		return e.Side
	case KindSubmodel:
		e, _ := env.Submodels.Get(id)
		return e.Side
	case KindConceptDescription:
		e, _ := env.ConceptDescriptions.Get(id)
		return e.Side
	default:
		return nil
	}
}

// Counts holds the number of entries per kind.
type Counts struct {
	Shells              int `json:"shells"`
	Submodels           int `json:"submodels"`
	ConceptDescriptions int `json:"conceptDescriptions"`
	Stubs               int `json:"stubs"`
}

func (c Counts) String() string {
	return fmt.Sprintf("shells=%d submodels=%d conceptDescriptions=%d stubs=%d",
		c.Shells, c.Submodels, c.ConceptDescriptions, c.Stubs)
}

// Count returns the number of entries of one kind.
func (env *Environment) Count(kind Kind) int {
	switch kind {
	case KindShell:
		return env.Shells.Len()
	case KindSubmodel:
		return env.Submodels.Len()
	case KindConceptDescription:
		return env.ConceptDescriptions.Len()
	default:
		return 0
	}
}

func (env *Environment) Counts() Counts {
	return Counts{
		Shells:              env.Shells.Len(),
		Submodels:           env.Submodels.Len(),
		ConceptDescriptions: env.ConceptDescriptions.Len(),
		Stubs:               env.Shells.StubCount() + env.Submodels.StubCount() + env.ConceptDescriptions.StubCount(),
	}
}

// Prune sets every empty list to nil, so "queried, none found" and "not
// queried" look the same to consumers of the committed environment.
func (env *Environment) Prune() {
	if env.Shells.Len() == 0 {
		env.Shells = nil
	}

	if env.Submodels.Len() == 0 {
		env.Submodels = nil
	}

	if env.ConceptDescriptions.Len() == 0 {
		env.ConceptDescriptions = nil
	}
}

// FindMissingSubmodelReferences returns the submodel references of all
// shells whose target is not resident, deduplicated, in discovery order.
func (env *Environment) FindMissingSubmodelReferences() []Reference {
	var missing []Reference

	seen := make(map[string]struct{})

	for _, shell := range env.Shells.Items() {
		for i := range shell.Submodels {
			ref := shell.Submodels[i]
			if !ref.IsSubmodelRef() {
				continue
			}

			id := ref.Keys[0].Value
			if _, dup := seen[id]; dup || env.Submodels.Contains(id) {
				continue
			}

			seen[id] = struct{}{}
			missing = append(missing, ref)
		}
	}

	return missing
}

// FindMissingConceptDescriptionIDs returns the semantic ids used by resident
// submodels and their elements that have no concept description yet.
// Elements that fail to decode are skipped and reported in the error slice.
func (env *Environment) FindMissingConceptDescriptionIDs() ([]string, []error) {
	var (
		missing []string
		errs    []error
	)

	seen := make(map[string]struct{})

	visit := func(ref *Reference) {
		id, ok := ref.ConceptDescriptionID()
		if !ok {
			return
		}

		if _, dup := seen[id]; dup || env.ConceptDescriptions.Contains(id) {
			return
		}

		seen[id] = struct{}{}
		missing = append(missing, id)
	}

	var walk func(elements []SubmodelElement)
	walk = func(elements []SubmodelElement) {
		for i := range elements {
			visit(elements[i].SemanticID)

			children, err := elements[i].Children()
			if err != nil {
				errs = append(errs, err)
				continue
			}

			walk(children)
		}
	}

	for _, sm := range env.Submodels.Items() {
		visit(sm.SemanticID)
		walk(sm.SubmodelElements)
	}

	return missing, errs
}

// Merge adds the entries of other that env does not hold yet and returns
// how many were added. A full item resolves a stub already in env. Absent lists in
// env are recreated when other has entries of that kind.
func (env *Environment) Merge(other *Environment) int {
	if other == nil {
		return 0
	}

	if env.Shells == nil && other.Shells.Len() > 0 {
		env.Shells = NewList[*Shell](KindShell)
	}

	if env.Submodels == nil && other.Submodels.Len() > 0 {
		env.Submodels = NewList[*Submodel](KindSubmodel)
	}

	if env.ConceptDescriptions == nil && other.ConceptDescriptions.Len() > 0 {
		env.ConceptDescriptions = NewList[*ConceptDescription](KindConceptDescription)
	}

	return mergeList(env.Shells, other.Shells) +
		mergeList(env.Submodels, other.Submodels) +
		mergeList(env.ConceptDescriptions, other.ConceptDescriptions)
}

func mergeList[T Identifiable](dst, src *IdentifiableList[T]) int {
	added := 0

	for _, e := range src.Entries() {
		var err error
		if e.IsStub() {
			err = dst.AddStub(e.ID())
		} else {
			err = dst.Add(e.Item, e.Side)
		}

		if err == nil {
			added++
		}
	}

	return added
}

type serialisedEnvironment struct {
	Shells              []safejson.RawMessage `json:"assetAdministrationShells,omitempty"`
	Submodels           []safejson.RawMessage `json:"submodels,omitempty"`
	ConceptDescriptions []safejson.RawMessage `json:"conceptDescriptions,omitempty"`
}

// MarshalJSON writes the environment in the AAS JSON serialisation. Stubs are
// not part of the output.
func (env *Environment) MarshalJSON() ([]byte, error) {
	var (
		out serialisedEnvironment
		err error
	)

	if out.Shells, err = rawItems(env.Shells); err != nil {
		return nil, err
	}

	if out.Submodels, err = rawItems(env.Submodels); err != nil {
		return nil, err
	}

	if out.ConceptDescriptions, err = rawItems(env.ConceptDescriptions); err != nil {
		return nil, err
	}

	return safejson.Marshal(out)
}

// rawItems prefers the original representation and falls back to encoding
// the decoded struct for items built in code.
func rawItems[T Identifiable](l *IdentifiableList[T]) ([]safejson.RawMessage, error) {
	items := l.Items()
	if len(items) == 0 {
		return nil, nil
	}

	out := make([]safejson.RawMessage, 0, len(items))

	for _, item := range items {
		raw := item.RawJSON()
		if len(raw) == 0 {
			encoded, err := safejson.Marshal(item)
			if err != nil {
				return nil, fmt.Errorf("encode %s %q: %w", item.Kind(), item.GetID(), err)
			}

			raw = encoded
		}

		out = append(out, raw)
	}

	return out, nil
}
