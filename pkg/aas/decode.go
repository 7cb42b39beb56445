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
	"bytes"
	"errors"
	"fmt"

	"github.com/united-manufacturing-hub/aas-sync/pkg/safejson"
)

var (
	// ErrNotAnObject is returned for representations that are not JSON objects.
	ErrNotAnObject = errors.New("representation is not a JSON object")
	// ErrMissingID is returned for identifiables without an "id".
	ErrMissingID = errors.New("identifiable has no id")
)

// Decoder turns one JSON representation into a typed identifiable.
type Decoder interface {
	Decode(kind Kind, raw []byte) (Identifiable, error)
}

// JSONDecoder decodes the AAS Part 2 JSON serialisation.
type JSONDecoder struct{}

// ModelTypeMismatchError is returned when "modelType" names another kind.
type ModelTypeMismatchError struct {
	Want Kind
	Got  string
}

func (e *ModelTypeMismatchError) Error() string {
	return fmt.Sprintf("expected modelType %s, got %q", e.Want.Info().ModelType, e.Got)
}

func (JSONDecoder) Decode(kind Kind, raw []byte) (Identifiable, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotAnObject
	}

	raw = append([]byte(nil), trimmed...)

	var (
		item      Identifiable
		modelType string
		err       error
	)

	switch kind {
	case KindShell:
		var s Shell
		err = safejson.Unmarshal(raw, &s)
		s.Raw, modelType, item = raw, s.ModelType, &s
	case KindSubmodel:
		var s Submodel
		err = safejson.Unmarshal(raw, &s)
		s.Raw, modelType, item = raw, s.ModelType, &s
	case KindConceptDescription:
		var c ConceptDescription
		err = safejson.Unmarshal(raw, &c)
		c.Raw, modelType, item = raw, c.ModelType, &c
	default:
		return nil, fmt.Errorf("cannot decode kind %s", kind)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	if modelType != "" {
		if got, ok := KindByModelType(modelType); !ok || got != kind {
			return nil, &ModelTypeMismatchError{Want: kind, Got: modelType}
		}
	}

	if item.GetID() == "" {
		return nil, ErrMissingID
	}

	return item, nil
}
