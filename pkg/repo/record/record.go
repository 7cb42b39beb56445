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

// Package record holds the connection record a sync run is configured with.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"
)

// QueryMode selects which resource a run starts from.
type QueryMode string

const (
	QueryAllShells                QueryMode = "all-shells"
	QuerySingleShell              QueryMode = "single-shell"
	QuerySingleSubmodel           QueryMode = "single-submodel"
	QuerySingleConceptDescription QueryMode = "single-concept-description"
	QueryFreeForm                 QueryMode = "query"
)

// QueryModes lists the modes in the order they are offered to users.
var QueryModes = []QueryMode{
	QueryAllShells,
	QuerySingleShell,
	QuerySingleSubmodel,
	QuerySingleConceptDescription,
	QueryFreeForm,
}

// BaseType says whether the base address is a repository or a registry.
type BaseType string

const (
	BaseTypeRepository BaseType = "Repository"
	BaseTypeRegistry   BaseType = "Registry"
)

// DefaultBaseAddress is the public demo repository offered by default.
const DefaultBaseAddress = "https://eis-data.aas-voyager.com/"

// DefaultPageLimit is the page size used when nothing else is configured.
const DefaultPageLimit = 6

// ConnectionRecord configures one sync run.
type ConnectionRecord struct {
	BaseAddress string    `yaml:"baseAddress" json:"baseAddress" validate:"required,url"`
	BaseType    BaseType  `yaml:"baseType" json:"baseType" validate:"omitempty,oneof=Repository Registry"`
	QueryMode   QueryMode `yaml:"queryMode" json:"queryMode" validate:"required,oneof=all-shells single-shell single-submodel single-concept-description query"`

	ShellID              string `yaml:"shellId,omitempty" json:"shellId,omitempty" validate:"required_if=QueryMode single-shell"`
	SubmodelID           string `yaml:"submodelId,omitempty" json:"submodelId,omitempty" validate:"required_if=QueryMode single-submodel"`
	ConceptDescriptionID string `yaml:"conceptDescriptionId,omitempty" json:"conceptDescriptionId,omitempty" validate:"required_if=QueryMode single-concept-description"`
	Query                string `yaml:"query,omitempty" json:"query,omitempty" validate:"required_if=QueryMode query"`

	PageLimit int `yaml:"pageLimit" json:"pageLimit" validate:"gte=0"`
	PageSkip  int `yaml:"pageSkip" json:"pageSkip" validate:"gte=0"`

	AutoLoadSubmodels           bool `yaml:"autoLoadSubmodels" json:"autoLoadSubmodels"`
	AutoLoadConceptDescriptions bool `yaml:"autoLoadConceptDescriptions" json:"autoLoadConceptDescriptions"`
	AutoLoadThumbnails          bool `yaml:"autoLoadThumbnails" json:"autoLoadThumbnails"`
	// AutoLoadOnDemand makes auto-load add id-only stubs instead of fetching.
	AutoLoadOnDemand bool `yaml:"autoLoadOnDemand" json:"autoLoadOnDemand"`
	// EncryptIDs base64url-encodes identifiers in request paths.
	EncryptIDs    bool `yaml:"encryptIds" json:"encryptIds"`
	StayConnected bool `yaml:"stayConnected" json:"stayConnected"`
}

// New returns a record with the defaults the connect dialogue starts with.
func New() *ConnectionRecord {
	return &ConnectionRecord{
		BaseAddress:                 DefaultBaseAddress,
		BaseType:                    BaseTypeRepository,
		QueryMode:                   QueryAllShells,
		PageLimit:                   DefaultPageLimit,
		AutoLoadSubmodels:           true,
		AutoLoadConceptDescriptions: true,
		AutoLoadThumbnails:          true,
		AutoLoadOnDemand:            true,
		EncryptIDs:                  true,
	}
}

// SetQueryChoice switches the record to mode.
func (r *ConnectionRecord) SetQueryChoice(mode QueryMode) {
	r.QueryMode = mode
}

// FetchOperation names the REST operation the query mode maps to.
func (r *ConnectionRecord) FetchOperation() string {
	switch r.QueryMode {
	case QueryAllShells:
		return "GetAllAssetAdministrationShells"
	case QuerySingleShell:
		return "GetAssetAdministrationShellById"
	case QuerySingleSubmodel:
		return "GetSubmodelById"
	case QuerySingleConceptDescription:
		return "GetConceptDescriptionById"
	case QueryFreeForm:
		return "ExecuteQuery"
	default:
		return "Unknown"
	}
}

// BaseTypeName returns the display name of the base type.
func (r *ConnectionRecord) BaseTypeName() string {
	switch r.BaseType {
	case BaseTypeRepository, BaseTypeRegistry:
		return string(r.BaseType)
	default:
		return "Unknown"
	}
}

// Clone returns a deep copy. Sessions work on clones so a record edited by
// the caller mid-run has no effect.
func (r *ConnectionRecord) Clone() *ConnectionRecord {
	if r == nil {
		return nil
	}

	clone := &ConnectionRecord{}
	if err := deepcopy.Copy(clone, r); err != nil {
		// ConnectionRecord only has value fields; a shallow copy is equivalent.
		*clone = *r
	}

	return clone
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// Validate checks the record.
func (r *ConnectionRecord) Validate() error {
	if r == nil {
		return errors.New("connection record is nil")
	}

	if err := getValidator().Struct(r); err != nil {
		return fmt.Errorf("invalid connection record: %w", err)
	}

	return nil
}

// Parse decodes a YAML record on top of the defaults and validates it.
func Parse(data []byte) (*ConnectionRecord, error) {
	r := New()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse connection record: %w", err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// LoadFile reads and parses a YAML record file.
func LoadFile(path string) (*ConnectionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read connection record %s: %w", path, err)
	}

	return Parse(data)
}

// Marshal encodes the record as YAML.
func (r *ConnectionRecord) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
