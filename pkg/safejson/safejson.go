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

// Package safejson wraps goccy/go-json. Repository payloads are untrusted, so a
// panic inside the fast decoder is turned into a retry with encoding/json
// instead of taking the whole sync down.
package safejson

import (
	jsonstd "encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// RawMessage is a raw encoded JSON value. It implements json.Unmarshaler, so
// goccy and the stdlib fallback both fill it.
type RawMessage = jsonstd.RawMessage

// ErrNotPointer is returned when Unmarshal is given something it cannot fill.
var ErrNotPointer = errors.New("decoded must be a non-nil pointer")

// Unmarshal decodes val into decoded.
func Unmarshal(val []byte, decoded any) (err error) {
	ptr := reflect.ValueOf(decoded)
	if !ptr.IsValid() || ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return ErrNotPointer
	}

	defer func() {
		if r := recover(); r != nil {
			zap.S().Warnf("goccy failed to decode, falling back to stdlib: %v", r)

			fresh := reflect.New(ptr.Elem().Type())
			if stdErr := jsonstd.Unmarshal(val, fresh.Interface()); stdErr != nil {
				err = fmt.Errorf("decode after goccy panic: %w", stdErr)
				return
			}

			ptr.Elem().Set(fresh.Elem())
			err = nil
		}
	}()

	return json.Unmarshal(val, decoded)
}

// Valid reports whether data is syntactically valid JSON.
func Valid(data []byte) bool {
	return json.Valid(data)
}

// Marshal encodes val, falling back to encoding/json if goccy panics.
func Marshal(val any) (encoded []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Warnf("goccy failed to encode, falling back to stdlib: %v", r)

			encoded, err = jsonstd.Marshal(val)
		}
	}()

	return json.Marshal(val)
}

// MarshalIndent is Marshal with indentation.
func MarshalIndent(val any, prefix, indent string) (encoded []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Warnf("goccy failed to encode, falling back to stdlib: %v", r)

			encoded, err = jsonstd.MarshalIndent(val, prefix, indent)
		}
	}()

	return json.MarshalIndent(val, prefix, indent)
}
