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

package fetch

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/united-manufacturing-hub/aas-sync/pkg/safejson"
)

// ErrEnvelopeNotObject is returned for list bodies that are not JSON objects.
var ErrEnvelopeNotObject = errors.New("list response is not a JSON object")

// Envelope is the paged list response {"result": [...], "paging_metadata": {"cursor": "..."}}.
// Absent and null fields are told apart.
type Envelope struct {
	items []safejson.RawMessage

	resultPresent bool
	resultNull    bool

	cursor        string
	cursorPresent bool
}

// HasResult reports whether the "result" member exists (null included).
func (e *Envelope) HasResult() bool { return e.resultPresent }

// ResultIsNull reports an explicit "result": null.
func (e *Envelope) ResultIsNull() bool { return e.resultNull }

// Items returns the raw result elements in server order.
func (e *Envelope) Items() []safejson.RawMessage { return e.items }

// Cursor returns the continuation token. ok is false when the server sent
// none, which means this was the last page.
func (e *Envelope) Cursor() (cursor string, ok bool) { return e.cursor, e.cursorPresent }

func isNull(raw safejson.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ParseEnvelope decodes a list response body. A "result" that is present but
// not an array is an error; a missing one yields an empty envelope.
func ParseEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrEnvelopeNotObject
	}

	var members map[string]safejson.RawMessage
	if err := safejson.Unmarshal(trimmed, &members); err != nil {
		return nil, fmt.Errorf("decode list envelope: %w", err)
	}

	env := &Envelope{}

	if raw, ok := members["result"]; ok {
		env.resultPresent = true

		if isNull(raw) {
			env.resultNull = true
		} else if err := safejson.Unmarshal(raw, &env.items); err != nil {
			return nil, fmt.Errorf("decode \"result\": %w", err)
		}
	}

	if raw, ok := members["paging_metadata"]; ok && !isNull(raw) {
		var paging map[string]safejson.RawMessage
		if err := safejson.Unmarshal(raw, &paging); err != nil {
			return nil, fmt.Errorf("decode \"paging_metadata\": %w", err)
		}

		if rawCursor, ok := paging["cursor"]; ok && !isNull(rawCursor) {
			env.cursor, env.cursorPresent = cursorText(rawCursor), true
		}
	}

	return env, nil
}

// cursorText returns string cursors unquoted and any other JSON value as
// its literal text. The value is otherwise left untouched.
func cursorText(raw safejson.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := safejson.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	return string(trimmed)
}
