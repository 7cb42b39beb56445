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
	"errors"
	"fmt"

	"github.com/united-manufacturing-hub/aas-sync/pkg/bimap"
)

// StubLevel says how much of a stub is known.
type StubLevel int

const (
	StubLevelNone StubLevel = iota
	// StubLevelIDOnly means only the identifier is known.
	StubLevelIDOnly
)

// SideInfo is advisory metadata attached to a list entry. It never changes
// the identity of the entry.
type SideInfo struct {
	ID        string    `json:"id"`
	IsStub    bool      `json:"isStub"`
	StubLevel StubLevel `json:"stubLevel,omitempty"`
	// ShowCursorBelow marks the last element of a page; a "load more"
	// affordance applies after it.
	ShowCursorBelow bool `json:"showCursorBelow,omitempty"`
}

var (
	// ErrEmptyID is returned when adding an entry without identifier.
	ErrEmptyID = errors.New("identifiable without id")
	// ErrAbsentList is returned when adding to a pruned (nil) list.
	ErrAbsentList = errors.New("list is absent")
)

// DuplicateKeyError is returned when an id is already present and the add
// would not resolve a stub.
type DuplicateKeyError struct {
	Kind Kind
	ID   string
	// Stub is true when the existing entry is a stub.
	Stub bool
}

func (e *DuplicateKeyError) Error() string {
	state := "full"
	if e.Stub {
		state = "stub"
	}

	return fmt.Sprintf("duplicate %s %q (existing entry is %s)", e.Kind, e.ID, state)
}

// Entry is one slot of an IdentifiableList. Item is nil for stubs.
type Entry[T Identifiable] struct {
	Item T
	Side *SideInfo
}

// IsStub reports whether the entry only carries an identifier.
func (e Entry[T]) IsStub() bool {
	return e.Side != nil && e.Side.IsStub
}

// ID returns the identifier of the entry, for stubs and full objects alike.
func (e Entry[T]) ID() string {
	if e.IsStub() {
		return e.Side.ID
	}

	return e.Item.GetID()
}

// IdentifiableList holds identifiables of one kind, at most once per id, in
// insertion order. A nil list is valid and empty.
type IdentifiableList[T Identifiable] struct {
	kind    Kind
	entries []Entry[T]
	index   *bimap.BiMap[string, int]
}

// NewList creates an empty list for kind.
func NewList[T Identifiable](kind Kind) *IdentifiableList[T] {
	return &IdentifiableList[T]{
		kind:  kind,
		index: bimap.New[string, int](),
	}
}

// Add inserts a fully loaded item. A stub with the same id is replaced in
// place; an existing full item yields a DuplicateKeyError.
func (l *IdentifiableList[T]) Add(item T, side *SideInfo) error {
	if l == nil {
		return ErrAbsentList
	}

	id := item.GetID()
	if id == "" {
		return ErrEmptyID
	}

	if side != nil {
		side.ID = id
		side.IsStub = false
		side.StubLevel = StubLevelNone
	}

	entry := Entry[T]{Item: item, Side: side}

	if slot, ok := l.index.GetByKey(id); ok {
		if !l.entries[slot].IsStub() {
			return &DuplicateKeyError{Kind: l.kind, ID: id}
		}

		l.entries[slot] = entry

		return nil
	}

	return l.appendEntry(id, entry)
}

// AddStub inserts an id-only placeholder.
func (l *IdentifiableList[T]) AddStub(id string) error {
	if l == nil {
		return ErrAbsentList
	}

	if id == "" {
		return ErrEmptyID
	}

	if slot, ok := l.index.GetByKey(id); ok {
		return &DuplicateKeyError{Kind: l.kind, ID: id, Stub: l.entries[slot].IsStub()}
	}

	return l.appendEntry(id, Entry[T]{Side: &SideInfo{ID: id, IsStub: true, StubLevel: StubLevelIDOnly}})
}

func (l *IdentifiableList[T]) appendEntry(id string, entry Entry[T]) error {
	if err := l.index.Add(id, len(l.entries)); err != nil {
		return fmt.Errorf("index %s %q: %w", l.kind, id, err)
	}

	l.entries = append(l.entries, entry)

	return nil
}

// Kind returns the kind the list was created for.
func (l *IdentifiableList[T]) Kind() Kind {
	if l == nil {
		return KindUnknown
	}

	return l.kind
}

// Len counts entries, stubs included.
func (l *IdentifiableList[T]) Len() int {
	if l == nil {
		return 0
	}

	return len(l.entries)
}

// StubCount counts the stub entries.
func (l *IdentifiableList[T]) StubCount() int {
	n := 0

	for _, e := range l.Entries() {
		if e.IsStub() {
			n++
		}
	}

	return n
}

// Contains reports whether id is present (as stub or full item).
func (l *IdentifiableList[T]) Contains(id string) bool {
	if l == nil {
		return false
	}

	_, ok := l.index.GetByKey(id)

	return ok
}

// Get returns the entry stored for id.
func (l *IdentifiableList[T]) Get(id string) (Entry[T], bool) {
	if l == nil {
		return Entry[T]{}, false
	}

	slot, ok := l.index.GetByKey(id)
	if !ok {
		return Entry[T]{}, false
	}

	return l.entries[slot], true
}

// Entries returns a copy of all entries in insertion order.
func (l *IdentifiableList[T]) Entries() []Entry[T] {
	if l == nil {
		return nil
	}

	out := make([]Entry[T], len(l.entries))
	copy(out, l.entries)

	return out
}

// Items returns the fully loaded items in insertion order.
func (l *IdentifiableList[T]) Items() []T {
	if l == nil {
		return nil
	}

	out := make([]T, 0, len(l.entries))

	for _, e := range l.entries {
		if !e.IsStub() {
			out = append(out, e.Item)
		}
	}

	return out
}

// IDs returns the identifiers of all entries in insertion order.
func (l *IdentifiableList[T]) IDs() []string {
	if l == nil {
		return nil
	}

	out := make([]string, 0, len(l.entries))

	for slot := range l.entries {
		id, _ := l.index.GetByValue(slot)
		out = append(out, id)
	}

	return out
}
