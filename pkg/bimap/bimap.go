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

// Package bimap provides a one-to-one mapping that keeps both directions in
// sync. It is not safe for concurrent use; callers serialise access.
package bimap

import "fmt"

// Side names which half of the mapping a conflict was found on.
type Side string

const (
	SideKey   Side = "key"
	SideValue Side = "value"
)

// DuplicateKeyError is returned by Add when either side is already mapped.
type DuplicateKeyError struct {
	Side Side
	Key  any
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %v", e.Side, e.Key)
}

// BiMap is a bijection between K and V.
type BiMap[K comparable, V comparable] struct {
	forward  map[K]V
	backward map[V]K
}

// New creates an empty BiMap.
func New[K comparable, V comparable]() *BiMap[K, V] {
	return &BiMap[K, V]{
		forward:  make(map[K]V),
		backward: make(map[V]K),
	}
}

// Add inserts the pair k<->v. It rejects the pair if k or v is already mapped.
func (m *BiMap[K, V]) Add(k K, v V) error {
	if _, ok := m.forward[k]; ok {
		return &DuplicateKeyError{Side: SideKey, Key: k}
	}

	if _, ok := m.backward[v]; ok {
		return &DuplicateKeyError{Side: SideValue, Key: v}
	}

	m.forward[k] = v
	m.backward[v] = k

	return nil
}

// Put inserts k<->v, removing whatever pairs previously used k or v.
func (m *BiMap[K, V]) Put(k K, v V) {
	if old, ok := m.forward[k]; ok {
		delete(m.backward, old)
	}

	if old, ok := m.backward[v]; ok {
		delete(m.forward, old)
	}

	m.forward[k] = v
	m.backward[v] = k
}

// GetByKey returns the value mapped to k.
func (m *BiMap[K, V]) GetByKey(k K) (V, bool) {
	v, ok := m.forward[k]

	return v, ok
}

// GetByValue returns the key mapped to v.
func (m *BiMap[K, V]) GetByValue(v V) (K, bool) {
	k, ok := m.backward[v]

	return k, ok
}

// DeleteByKey removes the pair that uses k. It reports whether a pair was removed.
func (m *BiMap[K, V]) DeleteByKey(k K) bool {
	v, ok := m.forward[k]
	if !ok {
		return false
	}

	delete(m.forward, k)
	delete(m.backward, v)

	return true
}

// Len returns the number of pairs.
func (m *BiMap[K, V]) Len() int {
	return len(m.forward)
}
