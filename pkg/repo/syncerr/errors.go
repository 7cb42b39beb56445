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

// Package syncerr classifies the errors of a repository sync run.
package syncerr

import (
	"errors"
	"fmt"
)

// Category indicates how a sync run reacts to an error.
type Category int

const (
	// CategoryConfiguration is a malformed or absent base URI, an empty
	// required identifier or an unknown location shape. It fails the run
	// before any request is sent.
	CategoryConfiguration Category = iota

	// CategoryTransport is a network failure, timeout or non-2xx response.
	// It fails the run for the primary fetch and is skipped per item during
	// auto-load.
	CategoryTransport

	// CategoryParse is malformed JSON or an item that does not map to the
	// model. Only the affected item is skipped.
	CategoryParse
)

func (c Category) String() string {
	switch c {
	case CategoryConfiguration:
		return "configuration"
	case CategoryTransport:
		return "transport"
	case CategoryParse:
		return "parse"
	default:
		return "unknown"
	}
}

// CategorizedError is a wrapper that includes the underlying error plus a Category.
type CategorizedError struct {
	Err      error
	Category Category
	// URL is the request URL for transport and parse errors, if known.
	URL string
	// StatusCode is the HTTP status of a transport error, 0 without response.
	StatusCode int
}

func (ce *CategorizedError) Error() string {
	switch {
	case ce.StatusCode != 0:
		return fmt.Sprintf("%s error (GET %s, status %d): %v", ce.Category, ce.URL, ce.StatusCode, ce.Err)
	case ce.URL != "":
		return fmt.Sprintf("%s error (GET %s): %v", ce.Category, ce.URL, ce.Err)
	default:
		return fmt.Sprintf("%s error: %v", ce.Category, ce.Err)
	}
}

// Unwrap returns the underlying wrapped error.
func (ce *CategorizedError) Unwrap() error {
	return ce.Err
}

// NewConfigurationError wraps err as CategoryConfiguration.
func NewConfigurationError(err error) error {
	return &CategorizedError{Err: err, Category: CategoryConfiguration}
}

// Configurationf formats a configuration error.
func Configurationf(format string, args ...interface{}) error {
	return NewConfigurationError(fmt.Errorf(format, args...))
}

// NewTransportError wraps err as CategoryTransport.
func NewTransportError(url string, statusCode int, err error) error {
	return &CategorizedError{Err: err, Category: CategoryTransport, URL: url, StatusCode: statusCode}
}

// NewParseError wraps err as CategoryParse.
func NewParseError(url string, err error) error {
	return &CategorizedError{Err: err, Category: CategoryParse, URL: url}
}

// CategoryOf returns the category of err. Uncategorized errors count as
// transport errors, the category that is never silently swallowed on the
// primary path.
func CategoryOf(err error) (Category, bool) {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Category, true
	}

	return CategoryTransport, false
}

// StatusCode returns the HTTP status of a transport error, or 0.
func StatusCode(err error) int {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}

	return 0
}

func is(err error, category Category) bool {
	var ce *CategorizedError

	return errors.As(err, &ce) && ce.Category == category
}

// IsConfigurationError is a convenience checker for CategoryConfiguration.
func IsConfigurationError(err error) bool { return is(err, CategoryConfiguration) }

// IsTransportError is a convenience checker for CategoryTransport.
func IsTransportError(err error) bool { return is(err, CategoryTransport) }

// IsParseError is a convenience checker for CategoryParse.
func IsParseError(err error) bool { return is(err, CategoryParse) }
