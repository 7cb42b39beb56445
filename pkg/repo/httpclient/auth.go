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

package httpclient

import (
	"errors"
	"net/http"
)

// RequestDecorator attaches credentials or other headers to an outgoing
// request. Identity providers live outside this module and plug in here.
type RequestDecorator interface {
	Decorate(req *http.Request) error
}

// DecoratorFunc adapts a function to RequestDecorator.
type DecoratorFunc func(req *http.Request) error

func (f DecoratorFunc) Decorate(req *http.Request) error { return f(req) }

// ErrEmptyToken is returned by BearerToken when no token is configured.
var ErrEmptyToken = errors.New("bearer token is empty")

// BearerToken sets "Authorization: Bearer <token>".
type BearerToken string

func (t BearerToken) Decorate(req *http.Request) error {
	if t == "" {
		return ErrEmptyToken
	}

	req.Header.Set("Authorization", "Bearer "+string(t))

	return nil
}

// StaticHeaders sets fixed headers on every request.
type StaticHeaders map[string]string

func (h StaticHeaders) Decorate(req *http.Request) error {
	for k, v := range h {
		req.Header.Set(k, v)
	}

	return nil
}
