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

// Package httpclient performs the GET requests of a sync run.
package httpclient

import (
	"crypto/tls"
	"net/http"
	"sync"
)

var (
	secureHTTPClient   *http.Client
	insecureHTTPClient *http.Client
	initHTTPClientOnce sync.Once
)

// GetClient returns the process-wide HTTP client. Tests intercept it with gock.
// The clients carry no timeout of their own; Client.Get bounds each request
// through its context.
func GetClient(insecureTLS bool) *http.Client {
	initHTTPClientOnce.Do(func() {
		secureTransport := &http.Transport{
			ForceAttemptHTTP2: false,
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			Proxy:             http.ProxyFromEnvironment,
		}

		secureHTTPClient = &http.Client{
			Transport: secureTransport,
		}

		insecureTransport := &http.Transport{
			ForceAttemptHTTP2: false,
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			Proxy:             http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, //nolint:gosec // opt-in for repositories with self-signed certificates
				MinVersion:         tls.VersionTLS12,
			},
		}

		insecureHTTPClient = &http.Client{
			Transport: insecureTransport,
		}
	})

	if insecureTLS {
		return insecureHTTPClient
	}

	return secureHTTPClient
}
