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

package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/h2non/gock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/mocks"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
)

var _ = Describe("Client", func() {
	var (
		client *httpclient.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		client = &httpclient.Client{}
		ctx = context.Background()
	})

	It("returns the body of a 2xx response", func() {
		mocks.MockShellPage("", "c1", mocks.Shell("aas-1"))

		resp, err := client.Get(ctx, mocks.BaseAddress+"/shells?Limit=6")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.ContentType).To(ContainSubstring("application/json"))
		Expect(string(resp.Body)).To(ContainSubstring(`"cursor":"c1"`))
		Expect(gock.IsDone()).To(BeTrue())
	})

	It("records the request latency", func() {
		mocks.MockShellPage("", "")

		_, err := client.Get(ctx, mocks.BaseAddress+"/shells")
		Expect(err).NotTo(HaveOccurred())
		Expect(httpclient.GetRequestLatency().Samples).To(BeNumerically(">=", 1))
	})

	It("turns error statuses into transport errors", func() {
		mocks.MockStatus("submodels", "sm-1", http.StatusNotFound)

		_, err := client.Get(ctx, mocks.Host+mocks.Path("submodels", "sm-1"))
		Expect(syncerr.IsTransportError(err)).To(BeTrue())
		Expect(syncerr.StatusCode(err)).To(Equal(http.StatusNotFound))
	})

	It("reports failed connections as transport errors without status", func() {
		mocks.MockShellPage("", "")

		_, err := client.Get(ctx, mocks.BaseAddress+"/submodels")
		Expect(syncerr.IsTransportError(err)).To(BeTrue())
		Expect(syncerr.StatusCode(err)).To(Equal(0))
	})

	It("rejects malformed URIs as configuration errors", func() {
		_, err := client.Get(ctx, "https://repo.example.com/\x7f")
		Expect(syncerr.IsConfigurationError(err)).To(BeTrue())
	})

	Context("with decorators", func() {
		It("sends the bearer token", func() {
			gock.New(mocks.Host).
				Get("^/api/v3/shells$").
				MatchHeader("Authorization", "^Bearer secret$").
				MatchHeader("Accept", "application/json").
				Reply(http.StatusOK).
				JSON(mocks.Envelope(""))

			client.Decorators = []httpclient.RequestDecorator{httpclient.BearerToken("secret")}

			_, err := client.Get(ctx, mocks.BaseAddress+"/shells")
			Expect(err).NotTo(HaveOccurred())
		})

		It("applies static headers", func() {
			gock.New(mocks.Host).
				Get("^/api/v3/shells$").
				MatchHeader("X-Tenant", "^plant-1$").
				Reply(http.StatusOK).
				JSON(mocks.Envelope(""))

			client.Decorators = []httpclient.RequestDecorator{httpclient.StaticHeaders{"X-Tenant": "plant-1"}}

			_, err := client.Get(ctx, mocks.BaseAddress+"/shells")
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not send the request when a decorator fails", func() {
			mocks.MockShellPage("", "")

			client.Decorators = []httpclient.RequestDecorator{
				httpclient.DecoratorFunc(func(*http.Request) error { return errors.New("token expired") }),
			}

			_, err := client.Get(ctx, mocks.BaseAddress+"/shells")
			Expect(syncerr.IsConfigurationError(err)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("token expired")))
			Expect(gock.IsPending()).To(BeTrue())
		})

		It("rejects an empty bearer token", func() {
			client.Decorators = []httpclient.RequestDecorator{httpclient.BearerToken("")}

			_, err := client.Get(ctx, mocks.BaseAddress+"/shells")
			Expect(err).To(MatchError(httpclient.ErrEmptyToken))
		})
	})

	It("bounds requests by the configured timeout only", func() {
		Expect(httpclient.GetClient(false).Timeout).To(BeZero())
		Expect(httpclient.GetClient(true).Timeout).To(BeZero())

		gock.New(mocks.Host).
			Get("^/api/v3/shells$").
			Reply(http.StatusOK).
			Delay(2 * time.Second).
			JSON(mocks.Envelope(""))

		client.Timeout = 50 * time.Millisecond

		start := time.Now()
		_, err := client.Get(ctx, mocks.BaseAddress+"/shells")
		Expect(syncerr.IsTransportError(err)).To(BeTrue())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("stops on a cancelled context", func() {
		mocks.MockShellPage("", "")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.Get(cancelled, mocks.BaseAddress+"/shells")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
