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

package fetch_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/fetch"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
)

var errConnectionRefused = errors.New("connection refused")

const (
	pageURI = "https://x/shells?Limit=6"
	shellA  = `{"modelType":"AssetAdministrationShell","id":"A"}`
	shellB  = `{"modelType":"AssetAdministrationShell","id":"B"}`
)

var _ = Describe("Fetcher", func() {
	var (
		ctx     context.Context
		getter  *stubGetter
		logs    *observer.ObservedLogs
		fetcher *fetch.Fetcher
		env     *aas.Environment
	)

	BeforeEach(func() {
		ctx = context.Background()
		getter = newStubGetter()

		var core zapcore.Core
		core, logs = observer.New(zapcore.DebugLevel)
		fetcher = fetch.New(getter, nil, zap.New(core).Sugar())
		env = aas.NewEnvironment()
	})

	errorLogs := func() int {
		return logs.FilterLevelExact(zapcore.ErrorLevel).Len()
	}

	Describe("FetchList", func() {
		It("adds a page in server order and marks its last element", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `,` + shellB + `], "paging_metadata": {"cursor": "c1"}}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{PageLimit: 6})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Cursor).To(Equal("c1"))
			Expect(result.Added).To(Equal(2))

			Expect(env.Shells.IDs()).To(Equal([]string{"A", "B"}))
			Expect(env.SideInfo(aas.KindShell, "A")).To(BeNil())
			Expect(env.SideInfo(aas.KindShell, "B").ShowCursorBelow).To(BeTrue())
			Expect(errorLogs()).To(BeZero())
		})

		It("produces the same environment from the same page", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `, {"id":7}, ` + shellB + `, ` + shellA + `], "paging_metadata": {"cursor": "c1"}}`

			second := aas.NewEnvironment()

			first, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{PageLimit: 6})
			Expect(err).NotTo(HaveOccurred())

			again, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, second, fetch.ListOptions{PageLimit: 6})
			Expect(err).NotTo(HaveOccurred())

			Expect(again).To(Equal(first))
			Expect(second.Counts()).To(Equal(env.Counts()))
			Expect(second.Shells.IDs()).To(Equal(env.Shells.IDs()))
			Expect(second.SideInfo(aas.KindShell, "B")).To(Equal(env.SideInfo(aas.KindShell, "B")))
		})

		It("does not mark anything without a page limit", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `]}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Cursor).To(BeEmpty())
			Expect(env.SideInfo(aas.KindShell, "A")).To(BeNil())
		})

		It("skips one bad element and logs exactly one error", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `, {"modelType":"AssetAdministrationShell","id":7}, ` + shellB + `]}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{PageLimit: 6})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Added).To(Equal(2))
			Expect(result.Failed).To(Equal(1))
			Expect(env.Shells.IDs()).To(Equal([]string{"A", "B"}))
			Expect(errorLogs()).To(Equal(1))
			Expect(logs.FilterMessage("Parsing single item of list").Len()).To(Equal(1))
		})

		It("drops the first elements on the client", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `,` + shellB + `]}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{Skip: 1, PageLimit: 6})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Skipped).To(Equal(1))
			Expect(env.Shells.IDs()).To(Equal([]string{"B"}))
			Expect(env.SideInfo(aas.KindShell, "B").ShowCursorBelow).To(BeTrue())
		})

		It("adds nothing when the skip exceeds the page", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `]}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{Skip: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Skipped).To(Equal(1))
			Expect(env.Shells.Len()).To(BeZero())
		})

		It("warns about duplicates without failing", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `,` + shellA + `]}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Duplicates).To(Equal(1))
			Expect(env.Shells.Len()).To(Equal(1))
			Expect(errorLogs()).To(BeZero())
			Expect(logs.FilterLevelExact(zapcore.WarnLevel).Len()).To(Equal(1))
		})

		It("logs a body that is not an envelope and adds nothing", func() {
			getter.bodies[pageURI] = `[` + shellA + `]`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(fetch.ListResult{}))
			Expect(errorLogs()).To(Equal(1))
		})

		It("treats a missing or null result as an empty page", func() {
			getter.bodies[pageURI] = `{"result": null}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Added).To(BeZero())
			Expect(errorLogs()).To(BeZero())
		})

		It("returns transport errors without logging them", func() {
			_, err := fetcher.FetchList(ctx, pageURI, aas.KindShell, env, fetch.ListOptions{})
			Expect(syncerr.IsTransportError(err)).To(BeTrue())
			Expect(errorLogs()).To(BeZero())
		})

		It("routes mixed query results by modelType", func() {
			getter.bodies[pageURI] = `{"result": [` + shellA + `,
				{"modelType":"Submodel","id":"sm-1"},
				{"modelType":"ConceptDescription","id":"cd-1"},
				{"modelType":"Property","idShort":"p"}]}`

			result, err := fetcher.FetchList(ctx, pageURI, aas.KindUnknown, env, fetch.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Added).To(Equal(3))
			Expect(result.Failed).To(Equal(1))
			Expect(env.Counts()).To(Equal(aas.Counts{Shells: 1, Submodels: 1, ConceptDescriptions: 1}))
		})

		It("does not send requests on a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := fetcher.FetchList(cancelled, pageURI, aas.KindShell, env, fetch.ListOptions{})
			Expect(err).To(MatchError(context.Canceled))
			Expect(getter.calls).To(BeEmpty())
		})
	})

	Describe("FetchSingle", func() {
		const smURI = "https://x/submodels/c20tMQ"

		It("adds the entity", func() {
			getter.bodies[smURI] = `{"modelType":"Submodel","id":"sm-1"}`

			added, err := fetcher.FetchSingle(ctx, smURI, aas.KindSubmodel, env)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(BeTrue())
			Expect(env.Contains(aas.KindSubmodel, "sm-1")).To(BeTrue())
		})

		It("logs an entity of the wrong kind once", func() {
			getter.bodies[smURI] = `{"modelType":"ConceptDescription","id":"cd-1"}`

			added, err := fetcher.FetchSingle(ctx, smURI, aas.KindSubmodel, env)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(BeFalse())
			Expect(env.Count(aas.KindSubmodel)).To(BeZero())
			Expect(errorLogs()).To(Equal(1))
		})

		It("returns status errors", func() {
			getter.errs[smURI] = syncerr.NewTransportError(smURI, 404, errors.New("error response code: 404 Not Found"))

			_, err := fetcher.FetchSingle(ctx, smURI, aas.KindSubmodel, env)
			Expect(syncerr.StatusCode(err)).To(Equal(404))
		})
	})

	It("fails without client", func() {
		_, err := fetch.New(nil, nil, nil).FetchRaw(ctx, pageURI, "thumbnail")
		Expect(syncerr.IsConfigurationError(err)).To(BeTrue())
	})
})
