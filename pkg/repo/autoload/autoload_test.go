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

package autoload_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/h2non/gock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/autoload"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/fetch"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/mocks"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/record"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
	"github.com/united-manufacturing-hub/aas-sync/pkg/safejson"
)

type recordingSink struct {
	mu     sync.Mutex
	stored map[string]string
}

func (s *recordingSink) AddThumbnail(shellID string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stored[shellID] = contentType + ":" + string(data)

	return nil
}

// countingGetter serves every submodel it is asked for and records how many
// requests were in flight at once.
type countingGetter struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (g *countingGetter) Get(ctx context.Context, location string) (*httpclient.Response, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)

	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	select {
	case <-time.After(20 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	id, err := uri.DecodeID(location[strings.LastIndex(location, "/")+1:])
	if err != nil {
		return nil, err
	}

	body, err := safejson.Marshal(mocks.Submodel(id))
	if err != nil {
		return nil, err
	}

	return &httpclient.Response{Body: body, StatusCode: http.StatusOK, ContentType: "application/json"}, nil
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx          context.Context
		base         *url.URL
		env          *aas.Environment
		rec          *record.ConnectionRecord
		logs         *observer.ObservedLogs
		orchestrator *autoload.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		env = aas.NewEnvironment()

		var err error
		base, err = url.Parse(mocks.BaseAddress)
		Expect(err).NotTo(HaveOccurred())

		rec = record.New()
		rec.BaseAddress = mocks.BaseAddress
		rec.AutoLoadOnDemand = false

		var core zapcore.Core
		core, logs = observer.New(zapcore.DebugLevel)
		log := zap.New(core).Sugar()

		fetcher := fetch.New(&httpclient.Client{}, nil, log)
		orchestrator = autoload.New(fetcher, autoload.Options{MaxParallelOps: 4}, log)
	})

	errorLogs := func() int {
		return logs.FilterLevelExact(zapcore.ErrorLevel).Len()
	}

	addShellReferencing := func(id string, submodelIDs ...string) {
		refs := make([]aas.Reference, 0, len(submodelIDs))
		for _, sm := range submodelIDs {
			refs = append(refs, aas.NewSubmodelRef(sm))
		}

		Expect(env.Add(&aas.Shell{ID: id, Submodels: refs}, nil)).To(Succeed())
	}

	Describe("Submodels", func() {
		var ids []string

		BeforeEach(func() {
			ids = nil
			for i := range 10 {
				ids = append(ids, fmt.Sprintf("https://example.com/ids/sm/%d", i))
			}

			addShellReferencing("aas-1", ids...)
		})

		It("loads what it can and logs each failure once", func() {
			for i, id := range ids {
				if i%3 == 1 {
					mocks.MockStatus("submodels", id, http.StatusNotFound)
				} else {
					mocks.MockItem("submodels", id, mocks.Submodel(id))
				}
			}

			report, err := orchestrator.Submodels(ctx, base, env, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(report).To(Equal(autoload.Report{Requested: 10, Loaded: 7, Failed: 3}))
			Expect(env.Count(aas.KindSubmodel)).To(Equal(7))
			Expect(errorLogs()).To(Equal(3))
			Expect(gock.IsDone()).To(BeTrue())
		})

		It("keeps at most MaxParallelOps requests in flight", func() {
			getter := &countingGetter{}
			bounded := autoload.New(fetch.New(getter, nil, zap.NewNop().Sugar()), autoload.Options{MaxParallelOps: 2}, zap.NewNop().Sugar())

			report, err := bounded.Submodels(ctx, base, env, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Loaded).To(Equal(10))
			Expect(getter.peak.Load()).To(BeNumerically("<=", 2))
			Expect(getter.peak.Load()).To(BeNumerically(">=", 1))
		})

		It("adds stubs without requests when loading on demand", func() {
			rec.AutoLoadOnDemand = true

			report, err := orchestrator.Submodels(ctx, base, env, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Stubbed).To(Equal(10))
			Expect(env.Submodels.StubCount()).To(Equal(10))
			Expect(env.Submodels.IDs()).To(Equal(ids))

			again, err := orchestrator.Submodels(ctx, base, env, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Requested).To(BeZero())
			Expect(env.Count(aas.KindSubmodel)).To(Equal(10))
		})

		It("only requests submodels that are not resident", func() {
			for _, id := range ids[1:] {
				Expect(env.Add(&aas.Submodel{ID: id}, nil)).To(Succeed())
			}

			mocks.MockItem("submodels", ids[0], mocks.Submodel(ids[0]))

			report, err := orchestrator.Submodels(ctx, base, env, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Requested).To(Equal(1))
			Expect(report.Loaded).To(Equal(1))
		})

		It("stops on a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			report, err := orchestrator.Submodels(cancelled, base, env, rec)
			Expect(err).To(MatchError(context.Canceled))
			Expect(report.Loaded).To(BeZero())
			Expect(errorLogs()).To(BeZero())
		})
	})

	Describe("ConceptDescriptions", func() {
		It("resolves semantic ids and skips unparsable descriptions", func() {
			Expect(env.Add(&aas.Submodel{
				ID: "sm-1",
				SubmodelElements: []aas.SubmodelElement{
					{ModelType: "Property", SemanticID: &aas.Reference{Keys: []aas.Key{{Type: aas.KeyTypeGlobalReference, Value: "cd-1"}}}},
					{ModelType: "Property", SemanticID: &aas.Reference{Keys: []aas.Key{{Type: aas.KeyTypeGlobalReference, Value: "cd-2"}}}},
				},
			}, nil)).To(Succeed())

			mocks.MockItem("concept-descriptions", "cd-1", mocks.ConceptDescription("cd-1"))
			mocks.MockItem("concept-descriptions", "cd-2", map[string]any{"modelType": "ConceptDescription"})

			report, err := orchestrator.ConceptDescriptions(ctx, base, env, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(report).To(Equal(autoload.Report{Requested: 2, Loaded: 1, Failed: 1}))
			Expect(env.ConceptDescriptions.IDs()).To(Equal([]string{"cd-1"}))
			Expect(errorLogs()).To(Equal(1))
		})
	})

	Describe("Thumbnails", func() {
		It("stores thumbnails and ignores shells without one", func() {
			addShellReferencing("aas-1")
			addShellReferencing("aas-2")
			Expect(env.AddStub(aas.KindShell, "aas-3")).To(Succeed())

			mocks.MockThumbnail("aas-1", "image/png", []byte("png"))
			mocks.MockJSON(mocks.Path("shells", "aas-2")+"/asset-information/thumbnail", http.StatusNotFound, map[string]any{})

			sink := &recordingSink{stored: map[string]string{}}

			report, err := orchestrator.Thumbnails(ctx, base, env, rec, sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(report).To(Equal(autoload.Report{Requested: 2, Loaded: 1}))
			Expect(sink.stored).To(Equal(map[string]string{"aas-1": "image/png:png"}))
			Expect(errorLogs()).To(BeZero())
		})

		It("counts other failures", func() {
			addShellReferencing("aas-1")

			mocks.MockJSON(mocks.Path("shells", "aas-1")+"/asset-information/thumbnail", http.StatusInternalServerError, map[string]any{})

			report, err := orchestrator.Thumbnails(ctx, base, env, rec, &recordingSink{stored: map[string]string{}})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Failed).To(Equal(1))
			Expect(errorLogs()).To(Equal(1))
		})
	})
})
