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

// Package autoload completes an environment after the primary fetch: it
// resolves submodel references and semantic ids that are not resident yet and
// downloads shell thumbnails.
package autoload

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/metrics"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/fetch"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/record"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxParallelOps is used when Options.MaxParallelOps is not positive.
const DefaultMaxParallelOps = 4

type Options struct {
	// MaxParallelOps bounds the number of concurrent GETs.
	MaxParallelOps int
}

// Report counts what one auto-load step did. Failures are logged, never
// returned.
type Report struct {
	Requested int `json:"requested"`
	Loaded    int `json:"loaded"`
	Stubbed   int `json:"stubbed"`
	Failed    int `json:"failed"`
}

// ThumbnailSink receives downloaded thumbnails. Calls are serialised.
type ThumbnailSink interface {
	AddThumbnail(shellID string, data []byte, contentType string) error
}

type Orchestrator struct {
	fetcher *fetch.Fetcher
	opts    Options
	log     *zap.SugaredLogger
}

func New(fetcher *fetch.Fetcher, opts Options, log *zap.SugaredLogger) *Orchestrator {
	if opts.MaxParallelOps <= 0 {
		opts.MaxParallelOps = DefaultMaxParallelOps
	}

	return &Orchestrator{
		fetcher: fetcher,
		opts:    opts,
		log:     logger.OrNop(log),
	}
}

// target is one identifiable to resolve. location is nil when no request URI
// could be built for id.
type target struct {
	id       string
	location *url.URL
}

// Submodels resolves the submodel references of all shells that point at
// submodels not yet in env. With rec.AutoLoadOnDemand only id stubs are
// added. The returned error is non-nil only when ctx ended.
func (o *Orchestrator) Submodels(ctx context.Context, base *url.URL, env *aas.Environment, rec *record.ConnectionRecord) (Report, error) {
	refs := env.FindMissingSubmodelReferences()

	targets := make([]target, 0, len(refs))
	for i := range refs {
		targets = append(targets, target{
			id:       refs[i].Keys[0].Value,
			location: uri.BuildForSubmodelRef(base, &refs[i], rec.EncryptIDs),
		})
	}

	return o.resolve(ctx, aas.KindSubmodel, targets, env, rec.AutoLoadOnDemand)
}

// ConceptDescriptions resolves the semantic ids of resident submodels and
// their elements that have no concept description in env.
func (o *Orchestrator) ConceptDescriptions(ctx context.Context, base *url.URL, env *aas.Environment, rec *record.ConnectionRecord) (Report, error) {
	ids, errs := env.FindMissingConceptDescriptionIDs()
	for _, err := range errs {
		metrics.IncErrorCount(metrics.ComponentAutoLoad, syncerr.CategoryParse.String())
		o.log.Errorw("Scanning submodel elements for semantic ids", "error", syncerr.NewParseError("", err))
	}

	targets := make([]target, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, target{
			id:       id,
			location: uri.BuildForConceptDescription(base, id, rec.EncryptIDs),
		})
	}

	return o.resolve(ctx, aas.KindConceptDescription, targets, env, rec.AutoLoadOnDemand)
}

func (o *Orchestrator) resolve(ctx context.Context, kind aas.Kind, targets []target, env *aas.Environment, onDemand bool) (Report, error) {
	report := Report{Requested: len(targets)}

	if len(targets) == 0 {
		return report, nil
	}

	if onDemand {
		for _, t := range targets {
			if err := env.AddStub(kind, t.id); err != nil {
				o.log.Warnw("Adding stub", "kind", kind, "id", t.id, "error", err)
				report.Failed++

				continue
			}

			report.Stubbed++
		}

		metrics.IncItems(kind.String(), metrics.StateStub, report.Stubbed)
		o.log.Debugw("Added stubs", "kind", kind, "count", report.Stubbed)

		return report, nil
	}

	var mu sync.Mutex

	o.fanOut(ctx, len(targets), func(i int) {
		t := targets[i]

		if t.location == nil {
			o.fail(&mu, &report, "Building auto-load location", syncerr.Configurationf("no location for %s %q", kind, t.id), kind, t.id)

			return
		}

		item, err := o.fetcher.FetchItem(ctx, t.location.String(), kind)
		if err != nil {
			if ctx.Err() != nil {
				mu.Lock()
				report.Failed++
				mu.Unlock()

				return
			}

			o.fail(&mu, &report, "Auto-loading "+kind.String(), err, kind, t.id)

			return
		}

		mu.Lock()
		defer mu.Unlock()

		if item == nil {
			// parse failure, logged by the fetcher
			report.Failed++

			return
		}

		if err := env.Add(item, nil); err != nil {
			o.log.Warnw("Discarding auto-loaded identifiable", "kind", kind, "id", t.id, "error", err)
			report.Failed++

			return
		}

		report.Loaded++
	})

	metrics.IncItems(kind.String(), metrics.StateFull, report.Loaded)
	o.log.Debugw("Auto-load finished", "kind", kind, "requested", report.Requested,
		"loaded", report.Loaded, "failed", report.Failed)

	return report, ctx.Err()
}

// Thumbnails downloads the default thumbnail of every fully loaded shell.
// Shells without thumbnail (404) are not counted as failures.
func (o *Orchestrator) Thumbnails(ctx context.Context, base *url.URL, env *aas.Environment, rec *record.ConnectionRecord, sink ThumbnailSink) (Report, error) {
	shells := env.Shells.Items()
	report := Report{Requested: len(shells)}

	if len(shells) == 0 || sink == nil {
		return report, nil
	}

	var mu sync.Mutex

	o.fanOut(ctx, len(shells), func(i int) {
		id := shells[i].GetID()

		location := uri.BuildForShellThumbnail(base, id, rec.EncryptIDs)
		if location == nil {
			o.fail(&mu, &report, "Building thumbnail location", syncerr.Configurationf("no location for shell %q", id), aas.KindShell, id)

			return
		}

		resp, err := o.fetcher.FetchRaw(ctx, location.String(), "thumbnail")

		switch {
		case err != nil && ctx.Err() != nil:
			mu.Lock()
			report.Failed++
			mu.Unlock()

			return
		case err != nil && syncerr.StatusCode(err) == http.StatusNotFound:
			o.log.Debugw("Shell has no thumbnail", "id", id)

			return
		case err != nil:
			o.fail(&mu, &report, "Auto-loading thumbnail", err, aas.KindShell, id)

			return
		}

		mu.Lock()
		defer mu.Unlock()

		if err := sink.AddThumbnail(id, resp.Body, resp.ContentType); err != nil {
			metrics.IncErrorCount(metrics.ComponentAutoLoad, "sink")
			o.log.Errorw("Managing auto-loaded thumbnail", "id", id, "error", err)
			report.Failed++

			return
		}

		report.Loaded++
	})

	return report, ctx.Err()
}

// fanOut runs work(0..n-1) with at most MaxParallelOps calls in flight. It
// stops scheduling once ctx is done and returns after all started calls
// have returned.
func (o *Orchestrator) fanOut(ctx context.Context, n int, work func(i int)) {
	var g errgroup.Group

	g.SetLimit(o.opts.MaxParallelOps)

	for i := range n {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			work(i)

			return nil
		})
	}

	_ = g.Wait()
}

func (o *Orchestrator) fail(mu *sync.Mutex, report *Report, msg string, err error, kind aas.Kind, id string) {
	category, _ := syncerr.CategoryOf(err)
	metrics.IncErrorCount(metrics.ComponentAutoLoad, category.String())

	mu.Lock()
	defer mu.Unlock()

	report.Failed++
	o.log.Errorw(msg, "kind", kind, "id", id, "error", err)
}
