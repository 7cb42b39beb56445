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

// Package fetch retrieves identifiables from a repository and routes them
// into an environment.
//
// Only transport failures are returned to the caller. A body or item that
// does not parse is logged once and skipped, so one bad element never costs
// its siblings.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/metrics"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
	"github.com/united-manufacturing-hub/aas-sync/pkg/safejson"
	"go.uber.org/zap"
)

// Getter performs one GET. *httpclient.Client implements it.
type Getter interface {
	Get(ctx context.Context, uri string) (*httpclient.Response, error)
}

// Fetcher is safe for concurrent use as long as callers serialise writes to
// the target environment.
type Fetcher struct {
	client  Getter
	decoder aas.Decoder
	log     *zap.SugaredLogger
}

// New creates a Fetcher. A nil decoder selects aas.JSONDecoder.
func New(client Getter, decoder aas.Decoder, log *zap.SugaredLogger) *Fetcher {
	if decoder == nil {
		decoder = aas.JSONDecoder{}
	}

	return &Fetcher{
		client:  client,
		decoder: decoder,
		log:     logger.OrNop(log),
	}
}

// ListOptions control how one page is routed.
type ListOptions struct {
	// Skip drops the first Skip elements of the page after it was received.
	// The server has no offset parameter.
	Skip int
	// PageLimit > 0 marks the last element of the page with ShowCursorBelow.
	PageLimit int
}

// ListResult describes one routed page.
type ListResult struct {
	// Cursor continues the listing; empty on the last page.
	Cursor     string
	Added      int
	Skipped    int
	Failed     int
	Duplicates int
}

// FetchList GETs one page of a list resource and adds its elements to target
// in server order. With kind == aas.KindUnknown each element is routed by its
// "modelType", as query results can mix kinds.
func (f *Fetcher) FetchList(ctx context.Context, uri string, kind aas.Kind, target *aas.Environment, opts ListOptions) (ListResult, error) {
	var result ListResult

	resp, err := f.get(ctx, uri, kind.String())
	if err != nil {
		return result, err
	}

	envelope, err := ParseEnvelope(resp.Body)
	if err != nil {
		f.logParseError("Parsing list response", syncerr.NewParseError(uri, err), "kind", kind)

		return result, nil
	}

	if cursor, ok := envelope.Cursor(); ok {
		result.Cursor = cursor
	}

	items := envelope.Items()
	toSkip := max(0, opts.Skip)

	for i, raw := range items {
		if toSkip > 0 {
			toSkip--
			result.Skipped++

			continue
		}

		var side *aas.SideInfo
		if i == len(items)-1 && opts.PageLimit > 0 {
			side = &aas.SideInfo{ShowCursorBelow: true}
		}

		item, err := f.decode(kind, raw)
		if err != nil {
			f.logParseError("Parsing single item of list", syncerr.NewParseError(uri, err), "kind", kind, "index", i)
			result.Failed++

			continue
		}

		if err := target.Add(item, side); err != nil {
			f.logAddError(uri, item, err)
			result.Duplicates++

			continue
		}

		metrics.IncItems(item.Kind().String(), metrics.StateFull, 1)
		result.Added++
	}

	if result.Skipped > 0 {
		f.log.Debugw("Skipped list elements on the client", "url", uri, "skipped", result.Skipped)
	}

	return result, nil
}

// FetchSingle GETs a single resource whose body is the entity itself. It
// reports whether the entity was added.
func (f *Fetcher) FetchSingle(ctx context.Context, uri string, kind aas.Kind, target *aas.Environment) (bool, error) {
	item, err := f.FetchItem(ctx, uri, kind)
	if err != nil {
		return false, err
	}

	if item == nil {
		return false, nil
	}

	if err := target.Add(item, nil); err != nil {
		f.logAddError(uri, item, err)

		return false, nil
	}

	metrics.IncItems(kind.String(), metrics.StateFull, 1)

	return true, nil
}

// FetchItem GETs and decodes a single resource without adding it anywhere.
// A parse failure is logged and yields (nil, nil).
func (f *Fetcher) FetchItem(ctx context.Context, uri string, kind aas.Kind) (aas.Identifiable, error) {
	resp, err := f.get(ctx, uri, kind.String())
	if err != nil {
		return nil, err
	}

	item, err := f.decode(kind, resp.Body)
	if err != nil {
		f.logParseError("Parsing downloaded "+kind.String(), syncerr.NewParseError(uri, err), "kind", kind)

		return nil, nil
	}

	return item, nil
}

// FetchRaw GETs uri and returns the body untouched.
func (f *Fetcher) FetchRaw(ctx context.Context, uri string, label string) (*httpclient.Response, error) {
	return f.get(ctx, uri, label)
}

func (f *Fetcher) get(ctx context.Context, uri string, label string) (*httpclient.Response, error) {
	if f.client == nil {
		return nil, syncerr.Configurationf("no HTTP client configured")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := f.client.Get(ctx, uri)
	metrics.ObserveRequest(label, time.Since(start), err)

	if err != nil {
		return nil, err
	}

	return resp, nil
}

type modelTypeProbe struct {
	ModelType string `json:"modelType"`
}

func (f *Fetcher) decode(kind aas.Kind, raw []byte) (aas.Identifiable, error) {
	if kind != aas.KindUnknown {
		return f.decoder.Decode(kind, raw)
	}

	var probe modelTypeProbe
	if err := safejson.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("detect modelType: %w", err)
	}

	detected, ok := aas.KindByModelType(probe.ModelType)
	if !ok {
		return nil, fmt.Errorf("unsupported modelType %q", probe.ModelType)
	}

	return f.decoder.Decode(detected, raw)
}

func (f *Fetcher) logParseError(msg string, err error, keysAndValues ...interface{}) {
	metrics.IncErrorCount(metrics.ComponentFetcher, syncerr.CategoryParse.String())
	f.log.Errorw(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

func (f *Fetcher) logAddError(uri string, item aas.Identifiable, err error) {
	var dup *aas.DuplicateKeyError
	if errors.As(err, &dup) {
		f.log.Warnw("Skipping duplicate identifiable", "url", uri, "kind", item.Kind(), "id", item.GetID())

		return
	}

	metrics.IncErrorCount(metrics.ComponentFetcher, syncerr.CategoryParse.String())
	f.log.Errorw("Adding identifiable", "url", uri, "kind", item.Kind(), "id", item.GetID(), "error", err)
}
