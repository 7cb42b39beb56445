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

// Package session runs one synchronisation of an environment from a
// repository location.
//
// A Session moves through
//
//	idle -> fetching -> [autoloading_submodels] -> [autoloading_concept_descriptions]
//	     -> [autoloading_thumbnails] -> pruning -> committed
//
// and ends in failed on configuration errors, on a transport error of the
// primary fetch or when its context is cancelled. Nothing is observable
// before the commit; a failed run yields no result at all.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/metrics"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/autoload"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/fetch"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/record"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
	"go.uber.org/zap"
)

const (
	StateIdle                           = "idle"
	StateFetching                       = "fetching"
	StateAutoLoadingSubmodels           = "autoloading_submodels"
	StateAutoLoadingConceptDescriptions = "autoloading_concept_descriptions"
	StateAutoLoadingThumbnails          = "autoloading_thumbnails"
	StatePruning                        = "pruning"
	StateCommitted                      = "committed"
	StateFailed                         = "failed"
)

const (
	EventFetch                       = "fetch"
	EventAutoLoadSubmodels           = "autoload_submodels"
	EventAutoLoadConceptDescriptions = "autoload_concept_descriptions"
	EventAutoLoadThumbnails          = "autoload_thumbnails"
	EventPrune                       = "prune"
	EventCommit                      = "commit"
	EventFail                        = "fail"
)

// Values of the sessions_total result label.
const (
	sessionResultCommitted = "committed"
	sessionResultFailed    = "failed"
	sessionResultCancelled = "cancelled"
)

// ErrSessionAlreadyRun is returned by the second call to Run.
var ErrSessionAlreadyRun = errors.New("session has already run")

// ErrEmptyThumbnail is returned for a thumbnail without data.
var ErrEmptyThumbnail = errors.New("thumbnail is empty")

// Dependencies are the collaborators of a session.
type Dependencies struct {
	Client  fetch.Getter
	Decoder aas.Decoder
	// MaxParallelOps bounds the auto-load fan-out.
	MaxParallelOps int
	Logger         *zap.SugaredLogger
}

// Thumbnail is a downloaded shell thumbnail.
type Thumbnail struct {
	Data        []byte
	ContentType string
}

// Reports collects the counters of one run. Auto-load reports are nil when
// the step was disabled.
type Reports struct {
	Primary             fetch.ListResult `json:"primary"`
	Submodels           *autoload.Report `json:"submodels,omitempty"`
	ConceptDescriptions *autoload.Report `json:"conceptDescriptions,omitempty"`
	Thumbnails          *autoload.Report `json:"thumbnails,omitempty"`
}

// Result is handed out once, at commit.
type Result struct {
	SessionID   string
	Location    string
	BaseURI     *url.URL
	Environment *aas.Environment
	Context     FetchContext
	Thumbnails  map[string]Thumbnail
	Reports     Reports
}

// Container receives a committed result.
type Container interface {
	SetBaseURI(base *url.URL)
	SetEnvironment(env *aas.Environment)
	SetContext(fc FetchContext)
	AddThumbnail(shellID string, data []byte, contentType string) error
}

// Commit pushes the result into c. Thumbnails are added in id order. The
// result is checked before c is touched, so a rejected result leaves c as it
// was.
func (r *Result) Commit(c Container) error {
	if r == nil || c == nil {
		return errors.New("nothing to commit")
	}

	ids := make([]string, 0, len(r.Thumbnails))
	for id, t := range r.Thumbnails {
		if id == "" {
			return fmt.Errorf("commit thumbnail: %w", aas.ErrEmptyID)
		}

		if len(t.Data) == 0 {
			return fmt.Errorf("commit thumbnail of %q: %w", id, ErrEmptyThumbnail)
		}

		ids = append(ids, id)
	}

	sort.Strings(ids)

	c.SetBaseURI(r.BaseURI)
	c.SetEnvironment(r.Environment)
	c.SetContext(r.Context)

	for _, id := range ids {
		t := r.Thumbnails[id]
		if err := c.AddThumbnail(id, t.Data, t.ContentType); err != nil {
			return fmt.Errorf("commit thumbnail of %q: %w", id, err)
		}
	}

	return nil
}

// Session is one synchronisation run. Create one per run with New.
type Session struct {
	id         string
	rec        *record.ConnectionRecord
	pageOffset int

	fetcher    *fetch.Fetcher
	autoloader *autoload.Orchestrator
	machine    *fsm.FSM
	ran        atomic.Bool
	log        *zap.SugaredLogger
}

// New creates an idle session working on a copy of rec.
func New(rec *record.ConnectionRecord, deps Dependencies) *Session {
	id := uuid.NewString()
	log := logger.OrNop(deps.Logger).With("session_id", id)

	if rec == nil {
		rec = record.New()
	}

	fetcher := fetch.New(deps.Client, deps.Decoder, log.Named(logger.ComponentFetcher))

	s := &Session{
		id:         id,
		rec:        rec.Clone(),
		fetcher:    fetcher,
		autoloader: autoload.New(fetcher, autoload.Options{MaxParallelOps: deps.MaxParallelOps}, log.Named(logger.ComponentAutoLoad)),
		log:        log,
	}

	active := []string{StateFetching, StateAutoLoadingSubmodels, StateAutoLoadingConceptDescriptions, StateAutoLoadingThumbnails}

	s.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: EventFetch, Src: []string{StateIdle}, Dst: StateFetching},
			{Name: EventAutoLoadSubmodels, Src: []string{StateFetching}, Dst: StateAutoLoadingSubmodels},
			{Name: EventAutoLoadConceptDescriptions, Src: []string{StateFetching, StateAutoLoadingSubmodels}, Dst: StateAutoLoadingConceptDescriptions},
			{Name: EventAutoLoadThumbnails, Src: active[:3], Dst: StateAutoLoadingThumbnails},
			{Name: EventPrune, Src: active, Dst: StatePruning},
			{Name: EventCommit, Src: []string{StatePruning}, Dst: StateCommitted},
			{Name: EventFail, Src: append([]string{StateIdle, StatePruning}, active...), Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.Debugf("Session %s: %s -> %s", s.id, e.Src, e.Dst)
			},
		},
	)

	return s
}

// NewFollowUp creates the session loading the page after prev. It returns
// the location to run it with; ok is false on the last page.
func NewFollowUp(prev FetchContext, deps Dependencies) (s *Session, location string, ok bool, err error) {
	location, err = prev.NextLocation()
	if err != nil || location == "" {
		return nil, "", false, err
	}

	s = New(prev.Record, deps)
	s.pageOffset = prev.NextPageOffset()

	return s, location, true, nil
}

// ID identifies the session in logs and error reports.
func (s *Session) ID() string { return s.id }

// State returns the current state name.
func (s *Session) State() string { return s.machine.Current() }

// Record returns the session's copy of the connection record.
func (s *Session) Record() *record.ConnectionRecord { return s.rec }

// Run performs the synchronisation. It can be called once.
func (s *Session) Run(ctx context.Context, location string) (*Result, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return nil, ErrSessionAlreadyRun
	}

	result, err := s.run(ctx, location)
	if err != nil {
		_ = s.transition(ctx, EventFail)

		outcome := sessionResultFailed
		if ctx.Err() != nil {
			outcome = sessionResultCancelled
		}

		metrics.IncSessions(outcome)
		s.log.Infow("Session failed", "location", location, "state", s.State(), "error", err)

		return nil, err
	}

	metrics.IncSessions(sessionResultCommitted)
	s.log.Infow("Session committed", "location", location, "counts", result.Environment.Counts().String(),
		"has_more", result.Context.HasMore())

	return result, nil
}

func (s *Session) run(ctx context.Context, location string) (*Result, error) {
	base := uri.GetBaseURI(location)
	if base == nil {
		return nil, syncerr.Configurationf("cannot derive a base URI from %q", location)
	}

	kind := uri.Match(location)
	if kind == uri.LocationUnknown {
		return nil, syncerr.Configurationf("location %q does not point at a known resource", location)
	}

	if err := s.transition(ctx, EventFetch); err != nil {
		return nil, err
	}

	env := aas.NewEnvironment()

	primary, err := s.fetchPrimary(ctx, location, kind, env)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reports := Reports{Primary: primary}
	thumbs := &thumbnailCollector{thumbnails: make(map[string]Thumbnail)}

	steps := []struct {
		enabled bool
		event   string
		run     func() (autoload.Report, error)
		report  **autoload.Report
	}{
		{s.rec.AutoLoadSubmodels, EventAutoLoadSubmodels, func() (autoload.Report, error) {
			return s.autoloader.Submodels(ctx, base, env, s.rec)
		}, &reports.Submodels},
		{s.rec.AutoLoadConceptDescriptions, EventAutoLoadConceptDescriptions, func() (autoload.Report, error) {
			return s.autoloader.ConceptDescriptions(ctx, base, env, s.rec)
		}, &reports.ConceptDescriptions},
		{s.rec.AutoLoadThumbnails, EventAutoLoadThumbnails, func() (autoload.Report, error) {
			return s.autoloader.Thumbnails(ctx, base, env, s.rec, thumbs)
		}, &reports.Thumbnails},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}

		if err := s.transition(ctx, step.event); err != nil {
			return nil, err
		}

		report, err := step.run()
		if err != nil {
			return nil, err
		}

		*step.report = &report
	}

	if err := s.transition(ctx, EventPrune); err != nil {
		return nil, err
	}

	env.Prune()

	if err := s.transition(ctx, EventCommit); err != nil {
		return nil, err
	}

	return &Result{
		SessionID:   s.id,
		Location:    location,
		BaseURI:     base,
		Environment: env,
		Context: FetchContext{
			Record:     s.rec,
			Cursor:     primary.Cursor,
			BaseURI:    base.String(),
			PageOffset: s.pageOffset,
		},
		Thumbnails: thumbs.thumbnails,
		Reports:    reports,
	}, nil
}

// fetchPrimary runs the one branch that matches the location shape.
func (s *Session) fetchPrimary(ctx context.Context, location string, kind uri.LocationKind, env *aas.Environment) (fetch.ListResult, error) {
	var (
		result fetch.ListResult
		added  bool
		err    error
	)

	switch kind {
	case uri.LocationAllShells:
		opts := fetch.ListOptions{PageLimit: s.rec.PageLimit}
		if s.pageOffset == 0 {
			opts.Skip = s.rec.PageSkip
		}

		result, err = s.fetcher.FetchList(ctx, location, aas.KindShell, env, opts)
	case uri.LocationQuery:
		result, err = s.fetcher.FetchList(ctx, location, aas.KindUnknown, env, fetch.ListOptions{})
	case uri.LocationShell:
		added, err = s.fetcher.FetchSingle(ctx, location, aas.KindShell, env)
	case uri.LocationSubmodel:
		added, err = s.fetcher.FetchSingle(ctx, location, aas.KindSubmodel, env)
	case uri.LocationConceptDescription:
		added, err = s.fetcher.FetchSingle(ctx, location, aas.KindConceptDescription, env)
	default:
		return result, syncerr.Configurationf("unsupported location kind %s", kind)
	}

	if added {
		result.Added = 1
	}

	return result, err
}

// transition fires event. The machine has to follow the run even when ctx is
// already cancelled, so the event itself is sent without cancellation.
func (s *Session) transition(ctx context.Context, event string) error {
	if err := s.machine.Event(context.WithoutCancel(ctx), event); err != nil {
		return fmt.Errorf("session %s: %w", s.id, err)
	}

	return nil
}

type thumbnailCollector struct {
	mu         sync.Mutex
	thumbnails map[string]Thumbnail
}

func (c *thumbnailCollector) AddThumbnail(shellID string, data []byte, contentType string) error {
	if shellID == "" {
		return aas.ErrEmptyID
	}

	if len(data) == 0 {
		return fmt.Errorf("shell %q: %w", shellID, ErrEmptyThumbnail)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.thumbnails[shellID] = Thumbnail{Data: data, ContentType: contentType}

	return nil
}
