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

// Package container holds the result of the last committed sync run for
// consumers that outlive a session.
package container

import (
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/session"
	"go.uber.org/zap"
)

// ErrEmptyThumbnail is returned when adding a thumbnail without data.
var ErrEmptyThumbnail = session.ErrEmptyThumbnail

// Thumbnail is a stored shell thumbnail. Digest is the xxhash of Data;
// Revision starts at 1 and grows each time the content changes.
type Thumbnail struct {
	ShellID     string
	ContentType string
	Data        []byte
	Digest      uint64
	Revision    int
}

// DynamicFetchPackage is an environment that was fetched from a repository
// and can be continued page by page. It is safe for concurrent use.
type DynamicFetchPackage struct {
	mu         sync.RWMutex
	baseURI    *url.URL
	env        *aas.Environment
	fetchCtx   session.FetchContext
	hasContext bool
	thumbnails map[string]Thumbnail
	log        *zap.SugaredLogger
}

var _ session.Container = (*DynamicFetchPackage)(nil)

func NewDynamicFetchPackage(log *zap.SugaredLogger) *DynamicFetchPackage {
	return &DynamicFetchPackage{
		thumbnails: make(map[string]Thumbnail),
		log:        logger.OrNop(log),
	}
}

func (p *DynamicFetchPackage) SetBaseURI(base *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.baseURI = base
}

func (p *DynamicFetchPackage) BaseURI() *url.URL {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.baseURI
}

// SetEnvironment replaces the environment and drops thumbnails of shells
// that are no longer part of it.
func (p *DynamicFetchPackage) SetEnvironment(env *aas.Environment) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.env = env

	for id := range p.thumbnails {
		if env == nil || !env.Contains(aas.KindShell, id) {
			delete(p.thumbnails, id)
		}
	}
}

func (p *DynamicFetchPackage) Environment() *aas.Environment {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.env
}

func (p *DynamicFetchPackage) SetContext(fc session.FetchContext) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fetchCtx = fc
	p.hasContext = true
}

// Context returns the fetch context of the last commit.
func (p *DynamicFetchPackage) Context() (session.FetchContext, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.fetchCtx, p.hasContext
}

// AddThumbnail stores data for shellID. An earlier thumbnail is replaced only
// when its content differs.
func (p *DynamicFetchPackage) AddThumbnail(shellID string, data []byte, contentType string) error {
	if shellID == "" {
		return aas.ErrEmptyID
	}

	if len(data) == 0 {
		return fmt.Errorf("shell %q: %w", shellID, ErrEmptyThumbnail)
	}

	t := Thumbnail{
		ShellID:     shellID,
		ContentType: contentType,
		Data:        data,
		Digest:      xxhash.Sum64(data),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	t.Revision = 1

	if old, ok := p.thumbnails[shellID]; ok {
		if old.Digest == t.Digest && old.ContentType == t.ContentType {
			p.log.Debugw("Thumbnail unchanged", "shell_id", shellID, "revision", old.Revision)

			return nil
		}

		t.Revision = old.Revision + 1
	}

	p.thumbnails[shellID] = t

	return nil
}

// Thumbnail returns the thumbnail stored for shellID.
func (p *DynamicFetchPackage) Thumbnail(shellID string) (Thumbnail, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, ok := p.thumbnails[shellID]

	return t, ok
}

// ThumbnailIDs returns the ids of all stored thumbnails, sorted.
func (p *DynamicFetchPackage) ThumbnailIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.thumbnails))
	for id := range p.thumbnails {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Counts returns the entry counts of the current environment.
func (p *DynamicFetchPackage) Counts() aas.Counts {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.env == nil {
		return aas.Counts{}
	}

	return p.env.Counts()
}
