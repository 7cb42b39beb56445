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

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/container"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/record"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/session"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
	"github.com/united-manufacturing-hub/aas-sync/pkg/safejson"
	"github.com/united-manufacturing-hub/aas-sync/pkg/sentry"
)

// recordFlags are the command line overrides of a connection record.
type recordFlags struct {
	file       string
	base       string
	mode       string
	id         string
	query      string
	limit      int
	skip       int
	encryptIDs bool

	noSubmodels           bool
	noConceptDescriptions bool
	noThumbnails          bool
	eager                 bool
}

func (f *recordFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "record", "", "YAML connection record to start from")
	fs.StringVar(&f.base, "base", "", "base address of the repository")
	fs.StringVar(&f.mode, "mode", "", fmt.Sprintf("query mode %v", record.QueryModes))
	fs.StringVar(&f.id, "id", "", "identifier for the single-* query modes")
	fs.StringVar(&f.query, "query", "", "query payload for the query mode")
	fs.IntVar(&f.limit, "limit", record.DefaultPageLimit, "page limit, 0 for none")
	fs.IntVar(&f.skip, "skip", 0, "elements to skip on the first page")
	fs.BoolVar(&f.encryptIDs, "encrypt-ids", true, "base64url-encode identifiers in request paths")
	fs.BoolVar(&f.noSubmodels, "no-autoload-submodels", false, "do not resolve missing submodels")
	fs.BoolVar(&f.noConceptDescriptions, "no-autoload-concept-descriptions", false, "do not resolve missing concept descriptions")
	fs.BoolVar(&f.noThumbnails, "no-autoload-thumbnails", false, "do not download shell thumbnails")
	fs.BoolVar(&f.eager, "eager", false, "download missing identifiables instead of adding id stubs")
}

// build loads the record file, if any, and applies the flags that were set.
func (f *recordFlags) build(cmd *cobra.Command) (*record.ConnectionRecord, error) {
	rec := record.New()

	if f.file != "" {
		loaded, err := record.LoadFile(f.file)
		if err != nil {
			return nil, err
		}

		rec = loaded
	}

	changed := cmd.Flags().Changed

	if changed("base") {
		rec.BaseAddress = f.base
	}

	if changed("mode") {
		rec.SetQueryChoice(record.QueryMode(f.mode))
	}

	if changed("id") {
		switch rec.QueryMode {
		case record.QuerySingleShell:
			rec.ShellID = f.id
		case record.QuerySingleSubmodel:
			rec.SubmodelID = f.id
		case record.QuerySingleConceptDescription:
			rec.ConceptDescriptionID = f.id
		default:
			return nil, fmt.Errorf("--id requires a single-* query mode, got %q", rec.QueryMode)
		}
	}

	if changed("query") {
		rec.Query = f.query
	}

	if changed("limit") {
		rec.PageLimit = f.limit
	}

	if changed("skip") {
		rec.PageSkip = f.skip
	}

	if changed("encrypt-ids") {
		rec.EncryptIDs = f.encryptIDs
	}

	if f.noSubmodels {
		rec.AutoLoadSubmodels = false
	}

	if f.noConceptDescriptions {
		rec.AutoLoadConceptDescriptions = false
	}

	if f.noThumbnails {
		rec.AutoLoadThumbnails = false
	}

	if f.eager {
		rec.AutoLoadOnDemand = false
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

func newFetchCmd(a *app) *cobra.Command {
	var (
		flags    recordFlags
		allPages bool
		out      string
	)

	cmd := &cobra.Command{
		Use:   "fetch [location]",
		Short: "Fetch an environment from a repository",
		Long: `Fetch runs one synchronisation. Without a location argument the location
is built from the connection record and the flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := flags.build(cmd)
			if err != nil {
				return err
			}

			location := ""
			if len(args) == 1 {
				location = args[0]
			} else if location, err = uri.BuildLocationFrom(rec, ""); err != nil {
				return err
			}

			env, err := a.fetch(cmd, rec, location, allPages)
			if err != nil {
				return err
			}

			return writeEnvironment(cmd, env, out)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&allPages, "all-pages", false, "follow the server cursor until the last page")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the environment as JSON to this file, - for stdout")

	return cmd
}

// fetch runs one session per page and merges the committed environments.
func (a *app) fetch(cmd *cobra.Command, rec *record.ConnectionRecord, location string, allPages bool) (*aas.Environment, error) {
	ctx := cmd.Context()

	deps := session.Dependencies{
		Client:         a.newHTTPClient(),
		MaxParallelOps: a.cfg.MaxParallelOps,
		Logger:         logger.For(logger.ComponentSession),
	}

	pkg := container.NewDynamicFetchPackage(logger.For(logger.ComponentContainer))
	merged := aas.NewEnvironment()
	s := session.New(rec, deps)

	for {
		res, err := s.Run(ctx, location)
		if err != nil {
			sentry.ReportSyncError(a.log, s.ID(), location, rec.FetchOperation(), err)

			return nil, err
		}

		if err := res.Commit(pkg); err != nil {
			return nil, err
		}

		merged.Merge(res.Environment)

		fmt.Fprintf(cmd.ErrOrStderr(), "page %d: %s thumbnails=%d\n",
			res.Context.PageOffset, res.Environment.Counts(), len(pkg.ThumbnailIDs()))

		if !allPages || !res.Context.HasMore() {
			break
		}

		next, nextLocation, ok, err := session.NewFollowUp(res.Context, deps)
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		s, location = next, nextLocation
	}

	a.log.Debugw("Request latency",
		"total", httpclient.GetRequestLatency(),
		"first_byte", httpclient.GetLatencyTimeTillFirstByte(),
		"connect", httpclient.GetLatencyTimeTillConn())

	if fc, ok := pkg.Context(); ok && fc.HasMore() {
		fmt.Fprintf(cmd.ErrOrStderr(), "more pages available, cursor %q\n", fc.Cursor)
	}

	return merged, nil
}

func writeEnvironment(cmd *cobra.Command, env *aas.Environment, out string) error {
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), env.Counts())

		return nil
	}

	data, err := safejson.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode environment: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()

	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		w = f
	}

	// foo.json.zst gets a zstd frame.
	if strings.HasSuffix(out, ".zst") {
		return writeCompressed(w, data)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write environment: %w", err)
	}

	return nil
}

func writeCompressed(w io.Writer, data []byte) error {
	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := encoder.Write(data); err != nil {
		_ = encoder.Close()

		return fmt.Errorf("write environment: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("flush environment: %w", err)
	}

	return nil
}
