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

	"github.com/spf13/cobra"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/description"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/record"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [base]",
		Short: "Show the service profiles a repository describes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := record.DefaultBaseAddress
			if len(args) == 1 {
				location = args[0]
			}

			base := uri.GetBaseURI(location)
			if base == nil {
				return syncerr.Configurationf("cannot derive a base URI from %q", location)
			}

			status, err := description.Probe(cmd.Context(), a.newHTTPClient(), base)
			if err != nil {
				logger.For(logger.ComponentDescription).Warnw("Probing service description", "base", base.String(), "error", err)
				fmt.Fprintln(cmd.OutOrStdout(), description.StatusUnavailable)

				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), status)

			for _, unknown := range status.Unknown {
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown profile: %s\n", unknown)
			}

			latency := httpclient.GetRequestLatency()
			fmt.Fprintf(cmd.ErrOrStderr(), "round trip: %s (first byte %s)\n",
				latency.Max, httpclient.GetLatencyTimeTillFirstByte().Max)

			return nil
		},
	}
}
