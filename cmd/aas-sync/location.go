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
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/uri"
)

func newLocationCmd() *cobra.Command {
	var (
		flags  recordFlags
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "location",
		Short: "Print the location a fetch would start from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := flags.build(cmd)
			if err != nil {
				return err
			}

			location, err := uri.BuildLocationFrom(rec, cursor)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), location)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s)\n", rec.FetchOperation(), uri.Match(location))

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor of a previous page")

	return cmd
}
