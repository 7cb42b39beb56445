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
	"github.com/spf13/cobra"
	"github.com/united-manufacturing-hub/aas-sync/pkg/config"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/httpclient"
	"go.uber.org/zap"
)

// app carries what every command needs.
type app struct {
	cfg config.Config
	log *zap.SugaredLogger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "aas-sync",
		Short: "Synchronise Asset Administration Shells from an AAS repository",
		Long: `aas-sync reads shells, submodels and concept descriptions from an AAS
repository over the REST API, resolves missing references and prints or
stores the resulting environment.`,
		SilenceUsage:  true,
		Version:       appVersion,
	}

	root.AddCommand(
		newFetchCmd(a),
		newStatusCmd(a),
		newLocationCmd(),
	)

	return root
}

// newHTTPClient builds the repository client from the process configuration.
func (a *app) newHTTPClient() *httpclient.Client {
	client := &httpclient.Client{
		Timeout:     a.cfg.HTTPTimeout,
		RetryMax:    a.cfg.RetryMax,
		InsecureTLS: a.cfg.InsecureTLS,
		Logger:      logger.For(logger.ComponentHTTP),
	}

	if a.cfg.BearerToken != "" {
		client.Decorators = append(client.Decorators, httpclient.BearerToken(a.cfg.BearerToken))
	}

	return client
}
