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
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/united-manufacturing-hub/aas-sync/pkg/config"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/metrics"
	"github.com/united-manufacturing-hub/aas-sync/pkg/sentry"
)

// appVersion is set with -ldflags "-X main.appVersion=...".
var appVersion = sentry.DefaultAppVersion

func main() {
	os.Exit(run())
}

func run() int {
	logger.Initialize()
	defer func() { _ = logger.Sync() }()

	log := logger.For(logger.ComponentCLI)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Failed to load configuration: %w", err)

		return 2
	}

	if sentry.InitSentry(appVersion, cfg.SentryDSN, true) {
		defer sentry.Flush(2 * time.Second)
	}

	if addr := cfg.MetricsAddr(); addr != "" {
		server := metrics.SetupMetricsEndpoint(addr)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer shutdownCancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warnf("Failed to shutdown metrics server: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{cfg: cfg, log: log}).ExecuteContext(ctx); err != nil {
		log.Debugw("Command failed", "error", err)

		return 1
	}

	return 0
}
