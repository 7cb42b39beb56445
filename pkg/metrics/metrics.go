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

package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/sentry"
)

const (
	// Component labels.
	ComponentFetcher  = "fetcher"
	ComponentAutoLoad = "autoload"
	ComponentSession  = "session"
	ComponentHTTP     = "http"

	// Outcome labels.
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	// Item state labels.
	StateFull = "full"
	StateStub = "stub"
)

var (
	namespace = "aas"
	subsystem = "sync"

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of repository GET requests by resource kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of repository GET requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	itemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items_total",
			Help:      "Total number of identifiables placed into environments by kind and state (full/stub)",
		},
		[]string{"kind", "state"},
	)

	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of non-fatal errors by component and category",
		},
		[]string{"component", "category"},
	)

	sessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Total number of sync sessions by final state",
		},
		[]string{"result"},
	)
)

// ObserveRequest records one GET request.
func ObserveRequest(kind string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}

	requestsTotal.WithLabelValues(kind, outcome).Inc()
	requestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncItems counts identifiables added to an environment.
func IncItems(kind string, state string, n int) {
	if n <= 0 {
		return
	}

	itemsTotal.WithLabelValues(kind, state).Add(float64(n))
}

// IncErrorCount increments the error counter for a component.
func IncErrorCount(component string, category string) {
	errorCounter.WithLabelValues(component, category).Inc()
}

// IncSessions counts finished sessions by final state.
func IncSessions(result string) {
	sessionsTotal.WithLabelValues(result).Inc()
}

// SetupMetricsEndpoint starts the /metrics server on addr in the background.
func SetupMetricsEndpoint(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.ReportIssuef(sentry.IssueTypeError, logger.For(logger.ComponentCLI), "Metrics server failed: %w", err)
		}
	}()

	return server
}
