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

package httpclient

import (
	"net/http/httptrace"
	"sort"
	"time"

	"github.com/united-manufacturing-hub/expiremap/v2/pkg/expiremap"
)

// Latency summarises the samples of the last five minutes.
type Latency struct {
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	Avg     time.Duration `json:"avg"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
	Samples int           `json:"samples"`
}

var (
	latenciesFRB   = expiremap.NewEx[time.Time, time.Duration](5*time.Minute, 5*time.Minute)
	latenciesConn  = expiremap.NewEx[time.Time, time.Duration](5*time.Minute, 5*time.Minute)
	latenciesTotal = expiremap.NewEx[time.Time, time.Duration](5*time.Minute, 5*time.Minute)
)

// GetLatencyTimeTillFirstByte returns the time until the first response byte.
func GetLatencyTimeTillFirstByte() Latency {
	return calculateLatency(latenciesFRB)
}

// GetLatencyTimeTillConn returns the connection establishment time.
// Reused connections are not sampled.
func GetLatencyTimeTillConn() Latency {
	return calculateLatency(latenciesConn)
}

// GetRequestLatency returns the time until the body was read completely.
func GetRequestLatency() Latency {
	return calculateLatency(latenciesTotal)
}

func calculateLatency(latencies *expiremap.ExpireMap[time.Time, time.Duration]) Latency {
	var (
		durations []time.Duration
		sum       time.Duration
	)

	latencies.Range(func(_ time.Time, value time.Duration) bool {
		durations = append(durations, value)
		sum += value

		return true
	})

	if len(durations) == 0 {
		return Latency{}
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	percentile := func(p float64) time.Duration {
		idx := int(float64(len(durations)) * p)
		if idx >= len(durations) {
			idx = len(durations) - 1
		}

		return durations[idx]
	}

	return Latency{
		Min:     durations[0],
		Max:     durations[len(durations)-1],
		Avg:     sum / time.Duration(len(durations)),
		P95:     percentile(0.95),
		P99:     percentile(0.99),
		Samples: len(durations),
	}
}

type timings struct {
	firstByte time.Duration
	conn      time.Duration
}

// setupClientTrace records the timings of one request.
func setupClientTrace(requestStart *time.Time, t *timings) *httptrace.ClientTrace {
	var connStart time.Time

	return &httptrace.ClientTrace{
		ConnectStart: func(_, _ string) {
			connStart = time.Now()
		},
		ConnectDone: func(_, _ string, _ error) {
			t.conn = time.Since(connStart)
		},
		GotFirstResponseByte: func() {
			t.firstByte = time.Since(*requestStart)
		},
	}
}

func recordLatencies(t timings, total time.Duration) {
	now := time.Now()

	if t.firstByte > 0 {
		latenciesFRB.Set(now, t.firstByte)
	}

	if t.conn > 0 {
		latenciesConn.Set(now, t.conn)
	}

	latenciesTotal.Set(now, total)
}
