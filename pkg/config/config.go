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

// Package config loads the process-wide runtime options of aas-sync.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/united-manufacturing-hub/aas-sync/pkg/env"
)

// Environment variables read by LoadFromEnv.
const (
	EnvMaxParallelOps = "AAS_SYNC_MAX_PARALLEL_OPS"
	EnvHTTPTimeout    = "AAS_SYNC_HTTP_TIMEOUT"
	EnvInsecureTLS    = "AAS_SYNC_INSECURE_TLS"
	EnvRetryMax       = "AAS_SYNC_RETRY_MAX"
	EnvBearerToken    = "AAS_SYNC_BEARER_TOKEN"
	EnvMetricsPort    = "AAS_SYNC_METRICS_PORT"
	EnvSentryDSN      = "AAS_SYNC_SENTRY_DSN"
)

const (
	DefaultMaxParallelOps = 4
	DefaultHTTPTimeout    = 30 * time.Second
)

// Config holds runtime options that are not part of a connection record.
type Config struct {
	// MaxParallelOps bounds the auto-load fan-out.
	MaxParallelOps int           `validate:"gte=1,lte=256"`
	HTTPTimeout    time.Duration `validate:"gt=0"`
	InsecureTLS    bool
	// RetryMax is the number of retries on connection errors. 0 disables retries.
	RetryMax    int `validate:"gte=0,lte=10"`
	BearerToken string
	// MetricsPort enables the /metrics endpoint when non-zero.
	MetricsPort int `validate:"gte=0,lte=65535"`
	SentryDSN   string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		MaxParallelOps: DefaultMaxParallelOps,
		HTTPTimeout:    DefaultHTTPTimeout,
	}
}

// LoadFromEnv reads the configuration from the environment on top of Default.
func LoadFromEnv() (Config, error) {
	cfg := Default()

	var err error

	if cfg.MaxParallelOps, err = env.GetAsInt(EnvMaxParallelOps, false, cfg.MaxParallelOps); err != nil {
		return Config{}, err
	}

	if cfg.HTTPTimeout, err = env.GetAsDuration(EnvHTTPTimeout, false, cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}

	if cfg.InsecureTLS, err = env.GetAsBool(EnvInsecureTLS, false, false); err != nil {
		return Config{}, err
	}

	if cfg.RetryMax, err = env.GetAsInt(EnvRetryMax, false, 0); err != nil {
		return Config{}, err
	}

	if cfg.BearerToken, err = env.GetAsString(EnvBearerToken, false, ""); err != nil {
		return Config{}, err
	}

	if cfg.MetricsPort, err = env.GetAsInt(EnvMetricsPort, false, 0); err != nil {
		return Config{}, err
	}

	if cfg.SentryDSN, err = env.GetAsString(EnvSentryDSN, false, ""); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the value ranges.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// MetricsAddr returns the listen address of the metrics endpoint, or "".
func (c Config) MetricsAddr() string {
	if c.MetricsPort == 0 {
		return ""
	}

	return fmt.Sprintf(":%d", c.MetricsPort)
}
