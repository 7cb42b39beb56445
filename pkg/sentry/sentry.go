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

package sentry

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const (
	// DefaultAppVersion is the version reported by builds without ldflags.
	DefaultAppVersion = "0.0.0-dev"

	environmentDevelopment = "development"
	environmentProduction  = "production"
)

// InitSentry initializes sentry for the given app version. Reporting stays
// disabled for local builds and when no DSN is configured.
func InitSentry(appVersion string, dsn string, debounceErrors bool) bool {
	shouldDebounce.Store(debounceErrors)

	if appVersion == "" || appVersion == DefaultAppVersion || dsn == "" {
		zap.S().Debug("Sentry disabled (development build or no DSN)")

		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:           dsn,
		Environment:   environmentFor(appVersion),
		Release:       "aas-sync@" + appVersion,
		EnableTracing: false,
	})
	if err != nil {
		zap.S().Errorf("Failed to initialize Sentry: %s", err)

		return false
	}

	return true
}

// Flush waits for queued events to be sent.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// environmentFor maps pre-release versions to development.
func environmentFor(appVersion string) string {
	version, err := semver.NewVersion(appVersion)
	if err != nil {
		zap.S().Warnf("Failed to parse app version %q, using development environment: %s", appVersion, err)

		return environmentDevelopment
	}

	if version.Prerelease() != "" {
		return environmentDevelopment
	}

	return environmentProduction
}

func meaningfulTitle(err error) string {
	message := err.Error()

	if idx := strings.IndexAny(message, ".,:"); idx > 0 {
		message = message[:idx]
	}

	if len(message) > 100 {
		message = message[:97] + "..."
	}

	return message
}

func createEvent(level sentry.Level, err error, context map[string]interface{}) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = level
	event.Message = err.Error()
	event.Exception = []sentry.Exception{{
		Type:       meaningfulTitle(err),
		Value:      err.Error(),
		Stacktrace: sentry.ExtractStacktrace(err),
	}}
	event.Fingerprint = []string{"{{ default }}", "level: " + string(level)}

	for key, value := range context {
		switch v := value.(type) {
		case string:
			if event.Tags == nil {
				event.Tags = make(map[string]string)
			}

			event.Tags[key] = v
		case int, int64, bool, float64:
			if event.Tags == nil {
				event.Tags = make(map[string]string)
			}

			event.Tags[key] = fmt.Sprint(v)
		default:
			if event.Extra == nil {
				event.Extra = make(map[string]interface{})
			}

			event.Extra[key] = v
		}

		if key == "operation" {
			event.Fingerprint = append(event.Fingerprint, fmt.Sprintf("operation: %v", value))
		}
	}

	return event
}
