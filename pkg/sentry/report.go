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
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type IssueType string

const (
	IssueTypeWarning IssueType = "warning"
	IssueTypeError   IssueType = "error"
	IssueTypeFatal   IssueType = "fatal"
)

// debounceWindow is how long an identical message is kept from Sentry.
const debounceWindow = 2 * time.Hour

var (
	shouldDebounce atomic.Bool

	lastSentMu sync.Mutex
	lastSent   = map[string]time.Time{}
)

// ReportIssue logs err and forwards it to Sentry (if initialized).
// Fatal issues are logged but do not panic; the caller decides how to exit.
func ReportIssue(err error, issueType IssueType, log *zap.SugaredLogger) {
	ReportIssueWithContext(err, issueType, log, nil)
}

func ReportIssuef(issueType IssueType, log *zap.SugaredLogger, template string, args ...interface{}) {
	ReportIssue(fmt.Errorf(template, args...), issueType, log)
}

// ReportIssueWithContext reports an issue with additional context data that will be included in Sentry.
func ReportIssueWithContext(err error, issueType IssueType, log *zap.SugaredLogger, context map[string]interface{}) {
	if err == nil {
		return
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}

	fields := make([]interface{}, 0, 2*len(context)+2)
	fields = append(fields, "error", err)

	for k, v := range context {
		fields = append(fields, k, v)
	}

	var level sentry.Level

	switch issueType {
	case IssueTypeFatal:
		log.Errorw("Fatal error", fields...)

		level = sentry.LevelFatal
	case IssueTypeError:
		log.Errorw("Error", fields...)

		level = sentry.LevelError
	default:
		log.Warnw("Warning", fields...)

		level = sentry.LevelWarning
	}

	if sentry.CurrentHub().Client() == nil || debounced(issueType, err) {
		return
	}

	sentry.CaptureEvent(createEvent(level, err, context))

	if issueType == IssueTypeFatal {
		sentry.Flush(5 * time.Second)
	}
}

// ReportSyncError reports a failed synchronisation run.
func ReportSyncError(log *zap.SugaredLogger, sessionID string, location string, operation string, err error) {
	ReportIssueWithContext(err, IssueTypeError, log, map[string]interface{}{
		"session_id": sessionID,
		"location":   location,
		"operation":  operation,
	})
}

func debounced(issueType IssueType, err error) bool {
	if issueType == IssueTypeFatal || !shouldDebounce.Load() {
		return false
	}

	key := string(issueType) + ":" + meaningfulTitle(err)

	lastSentMu.Lock()
	defer lastSentMu.Unlock()

	if t, ok := lastSent[key]; ok && time.Since(t) < debounceWindow {
		return true
	}

	lastSent[key] = time.Now()

	return false
}
