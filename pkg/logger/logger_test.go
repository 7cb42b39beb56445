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

package logger_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
)

var _ = Describe("Logger", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("writes the pretty format with sorted fields", func() {
		log := logger.New(buf, "debug", logger.FormatPretty).Named(logger.ComponentSession).Sugar()

		log.With("session_id", "s-1").Infow("Session committed", "shells", 3, "location", "https://x/shells")

		line := buf.String()
		Expect(line).To(HavePrefix("[INFO]\t[logger/logger_test.go:"))
		Expect(line).To(ContainSubstring("[SyncSession]\tSession committed - "))
		Expect(line).To(HaveSuffix(`location="https://x/shells", session_id="s-1", shells=3` + "\n"))
	})

	It("filters below the configured level", func() {
		log := logger.New(buf, "WARN", logger.FormatJSON).Sugar()

		log.Infow("hidden")
		log.Warnw("shown", "id", "aas-1")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring(`"msg":"shown"`))
		Expect(buf.String()).To(ContainSubstring(`"id":"aas-1"`))
	})

	It("falls back to info for unknown levels", func() {
		log := logger.New(buf, "verbose", logger.FormatConsole).Sugar()

		log.Debug("hidden")
		log.Info("shown")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("shown"))
	})

	It("hands out a no-op logger for nil", func() {
		Expect(logger.OrNop(nil)).NotTo(BeNil())
	})
})
