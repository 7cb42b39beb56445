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

package syncerr_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
)

var _ = Describe("Categorized errors", func() {
	cause := errors.New("boom")

	It("keeps the category through wrapping", func() {
		err := fmt.Errorf("fetch shells: %w", syncerr.NewTransportError("https://x/shells", 503, cause))

		Expect(syncerr.IsTransportError(err)).To(BeTrue())
		Expect(syncerr.IsParseError(err)).To(BeFalse())
		Expect(syncerr.StatusCode(err)).To(Equal(503))
		Expect(errors.Is(err, cause)).To(BeTrue())

		category, ok := syncerr.CategoryOf(err)
		Expect(ok).To(BeTrue())
		Expect(category).To(Equal(syncerr.CategoryTransport))
	})

	It("treats uncategorized errors as transport errors", func() {
		category, ok := syncerr.CategoryOf(cause)
		Expect(ok).To(BeFalse())
		Expect(category).To(Equal(syncerr.CategoryTransport))
		Expect(syncerr.StatusCode(cause)).To(Equal(0))
	})

	DescribeTable("formats the message",
		func(err error, expected string) {
			Expect(err.Error()).To(Equal(expected))
		},
		Entry("configuration", syncerr.Configurationf("empty %s id", "shell"),
			"configuration error: empty shell id"),
		Entry("transport without response", syncerr.NewTransportError("https://x/shells", 0, cause),
			"transport error (GET https://x/shells): boom"),
		Entry("transport with status", syncerr.NewTransportError("https://x/shells", 404, cause),
			"transport error (GET https://x/shells, status 404): boom"),
		Entry("parse", syncerr.NewParseError("https://x/shells", cause),
			"parse error (GET https://x/shells): boom"),
	)

	It("names every category", func() {
		Expect(syncerr.CategoryConfiguration.String()).To(Equal("configuration"))
		Expect(syncerr.IsConfigurationError(syncerr.NewConfigurationError(cause))).To(BeTrue())
		Expect(syncerr.Category(42).String()).To(Equal("unknown"))
	})
})
