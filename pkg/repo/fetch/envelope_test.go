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

package fetch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/fetch"
)

var _ = Describe("ParseEnvelope", func() {
	It("returns the items and the cursor", func() {
		env, err := fetch.ParseEnvelope([]byte(`{"result": [{"id":"a"},{"id":"b"}], "paging_metadata": {"cursor": "c1"}}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(env.HasResult()).To(BeTrue())
		Expect(env.Items()).To(HaveLen(2))

		cursor, ok := env.Cursor()
		Expect(ok).To(BeTrue())
		Expect(cursor).To(Equal("c1"))
	})

	DescribeTable("tells absent and null apart",
		func(body string, hasResult, resultNull, hasCursor bool) {
			env, err := fetch.ParseEnvelope([]byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(env.HasResult()).To(Equal(hasResult))
			Expect(env.ResultIsNull()).To(Equal(resultNull))
			Expect(env.Items()).To(BeEmpty())

			_, ok := env.Cursor()
			Expect(ok).To(Equal(hasCursor))
		},
		Entry("empty object", `{}`, false, false, false),
		Entry("null result", `{"result": null}`, true, true, false),
		Entry("empty result, null paging", `{"result": [], "paging_metadata": null}`, true, false, false),
		Entry("null cursor", `{"result": [], "paging_metadata": {"cursor": null}}`, true, false, false),
		Entry("cursor without result", `{"paging_metadata": {"cursor": "c9"}}`, false, false, true),
	)

	It("keeps non-string cursors as their literal text", func() {
		env, err := fetch.ParseEnvelope([]byte(`{"result": [], "paging_metadata": {"cursor": 42}}`))
		Expect(err).NotTo(HaveOccurred())

		cursor, _ := env.Cursor()
		Expect(cursor).To(Equal("42"))
	})

	It("rejects bodies that are not envelopes", func() {
		_, err := fetch.ParseEnvelope([]byte(`[{"id":"a"}]`))
		Expect(err).To(MatchError(fetch.ErrEnvelopeNotObject))

		_, err = fetch.ParseEnvelope([]byte(`{"result": {"id":"a"}}`))
		Expect(err).To(HaveOccurred())

		_, err = fetch.ParseEnvelope([]byte(`{"result": [`))
		Expect(err).To(HaveOccurred())
	})
})
