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

package aas_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/aas-sync/pkg/aas"
)

var _ = Describe("IdentifiableList", func() {
	var list *aas.IdentifiableList[*aas.Submodel]

	BeforeEach(func() {
		list = aas.NewList[*aas.Submodel](aas.KindSubmodel)
	})

	It("keeps insertion order", func() {
		Expect(list.Add(&aas.Submodel{ID: "sm-2"}, nil)).To(Succeed())
		Expect(list.Add(&aas.Submodel{ID: "sm-1"}, nil)).To(Succeed())
		Expect(list.AddStub("sm-3")).To(Succeed())

		Expect(list.IDs()).To(Equal([]string{"sm-2", "sm-1", "sm-3"}))
		Expect(list.Items()).To(HaveLen(2))
		Expect(list.StubCount()).To(Equal(1))
	})

	It("replaces a stub in place when the full item arrives", func() {
		Expect(list.AddStub("sm-1")).To(Succeed())
		Expect(list.Add(&aas.Submodel{ID: "sm-2"}, nil)).To(Succeed())

		entry, ok := list.Get("sm-1")
		Expect(ok).To(BeTrue())
		Expect(entry.IsStub()).To(BeTrue())
		Expect(entry.Side.StubLevel).To(Equal(aas.StubLevelIDOnly))

		Expect(list.Add(&aas.Submodel{ID: "sm-1", IDShort: "Nameplate"}, nil)).To(Succeed())

		Expect(list.Len()).To(Equal(2))
		Expect(list.IDs()).To(Equal([]string{"sm-1", "sm-2"}))

		entry, _ = list.Get("sm-1")
		Expect(entry.IsStub()).To(BeFalse())
		Expect(entry.Item.IDShort).To(Equal("Nameplate"))
	})

	It("rejects a second full item with the same id", func() {
		Expect(list.Add(&aas.Submodel{ID: "sm-1"}, nil)).To(Succeed())

		err := list.Add(&aas.Submodel{ID: "sm-1"}, nil)

		var dup *aas.DuplicateKeyError
		Expect(errors.As(err, &dup)).To(BeTrue())
		Expect(dup.ID).To(Equal("sm-1"))
		Expect(dup.Stub).To(BeFalse())
		Expect(list.Len()).To(Equal(1))
	})

	It("rejects a stub for an id that is already present", func() {
		Expect(list.AddStub("sm-1")).To(Succeed())

		var dup *aas.DuplicateKeyError
		Expect(errors.As(list.AddStub("sm-1"), &dup)).To(BeTrue())
		Expect(dup.Stub).To(BeTrue())
	})

	It("rejects empty identifiers", func() {
		Expect(list.Add(&aas.Submodel{}, nil)).To(MatchError(aas.ErrEmptyID))
		Expect(list.AddStub("")).To(MatchError(aas.ErrEmptyID))
	})

	It("fills the side info of full items", func() {
		side := &aas.SideInfo{ShowCursorBelow: true}
		Expect(list.Add(&aas.Submodel{ID: "sm-1"}, side)).To(Succeed())

		entry, _ := list.Get("sm-1")
		Expect(entry.Side.ID).To(Equal("sm-1"))
		Expect(entry.Side.IsStub).To(BeFalse())
		Expect(entry.Side.ShowCursorBelow).To(BeTrue())
	})

	It("treats a nil list as absent and empty", func() {
		var absent *aas.IdentifiableList[*aas.Shell]

		Expect(absent.Len()).To(Equal(0))
		Expect(absent.Contains("x")).To(BeFalse())
		Expect(absent.Items()).To(BeEmpty())
		Expect(absent.Add(&aas.Shell{ID: "x"}, nil)).To(MatchError(aas.ErrAbsentList))
	})
})
