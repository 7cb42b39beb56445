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

package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/united-manufacturing-hub/aas-sync/pkg/config"
)

var allKeys = []string{
	config.EnvMaxParallelOps,
	config.EnvHTTPTimeout,
	config.EnvInsecureTLS,
	config.EnvRetryMax,
	config.EnvBearerToken,
	config.EnvMetricsPort,
	config.EnvSentryDSN,
}

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("Config", func() {
	BeforeEach(func() {
		for _, key := range allKeys {
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	It("uses the defaults when nothing is set", func() {
		cfg, err := config.LoadFromEnv()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.Default()))
		Expect(cfg.MetricsAddr()).To(BeEmpty())
	})

	It("reads every option", func() {
		setEnv(config.EnvMaxParallelOps, "16")
		setEnv(config.EnvHTTPTimeout, "5s")
		setEnv(config.EnvInsecureTLS, "true")
		setEnv(config.EnvRetryMax, "2")
		setEnv(config.EnvBearerToken, "secret")
		setEnv(config.EnvMetricsPort, "9102")
		setEnv(config.EnvSentryDSN, "https://key@sentry.example.com/1")

		cfg, err := config.LoadFromEnv()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxParallelOps).To(Equal(16))
		Expect(cfg.HTTPTimeout).To(Equal(5 * time.Second))
		Expect(cfg.InsecureTLS).To(BeTrue())
		Expect(cfg.RetryMax).To(Equal(2))
		Expect(cfg.BearerToken).To(Equal("secret"))
		Expect(cfg.MetricsAddr()).To(Equal(":9102"))
		Expect(cfg.SentryDSN).NotTo(BeEmpty())
	})

	It("rejects out-of-range values", func() {
		setEnv(config.EnvMaxParallelOps, "0")

		_, err := config.LoadFromEnv()
		Expect(err).To(MatchError(ContainSubstring("MaxParallelOps")))
	})

	It("rejects a zero timeout", func() {
		cfg := config.Default()
		cfg.HTTPTimeout = 0

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("HTTPTimeout")))
	})
})
