/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/beamlit/appinfo/internal/config"
	"github.com/beamlit/appinfo/internal/info"
	"github.com/beamlit/appinfo/internal/metrics"
)

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

var _ = Describe("Server", func() {
	var (
		registry *metrics.Registry
		srv      *Server
	)

	BeforeEach(func() {
		var err error
		registry, err = metrics.NewRegistry()
		Expect(err).NotTo(HaveOccurred())
		infoHandler := info.NewHandler(config.AppConfig{Version: "2.3.1", Title: "MyApp"}, registry.RequestCounter())
		srv = New(config.New().Server, infoHandler, registry.Handler(), logr.Discard())
	})

	Describe("GET /get_info", func() {
		It("returns the configured metadata", func() {
			rec := serve(srv.Handler(), http.MethodGet, InfoPath)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var body map[string]string
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(Equal(map[string]string{"APP_VERSION": "2.3.1", "APP_TITLE": "MyApp"}))
		})

		It("counts every request", func() {
			for i := 0; i < 3; i++ {
				serve(srv.Handler(), http.MethodGet, InfoPath)
			}
			Expect(testutil.ToFloat64(registry.RequestCounter())).To(BeEquivalentTo(3))
		})

		It("rejects other methods without counting them", func() {
			rec := serve(srv.Handler(), http.MethodPost, InfoPath)
			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(rec.Header().Get("Allow")).To(ContainSubstring(http.MethodGet))
			Expect(testutil.ToFloat64(registry.RequestCounter())).To(BeZero())
		})
	})

	Describe("GET /metrics", func() {
		It("exposes the request counter in the text format", func() {
			for i := 0; i < 3; i++ {
				serve(srv.Handler(), http.MethodGet, InfoPath)
			}
			rec := serve(srv.Handler(), http.MethodGet, MetricsPath)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
			Expect(rec.Body.String()).To(ContainSubstring("# TYPE requests_total counter\n"))
			Expect(rec.Body.String()).To(ContainSubstring("\nrequests_total 3\n"))
		})

		It("does not change the request counter", func() {
			serve(srv.Handler(), http.MethodGet, InfoPath)
			for i := 0; i < 5; i++ {
				Expect(serve(srv.Handler(), http.MethodGet, MetricsPath).Code).To(Equal(http.StatusOK))
			}
			Expect(testutil.ToFloat64(registry.RequestCounter())).To(BeEquivalentTo(1))
		})

		It("rejects other methods", func() {
			Expect(serve(srv.Handler(), http.MethodDelete, MetricsPath).Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	DescribeTable("probes",
		func(path string) {
			rec := serve(srv.Handler(), http.MethodGet, path)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("ok"))
		},
		Entry("liveness", HealthPath),
		Entry("readiness", ReadyPath),
		Entry("single liveness check", HealthPath+"/ping"),
	)

	It("answers 404 for unknown paths", func() {
		Expect(serve(srv.Handler(), http.MethodGet, "/unknown").Code).To(Equal(http.StatusNotFound))
	})

	It("turns a handler panic into a bare 500", func() {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})
		s := New(config.New().Server, boom, registry.Handler(), logr.Discard())
		rec := serve(s.Handler(), http.MethodGet, InfoPath)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})

	Describe("Serve", func() {
		It("serves until the context is cancelled", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- srv.Serve(ctx, ln)
			}()

			url := "http://" + ln.Addr().String() + InfoPath
			var body string
			Eventually(func() error {
				resp, err := http.Get(url)
				if err != nil {
					return err
				}
				defer resp.Body.Close()
				b, err := io.ReadAll(resp.Body)
				body = string(b)
				return err
			}, 5*time.Second, 50*time.Millisecond).Should(Succeed())
			Expect(strings.TrimSpace(body)).To(Equal(`{"APP_VERSION":"2.3.1","APP_TITLE":"MyApp"}`))

			cancel()
			Eventually(done, 5*time.Second).Should(Receive(BeNil()))
		})

		It("fails to run on an invalid address", func() {
			cfg := config.New().Server
			cfg.ListenAddr = "256.0.0.1:-1"
			s := New(cfg, http.NotFoundHandler(), http.NotFoundHandler(), logr.Discard())
			Expect(s.Run(context.Background())).NotTo(Succeed())
		})
	})
})
