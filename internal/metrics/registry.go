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

// Package metrics owns the Prometheus registry behind /metrics and the
// requests_total counter fed by the info handler.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const (
	RequestsTotalName = "requests_total"
	RequestsTotalHelp = "Total number of requests to /get_info"
)

// exportFormat is the plain text exposition format understood by every
// Prometheus-compatible scraper.
var exportFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

type options struct {
	runtimeCollectors bool
	logger            logr.Logger
}

type Option func(*options)

// WithoutRuntimeCollectors skips the Go and process collectors.
func WithoutRuntimeCollectors() Option {
	return func(o *options) {
		o.runtimeCollectors = false
	}
}

// WithLogger sets the logger used to report scrape failures.
func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Registry owns the request counter and the collectors exported on /metrics.
// It is safe for concurrent use.
type Registry struct {
	registry *prometheus.Registry
	requests prometheus.Counter
	logger   logr.Logger
}

func NewRegistry(opts ...Option) (*Registry, error) {
	o := options{
		runtimeCollectors: true,
		logger:            logr.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: RequestsTotalName,
			Help: RequestsTotalHelp,
		}),
		logger: o.logger,
	}

	cs := []prometheus.Collector{r.requests}
	if o.runtimeCollectors {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return r, nil
}

// RequestCounter returns the counter incremented once per /get_info call.
func (r *Registry) RequestCounter() prometheus.Counter {
	return r.requests
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Export renders every registered metric in the text exposition format and
// returns the payload with its content type. It does not modify any metric.
func (r *Registry) Export() ([]byte, string, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, "", fmt.Errorf("gathering metrics: %w", err)
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, exportFormat)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, "", fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		if err := closer.Close(); err != nil {
			return nil, "", fmt.Errorf("closing encoder: %w", err)
		}
	}
	return buf.Bytes(), string(exportFormat), nil
}

// Handler serves the registry over HTTP. Gathering or encoding failures are
// answered with a 500 and logged.
func (r *Registry) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(r.registry, promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		ErrorLog:      errorLogger{r.logger},
		ErrorHandling: promhttp.HTTPErrorOnError,
		Registry:      r.registry,
	}))
}

// errorLogger adapts logr to promhttp.Logger.
type errorLogger struct {
	logger logr.Logger
}

func (l errorLogger) Println(v ...interface{}) {
	l.logger.Error(fmt.Errorf("%s", fmt.Sprint(v...)), "Error serving metrics")
}
