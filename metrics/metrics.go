// Package metrics serves Prometheus metrics on a dedicated address and
// exports cache observability gauges fed from the content store.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheStatsFunc supplies the current cache counters per cache name.
type CacheStatsFunc func() map[string]CacheCounters

// CacheCounters mirrors one cache's stats snapshot.
type CacheCounters struct {
	Hits   int64
	Misses int64
	Size   int
}

// MetricsServer exposes /metrics on its own listener so scraping is kept
// off the public API port.
type MetricsServer struct {
	srv      *http.Server
	registry *prometheus.Registry

	hits   *prometheus.GaugeVec
	misses *prometheus.GaugeVec
	size   *prometheus.GaugeVec

	statsFn CacheStatsFunc
}

// New creates a metrics server for the given namespace listening on addr.
func New(namespace, addr string, statsFn CacheStatsFunc) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &MetricsServer{
		registry: registry,
		statsFn:  statsFn,
		hits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_hits",
			Help:      "Cumulative cache hits per cache.",
		}, []string{"cache"}),
		misses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_misses",
			Help:      "Cumulative cache misses per cache.",
		}, []string{"cache"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Current number of cache entries per cache.",
		}, []string{"cache"}),
	}
	registry.MustRegister(m.hits, m.misses, m.size)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		registry,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.refresh()
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
		}),
	))

	m.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return m, nil
}

// refresh copies the latest cache counters into the gauges right before a
// scrape.
func (m *MetricsServer) refresh() {
	if m.statsFn == nil {
		return
	}
	for name, counters := range m.statsFn() {
		m.hits.WithLabelValues(name).Set(float64(counters.Hits))
		m.misses.WithLabelValues(name).Set(float64(counters.Misses))
		m.size.WithLabelValues(name).Set(float64(counters.Size))
	}
}

// ListenAndServe blocks serving scrapes until the server is shut down.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
