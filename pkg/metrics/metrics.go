// Package metrics - счётчики Prometheus для списка тикетов и кеша запросов.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics держит свой реестр, чтобы тесты могли создавать сколько угодно экземпляров.
type Metrics struct {
	registry *prometheus.Registry

	QueryCacheHits   prometheus.Counter
	QueryCacheMisses prometheus.Counter
	QueryCacheErrors prometheus.Counter
	QueryRefreshes   prometheus.Counter
	RefreshDuration  prometheus.Histogram
	DatatablesServed prometheus.Counter
	Exports          prometheus.Counter
	HeaderRedirects  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		QueryCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "soporte_query_cache_hits_total",
			Help: "Ticket queries served from the Redis id cache",
		}),
		QueryCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "soporte_query_cache_misses_total",
			Help: "Ticket queries that had to be recomputed",
		}),
		QueryCacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "soporte_query_cache_errors_total",
			Help: "Redis errors while reading or writing the query cache",
		}),
		QueryRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "soporte_query_refreshes_total",
			Help: "Ticket query refreshes",
		}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "soporte_query_refresh_duration_seconds",
			Help:    "Time spent recomputing a ticket query",
			Buckets: prometheus.DefBuckets,
		}),
		DatatablesServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "soporte_datatables_requests_total",
			Help: "DataTables pages served",
		}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Name: "soporte_ticket_exports_total",
			Help: "Ticket list xlsx exports",
		}),
		HeaderRedirects: factory.NewCounter(prometheus.CounterOpts{
			Name: "soporte_header_search_redirects_total",
			Help: "Header searches that jumped straight to a ticket",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
