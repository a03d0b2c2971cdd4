package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plz-territory-go/internal/region"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	StoreOperationsTotal *prometheus.CounterVec

	RegionsAssigned   prometheus.Gauge
	RegionsUnassigned prometheus.Gauge
}

// NewMetrics creates all collectors and registers them on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plz",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "plz",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		StoreOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plz",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Region store operations by outcome",
		}, []string{"op", "outcome"}),

		RegionsAssigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plz",
			Subsystem: "store",
			Name:      "regions_assigned",
			Help:      "Regions with a representative at the last snapshot",
		}),
		RegionsUnassigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plz",
			Subsystem: "store",
			Name:      "regions_unassigned",
			Help:      "Regions without a representative at the last snapshot",
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StoreOperationsTotal,
		m.RegionsAssigned,
		m.RegionsUnassigned,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveOperation implements region.Observer
func (m *Metrics) ObserveOperation(op string, err error) {
	outcome := "ok"
	switch region.KindOf(err) {
	case 0:
		if err != nil {
			outcome = "error"
		}
	case region.KindValidation:
		outcome = "validation"
	case region.KindConflict:
		outcome = "conflict"
	case region.KindNotFound:
		outcome = "not_found"
	case region.KindStorageUnavailable:
		outcome = "storage_unavailable"
	}
	m.StoreOperationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveSnapshot implements region.Observer
func (m *Metrics) ObserveSnapshot(assigned, unassigned int) {
	m.RegionsAssigned.Set(float64(assigned))
	m.RegionsUnassigned.Set(float64(unassigned))
}

var _ region.Observer = (*Metrics)(nil)
