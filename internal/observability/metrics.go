package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "impact_sim"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	SimulationsTotal *prometheus.CounterVec // labels: source={params,catalog}
	SimulationErrors *prometheus.CounterVec // labels: kind={invalid,missing_data,not_found,upstream,internal}
	ImpactEnergy     prometheus.Histogram
	ServiceReady     prometheus.Gauge

	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: upstream={neows,mapbox,overpass}, outcome={success,error,empty,not_found}
	UpstreamDuration *prometheus.HistogramVec // labels: upstream
	CacheLookups     *prometheus.CounterVec   // labels: cache={geocode,catalog}, result={hit,miss}
	GeocodeEnabled   prometheus.Gauge

	HTTPRequests *prometheus.CounterVec // labels: route, code

	// Result publishing metrics.
	EventsPublished  prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishBatchSize prometheus.Histogram
	PublisherRunning prometheus.Gauge
}

// NewMetrics creates all service metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SimulationsTotal,
		m.SimulationErrors,
		m.ImpactEnergy,
		m.ServiceReady,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.GeocodeEnabled,
		m.HTTPRequests,
		m.EventsPublished,
		m.PublishErrors,
		m.PublishBatchSize,
		m.PublisherRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SimulationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Completed impact simulations by input source.",
		}, []string{"source"}),
		SimulationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_errors_total",
			Help:      "Failed simulation requests by error kind.",
		}, []string{"kind"}),
		ImpactEnergy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "impact_energy_megatons",
			Help:      "Impact energy of simulated events in megatons of TNT.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 10, 12),
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_ready",
			Help:      "1 when the service accepts requests, 0 while draining.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"upstream"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocoding_enabled",
			Help:      "1 when Mapbox geocoding is enabled, 0 otherwise.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route pattern and status code.",
		}, []string{"route", "code"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Simulation results published to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Simulation results that could not be published to Kafka.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of simulation results per Kafka write.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publisher_running",
			Help:      "1 while the publish loop is running.",
		}),
	}
}

// ObserveUpstream records the outcome and latency of one upstream API call.
func (m *Metrics) ObserveUpstream(upstream, outcome string, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(upstream).Observe(d.Seconds())
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}
