package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metric names shared by the client, pipeline and storage layers.
const (
	WeatherRequestsTotal   = "weather_requests_total"
	WeatherAPIDuration     = "weather_api_duration_seconds"
	PipelineEventsTotal    = "pipeline_events_total"
	StaleResponsesTotal    = "stale_responses_total"
	PersistenceErrorsTotal = "persistence_errors_total"
	HTTPRequestsTotal      = "http_requests_total"
	CacheHitRate           = "cache_hit_rate"
)

type Metrics struct {
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}

	m.addCounter(WeatherRequestsTotal, "Total number of weather API requests", "api", "status")
	m.addCounter(PipelineEventsTotal, "Total number of search pipeline events processed", "event")
	m.addCounter(StaleResponsesTotal, "Total number of superseded API responses dropped by the pipeline", "kind")
	m.addCounter(PersistenceErrorsTotal, "Total number of failed reads and writes of the last location", "op")
	m.addCounter(HTTPRequestsTotal, "Total number of companion API requests", "route", "status")

	m.histograms[WeatherAPIDuration] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    WeatherAPIDuration,
		Help:    "Duration of weather API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"api"})
	register(m.histograms[WeatherAPIDuration])

	m.gauges[CacheHitRate] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: CacheHitRate,
		Help: "Cache hit rate percentage",
	}, []string{"cache_type"})
	register(m.gauges[CacheHitRate])

	return m
}

func (m *Metrics) addCounter(name, help string, labels ...string) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	m.counters[name] = counter
	register(counter)
}

// register tolerates collectors that are already registered, which happens
// when several Metrics share the default registry.
func register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			panic(err)
		}
	}
}

// IncrementCounter is a no-op on a nil receiver so optional collectors can be omitted.
func (m *Metrics) IncrementCounter(name string, labelValues ...string) {
	if m == nil {
		return
	}
	if counter, exists := m.counters[name]; exists {
		counter.WithLabelValues(labelValues...).Inc()
	}
}

func (m *Metrics) ObserveHistogram(name string, value float64, labelValues ...string) {
	if m == nil {
		return
	}
	if histogram, exists := m.histograms[name]; exists {
		histogram.WithLabelValues(labelValues...).Observe(value)
	}
}

func (m *Metrics) SetGauge(name string, value float64, labelValues ...string) {
	if m == nil {
		return
	}
	if gauge, exists := m.gauges[name]; exists {
		gauge.WithLabelValues(labelValues...).Set(value)
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// CounterValue reads back the current value of a counter series, 0 if unknown.
func (m *Metrics) CounterValue(name string, labelValues ...string) float64 {
	if m == nil {
		return 0
	}
	counter, exists := m.counters[name]
	if !exists {
		return 0
	}
	c, err := counter.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return 0
	}

	dtoMetric := &dto.Metric{}
	if err := c.Write(dtoMetric); err != nil || dtoMetric.Counter == nil {
		return 0
	}
	return dtoMetric.Counter.GetValue()
}

// GetCacheHitRate returns the last recorded hit rate (0-100) for cacheType.
func (m *Metrics) GetCacheHitRate(cacheType string) float64 {
	if m == nil {
		return 0
	}
	gauge, exists := m.gauges[CacheHitRate]
	if !exists {
		return 0
	}

	g, err := gauge.GetMetricWithLabelValues(cacheType)
	if err != nil {
		return 0
	}

	dtoMetric := &dto.Metric{}
	if err := g.Write(dtoMetric); err != nil || dtoMetric.Gauge == nil {
		return 0
	}
	return dtoMetric.Gauge.GetValue()
}

// GetAverageResponseTime calculates the average weather API latency in
// milliseconds across all endpoints.
func (m *Metrics) GetAverageResponseTime() float64 {
	if m == nil {
		return 0
	}
	histogram, exists := m.histograms[WeatherAPIDuration]
	if !exists {
		return 0
	}

	metricChan := make(chan prometheus.Metric, 10)

	go func() {
		histogram.Collect(metricChan)
		close(metricChan)
	}()

	var totalSum float64
	var totalCount uint64

	for metric := range metricChan {
		dtoMetric := &dto.Metric{}
		if err := metric.Write(dtoMetric); err != nil {
			continue
		}

		if dtoMetric.Histogram != nil {
			totalSum += dtoMetric.Histogram.GetSampleSum()
			totalCount += dtoMetric.Histogram.GetSampleCount()
		}
	}

	if totalCount > 0 {
		avgSeconds := totalSum / float64(totalCount)
		return avgSeconds * 1000.0
	}

	return 0
}
