// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secador-solar/sensorhub/internal/logging"
)

// Assignment sources for ingested readings.
const (
	SourceActive  = "active"
	SourceGeneric = "generic"
)

// Service provides monitoring functionality
type Service struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	ingested *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// NewService creates a new monitoring service with its own registry
func NewService() *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensorhub",
			Name:      "events_total",
			Help:      "Domain events recorded by the hub.",
		}, []string{"event"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensorhub",
			Name:      "readings_ingested_total",
			Help:      "Readings stored, by how their ensayo was resolved.",
		}, []string{"source"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensorhub",
			Name:      "http_requests_total",
			Help:      "HTTP responses by method and status class.",
		}, []string{"method", "status"}),
	}

	registry.MustRegister(
		s.events,
		s.ingested,
		s.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// RecordEvent records a monitored event with labels. Labels go to the log
// only; the counter is keyed by event name to keep cardinality bounded.
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.events.WithLabelValues(eventName).Inc()
	logging.L.Infof("[Monitoring] Event %s recorded with labels: %s", eventName, formatLabels(labels))
}

// RecordReading counts an ingested reading by assignment source.
func (s *Service) RecordReading(source string) {
	s.ingested.WithLabelValues(source).Inc()
}

// RecordRequest counts an HTTP response.
func (s *Service) RecordRequest(method string, status int) {
	s.requests.WithLabelValues(method, statusClass(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}
