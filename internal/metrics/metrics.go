package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"catalogconsole/internal/store"
)

// Outcomes recorded on the counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ConsoleMetrics records store traffic and session resolutions.
type ConsoleMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	resolutions *prometheus.CounterVec
}

// New registers the console metrics on reg. A nil registerer gives a no-op recorder.
func New(reg prometheus.Registerer) *ConsoleMetrics {
	if reg == nil {
		return &ConsoleMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_store_requests_total",
		Help: "Completed catalog API requests issued by resource stores.",
	}, []string{"resource", "op", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_store_request_duration_seconds",
		Help:    "Duration of catalog API requests issued by resource stores.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "op"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_auth_resolutions_total",
		Help: "Who-am-i resolutions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(requests, duration, resolutions)
	return &ConsoleMetrics{requests: requests, duration: duration, resolutions: resolutions}
}

// ObserveStore is a store listener. Pending phases are ignored.
func (m *ConsoleMetrics) ObserveStore(ev store.Event) {
	if m == nil || m.requests == nil {
		return
	}
	var outcome string
	switch ev.Phase {
	case store.PhaseFulfilled:
		outcome = OutcomeSuccess
	case store.PhaseRejected:
		outcome = OutcomeFailure
	default:
		return
	}
	resource := normalizeLabel(ev.Resource)
	m.requests.WithLabelValues(resource, string(ev.Op), outcome).Inc()
	m.duration.WithLabelValues(resource, string(ev.Op)).Observe(ev.Duration.Seconds())
}

func (m *ConsoleMetrics) IncResolution(outcome string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
