package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway collectors. A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	apiCalls    *prometheus.HistogramVec
	reloads     *prometheus.CounterVec
}

// New registers the collectors on reg. A nil registerer yields a no-op value.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order transitions by family, action and outcome.",
	}, []string{"family", "action", "outcome"})
	apiCalls := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_api_request_duration_seconds",
		Help:    "Duration of Order API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_view_reloads_total",
		Help: "Order list reloads by family and outcome.",
	}, []string{"family", "outcome"})
	reg.MustRegister(transitions, apiCalls, reloads)
	return &Metrics{
		transitions: transitions,
		apiCalls:    apiCalls,
		reloads:     reloads,
	}
}

func (m *Metrics) IncTransition(family, action, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(family), normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// ObserveCall implements orderapi.Observer.
func (m *Metrics) ObserveCall(operation string, d time.Duration, err error) {
	if m == nil || m.apiCalls == nil {
		return
	}
	m.apiCalls.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

func (m *Metrics) IncReload(family string, err error) {
	if m == nil || m.reloads == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.reloads.WithLabelValues(normalizeLabel(family), outcome).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
