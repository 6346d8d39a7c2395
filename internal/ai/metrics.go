package ai

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels of notekeeper_ai_requests_total.
const (
	OutcomeOK          = "ok"
	OutcomeDisabled    = "disabled"
	OutcomeRateLimited = "rate_limited"
	OutcomeQuota       = "quota"
	OutcomeAuth        = "auth"
	OutcomeError       = "error"
	OutcomeEmpty       = "empty"
	OutcomeMalformed   = "malformed"
)

type Metrics struct {
	requests *prometheus.CounterVec
}

// NewMetrics creates the analysis counters and registers them with reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notekeeper_ai_requests_total",
				Help: "Analysis requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests)
	}
	return m
}

func (m *Metrics) observe(kind Kind, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(kind), outcome).Inc()
}
