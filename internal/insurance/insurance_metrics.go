package insurance

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the insurance core.
type Metrics struct {
	PolicyholdersTotal *prometheus.CounterVec
	ClaimsTotal        *prometheus.CounterVec
	ClaimAmount        *prometheus.HistogramVec
	RejectedTotal      *prometheus.CounterVec
	HighRiskCurrent    prometheus.Gauge
	RiskAlertsTotal    *prometheus.CounterVec
	OpDuration         *prometheus.HistogramVec
}

// NewMetrics registers and returns insurance metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PolicyholdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimwatch_policyholders_registered_total",
			Help: "Total policyholders registered by policy type.",
		}, []string{"policy_type"}),
		ClaimsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimwatch_claims_total",
			Help: "Total claims filed by status.",
		}, []string{"status"}),
		ClaimAmount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claimwatch_claim_amount",
			Help:    "Amount of filed claims.",
			Buckets: prometheus.ExponentialBuckets(100, 4, 9), // 100 .. ~6.5M
		}, []string{"status"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimwatch_writes_rejected_total",
			Help: "Writes rejected before any mutation, by operation and reason.",
		}, []string{"op", "reason"}),
		HighRiskCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "claimwatch_high_risk_policyholders",
			Help: "Number of high-risk policyholders at the last evaluation.",
		}),
		RiskAlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimwatch_risk_alerts_total",
			Help: "Risk alert deliveries by result.",
		}, []string{"result"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claimwatch_operation_duration_seconds",
			Help:    "Duration of core operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 9), // 50us .. ~3.3s
		}, []string{"op", "outcome"}),
	}

	reg.MustRegister(
		m.PolicyholdersTotal,
		m.ClaimsTotal,
		m.ClaimAmount,
		m.RejectedTotal,
		m.HighRiskCurrent,
		m.RiskAlertsTotal,
		m.OpDuration,
	)

	return m
}

func (m *Metrics) observeOp(op string, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OpDuration.WithLabelValues(op, outcome).Observe(seconds)
}

func (m *Metrics) rejected(op string, err error) {
	if m == nil || err == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(op, rejectReason(err)).Inc()
}

func (m *Metrics) registered(ph *Policyholder) {
	if m == nil {
		return
	}
	m.PolicyholdersTotal.WithLabelValues(string(ph.PolicyType)).Inc()
}

func (m *Metrics) claimed(c *Claim) {
	if m == nil {
		return
	}
	m.ClaimsTotal.WithLabelValues(string(c.Status)).Inc()
	m.ClaimAmount.WithLabelValues(string(c.Status)).Observe(c.Amount)
}

func (m *Metrics) highRisk(n int) {
	if m == nil {
		return
	}
	m.HighRiskCurrent.Set(float64(n))
}

func (m *Metrics) alert(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.RiskAlertsTotal.WithLabelValues(result).Inc()
}

// rejectReason maps an error to a low-cardinality label.
func rejectReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "invalid_" + ve.Field
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return "not_found"
	}
	return "internal"
}
