package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Report outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Metrics records pipeline activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reportsTotal   *prometheus.CounterVec
	sinkWrites     *prometheus.CounterVec
	inventoryFault prometheus.Counter
	qualityScore   prometheus.Gauge
	urgencyRate    prometheus.Gauge
}

// New creates the pipeline metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_reports_total",
				Help: "Reports generated, by type and outcome",
			},
			[]string{"report", "outcome"},
		),
		sinkWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_sink_writes_total",
				Help: "Documents written to the memory sink",
			},
			[]string{"report", "status"},
		),
		inventoryFault: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bizpulse_inventory_faults_total",
				Help: "Inventory listings that failed and were replaced by an empty inventory",
			},
		),
		qualityScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bizpulse_quality_score",
				Help: "Most recent data quality score (0-100)",
			},
		),
		urgencyRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bizpulse_support_urgency_rate",
				Help: "Most recent fraction of urgent tickets",
			},
		),
	}
	reg.MustRegister(m.reportsTotal, m.sinkWrites, m.inventoryFault, m.qualityScore, m.urgencyRate)
	return m
}

// ReportGenerated counts one report run.
func (m *Metrics) ReportGenerated(report, outcome string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(report, outcome).Inc()
}

// SinkWrite counts one sink write attempt.
func (m *Metrics) SinkWrite(report string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sinkWrites.WithLabelValues(report, status).Inc()
}

// InventoryFault counts a failed inventory listing.
func (m *Metrics) InventoryFault() {
	if m == nil {
		return
	}
	m.inventoryFault.Inc()
}

// ObserveQualityScore records the latest quality score.
func (m *Metrics) ObserveQualityScore(score int) {
	if m == nil {
		return
	}
	m.qualityScore.Set(float64(score))
}

// ObserveUrgencyRate records the latest urgency rate.
func (m *Metrics) ObserveUrgencyRate(rate float64) {
	if m == nil {
		return
	}
	m.urgencyRate.Set(rate)
}
