// Package metrics holds the domain counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder struct {
	transitions    *prometheus.CounterVec
	recalculations *prometheus.CounterVec
	reportTotals   prometheus.Histogram
}

// NewRecorder registers the domain collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expense_report_transitions_total",
				Help: "Report status transitions by source and target status",
			},
			[]string{"from", "to"},
		),
		recalculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expense_report_total_recalculations_total",
				Help: "Report total recomputations by triggering operation",
			},
			[]string{"trigger"},
		),
		reportTotals: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "expense_report_total_amount",
			Help:    "Report totals observed after recomputation",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
	}
}

func (r *Recorder) ObserveTransition(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}

func (r *Recorder) ObserveRecalculation(trigger string, total float64) {
	r.recalculations.WithLabelValues(trigger).Inc()
	r.reportTotals.Observe(total)
}
