package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks handler activity as Prometheus counters. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Written   *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Rotations prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg.
// A nil reg creates unregistered counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Written: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "applog",
				Name:      "records_written_total",
				Help:      "Log records successfully delivered, by handler",
			},
			[]string{"handler"},
		),
		Failed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "applog",
				Name:      "records_failed_total",
				Help:      "Log records a handler failed to deliver, by handler",
			},
			[]string{"handler"},
		),
		Rotations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "applog",
				Name:      "file_rotations_total",
				Help:      "Rotations performed by rotating file handlers",
			},
		),
	}
}

func (m *Metrics) written(handler string) {
	if m == nil {
		return
	}
	m.Written.WithLabelValues(handler).Inc()
}

func (m *Metrics) failed(handler string) {
	if m == nil {
		return
	}
	m.Failed.WithLabelValues(handler).Inc()
}

func (m *Metrics) rotated() {
	if m == nil {
		return
	}
	m.Rotations.Inc()
}
