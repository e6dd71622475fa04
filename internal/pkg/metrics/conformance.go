package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ConformanceMetrics struct {
	ChecksTotal      *prometheus.CounterVec
	VerdictsDeduped  prometheus.Counter
	PublishedTotal   *prometheus.CounterVec
	PublishLatencyMS prometheus.Histogram
}

var (
	conformanceOnce sync.Once
	conformance     *ConformanceMetrics
)

func Conformance() *ConformanceMetrics {
	conformanceOnce.Do(func() {
		r := Registerer()
		conformance = &ConformanceMetrics{
			ChecksTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{
					Name: "conformance_checks_total",
					Help: "outbound validation checks by object kind and result",
				},
				[]string{"kind", "result"},
			),
			VerdictsDeduped: promauto.With(r).NewCounter(prometheus.CounterOpts{
				Name: "conformance_verdicts_deduped_total",
				Help: "verdict store attempts that hit an existing marker",
			}),
			PublishedTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{
					Name: "conformance_verdicts_published_total",
					Help: "verdicts published to the event topic by result",
				},
				[]string{"result"},
			),
			PublishLatencyMS: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
				Name:    "conformance_publish_latency_ms",
				Help:    "verdict publish latency per attempt (ms)",
				Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000},
			}),
		}
	})
	return conformance
}
