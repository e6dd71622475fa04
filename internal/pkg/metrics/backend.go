package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type BackendMetrics struct {
	Connected        prometheus.Gauge
	FetchErrorsTotal *prometheus.CounterVec
	FetchLatencyMS   *prometheus.HistogramVec
}

var (
	backendOnce sync.Once
	backend     *BackendMetrics
)

func Backend() *BackendMetrics {
	backendOnce.Do(func() {
		r := Registerer()
		backend = &BackendMetrics{
			Connected: promauto.With(r).NewGauge(prometheus.GaugeOpts{
				Name: "backend_connected",
				Help: "execution backend connectivity status (1=connected,0=disconnected)",
			}),
			FetchErrorsTotal: promauto.With(r).NewCounterVec(
				prometheus.CounterOpts{
					Name: "backend_fetch_errors_total",
					Help: "backend object fetch errors by object kind and code",
				},
				[]string{"kind", "code"},
			),
			FetchLatencyMS: promauto.With(r).NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "backend_fetch_latency_ms",
					Help:    "backend object fetch latency (ms)",
					Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000},
				},
				[]string{"kind"},
			),
		}
	})
	return backend
}
