package proaudio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proaudio_probe_total",
			Help: "Total number of backend probe attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	applyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proaudio_apply_total",
			Help: "Total number of settings applies by result",
		},
		[]string{"result"},
	)

	applyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proaudio_apply_duration_seconds",
			Help:    "Duration of settings applies including authorization and verification",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	applyInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proaudio_apply_in_flight",
			Help: "Number of elevated apply processes currently running",
		},
	)
)

func recordProbe(kind BackendKind, ok bool) {
	result := "miss"
	if ok {
		result = "hit"
	}
	probeTotal.WithLabelValues(kind.String(), result).Inc()
}
