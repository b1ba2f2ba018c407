package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "classifyd",
			Subsystem: "inference",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each inference pipeline stage",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "model",
			Name:      "loads_total",
			Help:      "Total model load requests by outcome",
		},
		[]string{"result"},
	)

	inferencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifyd",
			Subsystem: "inference",
			Name:      "requests_total",
			Help:      "Total inference calls by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(stageDuration, modelLoadsTotal, inferencesTotal)
}
