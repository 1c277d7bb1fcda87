package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prinsights_runs_total",
		Help: "Labeling runs by outcome.",
	}, []string{"outcome"})

	labelsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prinsights_labels_applied_total",
		Help: "Labels decided per run, by the classifier that produced them.",
	}, []string{"category"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prinsights_run_duration_seconds",
		Help:    "Wall time of a labeling run.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)
