package similarity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indexBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "similarity_index_builds_total",
		Help: "Number of full similarity index builds performed.",
	})
	indexBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "similarity_index_build_seconds",
		Help:    "Wall time of full similarity index builds.",
		Buckets: prometheus.DefBuckets,
	})
)
