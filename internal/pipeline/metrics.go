package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_pipeline_stage_requests_total",
			Help: "Total number of pipeline stage invocations.",
		},
		[]string{"stage", "status"},
	)
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyweaver_pipeline_stage_duration_seconds",
			Help:    "Histogram of pipeline stage durations.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s .. ~200s
		},
		[]string{"stage"},
	)
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_pipeline_runs_total",
			Help: "Total number of full pipeline runs.",
		},
		[]string{"status"},
	)
	sceneCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storyweaver_pipeline_scenes",
			Help:    "Histogram of scene counts returned by the segmenter.",
			Buckets: prometheus.LinearBuckets(1, 1, 12),
		},
	)
)
