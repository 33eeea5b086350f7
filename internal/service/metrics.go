package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_ai_requests_total",
			Help: "Total number of requests to the AI text API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyweaver_ai_request_duration_seconds",
			Help:    "Histogram of AI text API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyweaver_ai_prompt_tokens",
			Help:    "Histogram of estimated prompt token counts.",
			Buckets: prometheus.LinearBuckets(50, 50, 20),
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyweaver_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(50, 50, 20),
		},
		[]string{"model"},
	)
	ttsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_tts_requests_total",
			Help: "Total number of requests to the speech synthesis API.",
		},
		[]string{"model", "status"},
	)
	imageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_image_requests_total",
			Help: "Total number of requests to the image generation backend.",
		},
		[]string{"status"},
	)
)
