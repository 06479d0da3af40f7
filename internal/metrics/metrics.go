// Package metrics exposes the Prometheus collectors of the quiz engine.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheRequests counts cache lookups by key family and result (hit/miss/error).
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizzer_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"family", "result"},
	)

	// QuizzesCreated counts created sessions by question source (cache/generator).
	QuizzesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizzer_quizzes_created_total",
			Help: "Total number of quiz sessions created",
		},
		[]string{"source"},
	)

	// AnswersSubmitted counts accepted answers by correctness.
	AnswersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizzer_answers_submitted_total",
			Help: "Total number of accepted answers",
		},
		[]string{"correct"},
	)

	QuizzesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizzer_quizzes_completed_total",
			Help: "Total number of completed quiz sessions",
		},
	)

	// GenerationDuration observes question generator latency by outcome.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizzer_generation_duration_seconds",
			Help:    "Time spent generating questions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// InvalidationQueueDepth is the current backlog of the analytics worker.
	InvalidationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quizzer_invalidation_queue_depth",
			Help: "Pending analytics invalidations",
		},
	)
)

// Handler serves the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
