// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundmap_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SessionsCreated counts sessions issued by surface (login, register).
	SessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundmap_sessions_created_total",
		Help: "Total number of sessions created",
	}, []string{"surface"})

	// UploadsTotal counts audio upload attempts by outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundmap_audio_uploads_total",
		Help: "Total number of audio upload attempts by outcome",
	}, []string{"outcome"})

	// UploadBytes records the size distribution of accepted audio uploads.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "soundmap_audio_upload_bytes",
		Help:    "Size in bytes of accepted audio uploads",
		Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
	})

	// RateLimitRejections counts requests rejected by the rate limiter, by scope.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundmap_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"scope"})
)
