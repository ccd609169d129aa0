package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests 外部数据源请求次数，outcome: success / failure / rejected
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of requests sent to external movie providers",
		},
		[]string{"provider", "outcome"},
	)

	// ReconcilePasses 片库补全次数
	ReconcilePasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reconcile_passes_total",
			Help: "Total number of catalog reconciliation passes",
		},
		[]string{"trigger", "source"},
	)

	// ReconciledMovies 补全时单条记录的处理结果：upserted / recovered / skipped
	ReconciledMovies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reconciled_movies_total",
			Help: "Movies processed during reconciliation by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
