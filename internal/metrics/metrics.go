package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal counts HTTP requests by method, route and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldserve_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration observes request latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldserve_api_request_duration_seconds",
			Help:    "API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TenantRejectionsTotal counts requests the tenant guard turned away.
	TenantRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldserve_tenant_rejections_total",
			Help: "Requests rejected by the tenant guard",
		},
	)

	// JobsCreatedTotal counts jobs created, labeled by tenant.
	JobsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldserve_jobs_created_total",
			Help: "Jobs created",
		},
		[]string{"tenant_id"},
	)

	// InvoicesIssuedTotal counts invoices issued, labeled by tenant.
	InvoicesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldserve_invoices_issued_total",
			Help: "Invoices issued",
		},
		[]string{"tenant_id"},
	)
)
