package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	AssessmentsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessments_scored_total",
			Help: "Total number of scored assessments by overall severity",
		},
		[]string{"assessment", "severity"},
	)

	AssessmentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessments_rejected_total",
			Help: "Total number of rejected assessment submissions by error code",
		},
		[]string{"assessment", "error_code"},
	)

	DraftsApproved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_drafts_approved_total",
			Help: "Total number of blog drafts moved to approved",
		},
	)

	PostsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_posts_cache_lookups_total",
			Help: "Approved post listing cache lookups by result",
		},
		[]string{"result"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
