package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// CacheRequests counts lookups; tier is memory or store, result is hit or miss.
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_analysis_cache_requests_total",
			Help: "Cost analysis cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_analysis_provider_requests_total",
			Help: "External provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cost_analysis_provider_latency_seconds",
			Help:    "External provider call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	SalaryTierSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_analysis_salary_source_total",
			Help: "Salary tier chosen by aggregation",
		},
		[]string{"source"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cost_analysis_duration_seconds",
			Help:    "End-to-end analysis duration by entry point",
			Buckets: []float64{0.005, 0.05, 0.25, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	FallbackAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_analysis_fallback_total",
			Help: "Analyses served from baseline figures, by reason",
		},
		[]string{"reason"},
	)

	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_analysis_insights_total",
			Help: "Insight sets by generator (llm, llm-heuristic, template)",
		},
		[]string{"generated_by"},
	)
)
