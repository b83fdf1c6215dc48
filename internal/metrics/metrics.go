package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	ExpensesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "expenses_total",
			Help: "Total expenses recorded",
		},
	)
	SettlementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Total settlements recorded",
		},
	)
	DebtOptimizationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "debt_optimizations_total",
			Help: "Total successful debt optimization runs",
		},
	)
	LedgerRewriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_rewrite_failures_total",
			Help: "Debt optimization rewrites rolled back on error",
		},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(ExpensesTotal)
	prometheus.MustRegister(SettlementsTotal)
	prometheus.MustRegister(DebtOptimizationsTotal)
	prometheus.MustRegister(LedgerRewriteFailures)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
