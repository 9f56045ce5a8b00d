// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Trading metrics
	TradesExecuted  *prometheus.CounterVec
	TradesRejected  *prometheus.CounterVec
	TradeSolVolume  *prometheus.CounterVec
	TradeDuration   *prometheus.HistogramVec
	TokensGraduated prometheus.Counter
	FeesAccrued     prometheus.Counter
	FeesClaimed     prometheus.Counter

	// Launch metrics
	TokensLaunched prometheus.Counter
	LaunchesFailed *prometheus.CounterVec
	RugScores      prometheus.Histogram

	// Ledger metrics
	LedgerSubmissions *prometheus.CounterVec
	LedgerLatency     prometheus.Histogram

	// Projection metrics
	HolderRebuilds    prometheus.Counter
	HistoryRebuilds   prometheus.Counter
	ProjectionLatency *prometheus.HistogramVec

	// Stream metrics
	StreamClients        prometheus.Gauge
	StreamClientsDropped prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	UptimeSeconds prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "meme_launchpad"
	}

	return &Metrics{
		// Trading metrics
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_executed_total",
			Help:      "Total number of settled trades by direction",
		}, []string{"direction"}),
		TradesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_rejected_total",
			Help:      "Total number of rejected trades by code",
		}, []string{"code"}),
		TradeSolVolume: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "sol_volume_total",
			Help:      "Total SOL volume settled by direction",
		}, []string{"direction"}),
		TradeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trade_duration_seconds",
			Help:      "End-to-end trade execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
		TokensGraduated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "tokens_graduated_total",
			Help:      "Total number of tokens that graduated off the curve",
		}),
		FeesAccrued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "accrued_sol_total",
			Help:      "Total creator fees accrued in SOL",
		}),
		FeesClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "claimed_sol_total",
			Help:      "Total creator fees claimed in SOL",
		}),

		// Launch metrics
		TokensLaunched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "tokens_launched_total",
			Help:      "Total number of tokens created",
		}),
		LaunchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "failures_total",
			Help:      "Total number of failed launches by code",
		}, []string{"code"}),
		RugScores: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "rug_score",
			Help:      "Risk score distribution of launched tokens",
			Buckets:   []float64{15, 30, 50, 70, 85, 100},
		}),

		// Ledger metrics
		LedgerSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "submissions_total",
			Help:      "Total ledger submissions by outcome",
		}, []string{"outcome"}),
		LedgerLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "submission_latency_seconds",
			Help:      "Ledger submission latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Projection metrics
		HolderRebuilds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projections",
			Name:      "holder_rebuilds_total",
			Help:      "Total holder projection rebuilds",
		}),
		HistoryRebuilds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projections",
			Name:      "history_rebuilds_total",
			Help:      "Total price history view rebuilds",
		}),
		ProjectionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "projections",
			Name:      "build_latency_seconds",
			Help:      "Projection build latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"projection"}),

		// Stream metrics
		StreamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Currently connected WebSocket clients",
		}),
		StreamClientsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients_dropped_total",
			Help:      "Total slow WebSocket clients disconnected",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTrade records a settled trade.
func RecordTrade(direction string, solAmount, durationSeconds float64) {
	DefaultMetrics.TradesExecuted.WithLabelValues(direction).Inc()
	DefaultMetrics.TradeSolVolume.WithLabelValues(direction).Add(solAmount)
	DefaultMetrics.TradeDuration.WithLabelValues(direction).Observe(durationSeconds)
}

// RecordRejection records a rejected trade by its stable code.
func RecordRejection(code string) {
	DefaultMetrics.TradesRejected.WithLabelValues(code).Inc()
}

// RecordGraduation increments the graduation counter.
func RecordGraduation() {
	DefaultMetrics.TokensGraduated.Inc()
}

// RecordFees records accrued creator fees.
func RecordFees(sol float64) {
	DefaultMetrics.FeesAccrued.Add(sol)
}

// RecordClaim records a creator fee claim.
func RecordClaim(sol float64) {
	DefaultMetrics.FeesClaimed.Add(sol)
}

// RecordLaunch records a successful token launch.
func RecordLaunch(rugScore int) {
	DefaultMetrics.TokensLaunched.Inc()
	DefaultMetrics.RugScores.Observe(float64(rugScore))
}

// RecordLaunchFailure records a failed launch by code.
func RecordLaunchFailure(code string) {
	DefaultMetrics.LaunchesFailed.WithLabelValues(code).Inc()
}

// RecordLedgerSubmission records a ledger submission outcome.
func RecordLedgerSubmission(outcome string, seconds float64) {
	DefaultMetrics.LedgerSubmissions.WithLabelValues(outcome).Inc()
	DefaultMetrics.LedgerLatency.Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
