package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus metrics for the refresh job and the dashboard

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_api_calls_total",
			Help: "Total number of stats provider API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Refresh metrics
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_refresh_runs_total",
			Help: "Total number of refresh runs",
		},
		[]string{"team", "status"},
	)

	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_refresh_duration_seconds",
			Help:    "Duration of refresh runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"team"},
	)

	RowsAppendedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_rows_appended_total",
			Help: "Total number of rows appended to the team data files",
		},
		[]string{"team", "file"},
	)

	GamesRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nba_games_remaining",
			Help: "New games left for later runs after the per-run cap",
		},
		[]string{"team"},
	)

	LastSuccessfulRefresh = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nba_last_successful_refresh_timestamp",
			Help: "Timestamp of last successful refresh run",
		},
		[]string{"team"},
	)

	// Mirror metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// Dashboard metrics
	DashboardViewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_dashboard_views_total",
			Help: "Total number of dashboard view requests",
		},
		[]string{"view", "status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRefresh records a finished refresh run
func RecordRefresh(team, status string, duration float64) {
	RefreshRunsTotal.WithLabelValues(team, status).Inc()
	RefreshDuration.WithLabelValues(team).Observe(duration)

	if status == "success" {
		LastSuccessfulRefresh.WithLabelValues(team).SetToCurrentTime()
	}
}

// RecordRowsAppended records rows written to one of the team files
func RecordRowsAppended(team, file string, n int) {
	if n > 0 {
		RowsAppendedTotal.WithLabelValues(team, file).Add(float64(n))
	}
}

// SetGamesRemaining records the backlog left by the per-run cap
func SetGamesRemaining(team string, n int) {
	GamesRemaining.WithLabelValues(team).Set(float64(n))
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordDashboardView records a dashboard view request
func RecordDashboardView(view, status string) {
	DashboardViewsTotal.WithLabelValues(view, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// Push sends the default registry to a Pushgateway. One-shot refresh runs
// exit before any scrape, so they push instead.
func Push(url, job, team string) error {
	err := push.New(url, job).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("team", team).
		Push()
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
