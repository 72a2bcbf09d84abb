package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	PlayersSubmitted    prometheus.Counter
	EventsResolved      prometheus.Counter
	DamageRowsSaved     prometheus.Counter
	LeaderboardQueries  *prometheus.CounterVec
	LeaderboardDuration prometheus.Histogram
	RequestErrors       *prometheus.CounterVec
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}
