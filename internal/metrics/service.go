package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PlayersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bear_players_submitted_total",
			Help: "The total number of unique player names submitted to the roster.",
		}),
		EventsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bear_events_resolved_total",
			Help: "The total number of get-or-create event lookups.",
		}),
		DamageRowsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bear_damage_rows_saved_total",
			Help: "The total number of damage rows upserted.",
		}),
		LeaderboardQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bear_leaderboard_queries_total",
			Help: "The total number of leaderboards computed, by category.",
		}, []string{"category"}),
		LeaderboardDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bear_leaderboard_duration_seconds",
			Help:    "The duration of leaderboard computation.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bear_request_errors_total",
			Help: "The total number of requests answered with an error status.",
		}, []string{"route", "status"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bear_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bear_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bear_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.PlayersSubmitted,
		s.EventsResolved,
		s.DamageRowsSaved,
		s.LeaderboardQueries,
		s.LeaderboardDuration,
		s.RequestErrors,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncPlayersSubmitted(n int) {
	s.PlayersSubmitted.Add(float64(n))
}

func (s *Service) IncEventsResolved() {
	s.EventsResolved.Inc()
}

func (s *Service) AddDamageRowsSaved(n int) {
	s.DamageRowsSaved.Add(float64(n))
}

func (s *Service) IncLeaderboardQueries(category string) {
	s.LeaderboardQueries.WithLabelValues(category).Inc()
}

func (s *Service) ObserveLeaderboardDuration(duration float64) {
	s.LeaderboardDuration.Observe(duration)
}

func (s *Service) IncRequestErrors(route string, status int) {
	s.RequestErrors.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
