package http

import (
	"net/http"

	"github.com/vinkenoogm/ks-bear/internal/config"
	"github.com/vinkenoogm/ks-bear/internal/http/handlers"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/notifier"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

func NewServer(store tracker.TrackerStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	public := []Middleware{requestIDMiddleware, paramsMiddleware}
	admin := []Middleware{requestIDMiddleware, paramsMiddleware, s.adminMiddleware}
	slackCmd := []Middleware{requestIDMiddleware, paramsMiddleware, s.slackVerificationMiddleware}

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(handlers.HealthCheckHandler(), public...))
	s.Router.Handle("GET /api/leaderboard", Chain(handlers.LeaderboardHandler(s.Store, s.Metrics), public...))

	s.Router.Handle("POST /api/leaderboard/announce", Chain(handlers.AnnounceLeaderboardHandler(s.Store, s.Notifier, s.Metrics), admin...))
	s.Router.Handle("GET /api/players", Chain(handlers.ListPlayersHandler(s.Store, s.Metrics), admin...))
	s.Router.Handle("POST /api/players", Chain(handlers.AddPlayersHandler(s.Store, s.Metrics), admin...))
	s.Router.Handle("POST /api/events", Chain(handlers.CreateEventHandler(s.Store, s.Metrics), admin...))
	s.Router.Handle("GET /api/events/{id}", Chain(handlers.GetEventHandler(s.Store, s.Metrics), admin...))
	s.Router.Handle("GET /api/events/{id}/damage", Chain(handlers.DamageSheetHandler(s.Store, s.Metrics), admin...))
	s.Router.Handle("PUT /api/events/{id}/damage", Chain(handlers.SaveDamageHandler(s.Store, s.Notifier, s.Metrics), admin...))

	s.Router.Handle("POST /slack/command/leaderboard", Chain(handlers.LeaderboardCommandHandler(s.Store, s.Notifier, s.Metrics), slackCmd...))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
