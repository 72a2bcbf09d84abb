package http

import (
	"net/http"

	"github.com/vinkenoogm/ks-bear/internal/config"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/notifier"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

type Server struct {
	Store          tracker.TrackerStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
}
