package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/notifier"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

// leaderboardScope is the category and window requested through query parameters.
type leaderboardScope struct {
	Category    tracker.Category
	Window      tracker.Window
	WindowStart *tracker.Date
}

// parseLeaderboardScope reads category, window and since. since (YYYY-MM-DD) takes precedence over window.
func parseLeaderboardScope(r *http.Request, now time.Time) (leaderboardScope, error) {
	q := r.URL.Query()

	category, err := tracker.ParseCategory(q.Get("category"))
	if err != nil {
		return leaderboardScope{}, err
	}
	window, err := tracker.ParseWindow(q.Get("window"))
	if err != nil {
		return leaderboardScope{}, err
	}
	scope := leaderboardScope{Category: category, Window: window, WindowStart: window.Start(now)}

	if since := q.Get("since"); since != "" {
		start, err := tracker.ParseDate(since)
		if err != nil {
			return leaderboardScope{}, err
		}
		scope.Window = tracker.WindowSince
		scope.WindowStart = &start
	}
	return scope, nil
}

// computeLeaderboard loads a leaderboard and records how long it took.
func computeLeaderboard(ctx context.Context, store tracker.TrackerStore, m metrics.Metrics, scope leaderboardScope) (*tracker.Leaderboard, error) {
	start := time.Now()
	board, err := store.GetLeaderboard(ctx, scope.Category, scope.WindowStart)
	if err != nil {
		return nil, err
	}
	m.IncLeaderboardQueries(string(scope.Category))
	m.ObserveLeaderboardDuration(time.Since(start).Seconds())
	return board, nil
}

// LeaderboardHandler serves the ranked leaderboard for one category.
func LeaderboardHandler(store tracker.TrackerStore, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := parseLeaderboardScope(r, time.Now())
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}

		board, err := computeLeaderboard(r.Context(), store, m, scope)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		log.Debug("Serving leaderboard", "category", scope.Category, "window", scope.Window, "entries", len(board.Entries))
		Respond(w, r, http.StatusOK, board)
	}
}

// AnnounceLeaderboardHandler posts the leaderboard to the Slack channel and returns it.
func AnnounceLeaderboardHandler(store tracker.TrackerStore, n notifier.Notifier, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := parseLeaderboardScope(r, time.Now())
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}

		board, err := computeLeaderboard(r.Context(), store, m, scope)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}

		if err := n.SendLeaderboard(r.Context(), board, scope.Window, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to announce leaderboard", "error", err, "category", scope.Category)
			RespondError(w, r, m, http.StatusBadGateway, "Failed to post leaderboard to Slack")
			return
		}
		log.Info("Announced leaderboard", "category", scope.Category, "window", scope.Window)
		Respond(w, r, http.StatusOK, board)
	}
}
