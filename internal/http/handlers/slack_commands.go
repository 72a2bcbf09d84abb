package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/notifier"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(slackMsg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// parseLeaderboardText parses the text of a /leaderboard command.
// Expected formats: "", "1", "trap 2", "trap2 7d", "trap 1 last 30 days".
// An empty text shows the all-time Trap 1 leaderboard.
func parseLeaderboardText(text string) (tracker.Category, tracker.Window, error) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return tracker.Trap1, tracker.WindowAll, nil
	}

	used := 1
	category, err := tracker.ParseCategory(parts[0])
	if err != nil && len(parts) > 1 {
		// "trap 1" arrives as two fields
		used = 2
		category, err = tracker.ParseCategory(parts[0] + parts[1])
	}
	if err != nil {
		return "", "", err
	}

	window, err := tracker.ParseWindow(strings.Join(parts[used:], " "))
	if err != nil {
		return "", "", err
	}
	return category, window, nil
}

func LeaderboardCommandHandler(store tracker.TrackerStore, n notifier.Notifier, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}

		text := r.FormValue("text")
		log.Info("Received leaderboard command", "text", text, "user", r.FormValue("user_name"))

		category, window, err := parseLeaderboardText(text)
		if err != nil {
			msg, ferr := n.FormatErrorResponse("Usage: /leaderboard [trap 1|trap 2] [all|7d|30d]")
			if ferr != nil {
				http.Error(w, "Failed to format response", http.StatusInternalServerError)
				return
			}
			respondWithSlackMsg(w, msg)
			return
		}

		scope := leaderboardScope{Category: category, Window: window, WindowStart: window.Start(time.Now())}
		board, err := computeLeaderboard(r.Context(), store, m, scope)
		if err != nil {
			log.Error("Failed to get leaderboard from store", "error", err)
			m.IncRequestErrors(r.Pattern, StatusForError(err))
			msg, ferr := n.FormatErrorResponse("The leaderboard is unavailable right now, try again later.")
			if ferr != nil {
				http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
				return
			}
			respondWithSlackMsg(w, msg)
			return
		}

		msg, err := n.FormatLeaderboardResponse(board, window)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}
