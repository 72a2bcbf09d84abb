package notifier

import (
	"context"

	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

// Notifier defines a high-level interface for sending notifications about tracker activity.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// Posts a leaderboard to the configured channel
	SendLeaderboard(ctx context.Context, board *tracker.Leaderboard, window tracker.Window, dryRun bool) error
	// Posts a summary after damage for an event was saved
	SendDamageSaved(ctx context.Context, event *tracker.Event, saved, attendance int, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(board *tracker.Leaderboard, window tracker.Window) (any, error)
	FormatErrorResponse(message string) (any, error)
}
