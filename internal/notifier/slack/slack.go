package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/notifier"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxLeaderboardEntries keeps a leaderboard message below Slack's 50 block limit.
const maxLeaderboardEntries = 40

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
// A Notifier without an API client or channel formats messages but never posts them.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	printer   *message.Printer
}

// NewNotifier creates a new Notifier. An empty token disables posting.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	var api slackClient
	if token != "" {
		api = slack.New(token)
	}
	return NewNotifierWithAPI(api, channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		printer:   message.NewPrinter(language.English),
	}
}

// Enabled reports whether messages are actually posted.
func (s *Notifier) Enabled() bool {
	return s.api != nil && s.channelID != ""
}

func (s *Notifier) sendMessage(ctx context.Context, msg slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(msg, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}
	if !s.Enabled() {
		log.Debug("Slack is not configured, skipping message")
		return "", "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(msg.Blocks.BlockSet...),
		slack.MsgOptionText(msg.Text, false),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendLeaderboard(ctx context.Context, board *tracker.Leaderboard, window tracker.Window, dryRun bool) error {
	msg := s.formatLeaderboard(board, window)
	_, _, err := s.sendMessage(ctx, msg, dryRun)
	return err
}

func (s *Notifier) SendDamageSaved(ctx context.Context, event *tracker.Event, saved, attendance int, dryRun bool) error {
	msg := s.formatDamageSaved(event, saved, attendance)
	_, _, err := s.sendMessage(ctx, msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(board *tracker.Leaderboard, window tracker.Window) (any, error) {
	if board == nil {
		return nil, fmt.Errorf("leaderboard is required")
	}
	return s.formatLeaderboard(board, window), nil
}

// FormatErrorResponse formats a short ephemeral error for a slash command response.
func (s *Notifier) FormatErrorResponse(text string) (any, error) {
	msg := slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, ":warning: "+text, false, false), nil, nil),
	)
	msg.Text = text
	msg.ResponseType = slack.ResponseTypeEphemeral
	return msg, nil
}

// formatLeaderboard creates the Slack message for a ranked leaderboard using Block Kit.
func (s *Notifier) formatLeaderboard(board *tracker.Leaderboard, window tracker.Window) slack.Message {
	blocks := make([]slack.Block, 0, len(board.Entries)+4)

	title := fmt.Sprintf("🐻 %s Leaderboard", board.Category)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)))

	label := window.Label()
	switch {
	case window == tracker.WindowSince && board.WindowStart != nil:
		label = fmt.Sprintf("Since %s", board.WindowStart)
	case window == tracker.WindowSince:
		label = tracker.WindowAll.Label()
	case board.WindowStart != nil:
		label = fmt.Sprintf("%s (since %s)", label, board.WindowStart)
	}
	scope := fmt.Sprintf("%s | Total events in window: %d", label, board.TotalEvents)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, scope, false, false)))

	if len(board.Entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.PlainTextType, "No damage data for this time window yet.", true, false), nil, nil))
		msg := slack.NewBlockMessage(blocks...)
		msg.Text = title
		msg.ResponseType = slack.ResponseTypeInChannel
		return msg
	}

	for i, stat := range board.Entries {
		if i == maxLeaderboardEntries {
			rest := fmt.Sprintf("…and %d more", len(board.Entries)-maxLeaderboardEntries)
			blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject(slack.PlainTextType, rest, true, false)))
			break
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, s.formatStat(stat), false, false), nil, nil))
	}

	msg := slack.NewBlockMessage(blocks...)
	msg.Text = title
	msg.ResponseType = slack.ResponseTypeInChannel
	return msg
}

func (s *Notifier) formatStat(stat tracker.PlayerStat) string {
	var medal string
	switch stat.Rank {
	case 1:
		medal = "🥇 "
	case 2:
		medal = "🥈 "
	case 3:
		medal = "🥉 "
	}
	return s.printer.Sprintf("%d. %s*%s*\n> Total: %d | Attended: %d (%.1f%%) | Avg when present: %d",
		stat.Rank,
		medal,
		stat.Name,
		stat.TotalDamage,
		stat.EventsAttended,
		stat.AttendanceRate,
		stat.AvgDamageWhenPresent,
	)
}

// formatDamageSaved creates the summary posted after an event's damage sheet was saved.
func (s *Notifier) formatDamageSaved(event *tracker.Event, saved, attendance int) slack.Message {
	text := fmt.Sprintf("💾 Damage saved for %s on %s", event.Category, event.Date)
	details := fmt.Sprintf("Event #%d | %d rows saved | %d players attended", event.ID, saved, attendance)

	msg := slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "*"+text+"*", false, false), nil, nil),
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.PlainTextType, details, true, false)),
	)
	msg.Text = text
	return msg
}
