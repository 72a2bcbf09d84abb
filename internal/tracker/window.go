package tracker

import (
	"fmt"
	"strings"
	"time"
)

// Window is a leaderboard time range ending today.
type Window string

const (
	WindowAll    Window = "all"
	Window7Days  Window = "7d"
	Window30Days Window = "30d"

	// WindowSince is a window starting at a caller-chosen date. ParseWindow never returns it.
	WindowSince Window = "since"
)

// Windows returns every window in display order.
func Windows() []Window {
	return []Window{WindowAll, Window7Days, Window30Days}
}

// ParseWindow accepts the short names and the display labels. An empty string means all-time.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "all-time", "alltime":
		return WindowAll, nil
	case "7d", "7", "week", "last 7 days":
		return Window7Days, nil
	case "30d", "30", "month", "last 30 days":
		return Window30Days, nil
	}
	return "", fmt.Errorf("%w: unknown window %q", ErrValidation, s)
}

// Start returns the first day included in the window relative to now, or nil for all-time.
// WindowSince also returns nil; its start comes from the caller.
func (w Window) Start(now time.Time) *Date {
	var days int
	switch w {
	case Window7Days:
		days = 7
	case Window30Days:
		days = 30
	default:
		return nil
	}
	start := DateOf(now).AddDays(-days)
	return &start
}

// Label returns the display name of the window.
func (w Window) Label() string {
	switch w {
	case Window7Days:
		return "Last 7 days"
	case Window30Days:
		return "Last 30 days"
	case WindowSince:
		return "Since"
	default:
		return "All-time"
	}
}
