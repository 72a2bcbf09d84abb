package notifier

import (
	"context"
	"sync"

	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendLeaderboardCalls []struct {
		Board  *tracker.Leaderboard
		Window tracker.Window
		DryRun bool
	}
	SendDamageSavedCalls []struct {
		Event      *tracker.Event
		Saved      int
		Attendance int
		DryRun     bool
	}

	// Spies
	SendLeaderboardFunc           func(board *tracker.Leaderboard, window tracker.Window, dryRun bool) error
	SendDamageSavedFunc           func(event *tracker.Event, saved, attendance int, dryRun bool) error
	FormatLeaderboardResponseFunc func(board *tracker.Leaderboard, window tracker.Window) (any, error)
	FormatErrorResponseFunc       func(message string) (any, error)

	LastLeaderboardResponse any
	LastErrorResponse       any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = nil
	m.SendDamageSavedCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastErrorResponse = nil
}

func (m *Mock) SendLeaderboard(_ context.Context, board *tracker.Leaderboard, window tracker.Window, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		Board  *tracker.Leaderboard
		Window tracker.Window
		DryRun bool
	}{board, window, dryRun})
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(board, window, dryRun)
	}
	return nil
}

func (m *Mock) SendDamageSaved(_ context.Context, event *tracker.Event, saved, attendance int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDamageSavedCalls = append(m.SendDamageSavedCalls, struct {
		Event      *tracker.Event
		Saved      int
		Attendance int
		DryRun     bool
	}{event, saved, attendance, dryRun})
	if m.SendDamageSavedFunc != nil {
		return m.SendDamageSavedFunc(event, saved, attendance, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(board *tracker.Leaderboard, window tracker.Window) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(board, window)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatErrorResponse(message string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatErrorResponseFunc != nil {
		resp, err := m.FormatErrorResponseFunc(message)
		m.LastErrorResponse = resp
		return resp, err
	}
	return "formatted_error", nil
}

// SendLeaderboardCount returns how often SendLeaderboard was called.
func (m *Mock) SendLeaderboardCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendLeaderboardCalls)
}

// SendDamageSavedCount returns how often SendDamageSaved was called.
func (m *Mock) SendDamageSavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendDamageSavedCalls)
}
