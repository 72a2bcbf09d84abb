package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	playersSubmitted     int
	eventsResolved       int
	damageRowsSaved      int
	leaderboardQueries   map[string]int
	leaderboardDurations []float64
	requestErrors        map[int]int
	slackNotifSent       int
	slackNotifFailed     int
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		leaderboardQueries:   make(map[string]int),
		leaderboardDurations: make([]float64, 0),
		requestErrors:        make(map[int]int),
	}
}

func (m *Mock) IncPlayersSubmitted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersSubmitted += n
}

func (m *Mock) IncEventsResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsResolved++
}

func (m *Mock) AddDamageRowsSaved(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.damageRowsSaved += n
}

func (m *Mock) IncLeaderboardQueries(category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardQueries[category]++
}

func (m *Mock) ObserveLeaderboardDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardDurations = append(m.leaderboardDurations, duration)
}

func (m *Mock) IncRequestErrors(_ string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestErrors[status]++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// PlayersSubmitted returns the sum of all IncPlayersSubmitted calls.
func (m *Mock) PlayersSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersSubmitted
}

// EventsResolved returns the number of times IncEventsResolved was called.
func (m *Mock) EventsResolved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsResolved
}

// DamageRowsSaved returns the sum of all AddDamageRowsSaved calls.
func (m *Mock) DamageRowsSaved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.damageRowsSaved
}

// LeaderboardQueries returns how often a leaderboard was computed for category.
func (m *Mock) LeaderboardQueries(category string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardQueries[category]
}

// LeaderboardDurations returns every observed duration.
func (m *Mock) LeaderboardDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.leaderboardDurations...)
}

// RequestErrors returns how many errors were recorded with the given status.
func (m *Mock) RequestErrors(status int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestErrors[status]
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// StartupTime returns the last value passed to SetStartupTime.
func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
