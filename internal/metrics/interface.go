package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncPlayersSubmitted(n int)
	IncEventsResolved()
	AddDamageRowsSaved(n int)
	IncLeaderboardQueries(category string)
	ObserveLeaderboardDuration(duration float64)
	IncRequestErrors(route string, status int)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
