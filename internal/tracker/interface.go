package tracker

import "context"

// TrackerStore defines the interface for interacting with players, events, damage and leaderboards.
// Write operations trust the caller to have passed the admin gate.
type TrackerStore interface {
	AddPlayers(ctx context.Context, single, bulk string) (int, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	CountPlayers(ctx context.Context) (int, error)

	GetOrCreateEvent(ctx context.Context, date Date, category Category) (int64, error)
	GetEvent(ctx context.Context, eventID int64) (*Event, error)

	LoadDamageSheet(ctx context.Context, eventID int64) ([]SheetRow, error)
	SaveDamage(ctx context.Context, eventID int64, rows []DamageRow) (int, error)

	CountEvents(ctx context.Context, category Category, windowStart *Date) (int, error)
	ComputeLeaderboard(ctx context.Context, category Category, windowStart *Date) ([]PlayerStat, error)
	GetLeaderboard(ctx context.Context, category Category, windowStart *Date) (*Leaderboard, error)
}
