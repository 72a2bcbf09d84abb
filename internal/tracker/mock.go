package tracker

import (
	"context"
	"sync"
)

var _ TrackerStore = (*MockStore)(nil)

// MockStore is a mock implementation of the TrackerStore interface for testing.
// It is safe for concurrent use. Methods without a Func return zero values.
type MockStore struct {
	mu sync.Mutex

	AddPlayersFunc         func(ctx context.Context, single, bulk string) (int, error)
	ListPlayersFunc        func(ctx context.Context) ([]Player, error)
	CountPlayersFunc       func(ctx context.Context) (int, error)
	GetOrCreateEventFunc   func(ctx context.Context, date Date, category Category) (int64, error)
	GetEventFunc           func(ctx context.Context, eventID int64) (*Event, error)
	LoadDamageSheetFunc    func(ctx context.Context, eventID int64) ([]SheetRow, error)
	SaveDamageFunc         func(ctx context.Context, eventID int64, rows []DamageRow) (int, error)
	CountEventsFunc        func(ctx context.Context, category Category, windowStart *Date) (int, error)
	ComputeLeaderboardFunc func(ctx context.Context, category Category, windowStart *Date) ([]PlayerStat, error)
	GetLeaderboardFunc     func(ctx context.Context, category Category, windowStart *Date) (*Leaderboard, error)

	// Call records
	AddPlayersCalls []struct {
		Single string
		Bulk   string
	}
	GetOrCreateEventCalls []struct {
		Date     Date
		Category Category
	}
	SaveDamageCalls []struct {
		EventID int64
		Rows    []DamageRow
	}
	GetLeaderboardCalls []struct {
		Category    Category
		WindowStart *Date
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayersCalls = nil
	m.GetOrCreateEventCalls = nil
	m.SaveDamageCalls = nil
	m.GetLeaderboardCalls = nil
}

func (m *MockStore) AddPlayers(ctx context.Context, single, bulk string) (int, error) {
	m.mu.Lock()
	m.AddPlayersCalls = append(m.AddPlayersCalls, struct {
		Single string
		Bulk   string
	}{single, bulk})
	fn := m.AddPlayersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, single, bulk)
	}
	return 0, nil
}

func (m *MockStore) ListPlayers(ctx context.Context) ([]Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(ctx)
	}
	return []Player{}, nil
}

func (m *MockStore) CountPlayers(ctx context.Context) (int, error) {
	if m.CountPlayersFunc != nil {
		return m.CountPlayersFunc(ctx)
	}
	return 0, nil
}

func (m *MockStore) GetOrCreateEvent(ctx context.Context, date Date, category Category) (int64, error) {
	m.mu.Lock()
	m.GetOrCreateEventCalls = append(m.GetOrCreateEventCalls, struct {
		Date     Date
		Category Category
	}{date, category})
	fn := m.GetOrCreateEventFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, date, category)
	}
	return 0, nil
}

func (m *MockStore) GetEvent(ctx context.Context, eventID int64) (*Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, eventID)
	}
	return nil, ErrEventNotFound
}

func (m *MockStore) LoadDamageSheet(ctx context.Context, eventID int64) ([]SheetRow, error) {
	if m.LoadDamageSheetFunc != nil {
		return m.LoadDamageSheetFunc(ctx, eventID)
	}
	return []SheetRow{}, nil
}

func (m *MockStore) SaveDamage(ctx context.Context, eventID int64, rows []DamageRow) (int, error) {
	m.mu.Lock()
	m.SaveDamageCalls = append(m.SaveDamageCalls, struct {
		EventID int64
		Rows    []DamageRow
	}{eventID, rows})
	fn := m.SaveDamageFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, eventID, rows)
	}
	return 0, nil
}

func (m *MockStore) CountEvents(ctx context.Context, category Category, windowStart *Date) (int, error) {
	if m.CountEventsFunc != nil {
		return m.CountEventsFunc(ctx, category, windowStart)
	}
	return 0, nil
}

func (m *MockStore) ComputeLeaderboard(ctx context.Context, category Category, windowStart *Date) ([]PlayerStat, error) {
	if m.ComputeLeaderboardFunc != nil {
		return m.ComputeLeaderboardFunc(ctx, category, windowStart)
	}
	return []PlayerStat{}, nil
}

func (m *MockStore) GetLeaderboard(ctx context.Context, category Category, windowStart *Date) (*Leaderboard, error) {
	m.mu.Lock()
	m.GetLeaderboardCalls = append(m.GetLeaderboardCalls, struct {
		Category    Category
		WindowStart *Date
	}{category, windowStart})
	fn := m.GetLeaderboardFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, category, windowStart)
	}
	return &Leaderboard{Category: category, WindowStart: windowStart, Entries: []PlayerStat{}}, nil
}
