package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankStats(t *testing.T) {
	stats := []PlayerStat{
		{Name: "Zed", TotalDamage: 50, EventsAttended: 1},
		{Name: "Bob", TotalDamage: 100, EventsAttended: 2},
		{Name: "Amy", TotalDamage: 100, EventsAttended: 1},
		{Name: "Cat", TotalDamage: 10, EventsAttended: 1},
	}

	rankStats(stats, 3)

	names := make([]string, len(stats))
	ranks := make([]int, len(stats))
	for i, s := range stats {
		names[i] = s.Name
		ranks[i] = s.Rank
	}
	assert.Equal(t, []string{"Amy", "Bob", "Zed", "Cat"}, names)
	assert.Equal(t, []int{1, 1, 2, 3}, ranks)
	assert.Equal(t, 33.3, stats[0].AttendanceRate)
	assert.Equal(t, 66.7, stats[1].AttendanceRate)
	assert.Equal(t, int64(50), stats[1].AvgDamageWhenPresent)
}

func TestRankStats_Empty(t *testing.T) {
	var stats []PlayerStat
	rankStats(stats, 0)
	assert.Empty(t, stats)
}

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		attended, total int
		want            float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 1, 100},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{1, 6, 16.7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, attendanceRate(tt.attended, tt.total), "%d/%d", tt.attended, tt.total)
	}
}

func TestAvgWhenPresent(t *testing.T) {
	assert.Equal(t, int64(0), avgWhenPresent(0, 0))
	assert.Equal(t, int64(12), avgWhenPresent(25, 2))
	assert.Equal(t, int64(14), avgWhenPresent(27, 2))
	assert.Equal(t, int64(33), avgWhenPresent(100, 3))
}

func TestEventScope(t *testing.T) {
	where, args := eventScope("e", Trap1, nil)
	assert.Equal(t, "e.bear_label = ?", where)
	assert.Equal(t, []any{"Trap 1"}, args)

	start := Date{Year: 2024, Month: 1, Day: 5}
	where, args = eventScope("e", Trap2, &start)
	assert.Equal(t, "e.bear_label = ? AND e.event_date >= ?", where)
	assert.Equal(t, []any{"Trap 2", "2024-01-05"}, args)
}
