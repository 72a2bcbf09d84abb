package tracker

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// eventScope builds the WHERE clause selecting the events of a category, optionally from windowStart on.
// The window has no upper bound.
func eventScope(alias string, category Category, windowStart *Date) (string, []any) {
	clauses := []string{alias + ".bear_label = ?"}
	args := []any{string(category)}
	if windowStart != nil {
		clauses = append(clauses, alias+".event_date >= ?")
		args = append(args, windowStart.String())
	}
	return strings.Join(clauses, " AND "), args
}

func validateScope(category Category, windowStart *Date) error {
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if windowStart != nil && windowStart.IsZero() {
		return fmt.Errorf("%w: window start must be a date", ErrValidation)
	}
	return nil
}

// CountEvents counts the events of a category held on or after windowStart. A nil windowStart counts all of them.
func (s *store) CountEvents(ctx context.Context, category Category, windowStart *Date) (int, error) {
	if err := validateScope(category, windowStart); err != nil {
		return 0, err
	}
	return s.countEvents(ctx, s.db, category, windowStart)
}

func (s *store) countEvents(ctx context.Context, q queryer, category Category, windowStart *Date) (int, error) {
	where, args := eventScope("e", category, windowStart)
	var count int
	err := q.QueryRowContext(ctx, s.db.Rebind("SELECT COUNT(*) FROM events e WHERE "+where), args...).Scan(&count)
	if err != nil {
		log.Error("Failed to count events", "error", err, "category", category)
		return 0, storeError("count events", err)
	}
	return count, nil
}

// ComputeLeaderboard aggregates damage per player over the events in scope and ranks the result.
// Players whose total in scope is 0 are left out.
func (s *store) ComputeLeaderboard(ctx context.Context, category Category, windowStart *Date) ([]PlayerStat, error) {
	board, err := s.GetLeaderboard(ctx, category, windowStart)
	if err != nil {
		return nil, err
	}
	return board.Entries, nil
}

// GetLeaderboard computes the leaderboard together with the event count it was rated against.
// Both are read in one transaction so the attendance rates match the reported total.
func (s *store) GetLeaderboard(ctx context.Context, category Category, windowStart *Date) (*Leaderboard, error) {
	if err := validateScope(category, windowStart); err != nil {
		return nil, err
	}

	var (
		totalEvents int
		stats       []PlayerStat
	)
	err := s.inTx(ctx, "compute leaderboard", func(tx *sql.Tx) error {
		var err error
		totalEvents, err = s.countEvents(ctx, tx, category, windowStart)
		if err != nil {
			return err
		}
		stats, err = s.aggregate(ctx, tx, category, windowStart)
		return err
	})
	if err != nil {
		return nil, err
	}

	rankStats(stats, totalEvents)
	log.Debug("Computed leaderboard", "category", category, "window_start", windowStart, "events", totalEvents, "players", len(stats))
	return &Leaderboard{
		Category:    category,
		WindowStart: windowStart,
		TotalEvents: totalEvents,
		Entries:     stats,
	}, nil
}

func (s *store) aggregate(ctx context.Context, q queryer, category Category, windowStart *Date) ([]PlayerStat, error) {
	where, args := eventScope("e", category, windowStart)
	query := `
		SELECT
			p.id,
			p.name,
			CAST(SUM(d.dmg) AS BIGINT) AS total_damage,
			SUM(CASE WHEN d.dmg > 0 THEN 1 ELSE 0 END) AS events_attended
		FROM damage d
		JOIN events e ON e.id = d.event_id
		JOIN players p ON p.id = d.player_id
		WHERE ` + where + `
		GROUP BY p.id, p.name
		HAVING SUM(d.dmg) > 0
		ORDER BY total_damage DESC, p.name ASC;`

	rows, err := q.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		log.Error("Failed to aggregate damage", "error", err, "category", category)
		return nil, storeError("aggregate damage", err)
	}
	defer rows.Close()

	stats := make([]PlayerStat, 0)
	for rows.Next() {
		var stat PlayerStat
		if err := rows.Scan(&stat.PlayerID, &stat.Name, &stat.TotalDamage, &stat.EventsAttended); err != nil {
			return nil, storeError("scan leaderboard row", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("aggregate damage", err)
	}
	return stats, nil
}

// rankStats orders stats by total damage descending then name, assigns dense ranks
// and fills in the derived ratios.
func rankStats(stats []PlayerStat, totalEvents int) {
	slices.SortStableFunc(stats, func(a, b PlayerStat) int {
		if c := cmp.Compare(b.TotalDamage, a.TotalDamage); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	rank := 0
	for i := range stats {
		if i == 0 || stats[i].TotalDamage != stats[i-1].TotalDamage {
			rank++
		}
		stats[i].Rank = rank
		stats[i].AttendanceRate = attendanceRate(stats[i].EventsAttended, totalEvents)
		stats[i].AvgDamageWhenPresent = avgWhenPresent(stats[i].TotalDamage, stats[i].EventsAttended)
	}
}

// attendanceRate is attended/total as a percentage with one decimal, or 0 when no events were held.
func attendanceRate(attended, totalEvents int) float64 {
	if totalEvents <= 0 {
		return 0
	}
	return math.RoundToEven(float64(attended)/float64(totalEvents)*100*10) / 10
}

// avgWhenPresent divides the total by the attended events. Zero-damage rows add nothing to the
// total, so this is the mean over positive damage values.
func avgWhenPresent(total int64, attended int) int64 {
	if attended <= 0 {
		return 0
	}
	return int64(math.RoundToEven(float64(total) / float64(attended)))
}
