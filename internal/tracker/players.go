package tracker

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// AddPlayers registers the name in single plus every non-empty line of bulk.
// Names are trimmed and deduplicated; names already on the roster are skipped silently.
// The returned count is the number of unique names submitted, not the number newly created.
// Submitting no names at all is a no-op that returns 0.
func (s *store) AddPlayers(ctx context.Context, single, bulk string) (int, error) {
	names := collectNames(single, bulk)
	if len(names) == 0 {
		log.Debug("No player names submitted")
		return 0, nil
	}

	err := s.inTx(ctx, "add players", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.db.Rebind(`
			INSERT INTO players (name)
			VALUES (?)
			ON CONFLICT (name) DO NOTHING;
		`))
		if err != nil {
			return storeError("prepare add players", err)
		}
		defer stmt.Close()

		for _, name := range names {
			if _, err := stmt.ExecContext(ctx, name); err != nil {
				log.Error("Failed to insert player", "error", err, "name", name)
				return storeError("add players", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("Processed player names", "count", len(names))
	return len(names), nil
}

// collectNames returns the sorted set of trimmed, non-empty names.
func collectNames(single, bulk string) []string {
	var names []string
	if name := strings.TrimSpace(single); name != "" {
		names = append(names, name)
	}
	for _, line := range strings.Split(bulk, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// ListPlayers returns the roster ordered by name.
func (s *store) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, storeError("list players", err)
	}
	defer rows.Close()

	players := make([]Player, 0)
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, storeError("scan player", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list players", err)
	}
	return players, nil
}

// CountPlayers returns the roster size.
func (s *store) CountPlayers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&count); err != nil {
		return 0, storeError("count players", err)
	}
	return count, nil
}
