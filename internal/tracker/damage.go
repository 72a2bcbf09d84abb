package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// LoadDamageSheet returns every player on the roster with their damage for the event.
// Players without a damage row report 0. Rows are ordered by name.
func (s *store) LoadDamageSheet(ctx context.Context, eventID int64) ([]SheetRow, error) {
	if eventID <= 0 {
		return nil, fmt.Errorf("%w: invalid event id %d", ErrValidation, eventID)
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT p.id, p.name, COALESCE(d.dmg, 0)
		FROM players p
		LEFT JOIN damage d
		  ON d.player_id = p.id
		 AND d.event_id = ?
		ORDER BY p.name;
	`), eventID)
	if err != nil {
		log.Error("Failed to load damage sheet", "error", err, "event_id", eventID)
		return nil, storeError("load damage sheet", err)
	}
	defer rows.Close()

	sheet := make([]SheetRow, 0)
	for rows.Next() {
		var row SheetRow
		if err := rows.Scan(&row.PlayerID, &row.Name, &row.Damage); err != nil {
			return nil, storeError("scan damage sheet", err)
		}
		sheet = append(sheet, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("load damage sheet", err)
	}
	return sheet, nil
}

// SaveDamage upserts the damage of every submitted row for the event, replacing stored values.
// Negative values are stored as 0. The whole batch commits or none of it does.
// It returns how many submitted rows have damage above zero.
func (s *store) SaveDamage(ctx context.Context, eventID int64, rows []DamageRow) (int, error) {
	if eventID <= 0 {
		return 0, fmt.Errorf("%w: invalid event id %d", ErrValidation, eventID)
	}
	if len(rows) == 0 {
		log.Debug("No damage rows submitted", "event_id", eventID)
		return 0, nil
	}

	attendance := 0
	err := s.inTx(ctx, "save damage", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.db.Rebind(`
			INSERT INTO damage (event_id, player_id, dmg)
			VALUES (?, ?, ?)
			ON CONFLICT (event_id, player_id)
			DO UPDATE SET dmg = excluded.dmg;
		`))
		if err != nil {
			return storeError("prepare save damage", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			dmg := ClampDamage(row.Damage)
			if _, err := stmt.ExecContext(ctx, eventID, row.PlayerID, dmg); err != nil {
				log.Error("Failed to upsert damage", "error", err, "event_id", eventID, "player_id", row.PlayerID)
				return storeError("save damage", err)
			}
			if dmg > 0 {
				attendance++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("Saved damage", "event_id", eventID, "rows", len(rows), "attendance", attendance)
	return attendance, nil
}

// ClampDamage maps negative damage to 0.
func ClampDamage(dmg int64) int64 {
	if dmg < 0 {
		return 0
	}
	return dmg
}

// ParseDamage turns user input into a storable damage value.
// Integers are taken as is, decimals are truncated toward zero, and anything that is
// not a finite decimal number (blank, "abc", "NaN", "1_000", "0x10") becomes 0. Negative results become 0.
func ParseDamage(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ClampDamage(n)
	}
	// ParseFloat also takes digit separators and hex floats; neither is a plain number.
	if strings.ContainsRune(s, '_') || strings.ContainsAny(s, "xX") {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
