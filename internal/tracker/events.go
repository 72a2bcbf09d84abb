package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// GetOrCreateEvent returns the id of the event for (date, category), creating it on first use.
// The insert and the read-back share one transaction and rely on the unique constraint
// rather than a prior existence check, so concurrent callers for the same pair all
// observe the same id and exactly one row exists.
func (s *store) GetOrCreateEvent(ctx context.Context, date Date, category Category) (int64, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if date.IsZero() {
		return 0, fmt.Errorf("%w: event date is required", ErrValidation)
	}

	var eventID int64
	err := s.inTx(ctx, "get or create event", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO events (event_date, bear_label)
			VALUES (?, ?)
			ON CONFLICT (event_date, bear_label) DO NOTHING;
		`), date.String(), string(category))
		if err != nil {
			return storeError("insert event", err)
		}

		// Always query for the id: LastInsertId is unreliable with ON CONFLICT.
		err = tx.QueryRowContext(ctx, s.db.Rebind(`
			SELECT id
			FROM events
			WHERE event_date = ? AND bear_label = ?;
		`), date.String(), string(category)).Scan(&eventID)
		if err != nil {
			return storeError("select event", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to get or create event", "error", err, "date", date, "category", category)
		return 0, err
	}

	log.Debug("Resolved event", "event_id", eventID, "date", date, "category", category)
	return eventID, nil
}

// GetEvent looks an event up by id. It returns ErrEventNotFound when no such event exists.
func (s *store) GetEvent(ctx context.Context, eventID int64) (*Event, error) {
	if eventID <= 0 {
		return nil, fmt.Errorf("%w: invalid event id %d", ErrValidation, eventID)
	}

	var (
		event    Event
		rawDate  string
		category string
	)
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, CAST(event_date AS TEXT), bear_label
		FROM events
		WHERE id = ?;
	`), eventID).Scan(&event.ID, &rawDate, &category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrEventNotFound, eventID)
	}
	if err != nil {
		return nil, storeError("get event", err)
	}

	event.Date, err = ParseDate(rawDate)
	if err != nil {
		return nil, fmt.Errorf("event %d has a malformed date: %w", eventID, err)
	}
	event.Category = Category(category)
	return &event, nil
}
