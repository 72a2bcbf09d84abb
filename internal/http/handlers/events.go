package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/notifier"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

// CreateEventRequest selects the event to edit. Category accepts the same aliases as ParseCategory.
type CreateEventRequest struct {
	Date     string `json:"date"`
	Category string `json:"category"`
}

// DamageValue is a damage cell as typed by a user: a JSON number, a numeric string or garbage.
// Anything that does not parse as a non-negative number decodes to 0.
type DamageValue int64

func (d *DamageValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = DamageValue(tracker.ParseDamage(s))
		return nil
	}
	*d = DamageValue(tracker.ParseDamage(string(b)))
	return nil
}

type DamageInput struct {
	PlayerID int64       `json:"player_id"`
	Damage   DamageValue `json:"damage"`
}

type SaveDamageResponse struct {
	Saved      int `json:"saved"`
	Attendance int `json:"attendance"`
}

// CreateEventHandler resolves the event for a date and trap. Damage entry needs a roster,
// so it refuses while no players are registered.
func CreateEventHandler(store tracker.TrackerStore, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEventRequest
		if err := decodeJSON(w, r, &req); err != nil {
			RespondError(w, r, m, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		date, err := tracker.ParseDate(req.Date)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		category, err := tracker.ParseCategory(req.Category)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}

		players, err := store.CountPlayers(r.Context())
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		if players == 0 {
			RespondError(w, r, m, http.StatusConflict, "Add players first to start entering event damage")
			return
		}

		eventID, err := store.GetOrCreateEvent(r.Context(), date, category)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		m.IncEventsResolved()

		Respond(w, r, http.StatusOK, tracker.Event{ID: eventID, Date: date, Category: category})
	}
}

func GetEventHandler(store tracker.TrackerStore, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := pathID(r, "id")
		if !ok {
			RespondError(w, r, m, http.StatusBadRequest, "Invalid event id")
			return
		}
		event, err := store.GetEvent(r.Context(), eventID)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		Respond(w, r, http.StatusOK, event)
	}
}

// DamageSheetHandler returns every roster player with their damage for the event.
func DamageSheetHandler(store tracker.TrackerStore, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := pathID(r, "id")
		if !ok {
			RespondError(w, r, m, http.StatusBadRequest, "Invalid event id")
			return
		}
		if _, err := store.GetEvent(r.Context(), eventID); err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		sheet, err := store.LoadDamageSheet(r.Context(), eventID)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		Respond(w, r, http.StatusOK, sheet)
	}
}

// SaveDamageHandler upserts a damage sheet and posts a summary to Slack.
// A failed notification is logged; the save still succeeds.
func SaveDamageHandler(store tracker.TrackerStore, n notifier.Notifier, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := pathID(r, "id")
		if !ok {
			RespondError(w, r, m, http.StatusBadRequest, "Invalid event id")
			return
		}
		var inputs []DamageInput
		if err := decodeJSON(w, r, &inputs); err != nil {
			RespondError(w, r, m, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}

		event, err := store.GetEvent(r.Context(), eventID)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}

		rows := make([]tracker.DamageRow, 0, len(inputs))
		for _, in := range inputs {
			rows = append(rows, tracker.DamageRow{PlayerID: in.PlayerID, Damage: int64(in.Damage)})
		}
		attendance, err := store.SaveDamage(r.Context(), eventID, rows)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		m.AddDamageRowsSaved(len(rows))

		if len(rows) > 0 {
			if err := n.SendDamageSaved(r.Context(), event, len(rows), attendance, IsDryRunFromContext(r)); err != nil {
				log.Error("Failed to send damage saved notification", "error", err, "event_id", eventID)
			}
		}
		Respond(w, r, http.StatusOK, SaveDamageResponse{Saved: len(rows), Attendance: attendance})
	}
}
