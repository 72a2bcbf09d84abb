package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

// AddPlayersRequest carries one name and/or a newline separated list.
type AddPlayersRequest struct {
	Name string `json:"name"`
	Bulk string `json:"bulk"`
}

type AddPlayersResponse struct {
	Processed int `json:"processed"`
}

func ListPlayersHandler(store tracker.TrackerStore, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := store.ListPlayers(r.Context())
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		Respond(w, r, http.StatusOK, players)
	}
}

func AddPlayersHandler(store tracker.TrackerStore, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddPlayersRequest
		if err := decodeJSON(w, r, &req); err != nil {
			RespondError(w, r, m, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}

		processed, err := store.AddPlayers(r.Context(), req.Name, req.Bulk)
		if err != nil {
			RespondStoreError(w, r, m, err)
			return
		}
		if processed == 0 {
			log.Warn("Add players request contained no names")
		}
		m.IncPlayersSubmitted(processed)
		Respond(w, r, http.StatusOK, AddPlayersResponse{Processed: processed})
	}
}
