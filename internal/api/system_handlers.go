package api

import (
	"net/http"
	"strings"

	"github.com/hearthline/hearth/internal/events"
)

// handleSystem serves per-system sub-resources, currently only the
// planning acknowledgment.
func (r *Router) handleSystem(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, "/api/systems/")
	key, action, found := strings.Cut(rest, "/")
	if !found || key == "" || action != "acknowledge" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	acks := r.deps.Sessions.Acks()
	switch req.Method {
	case http.MethodPost:
		ack := acks.Acknowledge(key)
		r.appendEvent(events.Event{Type: events.TypeAcknowledged, SystemKey: key})
		writeJSON(w, http.StatusOK, ack)

	case http.MethodDelete:
		acks.Clear(key)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
