package handlers

import (
	"net/http"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/stream"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/view"
)

// StreamHandler upgrades map viewers to the live scene stream.
type StreamHandler struct {
	Session *view.Session
	Hub     *stream.Hub
}

func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.Hub.ServeWS(w, r, func() any { return h.Session.Snapshot() })
}
