package handlers

import (
	"net/http"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/api/dto"
)

// MapConfigHandler hands the browser client what it needs to create
// the map: the public access token, style and initial camera.
type MapConfigHandler struct {
	AccessToken string
	Style       string
	Center      []float64
	Zoom        float64
}

func (h *MapConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.MapConfigResponse{
		AccessToken: h.AccessToken,
		Style:       h.Style,
		Center:      h.Center,
		Zoom:        h.Zoom,
	}
	writeJSON(w, r, http.StatusOK, res)
}
