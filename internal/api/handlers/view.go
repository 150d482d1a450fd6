package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/api/dto"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/services"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/view"
)

// ViewHandler exposes the scene state and its two mutations: reload
// and route selection.
type ViewHandler struct {
	Session *view.Session
}

func reportDTO(r *services.RenderReport) *dto.RenderReportResponse {
	if r == nil {
		return nil
	}
	return &dto.RenderReportResponse{
		HomeMarkers:   r.HomeMarkers,
		DriverMarkers: r.DriverMarkers,
		StopMarkers:   r.StopMarkers,
		SchoolMarkers: r.SchoolMarkers,
		InvalidCoords: r.InvalidCoords,
		LinesDrawn:    r.LinesDrawn,
		LinesSkipped:  r.LinesSkipped,
		BoundsPoints:  r.BoundsPoints,
	}
}

func selectionDTO(s *view.Session) *int {
	if idx, ok := s.Selection(); ok {
		return &idx
	}
	return nil
}

// Get returns the scene snapshot plus selection and last-load status,
// for clients that poll instead of following the stream.
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.ViewResponse{
		Scene:      h.Session.Snapshot(),
		RouteCount: len(h.Session.Routes()),
		Selected:   selectionDTO(h.Session),
		Render:     reportDTO(h.Session.LastReport()),
	}
	if err := h.Session.LastLoadError(); err != nil {
		res.LastError = err.Error()
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Reload runs one full load cycle. Upstream failures surface as 502
// with the failure text so the viewer can alert the user; a cycle that
// is already running is reported as a conflict, never queued.
func (h *ViewHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := h.Session.Load(); err != nil {
		var fetchErr *domain.FetchError
		var formatErr *domain.FormatError

		switch {
		case errors.Is(err, view.ErrLoadInProgress):
			writeError(w, r, http.StatusConflict, "a load is already running")
		case errors.Is(err, view.ErrClosed):
			writeError(w, r, http.StatusServiceUnavailable, "view session is closed")
		case errors.As(err, &fetchErr), errors.As(err, &formatErr):
			writeError(w, r, http.StatusBadGateway, err.Error())
		default:
			log.Printf("reload failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	res := dto.ReloadResponse{
		Routes: len(h.Session.Routes()),
		Render: reportDTO(h.Session.LastReport()),
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Select activates one route: its line stays visible, all others hide.
func (h *ViewHandler) Select(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SelectRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}
	if req.Index == nil {
		writeError(w, r, http.StatusBadRequest, "index is required")
		return
	}

	if err := h.Session.SelectRoute(*req.Index); err != nil {
		switch {
		case errors.Is(err, view.ErrNoSuchRoute):
			writeError(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, view.ErrClosed):
			writeError(w, r, http.StatusServiceUnavailable, "view session is closed")
		default:
			log.Printf("select route failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SelectResponse{Selected: *req.Index})
}
