package handlers

import (
	"net/http"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/api/dto"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/services"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/view"
)

// SidebarHandler serves the route list and the walk list as the
// sidebar presents them: pure presentation over the session state.
type SidebarHandler struct {
	Session *view.Session
}

func (h *SidebarHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	routes := h.Session.Routes()
	derived := h.Session.DerivedState()
	selected, hasSelection := h.Session.Selection()

	res := dto.SidebarResponse{
		Routes:   make([]dto.SidebarRouteResponse, 0, len(routes)),
		WalkList: make([]dto.WalkListEntryResponse, 0, len(derived.WalkingStops)),
	}

	for i, route := range routes {
		stops := make([]dto.SidebarStopResponse, 0, len(route.Stops))
		for si, stop := range route.Stops {
			row := dto.SidebarStopResponse{
				Number:       si + 1,
				StudentName:  stop.StudentName,
				RequiresWalk: stop.RequiresWalk,
			}
			if stop.RequiresWalk {
				row.WalkingDistanceKM = fixed2(stop.WalkDistanceKM)
			}
			stops = append(stops, row)
		}

		res.Routes = append(res.Routes, dto.SidebarRouteResponse{
			Index:           i,
			RouteID:         route.ID,
			DriverName:      route.DriverName,
			Color:           services.RouteColor(i),
			StudentCount:    route.StudentCount,
			TotalTimeMin:    route.TotalTimeMin,
			TotalDistanceKM: fixed2(route.TotalDistKM),
			TotalFuelL:      fixed2(route.TotalFuelL),
			Active:          hasSelection && i == selected,
			Stops:           stops,
		})
	}

	for _, ws := range derived.WalkingStops {
		res.WalkList = append(res.WalkList, dto.WalkListEntryResponse{
			StudentName:       ws.Stop.StudentName,
			DriverName:        ws.DriverName,
			RouteIndex:        ws.RouteIndex,
			StopNumber:        ws.StopNumber,
			WalkingDistanceKM: fixed2(ws.Stop.WalkDistanceKM),
		})
	}

	if hasSelection {
		res.Selected = &selected
	}

	writeJSON(w, r, http.StatusOK, res)
}
