package dto

// SidebarStopResponse is one row of a route's enumerated stop summary.
type SidebarStopResponse struct {
	Number       int    `json:"number"`
	StudentName  string `json:"student_name"`
	RequiresWalk bool   `json:"requires_walk"`
	// WalkingDistanceKM is set only when the student walks, formatted
	// to 2 decimals.
	WalkingDistanceKM string `json:"walking_distance_km,omitempty"`
}

type SidebarRouteResponse struct {
	Index        int    `json:"index"`
	RouteID      string `json:"route_id"`
	DriverName   string `json:"driver_name"`
	Color        string `json:"color"`
	StudentCount int    `json:"student_count"`
	// Estimated totals as the backend computed them; distance and fuel
	// carry the sidebar's fixed 2-decimal formatting.
	TotalTimeMin    float64               `json:"total_time_min"`
	TotalDistanceKM string                `json:"total_distance_km"`
	TotalFuelL      string                `json:"total_fuel_l"`
	Active          bool                  `json:"active"`
	Stops           []SidebarStopResponse `json:"stops"`
}

// WalkListEntryResponse is one student who must walk to the pickup
// point, attributed to their route and driver.
type WalkListEntryResponse struct {
	StudentName       string `json:"student_name"`
	DriverName        string `json:"driver_name"`
	RouteIndex        int    `json:"route_index"`
	StopNumber        int    `json:"stop_number"`
	WalkingDistanceKM string `json:"walking_distance_km"`
}

type SidebarResponse struct {
	Routes   []SidebarRouteResponse  `json:"routes"`
	WalkList []WalkListEntryResponse `json:"walk_list"`
	// Selected is null until a route has been selected.
	Selected *int `json:"selected"`
}
