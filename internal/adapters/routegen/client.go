package routegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/platform/obs"
)

// Client fetches precomputed bus routes from the route generation
// backend. Route data is never cached: every load issues a fresh
// request, and no failed request is retried (callers re-invoke).
type Client struct {
	session *http.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("route backend base URL is empty")
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		session: &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	return client, nil
}

// envelope is the backend's response wrapper. Success is a pointer so a
// missing flag can be told apart from an explicit false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type stopPayload struct {
	StudentID       string    `json:"student_id"`
	StudentName     string    `json:"student_name"`
	Location        []float64 `json:"location"`
	DistancePrevKM  float64   `json:"distance_from_previous"`
	RequiresWalk    bool      `json:"requires_walk"`
	WalkingDistance float64   `json:"walking_distance"`
}

type finalDestinationPayload struct {
	Location       []float64 `json:"location"`
	DistanceLastKM float64   `json:"distance_from_last_stop"`
}

type routePayload struct {
	ID            string                  `json:"id"`
	DriverID      string                  `json:"driver_id"`
	DriverName    string                  `json:"driver_name"`
	Stops         []stopPayload           `json:"stops"`
	TotalDistance float64                 `json:"total_distance"`
	TotalTime     float64                 `json:"total_time"`
	TotalFuel     float64                 `json:"total_fuel"`
	StudentCount  int                     `json:"student_count"`
	Final         finalDestinationPayload `json:"final_destination"`
}

// LoadRoutes fetches the current route set. Transport failures and
// non-2xx statuses surface as FetchError; an envelope without a true
// success flag and an array payload surfaces as FormatError. Stop
// coordinates are passed through untouched, structural validation
// happens at render time.
func (c *Client) LoadRoutes(ctx context.Context) (_ []domain.Route, err error) {
	defer obs.Time(ctx, "routegen.LoadRoutes")(&err)

	endpoint := c.baseURL + "/api/routes/generate"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.FetchError{
			URL: endpoint,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &domain.FormatError{Reason: "body is not valid JSON"}
	}

	if env.Success == nil {
		return nil, &domain.FormatError{Reason: "success flag is missing"}
	}
	if !*env.Success {
		return nil, &domain.FormatError{Reason: "backend reported success=false"}
	}
	if len(env.Data) == 0 {
		return nil, &domain.FormatError{Reason: "data field is missing"}
	}

	// A literal null decodes into a nil slice without an error, so the
	// nil check is what actually rejects it.
	var payload []routePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload == nil {
		return nil, &domain.FormatError{Reason: "data is not an array of routes"}
	}

	routes := make([]domain.Route, 0, len(payload))
	for _, rp := range payload {
		routes = append(routes, rp.toDomain())
	}

	return routes, nil
}

func (rp routePayload) toDomain() domain.Route {
	id := rp.ID
	// Backends that omit ids still need stable layer identity.
	if id == "" {
		id = uuid.NewString()
	}

	stops := make([]domain.Stop, 0, len(rp.Stops))
	for _, sp := range rp.Stops {
		stops = append(stops, domain.Stop{
			StudentID:      sp.StudentID,
			StudentName:    sp.StudentName,
			Location:       sp.Location,
			DistanceKM:     sp.DistancePrevKM,
			RequiresWalk:   sp.RequiresWalk,
			WalkDistanceKM: sp.WalkingDistance,
		})
	}

	return domain.Route{
		ID:           id,
		DriverID:     rp.DriverID,
		DriverName:   rp.DriverName,
		Stops:        stops,
		TotalDistKM:  rp.TotalDistance,
		TotalTimeMin: rp.TotalTime,
		TotalFuelL:   rp.TotalFuel,
		StudentCount: rp.StudentCount,
		Final: domain.FinalDestination{
			Location:   rp.Final.Location,
			DistanceKM: rp.Final.DistanceLastKM,
		},
	}
}
