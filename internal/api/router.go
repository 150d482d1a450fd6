package api

import (
	"net/http"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/stream"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/api/handlers"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/config"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/view"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	session *view.Session,
	hub *stream.Hub,
	mapCfg config.MapConfig,
	accessToken string,
) http.Handler {
	mux := http.NewServeMux()

	viewHandler := &handlers.ViewHandler{Session: session}
	sidebarHandler := &handlers.SidebarHandler{Session: session}
	streamHandler := &handlers.StreamHandler{Session: session, Hub: hub}
	mapHandler := &handlers.MapConfigHandler{
		AccessToken: accessToken,
		Style:       mapCfg.Style,
		Center:      mapCfg.Center,
		Zoom:        mapCfg.Zoom,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/map-config", mapHandler.Get)
	mux.HandleFunc("/api/view", viewHandler.Get)
	mux.HandleFunc("/api/view/reload", viewHandler.Reload)
	mux.HandleFunc("/api/view/select", viewHandler.Select)
	mux.HandleFunc("/api/sidebar", sidebarHandler.Get)
	mux.HandleFunc("/api/stream", streamHandler.Serve)

	return requestIDMiddleware(loggingMiddleware(mux))
}
