package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("routes:\n  baseURL: http://localhost:5000\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Routes.BaseURL != "http://localhost:5000" {
		t.Errorf("baseURL = %q", cfg.Routes.BaseURL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Routes.TimeoutMS != 10000 || cfg.Directions.TimeoutMS != 10000 {
		t.Errorf("default timeouts = %d/%d", cfg.Routes.TimeoutMS, cfg.Directions.TimeoutMS)
	}
	if cfg.Directions.BaseURL != "https://api.mapbox.com" || cfg.Directions.Profile != "driving" {
		t.Errorf("default directions = %+v", cfg.Directions)
	}
	if cfg.Directions.Lookups != 4 {
		t.Errorf("default lookups = %d, want 4", cfg.Directions.Lookups)
	}
	if cfg.Cache.Driver != "sqlite" || cfg.Cache.Path != "data/directions.db" {
		t.Errorf("default cache = %+v", cfg.Cache)
	}
	if cfg.Map.Style != "mapbox://styles/mapbox/streets-v12" || cfg.Map.Zoom != 11 {
		t.Errorf("default map = %+v", cfg.Map)
	}
}

func TestParseOverrides(t *testing.T) {
	raw := `
server:
  port: 9000
routes:
  baseURL: http://backend:5000
  timeoutMS: 3000
directions:
  profile: walking
  lookups: 8
cache:
  driver: none
map:
  center: [76.9, 43.25]
  zoom: 12
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Routes.TimeoutMS != 3000 {
		t.Errorf("overrides lost: %+v", cfg)
	}
	if cfg.Directions.Profile != "walking" || cfg.Directions.Lookups != 8 {
		t.Errorf("directions overrides lost: %+v", cfg.Directions)
	}
	if cfg.Cache.Driver != "none" {
		t.Errorf("cache driver = %q", cfg.Cache.Driver)
	}
	if len(cfg.Map.Center) != 2 || cfg.Map.Center[0] != 76.9 {
		t.Errorf("map center = %v", cfg.Map.Center)
	}
}

func TestParseRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "missing routes baseURL", raw: "server:\n  port: 8080\n"},
		{name: "baseURL not a url", raw: "routes:\n  baseURL: not a url\n"},
		{name: "unknown profile", raw: "routes:\n  baseURL: http://localhost:5000\ndirections:\n  profile: flying\n"},
		{name: "unknown cache driver", raw: "routes:\n  baseURL: http://localhost:5000\ncache:\n  driver: redis\n"},
		{name: "one element center", raw: "routes:\n  baseURL: http://localhost:5000\nmap:\n  center: [76.9]\n"},
		{name: "port out of range", raw: "routes:\n  baseURL: http://localhost:5000\nserver:\n  port: 70000\n"},
		{name: "not yaml", raw: "{{{"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.raw)); err == nil {
				t.Errorf("expected an error for %q", tc.raw)
			}
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("routes:\n  baseURL: http://localhost:5000\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Routes.BaseURL != "http://localhost:5000" {
		t.Errorf("baseURL = %q", cfg.Routes.BaseURL)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
