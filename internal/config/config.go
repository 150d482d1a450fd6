package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int `yaml:"port" validate:"omitempty,gt=0,lte=65535"`
}

// RoutesConfig points at the route-generation backend.
type RoutesConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// DirectionsConfig tunes the directions service client. The access
// token is deliberately not part of the file; it is a secret and comes
// from the environment.
type DirectionsConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"omitempty,url"`
	Profile   string `yaml:"profile" validate:"omitempty,oneof=driving driving-traffic walking cycling"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
	// Lookups bounds how many per-route polyline requests run at once.
	Lookups int `yaml:"lookups" validate:"gte=0,lte=16"`
}

// CacheConfig selects the directions geometry cache backend.
type CacheConfig struct {
	// Driver is sqlite (default), postgres, or none.
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres none"`
	// Path is the SQLite file location when driver is sqlite.
	Path string `yaml:"path"`
}

// MapConfig is handed to map clients at bootstrap. Style and center
// only seed the engine before the first fit-bounds.
type MapConfig struct {
	Style  string    `yaml:"style"`
	Center []float64 `yaml:"center" validate:"omitempty,len=2"`
	Zoom   float64   `yaml:"zoom" validate:"gte=0,lte=22"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Routes     RoutesConfig     `yaml:"routes" validate:"required"`
	Directions DirectionsConfig `yaml:"directions"`
	Cache      CacheConfig      `yaml:"cache"`
	Map        MapConfig        `yaml:"map"`
}

// Load reads, validates and defaults the application configuration.
// An empty path falls back to config.yml in the working directory.
func Load(path string) (*AppConfig, error) {
	if path == "" {
		path = "config.yml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates raw YAML configuration.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Routes.TimeoutMS == 0 {
		cfg.Routes.TimeoutMS = 10000
	}
	if cfg.Directions.BaseURL == "" {
		cfg.Directions.BaseURL = "https://api.mapbox.com"
	}
	if cfg.Directions.Profile == "" {
		cfg.Directions.Profile = "driving"
	}
	if cfg.Directions.TimeoutMS == 0 {
		cfg.Directions.TimeoutMS = 10000
	}
	if cfg.Directions.Lookups == 0 {
		cfg.Directions.Lookups = 4
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "sqlite"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "data/directions.db"
	}
	if cfg.Map.Style == "" {
		cfg.Map.Style = "mapbox://styles/mapbox/streets-v12"
	}
	if cfg.Map.Zoom == 0 {
		cfg.Map.Zoom = 11
	}
}
