// Package config loads application configuration from the environment, with
// an optional YAML file underneath. Environment variables always win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultDataDir        = "data"
	DefaultRequestTimeout = 15 * time.Second
	DefaultTrackLimit     = 10
)

// Config holds all application settings.
type Config struct {
	VisionEndpoint string `yaml:"vision_endpoint"`
	VisionToken    string `yaml:"vision_token"`

	SpotifyID     string `yaml:"spotify_id"`
	SpotifySecret string `yaml:"spotify_secret"`
	TokenURL      string `yaml:"token_url"` // defaults to the Spotify accounts endpoint

	DatabaseURL string `yaml:"database_url"` // empty means in-memory gallery

	Addr           string        `yaml:"addr"`
	DataDir        string        `yaml:"data_dir"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TrackLimit     int           `yaml:"track_limit"`
}

// MissingError reports which required settings are absent.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Vars, ", "))
}

// Load reads configuration. Order: a .env file if present (best-effort),
// then the YAML file named by SNAPVIBE_CONFIG, then environment variables
// on top. Returns *MissingError listing every absent required setting.
func Load() (*Config, error) {
	// A missing .env is normal; only real parse errors would matter and
	// godotenv folds those into the same error, so ignore it entirely.
	_ = godotenv.Load()

	cfg := &Config{
		TokenURL:       spotifyauth.TokenURL,
		Addr:           DefaultAddr,
		DataDir:        DefaultDataDir,
		RequestTimeout: DefaultRequestTimeout,
		TrackLimit:     DefaultTrackLimit,
	}

	if path := os.Getenv("SNAPVIBE_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	var missing []string
	if cfg.VisionEndpoint == "" {
		missing = append(missing, "VISION_ENDPOINT")
	}
	if cfg.VisionToken == "" {
		missing = append(missing, "VISION_TOKEN")
	}
	if cfg.SpotifyID == "" {
		missing = append(missing, "SPOTIFY_ID")
	}
	if cfg.SpotifySecret == "" {
		missing = append(missing, "SPOTIFY_SECRET")
	}
	if len(missing) > 0 {
		return nil, &MissingError{Vars: missing}
	}

	return cfg, nil
}

// loadFile merges a YAML config file into cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	setString(&cfg.VisionEndpoint, "VISION_ENDPOINT")
	setString(&cfg.VisionToken, "VISION_TOKEN")
	setString(&cfg.SpotifyID, "SPOTIFY_ID")
	setString(&cfg.SpotifySecret, "SPOTIFY_SECRET")
	setString(&cfg.TokenURL, "SPOTIFY_TOKEN_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.DataDir, "DATA_DIR")

	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if raw := os.Getenv("TRACK_LIMIT"); raw != "" {
		var n int
		if _, err := fmt.Sscanf(raw, "%d", &n); err == nil && n > 0 {
			cfg.TrackLimit = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
