package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"toggl-mcp/internal/timeconv"
)

const defaultPresetDir = "~/.toggl_mcp"

// Config holds environment-driven configuration. Nested structs take their
// parent's name as prefix, so Toggl.APIToken reads TOGGL_API_TOKEN.
type Config struct {
	Toggl struct {
		APIToken    string `envconfig:"API_TOKEN"`
		Email       string `envconfig:"EMAIL"`
		Password    string `envconfig:"PASSWORD"`
		BaseURL     string `envconfig:"BASE_URL" default:"https://api.track.toggl.com"`
		WorkspaceID int64  `envconfig:"WORKSPACE_ID"` // overrides the /me default when set
	}
	MySQL struct {
		DSN string `envconfig:"DSN"` // e.g., user:pass@tcp(host:3306)/dbname
	}
	MCP struct {
		Name    string `envconfig:"SERVER_NAME" default:"toggl"`
		Version string `envconfig:"SERVER_VERSION" default:"0.3.0"`
	}
	// IANA name, e.g. Europe/Berlin; empty uses the system location.
	Timezone  string `envconfig:"LOCAL_TZ"`
	PresetDir string `envconfig:"PRESET_DIR" default:"~/.toggl_mcp"`

	Location *time.Location `ignored:"true"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	loc, err := timeconv.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("LOCAL_TZ %q is not a valid timezone: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	dir, err := expandHome(cfg.PresetDir)
	if err != nil {
		return cfg, err
	}
	cfg.PresetDir = dir
	return cfg, nil
}

func (c Config) validate() error {
	if c.Toggl.APIToken != "" {
		return nil
	}
	if c.Toggl.Email == "" || c.Toggl.Password == "" {
		return errors.New("TOGGL_API_TOKEN or TOGGL_EMAIL and TOGGL_PASSWORD are required")
	}
	return nil
}

func expandHome(p string) (string, error) {
	if p == "" {
		p = defaultPresetDir
	}
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home for PRESET_DIR: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
