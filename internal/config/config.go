package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NOTE: Load creates the file with defaults on first run. Appointments are
// never written here; they live only for the process lifetime.

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "Local"
	defaultLogLevel     = "info"
	defaultHistoryLimit = 50
	defaultHorizonDays  = 90
	defaultRefreshCron  = "*/15 * * * *"
	defaultCaptureCron  = "0 * * * *"
	defaultCaptureOut   = "./cache/preview.png"
	defaultCaptureW     = 1280
	defaultCaptureH     = 900
)

// ICSConfig describes a single ICS feed imported into the calendar.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for the fetch cache and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// SourceID returns ID, falling back to Name and then URL.
func (c ICSConfig) SourceID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return c.URL
	}
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
// PasswordHash (bcrypt, see `apptcal hash-password`) wins over Password.
type BasicAuthConfig struct {
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password,omitempty" json:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty" json:"password_hash,omitempty"`
}

// CaptureConfig controls the scheduled headless screenshot of the month page.
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Cron    string `yaml:"cron" json:"cron"`
	Output  string `yaml:"output" json:"output"`
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone "today" and update stamps are read in.
	// "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// HistoryLimit is the undo depth of the appointment store. 0 disables undo.
	HistoryLimit *int `yaml:"history_limit,omitempty" json:"history_limit,omitempty"`

	// ImportHorizonDays bounds how far ahead feed events are imported.
	ImportHorizonDays int `yaml:"import_horizon_days" json:"import_horizon_days"`

	// RefreshCron is the cron schedule for re-importing ICS feeds.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ICS is the list of feeds imported into the calendar.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	limit := defaultHistoryLimit
	return &Config{
		Listen:            defaultListen,
		Timezone:          defaultTimezone,
		LogLevel:          defaultLogLevel,
		HistoryLimit:      &limit,
		ImportHorizonDays: defaultHorizonDays,
		RefreshCron:       defaultRefreshCron,
		ICS:               []ICSConfig{},
		Capture: CaptureConfig{
			Enabled: false,
			Cron:    defaultCaptureCron,
			Output:  defaultCaptureOut,
			Width:   defaultCaptureW,
			Height:  defaultCaptureH,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.HistoryLimit == nil {
		limit := defaultHistoryLimit
		c.HistoryLimit = &limit
	} else if *c.HistoryLimit < 0 {
		zero := 0
		c.HistoryLimit = &zero
	}
	if c.ImportHorizonDays <= 0 {
		c.ImportHorizonDays = defaultHorizonDays
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.Capture.Cron == "" {
		c.Capture.Cron = defaultCaptureCron
	}
	if c.Capture.Output == "" {
		c.Capture.Output = defaultCaptureOut
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = defaultCaptureW
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = defaultCaptureH
	}
	// Empty credentials disable auth rather than lock everyone out.
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" ||
		(c.BasicAuth.Password == "" && c.BasicAuth.PasswordHash == "")) {
		c.BasicAuth = nil
	}
}

// History returns the normalized undo depth.
func (c *Config) History() int {
	if c.HistoryLimit == nil {
		return defaultHistoryLimit
	}
	return *c.HistoryLimit
}

// Location resolves Timezone. On an unknown zone it returns time.Local and
// the lookup error so the caller can log the fallback.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == defaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether running on defaults is acceptable.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".apptcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience wrapper around the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
