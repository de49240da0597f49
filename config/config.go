// ABOUTME: Application configuration loaded from YAML under the XDG config dir
// ABOUTME: Applies .env files and NETWORKIA_* environment overrides on top of the file

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG subdirectories.
const AppName = "networkia"

const (
	defaultListen       = "127.0.0.1:8080"
	defaultLocalScope   = "demo"
	defaultReminderCron = "0 8 * * *"
	defaultTheme        = "light"
	defaultUpcomingDays = 14
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the web UI and API.
	Listen string `yaml:"listen"`

	// DatabasePath is the SQLite file used in server mode.
	DatabasePath string `yaml:"database_path"`

	// LocalDir holds the embedded key-value store for signed-out use.
	LocalDir string `yaml:"local_dir"`

	// LocalScope namespaces local data; each scope is an independent address book.
	LocalScope string `yaml:"local_scope"`

	// ReminderCron is a five-field cron schedule for the daily sweep.
	ReminderCron string `yaml:"reminder_cron"`

	// Timezone is an IANA zone deciding what "today" is. Empty means the system zone.
	Timezone string `yaml:"timezone"`

	// Theme is "light" or "dark" for the web UI.
	Theme string `yaml:"theme"`

	// UpcomingDays is the default look-ahead for upcoming lists.
	UpcomingDays int `yaml:"upcoming_days"`

	// DefaultCircles are created for a fresh address book.
	DefaultCircles []string `yaml:"default_circles"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         defaultListen,
		DatabasePath:   DefaultDatabasePath(),
		LocalDir:       DefaultLocalDir(),
		LocalScope:     defaultLocalScope,
		ReminderCron:   defaultReminderCron,
		Theme:          defaultTheme,
		UpcomingDays:   defaultUpcomingDays,
		DefaultCircles: []string{"Family", "Friends", "Work"},
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, AppName, "networkia.db")
}

func DefaultLocalDir() string {
	return filepath.Join(xdg.DataHome, AppName, "local")
}

// Normalize fills in missing values so partially written files still work.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath()
	}
	if c.LocalDir == "" {
		c.LocalDir = DefaultLocalDir()
	}
	if c.LocalScope == "" {
		c.LocalScope = defaultLocalScope
	}
	if c.ReminderCron == "" {
		c.ReminderCron = defaultReminderCron
	}
	switch c.Theme {
	case "light", "dark":
	default:
		c.Theme = defaultTheme
	}
	if c.UpcomingDays <= 0 {
		c.UpcomingDays = defaultUpcomingDays
	}
	if c.DefaultCircles == nil {
		c.DefaultCircles = []string{}
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads the YAML file at path, writing a default one on first run, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		ApplyEnv(cfg)
		cfg.Normalize()
		return cfg, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	ApplyEnv(&cfg)
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path with 0600 permissions.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, 0600)
}

// LoadEnvFiles loads KEY=value pairs from .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", filepath.Join(xdg.ConfigHome, AppName, ".env")}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with NETWORKIA_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("NETWORKIA_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("NETWORKIA_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("NETWORKIA_LOCAL_DIR"); v != "" {
		cfg.LocalDir = v
	}
	if v := os.Getenv("NETWORKIA_LOCAL_SCOPE"); v != "" {
		cfg.LocalScope = v
	}
	if v := os.Getenv("NETWORKIA_REMINDER_CRON"); v != "" {
		cfg.ReminderCron = v
	}
	if v := os.Getenv("NETWORKIA_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("NETWORKIA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("NETWORKIA_UPCOMING_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UpcomingDays = n
		}
	}
	if v := os.Getenv("NETWORKIA_DEFAULT_CIRCLES"); v != "" {
		var circles []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				circles = append(circles, name)
			}
		}
		cfg.DefaultCircles = circles
	}
}
