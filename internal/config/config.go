// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverJSON     = "json"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// ScheduleConfig holds time block defaults and the working window.
type ScheduleConfig struct {
	DefaultDuration int      `toml:"default_duration"` // minutes
	DayStart        string   `toml:"day_start"`        // e.g., "08:00"
	DayEnd          string   `toml:"day_end"`          // e.g., "18:00"
	Workdays        []string `toml:"workdays"`         // e.g., ["monday", "tuesday", ...]
	SlotMinutes     int      `toml:"slot_minutes"`     // TUI move/resize step
}

// StorageConfig selects and configures the persistence adapter.
type StorageConfig struct {
	Driver         string `toml:"driver"`          // "sqlite", "postgres", "json"
	DBPath         string `toml:"db_path"`         // sqlite
	DatabaseURL    string `toml:"database_url"`    // postgres
	JSONPath       string `toml:"json_path"`       // json
	SaveTimeout    int    `toml:"save_timeout"`    // seconds per write-through save
	MaxConns       int    `toml:"max_conns"`       // postgres pool size
	ConnectTimeout int    `toml:"connect_timeout"` // seconds, postgres
}

// SaveTimeoutDuration returns the bound on each write-through save.
func (s StorageConfig) SaveTimeoutDuration() time.Duration {
	return time.Duration(s.SaveTimeout) * time.Second
}

// ConnectTimeoutDuration returns the bound on connecting to postgres.
func (s StorageConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(s.ConnectTimeout) * time.Second
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "frappe", "latte"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text", "json"
	File   string `toml:"file"`   // empty means stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			DefaultDuration: 45,
			DayStart:        "08:00",
			DayEnd:          "18:00",
			Workdays:        []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			SlotMinutes:     15,
		},
		Storage: StorageConfig{
			Driver:         DriverSQLite,
			DBPath:         dataPath("chronoblock.db"),
			JSONPath:       dataPath("chronoblock-storage.json"),
			SaveTimeout:    5,
			MaxConns:       4,
			ConnectTimeout: 10,
		},
		UI: UIConfig{
			Theme: "mocha",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// dataPath returns name under the user's data directory.
func dataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "chronoblock", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "chronoblock", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies
// variables from a .env file in the working directory and the environment.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// A missing .env is normal. Variables already set win over the file.
	_ = godotenv.Load()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Storage.JSONPath = expandPath(cfg.Storage.JSONPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CHRONOBLOCK_* environment variables.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CHRONOBLOCK_DEFAULT_DURATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHRONOBLOCK_DEFAULT_DURATION: %w", err)
		}
		cfg.Schedule.DefaultDuration = n
	}
	if v := os.Getenv("CHRONOBLOCK_SLOT_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHRONOBLOCK_SLOT_MINUTES: %w", err)
		}
		cfg.Schedule.SlotMinutes = n
	}
	if v := os.Getenv("CHRONOBLOCK_DAY_START"); v != "" {
		cfg.Schedule.DayStart = v
	}
	if v := os.Getenv("CHRONOBLOCK_DAY_END"); v != "" {
		cfg.Schedule.DayEnd = v
	}
	if v := os.Getenv("CHRONOBLOCK_WORKDAYS"); v != "" {
		cfg.Schedule.Workdays = strings.Split(v, ",")
	}

	if v := os.Getenv("CHRONOBLOCK_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("CHRONOBLOCK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("CHRONOBLOCK_DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("CHRONOBLOCK_JSON_PATH"); v != "" {
		cfg.Storage.JSONPath = v
	}
	for name, field := range map[string]*int{
		"CHRONOBLOCK_SAVE_TIMEOUT":    &cfg.Storage.SaveTimeout,
		"CHRONOBLOCK_MAX_CONNS":       &cfg.Storage.MaxConns,
		"CHRONOBLOCK_CONNECT_TIMEOUT": &cfg.Storage.ConnectTimeout,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = n
	}

	if v := os.Getenv("CHRONOBLOCK_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}

	if v := os.Getenv("CHRONOBLOCK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CHRONOBLOCK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CHRONOBLOCK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Schedule.DefaultDuration <= 0 {
		return errors.New("default_duration must be a positive number of minutes")
	}
	if c.Schedule.SlotMinutes <= 0 || c.Schedule.SlotMinutes > 60 {
		return errors.New("slot_minutes must be between 1 and 60")
	}
	if err := validateTime(c.Schedule.DayStart, "day_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.DayEnd, "day_end"); err != nil {
		return err
	}
	if c.Schedule.DayStart >= c.Schedule.DayEnd {
		return errors.New("day_start must be before day_end")
	}

	if len(c.Schedule.Workdays) == 0 {
		return errors.New("at least one workday must be configured")
	}
	for _, day := range c.Schedule.Workdays {
		if !isValidWeekday(day) {
			return fmt.Errorf("invalid workday: %s", day)
		}
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database_url must be set for the postgres driver")
		}
	case DriverJSON:
		if c.Storage.JSONPath == "" {
			return errors.New("json_path must be set for the json driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	if c.Storage.SaveTimeout <= 0 {
		return errors.New("save_timeout must be a positive number of seconds")
	}
	if c.Storage.MaxConns <= 0 {
		return errors.New("max_conns must be positive")
	}
	if c.Storage.ConnectTimeout <= 0 {
		return errors.New("connect_timeout must be a positive number of seconds")
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	hour := t[0:2]
	min := t[3:5]
	if !isDigits(hour) || !isDigits(min) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if hour > "23" || min > "59" {
		return fmt.Errorf("%s is not a valid time of day, got %q", field, t)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var validWeekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func isValidWeekday(day string) bool {
	_, ok := validWeekdays[strings.ToLower(strings.TrimSpace(day))]
	return ok
}

// DefaultDuration returns the configured default block length.
func (c *Config) DefaultDuration() time.Duration {
	return time.Duration(c.Schedule.DefaultDuration) * time.Minute
}

// SlotStep returns the TUI move/resize step.
func (c *Config) SlotStep() time.Duration {
	return time.Duration(c.Schedule.SlotMinutes) * time.Minute
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
