package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Strava      StravaConfig      `json:"strava"`
	Credentials CredentialsConfig `json:"credentials"`
	Ranking     RankingConfig     `json:"ranking"`
	Display     DisplayConfig     `json:"display"`
	Export      ExportConfig      `json:"export"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID           string `json:"client_id"`
	ClientSecret       string `json:"client_secret"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds"`

	// AuthCode is a one-time authorization code. It is only read from the
	// CODE environment variable and never written back to disk.
	AuthCode string `json:"-"`
}

// CredentialsConfig controls where the OAuth token triple is persisted
type CredentialsConfig struct {
	Backend string `json:"backend"` // "file" or "sqlite"
	Path    string `json:"path"`
}

// RankingConfig holds the segment ranking defaults
type RankingConfig struct {
	Gender         string `json:"gender"`          // "man" or "women"
	Filter         string `json:"filter"`          // "all" or "climbs"
	PRFilter       int    `json:"pr_filter"`       // 0 disables
	SampleSize     int    `json:"sample_size"`     // cap on leader lookups
	SampleStrategy string `json:"sample_strategy"` // "random", "first" or "all"
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	PathColor    string `json:"path_color"`
}

// ExportConfig controls ranked table exports
type ExportConfig struct {
	Dir    string `json:"dir"`
	Format string `json:"format"` // "parquet" or "csv"
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Strava: StravaConfig{
			HTTPTimeoutSeconds: 10,
		},
		Credentials: CredentialsConfig{
			Backend: "file",
		},
		Ranking: RankingConfig{
			Gender:         "man",
			Filter:         "all",
			SampleSize:     30,
			SampleStrategy: "random",
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PathColor:    "#ed1c24",
		},
		Export: ExportConfig{
			Format: "parquet",
		},
	}
}

// HTTPTimeout returns the timeout applied to every Strava call
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Strava.HTTPTimeoutSeconds) * time.Second
}

// Load reads the configuration from ~/.segment-leader/config.json and applies
// environment overrides. A missing file is only an error when the environment
// doesn't supply the client credentials either.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path and applies environment overrides
func LoadFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if getEnv("CLIENT_ID", "") == "" {
			return nil, ErrNoConfig
		}
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overrides file values with the environment
func applyEnv(cfg *Config) {
	cfg.Strava.ClientID = getEnv("CLIENT_ID", cfg.Strava.ClientID)
	cfg.Strava.ClientSecret = getEnv("CLIENT_SECRET", cfg.Strava.ClientSecret)
	cfg.Strava.AuthCode = getEnv("CODE", cfg.Strava.AuthCode)
	cfg.Credentials.Path = getEnv("TOKENS_FILEPATH", cfg.Credentials.Path)
	if v := getEnv("SAMPLE_SIZE", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ranking.SampleSize = n
		}
	}
}

// applyDefaults fills in missing values
func applyDefaults(cfg *Config) error {
	defaults := DefaultConfig()
	if cfg.Strava.HTTPTimeoutSeconds == 0 {
		cfg.Strava.HTTPTimeoutSeconds = defaults.Strava.HTTPTimeoutSeconds
	}
	if cfg.Credentials.Backend == "" {
		cfg.Credentials.Backend = defaults.Credentials.Backend
	}
	if cfg.Credentials.Path == "" {
		dir, err := GetConfigDir()
		if err != nil {
			return err
		}
		name := "tokens.json"
		if cfg.Credentials.Backend == "sqlite" {
			name = "data.db"
		}
		cfg.Credentials.Path = filepath.Join(dir, name)
	}
	if cfg.Ranking.Gender == "" {
		cfg.Ranking.Gender = defaults.Ranking.Gender
	}
	if cfg.Ranking.Filter == "" {
		cfg.Ranking.Filter = defaults.Ranking.Filter
	}
	if cfg.Ranking.SampleSize == 0 {
		cfg.Ranking.SampleSize = defaults.Ranking.SampleSize
	}
	if cfg.Ranking.SampleStrategy == "" {
		cfg.Ranking.SampleStrategy = defaults.Ranking.SampleStrategy
	}
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.PathColor == "" {
		cfg.Display.PathColor = defaults.Display.PathColor
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = defaults.Export.Format
	}
	if cfg.Export.Dir == "" {
		dir, err := GetConfigDir()
		if err != nil {
			return err
		}
		cfg.Export.Dir = filepath.Join(dir, "exports")
	}
	return nil
}

// Save writes the configuration to ~/.segment-leader/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava.ClientID = "YOUR_CLIENT_ID"
	example.Strava.ClientSecret = "YOUR_CLIENT_SECRET"

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}

	if c.Credentials.Backend != "file" && c.Credentials.Backend != "sqlite" {
		return fmt.Errorf("credentials.backend must be \"file\" or \"sqlite\", got %q", c.Credentials.Backend)
	}

	if c.Ranking.Gender != "man" && c.Ranking.Gender != "women" {
		return fmt.Errorf("ranking.gender must be \"man\" or \"women\", got %q", c.Ranking.Gender)
	}
	if c.Ranking.Filter != "all" && c.Ranking.Filter != "climbs" {
		return fmt.Errorf("ranking.filter must be \"all\" or \"climbs\", got %q", c.Ranking.Filter)
	}
	if c.Ranking.PRFilter < 0 {
		return fmt.Errorf("ranking.pr_filter must not be negative, got %d", c.Ranking.PRFilter)
	}
	if c.Ranking.SampleSize < 0 {
		return fmt.Errorf("ranking.sample_size must not be negative, got %d", c.Ranking.SampleSize)
	}
	switch c.Ranking.SampleStrategy {
	case "random", "first", "all":
	default:
		return fmt.Errorf("ranking.sample_strategy must be \"random\", \"first\" or \"all\", got %q", c.Ranking.SampleStrategy)
	}

	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Export.Format != "parquet" && c.Export.Format != "csv" {
		return fmt.Errorf("export.format must be \"parquet\" or \"csv\", got %q", c.Export.Format)
	}
	if c.Strava.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("strava.http_timeout_seconds must not be negative, got %d", c.Strava.HTTPTimeoutSeconds)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".segment-leader"), nil
}
