package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ranking.SampleSize != 30 {
		t.Errorf("Ranking.SampleSize = %v, want 30", cfg.Ranking.SampleSize)
	}
	if cfg.Ranking.SampleStrategy != "random" {
		t.Errorf("Ranking.SampleStrategy = %q, want %q", cfg.Ranking.SampleStrategy, "random")
	}
	if cfg.Ranking.Gender != "man" {
		t.Errorf("Ranking.Gender = %q, want %q", cfg.Ranking.Gender, "man")
	}
	if cfg.Credentials.Backend != "file" {
		t.Errorf("Credentials.Backend = %q, want %q", cfg.Credentials.Backend, "file")
	}
	if cfg.HTTPTimeout() != 10*time.Second {
		t.Errorf("HTTPTimeout() = %v, want 10s", cfg.HTTPTimeout())
	}

	// Strava config should be empty by default
	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}
	if cfg.Strava.ClientSecret != "" {
		t.Errorf("Strava.ClientSecret should be empty, got %q", cfg.Strava.ClientSecret)
	}
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Strava.ClientID = "12345"
	cfg.Strava.ClientSecret = "abc123secret"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "empty client ID",
			mutate:      func(c *Config) { c.Strava.ClientID = "" },
			expectError: true,
			errContains: "client_id",
		},
		{
			name:        "placeholder client ID",
			mutate:      func(c *Config) { c.Strava.ClientID = "YOUR_CLIENT_ID" },
			expectError: true,
			errContains: "client_id",
		},
		{
			name:        "placeholder client secret",
			mutate:      func(c *Config) { c.Strava.ClientSecret = "YOUR_CLIENT_SECRET" },
			expectError: true,
			errContains: "client_secret",
		},
		{
			name: "both placeholders",
			mutate: func(c *Config) {
				c.Strava.ClientID = "YOUR_CLIENT_ID"
				c.Strava.ClientSecret = "YOUR_CLIENT_SECRET"
			},
			expectError: true,
			errContains: "client_id", // first error wins
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.Credentials.Backend = "redis" },
			expectError: true,
			errContains: "credentials.backend",
		},
		{
			name:        "unknown gender",
			mutate:      func(c *Config) { c.Ranking.Gender = "other" },
			expectError: true,
			errContains: "ranking.gender",
		},
		{
			name:        "unknown filter",
			mutate:      func(c *Config) { c.Ranking.Filter = "descents" },
			expectError: true,
			errContains: "ranking.filter",
		},
		{
			name:        "negative pr filter",
			mutate:      func(c *Config) { c.Ranking.PRFilter = -1 },
			expectError: true,
			errContains: "pr_filter",
		},
		{
			name:        "unknown sample strategy",
			mutate:      func(c *Config) { c.Ranking.SampleStrategy = "stratified" },
			expectError: true,
			errContains: "sample_strategy",
		},
		{
			name:        "unknown export format",
			mutate:      func(c *Config) { c.Export.Format = "xlsx" },
			expectError: true,
			errContains: "export.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CLIENT_ID", "CLIENT_SECRET", "CODE", "TOKENS_FILEPATH", "SAMPLE_SIZE"} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadFileMissingWithoutEnv(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("LoadFile() error = %v, want ErrNoConfig", err)
	}
}

func TestLoadFileMissingWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLIENT_ID", "999")
	t.Setenv("CLIENT_SECRET", "shh")
	t.Setenv("TOKENS_FILEPATH", "/tmp/strava_tokens.json")
	t.Setenv("CODE", "abc")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Strava.ClientID != "999" || cfg.Strava.ClientSecret != "shh" {
		t.Errorf("credentials = %q/%q, want 999/shh", cfg.Strava.ClientID, cfg.Strava.ClientSecret)
	}
	if cfg.Strava.AuthCode != "abc" {
		t.Errorf("AuthCode = %q, want abc", cfg.Strava.AuthCode)
	}
	if cfg.Credentials.Path != "/tmp/strava_tokens.json" {
		t.Errorf("Credentials.Path = %q, want /tmp/strava_tokens.json", cfg.Credentials.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFileAppliesDefaultsAndOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SAMPLE_SIZE", "12")

	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"strava": {"client_id": "1", "client_secret": "s"},
		"credentials": {"backend": "sqlite"},
		"ranking": {"gender": "women", "pr_filter": 3}
	}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Ranking.Gender != "women" {
		t.Errorf("Ranking.Gender = %q, want women", cfg.Ranking.Gender)
	}
	if cfg.Ranking.PRFilter != 3 {
		t.Errorf("Ranking.PRFilter = %d, want 3", cfg.Ranking.PRFilter)
	}
	if cfg.Ranking.SampleSize != 12 {
		t.Errorf("Ranking.SampleSize = %d, want 12 from env", cfg.Ranking.SampleSize)
	}
	if cfg.Ranking.Filter != "all" {
		t.Errorf("Ranking.Filter = %q, want default all", cfg.Ranking.Filter)
	}
	if filepath.Base(cfg.Credentials.Path) != "data.db" {
		t.Errorf("Credentials.Path = %q, want data.db for sqlite backend", cfg.Credentials.Path)
	}
	if cfg.Strava.HTTPTimeoutSeconds != 10 {
		t.Errorf("HTTPTimeoutSeconds = %d, want 10", cfg.Strava.HTTPTimeoutSeconds)
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SEGMENT_LEADER_TEST_VAR", "")
	if got := getEnv("SEGMENT_LEADER_TEST_VAR", "default"); got != "default" {
		t.Errorf("expected 'default', got '%s'", got)
	}

	t.Setenv("SEGMENT_LEADER_TEST_VAR", "test_value")
	if got := getEnv("SEGMENT_LEADER_TEST_VAR", "default"); got != "test_value" {
		t.Errorf("expected 'test_value', got '%s'", got)
	}
}
