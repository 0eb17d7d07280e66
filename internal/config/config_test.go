package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
calendar:
  country: FR
  subdivision: "57"
  work_days_per_year: 210
  carryover_holidays: 2
gist:
  token: tok
  gist_id: abc123
sync:
  debounce_interval: 5s
state:
  database_path: /tmp/test.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Calendar.Country != "FR" {
		t.Errorf("country = %q, want FR", cfg.Calendar.Country)
	}
	if cfg.Calendar.Subdivision != "57" {
		t.Errorf("subdivision = %q, want 57", cfg.Calendar.Subdivision)
	}
	if cfg.Calendar.WorkDaysPerYear != 210 {
		t.Errorf("work_days_per_year = %d, want 210", cfg.Calendar.WorkDaysPerYear)
	}
	if cfg.Gist.APIEndpoint != "https://api.github.com" {
		t.Errorf("api_endpoint default = %q", cfg.Gist.APIEndpoint)
	}
	if got := cfg.Sync.GetDebounceInterval(); got != 5*time.Second {
		t.Errorf("debounce = %v, want 5s", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "calendar:\n  country: US\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Calendar.WorkDaysPerYear != 216 {
		t.Errorf("work_days_per_year default = %d, want 216", cfg.Calendar.WorkDaysPerYear)
	}
	if cfg.Daemon.Schedule != "0 */2 * * *" {
		t.Errorf("daemon.schedule default = %q", cfg.Daemon.Schedule)
	}
	if got := cfg.Sync.GetDebounceInterval(); got != 2*time.Second {
		t.Errorf("debounce default = %v, want 2s", got)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TimeOffToken", "secret-token")
	path := writeConfig(t, `
gist:
  token: ${TimeOffToken}
  gist_id: abc123
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Gist.Token != "secret-token" {
		t.Errorf("token = %q, want expanded env var", cfg.Gist.Token)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing country", func(c *Config) { c.Calendar.Country = "" }, true},
		{"zero work days", func(c *Config) { c.Calendar.WorkDaysPerYear = 0 }, true},
		{"negative carryover", func(c *Config) { c.Calendar.CarryoverHolidays = -1 }, true},
		{"gist id without token", func(c *Config) { c.Gist.GistID = "abc"; c.Gist.Token = "" }, true},
		{"missing database path", func(c *Config) { c.State.DatabasePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Calendar: CalendarConfig{Country: "US", WorkDaysPerYear: 216},
				Gist:     GistConfig{APIEndpoint: "https://api.github.com"},
				Sync:     SyncConfig{MaxRetries: 3},
				State:    StateConfig{DatabasePath: "state.db"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
