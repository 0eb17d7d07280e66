// Package settings holds the cross-year user configuration: country,
// language, legend colors and the remote storage credentials. Settings are
// explicit values passed into components, persisted behind the key-value
// store.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/username/timeoff-tracker/internal/kvstore"
	"go.uber.org/zap"
)

// Storage keys. The token and gist id live under their own keys so clearing
// credentials does not touch the rest.
const (
	settingsKey = "timeoff-tracker/settings"
	tokenKey    = "github-token"
	gistIDKey   = "gist-id"
)

// LegendColors is the calendar legend palette.
type LegendColors struct {
	Normal          string `json:"normal"`
	Weekend         string `json:"weekend"`
	Holiday         string `json:"holiday"`
	HolidayWeekend  string `json:"holidayWeekend"`
	PersonalHoliday string `json:"personalHoliday"`
	ICalEvents      string `json:"icalEvents"`
}

// Settings is the cross-year configuration.
type Settings struct {
	Country     string       `json:"country"`
	Subdivision string       `json:"state,omitempty"`
	Language    string       `json:"language"`
	Theme       string       `json:"theme"`
	Colors      LegendColors `json:"colors"`
	ICalURL     string       `json:"icalUrl,omitempty"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() Settings {
	return Settings{
		Country:  "US",
		Language: "en",
		Theme:    "light",
		Colors: LegendColors{
			Normal:          "#9e9e9e",
			Weekend:         "#64b5f6",
			Holiday:         "#81c784",
			HolidayWeekend:  "#4db6ac",
			PersonalHoliday: "#ff8a65",
			ICalEvents:      "#b39ddb",
		},
	}
}

// Manager loads and saves settings through a key-value store.
type Manager struct {
	kv     kvstore.Store
	logger *zap.Logger
}

// NewManager creates a settings manager.
func NewManager(kv kvstore.Store, logger *zap.Logger) *Manager {
	return &Manager{kv: kv, logger: logger}
}

// Load returns the stored settings, falling back to defaults when nothing is
// stored or the stored value is unreadable.
func (m *Manager) Load(ctx context.Context) Settings {
	raw, ok, err := m.kv.Get(ctx, settingsKey)
	if err != nil || !ok {
		if err != nil {
			m.logger.Warn("Failed to read settings, using defaults", zap.Error(err))
		}
		return Defaults()
	}

	s := Defaults()
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		m.logger.Warn("Stored settings are corrupt, using defaults", zap.Error(err))
		return Defaults()
	}
	return s
}

// Save persists the settings.
func (m *Manager) Save(ctx context.Context, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := m.kv.Set(ctx, settingsKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

// Reset restores defaults and clears the stored credentials.
func (m *Manager) Reset(ctx context.Context) (Settings, error) {
	for _, key := range []string{settingsKey, tokenKey, gistIDKey} {
		if err := m.kv.Delete(ctx, key); err != nil {
			return Settings{}, fmt.Errorf("failed to clear %q: %w", key, err)
		}
	}
	return Defaults(), nil
}

// Credentials returns the stored GitHub token and gist id. Either may be
// empty.
func (m *Manager) Credentials(ctx context.Context) (token, gistID string, err error) {
	token, _, err = m.kv.Get(ctx, tokenKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to read token: %w", err)
	}
	gistID, _, err = m.kv.Get(ctx, gistIDKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to read gist id: %w", err)
	}
	return token, gistID, nil
}

// SaveCredentials stores the GitHub token and gist id. An empty gist id
// removes the stored one.
func (m *Manager) SaveCredentials(ctx context.Context, token, gistID string) error {
	if err := m.kv.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if gistID == "" {
		return m.kv.Delete(ctx, gistIDKey)
	}
	return m.kv.Set(ctx, gistIDKey, gistID)
}
