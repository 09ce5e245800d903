package config

import (
	"time"

	"github.com/doruk/focusdo/internal/storage"
)

// AppSettings are user preferences persisted in the app_settings storage
// domain, as opposed to the machine-level yaml Config.
type AppSettings struct {
	WeekStart time.Weekday `json:"week_start"`
}

// DefaultAppSettings starts the week on Sunday.
func DefaultAppSettings() AppSettings {
	return AppSettings{WeekStart: time.Sunday}
}

// LoadAppSettings reads the persisted settings, falling back to defaults.
func LoadAppSettings(st *storage.Store) AppSettings {
	s := DefaultAppSettings()
	st.LoadJSON(storage.KeyAppSettings, &s)
	return s
}

// SaveAppSettings persists the settings.
func SaveAppSettings(st *storage.Store, s AppSettings) error {
	return st.SaveJSON(storage.KeyAppSettings, s)
}
