package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/common"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// DefaultSyncIntervalMinutes matches the 300000 ms auto-sync period.
const DefaultSyncIntervalMinutes = 5

// Settings is persisted in settings.json and overwritten wholesale on save.
type Settings struct {
	Theme         string `json:"theme"`
	AutoSync      bool   `json:"autoSync"`
	SyncInterval  int    `json:"syncInterval"` // minutes
	Notifications bool   `json:"notifications"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:         ThemeLight,
		AutoSync:      true,
		SyncInterval:  DefaultSyncIntervalMinutes,
		Notifications: true,
	}
}

// Validate rejects settings the shell cannot act on.
func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("%w: unknown theme %q", common.ErrInvalidSettings, s.Theme)
	}
	if s.SyncInterval <= 0 {
		return fmt.Errorf("%w: sync interval must be positive, got %d", common.ErrInvalidSettings, s.SyncInterval)
	}
	return nil
}

// Interval is SyncInterval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.SyncInterval) * time.Minute
}
