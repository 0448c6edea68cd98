package preferences

import (
	"time"

	"deepwork/internal/core/model"
)

// Settings defines the values collected by the session dialog.
type Settings struct {
	WorkDuration  time.Duration
	BreakDuration time.Duration
	Sessions      int
}

// DefaultSettings returns default settings for deepwork.
func DefaultSettings() Settings {
	return FromSessionConfig(model.DefaultSessionConfig())
}

// FromSessionConfig converts an engine configuration to settings.
func FromSessionConfig(config model.SessionConfig) Settings {
	return Settings{
		WorkDuration:  config.WorkDuration(),
		BreakDuration: config.BreakDuration(),
		Sessions:      config.TotalSessions,
	}
}

// SessionConfig converts settings to the engine configuration.
func (settings Settings) SessionConfig() model.SessionConfig {
	return model.SessionConfig{
		WorkSeconds:   int(settings.WorkDuration / time.Second),
		BreakSeconds:  int(settings.BreakDuration / time.Second),
		TotalSessions: settings.Sessions,
	}
}

// Minutes returns the work and break durations in whole minutes.
func (settings Settings) Minutes() (work, brk int) {
	return int(settings.WorkDuration / time.Minute), int(settings.BreakDuration / time.Minute)
}

// ParseSettings validates raw dialog input. Durations are whole minutes.
func ParseSettings(workMinutes, breakMinutes, sessions string) (Settings, error) {
	config, err := model.ParseMinutes(workMinutes, breakMinutes, sessions)
	if err != nil {
		return Settings{}, err
	}
	return FromSessionConfig(config), nil
}
