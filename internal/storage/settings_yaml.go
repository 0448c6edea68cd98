package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"deepwork/internal/core/model"
	"deepwork/internal/platform"
	"deepwork/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	WorkMinutes  int `yaml:"work_minutes"`
	BreakMinutes int `yaml:"break_minutes"`
	Sessions     int `yaml:"sessions"`
}

// LoadSettings reads the last used session values from YAML.
// If the settings file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	return LoadSettingsOver(appName, preferences.DefaultSettings())
}

// LoadSettingsOver reads the last used session values on top of base.
// Fields missing from the file or rejected by the engine keep the base value.
func LoadSettingsOver(appName string, base preferences.Settings) (preferences.Settings, error) {
	settingsPath, err := SettingsPath(appName)
	if err != nil {
		return base, err
	}
	return loadSettingsFile(settingsPath, base)
}

// LoadSettingsFile reads settings from an explicit path.
func LoadSettingsFile(settingsPath string) (preferences.Settings, error) {
	return loadSettingsFile(settingsPath, preferences.DefaultSettings())
}

func loadSettingsFile(settingsPath string, settings preferences.Settings) (preferences.Settings, error) {
	rawData, err := os.ReadFile(settingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes the session values to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	settingsPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(settingsPath, settings)
}

// SaveSettingsFile writes settings to an explicit path.
func SaveSettingsFile(settingsPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	workMinutes, breakMinutes := settings.Minutes()
	fileData := yamlSettings{
		WorkMinutes:  workMinutes,
		BreakMinutes: breakMinutes,
		Sessions:     settings.Sessions,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(settingsPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the settings file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := platform.NewService().GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// applyYamlSettings keeps the base value for every field the engine would
// reject. Minutes are checked before conversion so huge values cannot wrap.
func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if model.Bounds.WorkSeconds.Minutes().Contains(fileData.WorkMinutes) {
		settings.WorkDuration = time.Duration(fileData.WorkMinutes) * time.Minute
	}
	if model.Bounds.BreakSeconds.Minutes().Contains(fileData.BreakMinutes) {
		settings.BreakDuration = time.Duration(fileData.BreakMinutes) * time.Minute
	}
	if model.Bounds.TotalSessions.Contains(fileData.Sessions) {
		settings.Sessions = fileData.Sessions
	}
}
