package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"focustimer/internal/core/model"
)

// SettingsFileName is the settings file kept in the app config directory.
const SettingsFileName = "settings.yaml"

type yamlSettings struct {
	FocusDurationMinutes      *int  `yaml:"focus_duration_minutes,omitempty"`
	ShortBreakDurationMinutes *int  `yaml:"short_break_duration_minutes,omitempty"`
	LongBreakDurationMinutes  *int  `yaml:"long_break_duration_minutes,omitempty"`
	SessionsBeforeLongBreak   *int  `yaml:"sessions_before_long_break,omitempty"`
	AutoStartBreaks           *bool `yaml:"auto_start_breaks,omitempty"`
	AutoStartNextFocus        *bool `yaml:"auto_start_next_focus,omitempty"`
	SoundNotifications        *bool `yaml:"sound_notifications,omitempty"`
}

// SettingsPath returns the settings file location inside configDir.
func SettingsPath(configDir string) string {
	return filepath.Join(configDir, SettingsFileName)
}

// LoadSettings reads timer settings from YAML.
// If the file does not exist, default settings are returned. Values outside
// their bounds keep the default and are reported in ignored.
func LoadSettings(path string) (settings model.Settings, ignored []error, err error) {
	settings = model.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil, nil
		}
		return settings, nil, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, nil, fmt.Errorf("parse settings yaml: %w", err)
	}

	ignored = applyYamlSettings(&settings, fileData)
	return settings, ignored, nil
}

// SaveSettings writes timer settings to YAML.
func SaveSettings(path string, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		FocusDurationMinutes:      model.Int(settings.FocusDurationMinutes),
		ShortBreakDurationMinutes: model.Int(settings.ShortBreakDurationMinutes),
		LongBreakDurationMinutes:  model.Int(settings.LongBreakDurationMinutes),
		SessionsBeforeLongBreak:   model.Int(settings.SessionsBeforeLongBreak),
		AutoStartBreaks:           model.Bool(settings.AutoStartBreaks),
		AutoStartNextFocus:        model.Bool(settings.AutoStartNextFocus),
		SoundNotifications:        model.Bool(settings.SoundNotificationsEnabled),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) []error {
	var ignored []error
	keep := func(err error) {
		if err != nil {
			ignored = append(ignored, err)
		}
	}

	if fileData.FocusDurationMinutes != nil {
		keep(settings.SetFocusDuration(*fileData.FocusDurationMinutes))
	}
	if fileData.ShortBreakDurationMinutes != nil {
		keep(settings.SetShortBreakDuration(*fileData.ShortBreakDurationMinutes))
	}
	if fileData.LongBreakDurationMinutes != nil {
		keep(settings.SetLongBreakDuration(*fileData.LongBreakDurationMinutes))
	}
	if fileData.SessionsBeforeLongBreak != nil {
		keep(settings.SetSessionsBeforeLongBreak(*fileData.SessionsBeforeLongBreak))
	}
	if fileData.AutoStartBreaks != nil {
		settings.AutoStartBreaks = *fileData.AutoStartBreaks
	}
	if fileData.AutoStartNextFocus != nil {
		settings.AutoStartNextFocus = *fileData.AutoStartNextFocus
	}
	if fileData.SoundNotifications != nil {
		settings.SoundNotificationsEnabled = *fileData.SoundNotifications
	}
	return ignored
}
