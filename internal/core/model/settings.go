package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration indicates a settings value outside its documented bounds.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Bounds describes the inclusive range accepted for an integer setting.
type Bounds struct {
	Min int
	Max int
}

// Contains reports whether value is within the bounds.
func (bounds Bounds) Contains(value int) bool {
	return value >= bounds.Min && value <= bounds.Max
}

var (
	FocusDurationBounds      = Bounds{Min: 5, Max: 60}
	ShortBreakDurationBounds = Bounds{Min: 1, Max: 15}
	LongBreakDurationBounds  = Bounds{Min: 5, Max: 30}
	SessionsBeforeLongBounds = Bounds{Min: 2, Max: 8}
)

// ConfigError carries the rejected field and value.
type ConfigError struct {
	Field string
	Value int
	Bounds
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s must be between %d and %d, got %d",
		ErrInvalidConfiguration, err.Field, err.Min, err.Max, err.Value)
}

func (err *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// Settings parameterizes the focus timer.
type Settings struct {
	FocusDurationMinutes      int
	ShortBreakDurationMinutes int
	LongBreakDurationMinutes  int
	SessionsBeforeLongBreak   int
	AutoStartBreaks           bool
	AutoStartNextFocus        bool
	SoundNotificationsEnabled bool
}

// DefaultSettings returns the classic 25/5/15 Pomodoro configuration.
func DefaultSettings() Settings {
	return Settings{
		FocusDurationMinutes:      25,
		ShortBreakDurationMinutes: 5,
		LongBreakDurationMinutes:  15,
		SessionsBeforeLongBreak:   4,
		AutoStartBreaks:           false,
		AutoStartNextFocus:        false,
		SoundNotificationsEnabled: true,
	}
}

// Validate checks every bounded field.
func (settings Settings) Validate() error {
	checks := []struct {
		field  string
		value  int
		bounds Bounds
	}{
		{"focusDurationMinutes", settings.FocusDurationMinutes, FocusDurationBounds},
		{"shortBreakDurationMinutes", settings.ShortBreakDurationMinutes, ShortBreakDurationBounds},
		{"longBreakDurationMinutes", settings.LongBreakDurationMinutes, LongBreakDurationBounds},
		{"sessionsBeforeLongBreak", settings.SessionsBeforeLongBreak, SessionsBeforeLongBounds},
	}
	for _, check := range checks {
		if err := checkBounds(check.field, check.value, check.bounds); err != nil {
			return err
		}
	}
	return nil
}

// SetFocusDuration stores the focus length in minutes.
func (settings *Settings) SetFocusDuration(minutes int) error {
	if err := checkBounds("focusDurationMinutes", minutes, FocusDurationBounds); err != nil {
		return err
	}
	settings.FocusDurationMinutes = minutes
	return nil
}

// SetShortBreakDuration stores the short break length in minutes.
func (settings *Settings) SetShortBreakDuration(minutes int) error {
	if err := checkBounds("shortBreakDurationMinutes", minutes, ShortBreakDurationBounds); err != nil {
		return err
	}
	settings.ShortBreakDurationMinutes = minutes
	return nil
}

// SetLongBreakDuration stores the long break length in minutes.
func (settings *Settings) SetLongBreakDuration(minutes int) error {
	if err := checkBounds("longBreakDurationMinutes", minutes, LongBreakDurationBounds); err != nil {
		return err
	}
	settings.LongBreakDurationMinutes = minutes
	return nil
}

// SetSessionsBeforeLongBreak stores the cycle length.
func (settings *Settings) SetSessionsBeforeLongBreak(sessions int) error {
	if err := checkBounds("sessionsBeforeLongBreak", sessions, SessionsBeforeLongBounds); err != nil {
		return err
	}
	settings.SessionsBeforeLongBreak = sessions
	return nil
}

// DurationMinutesFor returns the configured length of mode in minutes.
func (settings Settings) DurationMinutesFor(mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return settings.ShortBreakDurationMinutes
	case ModeLongBreak:
		return settings.LongBreakDurationMinutes
	default:
		return settings.FocusDurationMinutes
	}
}

// DurationSecondsFor returns the configured length of mode in seconds.
func (settings Settings) DurationSecondsFor(mode Mode) int {
	return settings.DurationMinutesFor(mode) * 60
}

func checkBounds(field string, value int, bounds Bounds) error {
	if !bounds.Contains(value) {
		return &ConfigError{Field: field, Value: value, Bounds: bounds}
	}
	return nil
}
