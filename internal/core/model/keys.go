package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownSetting is returned for a settings key that does not exist.
var ErrUnknownSetting = errors.New("unknown setting")

// Setting keys, shared by the settings file and the command line.
const (
	KeyFocusDuration           = "focus_duration_minutes"
	KeyShortBreakDuration      = "short_break_duration_minutes"
	KeyLongBreakDuration       = "long_break_duration_minutes"
	KeySessionsBeforeLongBreak = "sessions_before_long_break"
	KeyAutoStartBreaks         = "auto_start_breaks"
	KeyAutoStartNextFocus      = "auto_start_next_focus"
	KeySoundNotifications      = "sound_notifications"
)

// SettingKeys lists every key in display order.
var SettingKeys = []string{
	KeyFocusDuration,
	KeyShortBreakDuration,
	KeyLongBreakDuration,
	KeySessionsBeforeLongBreak,
	KeyAutoStartBreaks,
	KeyAutoStartNextFocus,
	KeySoundNotifications,
}

// Value returns the setting stored under key as text.
func (settings Settings) Value(key string) (string, error) {
	switch normalizeKey(key) {
	case KeyFocusDuration:
		return strconv.Itoa(settings.FocusDurationMinutes), nil
	case KeyShortBreakDuration:
		return strconv.Itoa(settings.ShortBreakDurationMinutes), nil
	case KeyLongBreakDuration:
		return strconv.Itoa(settings.LongBreakDurationMinutes), nil
	case KeySessionsBeforeLongBreak:
		return strconv.Itoa(settings.SessionsBeforeLongBreak), nil
	case KeyAutoStartBreaks:
		return strconv.FormatBool(settings.AutoStartBreaks), nil
	case KeyAutoStartNextFocus:
		return strconv.FormatBool(settings.AutoStartNextFocus), nil
	case KeySoundNotifications:
		return strconv.FormatBool(settings.SoundNotificationsEnabled), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
}

// ParsePatch builds a single-field patch from a key and its textual value.
// Bounds are checked later, when the patch is applied.
func ParsePatch(key, value string) (Patch, error) {
	key = normalizeKey(key)
	var patch Patch
	switch key {
	case KeyFocusDuration, KeyShortBreakDuration, KeyLongBreakDuration, KeySessionsBeforeLongBreak:
		number, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Patch{}, fmt.Errorf("%s: %q is not a whole number", key, value)
		}
		switch key {
		case KeyFocusDuration:
			patch.FocusDurationMinutes = &number
		case KeyShortBreakDuration:
			patch.ShortBreakDurationMinutes = &number
		case KeyLongBreakDuration:
			patch.LongBreakDurationMinutes = &number
		default:
			patch.SessionsBeforeLongBreak = &number
		}
	case KeyAutoStartBreaks, KeyAutoStartNextFocus, KeySoundNotifications:
		flag, err := parseBool(value)
		if err != nil {
			return Patch{}, fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case KeyAutoStartBreaks:
			patch.AutoStartBreaks = &flag
		case KeyAutoStartNextFocus:
			patch.AutoStartNextFocus = &flag
		default:
			patch.SoundNotificationsEnabled = &flag
		}
	default:
		return Patch{}, fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	return patch, nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	flag, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", value)
	}
	return flag, nil
}
