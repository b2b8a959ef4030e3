package model

import (
	"fmt"
	"strings"
)

// Mode selects which countdown is active.
type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeFocus, ModeShortBreak, ModeLongBreak}

// IsBreak reports whether the mode is one of the break modes.
func (mode Mode) IsBreak() bool {
	return mode == ModeShortBreak || mode == ModeLongBreak
}

// Valid reports whether mode is a known value.
func (mode Mode) Valid() bool {
	switch mode {
	case ModeFocus, ModeShortBreak, ModeLongBreak:
		return true
	}
	return false
}

// Title returns the human label shown in UIs.
func (mode Mode) Title() string {
	switch mode {
	case ModeFocus:
		return "Focus Time"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

// ParseMode converts user input into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "focus", "work", "pomodoro":
		return ModeFocus, nil
	case "short_break", "short-break", "shortbreak", "short":
		return ModeShortBreak, nil
	case "long_break", "long-break", "longbreak", "long":
		return ModeLongBreak, nil
	default:
		return "", fmt.Errorf("unknown mode %q", value)
	}
}
