// Package preferences implements the settings window of the tray app.
package preferences

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"focustimer/internal/core/model"
)

// Form holds the editable text and toggles of the preferences window.
type Form struct {
	FocusMinutes      string
	ShortBreakMinutes string
	LongBreakMinutes  string
	SessionsPerCycle  string

	AutoStartBreaks    bool
	AutoStartNextFocus bool
	Sound              bool
}

// NewForm fills a form from settings.
func NewForm(settings model.Settings) Form {
	return Form{
		FocusMinutes:       strconv.Itoa(settings.FocusDurationMinutes),
		ShortBreakMinutes:  strconv.Itoa(settings.ShortBreakDurationMinutes),
		LongBreakMinutes:   strconv.Itoa(settings.LongBreakDurationMinutes),
		SessionsPerCycle:   strconv.Itoa(settings.SessionsBeforeLongBreak),
		AutoStartBreaks:    settings.AutoStartBreaks,
		AutoStartNextFocus: settings.AutoStartNextFocus,
		Sound:              settings.SoundNotificationsEnabled,
	}
}

// Patch converts the form into the changes relative to current. Every invalid
// field is reported; nothing is returned unless all of them are valid.
func (form Form) Patch(current model.Settings) (model.Patch, error) {
	target := current
	var errs []error
	set := func(text string, setter func(int) error, label string) {
		value, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a whole number", label, text))
			return
		}
		if err := setter(value); err != nil {
			errs = append(errs, err)
		}
	}
	set(form.FocusMinutes, target.SetFocusDuration, "focus duration")
	set(form.ShortBreakMinutes, target.SetShortBreakDuration, "short break duration")
	set(form.LongBreakMinutes, target.SetLongBreakDuration, "long break duration")
	set(form.SessionsPerCycle, target.SetSessionsBeforeLongBreak, "sessions before long break")
	if len(errs) > 0 {
		return model.Patch{}, errors.Join(errs...)
	}

	target.AutoStartBreaks = form.AutoStartBreaks
	target.AutoStartNextFocus = form.AutoStartNextFocus
	target.SoundNotificationsEnabled = form.Sound
	return current.Diff(target), nil
}

// Validator returns an entry validator for a bounded integer field.
func Validator(bounds model.Bounds) func(string) error {
	return func(text string) error {
		value, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return errors.New("enter a whole number")
		}
		if !bounds.Contains(value) {
			return fmt.Errorf("must be between %d and %d", bounds.Min, bounds.Max)
		}
		return nil
	}
}
