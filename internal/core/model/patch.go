package model

// Patch is a partial settings update. Nil fields are left unchanged.
type Patch struct {
	FocusDurationMinutes      *int
	ShortBreakDurationMinutes *int
	LongBreakDurationMinutes  *int
	SessionsBeforeLongBreak   *int
	AutoStartBreaks           *bool
	AutoStartNextFocus        *bool
	SoundNotificationsEnabled *bool
}

// Int returns a pointer for building patches.
func Int(value int) *int { return &value }

// Bool returns a pointer for building patches.
func Bool(value bool) *bool { return &value }

// IsEmpty reports whether the patch changes nothing.
func (patch Patch) IsEmpty() bool {
	return patch == Patch{}
}

// Apply returns a copy of settings with the patch applied. The receiver is never
// modified and no field is written unless every field is valid.
func (settings Settings) Apply(patch Patch) (Settings, error) {
	updated := settings
	if patch.FocusDurationMinutes != nil {
		if err := updated.SetFocusDuration(*patch.FocusDurationMinutes); err != nil {
			return settings, err
		}
	}
	if patch.ShortBreakDurationMinutes != nil {
		if err := updated.SetShortBreakDuration(*patch.ShortBreakDurationMinutes); err != nil {
			return settings, err
		}
	}
	if patch.LongBreakDurationMinutes != nil {
		if err := updated.SetLongBreakDuration(*patch.LongBreakDurationMinutes); err != nil {
			return settings, err
		}
	}
	if patch.SessionsBeforeLongBreak != nil {
		if err := updated.SetSessionsBeforeLongBreak(*patch.SessionsBeforeLongBreak); err != nil {
			return settings, err
		}
	}
	if patch.AutoStartBreaks != nil {
		updated.AutoStartBreaks = *patch.AutoStartBreaks
	}
	if patch.AutoStartNextFocus != nil {
		updated.AutoStartNextFocus = *patch.AutoStartNextFocus
	}
	if patch.SoundNotificationsEnabled != nil {
		updated.SoundNotificationsEnabled = *patch.SoundNotificationsEnabled
	}
	return updated, nil
}

// Diff returns the patch that turns settings into target.
func (settings Settings) Diff(target Settings) Patch {
	var patch Patch
	if settings.FocusDurationMinutes != target.FocusDurationMinutes {
		patch.FocusDurationMinutes = Int(target.FocusDurationMinutes)
	}
	if settings.ShortBreakDurationMinutes != target.ShortBreakDurationMinutes {
		patch.ShortBreakDurationMinutes = Int(target.ShortBreakDurationMinutes)
	}
	if settings.LongBreakDurationMinutes != target.LongBreakDurationMinutes {
		patch.LongBreakDurationMinutes = Int(target.LongBreakDurationMinutes)
	}
	if settings.SessionsBeforeLongBreak != target.SessionsBeforeLongBreak {
		patch.SessionsBeforeLongBreak = Int(target.SessionsBeforeLongBreak)
	}
	if settings.AutoStartBreaks != target.AutoStartBreaks {
		patch.AutoStartBreaks = Bool(target.AutoStartBreaks)
	}
	if settings.AutoStartNextFocus != target.AutoStartNextFocus {
		patch.AutoStartNextFocus = Bool(target.AutoStartNextFocus)
	}
	if settings.SoundNotificationsEnabled != target.SoundNotificationsEnabled {
		patch.SoundNotificationsEnabled = Bool(target.SoundNotificationsEnabled)
	}
	return patch
}
