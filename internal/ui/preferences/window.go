package preferences

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"focustimer/internal/core/model"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings model.Settings
	onSave   func(model.Patch) error

	focus      *widget.Entry
	shortBreak *widget.Entry
	longBreak  *widget.Entry
	sessions   *widget.Entry
	autoBreaks *widget.Check
	autoFocus  *widget.Check
	sound      *widget.Check
}

// New creates a preferences window. onSave receives only the changed fields;
// an error keeps the window open.
func New(app fyne.App, settings model.Settings, onSave func(model.Patch) error) *Window {
	window := app.NewWindow("FocusTimer Preferences")

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		focus:      boundedEntry(model.FocusDurationBounds),
		shortBreak: boundedEntry(model.ShortBreakDurationBounds),
		longBreak:  boundedEntry(model.LongBreakDurationBounds),
		sessions:   boundedEntry(model.SessionsBeforeLongBounds),
		autoBreaks: widget.NewCheck("Start breaks automatically", nil),
		autoFocus:  widget.NewCheck("Start the next focus session automatically", nil),
		sound:      widget.NewCheck("Play a sound when a session ends", nil),
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Durations", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Focus (min)", prefs.focus),
			widget.NewFormItem("Short break (min)", prefs.shortBreak),
			widget.NewFormItem("Long break (min)", prefs.longBreak),
			widget.NewFormItem("Sessions before long break", prefs.sessions),
		),
		widget.NewLabelWithStyle("Behaviour", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.autoBreaks,
		prefs.autoFocus,
		prefs.sound,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	})
	buttons := container.NewHBox(layout.NewSpacer(), cancelButton, saveButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(420, 380))

	prefs.UpdateSettings(settings)
	return prefs
}

func boundedEntry(bounds model.Bounds) *widget.Entry {
	entry := widget.NewEntry()
	entry.Validator = Validator(bounds)
	return entry
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.Settings) {
	prefs.settings = settings
	form := NewForm(settings)
	prefs.focus.SetText(form.FocusMinutes)
	prefs.shortBreak.SetText(form.ShortBreakMinutes)
	prefs.longBreak.SetText(form.LongBreakMinutes)
	prefs.sessions.SetText(form.SessionsPerCycle)
	prefs.autoBreaks.SetChecked(form.AutoStartBreaks)
	prefs.autoFocus.SetChecked(form.AutoStartNextFocus)
	prefs.sound.SetChecked(form.Sound)
}

func (prefs *Window) form() Form {
	return Form{
		FocusMinutes:       prefs.focus.Text,
		ShortBreakMinutes:  prefs.shortBreak.Text,
		LongBreakMinutes:   prefs.longBreak.Text,
		SessionsPerCycle:   prefs.sessions.Text,
		AutoStartBreaks:    prefs.autoBreaks.Checked,
		AutoStartNextFocus: prefs.autoFocus.Checked,
		Sound:              prefs.sound.Checked,
	}
}

func (prefs *Window) handleSave() {
	patch, err := prefs.form().Patch(prefs.settings)
	if err != nil {
		dialog.ShowError(err, prefs.window)
		return
	}
	if !patch.IsEmpty() && prefs.onSave != nil {
		if err := prefs.onSave(patch); err != nil {
			dialog.ShowError(err, prefs.window)
			return
		}
	}
	prefs.window.Hide()
}
