// Package dashboard is the main window of the tray app: the countdown, its
// controls, the current task and today's statistics.
package dashboard

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/session"
)

// Controller is the part of a session the dashboard drives.
type Controller interface {
	Toggle()
	Reset()
	Skip()
	SwitchMode(mode model.Mode) error
	SetTask(task string)
}

// Window manages the dashboard UI.
type Window struct {
	window     fyne.Window
	controller Controller
	onError    func(error)

	modeSelect *widget.RadioGroup
	modeLabel  *canvas.Text
	timerLabel *canvas.Text
	progress   *widget.ProgressBar
	cycleLabel *widget.Label
	taskEntry  *widget.Entry
	toggle     *widget.Button
	statsLabel *widget.Label

	mode     model.Mode
	updating bool
}

var modeColors = map[model.Mode]color.NRGBA{
	model.ModeFocus:      {R: 229, G: 57, B: 53, A: 255},
	model.ModeShortBreak: {R: 139, G: 195, B: 74, A: 255},
	model.ModeLongBreak:  {R: 33, G: 150, B: 243, A: 255},
}

// New creates the dashboard. onError receives rejected mode switches.
func New(app fyne.App, controller Controller, onError func(error)) *Window {
	window := app.NewWindow("FocusTimer")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	dashboard := &Window{
		window:     window,
		controller: controller,
		onError:    onError,
	}

	titles := make([]string, 0, len(model.Modes))
	for _, mode := range model.Modes {
		titles = append(titles, mode.Title())
	}
	dashboard.modeSelect = widget.NewRadioGroup(titles, dashboard.handleModeSelected)
	dashboard.modeSelect.Horizontal = true
	dashboard.modeSelect.Required = true

	dashboard.modeLabel = canvas.NewText("", modeColors[model.ModeFocus])
	dashboard.modeLabel.Alignment = fyne.TextAlignCenter
	dashboard.modeLabel.TextStyle = fyne.TextStyle{Bold: true}
	dashboard.modeLabel.TextSize = 18

	dashboard.timerLabel = canvas.NewText("--:--", modeColors[model.ModeFocus])
	dashboard.timerLabel.Alignment = fyne.TextAlignCenter
	dashboard.timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	dashboard.timerLabel.TextSize = 64

	dashboard.progress = widget.NewProgressBar()
	dashboard.progress.Max = 100
	dashboard.progress.TextFormatter = func() string { return "" }

	dashboard.cycleLabel = widget.NewLabel("")
	dashboard.cycleLabel.Alignment = fyne.TextAlignCenter

	dashboard.taskEntry = widget.NewEntry()
	dashboard.taskEntry.SetPlaceHolder("What are you working on?")
	dashboard.taskEntry.OnSubmitted = controller.SetTask

	dashboard.toggle = widget.NewButton("Start", controller.Toggle)
	dashboard.toggle.Importance = widget.HighImportance
	reset := widget.NewButton("Reset", controller.Reset)
	skip := widget.NewButton("Skip", controller.Skip)

	dashboard.statsLabel = widget.NewLabel("")
	dashboard.statsLabel.Alignment = fyne.TextAlignCenter

	content := container.NewVBox(
		container.NewCenter(dashboard.modeSelect),
		dashboard.modeLabel,
		dashboard.timerLabel,
		dashboard.progress,
		dashboard.cycleLabel,
		container.NewHBox(layout.NewSpacer(), dashboard.toggle, reset, skip, layout.NewSpacer()),
		widget.NewSeparator(),
		dashboard.taskEntry,
		dashboard.statsLabel,
	)
	window.SetContent(container.NewPadded(content))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(420, 400))

	return dashboard
}

// Show displays the dashboard.
func (dashboard *Window) Show() {
	dashboard.window.Show()
	dashboard.window.RequestFocus()
}

// Update renders a session snapshot. Call it on the UI goroutine.
func (dashboard *Window) Update(snapshot session.Snapshot) {
	state := snapshot.State
	tint := modeColors[state.Mode]

	dashboard.updating = true
	dashboard.mode = state.Mode
	dashboard.modeSelect.SetSelected(state.Mode.Title())
	dashboard.updating = false

	dashboard.modeLabel.Text = state.Mode.Title()
	dashboard.modeLabel.Color = tint
	dashboard.modeLabel.Refresh()
	dashboard.timerLabel.Text = snapshot.Formatted
	dashboard.timerLabel.Color = tint
	dashboard.timerLabel.Refresh()

	dashboard.progress.SetValue(snapshot.Progress)
	dashboard.cycleLabel.SetText(CycleText(state.CompletedFocusSessionsInCycle, snapshot.Settings.SessionsBeforeLongBreak, state.TotalCompletedFocusSessions))
	if state.IsRunning {
		dashboard.toggle.SetText("Pause")
	} else {
		dashboard.toggle.SetText("Start")
	}
	// Leave the entry alone while the user is typing in it.
	if dashboard.window.Canvas().Focused() != dashboard.taskEntry && dashboard.taskEntry.Text != state.Task {
		dashboard.taskEntry.SetText(state.Task)
	}
}

// UpdateStatistics renders the statistics summary.
func (dashboard *Window) UpdateStatistics(statistics stats.Statistics) {
	dashboard.statsLabel.SetText(StatsText(statistics))
}

func (dashboard *Window) handleModeSelected(title string) {
	if dashboard.updating {
		return
	}
	for _, mode := range model.Modes {
		if mode.Title() != title || mode == dashboard.mode {
			continue
		}
		if err := dashboard.controller.SwitchMode(mode); err != nil && dashboard.onError != nil {
			dashboard.onError(err)
		}
		return
	}
}

// CycleText describes progress through the current cycle.
func CycleText(done, perCycle, total int) string {
	return fmt.Sprintf("Session %d of %d  |  %d completed", min(done+1, perCycle), perCycle, total)
}

// StatsText summarises today and this week.
func StatsText(statistics stats.Statistics) string {
	return fmt.Sprintf("Today: %d sessions, %.0f min, %.1f min avg   Week: %d sessions, %.1f min/day   Streak: %d days",
		statistics.Today.CompletedFocusSessions,
		statistics.Today.FocusMinutes,
		statistics.Today.AverageMinutes(),
		statistics.ThisWeek.CompletedFocusSessions,
		statistics.DailyAverageMinutes(),
		statistics.Streak.Days)
}
