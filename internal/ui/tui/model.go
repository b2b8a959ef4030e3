// Package tui renders a running focus session in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/core/timer"
	"focustimer/internal/session"
)

// Controller is the part of a session the terminal UI drives.
type Controller interface {
	Toggle()
	Reset()
	Skip()
	SwitchMode(mode model.Mode) error
	SetTask(task string)
	Snapshot() session.Snapshot
}

// Options configures the terminal UI.
type Options struct {
	// Events delivers engine events; when it closes the UI exits.
	Events <-chan timer.Event
	// Statistics, when set, feeds the summary line.
	Statistics func() stats.Statistics
}

type eventMsg timer.Event

type eventsClosedMsg struct{}

// Model is the bubbletea model for a focus session.
type Model struct {
	controller Controller
	options    Options

	keys     keyMap
	help     help.Model
	progress progress.Model
	task     textinput.Model

	snapshot   session.Snapshot
	statistics stats.Statistics
	editing    bool
	message    string
	width      int
	quitting   bool
}

// New creates the model for controller.
func New(controller Controller, options Options) Model {
	task := textinput.New()
	task.Placeholder = "What are you working on?"
	task.CharLimit = 80
	task.Prompt = "Task: "

	m := Model{
		controller: controller,
		options:    options,
		keys:       defaultKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient()),
		task:       task,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	if m.options.Events == nil {
		return nil
	}
	events := m.options.Events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = max(10, min(msg.Width-4, 60))
		return m, nil

	case eventMsg:
		m.observe(timer.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.editing {
			return m.updateTask(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.controller.Toggle()
	case key.Matches(msg, m.keys.Reset):
		m.controller.Reset()
	case key.Matches(msg, m.keys.Skip):
		m.controller.Skip()
	case key.Matches(msg, m.keys.Focus):
		m.switchMode(model.ModeFocus)
	case key.Matches(msg, m.keys.ShortBreak):
		m.switchMode(model.ModeShortBreak)
	case key.Matches(msg, m.keys.LongBreak):
		m.switchMode(model.ModeLongBreak)
	case key.Matches(msg, m.keys.Task):
		m.editing = true
		m.task.SetValue(m.snapshot.State.Task)
		m.task.CursorEnd()
		return m, m.task.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m *Model) switchMode(mode model.Mode) {
	if err := m.controller.SwitchMode(mode); err != nil {
		m.message = err.Error()
	}
}

func (m Model) updateTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.controller.SetTask(strings.TrimSpace(m.task.Value()))
		m.editing = false
		m.task.Blur()
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.task.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.task, cmd = m.task.Update(msg)
	return m, cmd
}

func (m *Model) observe(event timer.Event) {
	switch event.Type {
	case timer.EventFocusSessionCompleted:
		m.message = fmt.Sprintf("Focus session complete (%d total)", event.TotalCompleted)
	case timer.EventCycleCompleted:
		m.message = "Cycle complete, enjoy the long break"
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.snapshot = m.controller.Snapshot()
	if m.options.Statistics != nil {
		m.statistics = m.options.Statistics()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	state := m.snapshot.State

	var b strings.Builder
	b.WriteString(titleStyle(state.Mode).Render(state.Mode.Title()))
	if !state.IsRunning {
		b.WriteString(mutedStyle.Render("  paused"))
	}
	b.WriteString("\n")
	b.WriteString(clockStyle.Foreground(modeColor(state.Mode)).Render(m.snapshot.Formatted))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(m.snapshot.Progress / 100))
	b.WriteString("\n\n")
	b.WriteString(cycleDots(state.CompletedFocusSessionsInCycle, m.snapshot.Settings.SessionsBeforeLongBreak))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d sessions completed", state.TotalCompletedFocusSessions)))
	b.WriteString("\n")

	switch {
	case m.editing:
		b.WriteString(m.task.View())
	case state.Task != "":
		b.WriteString(taskStyle.Render("Working on: " + state.Task))
	}
	b.WriteString("\n")

	if m.options.Statistics != nil {
		today := m.statistics.Today
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Today: %d sessions, %.0f min  Avg: %.1f min  Streak: %d days",
			today.CompletedFocusSessions, today.FocusMinutes, today.AverageMinutes(), m.statistics.Streak.Days)))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return appStyle.Render(b.String())
}

func cycleDots(done, total int) string {
	if total <= 0 {
		return ""
	}
	return strings.Repeat("●", min(done, total)) + strings.Repeat("○", max(total-done, 0))
}
