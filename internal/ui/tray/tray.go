// Package tray builds the system tray menu for the focus timer.
package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"focustimer/internal/core/model"
	"focustimer/internal/session"
	"focustimer/resources"
)

const menuTitle = "FocusTimer"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggle      func()
	OnSkip        func()
	OnReset       func()
	OnMode        func(model.Mode)
	OnDashboard   func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	skipItem   *fyne.MenuItem
	resetItem  *fyne.MenuItem
	modeItem   *fyne.MenuItem
	modeItems  map[model.Mode]*fyne.MenuItem
	icon       fyne.Resource
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		modeItems: make(map[model.Mode]*fyne.MenuItem, len(model.Modes)),
	}

	manager.statusItem = fyne.NewMenuItem("Starting...", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem("Start", manager.call(callbacks.OnToggle))
	manager.skipItem = fyne.NewMenuItem("Skip", manager.call(callbacks.OnSkip))
	manager.resetItem = fyne.NewMenuItem("Reset", manager.call(callbacks.OnReset))

	children := make([]*fyne.MenuItem, 0, len(model.Modes))
	for _, mode := range model.Modes {
		mode := mode
		item := fyne.NewMenuItem(mode.Title(), func() {
			if manager.callbacks.OnMode != nil {
				manager.callbacks.OnMode(mode)
			}
		})
		manager.modeItems[mode] = item
		children = append(children, item)
	}
	manager.modeItem = fyne.NewMenuItem("Switch mode", nil)
	manager.modeItem.ChildMenu = fyne.NewMenu("", children...)

	manager.refreshMenu()
	return manager
}

func (manager *Manager) call(callback func()) func() {
	return func() {
		if callback != nil {
			callback()
		}
	}
}

// Update reflects a session snapshot in the menu and icon. Call it on the UI goroutine.
func (manager *Manager) Update(snapshot session.Snapshot) {
	state := snapshot.State
	manager.statusItem.Label = StatusLabel(snapshot)
	manager.toggleItem.Label = ToggleLabel(state.IsRunning)
	for mode, item := range manager.modeItems {
		item.Checked = mode == state.Mode
	}

	icon := resources.ModeIcon(state.Mode, state.IsRunning)
	if manager.app != nil && icon != manager.icon {
		manager.app.SetSystemTrayIcon(icon)
		manager.icon = icon
	}
	manager.refreshMenu()
}

// StatusLabel is the disabled first line of the menu, e.g. "Focus Time 24:59 (paused)".
func StatusLabel(snapshot session.Snapshot) string {
	label := fmt.Sprintf("%s %s", snapshot.State.Mode.Title(), snapshot.Formatted)
	if !snapshot.State.IsRunning {
		label += " (paused)"
	}
	if snapshot.State.Task != "" {
		label += " - " + snapshot.State.Task
	}
	return label
}

// ToggleLabel names the start/pause action for the current state.
func ToggleLabel(running bool) string {
	if running {
		return "Pause"
	}
	return "Start"
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu(menuTitle,
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.skipItem,
		manager.resetItem,
		manager.modeItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Dashboard", manager.call(manager.callbacks.OnDashboard)),
		fyne.NewMenuItem("Preferences", manager.call(manager.callbacks.OnPreferences)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", manager.call(manager.callbacks.OnQuit)),
	))
}
