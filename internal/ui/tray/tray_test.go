package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focustimer/internal/core/model"
	"focustimer/internal/core/timer"
	"focustimer/internal/session"
)

func TestStatusLabel(t *testing.T) {
	snapshot := session.Snapshot{
		State:     timer.State{Mode: model.ModeShortBreak, IsRunning: true},
		Formatted: "04:10",
	}
	assert.Equal(t, "Short Break 04:10", StatusLabel(snapshot))

	snapshot.State.IsRunning = false
	snapshot.State.Task = "email"
	assert.Equal(t, "Short Break 04:10 (paused) - email", StatusLabel(snapshot))
}

func TestToggleLabel(t *testing.T) {
	assert.Equal(t, "Pause", ToggleLabel(true))
	assert.Equal(t, "Start", ToggleLabel(false))
}

func TestUpdateWithoutTray(t *testing.T) {
	var picked model.Mode
	toggles := 0
	manager := New(nil, Callbacks{
		OnToggle: func() { toggles++ },
		OnMode:   func(mode model.Mode) { picked = mode },
	})

	manager.Update(session.Snapshot{
		State:     timer.State{Mode: model.ModeLongBreak, IsRunning: true},
		Formatted: "15:00",
	})
	assert.Equal(t, "Long Break 15:00", manager.statusItem.Label)
	assert.Equal(t, "Pause", manager.toggleItem.Label)
	assert.True(t, manager.modeItems[model.ModeLongBreak].Checked)
	assert.False(t, manager.modeItems[model.ModeFocus].Checked)

	manager.toggleItem.Action()
	assert.Equal(t, 1, toggles)
	require.NotNil(t, manager.modeItems[model.ModeFocus].Action)
	manager.modeItems[model.ModeFocus].Action()
	assert.Equal(t, model.ModeFocus, picked)

	// Nil callbacks are ignored.
	manager.skipItem.Action()
}
