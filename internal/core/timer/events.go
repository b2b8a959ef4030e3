package timer

import (
	"time"

	"focustimer/internal/core/model"
)

// EventType defines the type of Engine event.
type EventType string

const (
	EventFocusSessionCompleted EventType = "focus_session_completed"
	EventCycleCompleted        EventType = "cycle_completed"
	EventModeChanged           EventType = "mode_changed"
	EventTick                  EventType = "tick"
	EventStarted               EventType = "started"
	EventPaused                EventType = "paused"
	EventReset                 EventType = "reset"
	EventSettingsChanged       EventType = "settings_changed"
)

// Event represents an Engine update for observers.
type Event struct {
	Type      EventType
	Mode      model.Mode
	Remaining int
	Running   bool

	// Set on focus_session_completed.
	FocusMinutes   int
	TotalCompleted int
	Task           string

	Settings model.Settings
	At       time.Time
}

// Observer receives events synchronously, in emission order.
type Observer func(Event)
