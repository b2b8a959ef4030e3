package timer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"focustimer/internal/core/model"
)

// ErrInvalidTransition indicates an operation that does not apply to the current
// state. The Engine treats it as a no-op and only logs it.
var ErrInvalidTransition = errors.New("invalid transition")

// Notifier fires the completion cue. Implementations must return immediately.
type Notifier interface {
	Notify()
}

// State is the live countdown.
type State struct {
	Mode                          model.Mode
	RemainingSeconds              int
	IsRunning                     bool
	CompletedFocusSessionsInCycle int
	TotalCompletedFocusSessions   int
	Task                          string
}

// Options contains collaborators for the Engine.
type Options struct {
	Notifier Notifier
	Logger   *zap.Logger
	Clock    func() time.Time
	// Restore resumes from a previously persisted state. It is always restored idle.
	Restore *State
}

// Engine is the focus timer state machine. It is not safe for concurrent use;
// callers serialize access through a single owner.
type Engine struct {
	settings  model.Settings
	state     State
	notifier  Notifier
	logger    *zap.Logger
	clock     func() time.Time
	observers map[int]Observer
	order     []int
	nextID    int
}

// New creates an Engine idle in focus mode with a full countdown.
func New(settings model.Settings, options Options) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}

	engine := &Engine{
		settings:  settings,
		notifier:  options.Notifier,
		logger:    options.Logger,
		clock:     options.Clock,
		observers: make(map[int]Observer),
	}
	engine.state = State{
		Mode:             model.ModeFocus,
		RemainingSeconds: settings.DurationSecondsFor(model.ModeFocus),
	}
	if options.Restore != nil {
		engine.restore(*options.Restore)
	}
	return engine, nil
}

func (engine *Engine) restore(snapshot State) {
	mode := snapshot.Mode
	if !mode.Valid() {
		mode = model.ModeFocus
	}
	total := engine.settings.DurationSecondsFor(mode)
	remaining := snapshot.RemainingSeconds
	if remaining <= 0 || remaining > total {
		remaining = total
	}
	// A count at or past the threshold is kept: the next completion closes the cycle,
	// the same as on a live engine whose cycle length was lowered.
	inCycle := snapshot.CompletedFocusSessionsInCycle
	if inCycle < 0 {
		inCycle = 0
	}
	totalCompleted := snapshot.TotalCompletedFocusSessions
	if totalCompleted < 0 {
		totalCompleted = 0
	}
	engine.state = State{
		Mode:                          mode,
		RemainingSeconds:              remaining,
		CompletedFocusSessionsInCycle: inCycle,
		TotalCompletedFocusSessions:   totalCompleted,
		Task:                          snapshot.Task,
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (engine *Engine) Subscribe(observer Observer) func() {
	id := engine.nextID
	engine.nextID++
	engine.observers[id] = observer
	engine.order = append(engine.order, id)
	return func() {
		delete(engine.observers, id)
		for index, candidate := range engine.order {
			if candidate == id {
				engine.order = append(engine.order[:index], engine.order[index+1:]...)
				break
			}
		}
	}
}

// State returns a copy of the live state.
func (engine *Engine) State() State {
	return engine.state
}

// Settings returns a copy of the active settings.
func (engine *Engine) Settings() model.Settings {
	return engine.settings
}

// Start begins counting down the current mode.
func (engine *Engine) Start() {
	if engine.state.IsRunning {
		engine.rejected("start", "already running")
		return
	}
	if engine.state.RemainingSeconds <= 0 {
		engine.state.RemainingSeconds = engine.settings.DurationSecondsFor(engine.state.Mode)
	}
	engine.state.IsRunning = true
	engine.emit(EventStarted)
}

// Pause stops the countdown, keeping the remaining time.
func (engine *Engine) Pause() {
	if !engine.state.IsRunning {
		engine.rejected("pause", "not running")
		return
	}
	engine.state.IsRunning = false
	engine.emit(EventPaused)
}

// Reset stops the countdown and refills it for the current mode.
func (engine *Engine) Reset() {
	engine.stop()
	engine.state.RemainingSeconds = engine.settings.DurationSecondsFor(engine.state.Mode)
	engine.emit(EventReset)
}

// SwitchMode stops the countdown and selects mode with a full countdown.
// An explicit switch never counts as a completion.
func (engine *Engine) SwitchMode(mode model.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("switch mode: %w: unknown mode %q", ErrInvalidTransition, mode)
	}
	engine.stop()
	engine.enterMode(mode)
	return nil
}

// Tick advances a running countdown by one second.
func (engine *Engine) Tick() {
	if !engine.state.IsRunning {
		engine.rejected("tick", "not running")
		return
	}
	if engine.state.RemainingSeconds > 0 {
		engine.state.RemainingSeconds--
	}
	engine.emit(EventTick)
	if engine.state.RemainingSeconds == 0 {
		engine.state.IsRunning = false
		engine.complete()
	}
}

// Skip fast-forwards the countdown to zero and completes it immediately.
func (engine *Engine) Skip() {
	engine.state.IsRunning = false
	engine.state.RemainingSeconds = 0
	engine.complete()
}

// SetTask labels the current focus work.
func (engine *Engine) SetTask(task string) {
	engine.state.Task = task
}

// UpdateSettings applies patch atomically. A rejected patch leaves settings intact.
func (engine *Engine) UpdateSettings(patch model.Patch) error {
	updated, err := engine.settings.Apply(patch)
	if err != nil {
		return err
	}
	previousTotal := engine.settings.DurationSecondsFor(engine.state.Mode)
	engine.settings = updated

	total := updated.DurationSecondsFor(engine.state.Mode)
	if total != previousTotal {
		if !engine.state.IsRunning {
			engine.state.RemainingSeconds = total
		} else if engine.state.RemainingSeconds > total {
			engine.state.RemainingSeconds = total
		}
	}
	engine.emit(EventSettingsChanged)
	return nil
}

// ProgressPercent returns how much of the current countdown has elapsed, measured
// against the duration configured right now.
func (engine *Engine) ProgressPercent() float64 {
	total := engine.settings.DurationSecondsFor(engine.state.Mode)
	if total <= 0 {
		return 100
	}
	return 100 - float64(engine.state.RemainingSeconds)/float64(total)*100
}

// FormatRemaining renders the countdown as MM:SS.
func (engine *Engine) FormatRemaining() string {
	return FormatSeconds(engine.state.RemainingSeconds)
}

// FormatSeconds renders seconds as zero-padded MM:SS.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (engine *Engine) complete() {
	if engine.settings.SoundNotificationsEnabled && engine.notifier != nil {
		engine.notifier.Notify()
	}

	if engine.state.Mode.IsBreak() {
		engine.enterMode(model.ModeFocus)
		if engine.settings.AutoStartNextFocus {
			engine.Start()
		}
		return
	}

	engine.state.CompletedFocusSessionsInCycle++
	engine.state.TotalCompletedFocusSessions++
	engine.emit(EventFocusSessionCompleted)

	next := model.ModeShortBreak
	if engine.state.CompletedFocusSessionsInCycle >= engine.settings.SessionsBeforeLongBreak {
		next = model.ModeLongBreak
		engine.state.CompletedFocusSessionsInCycle = 0
		engine.emit(EventCycleCompleted)
	}
	engine.enterMode(next)
	if engine.settings.AutoStartBreaks {
		engine.Start()
	}
}

func (engine *Engine) enterMode(mode model.Mode) {
	engine.state.Mode = mode
	engine.state.RemainingSeconds = engine.settings.DurationSecondsFor(mode)
	engine.emit(EventModeChanged)
}

func (engine *Engine) stop() {
	if engine.state.IsRunning {
		engine.state.IsRunning = false
		engine.emit(EventPaused)
	}
}

func (engine *Engine) rejected(operation, reason string) {
	engine.logger.Debug("timer operation ignored",
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.String("mode", string(engine.state.Mode)),
		zap.Error(ErrInvalidTransition),
	)
}

func (engine *Engine) emit(eventType EventType) {
	event := Event{
		Type:      eventType,
		Mode:      engine.state.Mode,
		Remaining: engine.state.RemainingSeconds,
		Running:   engine.state.IsRunning,
		Settings:  engine.settings,
		At:        engine.clock(),
	}
	if eventType == EventFocusSessionCompleted {
		event.FocusMinutes = engine.settings.FocusDurationMinutes
		event.TotalCompleted = engine.state.TotalCompletedFocusSessions
		event.Task = engine.state.Task
	}
	for _, id := range append([]int(nil), engine.order...) {
		if observer, ok := engine.observers[id]; ok {
			observer(event)
		}
	}
}
