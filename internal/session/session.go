// Package session owns a timer Engine on behalf of concurrent hosts. Every call
// is serialized through one mutex and the periodic driver is armed only while
// the countdown runs.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"focustimer/internal/core/model"
	"focustimer/internal/core/timer"
)

// Config contains runtime options for a Session.
type Config struct {
	TickInterval time.Duration
	Scheduler    Scheduler
	Logger       *zap.Logger
}

// Snapshot is a consistent view of the engine for renderers.
type Snapshot struct {
	State     timer.State
	Settings  model.Settings
	Progress  float64
	Formatted string
}

// Session serializes access to an Engine and drives it once per tick interval.
type Session struct {
	mu         sync.Mutex
	engine     *timer.Engine
	options    Config
	logger     *zap.Logger
	cancel     CancelFunc
	generation uint64
	events     []chan timer.Event
	closed     bool
}

// New wraps engine. The engine must not be used directly afterwards.
func New(engine *timer.Engine, options Config) *Session {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Scheduler == nil {
		options.Scheduler = TickerScheduler{}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	session := &Session{
		engine:  engine,
		options: options,
		logger:  options.Logger,
	}
	engine.Subscribe(session.broadcastLocked)
	return session
}

// Observe registers a synchronous observer. Observers run while the session
// lock is held and must not call back into the Session.
func (session *Session) Observe(observer timer.Observer) func() {
	session.mu.Lock()
	defer session.mu.Unlock()
	unsubscribe := session.engine.Subscribe(observer)
	return func() {
		session.mu.Lock()
		defer session.mu.Unlock()
		unsubscribe()
	}
}

// Subscribe registers a buffered observer channel. Slow readers miss events
// rather than stall the timer. The channel is closed by Close.
func (session *Session) Subscribe(buffer int) <-chan timer.Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan timer.Event, buffer)
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		close(ch)
		return ch
	}
	session.events = append(session.events, ch)
	return ch
}

// Start begins the countdown.
func (session *Session) Start() {
	session.do(func(engine *timer.Engine) { engine.Start() })
}

// Pause freezes the countdown.
func (session *Session) Pause() {
	session.do(func(engine *timer.Engine) { engine.Pause() })
}

// Toggle starts a paused countdown or pauses a running one.
func (session *Session) Toggle() {
	session.do(func(engine *timer.Engine) {
		if engine.State().IsRunning {
			engine.Pause()
			return
		}
		engine.Start()
	})
}

// Reset refills the countdown for the current mode.
func (session *Session) Reset() {
	session.do(func(engine *timer.Engine) { engine.Reset() })
}

// Skip completes the current countdown immediately.
func (session *Session) Skip() {
	session.do(func(engine *timer.Engine) { engine.Skip() })
}

// SwitchMode selects another mode.
func (session *Session) SwitchMode(mode model.Mode) error {
	var err error
	session.do(func(engine *timer.Engine) { err = engine.SwitchMode(mode) })
	return err
}

// SetTask labels the current work.
func (session *Session) SetTask(task string) {
	session.do(func(engine *timer.Engine) { engine.SetTask(task) })
}

// UpdateSettings applies a partial settings change.
func (session *Session) UpdateSettings(patch model.Patch) error {
	var err error
	session.do(func(engine *timer.Engine) { err = engine.UpdateSettings(patch) })
	return err
}

// Snapshot returns the current engine view.
func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()
	return Snapshot{
		State:     session.engine.State(),
		Settings:  session.engine.Settings(),
		Progress:  session.engine.ProgressPercent(),
		Formatted: session.engine.FormatRemaining(),
	}
}

// Close stops the periodic driver and closes subscriber channels. The driver
// has exited by the time Close returns.
func (session *Session) Close() {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	session.closed = true
	cancel := session.disarmLocked()
	events := session.events
	session.events = nil
	session.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, ch := range events {
		close(ch)
	}
}

func (session *Session) do(operation func(engine *timer.Engine)) {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		session.logger.Debug("session closed, operation dropped")
		return
	}
	operation(session.engine)
	cancel := session.syncDriverLocked()
	session.mu.Unlock()

	// A driver blocked in tick needs the lock to observe its stale generation.
	if cancel != nil {
		cancel()
	}
}

// tick runs on the driver goroutine. Returning false ends that driver.
func (session *Session) tick(generation uint64) bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed || generation != session.generation {
		return false
	}
	session.engine.Tick()
	if session.engine.State().IsRunning {
		return true
	}
	session.cancel = nil
	session.generation++
	session.logger.Debug("tick driver stopped")
	return false
}

// syncDriverLocked arms the driver when the countdown runs. When it stops, the
// driver is detached and its CancelFunc returned for the caller to run unlocked.
func (session *Session) syncDriverLocked() CancelFunc {
	running := session.engine.State().IsRunning
	switch {
	case running && session.cancel == nil:
		session.generation++
		generation := session.generation
		session.cancel = session.options.Scheduler.Schedule(func() bool {
			return session.tick(generation)
		}, session.options.TickInterval)
		session.logger.Debug("tick driver armed")
	case !running && session.cancel != nil:
		session.logger.Debug("tick driver stopped")
		return session.disarmLocked()
	}
	return nil
}

func (session *Session) disarmLocked() CancelFunc {
	cancel := session.cancel
	session.cancel = nil
	session.generation++
	return cancel
}

func (session *Session) broadcastLocked(event timer.Event) {
	for _, ch := range session.events {
		select {
		case ch <- event:
		default:
		}
	}
}
