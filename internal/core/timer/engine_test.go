package timer

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"focustimer/internal/core/model"
)

type countingNotifier struct {
	calls int
}

func (notifier *countingNotifier) Notify() {
	notifier.calls++
}

type recorder struct {
	events []Event
}

func (rec *recorder) observe(event Event) {
	rec.events = append(rec.events, event)
}

func (rec *recorder) count(eventType EventType) int {
	total := 0
	for _, event := range rec.events {
		if event.Type == eventType {
			total++
		}
	}
	return total
}

func (rec *recorder) types() []EventType {
	types := make([]EventType, 0, len(rec.events))
	for _, event := range rec.events {
		if event.Type == EventTick {
			continue
		}
		types = append(types, event.Type)
	}
	return types
}

func newTestEngine(t *testing.T, settings model.Settings) (*Engine, *recorder, *countingNotifier) {
	t.Helper()
	notifier := &countingNotifier{}
	engine, err := New(settings, Options{
		Notifier: notifier,
		Clock:    func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	rec := &recorder{}
	engine.Subscribe(rec.observe)
	return engine, rec, notifier
}

func tickN(engine *Engine, n int) {
	for i := 0; i < n; i++ {
		engine.Tick()
	}
}

func TestNewStartsIdleInFocus(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultSettings())
	state := engine.State()
	assert.Equal(t, model.ModeFocus, state.Mode)
	assert.Equal(t, 1500, state.RemainingSeconds)
	assert.False(t, state.IsRunning)
	assert.Equal(t, "25:00", engine.FormatRemaining())
	assert.Equal(t, 0.0, engine.ProgressPercent())
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	settings := model.DefaultSettings()
	settings.FocusDurationMinutes = 0
	_, err := New(settings, Options{})
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}

func TestScenarioFocusCompletesIntoShortBreak(t *testing.T) {
	engine, rec, notifier := newTestEngine(t, model.DefaultSettings())

	engine.Start()
	tickN(engine, 1499)
	assert.Equal(t, 1, engine.State().RemainingSeconds)
	assert.Equal(t, 0, rec.count(EventFocusSessionCompleted))

	engine.Tick()

	state := engine.State()
	assert.Equal(t, model.ModeShortBreak, state.Mode)
	assert.Equal(t, 300, state.RemainingSeconds)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 1, state.TotalCompletedFocusSessions)
	assert.Equal(t, 1, state.CompletedFocusSessionsInCycle)
	assert.Equal(t, 1, rec.count(EventFocusSessionCompleted))
	assert.Equal(t, 0, rec.count(EventCycleCompleted))
	assert.Equal(t, 1, notifier.calls)
}

func TestScenarioFourthFocusEntersLongBreak(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())

	for cycle := 1; cycle <= 4; cycle++ {
		engine.Start()
		tickN(engine, 1500)
		if cycle < 4 {
			require.Equal(t, model.ModeShortBreak, engine.State().Mode, "cycle %d", cycle)
			require.Equal(t, cycle, engine.State().CompletedFocusSessionsInCycle)
			engine.Start()
			tickN(engine, 300)
			require.Equal(t, model.ModeFocus, engine.State().Mode)
		}
	}

	state := engine.State()
	assert.Equal(t, model.ModeLongBreak, state.Mode)
	assert.Equal(t, 900, state.RemainingSeconds)
	assert.Equal(t, 0, state.CompletedFocusSessionsInCycle)
	assert.Equal(t, 4, state.TotalCompletedFocusSessions)
	assert.Equal(t, 1, rec.count(EventCycleCompleted))
}

func TestScenarioAutoStartBreaks(t *testing.T) {
	settings := model.DefaultSettings()
	settings.AutoStartBreaks = true
	engine, _, _ := newTestEngine(t, settings)

	engine.Start()
	tickN(engine, 1500)

	state := engine.State()
	assert.Equal(t, model.ModeShortBreak, state.Mode)
	assert.True(t, state.IsRunning)
	assert.Equal(t, 300, state.RemainingSeconds)

	// The break finishes into an idle focus session without autoStartNextFocus.
	tickN(engine, 300)
	assert.Equal(t, model.ModeFocus, engine.State().Mode)
	assert.False(t, engine.State().IsRunning)
}

func TestAutoStartNextFocus(t *testing.T) {
	settings := model.DefaultSettings()
	settings.AutoStartNextFocus = true
	engine, _, _ := newTestEngine(t, settings)
	require.NoError(t, engine.SwitchMode(model.ModeShortBreak))

	engine.Start()
	tickN(engine, 300)

	assert.Equal(t, model.ModeFocus, engine.State().Mode)
	assert.True(t, engine.State().IsRunning)
	assert.Equal(t, 1500, engine.State().RemainingSeconds)
}

func TestScenarioSkipCompletesOnce(t *testing.T) {
	engine, rec, notifier := newTestEngine(t, model.DefaultSettings())

	engine.Start()
	tickN(engine, 1380)
	require.Equal(t, 120, engine.State().RemainingSeconds)

	engine.Skip()

	state := engine.State()
	assert.Equal(t, 1, state.TotalCompletedFocusSessions)
	assert.Equal(t, model.ModeShortBreak, state.Mode)
	assert.Equal(t, 300, state.RemainingSeconds)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 1, rec.count(EventFocusSessionCompleted))
	assert.Equal(t, 1, notifier.calls)

	// A stale tick after the skip must not complete anything again.
	engine.Tick()
	assert.Equal(t, 1, engine.State().TotalCompletedFocusSessions)
}

func TestScenarioSwitchModeIsNotACompletion(t *testing.T) {
	engine, rec, notifier := newTestEngine(t, model.DefaultSettings())
	engine.Start()
	tickN(engine, 600)
	engine.Pause()
	require.Equal(t, 900, engine.State().RemainingSeconds)
	rec.events = nil

	require.NoError(t, engine.SwitchMode(model.ModeLongBreak))

	state := engine.State()
	assert.Equal(t, model.ModeLongBreak, state.Mode)
	assert.Equal(t, 900, state.RemainingSeconds)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 0, rec.count(EventFocusSessionCompleted))
	assert.Equal(t, 0, rec.count(EventCycleCompleted))
	assert.Equal(t, []EventType{EventModeChanged}, rec.types())
	assert.Equal(t, 0, notifier.calls)
}

func TestSwitchModeWhileRunningPausesFirst(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())
	engine.Start()
	tickN(engine, 10)
	rec.events = nil

	require.NoError(t, engine.SwitchMode(model.ModeShortBreak))

	assert.False(t, engine.State().IsRunning)
	assert.Equal(t, 300, engine.State().RemainingSeconds)
	assert.Equal(t, []EventType{EventPaused, EventModeChanged}, rec.types())
}

func TestSwitchModeRejectsUnknown(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultSettings())
	err := engine.SwitchMode(model.Mode("nap"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.ModeFocus, engine.State().Mode)
}

func TestPauseIsIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultSettings())
	engine.Start()
	tickN(engine, 42)

	engine.Pause()
	once := engine.State()
	engine.Pause()
	assert.Equal(t, once, engine.State())
	assert.Equal(t, 1458, once.RemainingSeconds)
}

func TestInvalidTransitionsAreLoggedNoOps(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine, err := New(model.DefaultSettings(), Options{Logger: zap.New(core)})
	require.NoError(t, err)

	engine.Tick()
	engine.Pause()
	engine.Start()
	before := engine.State()
	engine.Start()

	assert.Equal(t, before, engine.State())
	assert.Equal(t, 3, logs.FilterMessage("timer operation ignored").Len())
}

func TestResetKeepsMode(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultSettings())
	require.NoError(t, engine.SwitchMode(model.ModeShortBreak))
	engine.Start()
	tickN(engine, 100)

	engine.Reset()

	state := engine.State()
	assert.Equal(t, model.ModeShortBreak, state.Mode)
	assert.Equal(t, 300, state.RemainingSeconds)
	assert.False(t, state.IsRunning)
}

func TestSoundDisabledSkipsNotifier(t *testing.T) {
	settings := model.DefaultSettings()
	settings.SoundNotificationsEnabled = false
	engine, _, notifier := newTestEngine(t, settings)

	engine.Skip()
	engine.Skip()

	assert.Equal(t, 0, notifier.calls)
	assert.Equal(t, 1, engine.State().TotalCompletedFocusSessions)
}

func TestUpdateSettingsResetsIdleActiveMode(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())

	require.NoError(t, engine.UpdateSettings(model.Patch{FocusDurationMinutes: model.Int(50)}))
	assert.Equal(t, 3000, engine.State().RemainingSeconds)
	assert.Equal(t, 1, rec.count(EventSettingsChanged))

	require.NoError(t, engine.UpdateSettings(model.Patch{ShortBreakDurationMinutes: model.Int(10)}))
	assert.Equal(t, 3000, engine.State().RemainingSeconds, "inactive mode change has no effect")
}

func TestUpdateSettingsWhileRunning(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultSettings())
	engine.Start()
	tickN(engine, 300)
	require.Equal(t, 1200, engine.State().RemainingSeconds)

	require.NoError(t, engine.UpdateSettings(model.Patch{FocusDurationMinutes: model.Int(50)}))
	assert.Equal(t, 1200, engine.State().RemainingSeconds)
	assert.InDelta(t, 60.0, engine.ProgressPercent(), 0.0001, "progress recomputed against the new total")

	require.NoError(t, engine.UpdateSettings(model.Patch{FocusDurationMinutes: model.Int(10)}))
	assert.Equal(t, 600, engine.State().RemainingSeconds, "clamped to the shorter duration")
	assert.True(t, engine.State().IsRunning)
}

func TestUpdateSettingsRejectedLeavesStateIntact(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())
	before := engine.State()

	err := engine.UpdateSettings(model.Patch{
		FocusDurationMinutes:    model.Int(30),
		SessionsBeforeLongBreak: model.Int(20),
	})

	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
	assert.Equal(t, before, engine.State())
	assert.Equal(t, model.DefaultSettings(), engine.Settings())
	assert.Equal(t, 0, rec.count(EventSettingsChanged))
}

func TestCycleLengthChangeAppliesGoingForward(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())
	for i := 0; i < 3; i++ {
		engine.Skip()
		engine.Skip()
	}
	require.Equal(t, 3, engine.State().CompletedFocusSessionsInCycle)

	require.NoError(t, engine.UpdateSettings(model.Patch{SessionsBeforeLongBreak: model.Int(2)}))
	require.Equal(t, 3, engine.State().CompletedFocusSessionsInCycle)

	engine.Skip()
	assert.Equal(t, model.ModeLongBreak, engine.State().Mode)
	assert.Equal(t, 0, engine.State().CompletedFocusSessionsInCycle)
	assert.Equal(t, 1, rec.count(EventCycleCompleted))
}

func TestLoweredCycleLengthClosesCycleOnNextCompletion(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())
	for i := 0; i < 2; i++ {
		engine.Skip()
		engine.Skip()
	}
	require.Equal(t, 2, engine.State().CompletedFocusSessionsInCycle)
	require.NoError(t, engine.UpdateSettings(model.Patch{SessionsBeforeLongBreak: model.Int(2)}))

	// 3 % 2 != 0, but the count is already past the new threshold.
	engine.Skip()
	state := engine.State()
	assert.Equal(t, model.ModeLongBreak, state.Mode)
	assert.Equal(t, 0, state.CompletedFocusSessionsInCycle)
	assert.Equal(t, 1, rec.count(EventCycleCompleted))

	for i := 0; i < 20; i++ {
		engine.Skip()
		inCycle := engine.State().CompletedFocusSessionsInCycle
		assert.GreaterOrEqual(t, inCycle, 0)
		assert.Less(t, inCycle, 2)
	}
}

func TestRestoredCountPastThresholdMatchesLiveEngine(t *testing.T) {
	settings := model.DefaultSettings()
	live, _, _ := newTestEngine(t, settings)
	for i := 0; i < 3; i++ {
		live.Skip()
		live.Skip()
	}
	require.NoError(t, live.UpdateSettings(model.Patch{SessionsBeforeLongBreak: model.Int(2)}))
	saved := live.State()

	settings.SessionsBeforeLongBreak = 2
	restored, err := New(settings, Options{Restore: &saved})
	require.NoError(t, err)
	assert.Equal(t, saved, restored.State())

	live.Skip()
	restored.Skip()
	assert.Equal(t, live.State(), restored.State())
	assert.Equal(t, model.ModeLongBreak, restored.State().Mode)
}

func TestFocusCompletedEventPayload(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())
	engine.SetTask("write report")
	engine.Skip()

	var completed Event
	for _, event := range rec.events {
		if event.Type == EventFocusSessionCompleted {
			completed = event
		}
	}
	want := Event{
		Type:           EventFocusSessionCompleted,
		Mode:           model.ModeFocus,
		FocusMinutes:   25,
		TotalCompleted: 1,
		Task:           "write report",
		Settings:       model.DefaultSettings(),
		At:             time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, completed); diff != "" {
		t.Errorf("focus completion event mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletionEventOrder(t *testing.T) {
	settings := model.DefaultSettings()
	settings.SessionsBeforeLongBreak = 2
	settings.AutoStartBreaks = true
	engine, rec, _ := newTestEngine(t, settings)
	engine.Skip()
	engine.Pause()
	require.NoError(t, engine.SwitchMode(model.ModeFocus))
	rec.events = nil

	engine.Skip()

	assert.Equal(t, []EventType{
		EventFocusSessionCompleted,
		EventCycleCompleted,
		EventModeChanged,
		EventStarted,
	}, rec.types())
}

func TestUnsubscribe(t *testing.T) {
	engine, rec, _ := newTestEngine(t, model.DefaultSettings())
	second := &recorder{}
	unsubscribe := engine.Subscribe(second.observe)

	engine.Start()
	unsubscribe()
	engine.Pause()

	assert.Len(t, second.events, 1)
	assert.Len(t, rec.events, 2)
}

func TestRestore(t *testing.T) {
	engine, err := New(model.DefaultSettings(), Options{Restore: &State{
		Mode:                          model.ModeShortBreak,
		RemainingSeconds:              120,
		IsRunning:                     true,
		CompletedFocusSessionsInCycle: 2,
		TotalCompletedFocusSessions:   17,
		Task:                          "inbox",
	}})
	require.NoError(t, err)
	assert.Equal(t, State{
		Mode:                          model.ModeShortBreak,
		RemainingSeconds:              120,
		CompletedFocusSessionsInCycle: 2,
		TotalCompletedFocusSessions:   17,
		Task:                          "inbox",
	}, engine.State())

	broken, err := New(model.DefaultSettings(), Options{Restore: &State{
		Mode:                          model.Mode("nap"),
		RemainingSeconds:              99999,
		CompletedFocusSessionsInCycle: -3,
		TotalCompletedFocusSessions:   -1,
	}})
	require.NoError(t, err)
	assert.Equal(t, State{Mode: model.ModeFocus, RemainingSeconds: 1500}, broken.State())
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "00:00", FormatSeconds(0))
	assert.Equal(t, "00:00", FormatSeconds(-5))
	assert.Equal(t, "04:05", FormatSeconds(245))
	assert.Equal(t, "60:00", FormatSeconds(3600))
}

func TestInvariantsUnderRandomOperations(t *testing.T) {
	settings := model.DefaultSettings()
	settings.FocusDurationMinutes = 5
	settings.ShortBreakDurationMinutes = 1
	settings.LongBreakDurationMinutes = 5
	settings.SessionsBeforeLongBreak = 3
	engine, _, _ := newTestEngine(t, settings)
	rng := rand.New(rand.NewSource(7))

	lastTotal := 0
	for step := 0; step < 20000; step++ {
		switch rng.Intn(12) {
		case 0:
			engine.Start()
		case 1:
			engine.Pause()
		case 2:
			engine.Reset()
		case 3:
			engine.Skip()
		case 4:
			require.NoError(t, engine.SwitchMode(model.Modes[rng.Intn(len(model.Modes))]))
		case 5:
			_ = engine.UpdateSettings(model.Patch{
				FocusDurationMinutes:    model.Int(5 + rng.Intn(3)),
				SessionsBeforeLongBreak: model.Int(2 + rng.Intn(3)),
				AutoStartBreaks:         model.Bool(rng.Intn(2) == 0),
				AutoStartNextFocus:      model.Bool(rng.Intn(2) == 0),
			})
		default:
			engine.Start()
			engine.Tick()
		}

		state := engine.State()
		current := engine.Settings()
		require.GreaterOrEqual(t, state.RemainingSeconds, 0)
		require.LessOrEqual(t, state.RemainingSeconds, current.DurationSecondsFor(state.Mode))
		require.GreaterOrEqual(t, state.TotalCompletedFocusSessions, lastTotal)
		require.GreaterOrEqual(t, state.CompletedFocusSessionsInCycle, 0)
		if state.TotalCompletedFocusSessions > lastTotal {
			require.Less(t, state.CompletedFocusSessionsInCycle, current.SessionsBeforeLongBreak)
		}
		lastTotal = state.TotalCompletedFocusSessions
	}
	assert.Positive(t, lastTotal)
}

func TestCycleCounterStaysBelowThresholdAfterCompletion(t *testing.T) {
	engine, _, _ := newTestEngine(t, model.DefaultSettings())
	for i := 0; i < 40; i++ {
		engine.Skip()
		threshold := engine.Settings().SessionsBeforeLongBreak
		inCycle := engine.State().CompletedFocusSessionsInCycle
		assert.GreaterOrEqual(t, inCycle, 0)
		assert.Less(t, inCycle, threshold)
	}
}
