package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"focustimer/internal/core/model"
	"focustimer/internal/core/timer"
)

var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func focusDone(minutes int, at time.Time) timer.Event {
	return timer.Event{Type: timer.EventFocusSessionCompleted, FocusMinutes: minutes, At: at}
}

func TestFocusCompletionUpdatesEveryBucket(t *testing.T) {
	accumulator := New(Statistics{}, Options{})

	accumulator.Observe(focusDone(25, monday))
	accumulator.Observe(focusDone(50, monday))

	snapshot := accumulator.Snapshot()
	for _, period := range Periods {
		bucket, err := snapshot.Bucket(period)
		require.NoError(t, err)
		assert.Equal(t, 75.0, bucket.FocusMinutes, period)
		assert.Equal(t, 2, bucket.CompletedFocusSessions, period)
		assert.Equal(t, 0, bucket.CompletedCycles, period)
	}
}

func TestCycleCompletionUpdatesEveryBucket(t *testing.T) {
	accumulator := New(Statistics{}, Options{})
	accumulator.Observe(timer.Event{Type: timer.EventCycleCompleted})

	snapshot := accumulator.Snapshot()
	assert.Equal(t, 1, snapshot.Today.CompletedCycles)
	assert.Equal(t, 1, snapshot.ThisWeek.CompletedCycles)
	assert.Equal(t, 1, snapshot.AllTime.CompletedCycles)
}

func TestOtherEngineEventsAreIgnored(t *testing.T) {
	accumulator := New(Statistics{}, Options{Debug: true})
	for _, eventType := range []timer.EventType{
		timer.EventTick, timer.EventModeChanged, timer.EventStarted,
		timer.EventPaused, timer.EventReset, timer.EventSettingsChanged,
	} {
		accumulator.Observe(timer.Event{Type: eventType})
	}
	assert.Equal(t, Statistics{}, accumulator.Snapshot())
}

func TestUnknownEventPanicsInDebug(t *testing.T) {
	accumulator := New(Statistics{}, Options{Debug: true})
	assert.PanicsWithError(t, `unreachable state: event type "bogus"`, func() {
		accumulator.Observe(timer.Event{Type: "bogus"})
	})
}

func TestUnknownEventLoggedInProduction(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	accumulator := New(Statistics{}, Options{Logger: zap.New(core)})

	assert.NotPanics(t, func() {
		accumulator.Observe(timer.Event{Type: "bogus"})
	})
	assert.Equal(t, 1, logs.FilterMessage("statistics ignored event").Len())
}

func TestResetPeriod(t *testing.T) {
	accumulator := New(Statistics{}, Options{})
	accumulator.Observe(focusDone(25, monday))

	require.NoError(t, accumulator.ResetPeriod(PeriodToday))
	snapshot := accumulator.Snapshot()
	assert.Equal(t, Bucket{}, snapshot.Today)
	assert.Equal(t, 1, snapshot.ThisWeek.CompletedFocusSessions)
	assert.Equal(t, 1, snapshot.AllTime.CompletedFocusSessions)

	assert.ErrorIs(t, accumulator.ResetPeriod("fortnight"), ErrUnknownPeriod)
}

func TestRestoresSnapshotAndNeverDecrements(t *testing.T) {
	seed := Statistics{AllTime: Bucket{FocusMinutes: 500, CompletedFocusSessions: 20, CompletedCycles: 5}}
	accumulator := New(seed, Options{})
	accumulator.Observe(focusDone(25, monday))

	snapshot := accumulator.Snapshot()
	assert.Equal(t, 525.0, snapshot.AllTime.FocusMinutes)
	assert.Equal(t, 21, snapshot.AllTime.CompletedFocusSessions)
	assert.Equal(t, 1, snapshot.Today.CompletedFocusSessions)
}

func TestOnChangeReceivesSnapshot(t *testing.T) {
	accumulator := New(Statistics{}, Options{})
	var seen []Statistics
	accumulator.OnChange(func(statistics Statistics) {
		seen = append(seen, statistics)
	})

	accumulator.Observe(focusDone(25, monday))
	accumulator.Observe(timer.Event{Type: timer.EventTick})

	require.Len(t, seen, 1)
	assert.Equal(t, 1, seen[0].AllTime.CompletedFocusSessions)
}

func TestAverages(t *testing.T) {
	assert.Zero(t, Bucket{}.AverageMinutes())
	assert.Equal(t, 25.0, Bucket{FocusMinutes: 75, CompletedFocusSessions: 3}.AverageMinutes())

	statistics := Statistics{ThisWeek: Bucket{FocusMinutes: 140, CompletedFocusSessions: 5}}
	assert.Equal(t, 20.0, statistics.DailyAverageMinutes())
	assert.Zero(t, Statistics{}.DailyAverageMinutes())
}

func TestStreak(t *testing.T) {
	accumulator := New(Statistics{}, Options{})

	accumulator.Observe(focusDone(25, monday))
	accumulator.Observe(focusDone(25, monday.Add(2*time.Hour)))
	assert.Equal(t, Streak{Days: 1, LastDay: "2026-03-02"}, accumulator.Snapshot().Streak)

	accumulator.Observe(focusDone(25, monday.AddDate(0, 0, 1)))
	assert.Equal(t, 2, accumulator.Snapshot().Streak.Days)

	accumulator.Observe(focusDone(25, monday.AddDate(0, 0, 4)))
	assert.Equal(t, Streak{Days: 1, LastDay: "2026-03-06"}, accumulator.Snapshot().Streak)
}

func TestRollover(t *testing.T) {
	accumulator := New(Statistics{}, Options{})
	rollover := NewRollover(accumulator, monday)
	accumulator.Observe(focusDone(25, monday))

	assert.Empty(t, rollover.Check(monday.Add(3*time.Hour)))

	assert.Equal(t, []Period{PeriodToday}, rollover.Check(monday.AddDate(0, 0, 1)))
	snapshot := accumulator.Snapshot()
	assert.Equal(t, 0, snapshot.Today.CompletedFocusSessions)
	assert.Equal(t, 1, snapshot.ThisWeek.CompletedFocusSessions)

	accumulator.Observe(focusDone(25, monday.AddDate(0, 0, 1)))
	nextMonday := monday.AddDate(0, 0, 7)
	assert.Equal(t, []Period{PeriodToday, PeriodThisWeek}, rollover.Check(nextMonday))
	snapshot = accumulator.Snapshot()
	assert.Equal(t, Bucket{}, snapshot.ThisWeek)
	assert.Equal(t, 2, snapshot.AllTime.CompletedFocusSessions)
}

func TestAccumulatorFollowsEngine(t *testing.T) {
	engine, err := timer.New(model.DefaultSettings(), timer.Options{
		Clock: func() time.Time { return monday },
	})
	require.NoError(t, err)
	accumulator := New(Statistics{}, Options{Debug: true})
	engine.Subscribe(accumulator.Observe)

	// Four focus sessions with breaks in between close one cycle.
	for i := 0; i < 4; i++ {
		engine.Start()
		for engine.State().Mode == model.ModeFocus {
			engine.Tick()
		}
		engine.Skip()
	}

	snapshot := accumulator.Snapshot()
	assert.Equal(t, 4, snapshot.AllTime.CompletedFocusSessions)
	assert.Equal(t, 100.0, snapshot.AllTime.FocusMinutes)
	assert.Equal(t, 1, snapshot.AllTime.CompletedCycles)
	assert.Equal(t, 1, snapshot.Today.CompletedCycles)
}
