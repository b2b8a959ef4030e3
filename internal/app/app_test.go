package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focustimer/internal/config"
	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/notify"
	"focustimer/internal/session"
	"focustimer/internal/storage"
)

// idleScheduler never fires; tests drive the engine through Skip.
type idleScheduler struct{}

func (idleScheduler) Schedule(func() bool, time.Duration) session.CancelFunc {
	return func() {}
}

type fixedClock struct {
	now time.Time
}

func (clock *fixedClock) Now() time.Time { return clock.now }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		ConfigDir:    dir,
		DataDir:      dir,
		TickInterval: time.Second,
	}
}

func openApp(t *testing.T, cfg config.Config, clock *fixedClock, extra ...notify.Notifier) *App {
	t.Helper()
	app, err := Open(context.Background(), Options{
		Config:    cfg,
		Scheduler: idleScheduler{},
		Clock:     clock.Now,
		Notifiers: extra,
	})
	require.NoError(t, err)
	return app
}

func TestFocusCompletionIsRecorded(t *testing.T) {
	cfg := testConfig(t)
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	var cues atomic.Int32
	cue := notify.Func(func(context.Context) error {
		cues.Add(1)
		return nil
	})

	app := openApp(t, cfg, clock, cue)
	app.Session.SetTask("write report")
	app.Session.Skip()

	snapshot := app.Session.Snapshot()
	assert.Equal(t, model.ModeShortBreak, snapshot.State.Mode)
	assert.Equal(t, 1, snapshot.State.TotalCompletedFocusSessions)

	statistics := app.Statistics()
	assert.Equal(t, 25.0, statistics.Today.FocusMinutes)
	assert.Equal(t, 1, statistics.AllTime.CompletedFocusSessions)
	assert.Equal(t, 1, statistics.Streak.Days)

	records, err := app.History(context.Background(), time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "write report", records[0].Task)
	assert.Equal(t, 25, records[0].Minutes)
	assert.Equal(t, model.ModeFocus, records[0].Mode)

	require.NoError(t, app.Close())
	assert.Equal(t, int32(1), cues.Load())
	assert.NoError(t, app.Close())
}

func TestReopenRestoresCountersAndStatistics(t *testing.T) {
	cfg := testConfig(t)
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}

	first := openApp(t, cfg, clock)
	first.Session.Skip()
	require.NoError(t, first.Close())

	second := openApp(t, cfg, clock)
	state := second.Session.Snapshot().State
	assert.Equal(t, model.ModeShortBreak, state.Mode)
	assert.Equal(t, 1, state.CompletedFocusSessionsInCycle)
	assert.Equal(t, 1, state.TotalCompletedFocusSessions)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 1, second.Statistics().Today.CompletedFocusSessions)
	require.NoError(t, second.Close())

	clock.now = clock.now.AddDate(0, 0, 1)
	third := openApp(t, cfg, clock)
	defer third.Close()
	statistics := third.Statistics()
	assert.Zero(t, statistics.Today.CompletedFocusSessions)
	assert.Equal(t, 1, statistics.AllTime.CompletedFocusSessions)
}

func TestCycleCompletionCountsOnce(t *testing.T) {
	cfg := testConfig(t)
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	app := openApp(t, cfg, clock)
	defer app.Close()

	require.NoError(t, app.Session.UpdateSettings(model.Patch{SessionsBeforeLongBreak: model.Int(2)}))
	// focus, short break, focus -> long break
	app.Session.Skip()
	app.Session.Skip()
	app.Session.Skip()

	assert.Equal(t, model.ModeLongBreak, app.Session.Snapshot().State.Mode)
	statistics := app.Statistics()
	assert.Equal(t, 2, statistics.AllTime.CompletedFocusSessions)
	assert.Equal(t, 1, statistics.AllTime.CompletedCycles)
	assert.Equal(t, 50.0, statistics.ThisWeek.FocusMinutes)
}

func TestSettingsChangesArePersisted(t *testing.T) {
	cfg := testConfig(t)
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	app := openApp(t, cfg, clock)

	require.NoError(t, app.Session.UpdateSettings(model.Patch{
		FocusDurationMinutes: model.Int(50),
		AutoStartBreaks:      model.Bool(true),
	}))
	err := app.Session.UpdateSettings(model.Patch{FocusDurationMinutes: model.Int(61)})
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
	require.NoError(t, app.Close())

	settings, ignored, err := storage.LoadSettings(storage.SettingsPath(cfg.ConfigDir))
	require.NoError(t, err)
	assert.Empty(t, ignored)
	assert.Equal(t, 50, settings.FocusDurationMinutes)
	assert.True(t, settings.AutoStartBreaks)

	reopened := openApp(t, cfg, clock)
	defer reopened.Close()
	snapshot := reopened.Session.Snapshot()
	assert.Equal(t, 50, snapshot.Settings.FocusDurationMinutes)
	assert.Equal(t, 50*60, snapshot.State.RemainingSeconds)
}

func TestResetPeriodPersists(t *testing.T) {
	cfg := testConfig(t)
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	app := openApp(t, cfg, clock)
	app.Session.Skip()

	require.NoError(t, app.ResetPeriod(stats.PeriodToday))
	assert.ErrorIs(t, app.ResetPeriod("yesterday"), stats.ErrUnknownPeriod)
	require.NoError(t, app.Close())

	reopened := openApp(t, cfg, clock)
	defer reopened.Close()
	statistics := reopened.Statistics()
	assert.Zero(t, statistics.Today.CompletedFocusSessions)
	assert.Equal(t, 1, statistics.ThisWeek.CompletedFocusSessions)
}

func TestCurrentStatisticsAppliesRollover(t *testing.T) {
	cfg := testConfig(t)
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	app := openApp(t, cfg, clock)
	app.Session.Skip()
	require.NoError(t, app.Close())

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	sameDay, err := CurrentStatistics(context.Background(), store, clock.now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sameDay.Today.CompletedFocusSessions)

	// 2026-03-16 is the Monday of the following ISO week.
	nextWeek, err := CurrentStatistics(context.Background(), store, time.Date(2026, 3, 16, 9, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Zero(t, nextWeek.Today.CompletedFocusSessions)
	assert.Zero(t, nextWeek.ThisWeek.CompletedFocusSessions)
	assert.Equal(t, 1, nextWeek.AllTime.CompletedFocusSessions)
}
