// Package app wires the timer, statistics, notification and persistence
// components into one running focus session for a host.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"focustimer/internal/config"
	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/core/timer"
	"focustimer/internal/notify"
	"focustimer/internal/session"
	"focustimer/internal/storage"
)

// persistTimeout bounds each write made from an engine observer.
const persistTimeout = 5 * time.Second

// Options configures Open.
type Options struct {
	Config config.Config
	Logger *zap.Logger
	// Notifiers are played in addition to the configured sound, e.g. a desktop
	// notification supplied by the GUI host.
	Notifiers []notify.Notifier
	// BellWriter receives the terminal bell when sound.bell is enabled. Nil disables it.
	BellWriter io.Writer
	Scheduler  session.Scheduler
	Clock      func() time.Time
	// Store overrides the SQLite store, mostly for tests.
	Store storage.Store
}

// App is a running focus timer with its collaborators.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Session  *session.Session
	Stats    *stats.Accumulator
	Store    storage.Store
	Settings string

	engine   *timer.Engine
	rollover *stats.Rollover
	notifier *notify.Async
	clock    func() time.Time
	closed   bool
}

// Open loads settings, statistics and the last timer state and starts a session.
func Open(ctx context.Context, options Options) (*App, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}
	cfg := options.Config

	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	settingsPath := storage.SettingsPath(cfg.ConfigDir)
	settings, ignored, err := storage.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	for _, fieldErr := range ignored {
		logger.Warn("settings value ignored", zap.String("path", settingsPath), zap.Error(fieldErr))
	}

	store := options.Store
	if store == nil {
		sqlite, err := OpenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store = sqlite
	}

	statistics, savedAt, err := store.LoadStatistics(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if savedAt.IsZero() {
		savedAt = clock()
	}
	savedAt = savedAt.In(clock().Location())
	restored, err := store.LoadTimerState(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	async := notify.NewAsync(buildNotifier(cfg, options, logger), 0, logger.Named("notify"))
	engine, err := timer.New(settings, timer.Options{
		Notifier: async,
		Logger:   logger.Named("timer"),
		Clock:    clock,
		Restore:  restored,
	})
	if err != nil {
		async.Close()
		_ = store.Close()
		return nil, err
	}

	accumulator := stats.New(statistics, stats.Options{Logger: logger.Named("stats"), Debug: cfg.Debug})
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Stats:    accumulator,
		Settings: settingsPath,
		engine:   engine,
		rollover: stats.NewRollover(accumulator, savedAt),
		notifier: async,
		clock:    clock,
	}
	accumulator.OnChange(app.saveStatistics)

	app.Session = session.New(engine, session.Config{
		TickInterval: cfg.TickInterval,
		Scheduler:    options.Scheduler,
		Logger:       logger.Named("session"),
	})
	app.Session.Observe(app.observe)

	// Buckets may be stale if the app was last used on another day.
	app.rollover.Check(clock())

	logger.Info("focus timer ready",
		zap.String("settings", settingsPath),
		zap.String("data_dir", cfg.DataDir),
		zap.String("mode", string(engine.State().Mode)))
	return app, nil
}

// OpenStore opens and migrates the history database under the data directory.
func OpenStore(ctx context.Context, cfg config.Config) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(filepath.Join(cfg.DataDir, storage.DatabaseFileName))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// CurrentStatistics reads the saved statistics and applies any day or week
// rollover since they were written, without saving the result.
func CurrentStatistics(ctx context.Context, store storage.Store, now time.Time) (stats.Statistics, error) {
	snapshot, savedAt, err := store.LoadStatistics(ctx)
	if err != nil {
		return stats.Statistics{}, err
	}
	if savedAt.IsZero() {
		return snapshot, nil
	}
	accumulator := stats.New(snapshot, stats.Options{})
	stats.NewRollover(accumulator, savedAt.In(now.Location())).Check(now)
	return accumulator.Snapshot(), nil
}

func buildNotifier(cfg config.Config, options Options, logger *zap.Logger) notify.Notifier {
	var notifiers notify.Multi
	if cfg.SoundFile != "" {
		player, err := notify.FindPlayer(cfg.SoundCommand, cfg.SoundFile)
		if err != nil {
			logger.Warn("sound player unavailable", zap.Error(err))
		} else {
			notifiers = append(notifiers, player)
		}
	}
	if cfg.TerminalBell && options.BellWriter != nil {
		notifiers = append(notifiers, notify.Bell{Writer: options.BellWriter})
	}
	notifiers = append(notifiers, options.Notifiers...)
	return notifiers
}

// Statistics returns the counters after applying any pending day or week rollover.
func (app *App) Statistics() stats.Statistics {
	app.rollover.Check(app.clock())
	return app.Stats.Snapshot()
}

// ResetPeriod zeroes one statistics bucket and persists the result.
func (app *App) ResetPeriod(period stats.Period) error {
	return app.Stats.ResetPeriod(period)
}

// History lists completed sessions since the given time, newest first.
func (app *App) History(ctx context.Context, since time.Time, limit int) ([]*storage.SessionRecord, error) {
	return app.Store.ListSessions(ctx, since, limit)
}

// Close stops the session, waits for in-flight cues, saves the timer state and
// closes the store.
func (app *App) Close() error {
	if app.closed {
		return nil
	}
	app.closed = true

	state := app.Session.Snapshot().State
	app.Session.Close()
	app.notifier.Close()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	saveErr := app.Store.SaveTimerState(ctx, state)
	return errors.Join(saveErr, app.Store.Close())
}

// observe runs under the session lock. It must not call back into the Session.
func (app *App) observe(event timer.Event) {
	switch event.Type {
	case timer.EventFocusSessionCompleted:
		app.rollover.Check(event.At)
		app.Stats.Observe(event)
		app.recordSession(event)
	case timer.EventCycleCompleted:
		app.Stats.Observe(event)
	case timer.EventSettingsChanged:
		if err := storage.SaveSettings(app.Settings, event.Settings); err != nil {
			app.Logger.Error("failed to save settings", zap.Error(err))
		}
	case timer.EventModeChanged, timer.EventPaused, timer.EventReset:
		app.saveTimerState(app.engine.State())
	}
}

func (app *App) recordSession(event timer.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	record := &storage.SessionRecord{
		Mode:        model.ModeFocus,
		Minutes:     event.FocusMinutes,
		Task:        event.Task,
		CompletedAt: event.At,
	}
	if err := app.Store.RecordSession(ctx, record); err != nil {
		app.Logger.Error("failed to record session", zap.Error(err))
		return
	}
	app.Logger.Info("focus session completed",
		zap.String("id", record.ID),
		zap.Int("minutes", record.Minutes),
		zap.Int("total", event.TotalCompleted))
}

func (app *App) saveStatistics(statistics stats.Statistics) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := app.Store.SaveStatistics(ctx, statistics, app.clock()); err != nil {
		app.Logger.Error("failed to save statistics", zap.Error(err))
	}
}

func (app *App) saveTimerState(state timer.State) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := app.Store.SaveTimerState(ctx, state); err != nil {
		app.Logger.Error("failed to save timer state", zap.Error(err))
	}
}
