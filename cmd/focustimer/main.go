package main

import (
	"context"
	"errors"
	"log"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"focustimer/internal/app"
	"focustimer/internal/config"
	"focustimer/internal/core/model"
	"focustimer/internal/core/timer"
	"focustimer/internal/logging"
	"focustimer/internal/notify"
	"focustimer/internal/platform"
	"focustimer/internal/ui/dashboard"
	"focustimer/internal/ui/preferences"
	"focustimer/internal/ui/tray"
	"focustimer/resources"
)

const appName = "FocusTimer"

func main() {
	flags := pflag.NewFlagSet("focustimer", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (default is <config dir>/focustimer/config.yaml)")
	verbosity := flags.CountP("verbose", "v", "increase log verbosity (-v, -vv)")
	_ = flags.Parse(os.Args[1:])

	guard, err := platform.AcquireSingleInstance(appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if err := platform.ActivateRunning(appName); err != nil {
			log.Printf("single instance: %v", err)
		}
		return
	}
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logOptions := logging.Options{Level: cfg.LogLevel, Debug: cfg.Debug, Verbosity: *verbosity}
	if cfg.LogFile != "" {
		logOptions.OutputPaths = []string{cfg.LogFile}
	}
	logger, err := logging.New(logOptions)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	fyneApp := fyneapp.NewWithID("io.focustimer.app")
	fyneApp.SetIcon(resources.AppIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Error("system tray unsupported on this platform")
		return
	}

	focus, err := app.Open(context.Background(), app.Options{
		Config:    cfg,
		Logger:    logger,
		Notifiers: []notify.Notifier{desktopNotifier(fyneApp)},
	})
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer func() {
		if err := focus.Close(); err != nil {
			logger.Error("failed to save state", zap.Error(err))
		}
	}()

	dashboardWindow := dashboard.New(fyneApp, focus.Session, func(err error) {
		logger.Debug("mode switch rejected", zap.Error(err))
	})

	prefsWindow := preferences.New(fyneApp, focus.Session.Snapshot().Settings, func(patch model.Patch) error {
		return focus.Session.UpdateSettings(patch)
	})

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnToggle: focus.Session.Toggle,
		OnSkip:   focus.Session.Skip,
		OnReset:  focus.Session.Reset,
		OnMode: func(mode model.Mode) {
			if err := focus.Session.SwitchMode(mode); err != nil {
				logger.Debug("mode switch rejected", zap.Error(err))
			}
		},
		OnDashboard:   dashboardWindow.Show,
		OnPreferences: prefsWindow.Show,
		OnQuit:        fyneApp.Quit,
	})

	refresh := func() {
		snapshot := focus.Session.Snapshot()
		trayManager.Update(snapshot)
		dashboardWindow.Update(snapshot)
	}

	events := focus.Session.Subscribe(16)
	go func() {
		for event := range events {
			event := event
			fyne.Do(func() {
				refresh()
				switch event.Type {
				case timer.EventSettingsChanged:
					prefsWindow.UpdateSettings(event.Settings)
				case timer.EventFocusSessionCompleted, timer.EventCycleCompleted:
					dashboardWindow.UpdateStatistics(focus.Statistics())
				}
			})
		}
	}()

	guard.OnActivate(func() {
		fyne.Do(dashboardWindow.Show)
	})

	refresh()
	dashboardWindow.UpdateStatistics(focus.Statistics())
	dashboardWindow.Show()
	fyneApp.Run()
}

func desktopNotifier(fyneApp fyne.App) notify.Notifier {
	return notify.Func(func(ctx context.Context) error {
		fyne.Do(func() {
			fyneApp.SendNotification(fyne.NewNotification(appName, "Time's up! Your session has ended."))
		})
		return nil
	})
}
