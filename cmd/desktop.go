package main

import (
	"os"

	"deepwork/internal/core/scheduler"
	"deepwork/internal/ui/overlay"
	"deepwork/internal/ui/preferences"
	"deepwork/internal/ui/timer"
	"deepwork/internal/ui/tray"
	"deepwork/internal/ui/view"
	"deepwork/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"
)

func runDesktop(cmd *cobra.Command, args []string) error {
	guard, err := acquireGuard()
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	rt, err := newBootstrap(cmd, os.Stderr)
	if err != nil {
		return err
	}
	logger := rt.logger.With().Str("component", "desktop").Logger()
	engine := rt.scheduler
	defer engine.Close()

	fyneApp := app.NewWithID("com.deepwork.app")
	activeIcon := resources.MustLogo(resources.IconActive)
	pausedIcon := resources.MustLogo(resources.IconPaused)
	fyneApp.SetIcon(activeIcon)

	var timerWindow *timer.Window
	var prefsWindow *preferences.Window

	report := func(op string, err error) {
		if err == nil {
			return
		}
		logger.Warn().Err(err).Str("intent", op).Msg("Intent rejected")
		timerWindow.ShowError(err)
	}

	start := func() {
		if _, ok := engine.Config(); !ok {
			prefsWindow.Show()
			return
		}
		report("start", engine.Start())
	}

	timerWindow = timer.New(fyneApp, timer.Callbacks{
		OnStart:       start,
		OnTogglePause: engine.PauseResume,
		OnReset:       engine.Reset,
	})

	prefsWindow = preferences.New(fyneApp, preferences.FromSessionConfig(rt.defaults), func(settings preferences.Settings) {
		config := settings.SessionConfig()
		if err := engine.Configure(config); err != nil {
			report("configure", err)
			return
		}
		rt.saveSettings(config)
		report("start", engine.Start())
		timerWindow.Show()
	})

	completion := overlay.New(fyneApp, overlay.DefaultConfig())
	completion.SetOnNewSession(func() {
		engine.Reset()
		prefsWindow.Show()
	})

	desktopApp, hasTray := fyneApp.(desktop.App)
	var trayManager *tray.Manager
	if hasTray {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow:        timerWindow.Show,
			OnStart:       start,
			OnTogglePause: engine.PauseResume,
			OnReset:       engine.Reset,
			OnQuit:        fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(activeIcon)
		timerWindow.SetCloseIntercept(timerWindow.Hide)
	} else {
		logger.Info().Msg("System tray unsupported on this platform")
	}

	events := engine.Subscribe(4)
	go func() {
		lastPhase := scheduler.PhaseIdle
		paused := false
		for snapshot := range events {
			frame := view.Render(snapshot)
			finishedNow := snapshot.Phase == scheduler.PhaseFinished && lastPhase != scheduler.PhaseFinished
			pauseChanged := snapshot.IsPaused != paused
			lastPhase, paused = snapshot.Phase, snapshot.IsPaused

			fyne.Do(func() {
				timerWindow.Render(frame)
				if trayManager != nil {
					trayManager.Render(frame)
					if pauseChanged {
						icon := activeIcon
						if snapshot.IsPaused {
							icon = pausedIcon
						}
						desktopApp.SetSystemTrayIcon(icon)
					}
				}
				if finishedNow {
					completion.Show(frame)
				}
			})
		}
	}()

	timerWindow.Show()
	if rt.explicit {
		report("start", engine.Start())
	} else {
		prefsWindow.Show()
	}

	fyneApp.Run()
	logger.Info().Msg("Shutting down")
	return nil
}
