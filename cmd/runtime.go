package main

import (
	"errors"
	"fmt"
	"io"

	"deepwork/internal/config"
	"deepwork/internal/core/countdown"
	"deepwork/internal/core/model"
	"deepwork/internal/core/scheduler"
	"deepwork/internal/platform"
	"deepwork/internal/storage"
	"deepwork/internal/ui/preferences"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bootstrap is everything a front end needs to drive one scheduler.
type bootstrap struct {
	cfg       *config.Config
	logger    zerolog.Logger
	scheduler *scheduler.Scheduler
	// defaults prefill the configuration dialog.
	defaults model.SessionConfig
	// explicit is set when session flags were given; the scheduler is then
	// configured before the front end opens.
	explicit bool
}

func newBootstrap(cmd *cobra.Command, logOut io.Writer) (*bootstrap, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging, logOut)

	defaults, explicit, err := resolveSession(cfg, cmd.Flags(), appName, logger)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	driver, err := countdown.New(cfg.Driver.Strategy, clk, countdown.Options{Resolution: cfg.Driver.Resolution})
	if err != nil {
		return nil, fmt.Errorf("create countdown driver: %w", err)
	}

	engine := scheduler.New(driver, scheduler.Options{Clock: clk, Logger: &logger})
	if explicit {
		if err := engine.Configure(defaults); err != nil {
			engine.Close()
			return nil, fmt.Errorf("configure session: %w", err)
		}
	}

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Str("driver", driverName(cfg.Driver.Strategy)).
		Int("work_seconds", defaults.WorkSeconds).
		Int("break_seconds", defaults.BreakSeconds).
		Int("sessions", defaults.TotalSessions).
		Msg("Starting deepwork")

	return &bootstrap{
		cfg:       cfg,
		logger:    logger,
		scheduler: engine,
		defaults:  defaults,
		explicit:  explicit,
	}, nil
}

// resolveSession picks the values offered to the user: explicit session
// flags win, then the last values entered, then the configuration file.
func resolveSession(cfg *config.Config, flags *pflag.FlagSet, app string, logger zerolog.Logger) (model.SessionConfig, bool, error) {
	fromConfig, err := cfg.Session.SessionModel()
	if err != nil {
		return model.SessionConfig{}, false, fmt.Errorf("invalid session defaults: %w", err)
	}
	if sessionFlagsChanged(flags) {
		return fromConfig, true, nil
	}

	stored, err := storage.LoadSettingsOver(app, preferences.FromSessionConfig(fromConfig))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load last used settings")
	}
	return stored.SessionConfig(), false, nil
}

func sessionFlagsChanged(flags *pflag.FlagSet) bool {
	if flags == nil {
		return false
	}
	for _, name := range []string{"work", "break", "sessions"} {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

// saveSettings remembers the values of an accepted configuration.
func (rt *bootstrap) saveSettings(config model.SessionConfig) {
	if err := storage.SaveSettings(appName, preferences.FromSessionConfig(config)); err != nil {
		rt.logger.Warn().Err(err).Msg("Failed to save settings")
	}
}

func driverName(strategy string) string {
	if strategy == "" {
		return countdown.StrategyRearm
	}
	return strategy
}

// acquireGuard takes the machine-wide lock shared by both front ends.
func acquireGuard() (*platform.InstanceGuard, error) {
	guard, err := platform.AcquireSingleInstance(appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		return nil, fmt.Errorf("another %s timer is already running: %w", appName, err)
	}
	return guard, err
}
