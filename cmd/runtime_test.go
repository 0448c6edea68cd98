package main

import (
	"bytes"
	"runtime"
	"testing"
	"time"

	"deepwork/internal/config"
	"deepwork/internal/core/model"
	"deepwork/internal/storage"
	"deepwork/internal/ui/preferences"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("work", 0, "")
	flags.Duration("break", 0, "")
	flags.Int("sessions", 0, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var out bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &out)

	logger.Info().Msg("hidden")
	logger.Warn().Str("intent", "start").Msg("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"intent":"start"`)
	assert.Contains(t, out.String(), `"time"`)
}

func TestSetupLogger_Text(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var out bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &out)
	logger.Debug().Msg("phase transition")

	assert.Contains(t, out.String(), "phase transition")
	assert.NotContains(t, out.String(), "{")
}

func TestSessionFlagsChanged(t *testing.T) {
	assert.False(t, sessionFlagsChanged(nil))
	assert.False(t, sessionFlagsChanged(sessionFlags(t)))
	assert.True(t, sessionFlagsChanged(sessionFlags(t, "--sessions", "2")))
}

func TestResolveSession(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only drives the config dir on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	const app = "deepwork-test"
	cfg := &config.Config{Session: config.SessionConfig{Work: 40 * time.Minute, Break: 10 * time.Minute, Count: 3}}
	fromConfig := model.SessionConfig{WorkSeconds: 2400, BreakSeconds: 600, TotalSessions: 3}

	defaults, explicit, err := resolveSession(cfg, sessionFlags(t), app, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, explicit)
	assert.Equal(t, fromConfig, defaults)

	require.NoError(t, storage.SaveSettings(app, preferences.Settings{
		WorkDuration:  20 * time.Minute,
		BreakDuration: 4 * time.Minute,
		Sessions:      6,
	}))
	defaults, explicit, err = resolveSession(cfg, sessionFlags(t), app, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, explicit)
	assert.Equal(t, model.SessionConfig{WorkSeconds: 1200, BreakSeconds: 240, TotalSessions: 6}, defaults)

	defaults, explicit, err = resolveSession(cfg, sessionFlags(t, "--work", "40m"), app, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, explicit)
	assert.Equal(t, fromConfig, defaults)
}

func TestResolveSession_InvalidConfig(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{Work: 90*time.Second + 500*time.Millisecond, Break: 5 * time.Minute, Count: 4}}

	_, _, err := resolveSession(cfg, sessionFlags(t), "deepwork-test", zerolog.Nop())

	assert.ErrorIs(t, err, model.ErrNotInteger)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)

	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "deepwork version dev\n", out.String())
}
