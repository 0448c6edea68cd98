package main

import (
	"io"
	"os"
	"path/filepath"

	"deepwork/internal/config"

	"github.com/rs/zerolog"
)

func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stderr && out != os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(out).With().Timestamp().Logger()
}

// openLogFile opens the append-only log used while the terminal owns stdout.
func openLogFile(appName string) (*os.File, error) {
	path, err := config.DefaultPath(appName)
	if err != nil {
		return nil, err
	}
	logPath := filepath.Join(filepath.Dir(path), appName+".log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
