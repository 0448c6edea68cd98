package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deepwork/internal/core/countdown"
	"deepwork/internal/core/model"
	"deepwork/internal/platform"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. DEEPWORK_SESSION_COUNT.
const EnvPrefix = "DEEPWORK"

// Config holds the complete application configuration
type Config struct {
	Session SessionConfig `mapstructure:"session"`
	Driver  DriverConfig  `mapstructure:"driver"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SessionConfig holds the default session values offered to the user
type SessionConfig struct {
	Work  time.Duration `mapstructure:"work"`
	Break time.Duration `mapstructure:"break"`
	Count int           `mapstructure:"count"`
}

// DriverConfig selects the countdown strategy
type DriverConfig struct {
	Strategy   string        `mapstructure:"strategy"`
	Resolution time.Duration `mapstructure:"resolution"`
}

// LoggingConfig defines log output
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"work":       "session.work",
	"break":      "session.break",
	"sessions":   "session.count",
	"driver":     "driver.strategy",
	"resolution": "driver.resolution",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// DefaultPath returns the config file location inside the user config dir.
func DefaultPath(appName string) (string, error) {
	configDir, err := platform.NewService().GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName, "config.yaml"), nil
}

// Load loads configuration from file, environment variables and flags.
// A missing config file is not an error. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flagName, key := range flagKeys {
			flag := flags.Lookup(flagName)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flagName, err)
			}
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SessionModel converts the session defaults to the engine configuration.
func (session SessionConfig) SessionModel() (model.SessionConfig, error) {
	workSeconds, err := wholeSeconds(model.FieldWorkSeconds, session.Work)
	if err != nil {
		return model.SessionConfig{}, err
	}
	breakSeconds, err := wholeSeconds(model.FieldBreakSeconds, session.Break)
	if err != nil {
		return model.SessionConfig{}, err
	}
	config := model.SessionConfig{
		WorkSeconds:   workSeconds,
		BreakSeconds:  breakSeconds,
		TotalSessions: session.Count,
	}
	if err := config.Validate(); err != nil {
		return model.SessionConfig{}, err
	}
	return config, nil
}

func wholeSeconds(field string, value time.Duration) (int, error) {
	if value%time.Second != 0 {
		return 0, &model.ConfigError{Field: field, Value: value.String(), Kind: model.ErrNotInteger}
	}
	return int(value / time.Second), nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	defaults := model.DefaultSessionConfig()

	// Session defaults
	v.SetDefault("session.work", defaults.WorkDuration().String())
	v.SetDefault("session.break", defaults.BreakDuration().String())
	v.SetDefault("session.count", defaults.TotalSessions)

	// Driver defaults
	v.SetDefault("driver.strategy", countdown.StrategyRearm)
	v.SetDefault("driver.resolution", "100ms")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if _, err := cfg.Session.SessionModel(); err != nil {
		return err
	}

	switch cfg.Driver.Strategy {
	case countdown.StrategyRearm, countdown.StrategyLoop:
	default:
		return fmt.Errorf("driver strategy %q: %w", cfg.Driver.Strategy, countdown.ErrUnknownStrategy)
	}
	if cfg.Driver.Resolution <= 0 || cfg.Driver.Resolution > time.Second {
		return fmt.Errorf("driver resolution %s: %w", cfg.Driver.Resolution, countdown.ErrInvalidPeriod)
	}

	switch cfg.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", cfg.Logging.Format)
	}

	return nil
}
