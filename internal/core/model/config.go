package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Field names used in ConfigError.
const (
	FieldWorkSeconds   = "work_seconds"
	FieldBreakSeconds  = "break_seconds"
	FieldTotalSessions = "total_sessions"
)

var (
	// ErrNotPositive indicates a value that must be strictly positive.
	ErrNotPositive = errors.New("must be positive")
	// ErrOutOfRange indicates a value outside the allowed bounds.
	ErrOutOfRange = errors.New("out of range")
	// ErrNotInteger indicates raw input that is not a whole number.
	ErrNotInteger = errors.New("not an integer")
)

// Range is an inclusive integer interval.
type Range struct {
	Min int
	Max int
}

// Contains reports whether value lies inside the range.
func (r Range) Contains(value int) bool {
	return value >= r.Min && value <= r.Max
}

// Limits holds the accepted range for every SessionConfig field.
type Limits struct {
	WorkSeconds   Range
	BreakSeconds  Range
	TotalSessions Range
}

// Bounds are the limits enforced by SessionConfig.Validate.
var Bounds = Limits{
	WorkSeconds:   Range{Min: 60, Max: 7200},
	BreakSeconds:  Range{Min: 60, Max: 3600},
	TotalSessions: Range{Min: 1, Max: 20},
}

// SessionConfig describes one run of alternating work and break phases.
type SessionConfig struct {
	WorkSeconds   int
	BreakSeconds  int
	TotalSessions int
}

// DefaultSessionConfig returns the classic 25/5 x4 cycle.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WorkSeconds:   25 * 60,
		BreakSeconds:  5 * 60,
		TotalSessions: 4,
	}
}

// ConfigError reports an invalid SessionConfig field.
type ConfigError struct {
	Field string
	Value string
	Kind  error
	Range Range
}

func (e *ConfigError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrOutOfRange):
		return fmt.Sprintf("invalid %s %s: %v [%d, %d]", e.Field, e.Value, e.Kind, e.Range.Min, e.Range.Max)
	case e.Value != "":
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Kind)
	default:
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Kind)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}

// Validate checks every field against Bounds. It never adjusts values.
func (config SessionConfig) Validate() error {
	checks := []struct {
		field string
		value int
		r     Range
	}{
		{FieldWorkSeconds, config.WorkSeconds, Bounds.WorkSeconds},
		{FieldBreakSeconds, config.BreakSeconds, Bounds.BreakSeconds},
		{FieldTotalSessions, config.TotalSessions, Bounds.TotalSessions},
	}
	for _, check := range checks {
		if err := validateField(check.field, check.value, check.r); err != nil {
			return err
		}
	}
	return nil
}

// WorkDuration returns the work phase length.
func (config SessionConfig) WorkDuration() time.Duration {
	return time.Duration(config.WorkSeconds) * time.Second
}

// BreakDuration returns the break phase length.
func (config SessionConfig) BreakDuration() time.Duration {
	return time.Duration(config.BreakSeconds) * time.Second
}

// ParseConfig builds a SessionConfig from raw seconds and session count text.
func ParseConfig(workSeconds, breakSeconds, totalSessions string) (SessionConfig, error) {
	var config SessionConfig
	var err error
	if config.WorkSeconds, err = ParseInt(FieldWorkSeconds, workSeconds); err != nil {
		return SessionConfig{}, err
	}
	if config.BreakSeconds, err = ParseInt(FieldBreakSeconds, breakSeconds); err != nil {
		return SessionConfig{}, err
	}
	if config.TotalSessions, err = ParseInt(FieldTotalSessions, totalSessions); err != nil {
		return SessionConfig{}, err
	}
	if err := config.Validate(); err != nil {
		return SessionConfig{}, err
	}
	return config, nil
}

// Field names used when input is entered in whole minutes.
const (
	FieldWorkMinutes  = "work minutes"
	FieldBreakMinutes = "break minutes"
	FieldSessions     = "sessions"
)

// Minutes returns the whole-minute interval that converts into r seconds.
func (r Range) Minutes() Range {
	return Range{Min: (r.Min + 59) / 60, Max: r.Max / 60}
}

// ParseMinutes builds a SessionConfig from whole-minute durations and a
// session count, as entered in the configuration dialogs. Range errors are
// reported in minutes.
func ParseMinutes(workMinutes, breakMinutes, totalSessions string) (SessionConfig, error) {
	work, err := ParseMinutesField(FieldWorkMinutes, workMinutes, Bounds.WorkSeconds)
	if err != nil {
		return SessionConfig{}, err
	}
	brk, err := ParseMinutesField(FieldBreakMinutes, breakMinutes, Bounds.BreakSeconds)
	if err != nil {
		return SessionConfig{}, err
	}
	count, err := ParseCount(FieldSessions, totalSessions, Bounds.TotalSessions)
	if err != nil {
		return SessionConfig{}, err
	}

	config := SessionConfig{
		WorkSeconds:   work * 60,
		BreakSeconds:  brk * 60,
		TotalSessions: count,
	}
	if err := config.Validate(); err != nil {
		return SessionConfig{}, err
	}
	return config, nil
}

// ParseMinutesField parses a minute count and checks it against the minute
// equivalent of seconds before any conversion.
func ParseMinutesField(field, raw string, seconds Range) (int, error) {
	return ParseCount(field, raw, seconds.Minutes())
}

// ParseCount parses a whole number and checks it against r.
func ParseCount(field, raw string, r Range) (int, error) {
	value, err := ParseInt(field, raw)
	if err != nil {
		return 0, err
	}
	if err := validateField(field, value, r); err != nil {
		return 0, err
	}
	return value, nil
}

// ParseInt parses a whole number for field, reporting a ConfigError otherwise.
func ParseInt(field, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ConfigError{Field: field, Value: raw, Kind: ErrNotInteger}
	}
	return value, nil
}

func validateField(field string, value int, r Range) error {
	if value <= 0 {
		return &ConfigError{Field: field, Value: strconv.Itoa(value), Kind: ErrNotPositive, Range: r}
	}
	if !r.Contains(value) {
		return &ConfigError{Field: field, Value: strconv.Itoa(value), Kind: ErrOutOfRange, Range: r}
	}
	return nil
}
