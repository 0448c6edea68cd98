package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// Phase represents the current mode of the session cycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseWork     Phase = "work"
	PhaseBreak    Phase = "break"
	PhaseFinished Phase = "finished"
)

// Active reports whether the phase counts down time.
func (phase Phase) Active() bool {
	return phase == PhaseWork || phase == PhaseBreak
}

// Snapshot is the complete externally visible scheduler state.
type Snapshot struct {
	Phase           Phase
	CurrentSession  int
	TotalSessions   int
	TimeLeftSeconds int
	PhaseSeconds    int
	IsPaused        bool
	IsRunning       bool
	At              time.Time
}

// TimeLeft returns the remaining phase time as a duration.
func (snapshot Snapshot) TimeLeft() time.Duration {
	return time.Duration(snapshot.TimeLeftSeconds) * time.Second
}

// Progress returns the elapsed fraction of the current phase in [0, 1].
func (snapshot Snapshot) Progress() float64 {
	if snapshot.Phase == PhaseFinished {
		return 1
	}
	if snapshot.PhaseSeconds <= 0 {
		return 0
	}
	progress := float64(snapshot.PhaseSeconds-snapshot.TimeLeftSeconds) / float64(snapshot.PhaseSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

var (
	// ErrAlreadyRunning indicates an intent that requires no active run.
	ErrAlreadyRunning = errors.New("session already running")
	// ErrNotConfigured indicates Start without a stored configuration.
	ErrNotConfigured = errors.New("session not configured")
	// ErrFinished indicates Start after completion without a Reset.
	ErrFinished = errors.New("session finished, reset first")
	// ErrClosed indicates an intent received after Close.
	ErrClosed = errors.New("scheduler closed")
)

// SchedulerError reports a rejected intent.
type SchedulerError struct {
	Op  string
	Err error
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SchedulerError) Unwrap() error {
	return e.Err
}
