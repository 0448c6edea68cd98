// Package view turns scheduler snapshots into the strings and control states
// rendered by the desktop and terminal front ends.
package view

import (
	"fmt"
	"time"

	"deepwork/internal/core/scheduler"
)

const (
	// Title is the heading above the countdown.
	Title = " You're a champion!"
	// CompletionTitle is shown when every session is done.
	CompletionTitle = "Congratulations!"
	// CompletionMessage is shown when every session is done.
	CompletionMessage = "Hurrah! You're one step away from becoming the best version of yourself!"
	// NewSessionLabel labels the path back to configuration after completion.
	NewSessionLabel = "Start New Deep Work Session"
)

// Controls describes which intents the user may trigger.
type Controls struct {
	StartEnabled bool
	PauseEnabled bool
	ResetEnabled bool
	PauseLabel   string
}

// Model is everything a front end needs to draw one frame.
type Model struct {
	Clock    string
	Status   string
	Counter  string
	Progress float64
	Finished bool
	Controls Controls
}

// Render builds the view model for snapshot.
func Render(snapshot scheduler.Snapshot) Model {
	return Model{
		Clock:    FormatClock(snapshot.TimeLeftSeconds),
		Status:   Status(snapshot),
		Counter:  Counter(snapshot),
		Progress: snapshot.Progress(),
		Finished: snapshot.Phase == scheduler.PhaseFinished,
		Controls: ControlsFor(snapshot),
	}
}

// FormatClock renders seconds as MM:SS. Minutes may exceed 59.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatDuration renders a duration as MM:SS, truncating partial seconds.
func FormatDuration(remaining time.Duration) string {
	return FormatClock(int(remaining / time.Second))
}

// Status returns the phase label.
func Status(snapshot scheduler.Snapshot) string {
	switch {
	case snapshot.Phase == scheduler.PhaseFinished:
		return "All sessions complete"
	case snapshot.IsPaused:
		return "Paused"
	case snapshot.Phase == scheduler.PhaseWork:
		return fmt.Sprintf("Working - Session %d", snapshot.CurrentSession)
	case snapshot.Phase == scheduler.PhaseBreak:
		return fmt.Sprintf("Break - Session %d", snapshot.CurrentSession)
	default:
		return "Ready to start"
	}
}

// Counter returns the "Session: n/N" label.
func Counter(snapshot scheduler.Snapshot) string {
	return fmt.Sprintf("Session: %d/%d", snapshot.CurrentSession, snapshot.TotalSessions)
}

// ControlsFor returns control enablement: start only when idle, pause and
// reset only when not idle.
func ControlsFor(snapshot scheduler.Snapshot) Controls {
	idle := snapshot.Phase == scheduler.PhaseIdle
	controls := Controls{
		StartEnabled: idle,
		PauseEnabled: !idle && snapshot.Phase != scheduler.PhaseFinished,
		ResetEnabled: !idle,
		PauseLabel:   "Pause",
	}
	if snapshot.IsPaused {
		controls.PauseLabel = "Resume"
	}
	return controls
}
