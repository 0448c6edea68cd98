package scheduler

import (
	"sync"

	"deepwork/internal/core/countdown"
	"deepwork/internal/core/model"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Options contains collaborators for a Scheduler.
type Options struct {
	Clock  clock.Clock
	Logger *zerolog.Logger
}

type sessionState struct {
	phase          Phase
	currentSession int
	timeLeft       int
	phaseSeconds   int
	paused         bool
	running        bool
}

// Scheduler is the state machine that cycles through work and break phases.
// All state is guarded by mu; driver ticks and intents may arrive from any
// goroutine.
type Scheduler struct {
	mu          sync.Mutex
	driver      countdown.Driver
	clock       clock.Clock
	logger      zerolog.Logger
	config      model.SessionConfig
	configured  bool
	state       sessionState
	generation  uint64
	subscribers []chan Snapshot
	closed      bool
}

// New creates an idle Scheduler that requests ticks from driver.
func New(driver countdown.Driver, options Options) *Scheduler {
	if options.Clock == nil {
		options.Clock = clock.New()
	}
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = options.Logger.With().Str("component", "scheduler").Logger()
	}

	return &Scheduler{
		driver: driver,
		clock:  options.Clock,
		logger: logger,
		state:  sessionState{phase: PhaseIdle},
	}
}

// Subscribe registers a new observer channel. When the buffer is full the
// oldest pending snapshot is dropped so the latest state always arrives.
func (s *Scheduler) Subscribe(buffer int) <-chan Snapshot {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Config returns the stored configuration and whether one is set.
func (s *Scheduler) Config() (model.SessionConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config, s.configured
}

// Snapshot returns the current state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Configure validates and stores config. It never starts a run.
func (s *Scheduler) Configure(config model.SessionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return &SchedulerError{Op: "configure", Err: ErrClosed}
	case s.state.running:
		return &SchedulerError{Op: "configure", Err: ErrAlreadyRunning}
	}
	if err := config.Validate(); err != nil {
		s.logger.Debug().Err(err).Msg("configuration rejected")
		return err
	}

	s.config = config
	s.configured = true
	s.logger.Debug().
		Int("work_seconds", config.WorkSeconds).
		Int("break_seconds", config.BreakSeconds).
		Int("total_sessions", config.TotalSessions).
		Msg("configured")
	s.emitLocked()
	return nil
}

// Start begins the first work phase and starts requesting ticks.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return &SchedulerError{Op: "start", Err: ErrClosed}
	case s.state.running:
		return &SchedulerError{Op: "start", Err: ErrAlreadyRunning}
	case s.state.phase == PhaseFinished:
		return &SchedulerError{Op: "start", Err: ErrFinished}
	case !s.configured:
		return &SchedulerError{Op: "start", Err: ErrNotConfigured}
	}

	s.generation++
	generation := s.generation
	s.state = sessionState{
		phase:          PhaseWork,
		currentSession: 1,
		timeLeft:       s.config.WorkSeconds,
		phaseSeconds:   s.config.WorkSeconds,
		running:        true,
	}
	s.logger.Info().Int("total_sessions", s.config.TotalSessions).Msg("run started")
	s.emitLocked()

	s.driver.Start(func() bool {
		return s.tick(generation)
	})
	return nil
}

// PauseResume toggles the paused flag of an active run.
func (s *Scheduler) PauseResume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.running || s.state.phase == PhaseFinished {
		return
	}
	s.state.paused = !s.state.paused
	s.logger.Debug().Bool("paused", s.state.paused).Int("time_left", s.state.timeLeft).Msg("pause toggled")
	s.emitLocked()
}

// OnTick advances the current run by one second.
func (s *Scheduler) OnTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked(s.generation)
}

// Reset returns to Idle from any phase. The stored configuration is kept so
// a new run can start without configuring again.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.driver.Stop()
	s.state = sessionState{phase: PhaseIdle}
	s.logger.Info().Msg("reset")
	s.emitLocked()
}

// Close stops tick delivery and closes all observer channels.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.driver.Stop()
	subscribers := s.subscribers
	s.subscribers = nil
	s.mu.Unlock()

	for _, ch := range subscribers {
		close(ch)
	}
}

// tick reports whether the run belonging to generation wants further ticks.
func (s *Scheduler) tick(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked(generation)
}

func (s *Scheduler) tickLocked(generation uint64) bool {
	if s.closed || generation != s.generation || !s.state.running {
		return false
	}
	if s.state.paused {
		return true
	}

	if s.state.timeLeft > 0 {
		s.state.timeLeft--
		s.logger.Trace().Int("time_left", s.state.timeLeft).Msg("tick")
		s.emitLocked()
		if s.state.timeLeft > 0 {
			return true
		}
	}

	s.advancePhaseLocked()
	s.emitLocked()
	return s.state.running
}

// advancePhaseLocked applies the phase-transition table. It yields exactly
// TotalSessions work phases and TotalSessions-1 break phases.
func (s *Scheduler) advancePhaseLocked() {
	switch s.state.phase {
	case PhaseWork:
		if s.state.currentSession < s.config.TotalSessions {
			s.enterLocked(PhaseBreak, s.config.BreakSeconds)
			return
		}
		s.finishLocked()
	case PhaseBreak:
		if s.state.currentSession+1 <= s.config.TotalSessions {
			s.state.currentSession++
			s.enterLocked(PhaseWork, s.config.WorkSeconds)
			return
		}
		s.finishLocked()
	}
}

func (s *Scheduler) enterLocked(phase Phase, seconds int) {
	s.state.phase = phase
	s.state.timeLeft = seconds
	s.state.phaseSeconds = seconds
	s.logger.Info().
		Str("phase", string(phase)).
		Int("session", s.state.currentSession).
		Int("seconds", seconds).
		Msg("phase changed")
}

func (s *Scheduler) finishLocked() {
	s.state.phase = PhaseFinished
	s.state.timeLeft = 0
	s.state.running = false
	s.state.paused = false
	s.logger.Info().Int("sessions", s.state.currentSession).Msg("run finished")
}

func (s *Scheduler) snapshotLocked() Snapshot {
	total := 0
	if s.configured {
		total = s.config.TotalSessions
	}
	return Snapshot{
		Phase:           s.state.phase,
		CurrentSession:  s.state.currentSession,
		TotalSessions:   total,
		TimeLeftSeconds: s.state.timeLeft,
		PhaseSeconds:    s.state.phaseSeconds,
		IsPaused:        s.state.paused,
		IsRunning:       s.state.running,
		At:              s.clock.Now(),
	}
}

func (s *Scheduler) emitLocked() {
	snapshot := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
