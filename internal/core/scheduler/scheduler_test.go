package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"deepwork/internal/core/countdown"
	"deepwork/internal/core/model"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*Scheduler, *countdown.Manual) {
	t.Helper()
	driver := countdown.NewManual()
	s := New(driver, Options{Clock: clock.NewMock()})
	t.Cleanup(s.Close)
	return s, driver
}

func configured(t *testing.T, work, brk, sessions int) (*Scheduler, *countdown.Manual) {
	t.Helper()
	s, driver := newTestScheduler(t)
	require.NoError(t, s.Configure(model.SessionConfig{
		WorkSeconds:   work,
		BreakSeconds:  brk,
		TotalSessions: sessions,
	}))
	return s, driver
}

func assertIdle(t *testing.T, snapshot Snapshot) {
	t.Helper()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, 0, snapshot.CurrentSession)
	assert.Equal(t, 0, snapshot.TimeLeftSeconds)
	assert.False(t, snapshot.IsRunning)
	assert.False(t, snapshot.IsPaused)
}

func TestNew_StartsIdle(t *testing.T) {
	s, driver := newTestScheduler(t)

	assertIdle(t, s.Snapshot())
	assert.False(t, driver.Active(), "no ticks are requested before Start")
	_, ok := s.Config()
	assert.False(t, ok)
}

func TestStart_RequiresConfig(t *testing.T) {
	s, driver := newTestScheduler(t)

	err := s.Start()

	var schedErr *SchedulerError
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, "start", schedErr.Op)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assertIdle(t, s.Snapshot())
	assert.Equal(t, 0, driver.Starts())
}

func TestStart_EntersFirstWorkPhase(t *testing.T) {
	s, driver := configured(t, 1500, 300, 2)

	require.NoError(t, s.Start())

	snapshot := s.Snapshot()
	assert.Equal(t, PhaseWork, snapshot.Phase)
	assert.Equal(t, 1, snapshot.CurrentSession)
	assert.Equal(t, 2, snapshot.TotalSessions)
	assert.Equal(t, 1500, snapshot.TimeLeftSeconds)
	assert.True(t, snapshot.IsRunning)
	assert.False(t, snapshot.IsPaused)
	assert.True(t, driver.Active())
}

func TestStart_AlreadyRunning(t *testing.T) {
	s, _ := configured(t, 60, 60, 2)
	require.NoError(t, s.Start())
	driverTicks(s, 10)
	before := s.Snapshot()

	err := s.Start()

	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, before.TimeLeftSeconds, s.Snapshot().TimeLeftSeconds)
}

func TestStart_AfterFinishRequiresReset(t *testing.T) {
	s, driver := configured(t, 60, 60, 1)
	require.NoError(t, s.Start())
	driver.TickN(60)
	require.Equal(t, PhaseFinished, s.Snapshot().Phase)

	assert.ErrorIs(t, s.Start(), ErrFinished)

	s.Reset()
	require.NoError(t, s.Start())
	assert.Equal(t, PhaseWork, s.Snapshot().Phase)
}

func TestConfigure_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config model.SessionConfig
		kind   error
	}{
		{"zero sessions", model.SessionConfig{WorkSeconds: 1500, BreakSeconds: 300, TotalSessions: 0}, model.ErrNotPositive},
		{"negative work", model.SessionConfig{WorkSeconds: -5, BreakSeconds: 300, TotalSessions: 2}, model.ErrNotPositive},
		{"break too long", model.SessionConfig{WorkSeconds: 1500, BreakSeconds: 4000, TotalSessions: 2}, model.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := configured(t, 600, 120, 3)
			before := s.Snapshot()

			err := s.Configure(tt.config)

			var configErr *model.ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.ErrorIs(t, err, tt.kind)

			config, ok := s.Config()
			require.True(t, ok)
			assert.Equal(t, model.SessionConfig{WorkSeconds: 600, BreakSeconds: 120, TotalSessions: 3}, config)
			after := s.Snapshot()
			after.At, before.At = time.Time{}, time.Time{}
			assert.Equal(t, before, after)
		})
	}
}

func TestConfigure_RejectedWhileRunning(t *testing.T) {
	s, _ := configured(t, 600, 120, 3)
	require.NoError(t, s.Start())

	err := s.Configure(model.SessionConfig{WorkSeconds: 60, BreakSeconds: 60, TotalSessions: 1})

	assert.ErrorIs(t, err, ErrAlreadyRunning)
	config, _ := s.Config()
	assert.Equal(t, 600, config.WorkSeconds)
}

func TestConfigure_DoesNotStart(t *testing.T) {
	s, driver := configured(t, 600, 120, 3)

	snapshot := s.Snapshot()
	assert.Equal(t, PhaseIdle, snapshot.Phase)
	assert.Equal(t, 3, snapshot.TotalSessions)
	assert.False(t, driver.Active())
}

func TestScenario_TwoSessions(t *testing.T) {
	s, driver := configured(t, 1500, 300, 2)
	require.NoError(t, s.Start())

	require.Equal(t, 1500, driver.TickN(1500))
	snapshot := s.Snapshot()
	assert.Equal(t, PhaseBreak, snapshot.Phase)
	assert.Equal(t, 1, snapshot.CurrentSession)
	assert.Equal(t, 300, snapshot.TimeLeftSeconds)

	require.Equal(t, 300, driver.TickN(300))
	snapshot = s.Snapshot()
	assert.Equal(t, PhaseWork, snapshot.Phase)
	assert.Equal(t, 2, snapshot.CurrentSession)
	assert.Equal(t, 1500, snapshot.TimeLeftSeconds)

	require.Equal(t, 1500, driver.TickN(1500))
	snapshot = s.Snapshot()
	assert.Equal(t, PhaseFinished, snapshot.Phase)
	assert.False(t, snapshot.IsRunning)
	assert.False(t, driver.Active(), "ticks stop once finished")
}

func TestScenario_SingleSessionHasNoBreak(t *testing.T) {
	s, driver := configured(t, 60, 60, 1)
	events := s.Subscribe(512)
	require.NoError(t, s.Start())

	driver.TickN(1000)

	assert.Equal(t, PhaseFinished, s.Snapshot().Phase)
	for _, snapshot := range drain(events) {
		assert.NotEqual(t, PhaseBreak, snapshot.Phase)
	}
}

func TestPhaseSequence_StrictAlternation(t *testing.T) {
	for sessions := 1; sessions <= 5; sessions++ {
		s, driver := configured(t, 60, 60, sessions)
		events := s.Subscribe(4096)
		require.NoError(t, s.Start())

		driver.TickN(10000)

		phases := phaseChanges(drain(events))
		expected := []Phase{}
		for i := 1; i <= sessions; i++ {
			expected = append(expected, PhaseWork)
			if i < sessions {
				expected = append(expected, PhaseBreak)
			}
		}
		expected = append(expected, PhaseFinished)
		assert.Equal(t, expected, phases, "sessions=%d", sessions)
	}
}

func TestTimeLeft_MonotonicWithinPhase(t *testing.T) {
	s, driver := configured(t, 120, 60, 2)
	events := s.Subscribe(4096)
	require.NoError(t, s.Start())
	driver.TickN(400)

	var previous *Snapshot
	for _, snapshot := range drain(events) {
		if previous != nil && previous.Phase == snapshot.Phase && snapshot.IsRunning && !snapshot.IsPaused {
			assert.LessOrEqual(t, snapshot.TimeLeftSeconds, previous.TimeLeftSeconds)
		}
		current := snapshot
		previous = &current
	}
}

func TestPause_FreezesTime(t *testing.T) {
	s, driver := configured(t, 60, 60, 2)
	require.NoError(t, s.Start())
	driver.TickN(10)

	s.PauseResume()
	paused := s.Snapshot()
	require.True(t, paused.IsPaused)

	assert.Equal(t, 100, driver.TickN(100), "driver keeps ticking while paused")
	frozen := s.Snapshot()
	assert.Equal(t, paused.TimeLeftSeconds, frozen.TimeLeftSeconds)
	assert.Equal(t, PhaseWork, frozen.Phase)

	s.PauseResume()
	driver.TickN(1)
	assert.Equal(t, paused.TimeLeftSeconds-1, s.Snapshot().TimeLeftSeconds)
}

func TestPause_DefersZeroCrossing(t *testing.T) {
	s, driver := configured(t, 60, 60, 2)
	require.NoError(t, s.Start())
	driver.TickN(59)
	require.Equal(t, 1, s.Snapshot().TimeLeftSeconds)

	s.PauseResume()
	driver.TickN(5)
	assert.Equal(t, PhaseWork, s.Snapshot().Phase)
	assert.Equal(t, 1, s.Snapshot().TimeLeftSeconds)

	s.PauseResume()
	driver.TickN(1)
	assert.Equal(t, PhaseBreak, s.Snapshot().Phase)
}

func TestPauseResume_TwiceIsNoop(t *testing.T) {
	s, driver := configured(t, 60, 60, 2)
	require.NoError(t, s.Start())
	driver.TickN(7)
	before := s.Snapshot()

	s.PauseResume()
	s.PauseResume()

	after := s.Snapshot()
	after.At, before.At = time.Time{}, time.Time{}
	assert.Equal(t, before, after)
}

func TestPauseResume_EmitsSnapshot(t *testing.T) {
	s, _ := configured(t, 60, 60, 2)
	require.NoError(t, s.Start())
	events := s.Subscribe(8)

	s.PauseResume()

	got := drain(events)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsPaused)
	assert.Equal(t, 60, got[0].TimeLeftSeconds)
}

func TestPauseResume_IgnoredWhenNotRunning(t *testing.T) {
	s, driver := configured(t, 60, 60, 1)
	events := s.Subscribe(8)

	s.PauseResume()
	assert.Empty(t, drain(events))
	assert.False(t, s.Snapshot().IsPaused)

	require.NoError(t, s.Start())
	driver.TickN(60)
	require.Equal(t, PhaseFinished, s.Snapshot().Phase)
	drain(events)

	s.PauseResume()
	assert.Empty(t, drain(events))
	assert.False(t, s.Snapshot().IsPaused)
}

func TestReset_FromEveryPhase(t *testing.T) {
	tests := []struct {
		name  string
		ticks int
		pause bool
	}{
		{"idle", -1, false},
		{"work", 5, false},
		{"break", 65, false},
		{"paused", 70, true},
		{"finished", 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, driver := configured(t, 60, 60, 2)
			if tt.ticks >= 0 {
				require.NoError(t, s.Start())
				driver.TickN(tt.ticks)
			}
			if tt.pause {
				s.PauseResume()
			}

			s.Reset()

			assertIdle(t, s.Snapshot())
			assert.False(t, driver.Active())
			config, ok := s.Config()
			assert.True(t, ok, "configuration survives reset")
			assert.Equal(t, 2, config.TotalSessions)
		})
	}
}

func TestReset_DiscardsInFlightTicks(t *testing.T) {
	s, driver := configured(t, 60, 60, 2)
	require.NoError(t, s.Start())
	driver.TickN(3)

	s.Reset()

	assert.False(t, driver.Tick(), "driver stopped by reset")
	s.OnTick()
	assertIdle(t, s.Snapshot())
}

func TestReset_StaleGenerationIgnored(t *testing.T) {
	s, _ := configured(t, 60, 60, 2)
	require.NoError(t, s.Start())
	stale := s.generation

	s.Reset()
	require.NoError(t, s.Start())

	assert.False(t, s.tick(stale), "a tick from the previous run is rejected")
	assert.Equal(t, 60, s.Snapshot().TimeLeftSeconds)
}

func TestReset_ConcurrentWithTicks(t *testing.T) {
	mock := clock.NewMock()
	driver := countdown.NewManual()
	s := New(driver, Options{Clock: mock})
	defer s.Close()
	require.NoError(t, s.Configure(model.SessionConfig{WorkSeconds: 60, BreakSeconds: 60, TotalSessions: 3}))
	require.NoError(t, s.Start())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.OnTick()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.Reset()
		}
	}()
	wg.Wait()

	s.Reset()
	assertIdle(t, s.Snapshot())
}

func TestSubscribe_LatestWins(t *testing.T) {
	s, driver := configured(t, 60, 60, 2)
	events := s.Subscribe(1)
	require.NoError(t, s.Start())

	driver.TickN(5)

	got := drain(events)
	require.Len(t, got, 1)
	assert.Equal(t, 55, got[0].TimeLeftSeconds)
}

func TestClose_ClosesSubscribers(t *testing.T) {
	driver := countdown.NewManual()
	s := New(driver, Options{})
	events := s.Subscribe(1)

	s.Close()
	s.Close()

	_, open := <-events
	assert.False(t, open)
	_, open = <-s.Subscribe(1)
	assert.False(t, open, "subscribing after close yields a closed channel")
}

func TestClose_RejectsLaterIntents(t *testing.T) {
	config := model.SessionConfig{WorkSeconds: 60, BreakSeconds: 60, TotalSessions: 2}
	tests := []struct {
		name   string
		intent func(*Scheduler) error
	}{
		{"start", func(s *Scheduler) error { return s.Start() }},
		{"configure", func(s *Scheduler) error { return s.Configure(config) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, driver := configured(t, 60, 60, 2)
			s.Close()

			err := tt.intent(s)

			assert.ErrorIs(t, err, ErrClosed)
			assert.False(t, driver.Active(), "no ticks are requested after Close")
			assert.Equal(t, 0, driver.Starts())
			assertIdle(t, s.Snapshot())
		})
	}
}

func TestOnTick(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*Scheduler)
		want    int
	}{
		{"running", func(s *Scheduler) {}, 57},
		{"paused", func(s *Scheduler) { s.PauseResume() }, 60},
		{"after reset", func(s *Scheduler) { s.Reset() }, 0},
		{"after close", func(s *Scheduler) { s.Close() }, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := configured(t, 60, 60, 2)
			require.NoError(t, s.Start())
			tt.prepare(s)

			driverTicks(s, 3)

			assert.Equal(t, tt.want, s.Snapshot().TimeLeftSeconds)
		})
	}
}

func TestOnTick_ConcurrentWithReset(t *testing.T) {
	s, _ := configured(t, 600, 60, 2)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Start())
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			driverTicks(s, 50)
		}()
		go func() {
			defer wg.Done()
			s.Reset()
		}()
		wg.Wait()

		assertIdle(t, s.Snapshot())
	}
}

func TestSnapshot_Progress(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     float64
	}{
		{"idle", Snapshot{Phase: PhaseIdle}, 0},
		{"start of work", Snapshot{Phase: PhaseWork, PhaseSeconds: 100, TimeLeftSeconds: 100}, 0},
		{"half way", Snapshot{Phase: PhaseBreak, PhaseSeconds: 100, TimeLeftSeconds: 50}, 0.5},
		{"finished", Snapshot{Phase: PhaseFinished}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.snapshot.Progress(), 0.0001)
		})
	}
}

func TestSchedulerError_Unwrap(t *testing.T) {
	err := error(&SchedulerError{Op: "start", Err: ErrAlreadyRunning})

	assert.True(t, errors.Is(err, ErrAlreadyRunning))
	assert.Equal(t, "start: session already running", err.Error())
}

func driverTicks(s *Scheduler, n int) {
	for i := 0; i < n; i++ {
		s.OnTick()
	}
}

func drain(events <-chan Snapshot) []Snapshot {
	var out []Snapshot
	for {
		select {
		case snapshot, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, snapshot)
		default:
			return out
		}
	}
}

func phaseChanges(snapshots []Snapshot) []Phase {
	var phases []Phase
	for _, snapshot := range snapshots {
		if len(phases) == 0 || phases[len(phases)-1] != snapshot.Phase {
			phases = append(phases, snapshot.Phase)
		}
	}
	return phases
}
