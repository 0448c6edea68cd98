package countdown

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	// ErrUnknownStrategy indicates an unsupported driver strategy name.
	ErrUnknownStrategy = errors.New("unknown driver strategy")
	// ErrInvalidPeriod indicates a non-positive tick period or resolution.
	ErrInvalidPeriod = errors.New("invalid tick period")
)

// Strategy names accepted by New.
const (
	StrategyRearm = "rearm"
	StrategyLoop  = "loop"
)

// TickFunc handles one elapsed period. It returns false once no further
// ticks are wanted.
type TickFunc func() bool

// Driver delivers ticks to a handler until stopped.
type Driver interface {
	// Start begins delivering ticks to tick, replacing any previous handler.
	Start(tick TickFunc)
	// Stop halts delivery. It never waits for an in-flight tick.
	Stop()
}

// Options contains runtime options for drivers.
type Options struct {
	Period     time.Duration
	Resolution time.Duration
}

// New creates a driver for the named strategy.
func New(strategy string, clk clock.Clock, options Options) (Driver, error) {
	if clk == nil {
		clk = clock.New()
	}
	if options.Period <= 0 {
		options.Period = time.Second
	}
	if options.Resolution <= 0 {
		options.Resolution = 100 * time.Millisecond
	}
	if options.Resolution > options.Period {
		return nil, fmt.Errorf("resolution %s exceeds period %s: %w", options.Resolution, options.Period, ErrInvalidPeriod)
	}

	switch strategy {
	case StrategyRearm, "":
		return NewRearm(clk, options.Period), nil
	case StrategyLoop:
		return NewLoop(clk, options.Period, options.Resolution), nil
	default:
		return nil, fmt.Errorf("create driver %q: %w", strategy, ErrUnknownStrategy)
	}
}

// Rearm schedules a single-shot timer for every tick and re-arms it after
// the handler returns. Deadlines are anchored to the start instant.
type Rearm struct {
	mu         sync.Mutex
	clock      clock.Clock
	period     time.Duration
	timer      *clock.Timer
	generation uint64
	started    time.Time
	delivered  int64
}

// NewRearm creates a cooperative re-arming driver.
func NewRearm(clk clock.Clock, period time.Duration) *Rearm {
	return &Rearm{clock: clk, period: period}
}

// Start implements Driver.
func (driver *Rearm) Start(tick TickFunc) {
	driver.mu.Lock()
	defer driver.mu.Unlock()

	driver.stopLocked()
	driver.started = driver.clock.Now()
	driver.delivered = 0
	driver.armLocked(driver.generation, tick)
}

// Stop implements Driver.
func (driver *Rearm) Stop() {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	driver.stopLocked()
}

func (driver *Rearm) stopLocked() {
	driver.generation++
	if driver.timer != nil {
		driver.timer.Stop()
		driver.timer = nil
	}
}

func (driver *Rearm) armLocked(generation uint64, tick TickFunc) {
	deadline := driver.started.Add(time.Duration(driver.delivered+1) * driver.period)
	delay := deadline.Sub(driver.clock.Now())
	if delay < 0 {
		delay = 0
	}
	driver.timer = driver.clock.AfterFunc(delay, func() {
		driver.fire(generation, tick)
	})
}

func (driver *Rearm) fire(generation uint64, tick TickFunc) {
	driver.mu.Lock()
	if generation != driver.generation {
		driver.mu.Unlock()
		return
	}
	driver.delivered++
	driver.mu.Unlock()

	more := tick()

	driver.mu.Lock()
	defer driver.mu.Unlock()
	if generation != driver.generation {
		return
	}
	if !more {
		driver.timer = nil
		return
	}
	driver.armLocked(generation, tick)
}

// Loop runs a goroutine that wakes every resolution and delivers one tick per
// whole period elapsed since Start.
type Loop struct {
	mu         sync.Mutex
	clock      clock.Clock
	period     time.Duration
	resolution time.Duration
	stopCh     chan struct{}
}

// NewLoop creates an independent loop driver.
func NewLoop(clk clock.Clock, period, resolution time.Duration) *Loop {
	return &Loop{clock: clk, period: period, resolution: resolution}
}

// Start implements Driver.
func (driver *Loop) Start(tick TickFunc) {
	driver.mu.Lock()
	defer driver.mu.Unlock()

	driver.stopLocked()
	stopCh := make(chan struct{})
	driver.stopCh = stopCh
	go driver.run(stopCh, driver.clock.Now(), tick)
}

// Stop implements Driver.
func (driver *Loop) Stop() {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	driver.stopLocked()
}

func (driver *Loop) stopLocked() {
	if driver.stopCh != nil {
		close(driver.stopCh)
		driver.stopCh = nil
	}
}

func (driver *Loop) run(stopCh chan struct{}, started time.Time, tick TickFunc) {
	ticker := driver.clock.Ticker(driver.resolution)
	defer ticker.Stop()

	var delivered int64
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			due := int64(driver.clock.Since(started) / driver.period)
			for delivered < due {
				select {
				case <-stopCh:
					return
				default:
				}
				delivered++
				if !tick() {
					driver.release(stopCh)
					return
				}
			}
		}
	}
}

func (driver *Loop) release(stopCh chan struct{}) {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	if driver.stopCh == stopCh {
		close(stopCh)
		driver.stopCh = nil
	}
}

// Manual delivers ticks only when Tick is called. Used by tests and by
// presentation layers that own their own timing.
type Manual struct {
	mu     sync.Mutex
	tick   TickFunc
	active bool
	starts int
}

// NewManual creates a manual driver.
func NewManual() *Manual {
	return &Manual{}
}

// Start implements Driver.
func (driver *Manual) Start(tick TickFunc) {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	driver.tick = tick
	driver.active = true
	driver.starts++
}

// Stop implements Driver.
func (driver *Manual) Stop() {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	driver.active = false
}

// Tick delivers one tick. It reports false when the driver is not active.
func (driver *Manual) Tick() bool {
	driver.mu.Lock()
	if !driver.active || driver.tick == nil {
		driver.mu.Unlock()
		return false
	}
	tick := driver.tick
	driver.mu.Unlock()

	if !tick() {
		driver.mu.Lock()
		driver.active = false
		driver.mu.Unlock()
	}
	return true
}

// TickN delivers up to n ticks and returns how many were delivered.
func (driver *Manual) TickN(n int) int {
	delivered := 0
	for i := 0; i < n; i++ {
		if !driver.Tick() {
			break
		}
		delivered++
	}
	return delivered
}

// Active reports whether ticks are currently being requested.
func (driver *Manual) Active() bool {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	return driver.active
}

// Starts returns how many times Start was called.
func (driver *Manual) Starts() int {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	return driver.starts
}
