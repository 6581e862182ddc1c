package sim

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"arena/server/logging"
)

// DefaultTickInterval is the nominal cadence of the simulation, 30 steps per
// second.
const DefaultTickInterval = time.Second / 30

// ErrLoopNotIdle is returned when Start is called on a loop that already ran.
var ErrLoopNotIdle = errors.New("sim: loop already started or stopped")

// LoopState is the lifecycle state of a Loop.
type LoopState int32

const (
	LoopIdle LoopState = iota
	LoopRunning
	LoopStopped
)

func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	case LoopStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Ticker delivers periodic firings. It matches the subset of *time.Ticker
// the loop needs so tests can drive firings by hand.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type systemTicker struct {
	ticker *time.Ticker
}

func (t systemTicker) Chan() <-chan time.Time { return t.ticker.C }
func (t systemTicker) Stop()                  { t.ticker.Stop() }

// NewSystemTicker wraps time.NewTicker.
func NewSystemTicker(interval time.Duration) Ticker {
	return systemTicker{ticker: time.NewTicker(interval)}
}

// StepFunc advances the simulation by the measured elapsed time.
type StepFunc func(delta time.Duration)

// LoopConfig tunes the tick loop.
type LoopConfig struct {
	// Interval is the firing cadence. Zero selects DefaultTickInterval.
	Interval time.Duration
	// MaxDelta caps the elapsed time handed to a single step. Zero disables
	// the cap so steps always see true wall-clock elapsed time.
	MaxDelta time.Duration
	Clock    logging.Clock
	// NewTicker overrides the firing source. Nil selects NewSystemTicker.
	NewTicker func(time.Duration) Ticker
}

// LoopStepResult describes one completed step.
type LoopStepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        time.Duration
	ClampedDelta bool
	Duration     time.Duration
	Budget       time.Duration
}

// OverBudget reports whether the step ran longer than the cadence.
func (r LoopStepResult) OverBudget() bool {
	return r.Budget > 0 && r.Duration > r.Budget
}

// LoopHooks observe the loop without participating in the step.
type LoopHooks struct {
	AfterStep func(LoopStepResult)
}

// Loop fires a step at a fixed cadence on its own goroutine. A step is never
// interrupted; Stop is observed before the next firing.
type Loop struct {
	step  StepFunc
	cfg   LoopConfig
	hooks LoopHooks

	state    atomic.Int32
	ticks    atomic.Uint64
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop constructs an idle loop around step.
func NewLoop(step StepFunc, cfg LoopConfig, hooks LoopHooks) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultTickInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock{}
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewSystemTicker
	}
	return &Loop{
		step:  step,
		cfg:   cfg,
		hooks: hooks,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// State reports the current lifecycle state.
func (l *Loop) State() LoopState {
	if l == nil {
		return LoopStopped
	}
	return LoopState(l.state.Load())
}

// Ticks reports the number of completed steps.
func (l *Loop) Ticks() uint64 {
	if l == nil {
		return 0
	}
	return l.ticks.Load()
}

// Interval reports the firing cadence.
func (l *Loop) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.cfg.Interval
}

// Start moves the loop from idle to running and begins firing.
func (l *Loop) Start() error {
	if l == nil || l.step == nil {
		return errors.New("sim: loop has no step")
	}
	if !l.state.CompareAndSwap(int32(LoopIdle), int32(LoopRunning)) {
		return ErrLoopNotIdle
	}
	ticker := l.cfg.NewTicker(l.cfg.Interval)
	last := l.cfg.Clock.Now()
	go l.run(ticker, last)
	return nil
}

// RequestStop prevents any further step without waiting for an in-flight
// step. It is safe to call from inside a step.
func (l *Loop) RequestStop() {
	if l == nil {
		return
	}
	l.state.Store(int32(LoopStopped))
	l.stopOnce.Do(func() { close(l.stop) })
}

// Stop prevents any further step and waits for an in-flight step to
// complete. It must not be called from inside a step.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	wasIdle := l.state.CompareAndSwap(int32(LoopIdle), int32(LoopStopped))
	l.RequestStop()
	if wasIdle {
		return
	}
	<-l.done
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(ticker Ticker, last time.Time) {
	defer close(l.done)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.Chan():
		}
		if l.State() != LoopRunning {
			return
		}

		now := l.cfg.Clock.Now()
		delta := now.Sub(last)
		if delta <= 0 {
			continue
		}
		last = now

		clamped := false
		if l.cfg.MaxDelta > 0 && delta > l.cfg.MaxDelta {
			delta = l.cfg.MaxDelta
			clamped = true
		}

		start := l.cfg.Clock.Now()
		l.step(delta)
		tick := l.ticks.Add(1)

		if l.hooks.AfterStep != nil {
			l.hooks.AfterStep(LoopStepResult{
				Tick:         tick,
				Now:          now,
				Delta:        delta,
				ClampedDelta: clamped,
				Duration:     l.cfg.Clock.Now().Sub(start),
				Budget:       l.cfg.Interval,
			})
		}
	}
}
