package sim

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (t *manualTicker) Chan() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()                  { t.once.Do(func() { close(t.stopped) }) }

func (t *manualTicker) fire(tb testing.TB) {
	tb.Helper()
	select {
	case t.ch <- time.Time{}:
	case <-time.After(time.Second):
		tb.Fatalf("loop did not accept firing")
	}
}

type loopHarness struct {
	clock  *fakeClock
	ticker *manualTicker
	deltas chan time.Duration
	loop   *Loop
}

func newLoopHarness(cfg LoopConfig, hooks LoopHooks) *loopHarness {
	h := &loopHarness{
		clock:  newFakeClock(),
		ticker: newManualTicker(),
		deltas: make(chan time.Duration, 16),
	}
	cfg.Clock = h.clock
	cfg.NewTicker = func(time.Duration) Ticker { return h.ticker }
	h.loop = NewLoop(func(delta time.Duration) { h.deltas <- delta }, cfg, hooks)
	return h
}

func (h *loopHarness) expectDelta(t *testing.T, want time.Duration) {
	t.Helper()
	select {
	case got := <-h.deltas:
		if got != want {
			t.Fatalf("expected delta %s, got %s", want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a step with delta %s", want)
	}
}

func TestLoopPassesMeasuredElapsedTime(t *testing.T) {
	h := newLoopHarness(LoopConfig{}, LoopHooks{})
	if err := h.loop.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.loop.Stop()

	for _, elapsed := range []time.Duration{33 * time.Millisecond, 40 * time.Millisecond, 20 * time.Millisecond} {
		h.clock.Advance(elapsed)
		h.ticker.fire(t)
		h.expectDelta(t, elapsed)
	}
	if h.loop.State() != LoopRunning {
		t.Fatalf("expected running state, got %s", h.loop.State())
	}
}

func TestLoopSkipsZeroElapsedFirings(t *testing.T) {
	h := newLoopHarness(LoopConfig{}, LoopHooks{})
	if err := h.loop.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.loop.Stop()

	h.ticker.fire(t)
	h.clock.Advance(10 * time.Millisecond)
	h.ticker.fire(t)
	h.expectDelta(t, 10*time.Millisecond)
	select {
	case extra := <-h.deltas:
		t.Fatalf("unexpected extra step with delta %s", extra)
	default:
	}
}

func TestLoopClampsWhenConfigured(t *testing.T) {
	results := make(chan LoopStepResult, 1)
	h := newLoopHarness(LoopConfig{MaxDelta: 100 * time.Millisecond}, LoopHooks{
		AfterStep: func(r LoopStepResult) { results <- r },
	})
	if err := h.loop.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.loop.Stop()

	h.clock.Advance(500 * time.Millisecond)
	h.ticker.fire(t)
	h.expectDelta(t, 100*time.Millisecond)
	result := <-results
	if !result.ClampedDelta || result.Tick != 1 || result.Budget != DefaultTickInterval {
		t.Fatalf("unexpected step result %+v", result)
	}
}

func TestLoopStopPreventsFurtherSteps(t *testing.T) {
	h := newLoopHarness(LoopConfig{}, LoopHooks{})
	if err := h.loop.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clock.Advance(time.Millisecond)
	h.ticker.fire(t)
	h.expectDelta(t, time.Millisecond)

	h.loop.Stop()
	if h.loop.State() != LoopStopped {
		t.Fatalf("expected stopped state, got %s", h.loop.State())
	}
	select {
	case <-h.ticker.stopped:
	default:
		t.Fatalf("expected ticker to be released")
	}
	select {
	case h.ticker.ch <- time.Time{}:
		t.Fatalf("stopped loop accepted a firing")
	case <-time.After(20 * time.Millisecond):
	}
	if h.loop.Ticks() != 1 {
		t.Fatalf("expected exactly one step, got %d", h.loop.Ticks())
	}
	if err := h.loop.Start(); err != ErrLoopNotIdle {
		t.Fatalf("expected ErrLoopNotIdle on restart, got %v", err)
	}
}

func TestLoopStopWaitsForInFlightStep(t *testing.T) {
	clock := newFakeClock()
	ticker := newManualTicker()
	entered := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	loop := NewLoop(func(time.Duration) {
		close(entered)
		<-release
		close(finished)
	}, LoopConfig{Clock: clock, NewTicker: func(time.Duration) Ticker { return ticker }}, LoopHooks{})
	if err := loop.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	clock.Advance(time.Millisecond)
	ticker.fire(t)
	<-entered

	stopped := make(chan struct{})
	go func() {
		loop.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatalf("stop returned while a step was in flight")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-stopped
	select {
	case <-finished:
	default:
		t.Fatalf("step was interrupted")
	}
}

func TestLoopStopBeforeStart(t *testing.T) {
	loop := NewLoop(func(time.Duration) {}, LoopConfig{}, LoopHooks{})
	loop.Stop()
	if loop.State() != LoopStopped {
		t.Fatalf("expected stopped state")
	}
	if err := loop.Start(); err != ErrLoopNotIdle {
		t.Fatalf("expected ErrLoopNotIdle, got %v", err)
	}
}

func TestLoopRequestStopFromInsideStep(t *testing.T) {
	clock := newFakeClock()
	ticker := newManualTicker()
	var loop *Loop
	loop = NewLoop(func(time.Duration) { loop.RequestStop() }, LoopConfig{
		Clock:     clock,
		NewTicker: func(time.Duration) Ticker { return ticker },
	}, LoopHooks{})
	if err := loop.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(time.Millisecond)
	ticker.fire(t)
	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatalf("loop did not exit after in-step stop request")
	}
	if loop.Ticks() != 1 {
		t.Fatalf("expected one step, got %d", loop.Ticks())
	}
}
