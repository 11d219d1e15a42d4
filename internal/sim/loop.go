// Package sim drives a weapon rig from a single goroutine at a fixed tick.
package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
)

// ErrStopped is returned when work is submitted to a stopped Loop.
var ErrStopped = errors.New("sim: loop stopped")

const queueSize = 64

// Loop owns a rig.Manager and is the only goroutine that touches it while
// running. Other goroutines reach the rig through Submit and Do, and control
// the trigger through Hold and Release.
//
// Invariant: queued work, trigger handling and Manager.Tick run sequentially
// on the loop goroutine, in that order, once per tick.
type Loop struct {
	interval time.Duration
	m        *rig.Manager
	logger   *zap.Logger

	queue   chan func()
	held    atomic.Bool
	pressed atomic.Bool
	ticks   atomic.Uint64

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// NewLoop returns a Loop that advances m by interval on every tick.
//
// Precondition: m must not be nil; interval must be > 0.
func NewLoop(m *rig.Manager, interval time.Duration, logger *zap.Logger) *Loop {
	if interval <= 0 {
		panic("sim.NewLoop: interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		interval: interval,
		m:        m,
		logger:   logger,
		queue:    make(chan func(), queueSize),
		stopped:  make(chan struct{}),
	}
}

// Interval returns the simulated time advanced per tick.
func (l *Loop) Interval() time.Duration { return l.interval }

// Ticks returns the number of ticks run so far.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Submit queues fn to run on the loop goroutine at the start of a tick.
//
// Postcondition: returns ErrStopped, without queueing, once the loop has
// stopped.
func (l *Loop) Submit(fn func()) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.stopped:
		return ErrStopped
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hold presses the trigger. The next tick fires once; automatic weapons
// keep firing every tick until Release.
func (l *Loop) Hold() {
	if !l.held.Swap(true) {
		l.pressed.Store(true)
	}
}

// Release lets go of the trigger.
func (l *Loop) Release() { l.held.Store(false) }

// Held reports whether the trigger is down.
func (l *Loop) Held() bool { return l.held.Load() }

// Step runs one tick on the calling goroutine. Run calls Step on its own
// goroutine; tests and the script driver may call it directly.
func (l *Loop) Step() {
	l.drain()
	l.trigger()
	l.m.Tick(l.interval)
	l.ticks.Add(1)
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.queue:
			fn()
		default:
			return
		}
	}
}

func (l *Loop) trigger() {
	pressed := l.pressed.Swap(false)
	if !pressed && !l.held.Load() {
		return
	}
	g, _, ok := l.m.Active()
	if !ok {
		return
	}
	if pressed || (g.Config() != nil && g.Config().Automatic) {
		l.m.FireActive()
	}
}

// Run ticks until ctx is cancelled or Stop is called.
//
// Postcondition: the loop is stopped and later Submit calls fail.
func (l *Loop) Run(ctx context.Context) error {
	select {
	case <-l.stopped:
		return nil
	default:
	}
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()
	defer l.once.Do(func() { close(l.stopped) })

	l.logger.Info("simulation loop started", zap.Duration("interval", l.interval))
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.drain()
			l.logger.Info("simulation loop stopped", zap.Uint64("ticks", l.ticks.Load()))
			return nil
		case <-ticker.C:
			l.Step()
		}
	}
}

// Start runs the loop until Stop. It satisfies server.Service.
func (l *Loop) Start() error { return l.Run(context.Background()) }

// Stop cancels a running loop and marks it stopped.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
		return
	}
	l.once.Do(func() { close(l.stopped) })
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.stopped }
