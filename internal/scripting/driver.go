package scripting

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunrig/internal/game/command"
	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
	"github.com/cory-johannsen/gunrig/internal/sim"
)

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithInstructionLimit caps the opcodes per run; 0 selects
// DefaultInstructionLimit.
func WithInstructionLimit(n int) DriverOption {
	return func(d *Driver) { d.instLimit = n }
}

// WithDispatcher exposes rig.command(line) backed by disp.
func WithDispatcher(disp *command.Dispatcher) DriverOption {
	return func(d *Driver) { d.dispatch = disp }
}

// WithLogger sets the logger used for run logs and the script's log table.
func WithLogger(l *zap.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// Driver runs Lua scripts against a rig. Scripts advance simulated time
// themselves through rig.tick, which steps loop on the calling goroutine, so
// the loop must not be running concurrently.
type Driver struct {
	loop      *sim.Loop
	m         *rig.Manager
	weapons   *weapon.Registry
	dispatch  *command.Dispatcher
	logger    *zap.Logger
	instLimit int
}

// NewDriver returns a Driver over m, stepped through loop.
//
// Precondition: loop, m and weapons must not be nil; loop must drive m.
func NewDriver(loop *sim.Loop, m *rig.Manager, weapons *weapon.Registry, opts ...DriverOption) *Driver {
	d := &Driver{
		loop:    loop,
		m:       m,
		weapons: weapons,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunFile executes the Lua file at path.
//
// Postcondition: returns a wrapped error on read, compile or runtime
// failure, including an exceeded instruction limit or a cancelled ctx.
func (d *Driver) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script %q: %w", path, err)
	}
	return d.RunString(ctx, path, string(src))
}

// RunString executes src in a fresh sandbox. name labels logs and errors.
func (d *Driver) RunString(ctx context.Context, name, src string) error {
	L, cancel := newSandbox(ctx, d.instLimit)
	defer L.Close()
	defer cancel()

	logger := d.logger.With(zap.String("script", name))
	d.register(L, logger)

	start := time.Now()
	ticksBefore := d.loop.Ticks()
	logger.Info("script started")
	if err := L.DoString(src); err != nil {
		logger.Warn("script failed", zap.Error(err))
		return fmt.Errorf("running script %q: %w", name, err)
	}
	logger.Info("script finished",
		zap.Uint64("ticks", d.loop.Ticks()-ticksBefore),
		zap.Duration("sim_time", d.m.Scheduler().Now()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
