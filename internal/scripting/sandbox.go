// Package scripting runs Lua scripts that drive a weapon rig inside a
// sandboxed GopherLua VM.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// script run when no override is configured.
const DefaultInstructionLimit = 1_000_000

// budgetContext meters a script run. The VM polls Done before every opcode
// and rig.tick polls it before every loop tick; each poll spends one unit,
// and the run is cancelled once the budget is gone.
type budgetContext struct {
	context.Context
	stop context.CancelFunc
	left atomic.Int64
}

// Done spends one unit of budget and returns the run's done channel.
func (b *budgetContext) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.stop()
	}
	return b.Context.Done()
}

// withBudget derives a run context from parent holding units of budget.
//
// Precondition: units > 0.
func withBudget(parent context.Context, units int) (context.Context, context.CancelFunc) {
	ctx, stop := context.WithCancel(parent)
	b := &budgetContext{Context: ctx, stop: stop}
	b.left.Store(int64(units))
	return b, stop
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return DefaultInstructionLimit
	}
	return limit
}

// NewSandboxedState returns a Lua state that can only compute: the base,
// table, string and math libraries are open, the loaders and collectgarbage
// are removed, and the state stops after instLimit budget units (0 selects
// DefaultInstructionLimit).
//
// Postcondition: the caller calls cancel and then L.Close().
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	return newSandbox(context.Background(), instLimit)
}

// newSandbox is NewSandboxedState with the limit context derived from ctx,
// so cancelling ctx also halts the VM.
func newSandbox(ctx context.Context, instLimit int) (*lua.LState, context.CancelFunc) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	cctx, cancel := withBudget(ctx, effectiveLimit(instLimit))
	L.SetContext(cctx)
	return L, cancel
}
