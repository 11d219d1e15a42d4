package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
)

// register installs the rig and log tables.
func (d *Driver) register(L *lua.LState, logger *zap.Logger) {
	rigTbl := L.NewTable()
	L.SetFuncs(rigTbl, map[string]lua.LGFunction{
		"fire":     d.luaFire,
		"reload":   d.luaReload,
		"switch":   d.luaSwitch,
		"next":     d.luaNext,
		"equip":    d.luaEquip,
		"add_ammo": d.luaAddAmmo,
		"tick":     d.luaTick,
		"info":     d.luaInfo,
		"active":   d.luaActive,
		"slots":    d.luaSlots,
		"weapons":  d.luaWeapons,
		"hold":     d.luaHold,
		"release":  d.luaRelease,
		"now":      d.luaNow,
		"command":  d.luaCommand,
	})
	L.SetGlobal("rig", rigTbl)

	logTbl := L.NewTable()
	logFn := func(emit func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			emit(L.CheckString(1))
			return 0
		}
	}
	L.SetFuncs(logTbl, map[string]lua.LGFunction{
		"debug": logFn(logger.Debug),
		"info":  logFn(logger.Info),
		"warn":  logFn(logger.Warn),
		"error": logFn(logger.Error),
	})
	L.SetGlobal("log", logTbl)
}

// fail pushes the nil, message pair scripts receive on error.
func fail(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

func (d *Driver) luaFire(L *lua.LState) int {
	L.Push(lua.LString(d.m.FireActive().String()))
	return 1
}

func (d *Driver) luaReload(L *lua.LState) int {
	L.Push(lua.LString(d.m.StartReloadActive().String()))
	return 1
}

func (d *Driver) luaSwitch(L *lua.LState) int {
	if err := d.m.SetActive(rig.Slot(L.CheckString(1))); err != nil {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (d *Driver) luaNext(L *lua.LState) int {
	slot, err := d.m.SwitchToNextPrimary()
	if err != nil {
		return fail(L, err)
	}
	L.Push(lua.LString(slot))
	return 1
}

func (d *Driver) luaEquip(L *lua.LState) int {
	id := L.CheckString(1)
	slot := rig.Slot(L.CheckString(2))
	cfg, ok := d.weapons.Get(id)
	if !ok {
		return fail(L, fmt.Errorf("%w: %q", rig.ErrUnknownWeapon, id))
	}
	g, err := d.m.Equip(cfg, slot)
	if err != nil {
		return fail(L, err)
	}
	L.Push(lua.LString(g.ID()))
	return 1
}

func (d *Driver) luaAddAmmo(L *lua.LState) int {
	slot := rig.Slot(L.CheckString(1))
	if err := d.m.AddAmmo(slot, L.CheckInt(2)); err != nil {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// MaxTickSteps bounds the loop ticks one rig.tick call may run.
const MaxTickSteps = 1_000_000

// luaTick advances simulated time by whole loop ticks, rounding up, and
// returns the number of ticks run. Every tick is charged against the run's
// instruction budget and stops the script once the run context is done.
func (d *Driver) luaTick(L *lua.LState) int {
	seconds := float64(L.CheckNumber(1))
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		L.ArgError(1, "seconds must be finite")
		return 0
	}
	steps := 0
	if seconds > 0 {
		n := math.Ceil(seconds / d.loop.Interval().Seconds())
		if n > MaxTickSteps {
			L.ArgError(1, fmt.Sprintf("at most %d ticks per call, got %.0f", MaxTickSteps, n))
			return 0
		}
		steps = int(n)
	}
	ctx := L.Context()
	for i := 0; i < steps; i++ {
		if ctx != nil {
			select {
			case <-ctx.Done():
				L.RaiseError("rig.tick interrupted after %d ticks: %v", i, ctx.Err())
				return 0
			default:
			}
		}
		d.loop.Step()
	}
	L.Push(lua.LNumber(steps))
	return 1
}

func (d *Driver) luaInfo(L *lua.LState) int {
	slot := rig.Slot(L.CheckString(1))
	info, ok := d.m.Info(slot)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	_, active, hasActive := d.m.Active()
	t := L.NewTable()
	t.RawSetString("name", lua.LString(info.Name))
	t.RawSetString("magazine", lua.LNumber(info.Magazine))
	t.RawSetString("reserve", lua.LNumber(info.Reserve))
	t.RawSetString("state", lua.LString(info.State.String()))
	t.RawSetString("active", lua.LBool(hasActive && active == slot))
	L.Push(t)
	return 1
}

func (d *Driver) luaActive(L *lua.LState) int {
	_, slot, ok := d.m.Active()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(slot))
	return 1
}

func (d *Driver) luaSlots(L *lua.LState) int {
	t := L.NewTable()
	for _, s := range d.m.Slots() {
		t.Append(lua.LString(s))
	}
	L.Push(t)
	return 1
}

func (d *Driver) luaWeapons(L *lua.LState) int {
	t := L.NewTable()
	for _, id := range d.weapons.IDs() {
		t.Append(lua.LString(id))
	}
	L.Push(t)
	return 1
}

func (d *Driver) luaHold(L *lua.LState) int {
	d.loop.Hold()
	return 0
}

func (d *Driver) luaRelease(L *lua.LState) int {
	d.loop.Release()
	return 0
}

func (d *Driver) luaNow(L *lua.LState) int {
	L.Push(lua.LNumber(d.m.Scheduler().Now().Seconds()))
	return 1
}

func (d *Driver) luaCommand(L *lua.LState) int {
	line := L.CheckString(1)
	if d.dispatch == nil {
		return fail(L, fmt.Errorf("text commands are unavailable"))
	}
	L.Push(lua.LString(d.dispatch.Execute(line)))
	return 1
}
