package scripting_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/gunrig/internal/game/command"
	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
	"github.com/cory-johannsen/gunrig/internal/scripting"
	"github.com/cory-johannsen/gunrig/internal/sim"
)

func rifle() *weapon.Config {
	return &weapon.Config{
		ID: "rifle-ak", Name: "AK-47", MagazineSize: 30, AmmoReserve: 90,
		FireRate: 10, ReloadTime: 2, Damage: 20, Automatic: true,
	}
}

func pistol() *weapon.Config {
	return &weapon.Config{
		ID: "pistol-9mm", Name: "Glock", MagazineSize: 15, AmmoReserve: 45,
		FireRate: 2, ReloadTime: 1, Damage: 12,
	}
}

type fixture struct {
	m      *rig.Manager
	loop   *sim.Loop
	reg    *weapon.Registry
	driver *scripting.Driver
}

func newFixture(t *testing.T, logger *zap.Logger, opts ...scripting.DriverOption) *fixture {
	t.Helper()
	reg, err := weapon.NewRegistryFrom([]*weapon.Config{rifle(), pistol()})
	require.NoError(t, err)
	m := rig.NewManager(rig.WithLogger(logger))
	t.Cleanup(m.Close)
	_, err = m.Equip(rifle(), rig.Primary1)
	require.NoError(t, err)
	loop := sim.NewLoop(m, 250*time.Millisecond, logger)
	opts = append([]scripting.DriverOption{scripting.WithLogger(logger)}, opts...)
	return &fixture{m: m, loop: loop, reg: reg, driver: scripting.NewDriver(loop, m, reg, opts...)}
}

func (f *fixture) run(t *testing.T, src string) error {
	t.Helper()
	return f.driver.RunString(context.Background(), t.Name(), src)
}

func TestDriver_FireAndInfo(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		assert(rig.active() == "primary1")
		assert(rig.fire() == "fired")
		assert(rig.fire() == "on cooldown")
		local i = rig.info("primary1")
		assert(i.name == "AK-47")
		assert(i.magazine == 29)
		assert(i.reserve == 90)
		assert(i.active == true)
		assert(rig.info("primary2") == nil)
	`))
	info, ok := f.m.Info(rig.Primary1)
	require.True(t, ok)
	assert.Equal(t, 29, info.Magazine)
}

func TestDriver_ReloadCompletesAfterTicks(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		rig.fire()
		assert(rig.reload() == "reload started")
		assert(rig.info("primary1").state == "reloading")
		assert(rig.tick(2) == 8)
		assert(rig.now() == 2)
		local i = rig.info("primary1")
		assert(i.state == "idle")
		assert(i.magazine == 30)
		assert(i.reserve == 89)
	`))
	assert.Equal(t, uint64(8), f.loop.Ticks())
}

func TestDriver_TickRoundsUpAndIgnoresNonPositive(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		assert(rig.tick(0.1) == 1)
		assert(rig.tick(0) == 0)
		assert(rig.tick(-3) == 0)
	`))
	assert.Equal(t, uint64(1), f.loop.Ticks())
}

func TestDriver_EquipSwitchAndNext(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		local id = rig.equip("pistol-9mm", "secondary")
		assert(type(id) == "string" and #id > 0)
		assert(rig.switch("secondary") == true)
		assert(rig.active() == "secondary")
		assert(rig.next() == "primary1")
		rig.equip("rifle-ak", "primary2")
		assert(rig.next() == "primary2")
	`))
	_, slot, ok := f.m.Active()
	require.True(t, ok)
	assert.Equal(t, rig.Primary2, slot)
}

func TestDriver_ErrorsReturnNilAndMessage(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		local function fails(ok, msg)
			assert(ok == nil, "expected nil")
			assert(type(msg) == "string" and #msg > 0, "expected a message")
		end
		fails(rig.switch("holster"))
		fails(rig.switch("secondary"))
		fails(rig.equip("railgun", "primary2"))
		fails(rig.equip("pistol-9mm", "holster"))
		fails(rig.add_ammo("primary1", -5))
		fails(rig.add_ammo("secondary", 5))
		fails(rig.command("status"))
		assert(rig.add_ammo("primary1", 10) == true)
		assert(rig.info("primary1").reserve == 100)
	`))
}

func TestDriver_NextWithoutPrimaryFails(t *testing.T) {
	reg := weapon.NewRegistry()
	m := rig.NewManager()
	t.Cleanup(m.Close)
	loop := sim.NewLoop(m, 100*time.Millisecond, nil)
	d := scripting.NewDriver(loop, m, reg)
	require.NoError(t, d.RunString(context.Background(), "empty", `
		local slot, msg = rig.next()
		assert(slot == nil and msg ~= nil)
		assert(rig.active() == nil)
		assert(rig.fire() == "no weapon")
		assert(#rig.weapons() == 0)
	`))
}

func TestDriver_HoldAutoFiresEachTick(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		rig.hold()
		rig.tick(0.75)
		rig.release()
		rig.tick(0.5)
		assert(rig.info("primary1").magazine == 27)
	`))
	assert.False(t, f.loop.Held())
}

func TestDriver_SlotsAndWeapons(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		local s = rig.slots()
		assert(#s == 3 and s[1] == "primary1" and s[3] == "secondary")
		local w = rig.weapons()
		assert(#w == 2 and w[1] == "pistol-9mm" and w[2] == "rifle-ak")
	`))
}

func TestDriver_CommandUsesDispatcher(t *testing.T) {
	logger := zaptest.NewLogger(t)
	reg, err := weapon.NewRegistryFrom([]*weapon.Config{rifle()})
	require.NoError(t, err)
	m := rig.NewManager()
	t.Cleanup(m.Close)
	loop := sim.NewLoop(m, 100*time.Millisecond, logger)
	disp := command.NewDispatcher(m, reg, command.WithTrigger(loop))
	d := scripting.NewDriver(loop, m, reg, scripting.WithDispatcher(disp), scripting.WithLogger(logger))

	require.NoError(t, d.RunString(context.Background(), "cmd", `
		local out = rig.command("equip rifle-ak primary1")
		assert(string.find(out, "AK-47", 1, true), out)
		assert(string.find(rig.command("status"), "AK-47", 1, true))
		assert(rig.command("hold") == "Trigger held.")
	`))
	assert.True(t, loop.Held())
}

func TestDriver_LogTableWritesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(t, zap.New(core))
	require.NoError(t, f.run(t, `log.info("hello from lua"); log.warn("careful")`))

	entries := logs.FilterMessage("hello from lua").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, t.Name(), entries[0].ContextMap()["script"])
	assert.Equal(t, 1, logs.FilterMessage("careful").FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("script finished").Len())
}

func TestDriver_RuntimeErrorIsReturned(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	err := f.run(t, `error("boom")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestDriver_InstructionLimit(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t), scripting.WithInstructionLimit(100))
	assert.Error(t, f.run(t, `while true do end`))
	// Each run gets a fresh budget.
	assert.NoError(t, f.run(t, `local x = 1`))
}

func TestDriver_CancelledContextStopsScript(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, f.driver.RunString(ctx, "cancelled", `while true do end`))
}

func TestDriver_RunFile(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "fire.lua")
	require.NoError(t, os.WriteFile(path, []byte(`rig.fire()`), 0o644))
	require.NoError(t, f.driver.RunFile(context.Background(), path))

	info, _ := f.m.Info(rig.Primary1)
	assert.Equal(t, 29, info.Magazine)
	assert.Error(t, f.driver.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")))
}

func TestDriver_TickStopsWhenContextCancelled(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Queued work runs inside the first tick, so the run is cancelled mid-call.
	require.NoError(t, f.loop.Submit(cancel))

	err := f.driver.RunString(ctx, "cancel-mid-tick", `rig.tick(100000)`)
	require.Error(t, err)
	assert.Equal(t, uint64(1), f.loop.Ticks())
}

func TestDriver_TickChargedAgainstInstructionLimit(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t), scripting.WithInstructionLimit(1000))
	// 1250s at 250ms per tick is 5000 ticks.
	assert.Error(t, f.run(t, `rig.tick(1250)`))
	assert.Less(t, f.loop.Ticks(), uint64(1000))
}

func TestDriver_TickRejectsUnboundedArguments(t *testing.T) {
	f := newFixture(t, zaptest.NewLogger(t))
	require.NoError(t, f.run(t, `
		assert(not pcall(rig.tick, math.huge))
		assert(not pcall(rig.tick, -math.huge))
		assert(not pcall(rig.tick, 0/0))
		assert(not pcall(rig.tick, 1e12))
	`))
	assert.Equal(t, uint64(0), f.loop.Ticks())
}
