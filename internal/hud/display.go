// Package hud renders weapon rig state as coloured terminal text. It is a
// pure listener: it never calls back into the rig except to read snapshots
// when attaching.
package hud

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/signal"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
)

// Option configures a Display.
type Option func(*Display)

// WithColor enables or disables ANSI colouring. Colour is on by default.
func WithColor(on bool) Option {
	return func(d *Display) { d.color = on }
}

// Display keeps the latest snapshot per slot and echoes updates to a writer.
type Display struct {
	out    io.Writer
	logger *zap.Logger
	color  bool

	m         *rig.Manager
	handles   []signal.Handle
	slots     []rig.Slot
	infos     map[rig.Slot]weapon.Info
	active    rig.Slot
	hasActive bool
}

// New returns a detached Display writing to out.
//
// Precondition: out must not be nil.
func New(out io.Writer, logger *zap.Logger, opts ...Option) *Display {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Display{out: out, logger: logger, color: true, infos: make(map[rig.Slot]weapon.Info)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attach subscribes to m, detaching from any previous rig, and seeds the
// display from m's current slots.
//
// Postcondition: every later WeaponInfoUpdated and ActiveWeaponChanged on m
// updates the display until Detach.
func (d *Display) Attach(m *rig.Manager) {
	d.Detach()
	d.m = m
	d.slots = m.Slots()
	d.infos = make(map[rig.Slot]weapon.Info, len(d.slots))
	for _, s := range d.slots {
		if info, ok := m.Info(s); ok {
			d.infos[s] = info
		}
	}
	_, d.active, d.hasActive = m.Active()
	d.handles = []signal.Handle{
		m.OnWeaponEquipped(d.onEquipped),
		m.OnActiveWeaponChanged(d.onActiveChanged),
		m.OnWeaponInfoUpdated(d.onInfoUpdated),
	}
}

// Detach removes every subscription. Safe to call when not attached.
func (d *Display) Detach() {
	if d.m == nil {
		return
	}
	for _, h := range d.handles {
		d.m.Unsubscribe(h)
	}
	d.handles = nil
	d.m = nil
}

// Attached reports whether the display is subscribed to a rig.
func (d *Display) Attached() bool { return d.m != nil }

// Latest returns the last snapshot seen for slot.
func (d *Display) Latest(slot rig.Slot) (weapon.Info, bool) {
	info, ok := d.infos[slot]
	return info, ok
}

func (d *Display) onEquipped(e rig.GunEvent) {
	d.infos[e.Slot] = e.Gun.Info()
}

func (d *Display) onActiveChanged(e rig.GunEvent) {
	d.active = e.Slot
	d.hasActive = true
	d.logger.Debug("hud active weapon", zap.String("slot", string(e.Slot)), zap.String("weapon", e.Gun.Info().Name))
	fmt.Fprintln(d.out, d.paint(Bold+Cyan, fmt.Sprintf("> %s: %s", e.Slot, e.Gun.Info().Name)))
}

func (d *Display) onInfoUpdated(e rig.InfoEvent) {
	d.infos[e.Slot] = e.Info
	d.logger.Debug("hud weapon info",
		zap.String("slot", string(e.Slot)),
		zap.String("weapon", e.Info.Name),
		zap.Int("magazine", e.Info.Magazine),
		zap.Int("reserve", e.Info.Reserve),
		zap.Stringer("state", e.Info.State))
	fmt.Fprintln(d.out, d.Line(e.Slot, e.Info))
}

// Line formats one slot's snapshot.
func (d *Display) Line(slot rig.Slot, info weapon.Info) string {
	ammoColor := Green
	switch {
	case info.Magazine == 0 && info.Reserve == 0:
		ammoColor = BrightRed
	case info.Magazine == 0:
		ammoColor = Red
	case info.State == weapon.StateReloading:
		ammoColor = Yellow
	}
	return fmt.Sprintf("[%s] %s %s %s",
		slot,
		info.Name,
		d.paint(ammoColor, fmt.Sprintf("%d/%d", info.Magazine, info.Reserve)),
		d.paint(stateColor(info.State), info.State.String()))
}

// Render returns a status block with one row per slot, marking the active
// slot with '*' and empty slots with "-".
func (d *Display) Render() string {
	var b strings.Builder
	for _, s := range d.slots {
		marker := " "
		if d.hasActive && d.active == s {
			marker = "*"
		}
		info, ok := d.infos[s]
		if !ok {
			fmt.Fprintf(&b, "%s [%s] %s\n", marker, s, d.paint(Dim, "-"))
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", marker, d.Line(s, info))
	}
	return b.String()
}

func (d *Display) paint(color, text string) string {
	if !d.color {
		return text
	}
	return Colorize(color, text)
}

func stateColor(s weapon.State) string {
	switch s {
	case weapon.StateFiring:
		return Yellow
	case weapon.StateReloading:
		return Red
	default:
		return Green
	}
}
