// Package rig orchestrates the weapons an actor carries: slot occupancy,
// the single active weapon, and slot-annotated relays of each Gun's events.
package rig

import (
	"time"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gunrig/internal/game/sched"
	"github.com/cory-johannsen/gunrig/internal/game/signal"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
)

// Event kinds emitted by a Manager.
const (
	KindWeaponEquipped      signal.Kind = "rig.weapon_equipped"
	KindActiveWeaponChanged signal.Kind = "rig.active_weapon_changed"
	KindWeaponInfoUpdated   signal.Kind = "rig.weapon_info_updated"
	KindWeaponFired         signal.Kind = "rig.weapon_fired"
)

// GunEvent reports a Gun together with the slot holding it.
type GunEvent struct {
	Gun  *weapon.Gun
	Slot Slot
}

// InfoEvent reports a weapon snapshot for a slot.
type InfoEvent struct {
	Info weapon.Info
	Slot Slot
}

// ShotEvent reports a shot fired from a slot.
type ShotEvent struct {
	Shot weapon.Shot
	Slot Slot
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithSlots replaces the default slot layout.
//
// Precondition: slots is non-empty with unique, non-empty names (NewManager
// panics otherwise).
func WithSlots(slots ...Slot) Option {
	return func(m *Manager) { m.slots = append([]Slot(nil), slots...) }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMount sets the transform handed to every Gun the Manager builds.
func WithMount(mount weapon.Mount) Option {
	return func(m *Manager) { m.mount = mount }
}

// Manager owns the Guns of one actor.
//
// Invariants:
//   - each Gun is held by exactly one slot and slotOf mirrors occupant
//   - at most one occupant is Active(), and it is the one in the active slot
//
// Manager is not safe for concurrent use; drive it from one goroutine.
type Manager struct {
	logger *zap.Logger
	sched  *sched.Scheduler
	mount  weapon.Mount

	slots     []Slot
	known     map[Slot]bool
	occupant  map[Slot]*weapon.Gun
	slotOf    map[*weapon.Gun]Slot
	handles   map[*weapon.Gun][]signal.Handle
	active    Slot
	hasActive bool

	equipped      *signal.Signal[GunEvent]
	activeChanged *signal.Signal[GunEvent]
	infoUpdated   *signal.Signal[InfoEvent]
	fired         *signal.Signal[ShotEvent]
}

// NewManager returns an empty rig with its own reload scheduler.
//
// Postcondition: every slot is empty and no slot is active.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger:        zap.NewNop(),
		sched:         sched.New(),
		mount:         weapon.OriginMount,
		slots:         DefaultSlots(),
		occupant:      make(map[Slot]*weapon.Gun),
		slotOf:        make(map[*weapon.Gun]Slot),
		handles:       make(map[*weapon.Gun][]signal.Handle),
		equipped:      signal.New[GunEvent](KindWeaponEquipped),
		activeChanged: signal.New[GunEvent](KindActiveWeaponChanged),
		infoUpdated:   signal.New[InfoEvent](KindWeaponInfoUpdated),
		fired:         signal.New[ShotEvent](KindWeaponFired),
	}
	for _, opt := range opts {
		opt(m)
	}
	names := make([]string, len(m.slots))
	for i, s := range m.slots {
		names[i] = string(s)
	}
	if _, err := ParseSlots(names); err != nil {
		panic("rig: NewManager: " + err.Error())
	}
	m.known = make(map[Slot]bool, len(m.slots))
	for _, s := range m.slots {
		m.known[s] = true
	}
	return m
}

// Slots returns the slot layout in display order.
func (m *Manager) Slots() []Slot {
	return append([]Slot(nil), m.slots...)
}

// Scheduler returns the simulated-time scheduler driving reloads.
func (m *Manager) Scheduler() *sched.Scheduler { return m.sched }

// Weapon returns the occupant of slot, or nil when empty or unknown.
func (m *Manager) Weapon(slot Slot) *weapon.Gun { return m.occupant[slot] }

// Active returns the live weapon and its slot.
//
// Postcondition: ok is false when no slot is active.
func (m *Manager) Active() (*weapon.Gun, Slot, bool) {
	if !m.hasActive {
		return nil, "", false
	}
	return m.occupant[m.active], m.active, true
}

// Info returns the snapshot of slot's occupant.
func (m *Manager) Info(slot Slot) (weapon.Info, bool) {
	g := m.occupant[slot]
	if g == nil {
		return weapon.Info{}, false
	}
	return g.Info(), true
}

// SlotOf returns the slot holding g.
func (m *Manager) SlotOf(g *weapon.Gun) (Slot, bool) {
	s, ok := m.slotOf[g]
	return s, ok
}

// OnWeaponEquipped subscribes fn to equips.
func (m *Manager) OnWeaponEquipped(fn func(GunEvent)) signal.Handle {
	return m.equipped.Subscribe(fn)
}

// OnActiveWeaponChanged subscribes fn to active weapon switches.
func (m *Manager) OnActiveWeaponChanged(fn func(GunEvent)) signal.Handle {
	return m.activeChanged.Subscribe(fn)
}

// OnWeaponInfoUpdated subscribes fn to slot-annotated snapshots.
func (m *Manager) OnWeaponInfoUpdated(fn func(InfoEvent)) signal.Handle {
	return m.infoUpdated.Subscribe(fn)
}

// OnWeaponFired subscribes fn to slot-annotated shots.
func (m *Manager) OnWeaponFired(fn func(ShotEvent)) signal.Handle {
	return m.fired.Subscribe(fn)
}

// Unsubscribe removes a subscription made through any On* method.
func (m *Manager) Unsubscribe(h signal.Handle) bool {
	switch h.Kind() {
	case KindWeaponEquipped:
		return m.equipped.Unsubscribe(h)
	case KindActiveWeaponChanged:
		return m.activeChanged.Unsubscribe(h)
	case KindWeaponInfoUpdated:
		return m.infoUpdated.Unsubscribe(h)
	case KindWeaponFired:
		return m.fired.Unsubscribe(h)
	default:
		return false
	}
}

// Equip builds a Gun from cfg and places it in slot, destroying any prior
// occupant and cancelling its reload. The new Gun becomes active when no
// slot is active, including when the replaced occupant was the active one.
//
// Precondition: cfg is non-nil and valid; slot belongs to this rig.
// Postcondition: on error nothing changed and nothing was emitted; on
// success Weapon(slot) is the returned Gun and WeaponEquipped was emitted.
func (m *Manager) Equip(cfg *weapon.Config, slot Slot) (*weapon.Gun, error) {
	if cfg == nil {
		return nil, slotError(CodeNilConfig, ErrNilConfig, slot)
	}
	if !m.known[slot] {
		return nil, slotError(CodeUnknownSlot, ErrUnknownSlot, slot)
	}
	if err := cfg.Validate(); err != nil {
		return nil, oops.
			In("rig").
			Code(CodeInvalidConfig).
			With("slot", string(slot), "weapon", cfg.ID).
			Wrapf(ErrInvalidConfig, "%v", err)
	}

	g := weapon.NewGun(cfg, m.sched, weapon.WithMount(m.mount))
	if prev := m.occupant[slot]; prev != nil {
		m.release(prev)
		if m.hasActive && m.active == slot {
			m.hasActive = false
		}
		m.logger.Debug("weapon replaced",
			zap.String("slot", string(slot)),
			zap.String("previous", prev.Info().Name),
			zap.String("previous_id", prev.ID()))
	}
	m.occupant[slot] = g
	m.slotOf[g] = slot
	m.handles[g] = []signal.Handle{
		g.OnAmmoChanged(m.relayInfo),
		g.OnStateChanged(m.relayInfo),
		g.OnFired(m.relayShot),
	}
	m.logger.Debug("weapon equipped",
		zap.String("slot", string(slot)),
		zap.String("weapon", cfg.Name),
		zap.String("gun_id", g.ID()))
	m.equipped.Emit(GunEvent{Gun: g, Slot: slot})

	if !m.hasActive && m.occupant[slot] == g {
		m.activate(slot)
	}
	return g, nil
}

// release detaches and destroys g.
func (m *Manager) release(g *weapon.Gun) {
	for _, h := range m.handles[g] {
		g.Unsubscribe(h)
	}
	delete(m.handles, g)
	delete(m.slotOf, g)
	g.Destroy()
}

// SetActive makes slot's occupant the live weapon.
//
// Postcondition: on success exactly one occupant is Active(), and
// ActiveWeaponChanged then WeaponInfoUpdated were emitted.
func (m *Manager) SetActive(slot Slot) error {
	if !m.known[slot] {
		m.logger.Debug("set active rejected", zap.String("slot", string(slot)), zap.String("reason", "unknown slot"))
		return slotError(CodeUnknownSlot, ErrUnknownSlot, slot)
	}
	if m.occupant[slot] == nil {
		m.logger.Debug("set active rejected", zap.String("slot", string(slot)), zap.String("reason", "empty slot"))
		return slotError(CodeSlotEmpty, ErrSlotEmpty, slot)
	}
	m.activate(slot)
	return nil
}

// SetActiveGun makes g the live weapon, resolving its slot from the rig's
// own index rather than trusting a caller-supplied slot.
//
// Postcondition: returns ErrNotEquipped for a Gun this rig does not hold.
func (m *Manager) SetActiveGun(g *weapon.Gun) (Slot, error) {
	slot, ok := m.slotOf[g]
	if !ok || g == nil {
		return "", oops.In("rig").Code(CodeNotEquipped).Wrap(ErrNotEquipped)
	}
	m.activate(slot)
	return slot, nil
}

func (m *Manager) activate(slot Slot) {
	g := m.occupant[slot]
	if m.hasActive {
		if prev := m.occupant[m.active]; prev != nil {
			prev.Deactivate()
		}
	}
	g.Activate()
	m.active = slot
	m.hasActive = true
	m.logger.Debug("active weapon changed",
		zap.String("slot", string(slot)),
		zap.String("weapon", g.Info().Name))
	m.activeChanged.Emit(GunEvent{Gun: g, Slot: slot})
	m.infoUpdated.Emit(InfoEvent{Info: g.Info(), Slot: slot})
}

// FireActive attempts one shot with the live weapon.
func (m *Manager) FireActive() weapon.FireOutcome {
	g, slot, ok := m.Active()
	if !ok {
		return weapon.FireNoWeapon
	}
	out := g.TryFire()
	if out != weapon.FireShot {
		m.logger.Debug("fire rejected", zap.String("slot", string(slot)), zap.Stringer("outcome", out))
	}
	return out
}

// StartReloadActive attempts to reload the live weapon.
func (m *Manager) StartReloadActive() weapon.ReloadOutcome {
	g, slot, ok := m.Active()
	if !ok {
		return weapon.ReloadNoWeapon
	}
	out := g.StartReload()
	if out != weapon.ReloadStarted {
		m.logger.Debug("reload rejected", zap.String("slot", string(slot)), zap.Stringer("outcome", out))
	}
	return out
}

// SwitchToNextPrimary cycles between Primary1 and Primary2. When neither
// primary is active it falls back to Primary1. Secondary is never selected.
//
// Postcondition: returns ErrNoPrimaryReady, changing nothing, when there is
// no primary to switch to.
func (m *Manager) SwitchToNextPrimary() (Slot, error) {
	_, cur, ok := m.Active()
	switch {
	case ok && cur == Primary1 && m.occupant[Primary2] != nil:
		m.activate(Primary2)
		return Primary2, nil
	case ok && cur == Primary2 && m.occupant[Primary1] != nil:
		m.activate(Primary1)
		return Primary1, nil
	case m.occupant[Primary1] != nil:
		m.activate(Primary1)
		return Primary1, nil
	default:
		return "", slotError(CodeNoPrimaryReady, ErrNoPrimaryReady, Primary1)
	}
}

// AddAmmo adds amount rounds to the reserve of slot's occupant.
func (m *Manager) AddAmmo(slot Slot, amount int) error {
	if !m.known[slot] {
		return slotError(CodeUnknownSlot, ErrUnknownSlot, slot)
	}
	g := m.occupant[slot]
	if g == nil {
		return slotError(CodeSlotEmpty, ErrSlotEmpty, slot)
	}
	if !g.AddAmmo(amount) {
		return oops.
			In("rig").
			Code(CodeInvalidAmount).
			With("slot", string(slot), "amount", amount).
			Wrap(ErrInvalidAmount)
	}
	return nil
}

// Tick advances simulated time by dt: every occupant's cooldown, active or
// holstered, then the reload scheduler.
//
// Postcondition: every reload due at or before the new time has completed.
func (m *Manager) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	for _, s := range m.slots {
		if g := m.occupant[s]; g != nil {
			g.Update(dt)
		}
	}
	m.sched.Advance(dt)
}

// Close destroys every occupant and drops every subscriber.
//
// Postcondition: all slots are empty and no slot is active.
func (m *Manager) Close() {
	for _, s := range m.slots {
		if g := m.occupant[s]; g != nil {
			m.release(g)
			delete(m.occupant, s)
		}
	}
	m.hasActive = false
	m.active = ""
	m.equipped.Clear()
	m.activeChanged.Clear()
	m.infoUpdated.Clear()
	m.fired.Clear()
}

func (m *Manager) relayInfo(g *weapon.Gun) {
	slot, ok := m.slotOf[g]
	if !ok {
		return
	}
	m.infoUpdated.Emit(InfoEvent{Info: g.Info(), Slot: slot})
}

func (m *Manager) relayShot(s weapon.Shot) {
	slot, ok := m.slotOf[s.Gun]
	if !ok {
		return
	}
	m.fired.Emit(ShotEvent{Shot: s, Slot: slot})
}
