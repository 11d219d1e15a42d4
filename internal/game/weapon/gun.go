package weapon

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/gunrig/internal/game/sched"
	"github.com/cory-johannsen/gunrig/internal/game/signal"
)

// Event kinds emitted by a Gun.
const (
	KindAmmoChanged  signal.Kind = "weapon.ammo_changed"
	KindStateChanged signal.Kind = "weapon.state_changed"
	KindFired        signal.Kind = "weapon.fired"
)

// Shot describes a fired round for the collaborator that realizes it as a
// projectile, muzzle flash or sound.
type Shot struct {
	Gun        *Gun
	Position   Vec3
	Rotation   Quat
	Projectile string
	Damage     float64
}

// Gun is the runtime state of one weapon instance.
//
// Invariants:
//   - 0 <= Magazine() <= Config().MagazineSize
//   - Reserve() >= 0
//   - State() == StateReloading iff a reload task is pending in the scheduler
//   - a destroyed Gun ignores every command and emits no events
//
// Gun is not safe for concurrent use; it is driven from the simulation
// goroutine that owns its scheduler.
type Gun struct {
	id        string
	cfg       *Config
	sched     *sched.Scheduler
	mount     Mount
	state     State
	magazine  int
	reserve   int
	cooldown  time.Duration
	active    bool
	destroyed bool

	ammoChanged  *signal.Signal[*Gun]
	stateChanged *signal.Signal[*Gun]
	fired        *signal.Signal[Shot]
}

// Option configures a Gun at construction.
type Option func(*Gun)

// WithMount sets the transform the muzzle offset is applied to.
func WithMount(m Mount) Option {
	return func(g *Gun) {
		if m != nil {
			g.mount = m
		}
	}
}

// NewGun creates a Gun bound to cfg whose reload timer runs on s.
// A nil cfg yields an inert "None" weapon that reports FireNoWeapon.
//
// Precondition: s must not be nil (panics otherwise).
// Postcondition: Magazine() == cfg.MagazineSize, Reserve() == cfg.AmmoReserve,
// State() == StateIdle.
func NewGun(cfg *Config, s *sched.Scheduler, opts ...Option) *Gun {
	if s == nil {
		panic("weapon: NewGun: scheduler must not be nil")
	}
	g := &Gun{
		id:           uuid.New().String(),
		cfg:          cfg,
		sched:        s,
		mount:        OriginMount,
		ammoChanged:  signal.New[*Gun](KindAmmoChanged),
		stateChanged: signal.New[*Gun](KindStateChanged),
		fired:        signal.New[Shot](KindFired),
	}
	for _, opt := range opts {
		opt(g)
	}
	if cfg != nil {
		g.magazine = cfg.MagazineSize
		g.reserve = cfg.AmmoReserve
	}
	return g
}

// ID returns the unique instance identifier.
func (g *Gun) ID() string { return g.id }

// Config returns the shared tuning, or nil for a "None" weapon.
func (g *Gun) Config() *Config { return g.cfg }

// State returns the current firing state.
func (g *Gun) State() State { return g.state }

// Magazine returns the loaded round count.
func (g *Gun) Magazine() int { return g.magazine }

// Reserve returns the spare round count.
func (g *Gun) Reserve() int { return g.reserve }

// Cooldown returns the time left before the next shot is permitted.
func (g *Gun) Cooldown() time.Duration { return g.cooldown }

// Active reports whether the owning rig has made this Gun its live weapon.
func (g *Gun) Active() bool { return g.active }

// Destroyed reports whether Destroy has been called.
func (g *Gun) Destroyed() bool { return g.destroyed }

// ReloadRemaining returns the time left on a running reload.
//
// Postcondition: ok is false when no reload is running.
func (g *Gun) ReloadRemaining() (time.Duration, bool) {
	return g.sched.Remaining(g.reloadKey())
}

// Activate marks the Gun as the rig's live weapon. Called by the owning rig.
func (g *Gun) Activate() { g.active = true }

// Deactivate marks the Gun as holstered. Called by the owning rig.
func (g *Gun) Deactivate() { g.active = false }

// Info returns a snapshot of the Gun's presentation state.
func (g *Gun) Info() Info {
	name := "None"
	if g.cfg != nil {
		name = g.cfg.Name
	}
	return Info{Name: name, Magazine: g.magazine, Reserve: g.reserve, State: g.state}
}

// OnAmmoChanged subscribes fn to magazine/reserve changes.
func (g *Gun) OnAmmoChanged(fn func(*Gun)) signal.Handle { return g.ammoChanged.Subscribe(fn) }

// OnStateChanged subscribes fn to state transitions.
func (g *Gun) OnStateChanged(fn func(*Gun)) signal.Handle { return g.stateChanged.Subscribe(fn) }

// OnFired subscribes fn to shots.
func (g *Gun) OnFired(fn func(Shot)) signal.Handle { return g.fired.Subscribe(fn) }

// Unsubscribe removes a subscription made through any On* method.
//
// Postcondition: returns true iff h was live on this Gun.
func (g *Gun) Unsubscribe(h signal.Handle) bool {
	switch h.Kind() {
	case KindAmmoChanged:
		return g.ammoChanged.Unsubscribe(h)
	case KindStateChanged:
		return g.stateChanged.Unsubscribe(h)
	case KindFired:
		return g.fired.Unsubscribe(h)
	default:
		return false
	}
}

// TryFire attempts one shot. Guards are checked in order: usable weapon,
// not reloading, cooldown elapsed, magazine non-empty. An empty magazine
// attempts a reload instead of firing.
//
// Postcondition: on FireShot, Magazine() decreased by exactly 1 and
// Cooldown() == Config().Cooldown(); on any other outcome no ammo changed.
func (g *Gun) TryFire() FireOutcome {
	if g.cfg == nil || g.destroyed {
		return FireNoWeapon
	}
	if g.state == StateReloading {
		return FireReloading
	}
	if g.cooldown > 0 {
		return FireOnCooldown
	}
	if g.magazine <= 0 {
		g.StartReload()
		return FireEmpty
	}

	g.setState(StateFiring)
	g.magazine--
	g.cooldown = g.cfg.Cooldown()
	g.ammoChanged.Emit(g)
	g.fired.Emit(g.shot())
	if !g.destroyed {
		g.setState(StateIdle)
	}
	return FireShot
}

func (g *Gun) shot() Shot {
	t := g.mount.Transform()
	return Shot{
		Gun:        g,
		Position:   t.Point(g.cfg.MuzzleOffset),
		Rotation:   t.Rotation,
		Projectile: g.cfg.Projectile,
		Damage:     g.cfg.Damage,
	}
}

// StartReload begins a reload that completes after Config().ReloadTime of
// simulated time. It does nothing when already reloading, when the magazine
// is full, or when there is no reserve.
//
// Postcondition: on ReloadStarted, State() == StateReloading and a
// state-changed event has been emitted.
func (g *Gun) StartReload() ReloadOutcome {
	if g.cfg == nil || g.destroyed {
		return ReloadNoWeapon
	}
	if g.state == StateReloading {
		return ReloadBusy
	}
	if g.magazine >= g.cfg.MagazineSize {
		return ReloadFull
	}
	if g.reserve <= 0 {
		return ReloadNoReserve
	}
	if err := g.sched.Schedule(g.reloadKey(), g.cfg.ReloadDuration(), g.completeReload); err != nil {
		return ReloadBusy
	}
	g.setState(StateReloading)
	return ReloadStarted
}

// completeReload moves rounds from reserve to magazine. It always emits
// state-changed followed by ammo-changed, even when nothing was moved.
func (g *Gun) completeReload() {
	if g.destroyed || g.cfg == nil {
		return
	}
	taken := min(g.cfg.MagazineSize-g.magazine, g.reserve)
	if taken < 0 {
		taken = 0
	}
	g.magazine += taken
	g.reserve -= taken
	g.setState(StateIdle)
	g.ammoChanged.Emit(g)
}

// AddAmmo adds amount rounds to the reserve and emits ammo-changed.
//
// Postcondition: returns false, with no change and no event, when amount is
// negative, would overflow the reserve, or the Gun is destroyed.
func (g *Gun) AddAmmo(amount int) bool {
	if amount < 0 || amount > math.MaxInt-g.reserve || g.destroyed {
		return false
	}
	g.reserve += amount
	g.ammoChanged.Emit(g)
	return true
}

// Update advances the fire cooldown by dt.
//
// Postcondition: Cooldown() == max(0, previous - dt).
func (g *Gun) Update(dt time.Duration) {
	if g.cooldown <= 0 || dt <= 0 {
		return
	}
	g.cooldown -= dt
	if g.cooldown < 0 {
		g.cooldown = 0
	}
}

// Destroy cancels any pending reload without crediting ammunition, drops
// every subscriber, and makes the Gun inert. Safe to call multiple times.
//
// Postcondition: Destroyed() == true; Magazine() and Reserve() are unchanged.
func (g *Gun) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.active = false
	g.sched.Cancel(g.reloadKey())
	g.state = StateIdle
	g.ammoChanged.Clear()
	g.stateChanged.Clear()
	g.fired.Clear()
}

func (g *Gun) setState(s State) {
	g.state = s
	g.stateChanged.Emit(g)
}

func (g *Gun) reloadKey() string { return "reload/" + g.id }
