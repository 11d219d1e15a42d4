package weapon

import "fmt"

// State is the firing state of a Gun.
type State int

const (
	// StateIdle accepts fire and reload commands.
	StateIdle State = iota
	// StateFiring is entered and left within a single TryFire call; it is
	// only observable through the state-changed event.
	StateFiring
	// StateReloading rejects fire commands until the reload completes.
	StateReloading
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateFiring:    "firing",
	StateReloading: "reloading",
}

// String returns the lowercase state name.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	n, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("weapon: unknown state %d", int(s))
	}
	return []byte(n), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for st, n := range stateNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("weapon: unknown state %q", string(b))
}

// Info is an immutable snapshot of one weapon for presentation layers.
// It holds no reference to the Gun and can be serialized or sent across
// goroutines freely.
type Info struct {
	Name     string `json:"name"`
	Magazine int    `json:"magazine"`
	Reserve  int    `json:"reserve"`
	State    State  `json:"state"`
}

// String renders the snapshot on one line.
func (i Info) String() string {
	return fmt.Sprintf("%s | mag %d | reserve %d | %s", i.Name, i.Magazine, i.Reserve, i.State)
}

// FireOutcome reports which branch a fire command took.
type FireOutcome int

const (
	// FireShot means a round was fired.
	FireShot FireOutcome = iota
	// FireEmpty means the magazine was empty and a reload was attempted instead.
	FireEmpty
	// FireReloading means the weapon is mid-reload.
	FireReloading
	// FireOnCooldown means the inter-shot interval has not elapsed.
	FireOnCooldown
	// FireNoWeapon means there is no usable weapon to fire.
	FireNoWeapon
)

// String returns a short description of the outcome.
func (o FireOutcome) String() string {
	switch o {
	case FireShot:
		return "fired"
	case FireEmpty:
		return "empty"
	case FireReloading:
		return "reloading"
	case FireOnCooldown:
		return "on cooldown"
	case FireNoWeapon:
		return "no weapon"
	default:
		return fmt.Sprintf("fire(%d)", int(o))
	}
}

// ReloadOutcome reports which branch a reload command took.
type ReloadOutcome int

const (
	// ReloadStarted means a reload timer is now running.
	ReloadStarted ReloadOutcome = iota
	// ReloadBusy means a reload is already in progress.
	ReloadBusy
	// ReloadFull means the magazine is already full.
	ReloadFull
	// ReloadNoReserve means there is no reserve ammunition to load.
	ReloadNoReserve
	// ReloadNoWeapon means there is no usable weapon to reload.
	ReloadNoWeapon
)

// String returns a short description of the outcome.
func (o ReloadOutcome) String() string {
	switch o {
	case ReloadStarted:
		return "reload started"
	case ReloadBusy:
		return "already reloading"
	case ReloadFull:
		return "magazine full"
	case ReloadNoReserve:
		return "no reserve ammo"
	case ReloadNoWeapon:
		return "no weapon"
	default:
		return fmt.Sprintf("reload(%d)", int(o))
	}
}
