package command

import (
	"fmt"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
)

const noActiveWeapon = "No weapon is active."

// HandleFire processes the "fire" command.
//
// Precondition: m must not be nil.
// Postcondition: Returns the fire outcome for the active weapon together
// with its ammunition after the attempt.
func HandleFire(m *rig.Manager) string {
	out := m.FireActive()
	if out == weapon.FireNoWeapon {
		return noActiveWeapon
	}
	g, _, _ := m.Active()
	if out == weapon.FireEmpty && g.State() == weapon.StateReloading {
		return describe(g.Info(), "empty, reloading")
	}
	return describe(g.Info(), out.String())
}

// HandleReload processes the "reload" command.
//
// Precondition: m must not be nil.
// Postcondition: Returns the reload outcome for the active weapon.
func HandleReload(m *rig.Manager) string {
	out := m.StartReloadActive()
	if out == weapon.ReloadNoWeapon {
		return noActiveWeapon
	}
	g, _, _ := m.Active()
	return describe(g.Info(), out.String())
}

func describe(info weapon.Info, outcome string) string {
	return fmt.Sprintf("%s: %s [%d/%d]", info.Name, outcome, info.Magazine, info.Reserve)
}
