package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
)

// HandleEquip processes the "equip <weapon-id> <slot>" command.
//
// Precondition: m and reg must not be nil.
// Postcondition: On success the slot holds a fresh Gun of the named weapon,
// replacing any previous occupant; on failure the rig is unchanged.
func HandleEquip(m *rig.Manager, reg *weapon.Registry, args []string) string {
	if len(args) != 2 {
		return "Usage: equip <weapon-id> <slot>"
	}
	id, slot := args[0], rig.Slot(args[1])
	cfg, ok := reg.Get(id)
	if !ok {
		return fmt.Sprintf("Unknown weapon %q. Type \"weapons\" for a list.", id)
	}
	if _, err := m.Equip(cfg, slot); err != nil {
		if errors.Is(err, rig.ErrInvalidConfig) {
			return fmt.Sprintf("Weapon %q has invalid tuning.", id)
		}
		return slotProblem(m, slot, err)
	}
	return fmt.Sprintf("Equipped %s in %s.", cfg.Name, slot)
}

// HandleAmmo processes the "ammo <slot> <amount>" command.
//
// Precondition: m must not be nil.
// Postcondition: On success the slot's reserve grew by amount.
func HandleAmmo(m *rig.Manager, args []string) string {
	if len(args) != 2 {
		return "Usage: ammo <slot> <amount>"
	}
	slot := rig.Slot(args[0])
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Sprintf("Amount %q is not a whole number.", args[1])
	}
	if err := m.AddAmmo(slot, amount); err != nil {
		if errors.Is(err, rig.ErrInvalidAmount) {
			if amount < 0 {
				return "Amount must not be negative."
			}
			return fmt.Sprintf("Amount %d would overflow the reserve.", amount)
		}
		return slotProblem(m, slot, err)
	}
	info, _ := m.Info(slot)
	return fmt.Sprintf("Added %d rounds to %s [%d/%d].", amount, slot, info.Magazine, info.Reserve)
}

// HandleWeapons lists every weapon in reg, sorted by id.
func HandleWeapons(reg *weapon.Registry) string {
	ids := reg.IDs()
	if len(ids) == 0 {
		return "No weapons are loaded."
	}
	var b strings.Builder
	for i, id := range ids {
		cfg, _ := reg.Get(id)
		mode := "semi"
		if cfg.Automatic {
			mode = "auto"
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-12s %s (%d/%d, %g rps, %s)", id, cfg.Name, cfg.MagazineSize, cfg.AmmoReserve, cfg.FireRate, mode)
	}
	return b.String()
}
