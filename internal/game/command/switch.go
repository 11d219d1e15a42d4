package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
)

// HandleSwitch processes the "switch <slot>" command.
//
// Precondition: m must not be nil.
// Postcondition: On success the named slot is active; otherwise the rig is
// unchanged and the reason is returned.
func HandleSwitch(m *rig.Manager, args []string) string {
	if len(args) != 1 {
		return "Usage: switch <slot>"
	}
	slot := rig.Slot(args[0])
	if err := m.SetActive(slot); err != nil {
		return slotProblem(m, slot, err)
	}
	info, _ := m.Info(slot)
	return fmt.Sprintf("Switched to %s: %s.", slot, info.Name)
}

// HandleNext processes the "next" command.
//
// Precondition: m must not be nil.
func HandleNext(m *rig.Manager) string {
	slot, err := m.SwitchToNextPrimary()
	if err != nil {
		return "No primary weapon to switch to."
	}
	info, _ := m.Info(slot)
	return fmt.Sprintf("Switched to %s: %s.", slot, info.Name)
}

func slotProblem(m *rig.Manager, slot rig.Slot, err error) string {
	switch {
	case errors.Is(err, rig.ErrUnknownSlot):
		names := make([]string, 0, len(m.Slots()))
		for _, s := range m.Slots() {
			names = append(names, string(s))
		}
		return fmt.Sprintf("Unknown slot %q. Slots: %s.", slot, strings.Join(names, ", "))
	case errors.Is(err, rig.ErrSlotEmpty):
		return fmt.Sprintf("Slot %s is empty.", slot)
	default:
		return err.Error()
	}
}
