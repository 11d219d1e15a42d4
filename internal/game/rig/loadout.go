package rig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gunrig/internal/game/weapon"
)

// Loadout names the weapon to equip in each slot and the slot to make
// active once equipped.
type Loadout struct {
	Slots  map[Slot]string `yaml:"slots"`
	Active Slot            `yaml:"active"`
}

// LoadLoadout reads a Loadout from a YAML file.
//
// Precondition: path names a readable YAML file.
// Postcondition: returns a non-nil Loadout or an error.
func LoadLoadout(path string) (*Loadout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLoadout: cannot read file %q: %w", path, err)
	}
	var l Loadout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("LoadLoadout: cannot parse file %q: %w", path, err)
	}
	if l.Slots == nil {
		l.Slots = make(map[Slot]string)
	}
	return &l, nil
}

// ApplyLoadout equips every weapon named by l, in the rig's slot order, then
// activates l.Active when set. All slots and weapon ids are checked before
// anything is equipped.
//
// Precondition: l and reg are non-nil.
// Postcondition: on error the rig is unchanged.
func (m *Manager) ApplyLoadout(l *Loadout, reg *weapon.Registry) error {
	configs := make(map[Slot]*weapon.Config, len(l.Slots))
	for slot, id := range l.Slots {
		if !m.known[slot] {
			return slotError(CodeUnknownSlot, ErrUnknownSlot, slot)
		}
		cfg, ok := reg.Get(id)
		if !ok {
			return fmt.Errorf("ApplyLoadout: weapon %q: %w", id, slotError(CodeUnknownWeapon, ErrUnknownWeapon, slot))
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("ApplyLoadout: weapon %q: %w: %v", id, ErrInvalidConfig, err)
		}
		configs[slot] = cfg
	}
	if l.Active != "" {
		if !m.known[l.Active] {
			return slotError(CodeUnknownSlot, ErrUnknownSlot, l.Active)
		}
		if configs[l.Active] == nil && m.occupant[l.Active] == nil {
			return slotError(CodeSlotEmpty, ErrSlotEmpty, l.Active)
		}
	}

	for _, slot := range m.slots {
		cfg := configs[slot]
		if cfg == nil {
			continue
		}
		if _, err := m.Equip(cfg, slot); err != nil {
			return fmt.Errorf("ApplyLoadout: %w", err)
		}
	}
	if l.Active != "" {
		return m.SetActive(l.Active)
	}
	return nil
}
