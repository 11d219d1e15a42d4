package rig

import "fmt"

// Slot identifies a weapon position on a rig.
type Slot string

const (
	// Primary1 is the first primary weapon slot.
	Primary1 Slot = "primary1"
	// Primary2 is the second primary weapon slot.
	Primary2 Slot = "primary2"
	// Secondary is the sidearm slot. It never takes part in primary cycling.
	Secondary Slot = "secondary"
)

// DefaultSlots returns the stock slot layout in display order.
func DefaultSlots() []Slot {
	return []Slot{Primary1, Primary2, Secondary}
}

// ParseSlots converts configured slot names into Slots, rejecting empty and
// duplicate names.
//
// Postcondition: on success the result preserves the input order.
func ParseSlots(names []string) ([]Slot, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("rig: at least one slot is required")
	}
	seen := make(map[Slot]bool, len(names))
	slots := make([]Slot, 0, len(names))
	for _, n := range names {
		s := Slot(n)
		if s == "" {
			return nil, fmt.Errorf("rig: slot name must not be empty")
		}
		if seen[s] {
			return nil, fmt.Errorf("rig: duplicate slot %q", n)
		}
		seen[s] = true
		slots = append(slots, s)
	}
	return slots, nil
}
