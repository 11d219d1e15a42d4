package rig

import (
	"errors"

	"github.com/samber/oops"
)

// Sentinel errors returned (wrapped) by Manager. Match with errors.Is.
var (
	ErrUnknownSlot    = errors.New("unknown slot")
	ErrSlotEmpty      = errors.New("slot is empty")
	ErrNilConfig      = errors.New("weapon config is nil")
	ErrInvalidConfig  = errors.New("weapon config is invalid")
	ErrNotEquipped    = errors.New("weapon is not equipped on this rig")
	ErrInvalidAmount  = errors.New("ammo amount must not be negative")
	ErrUnknownWeapon  = errors.New("unknown weapon id")
	ErrNoPrimaryReady = errors.New("no primary weapon to switch to")
)

// Error codes attached to rig errors.
const (
	CodeUnknownSlot    = "RIG_UNKNOWN_SLOT"
	CodeSlotEmpty      = "RIG_SLOT_EMPTY"
	CodeNilConfig      = "RIG_NIL_CONFIG"
	CodeInvalidConfig  = "RIG_INVALID_CONFIG"
	CodeNotEquipped    = "RIG_NOT_EQUIPPED"
	CodeInvalidAmount  = "RIG_INVALID_AMOUNT"
	CodeUnknownWeapon  = "RIG_UNKNOWN_WEAPON"
	CodeNoPrimaryReady = "RIG_NO_PRIMARY"
)

func slotError(code string, sentinel error, slot Slot) error {
	return oops.
		In("rig").
		Code(code).
		With("slot", string(slot)).
		Wrap(sentinel)
}
