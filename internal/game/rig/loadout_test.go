package rig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
)

func registry(t *testing.T) *weapon.Registry {
	t.Helper()
	r, err := weapon.NewRegistryFrom([]*weapon.Config{rifle(), pistol(), shotgun()})
	require.NoError(t, err)
	return r
}

func writeLoadout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loadout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadLoadout(t *testing.T) {
	path := writeLoadout(t, `slots:
  primary1: rifle-ak
  secondary: pistol-9mm
active: secondary
`)
	l, err := rig.LoadLoadout(path)
	require.NoError(t, err)
	assert.Equal(t, map[rig.Slot]string{rig.Primary1: "rifle-ak", rig.Secondary: "pistol-9mm"}, l.Slots)
	assert.Equal(t, rig.Secondary, l.Active)
}

func TestLoadLoadout_Errors(t *testing.T) {
	_, err := rig.LoadLoadout("/nonexistent/loadout.yaml")
	assert.Error(t, err)

	_, err = rig.LoadLoadout(writeLoadout(t, "slots: [oops"))
	assert.Error(t, err)
}

func TestLoadLoadout_EmptyFileYieldsEmptyLoadout(t *testing.T) {
	l, err := rig.LoadLoadout(writeLoadout(t, ""))
	require.NoError(t, err)
	assert.Empty(t, l.Slots)
	assert.Equal(t, rig.Slot(""), l.Active)
}

func TestApplyLoadout_EquipsInSlotOrder(t *testing.T) {
	m := newManager(t)
	var order []rig.Slot
	m.OnWeaponEquipped(func(e rig.GunEvent) { order = append(order, e.Slot) })

	l := &rig.Loadout{Slots: map[rig.Slot]string{
		rig.Secondary: "pistol-9mm",
		rig.Primary2:  "shotgun",
		rig.Primary1:  "rifle-ak",
	}}
	require.NoError(t, m.ApplyLoadout(l, registry(t)))
	assert.Equal(t, []rig.Slot{rig.Primary1, rig.Primary2, rig.Secondary}, order)

	_, slot, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, rig.Primary1, slot, "first equipped slot becomes active")
}

func TestApplyLoadout_ActivatesRequestedSlot(t *testing.T) {
	m := newManager(t)
	l := &rig.Loadout{
		Slots:  map[rig.Slot]string{rig.Primary1: "rifle-ak", rig.Secondary: "pistol-9mm"},
		Active: rig.Secondary,
	}
	require.NoError(t, m.ApplyLoadout(l, registry(t)))
	g, slot, _ := m.Active()
	assert.Equal(t, rig.Secondary, slot)
	assert.Equal(t, "Glock", g.Info().Name)
}

func TestApplyLoadout_RejectsWithoutChanges(t *testing.T) {
	cases := map[string]struct {
		loadout *rig.Loadout
		want    error
	}{
		"unknown weapon": {
			loadout: &rig.Loadout{Slots: map[rig.Slot]string{rig.Primary1: "rifle-ak", rig.Secondary: "bow"}},
			want:    rig.ErrUnknownWeapon,
		},
		"unknown slot": {
			loadout: &rig.Loadout{Slots: map[rig.Slot]string{"boot": "pistol-9mm"}},
			want:    rig.ErrUnknownSlot,
		},
		"unknown active": {
			loadout: &rig.Loadout{Slots: map[rig.Slot]string{rig.Primary1: "rifle-ak"}, Active: "boot"},
			want:    rig.ErrUnknownSlot,
		},
		"empty active": {
			loadout: &rig.Loadout{Slots: map[rig.Slot]string{rig.Primary1: "rifle-ak"}, Active: rig.Secondary},
			want:    rig.ErrSlotEmpty,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			m := newManager(t)
			err := m.ApplyLoadout(tc.loadout, registry(t))
			assert.ErrorIs(t, err, tc.want)
			for _, s := range m.Slots() {
				assert.Nil(t, m.Weapon(s), "slot %s", s)
			}
		})
	}
}

func TestApplyLoadout_RejectsInvalidRegisteredConfig(t *testing.T) {
	bad := rifle()
	bad.ID = "broken"
	bad.MagazineSize = 0
	reg := registry(t)
	require.NoError(t, reg.Register(bad))

	m := newManager(t)
	err := m.ApplyLoadout(&rig.Loadout{Slots: map[rig.Slot]string{rig.Primary1: "pistol-9mm", rig.Primary2: "broken"}}, reg)
	assert.ErrorIs(t, err, rig.ErrInvalidConfig)
	assert.Nil(t, m.Weapon(rig.Primary1))
}

func TestParseSlots(t *testing.T) {
	slots, err := rig.ParseSlots([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []rig.Slot{"a", "b"}, slots)

	_, err = rig.ParseSlots(nil)
	assert.Error(t, err)
	_, err = rig.ParseSlots([]string{"a", ""})
	assert.Error(t, err)
	_, err = rig.ParseSlots([]string{"a", "a"})
	assert.Error(t, err)
}
