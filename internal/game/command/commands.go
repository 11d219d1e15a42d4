// Package command provides the text command parser, registry and dispatcher
// that drive a weapon rig from typed input.
package command

// Categories for organizing commands.
const (
	CategoryWeapon = "weapon"
	CategoryRig    = "rig"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to dispatcher handlers.
const (
	HandlerFire    = "fire"
	HandlerReload  = "reload"
	HandlerSwitch  = "switch"
	HandlerNext    = "next"
	HandlerEquip   = "equip"
	HandlerAmmo    = "ammo"
	HandlerHold    = "hold"
	HandlerRelease = "release"
	HandlerStatus  = "status"
	HandlerWeapons = "weapons"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines an operator-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "switch <slot>".
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler selects the dispatcher handler.
	Handler string
}

// BuiltinCommands returns every rig command.
func BuiltinCommands() []Command {
	return []Command{
		// Weapon commands
		{Name: "fire", Aliases: []string{"f"}, Usage: "fire", Help: "Fire one shot from the active weapon", Category: CategoryWeapon, Handler: HandlerFire},
		{Name: "reload", Aliases: []string{"r"}, Usage: "reload", Help: "Reload the active weapon", Category: CategoryWeapon, Handler: HandlerReload},
		{Name: "hold", Usage: "hold", Help: "Hold the trigger (automatic weapons keep firing)", Category: CategoryWeapon, Handler: HandlerHold},
		{Name: "release", Usage: "release", Help: "Release the trigger", Category: CategoryWeapon, Handler: HandlerRelease},

		// Rig commands
		{Name: "switch", Aliases: []string{"sw"}, Usage: "switch <slot>", Help: "Make the weapon in a slot active", Category: CategoryRig, Handler: HandlerSwitch},
		{Name: "next", Aliases: []string{"n"}, Usage: "next", Help: "Cycle between the primary weapons", Category: CategoryRig, Handler: HandlerNext},
		{Name: "equip", Aliases: []string{"eq"}, Usage: "equip <weapon-id> <slot>", Help: "Equip a weapon into a slot", Category: CategoryRig, Handler: HandlerEquip},
		{Name: "ammo", Usage: "ammo <slot> <amount>", Help: "Add reserve ammunition to a slot's weapon", Category: CategoryRig, Handler: HandlerAmmo},
		{Name: "status", Aliases: []string{"st"}, Usage: "status", Help: "Show every slot", Category: CategoryRig, Handler: HandlerStatus},
		{Name: "weapons", Usage: "weapons", Help: "List the weapons that can be equipped", Category: CategoryRig, Handler: HandlerWeapons},

		// System commands
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Usage: "quit", Help: "Stop the simulation", Category: CategorySystem, Handler: HandlerQuit},
	}
}
