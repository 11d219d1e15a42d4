package command

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
)

// Trigger is the held-trigger control owned by the simulation loop.
type Trigger interface {
	Hold()
	Release()
}

// Renderer produces a multi-line rig status block.
type Renderer interface {
	Render() string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTrigger enables the hold and release commands.
func WithTrigger(t Trigger) DispatcherOption {
	return func(d *Dispatcher) { d.trigger = t }
}

// WithRenderer sets the renderer used by the status command.
func WithRenderer(r Renderer) DispatcherOption {
	return func(d *Dispatcher) { d.renderer = r }
}

// WithQuit sets the function the quit command calls.
func WithQuit(fn func()) DispatcherOption {
	return func(d *Dispatcher) { d.quit = fn }
}

// WithDispatcherLogger sets the logger. The default is a no-op logger.
func WithDispatcherLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher executes text commands against one rig. It must be called from
// the goroutine that owns the rig.
type Dispatcher struct {
	cmds     *Registry
	m        *rig.Manager
	weapons  *weapon.Registry
	trigger  Trigger
	renderer Renderer
	quit     func()
	logger   *zap.Logger
}

// NewDispatcher returns a Dispatcher over m using the built-in commands.
//
// Precondition: m and weapons must not be nil.
func NewDispatcher(m *rig.Manager, weapons *weapon.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		cmds:    DefaultRegistry(),
		m:       m,
		weapons: weapons,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute parses and runs one line.
//
// Postcondition: Returns a human-readable result; a blank line yields "".
func (d *Dispatcher) Execute(line string) string {
	p := Parse(line)
	if p.Command == "" {
		return ""
	}
	cmd, ok := d.cmds.Resolve(p.Command)
	if !ok {
		d.logger.Debug("unknown command", zap.String("command", p.Command))
		return fmt.Sprintf("Unknown command %q. Type \"help\" for a list.", p.Command)
	}
	d.logger.Debug("executing command", zap.String("command", cmd.Name), zap.Strings("args", p.Args))

	switch cmd.Handler {
	case HandlerFire:
		return HandleFire(d.m)
	case HandlerReload:
		return HandleReload(d.m)
	case HandlerSwitch:
		return HandleSwitch(d.m, p.Args)
	case HandlerNext:
		return HandleNext(d.m)
	case HandlerEquip:
		return HandleEquip(d.m, d.weapons, p.Args)
	case HandlerAmmo:
		return HandleAmmo(d.m, p.Args)
	case HandlerHold:
		if d.trigger == nil {
			return "Trigger control is unavailable."
		}
		d.trigger.Hold()
		return "Trigger held."
	case HandlerRelease:
		if d.trigger == nil {
			return "Trigger control is unavailable."
		}
		d.trigger.Release()
		return "Trigger released."
	case HandlerStatus:
		return d.status()
	case HandlerWeapons:
		return HandleWeapons(d.weapons)
	case HandlerHelp:
		return d.help()
	case HandlerQuit:
		if d.quit != nil {
			d.quit()
		}
		return "Goodbye."
	default:
		return fmt.Sprintf("Command %q has no handler.", cmd.Name)
	}
}

func (d *Dispatcher) status() string {
	if d.renderer != nil {
		return strings.TrimRight(d.renderer.Render(), "\n")
	}
	_, active, hasActive := d.m.Active()
	lines := make([]string, 0, len(d.m.Slots()))
	for _, s := range d.m.Slots() {
		marker := " "
		if hasActive && s == active {
			marker = "*"
		}
		info, ok := d.m.Info(s)
		if !ok {
			lines = append(lines, fmt.Sprintf("%s [%s] -", marker, s))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s [%s] %s", marker, s, info))
	}
	return strings.Join(lines, "\n")
}

func (d *Dispatcher) help() string {
	byCat := d.cmds.CommandsByCategory()
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var b strings.Builder
	for i, c := range cats {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s:", c)
		for _, cmd := range byCat[c] {
			usage := cmd.Usage
			if len(cmd.Aliases) > 0 {
				usage += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&b, "\n  %-34s %s", usage, cmd.Help)
		}
	}
	return b.String()
}
