// Package main provides the rig simulator binary: it loads weapon content,
// equips a loadout and drives the rig from stdin or a Lua script.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunrig/internal/config"
	"github.com/cory-johannsen/gunrig/internal/game/command"
	"github.com/cory-johannsen/gunrig/internal/game/rig"
	"github.com/cory-johannsen/gunrig/internal/game/weapon"
	"github.com/cory-johannsen/gunrig/internal/hud"
	"github.com/cory-johannsen/gunrig/internal/observability"
	"github.com/cory-johannsen/gunrig/internal/scripting"
	"github.com/cory-johannsen/gunrig/internal/server"
	"github.com/cory-johannsen/gunrig/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scriptPath := flag.String("script", "", "Lua script to run instead of the console; overrides scripting.script")
	noColor := flag.Bool("no-color", false, "disable ANSI colour in HUD output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *scriptPath != "" {
		cfg.Scripting.Script = *scriptPath
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting rig simulator",
		zap.String("config", *configPath),
		zap.Duration("tick_interval", cfg.Rig.TickInterval),
	)

	// Load weapon content
	loadStart := time.Now()
	configs, err := weapon.LoadConfigs(cfg.Rig.WeaponsDir)
	if err != nil {
		logger.Fatal("loading weapons", zap.Error(err))
	}
	weapons, err := weapon.NewRegistryFrom(configs)
	if err != nil {
		logger.Fatal("indexing weapons", zap.Error(err))
	}
	logger.Info("weapons loaded",
		zap.Int("count", weapons.Len()),
		zap.String("dir", cfg.Rig.WeaponsDir),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	slots, err := rig.ParseSlots(cfg.Rig.Slots)
	if err != nil {
		logger.Fatal("parsing slots", zap.Error(err))
	}
	m := rig.NewManager(rig.WithSlots(slots...), rig.WithLogger(logger))
	defer m.Close()

	display := hud.New(os.Stdout, logger, hud.WithColor(!*noColor))
	display.Attach(m)
	defer display.Detach()

	if cfg.Rig.LoadoutFile != "" {
		loadout, err := rig.LoadLoadout(cfg.Rig.LoadoutFile)
		if err != nil {
			logger.Fatal("loading loadout", zap.Error(err))
		}
		if err := m.ApplyLoadout(loadout, weapons); err != nil {
			logger.Fatal("applying loadout", zap.Error(err))
		}
		logger.Info("loadout applied",
			zap.String("file", cfg.Rig.LoadoutFile),
			zap.Int("weapons", len(loadout.Slots)),
		)
	}

	loop := sim.NewLoop(m, cfg.Rig.TickInterval, logger)
	var console *sim.Console
	disp := command.NewDispatcher(m, weapons,
		command.WithTrigger(loop),
		command.WithRenderer(display),
		command.WithDispatcherLogger(logger),
		command.WithQuit(func() {
			if console != nil {
				console.Quit()
			}
		}),
	)

	logger.Info("rig ready",
		zap.Int("slots", len(m.Slots())),
		zap.Duration("startup", time.Since(start)),
	)

	if cfg.Scripting.Script != "" {
		driver := scripting.NewDriver(loop, m, weapons,
			scripting.WithDispatcher(disp),
			scripting.WithInstructionLimit(cfg.Scripting.InstructionLimit),
			scripting.WithLogger(logger),
		)
		if err := driver.RunFile(context.Background(), cfg.Scripting.Script); err != nil {
			logger.Fatal("script failed", zap.Error(err))
		}
		os.Stdout.WriteString(display.Render())
		return
	}

	console = sim.NewConsole(loop, disp.Execute, os.Stdin, os.Stdout, logger)
	os.Stdout.WriteString(display.Render())

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("loop", loop)
	lifecycle.Add("console", console)
	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Error("rig simulator stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
