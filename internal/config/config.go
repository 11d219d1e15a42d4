// Package config provides Viper-based configuration loading for the rig
// simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink: "stderr", "stdout" or a file path. Empty means
	// stderr, keeping stdout free for the HUD.
	Output string `mapstructure:"output"`
}

// RigConfig holds weapon rig and simulation settings.
type RigConfig struct {
	// TickInterval is the simulated time advanced per loop tick.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// WeaponsDir is the directory of weapon YAML definitions.
	WeaponsDir string `mapstructure:"weapons_dir"`
	// LoadoutFile is the YAML loadout applied at startup; empty disables it.
	LoadoutFile string `mapstructure:"loadout_file"`
	// Slots is the ordered slot layout.
	Slots []string `mapstructure:"slots"`
}

// ScriptingConfig holds Lua driver settings.
type ScriptingConfig struct {
	// Script is the Lua file to run instead of the interactive console.
	Script string `mapstructure:"script"`
	// InstructionLimit caps the VM instructions per script run; 0 selects
	// the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Rig       RigConfig       `mapstructure:"rig"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRig(c.Rig); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateRig(r RigConfig) error {
	var errs []string
	if r.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("rig.tick_interval must be > 0, got %s", r.TickInterval))
	}
	if r.WeaponsDir == "" {
		errs = append(errs, "rig.weapons_dir must not be empty")
	}
	if len(r.Slots) == 0 {
		errs = append(errs, "rig.slots must not be empty")
	}
	seen := make(map[string]bool, len(r.Slots))
	for _, s := range r.Slots {
		switch {
		case s == "":
			errs = append(errs, "rig.slots must not contain empty names")
		case seen[s]:
			errs = append(errs, fmt.Sprintf("rig.slots contains duplicate %q", s))
		}
		seen[s] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GUNRIG_ prefix
	v.SetEnvPrefix("GUNRIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default settings.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("rig.tick_interval", "16ms")
	v.SetDefault("rig.weapons_dir", "content/weapons")
	v.SetDefault("rig.loadout_file", "content/loadouts/default.yaml")
	v.SetDefault("rig.slots", []string{"primary1", "primary2", "secondary"})

	v.SetDefault("scripting.script", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
