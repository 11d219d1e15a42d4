package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Rig: RigConfig{
			TickInterval: 16 * time.Millisecond,
			WeaponsDir:   "content/weapons",
			LoadoutFile:  "content/loadouts/default.yaml",
			Slots:        []string{"primary1", "primary2", "secondary"},
		},
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: console
rig:
  tick_interval: 20ms
  weapons_dir: /srv/weapons
  loadout_file: ""
  slots: [left, right]
scripting:
  script: demo.lua
  instruction_limit: 5000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 20*time.Millisecond, cfg.Rig.TickInterval)
	assert.Equal(t, "/srv/weapons", cfg.Rig.WeaponsDir)
	assert.Equal(t, "", cfg.Rig.LoadoutFile)
	assert.Equal(t, []string{"left", "right"}, cfg.Rig.Slots)
	assert.Equal(t, "demo.lua", cfg.Scripting.Script)
	assert.Equal(t, 5000, cfg.Scripting.InstructionLimit)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 16*time.Millisecond, cfg.Rig.TickInterval)
	assert.Equal(t, "content/weapons", cfg.Rig.WeaponsDir)
	assert.Equal(t, "content/loadouts/default.yaml", cfg.Rig.LoadoutFile)
	assert.Equal(t, []string{"primary1", "primary2", "secondary"}, cfg.Rig.Slots)
	assert.Equal(t, 0, cfg.Scripting.InstructionLimit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GUNRIG_RIG_TICK_INTERVAL", "40ms")
	t.Setenv("GUNRIG_LOGGING_LEVEL", "error")
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, cfg.Rig.TickInterval)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "rig:\n  tick_interval: 0s\n"))
	assert.Error(t, err)
}

func TestLoadFromViperDefaults(t *testing.T) {
	cfg, err := LoadFromViper(Defaults())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateRig(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero tick":      func(c *Config) { c.Rig.TickInterval = 0 },
		"negative tick":  func(c *Config) { c.Rig.TickInterval = -time.Second },
		"no weapons dir": func(c *Config) { c.Rig.WeaponsDir = "" },
		"no slots":       func(c *Config) { c.Rig.Slots = nil },
		"empty slot":     func(c *Config) { c.Rig.Slots = []string{"primary1", ""} },
		"duplicate slot": func(c *Config) { c.Rig.Slots = []string{"primary1", "primary1"} },
		"negative limit": func(c *Config) { c.Scripting.InstructionLimit = -1 },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestValidateAggregatesAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	cfg.Rig.WeaponsDir = ""
	cfg.Scripting.InstructionLimit = -5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "rig.weapons_dir")
	assert.Contains(t, err.Error(), "scripting.instruction_limit")
}

func TestPropertyValidTickIntervalAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ms := rapid.IntRange(1, 1000).Draw(t, "ms")
		cfg := validConfig()
		cfg.Rig.TickInterval = time.Duration(ms) * time.Millisecond
		if err := cfg.Validate(); err != nil {
			t.Fatalf("tick interval %dms rejected: %v", ms, err)
		}
	})
}

func TestPropertyNonPositiveTickIntervalRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ms := rapid.IntRange(-1000, 0).Draw(t, "ms")
		cfg := validConfig()
		cfg.Rig.TickInterval = time.Duration(ms) * time.Millisecond
		if err := cfg.Validate(); err == nil {
			t.Fatalf("tick interval %dms accepted", ms)
		}
	})
}
