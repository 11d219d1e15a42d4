// Package weapon provides weapon tuning definitions, their YAML loader, and
// the Gun state machine that owns one weapon instance's ammunition, firing
// cadence and reload timing.
package weapon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MinFireRate is the floor applied to FireRate when deriving the cooldown,
// so a zero rate yields a very long cooldown instead of a division by zero.
const MinFireRate = 0.0001

// Config defines the static tuning of one weapon type.
// A Config is shared by every Gun of that type and is never mutated by a Gun.
type Config struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	MagazineSize int     `yaml:"magazine_size"`
	AmmoReserve  int     `yaml:"ammo_reserve"`
	FireRate     float64 `yaml:"fire_rate"`   // rounds per second
	ReloadTime   float64 `yaml:"reload_time"` // seconds
	Damage       float64 `yaml:"damage"`
	Automatic    bool    `yaml:"automatic"`
	Projectile   string  `yaml:"projectile"` // "" = no projectile
	MuzzleOffset Vec3    `yaml:"muzzle_offset"`
}

// DefaultConfig returns the stock tuning used for new weapon definitions.
//
// Postcondition: the result satisfies Validate().
func DefaultConfig() *Config {
	return &Config{
		Name:         "New Weapon",
		MagazineSize: 30,
		AmmoReserve:  90,
		FireRate:     10,
		ReloadTime:   2,
		Damage:       20,
		Automatic:    true,
		MuzzleOffset: Vec3{Z: 0.5},
	}
}

// Cooldown returns the minimum interval between two shots.
//
// Postcondition: result == 1s / max(MinFireRate, FireRate).
func (c *Config) Cooldown() time.Duration {
	rate := c.FireRate
	if rate < MinFireRate {
		rate = MinFireRate
	}
	return time.Duration(float64(time.Second) / rate)
}

// ReloadDuration returns ReloadTime as a duration, floored at zero.
func (c *Config) ReloadDuration() time.Duration {
	if c.ReloadTime <= 0 {
		return 0
	}
	return seconds(c.ReloadTime)
}

// Validate checks that the Config satisfies its invariants.
// Precondition: c is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if c.MagazineSize <= 0 {
		errs = append(errs, fmt.Errorf("MagazineSize must be > 0, got %d", c.MagazineSize))
	}
	if c.AmmoReserve < 0 {
		errs = append(errs, fmt.Errorf("AmmoReserve must be >= 0, got %d", c.AmmoReserve))
	}
	if c.FireRate < 0 {
		errs = append(errs, fmt.Errorf("FireRate must be >= 0, got %g", c.FireRate))
	}
	if c.ReloadTime < 0 {
		errs = append(errs, fmt.Errorf("ReloadTime must be >= 0, got %g", c.ReloadTime))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon config validation failed: %v", errs)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// LoadConfigs reads all *.yaml files from dir, parses each as a Config,
// validates it, and returns the collected slice in directory order.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Configs or the first encountered error.
func LoadConfigs(dir string) ([]*Config, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadConfigs: cannot read directory %q: %w", dir, err)
	}

	var configs []*Config
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadConfigs: cannot read file %q: %w", path, err)
		}
		var c Config
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("LoadConfigs: cannot parse file %q: %w", path, err)
		}
		if c.ID == "" {
			return nil, fmt.Errorf("LoadConfigs: weapon in %q has no id", path)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("LoadConfigs: invalid weapon in %q: %w", path, err)
		}
		configs = append(configs, &c)
	}
	return configs, nil
}
