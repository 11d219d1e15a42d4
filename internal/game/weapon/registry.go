package weapon

import (
	"fmt"
	"sort"
)

// Registry holds loaded weapon Configs indexed by ID.
type Registry struct {
	configs map[string]*Config
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Len() == 0.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]*Config)}
}

// NewRegistryFrom builds a Registry from configs, typically the output of
// LoadConfigs.
//
// Postcondition: returns an error naming the first duplicate or empty ID.
func NewRegistryFrom(configs []*Config) (*Registry, error) {
	r := NewRegistry()
	for _, c := range configs {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds c to the registry.
//
// Precondition:  c must not be nil.
// Postcondition: Get(c.ID) returns c; returns error if c.ID is empty or already registered.
func (r *Registry) Register(c *Config) error {
	if c.ID == "" {
		return fmt.Errorf("weapon: Registry.Register: config %q has no ID", c.Name)
	}
	if _, exists := r.configs[c.ID]; exists {
		return fmt.Errorf("weapon: Registry.Register: weapon ID %q already registered", c.ID)
	}
	r.configs[c.ID] = c
	return nil
}

// Get returns the Config for id and whether it was found.
func (r *Registry) Get(id string) (*Config, bool) {
	c, ok := r.configs[id]
	return c, ok
}

// Len returns the number of registered weapons.
func (r *Registry) Len() int { return len(r.configs) }

// IDs returns all registered IDs in lexicographic order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.configs))
	for id := range r.configs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
