package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// UniversesConfig is the registry of known universes (read/write). Pages may
// carry tags that are not registered; the registry adds descriptions and
// lets the CLI offer choices before any page uses a tag.
type UniversesConfig struct {
	Universes map[string]UniverseEntry `yaml:"universes,omitempty"`
}

// UniverseEntry holds the description of a universe.
type UniverseEntry struct {
	Description string `yaml:"description,omitempty"`
}

// LoadUniverses loads the universe registry from the .watlas directory.
func LoadUniverses(basePath string) (*UniversesConfig, error) {
	data, err := os.ReadFile(UniversesFilePath(basePath))
	if os.IsNotExist(err) {
		// Return empty config if file doesn't exist
		return &UniversesConfig{
			Universes: make(map[string]UniverseEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading universes file: %w", err)
	}

	var cfg UniversesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing universes file: %w", err)
	}

	if cfg.Universes == nil {
		cfg.Universes = make(map[string]UniverseEntry)
	}

	return &cfg, nil
}

// Save writes the universe registry to the universes file.
func (u *UniversesConfig) Save(basePath string) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshaling universes config: %w", err)
	}

	if err := os.WriteFile(UniversesFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing universes file: %w", err)
	}

	return nil
}

// Add registers a universe.
func (u *UniversesConfig) Add(name string, entry UniverseEntry) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("universe name cannot be empty")
	}
	if u.Universes == nil {
		u.Universes = make(map[string]UniverseEntry)
	}
	u.Universes[name] = entry
	return nil
}

// Remove removes a universe from the registry.
func (u *UniversesConfig) Remove(name string) {
	if u.Universes != nil {
		delete(u.Universes, name)
	}
}

// Get returns the entry for a universe.
func (u *UniversesConfig) Get(name string) (*UniverseEntry, error) {
	if len(u.Universes) == 0 {
		return nil, errors.New("no universes registered")
	}

	entry, ok := u.Universes[name]
	if !ok {
		names := u.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("universe %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// Exists checks if a universe is registered.
func (u *UniversesConfig) Exists(name string) bool {
	if u.Universes == nil {
		return false
	}
	_, ok := u.Universes[name]
	return ok
}

// Names returns the registered universe names, sorted.
func (u *UniversesConfig) Names() []string {
	names := make([]string, 0, len(u.Universes))
	for k := range u.Universes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
