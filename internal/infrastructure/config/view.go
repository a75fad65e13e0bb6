package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/watlas/internal/domain/graph"
)

// ViewState is the persisted canon/universe selection. It is read once at
// startup and written whenever the user changes it.
type ViewState struct {
	Canonical bool `yaml:"canonical"`
	// Universe is nil until a universe has been chosen. An empty string
	// selects every universe.
	Universe *string `yaml:"universe,omitempty"`
}

// DefaultView is the state before the user has chosen anything: canon
// pages, no universe selected.
func DefaultView() ViewState {
	return ViewState{Canonical: true}
}

// LoadView loads the view state, falling back to DefaultView when the file
// does not exist.
func LoadView(basePath string) (ViewState, error) {
	data, err := os.ReadFile(ViewFilePath(basePath))
	if os.IsNotExist(err) {
		return DefaultView(), nil
	}
	if err != nil {
		return ViewState{}, fmt.Errorf("reading view file: %w", err)
	}

	view := DefaultView()
	if err := yaml.Unmarshal(data, &view); err != nil {
		return ViewState{}, fmt.Errorf("parsing view file: %w", err)
	}
	return view, nil
}

// Save writes the view state.
func (v ViewState) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling view state: %w", err)
	}

	if err := os.WriteFile(ViewFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing view file: %w", err)
	}
	return nil
}

// WithUniverse returns a copy selecting universe.
func (v ViewState) WithUniverse(universe string) ViewState {
	v.Universe = &universe
	return v
}

// Scope converts the view state into a filter scope.
func (v ViewState) Scope() graph.Scope {
	s := graph.Scope{Canonical: v.Canonical}
	if v.Universe != nil {
		u := *v.Universe
		s.Universe = &u
	}
	return s
}

// Describe renders the state for display.
func (v ViewState) Describe() string {
	canon := "canon"
	if !v.Canonical {
		canon = "non-canon"
	}
	switch {
	case v.Universe == nil:
		return canon + ", no universe selected"
	case *v.Universe == graph.AllUniverses:
		return canon + ", all universes"
	default:
		return fmt.Sprintf("%s, universe %q", canon, *v.Universe)
	}
}
