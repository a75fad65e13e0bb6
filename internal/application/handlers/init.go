// Package handlers contains application use case handlers shared by the CLI
// and the HTTP API.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/ports"
	"github.com/ersonp/watlas/internal/infrastructure/config"
)

// InitHandler handles project initialization.
type InitHandler struct{}

// NewInitHandler creates a new init handler.
func NewInitHandler() *InitHandler {
	return &InitHandler{}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	DatabasePath   string
	CollectionName string
	SearchEnabled  bool
	Config         *config.Config
}

// Handle writes the default configuration, an empty universe registry and
// the default view state.
func (h *InitHandler) Handle(_ context.Context, basePath, projectName string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("watlas already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath, projectName); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	universes := &config.UniversesConfig{Universes: map[string]config.UniverseEntry{}}
	if err := universes.Save(basePath); err != nil {
		return nil, fmt.Errorf("writing universes: %w", err)
	}

	if err := config.DefaultView().Save(basePath); err != nil {
		return nil, fmt.Errorf("writing view state: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &InitResult{
		ConfigPath:     config.ConfigFilePath(basePath),
		DatabasePath:   cfg.SQLite.Path,
		CollectionName: cfg.Qdrant.Collection,
		SearchEnabled:  cfg.Qdrant.Enabled,
		Config:         cfg,
	}, nil
}

// EnsureSearchIndex creates the vector collection for semantic search.
func (h *InitHandler) EnsureSearchIndex(ctx context.Context, collections ports.CollectionManager, vectorSize uint64) error {
	if err := collections.EnsureCollection(ctx, vectorSize); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}
