package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/ports"
	"github.com/ersonp/watlas/internal/domain/services"
	"github.com/ersonp/watlas/internal/infrastructure/config"
	embedder "github.com/ersonp/watlas/internal/infrastructure/embedder/openai"
	"github.com/ersonp/watlas/internal/infrastructure/filestore/local"
	"github.com/ersonp/watlas/internal/infrastructure/filestore/minio"
	"github.com/ersonp/watlas/internal/infrastructure/logger"
	"github.com/ersonp/watlas/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/watlas/internal/infrastructure/token"
	"github.com/ersonp/watlas/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	BasePath  string
	Config    *config.Config
	Universes *config.UniversesConfig

	// View is the saved view state with the global flags applied.
	View config.ViewState

	App *handlers.App

	// Session is nil when signed out or when the stored token is no longer
	// valid.
	Session *services.Session

	// ImagesDir is set when images are stored locally.
	ImagesDir string
}

// Scope returns the filter scope of this invocation.
func (d *Deps) Scope() graph.Scope {
	return d.View.Scope()
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(cmd *cobra.Command, fn func(*Deps) error) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	universes, err := config.LoadUniverses(cwd)
	if err != nil {
		return fmt.Errorf("loading universes: %w", err)
	}

	view, err := config.LoadView(cwd)
	if err != nil {
		return fmt.Errorf("loading view state: %w", err)
	}

	relationalDB, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}
	log.Debug().Str("path", relationalDB.Path()).Msg("opened database")

	tokens, err := token.NewManager(cfg.Server)
	if err != nil {
		return fmt.Errorf("creating token manager: %w", err)
	}

	images, imagesDir, err := newImageStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating image store: %w", err)
	}

	p := handlers.Ports{
		RelationalDB: relationalDB,
		Tokens:       tokens,
		Images:       images,
	}

	if cfg.Qdrant.Enabled {
		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		repo, err := qdrant.NewRepository(cfg.Qdrant)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer repo.Close()

		p.Embedder = emb
		p.VectorDB = repo
		p.Collections = repo
		p.VectorSize = emb.Dimensions()
	}

	app := handlers.NewApp(p)

	sess, err := currentSession(ctx, cwd, app.Auth)
	if err != nil {
		return err
	}

	deps := &Deps{
		BasePath:  cwd,
		Config:    cfg,
		Universes: universes,
		View:      applyViewFlags(view),
		App:       app,
		Session:   sess,
		ImagesDir: imagesDir,
	}

	return fn(deps)
}

// newImageStore picks the configured image backend. The returned directory
// is set for the local backend only.
func newImageStore(ctx context.Context, cfg config.StorageConfig) (ports.ImageStore, string, error) {
	switch cfg.Backend {
	case config.StorageMinio:
		store, err := minio.NewStore(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		store, err := local.NewStore(cfg)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	}
}

// currentSession resolves the stored token. A missing, expired or rejected
// token means signed out.
func currentSession(ctx context.Context, basePath string, auth *handlers.AuthHandler) (*services.Session, error) {
	stored, err := config.LoadSession(basePath)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Expired(time.Now()) {
		return nil, nil
	}

	sess, err := auth.HandleSession(ctx, stored.Token)
	if errors.Is(err, entities.ErrUnauthenticated) {
		log.Debug().Err(err).Msg("stored session rejected")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}
	return sess, nil
}

// applyViewFlags overlays the global flags on the saved view state.
func applyViewFlags(view config.ViewState) config.ViewState {
	if globalNonCanon {
		view.Canonical = false
	}
	switch {
	case globalAllUniverses:
		view = view.WithUniverse(graph.AllUniverses)
	case globalUniverse != "":
		view = view.WithUniverse(globalUniverse)
	}
	return view
}

// viewFlagsSet reports whether the invocation names a universe explicitly.
func viewFlagsSet() bool {
	return globalAllUniverses || globalUniverse != "" || globalNonCanon
}
