package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/infrastructure/config"
	embedder "github.com/ersonp/watlas/internal/infrastructure/embedder/openai"
	"github.com/ersonp/watlas/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize a new watlas wiki",
		Long: "Creates a .watlas directory with default configuration, an empty universe registry\n" +
			"and the default view. The project name defaults to the current directory name.",
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	projectName := filepath.Base(cwd)
	if len(args) > 0 {
		projectName = args[0]
	}

	initHandler := handlers.NewInitHandler()
	result, err := initHandler.Handle(ctx, cwd, projectName)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Database: %s\n", result.DatabasePath)

	if result.SearchEnabled {
		repo, err := qdrant.NewRepository(result.Config.Qdrant)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		defer repo.Close()

		if err := initHandler.EnsureSearchIndex(ctx, repo, embedder.ModelDimensions(result.Config.Embedder.Model)); err != nil {
			return err
		}
		fmt.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	}

	fmt.Println("Watlas initialized successfully!")
	fmt.Println("Next: 'watlas signup --email you@example.com' (the first account becomes admin).")
	if !result.SearchEnabled {
		fmt.Printf("Semantic search is off; set qdrant.enabled in %s to use it.\n", config.ConfigFilePath(cwd))
	}

	return nil
}
