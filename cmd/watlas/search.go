package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/application/handlers"
)

var errSearchDisabled = errors.New("semantic search is not enabled (set qdrant.enabled in .watlas/config.yaml)")

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Find pages by meaning",
		Long:  "Searches the semantic index for pages similar to the query, within the current view.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				if d.App.Search == nil {
					return errSearchDisabled
				}

				result, err := d.App.Search.Handle(cmd.Context(), strings.Join(args, " "), d.Scope(), limit)
				if err != nil {
					return err
				}
				displaySearchResult(result)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")

	return cmd
}

func displaySearchResult(result *handlers.SearchResult) {
	if !result.Selected {
		fmt.Println(noUniverseHint)
		return
	}
	if len(result.Results) == 0 {
		fmt.Println("No matching pages.")
		return
	}

	fmt.Printf("Found %d pages for %q:\n\n", len(result.Results), result.Query)
	for i, r := range result.Results {
		fmt.Printf("%d. %s (%s) [score: %.2f]\n", i+1, r.Page.Name, r.Page.Kind, r.Score)
		if r.Page.Universe != "" {
			fmt.Printf("   Universe: %s\n", r.Page.Universe)
		}
	}
}

func newReindexCmd() *cobra.Command {
	var recreate bool

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the semantic search index",
		Long: `Rebuild the semantic search index from every stored page.

Every page is embedded before the index is cleared, so a failed run keeps
the previous index. Use --recreate to drop and recreate the collection,
for example after switching to an embedding model with another size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				if d.App.Search == nil {
					return errSearchDisabled
				}

				result, err := d.App.Search.HandleReindex(cmd.Context(), d.Session, recreate)
				if err != nil {
					return err
				}
				fmt.Printf("Indexed %d of %d pages into %s\n", result.Indexed, result.Pages, d.Config.Qdrant.Collection)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&recreate, "recreate", false, "Drop and recreate the collection before indexing")

	return cmd
}
