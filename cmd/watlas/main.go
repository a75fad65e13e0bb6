// Package main provides the entry point for the watlas CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"

	globalUniverse     string
	globalAllUniverses bool
	globalNonCanon     bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "watlas",
		Short:         "A wiki of characters, places and events with a relation graph and timeline",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalUniverse, "universe", "u", "", "Universe to view (overrides the saved selection)")
	rootCmd.PersistentFlags().BoolVar(&globalAllUniverses, "all-universes", false, "View every universe")
	rootCmd.PersistentFlags().BoolVar(&globalNonCanon, "non-canon", false, "View non-canon pages instead of canon ones")
	rootCmd.MarkFlagsMutuallyExclusive("universe", "all-universes")

	rootCmd.AddCommand(
		newInitCmd(),
		newSignUpCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newListCmd(),
		newShowCmd(),
		newAddCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newRelateCmd(),
		newUnrelateCmd(),
		newTimelineCmd(),
		newUniversesCmd(),
		newCanonCmd(),
		newCommentsCmd(),
		newBackupCmd(),
		newUsersCmd(),
		newAuditCmd(),
		newImageCmd(),
		newExportCmd(),
		newImportCmd(),
		newSearchCmd(),
		newReindexCmd(),
		newServeCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
