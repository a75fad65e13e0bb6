package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage backups of every page",
	}

	cmd.AddCommand(
		newBackupCreateCmd(),
		newBackupListCmd(),
		newBackupDownloadCmd(),
		newBackupDeleteCmd(),
		newBackupRestoreCmd(),
	)

	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Snapshot every page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				info, err := d.App.Backups.HandleCreate(cmd.Context(), d.Session)
				if err != nil {
					return err
				}
				fmt.Printf("Created backup %s (%s, %d pages)\n", info.ID, info.Name, info.Pages)
				return nil
			})
		},
	}
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				backups, err := d.App.Backups.HandleList(cmd.Context(), d.Session)
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Println("No backups yet.")
					return nil
				}
				fmt.Printf("%-38s %-28s %s\n", "ID", "NAME", "CREATED")
				fmt.Printf("%-38s %-28s %s\n", "--", "----", "-------")
				for _, b := range backups {
					fmt.Printf("%-38s %-28s %s\n", b.ID, b.Name, b.CreatedAt)
				}
				return nil
			})
		},
	}
}

func newBackupDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Write a backup as JSON",
		Long:  "Writes the backup to stdout, or to --output. The file can be imported with 'watlas import'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				var w io.Writer = os.Stdout
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating output file: %w", err)
					}
					defer f.Close()
					w = f
				}

				info, err := d.App.Backups.HandleDownload(cmd.Context(), d.Session, args[0], w)
				if err != nil {
					return err
				}
				if output != "" {
					fmt.Fprintf(os.Stderr, "Wrote backup %s to %s\n", info.Name, output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func newBackupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				if err := d.App.Backups.HandleDelete(cmd.Context(), d.Session, args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted backup: %s\n", args[0])
				return nil
			})
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	var (
		onConflict string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Load a backup back into the wiki (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if onConflict == "overwrite" && !force && !confirmAction("Overwrite existing pages with the backup?") {
				fmt.Println("Cancelled.")
				return nil
			}
			return withDeps(cmd, func(d *Deps) error {
				result, err := d.App.Backups.HandleRestore(cmd.Context(), d.Session, args[0], onConflict)
				if err != nil {
					return err
				}
				fmt.Printf("Restored %d pages", result.Imported)
				if result.Skipped > 0 {
					fmt.Printf(", %d skipped (already exist)", result.Skipped)
				}
				if len(result.Errors) > 0 {
					fmt.Printf(", %d errors", len(result.Errors))
				}
				fmt.Println()
				for _, e := range result.Errors {
					fmt.Printf("  %s\n", e.Error())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
