package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/application/handlers"
)

type exportFlags struct {
	format string
	output string
	kind   string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export pages to file",
		Long: "Exports pages to JSON, CSV, or markdown format. Every page is exported unless\n" +
			"--universe, --all-universes or --non-canon restricts the view. JSON and CSV can be imported back.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "", "Filter by kind")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	return withDeps(cmd, func(d *Deps) error {
		opts := handlers.ExportOptions{Format: flags.format, Kind: flags.kind}
		if viewFlagsSet() {
			scope := d.Scope()
			opts.Scope = &scope
		}

		var w io.Writer = os.Stdout
		if flags.output != "" {
			f, err := os.Create(flags.output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		n, err := d.App.Export.Handle(cmd.Context(), w, opts)
		if err != nil {
			return err
		}

		if flags.output != "" {
			fmt.Fprintf(os.Stderr, "Exported %d pages to %s\n", n, flags.output)
		}
		return nil
	})
}
